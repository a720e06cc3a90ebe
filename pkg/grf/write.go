package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/webgl-export/pkg/encoding"
)

// File is one entry passed to Write.
type File struct {
	Name string // Slash or backslash separated
	Data []byte
}

// Write packs files into a version 0x200 archive. Entry data is zlib
// compressed when that saves space and padded to 8 bytes. Names are stored
// in EUC-KR with backslash separators.
func Write(w io.Writer, files []File) error {
	var body, table bytes.Buffer

	for _, f := range files {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(f.Data); err != nil {
			return fmt.Errorf("compressing %s: %w", f.Name, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("compressing %s: %w", f.Name, err)
		}

		// Entries that do not shrink are stored raw; Read tells them apart
		// by equal sizes.
		data := z.Bytes()
		if len(data) >= len(f.Data) {
			data = f.Data
		}

		compressed := uint32(len(data))
		aligned := (compressed + 7) &^ 7
		offset := uint32(body.Len())
		body.Write(data)
		body.Write(make([]byte, aligned-compressed))

		table.Write(encoding.UTF8ToEUCKR(strings.ReplaceAll(f.Name, "/", "\\")))
		table.WriteByte(0)
		var fields [entryFixedSize]byte
		binary.LittleEndian.PutUint32(fields[0:], compressed)
		binary.LittleEndian.PutUint32(fields[4:], aligned)
		binary.LittleEndian.PutUint32(fields[8:], uint32(len(f.Data)))
		fields[12] = flagFile
		binary.LittleEndian.PutUint32(fields[13:], offset)
		table.Write(fields[:])
	}

	var zt bytes.Buffer
	tw := zlib.NewWriter(&zt)
	tw.Write(table.Bytes())
	if err := tw.Close(); err != nil {
		return fmt.Errorf("compressing file table: %w", err)
	}

	header := make([]byte, headerSize)
	copy(header, grfMagic)
	binary.LittleEndian.PutUint32(header[30:], uint32(body.Len()))
	binary.LittleEndian.PutUint32(header[34:], 0)
	binary.LittleEndian.PutUint32(header[38:], uint32(len(files))+7)
	binary.LittleEndian.PutUint32(header[42:], version200)

	var sizes [tableSizeFieldLen]byte
	binary.LittleEndian.PutUint32(sizes[0:], uint32(zt.Len()))
	binary.LittleEndian.PutUint32(sizes[4:], uint32(table.Len()))

	for _, chunk := range [][]byte{header, body.Bytes(), sizes[:], zt.Bytes()} {
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}
	}
	return nil
}
