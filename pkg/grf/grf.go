// Package grf reads Ragnarok Online GRF archives, the container the game
// ships its models and textures in.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Faultbox/webgl-export/pkg/encoding"
)

const (
	grfMagic   = "Master of Magic"
	headerSize = 46
	version200 = 0x200

	// Entry flags.
	flagFile          = 0x01
	flagMixCrypt      = 0x02
	flagHeaderCrypt   = 0x04
	entryFixedSize    = 17
	tableSizeFieldLen = 8
)

// GRF errors.
var (
	ErrInvalidMagic       = errors.New("invalid GRF magic")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrCorruptTable       = errors.New("corrupt GRF file table")
	ErrNotFound           = errors.New("file not found in archive")
	ErrEncrypted          = errors.New("encrypted GRF entries are not supported")
)

// Header is the fixed 46-byte GRF header.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry describes one file stored in the archive.
type Entry struct {
	Name             string // Normalized path
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32 // Relative to the end of the header
}

// Archive is an opened GRF archive.
type Archive struct {
	r       io.ReaderAt
	closer  io.Closer
	header  Header
	entries map[string]*Entry
}

// Open opens a GRF archive on disk.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	a, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	a.closer = file
	return a, nil
}

// NewReader reads the header and file table of an archive from r.
func NewReader(r io.ReaderAt) (*Archive, error) {
	a := &Archive{
		r:       r,
		entries: make(map[string]*Entry),
	}
	if err := a.readHeader(); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readFileTable(); err != nil {
		return nil, fmt.Errorf("reading file table: %w", err)
	}
	return a, nil
}

// Close releases the underlying file, if the archive owns one.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *Archive) readHeader() error {
	sr := io.NewSectionReader(a.r, 0, headerSize)
	if err := binary.Read(sr, binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != version200 {
		return fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	tableOffset := int64(a.header.TableOffset) + headerSize

	var sizes [tableSizeFieldLen]byte
	if _, err := a.r.ReadAt(sizes[:], tableOffset); err != nil {
		return err
	}
	compressedSize := binary.LittleEndian.Uint32(sizes[0:])
	uncompressedSize := binary.LittleEndian.Uint32(sizes[4:])

	compressed := make([]byte, compressedSize)
	if _, err := a.r.ReadAt(compressed, tableOffset+tableSizeFieldLen); err != nil {
		return err
	}
	table, err := inflate(compressed, uncompressedSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}

	if a.header.FileCount < a.header.Seed+7 {
		return fmt.Errorf("%w: file count %d below seed %d", ErrCorruptTable, a.header.FileCount, a.header.Seed)
	}
	fileCount := a.header.FileCount - a.header.Seed - 7

	offset := 0
	for i := uint32(0); i < fileCount; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 || offset+nameEnd+1+entryFixedSize > len(table) {
			return fmt.Errorf("%w: entry %d truncated", ErrCorruptTable, i)
		}
		name := encoding.EUCKRToUTF8(table[offset : offset+nameEnd])
		offset += nameEnd + 1

		fields := table[offset : offset+entryFixedSize]
		entry := &Entry{
			Name:             encoding.NormalizePath(name),
			CompressedSize:   binary.LittleEndian.Uint32(fields[0:]),
			AlignedSize:      binary.LittleEndian.Uint32(fields[4:]),
			UncompressedSize: binary.LittleEndian.Uint32(fields[8:]),
			Flags:            fields[12],
			Offset:           binary.LittleEndian.Uint32(fields[13:]),
		}
		offset += entryFixedSize

		if entry.Flags&flagFile != 0 {
			a.entries[entry.Name] = entry
		}
	}
	return nil
}

// List returns every file path in the archive, sorted.
func (a *Archive) List() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether the archive holds path. Lookups ignore case and
// slash direction.
func (a *Archive) Contains(path string) bool {
	_, ok := a.entries[encoding.NormalizePath(path)]
	return ok
}

// Read returns the decompressed contents of path.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, ok := a.entries[encoding.NormalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if entry.Flags&(flagMixCrypt|flagHeaderCrypt) != 0 {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, path)
	}

	if entry.UncompressedSize == 0 {
		return []byte{}, nil
	}

	data := make([]byte, entry.CompressedSize)
	if _, err := a.r.ReadAt(data, int64(entry.Offset)+headerSize); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if entry.CompressedSize == entry.UncompressedSize {
		return data, nil
	}
	out, err := inflate(data, entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("inflating %s: %w", path, err)
	}
	return out, nil
}

func inflate(data []byte, size uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}
