// Package encoding decodes the legacy text encodings found in Ragnarok Online
// model and archive files.
package encoding

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 converts EUC-KR bytes to a UTF-8 string.
// Invalid input is returned unchanged.
func EUCKRToUTF8(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// FixedStringToUTF8 decodes a fixed-size, NUL-padded EUC-KR field.
func FixedStringToUTF8(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return EUCKRToUTF8(data)
}

// NormalizePath converts backslashes to slashes and lowercases the path,
// the form archive lookups use.
func NormalizePath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
}

// UTF8ToEUCKR converts a UTF-8 string to EUC-KR bytes. Characters EUC-KR
// cannot represent make it return the input bytes unchanged.
func UTF8ToEUCKR(s string) []byte {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}
