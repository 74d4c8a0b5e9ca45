// Package ingest turns report files into the single complete text value the
// parser consumes.
package ingest

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// LoadFile reads one report file and returns its decoded text.
func LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	return Decode(data)
}

// Decode converts raw report bytes to UTF-8 text. Valid UTF-8 passes through
// untouched; anything else is treated as a Windows-1252 export, which is what
// the legacy pharmacy systems that still produce these files emit.
func Decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(decoded), nil
}
