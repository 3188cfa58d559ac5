// Package source turns data files into the raw comma-separated text the
// record ingestor reads. Loaders never type values.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Options selects what part of a file is loaded.
type Options struct {
	// SheetName picks a workbook sheet by name (case-insensitive).
	SheetName string
	// SheetIndex is the 1-based sheet position used when SheetName is empty.
	SheetIndex int
}

// Loader reads one family of file formats.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (string, error)
}

var registry []Loader

// Register adds a loader. Earlier registrations win.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrSheetNotFound is returned when a requested workbook sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// LoadFile selects a loader by file extension and returns the raw text.
// Unknown extensions are read as text.
func LoadFile(path string, opt Options) (string, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return textLoader{}.Load(path, opt)
}

func init() {
	Register(textLoader{})
	Register(tsvLoader{})
	Register(xlsxLoader{})
}

// readText reads path as UTF-8, honoring a UTF-8 or UTF-16 byte order mark.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return Decode(data)
}

// Decode converts BOM-marked UTF-8/UTF-16 data to UTF-8 and strips the mark.
// Data without a mark is taken as UTF-8.
func Decode(data []byte) (string, error) {
	r := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
