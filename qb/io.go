package qb

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// maxUnwrappedSize caps the decompressed size of a .qb.zst frame. Four words
// per cell covers any body whose grid passes MaxGridCells.
var maxUnwrappedSize uint64 = 64 + 16*MaxGridCells

// IsZstd reports whether data starts with a zstd frame header.
func IsZstd(data []byte) bool { return bytes.HasPrefix(data, zstdMagic) }

// Unwrap returns the raw .qb image, decompressing a .qb.zst frame if present.
func Unwrap(data []byte) ([]byte, error) {
	if !IsZstd(data) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxUnwrappedSize))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return raw, nil
}

// CompressQB wraps a raw .qb image in a zstd frame at the given zstd level (1..22).
func CompressQB(data []byte, level int) ([]byte, error) {
	if IsZstd(data) {
		return nil, fmt.Errorf("input is already zstd compressed")
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// LoadGridFromBytes decodes a .qb or .qb.zst image.
func (d *Decoder) LoadGridFromBytes(data []byte) (*Grid, error) {
	raw, err := Unwrap(data)
	if err != nil {
		return nil, err
	}
	return d.DecodeGrid(raw)
}

// LoadGrid reads and decodes a .qb or .qb.zst file. The grid is named after the file.
func (d *Decoder) LoadGrid(filename string) (*Grid, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	g, err := d.LoadGridFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	g.Name = ModelName(filename)
	return g, nil
}

// LoadGridFromBytes decodes a .qb or .qb.zst image with a default Decoder.
func LoadGridFromBytes(data []byte) (*Grid, error) {
	var d Decoder
	return d.LoadGridFromBytes(data)
}

// LoadGrid reads a .qb or .qb.zst file with a default Decoder.
func LoadGrid(filename string) (*Grid, error) {
	var d Decoder
	return d.LoadGrid(filename)
}

// CanImport reports whether path looks like a Qubicle Binary file.
func CanImport(path string) bool {
	_, ok := trimExt(filepath.Base(path))
	return ok
}

// ModelName is the file's base name without its .qb or .qb.zst extension.
func ModelName(path string) string {
	base := filepath.Base(path)
	if name, ok := trimExt(base); ok {
		return name
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func trimExt(base string) (string, bool) {
	lower := strings.ToLower(base)
	for _, ext := range []string{".qb.zst", ".qb"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)], true
		}
	}
	return base, false
}
