package qb

import (
	"encoding/binary"
	"io"
)

// byteReader is a forward-only little-endian reader over a .qb image.
// Every field is consumed exactly once; nothing is copied.
type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(b []byte) *byteReader { return &byteReader{data: b} }

func (r *byteReader) take(n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.pos < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) readU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *byteReader) readU32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) readI32() (int32, error) {
	v, err := r.readU32()
	return int32(v), err
}

// offset reports how many bytes have been consumed so far.
func (r *byteReader) offset() int { return r.pos }
