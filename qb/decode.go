package qb

import (
	"fmt"
	"log"
)

// SizeFunc receives the grid dimensions once, before any voxel, in grid axis
// order (the file's Y and Z already swapped).
type SizeFunc func(sizeX, sizeY, sizeZ uint32) error

// VoxelFunc receives one cell in grid axis order. It is called once per voxel
// word in the file, in file order. Cells the file does not encode are never
// reported, so consumers must start from an empty state.
type VoxelFunc func(x, y, z uint32, red, green, blue, alpha uint8) error

// Run-length control words of the compressed body. A literal voxel word equal
// to either value cannot be represented in a compressed file.
const (
	codeFlag      = 2
	nextSliceFlag = 6
)

// Decoder decodes .qb images. The zero value is ready to use.
type Decoder struct {
	// Warnf receives non-fatal diagnostics. Nil logs through the standard logger.
	Warnf func(format string, args ...any)
}

// Decode decodes data with a zero Decoder.
func Decode(data []byte, declareSize SizeFunc, setVoxel VoxelFunc) error {
	var d Decoder
	_, err := d.Decode(data, declareSize, setVoxel)
	return err
}

// Decode validates the header of data, reports the grid size and then every
// encoded voxel. On error, whatever the callbacks already received must be
// discarded by the caller.
func (d *Decoder) Decode(data []byte, declareSize SizeFunc, setVoxel VoxelFunc) (Header, error) {
	r := newByteReader(data)
	hdr, err := readHeader(r)
	if err != nil {
		return hdr, err
	}
	if hdr.Version.Newer(LastSupportedVersion) {
		d.warnf("qb: reading file version %s, %s is the last supported version", hdr.Version, LastSupportedVersion)
	}

	if err := declareSize(hdr.GridSize()); err != nil {
		return hdr, aborted(err)
	}
	if hdr.Compressed {
		err = decodeCompressed(r, hdr, hdr.ColorFormat, setVoxel)
	} else {
		err = decodeRaw(r, hdr, hdr.ColorFormat, setVoxel)
	}
	return hdr, err
}

// DecodeHeader parses and validates only the header and matrix descriptor.
func (d *Decoder) DecodeHeader(data []byte) (Header, error) {
	hdr, err := readHeader(newByteReader(data))
	if err == nil && hdr.Version.Newer(LastSupportedVersion) {
		d.warnf("qb: reading file version %s, %s is the last supported version", hdr.Version, LastSupportedVersion)
	}
	return hdr, err
}

func (d *Decoder) warnf(format string, args ...any) {
	if d.Warnf != nil {
		d.Warnf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// emit swaps file (x, y, z) into grid order and decodes the word.
func emit(setVoxel VoxelFunc, x, y, z, word uint32, format ColorFormat) error {
	c := decodeWord(word, format)
	if err := setVoxel(x, z, y, c.R, c.G, c.B, c.A); err != nil {
		return aborted(err)
	}
	return nil
}

// decodeRaw reads one word per cell, x fastest, z slowest.
func decodeRaw(r *byteReader, hdr Header, format ColorFormat, setVoxel VoxelFunc) error {
	for z := uint32(0); z < hdr.SizeZ; z++ {
		for y := uint32(0); y < hdr.SizeY; y++ {
			for x := uint32(0); x < hdr.SizeX; x++ {
				word, err := r.readU32()
				if err != nil {
					return truncated(err, fmt.Sprintf("voxel (%d, %d, %d)", x, y, z), r.offset())
				}
				if err := emit(setVoxel, x, y, z, word, format); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// decodeCompressed reads SizeZ run-length slices, each closed by nextSliceFlag.
// Slices are numbered from 1 and cell x/y are derived from a running index
// plus one, which is how existing files are laid out by this reader.
func decodeCompressed(r *byteReader, hdr Header, format ColorFormat, setVoxel VoxelFunc) error {
	cell := func(index, slice, word uint32) error {
		if hdr.SizeX == 0 {
			return fmt.Errorf("%w: slice %d has cells but the matrix width is 0", ErrMalformedBody, slice)
		}
		x := index%hdr.SizeX + 1
		y := index/hdr.SizeX + 1
		return emit(setVoxel, x, y, slice, word, format)
	}

	for slice := uint32(0); slice < hdr.SizeZ; {
		slice++
		var index uint32
		for {
			word, err := r.readU32()
			if err != nil {
				return truncated(err, fmt.Sprintf("slice %d", slice), r.offset())
			}
			if word == nextSliceFlag {
				break
			}
			if word != codeFlag {
				if err := cell(index, slice, word); err != nil {
					return err
				}
				index++
				continue
			}
			count, err := r.readU32()
			if err != nil {
				return truncated(err, fmt.Sprintf("run length in slice %d", slice), r.offset())
			}
			data, err := r.readU32()
			if err != nil {
				return truncated(err, fmt.Sprintf("run value in slice %d", slice), r.offset())
			}
			for j := uint32(0); j < count; j++ {
				if err := cell(index, slice, data); err != nil {
					return err
				}
				index++
			}
		}
	}
	return nil
}
