package qb

import "fmt"

// Version is the 4-byte .qb version word, low byte first.
type Version struct {
	Major, Minor, Release, Build uint8
}

// LastSupportedVersion is the newest file revision this reader has been checked against.
var LastSupportedVersion = Version{Major: 1, Minor: 1}

func versionFromWord(w uint32) Version {
	return Version{
		Major:   uint8(w),
		Minor:   uint8(w >> 8),
		Release: uint8(w >> 16),
		Build:   uint8(w >> 24),
	}
}

// Newer reports whether v has a higher major.minor than o. Release and build are ignored.
func (v Version) Newer(o Version) bool {
	return v.Major > o.Major || (v.Major == o.Major && v.Minor > o.Minor)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Release, v.Build)
}

// ColorFormat is the channel order of a voxel word.
type ColorFormat uint32

const (
	RGBA ColorFormat = 0
	BGRA ColorFormat = 1
)

const rightHanded = 1

// Header holds the file header and the single matrix descriptor.
// Size is in the file's axis order (Y up, Z depth).
type Header struct {
	Version          Version
	ColorFormat      ColorFormat
	ZAxisOrientation uint32
	Compressed       bool
	SizeX            uint32
	SizeY            uint32
	SizeZ            uint32
}

// GridSize returns the dimensions as reported to consumers, with Y and Z swapped.
func (h Header) GridSize() (x, y, z uint32) {
	return h.SizeX, h.SizeZ, h.SizeY
}

// readHeader consumes the header and matrix descriptor up to the voxel body.
func readHeader(r *byteReader) (Header, error) {
	var hdr Header

	word, err := r.readU32()
	if err != nil {
		return hdr, truncated(err, "version", r.offset())
	}
	hdr.Version = versionFromWord(word)

	cf, err := r.readU32()
	if err != nil {
		return hdr, truncated(err, "color format", r.offset())
	}
	if ColorFormat(cf) != RGBA {
		return hdr, unsupported(ErrUnsupportedColorFormat, "only RGBA (0) is supported, got %d", cf)
	}
	hdr.ColorFormat = ColorFormat(cf)

	if hdr.ZAxisOrientation, err = r.readU32(); err != nil {
		return hdr, truncated(err, "z-axis orientation", r.offset())
	}
	if hdr.ZAxisOrientation != rightHanded {
		return hdr, unsupported(ErrUnsupportedOrientation, "only right handed (1) is supported, got %d", hdr.ZAxisOrientation)
	}

	compressed, err := r.readU32()
	if err != nil {
		return hdr, truncated(err, "compression flag", r.offset())
	}
	hdr.Compressed = compressed != 0

	mask, err := r.readU32()
	if err != nil {
		return hdr, truncated(err, "visibility mask flag", r.offset())
	}
	if mask != 0 {
		return hdr, unsupported(ErrUnsupportedVisibilityMask, "got %d", mask)
	}

	n, err := r.readU32()
	if err != nil {
		return hdr, truncated(err, "matrix count", r.offset())
	}
	if n != 1 {
		return hdr, unsupported(ErrUnsupportedMatrixCount, "exactly 1 matrix is supported, got %d", n)
	}

	nameLen, err := r.readU8()
	if err != nil {
		return hdr, truncated(err, "name length", r.offset())
	}
	if nameLen != 0 {
		// Supporting names means consuming nameLen bytes of name here.
		return hdr, unsupported(ErrUnsupportedNamedMatrix, "name of length %d", nameLen)
	}

	for _, f := range []struct {
		name string
		dst  *uint32
	}{{"size x", &hdr.SizeX}, {"size y", &hdr.SizeY}, {"size z", &hdr.SizeZ}} {
		if *f.dst, err = r.readU32(); err != nil {
			return hdr, truncated(err, f.name, r.offset())
		}
	}

	var pos [3]int32
	for i := range pos {
		if pos[i], err = r.readI32(); err != nil {
			return hdr, truncated(err, "position", r.offset())
		}
	}
	if pos != [3]int32{} {
		// file axis order, not the swapped grid order
		return hdr, unsupported(ErrUnsupportedNonOriginPlacement, "got (%d, %d, %d)", pos[0], pos[1], pos[2])
	}
	return hdr, nil
}
