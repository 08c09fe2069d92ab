package qb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"

	xxhash "github.com/cespare/xxhash/v2"
)

// MaxGridCells bounds the storage a Grid allocates for a declared size.
const MaxGridCells = 1 << 26

var (
	errSizeDeclared   = errors.New("grid size already declared")
	errNotSized       = errors.New("voxel reported before grid size")
	errGridTooLarge   = errors.New("grid too large")
	errTooManyClipped = errors.New("more voxels outside the grid than it holds")
)

// Voxel is one grid cell. Filled mirrors alpha > 0.
type Voxel struct {
	Color  color.RGBA
	Filled bool
}

// Grid is a dense voxel model addressed in grid axis order (Y up).
// Voxels[x + y*W + z*W*H]
type Grid struct {
	Name    string
	Header  Header
	W, H, D uint32
	Voxels  []Voxel
	// Clipped counts voxels reported outside the declared size; they are dropped.
	// SetVoxel fails once Clipped exceeds the number of cells.
	Clipped int

	sized bool
}

// NewGrid returns an empty, unsized grid.
func NewGrid() *Grid { return &Grid{} }

// DeclareSize allocates the grid. All cells start empty. It satisfies SizeFunc.
func (g *Grid) DeclareSize(w, h, d uint32) error {
	if g.sized {
		return errSizeDeclared
	}
	total := uint64(w) * uint64(h) * uint64(d)
	if total > MaxGridCells {
		return fmt.Errorf("%w: %dx%dx%d", errGridTooLarge, w, h, d)
	}
	g.W, g.H, g.D = w, h, d
	g.Voxels = make([]Voxel, total)
	g.Clipped = 0
	g.sized = true
	return nil
}

// SetVoxel stores one cell. It satisfies VoxelFunc.
func (g *Grid) SetVoxel(x, y, z uint32, r, gr, b, a uint8) error {
	if !g.sized {
		return errNotSized
	}
	if !g.inBounds(x, y, z) {
		g.Clipped++
		if g.Clipped > len(g.Voxels) {
			return errTooManyClipped
		}
		return nil
	}
	g.Voxels[g.index(x, y, z)] = Voxel{Color: color.RGBA{R: r, G: gr, B: b, A: a}, Filled: a > 0}
	return nil
}

func (g *Grid) inBounds(x, y, z uint32) bool {
	return x < g.W && y < g.H && z < g.D
}

func (g *Grid) index(x, y, z uint32) int {
	return int(x) + int(y)*int(g.W) + int(z)*int(g.W)*int(g.H)
}

// At returns the cell at (x, y, z); out of range cells are empty.
func (g *Grid) At(x, y, z int) Voxel {
	if x < 0 || y < 0 || z < 0 || !g.inBounds(uint32(x), uint32(y), uint32(z)) {
		return Voxel{}
	}
	return g.Voxels[g.index(uint32(x), uint32(y), uint32(z))]
}

// Size returns the grid dimensions.
func (g *Grid) Size() (w, h, d uint32) { return g.W, g.H, g.D }

// Filled counts occupied cells.
func (g *Grid) Filled() int {
	n := 0
	for _, v := range g.Voxels {
		if v.Filled {
			n++
		}
	}
	return n
}

// Checksum hashes the size and every cell. Equal grids have equal checksums.
func (g *Grid) Checksum() uint64 {
	d := xxhash.New()
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:4], g.W)
	binary.LittleEndian.PutUint32(b[4:8], g.H)
	binary.LittleEndian.PutUint32(b[8:12], g.D)
	_, _ = d.Write(b[:])
	buf := make([]byte, 0, 5*1024)
	for _, v := range g.Voxels {
		filled := byte(0)
		if v.Filled {
			filled = 1
		}
		buf = append(buf, v.Color.R, v.Color.G, v.Color.B, v.Color.A, filled)
		if len(buf) == cap(buf) {
			_, _ = d.Write(buf)
			buf = buf[:0]
		}
	}
	_, _ = d.Write(buf)
	return d.Sum64()
}

// DecodeGrid decodes data into a new grid. On failure no grid is returned.
func (d *Decoder) DecodeGrid(data []byte) (*Grid, error) {
	g := NewGrid()
	hdr, err := d.Decode(data, g.DeclareSize, g.SetVoxel)
	if err != nil {
		return nil, err
	}
	g.Header = hdr
	return g, nil
}

// DecodeGrid decodes data into a new grid with a zero Decoder.
func DecodeGrid(data []byte) (*Grid, error) {
	var d Decoder
	return d.DecodeGrid(data)
}
