package qb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// qbFile builds .qb images for tests.
type qbFile struct {
	version     uint32
	colorFormat uint32
	zAxis       uint32
	compressed  uint32
	mask        uint32
	matrices    uint32
	nameLen     uint8
	size        [3]uint32
	pos         [3]int32
	body        []uint32
}

func validFile(sx, sy, sz uint32) qbFile {
	return qbFile{version: 0x00000101, zAxis: 1, matrices: 1, size: [3]uint32{sx, sy, sz}}
}

func (f qbFile) bytes() []byte {
	var b []byte
	u32 := func(v uint32) { b = binary.LittleEndian.AppendUint32(b, v) }
	u32(f.version)
	u32(f.colorFormat)
	u32(f.zAxis)
	u32(f.compressed)
	u32(f.mask)
	u32(f.matrices)
	b = append(b, f.nameLen)
	for _, s := range f.size {
		u32(s)
	}
	for _, p := range f.pos {
		u32(uint32(p))
	}
	for _, w := range f.body {
		u32(w)
	}
	return b
}

type voxelCall struct {
	x, y, z    uint32
	r, g, b, a uint8
}

type recorder struct {
	sizes  [][3]uint32
	voxels []voxelCall
}

func (rec *recorder) declareSize(x, y, z uint32) error {
	rec.sizes = append(rec.sizes, [3]uint32{x, y, z})
	return nil
}

func (rec *recorder) setVoxel(x, y, z uint32, r, g, b, a uint8) error {
	rec.voxels = append(rec.voxels, voxelCall{x, y, z, r, g, b, a})
	return nil
}

func quietDecoder(warnings *[]string) *Decoder {
	return &Decoder{Warnf: func(format string, args ...any) {
		*warnings = append(*warnings, fmt.Sprintf(format, args...))
	}}
}

func TestDecode_ValidHeadersDeclareSwappedSize(t *testing.T) {
	for _, compressed := range []uint32{0, 1, 7} {
		f := validFile(3, 4, 2)
		f.compressed = compressed
		if compressed == 0 {
			f.body = make([]uint32, 3*4*2)
		} else {
			f.body = []uint32{nextSliceFlag, nextSliceFlag}
		}
		var rec recorder
		if err := Decode(f.bytes(), rec.declareSize, rec.setVoxel); err != nil {
			t.Fatalf("compressed=%d: decode failed: %v", compressed, err)
		}
		if len(rec.sizes) != 1 {
			t.Fatalf("compressed=%d: declareSize called %d times", compressed, len(rec.sizes))
		}
		if rec.sizes[0] != [3]uint32{3, 2, 4} {
			t.Fatalf("compressed=%d: declared %v, want [3 2 4]", compressed, rec.sizes[0])
		}
	}
}

func TestDecode_UnsupportedHeaderFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*qbFile)
		want   error
	}{
		{"color format", func(f *qbFile) { f.colorFormat = 1 }, ErrUnsupportedColorFormat},
		{"orientation", func(f *qbFile) { f.zAxis = 0 }, ErrUnsupportedOrientation},
		{"visibility mask", func(f *qbFile) { f.mask = 1 }, ErrUnsupportedVisibilityMask},
		{"matrix count", func(f *qbFile) { f.matrices = 2 }, ErrUnsupportedMatrixCount},
		{"zero matrices", func(f *qbFile) { f.matrices = 0 }, ErrUnsupportedMatrixCount},
		{"named matrix", func(f *qbFile) { f.nameLen = 4 }, ErrUnsupportedNamedMatrix},
		{"position x", func(f *qbFile) { f.pos[0] = -1 }, ErrUnsupportedNonOriginPlacement},
		{"position z", func(f *qbFile) { f.pos[2] = 5 }, ErrUnsupportedNonOriginPlacement},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validFile(1, 1, 1)
			f.body = []uint32{0xFF0000FF}
			tc.mutate(&f)
			var rec recorder
			err := Decode(f.bytes(), rec.declareSize, rec.setVoxel)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if len(rec.sizes) != 0 || len(rec.voxels) != 0 {
				t.Fatalf("callbacks fired on rejected header: %d sizes, %d voxels", len(rec.sizes), len(rec.voxels))
			}
		})
	}
}

func TestDecode_Uncompressed2x2x1Order(t *testing.T) {
	f := validFile(2, 2, 1)
	f.body = []uint32{0x01000000, 0x02000000, 0x03000000, 0x04000000}
	var rec recorder
	if err := Decode(f.bytes(), rec.declareSize, rec.setVoxel); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []voxelCall{
		{0, 0, 0, 0, 0, 0, 1},
		{1, 0, 0, 0, 0, 0, 2},
		{0, 0, 1, 0, 0, 0, 3},
		{1, 0, 1, 0, 0, 0, 4},
	}
	if len(rec.voxels) != len(want) {
		t.Fatalf("got %d voxels, want %d", len(rec.voxels), len(want))
	}
	for i := range want {
		if rec.voxels[i] != want[i] {
			t.Fatalf("voxel %d: got %+v, want %+v", i, rec.voxels[i], want[i])
		}
	}
}

func TestDecode_UncompressedAxisSwap(t *testing.T) {
	// one voxel at file (x=1, y=2, z=0) in a 2x3x1 matrix
	f := validFile(2, 3, 1)
	f.body = make([]uint32, 6)
	f.body[1+2*2] = 0xFF112233
	var rec recorder
	if err := Decode(f.bytes(), rec.declareSize, rec.setVoxel); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	got := rec.voxels[5]
	if got.x != 1 || got.y != 0 || got.z != 2 {
		t.Fatalf("got (%d,%d,%d), want (1,0,2)", got.x, got.y, got.z)
	}
	if got.r != 0x33 || got.g != 0x22 || got.b != 0x11 || got.a != 0xFF {
		t.Fatalf("unexpected color %+v", got)
	}
}

func TestDecode_CompressedRunKeepsOneBasedOffset(t *testing.T) {
	f := validFile(4, 1, 1)
	f.compressed = 1
	f.body = []uint32{codeFlag, 3, 0x11223344, nextSliceFlag}
	var rec recorder
	if err := Decode(f.bytes(), rec.declareSize, rec.setVoxel); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	want := []voxelCall{
		{1, 1, 1, 0x44, 0x33, 0x22, 0x11},
		{2, 1, 1, 0x44, 0x33, 0x22, 0x11},
		{3, 1, 1, 0x44, 0x33, 0x22, 0x11},
	}
	if len(rec.voxels) != len(want) {
		t.Fatalf("got %d voxels, want %d", len(rec.voxels), len(want))
	}
	for i := range want {
		if rec.voxels[i] != want[i] {
			t.Fatalf("voxel %d: got %+v, want %+v", i, rec.voxels[i], want[i])
		}
	}
}

func TestDecode_CompressedLiteralsAndSlices(t *testing.T) {
	f := validFile(2, 2, 2)
	f.compressed = 1
	f.body = []uint32{
		0xFF0000AA, 0xFF0000BB, 0xFF0000CC, nextSliceFlag,
		codeFlag, 2, 0x800000DD, 0xFF0000EE, nextSliceFlag,
	}
	var rec recorder
	if err := Decode(f.bytes(), rec.declareSize, rec.setVoxel); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	// grid order is (x, slice, y)
	want := []voxelCall{
		{1, 1, 1, 0xAA, 0, 0, 0xFF},
		{2, 1, 1, 0xBB, 0, 0, 0xFF},
		{1, 1, 2, 0xCC, 0, 0, 0xFF},
		{1, 2, 1, 0xDD, 0, 0, 0x80},
		{2, 2, 1, 0xDD, 0, 0, 0x80},
		{1, 2, 2, 0xEE, 0, 0, 0xFF},
	}
	if len(rec.voxels) != len(want) {
		t.Fatalf("got %d voxels, want %d", len(rec.voxels), len(want))
	}
	for i := range want {
		if rec.voxels[i] != want[i] {
			t.Fatalf("voxel %d: got %+v, want %+v", i, rec.voxels[i], want[i])
		}
	}
}

func TestDecode_CompressedEmptyRun(t *testing.T) {
	f := validFile(2, 2, 1)
	f.compressed = 1
	f.body = []uint32{codeFlag, 0, 0xFFFFFFFF, nextSliceFlag}
	var rec recorder
	if err := Decode(f.bytes(), rec.declareSize, rec.setVoxel); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(rec.voxels) != 0 {
		t.Fatalf("got %d voxels from a zero-length run", len(rec.voxels))
	}
}

func TestDecode_TruncatedHeader(t *testing.T) {
	data := validFile(1, 1, 1).bytes()[:8]
	var rec recorder
	err := Decode(data, rec.declareSize, rec.setVoxel)
	if !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("got %v, want ErrTruncatedInput", err)
	}
	if len(rec.sizes) != 0 || len(rec.voxels) != 0 {
		t.Fatalf("callbacks fired on truncated header")
	}
}

func TestDecode_TruncatedAtEveryHeaderByte(t *testing.T) {
	full := validFile(1, 1, 1).bytes()
	for n := 0; n < len(full); n++ {
		var rec recorder
		if err := Decode(full[:n], rec.declareSize, rec.setVoxel); !errors.Is(err, ErrTruncatedInput) {
			t.Fatalf("len %d: got %v, want ErrTruncatedInput", n, err)
		}
	}
}

func TestDecode_TruncatedUncompressedBody(t *testing.T) {
	f := validFile(2, 2, 1)
	f.body = []uint32{1, 1, 1}
	var rec recorder
	err := Decode(f.bytes(), rec.declareSize, rec.setVoxel)
	if !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("got %v, want ErrTruncatedInput", err)
	}
	if len(rec.voxels) != 3 {
		t.Fatalf("got %d voxels before truncation, want 3", len(rec.voxels))
	}
}

func TestDecode_CompressedSliceWithoutTerminator(t *testing.T) {
	cases := map[string][]uint32{
		"literal":      {0xFF0000FF},
		"run":          {codeFlag, 2, 0xFF0000FF},
		"run length":   {codeFlag},
		"second slice": {nextSliceFlag},
	}
	for name, body := range cases {
		f := validFile(4, 4, 2)
		f.compressed = 1
		f.body = body
		var rec recorder
		if err := Decode(f.bytes(), rec.declareSize, rec.setVoxel); !errors.Is(err, ErrTruncatedInput) {
			t.Fatalf("%s: got %v, want ErrTruncatedInput", name, err)
		}
	}
}

func TestDecode_CompressedZeroWidth(t *testing.T) {
	f := validFile(0, 1, 1)
	f.compressed = 1
	f.body = []uint32{0xFF0000FF, nextSliceFlag}
	var rec recorder
	if err := Decode(f.bytes(), rec.declareSize, rec.setVoxel); !errors.Is(err, ErrMalformedBody) {
		t.Fatalf("got %v, want ErrMalformedBody", err)
	}
}

func TestDecode_NewerVersionWarnsAndContinues(t *testing.T) {
	var warnings []string
	f := validFile(1, 1, 1)
	f.version = 0x04030201 // 1.2.3.4
	f.body = []uint32{0xFF0000FF}
	var rec recorder
	if _, err := quietDecoder(&warnings).Decode(f.bytes(), rec.declareSize, rec.setVoxel); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "1.2.3.4") {
		t.Fatalf("unexpected warnings: %q", warnings)
	}
	if len(rec.voxels) != 1 {
		t.Fatalf("got %d voxels, want 1", len(rec.voxels))
	}
}

func TestDecode_SupportedVersionsDoNotWarn(t *testing.T) {
	for _, v := range []uint32{0x00000101, 0xFFFF0101, 0x00000001, 0x00000300} {
		var warnings []string
		f := validFile(1, 1, 1)
		f.version = v
		f.body = []uint32{0}
		var rec recorder
		if _, err := quietDecoder(&warnings).Decode(f.bytes(), rec.declareSize, rec.setVoxel); err != nil {
			t.Fatalf("version %08x: %v", v, err)
		}
		if len(warnings) != 0 {
			t.Fatalf("version %08x: unexpected warnings %q", v, warnings)
		}
	}
}

func TestDecode_ConsumerAbort(t *testing.T) {
	stop := errors.New("stop")
	f := validFile(2, 1, 1)
	f.body = []uint32{1, 1}
	calls := 0
	err := Decode(f.bytes(),
		func(x, y, z uint32) error { return nil },
		func(x, y, z uint32, r, g, b, a uint8) error {
			calls++
			return stop
		})
	if !errors.Is(err, ErrAbortedByConsumer) || !errors.Is(err, stop) {
		t.Fatalf("got %v, want ErrAbortedByConsumer wrapping stop", err)
	}
	if calls != 1 {
		t.Fatalf("decode continued after abort: %d calls", calls)
	}

	err = Decode(f.bytes(),
		func(x, y, z uint32) error { return stop },
		func(x, y, z uint32, r, g, b, a uint8) error {
			t.Fatalf("voxel reported after size was rejected")
			return nil
		})
	if !errors.Is(err, ErrAbortedByConsumer) {
		t.Fatalf("got %v, want ErrAbortedByConsumer", err)
	}
}

func TestDecodeWord(t *testing.T) {
	c := decodeWord(0x11223344, RGBA)
	if c.R != 0x44 || c.G != 0x33 || c.B != 0x22 || c.A != 0x11 {
		t.Fatalf("RGBA: got %+v", c)
	}
	c = decodeWord(0x11223344, BGRA)
	if c.R != 0x22 || c.G != 0x33 || c.B != 0x44 || c.A != 0x11 {
		t.Fatalf("BGRA: got %+v", c)
	}
}

func TestDecodeBody_BGRA(t *testing.T) {
	hdr := Header{SizeX: 1, SizeY: 1, SizeZ: 1}
	body := binary.LittleEndian.AppendUint32(nil, 0x80102030)
	var rec recorder
	if err := decodeRaw(newByteReader(body), hdr, BGRA, rec.setVoxel); err != nil {
		t.Fatalf("raw: %v", err)
	}
	body = nil
	for _, w := range []uint32{0x80102030, nextSliceFlag} {
		body = binary.LittleEndian.AppendUint32(body, w)
	}
	if err := decodeCompressed(newByteReader(body), hdr, BGRA, rec.setVoxel); err != nil {
		t.Fatalf("compressed: %v", err)
	}
	want := []voxelCall{{0, 0, 0, 0x10, 0x20, 0x30, 0x80}, {1, 1, 1, 0x10, 0x20, 0x30, 0x80}}
	for i := range want {
		if rec.voxels[i] != want[i] {
			t.Fatalf("voxel %d: got %+v, want %+v", i, rec.voxels[i], want[i])
		}
	}
}

func TestDecodeHeader(t *testing.T) {
	f := validFile(5, 6, 7)
	f.compressed = 1
	var warnings []string
	hdr, err := quietDecoder(&warnings).DecodeHeader(f.bytes())
	if err != nil {
		t.Fatalf("DecodeHeader failed: %v", err)
	}
	if !hdr.Compressed || hdr.SizeX != 5 || hdr.SizeY != 6 || hdr.SizeZ != 7 {
		t.Fatalf("unexpected header %+v", hdr)
	}
	if hdr.Version.String() != "1.1.0.0" {
		t.Fatalf("version %s, want 1.1.0.0", hdr.Version)
	}
	if x, y, z := hdr.GridSize(); x != 5 || y != 7 || z != 6 {
		t.Fatalf("GridSize = %d,%d,%d", x, y, z)
	}
}
