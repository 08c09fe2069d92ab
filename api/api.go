package api

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/voxelsplace/qbtool/qb"
)

// DefaultGenerator is written into the glTF asset block.
const DefaultGenerator = "QB -> GLB"

// GLBOptions controls how a grid becomes a glTF document.
type GLBOptions struct {
	Generator string
	// Scale is the edge length of one voxel in glTF units.
	Scale float32
}

func (o GLBOptions) withDefaults() GLBOptions {
	if o.Generator == "" {
		o.Generator = DefaultGenerator
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	return o
}

// Info summarises a decoded .qb image.
type Info struct {
	Version    string
	Compressed bool
	// FileSize is in the file's axis order, GridSize in grid order (Y and Z swapped).
	FileSize [3]uint32
	GridSize [3]uint32
	Filled   int
	Clipped  int
	Checksum uint64
}

// QBToGLB decodes .qb (or .qb.zst) bytes and returns a binary glTF using a greedy mesh.
func QBToGLB(qbBytes []byte) ([]byte, error) {
	return QBToGLBWithOptions(qbBytes, GLBOptions{})
}

// QBToGLBWithOptions is QBToGLB with a custom generator string and voxel scale.
func QBToGLBWithOptions(qbBytes []byte, opts GLBOptions) ([]byte, error) {
	grid, err := qb.LoadGridFromBytes(qbBytes)
	if err != nil {
		return nil, err
	}
	doc, err := GridToDocument(grid, opts)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	enc := gltf.NewEncoder(&out)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// GridToDocument meshes grid and builds a single-node glTF document with
// per-vertex colors. The material blends when any voxel is translucent.
func GridToDocument(grid *qb.Grid, opts GLBOptions) (*gltf.Document, error) {
	opts = opts.withDefaults()
	mesh := qb.GenerateMesh(grid)
	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("model has no visible voxels")
	}

	positions := make([][3]float32, len(mesh.Vertices))
	normals := make([][3]float32, len(mesh.Vertices))
	colors := make([][4]float32, len(mesh.Vertices))
	hasAlpha := false
	for i, v := range mesh.Vertices {
		positions[i] = [3]float32{v.Position[0] * opts.Scale, v.Position[1] * opts.Scale, v.Position[2] * opts.Scale}
		normals[i] = v.Normal
		colors[i] = [4]float32{
			float32(v.Color.R) / 255,
			float32(v.Color.G) / 255,
			float32(v.Color.B) / 255,
			float32(v.Color.A) / 255,
		}
		if v.Color.A < 255 {
			hasAlpha = true
		}
	}
	indices := make([]uint32, len(mesh.Indices))
	copy(indices, mesh.Indices)

	doc := gltf.NewDocument()
	doc.Asset.Generator = opts.Generator
	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	colorAccessor := modeler.WriteColor(doc, colors)
	indicesAccessor := modeler.WriteIndices(doc, indices)
	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION: posAccessor,
			gltf.NORMAL:   normalAccessor,
			gltf.COLOR_0:  colorAccessor,
		},
		Indices:  gltf.Index(indicesAccessor),
		Material: gltf.Index(0),
	}
	// base color defaults to white, so vertex colors come through unchanged
	pbr := &gltf.PBRMetallicRoughness{MetallicFactor: gltf.Float(0), RoughnessFactor: gltf.Float(1)}
	material := &gltf.Material{PBRMetallicRoughness: pbr, AlphaMode: gltf.AlphaOpaque}
	if hasAlpha {
		material.AlphaMode = gltf.AlphaBlend
	}
	doc.Materials = []*gltf.Material{material}

	name := grid.Name
	if name == "" {
		name = "Model"
	}
	doc.Meshes = []*gltf.Mesh{{Name: name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// QBInfo decodes .qb (or .qb.zst) bytes and reports header and content statistics.
func QBInfo(qbBytes []byte) (Info, error) {
	grid, err := qb.LoadGridFromBytes(qbBytes)
	if err != nil {
		return Info{}, err
	}
	h := grid.Header
	return Info{
		Version:    h.Version.String(),
		Compressed: h.Compressed,
		FileSize:   [3]uint32{h.SizeX, h.SizeY, h.SizeZ},
		GridSize:   [3]uint32{grid.W, grid.H, grid.D},
		Filled:     grid.Filled(),
		Clipped:    grid.Clipped,
		Checksum:   grid.Checksum(),
	}, nil
}

// CompressQB wraps raw .qb bytes in a zstd frame at the default level.
func CompressQB(qbBytes []byte) ([]byte, error) {
	return qb.CompressQB(qbBytes, DefaultZstdLevel)
}

// DefaultZstdLevel is the zstd level used when none is configured.
const DefaultZstdLevel = 3
