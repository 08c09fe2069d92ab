package qb

import "image/color"

// Vertex is a mesh corner in grid units with its voxel color.
// Normal is the outward unit normal of the face the corner belongs to.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	Color    color.RGBA
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

type dirSpec struct {
	normal [3]float32
	u, v   int
	du, dv [3]int
}

var directions = []dirSpec{
	{[3]float32{1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{-1, 0, 0}, 1, 2, [3]int{0, 1, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, -1, 0}, 0, 2, [3]int{1, 0, 0}, [3]int{0, 0, 1}},
	{[3]float32{0, 0, 1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
	{[3]float32{0, 0, -1}, 0, 1, [3]int{1, 0, 0}, [3]int{0, 1, 0}},
}

func addQuad(mesh *Mesh, dir dirSpec, start [3]int, w, h int, c color.RGBA, perp int) {
	base := [3]float32{}
	base[perp] = float32(start[0])
	if dir.normal[perp] > 0 {
		base[perp] += 1
	}
	base[dir.u] = float32(start[1])
	base[dir.v] = float32(start[2])

	corner := func(hu, wv int) Vertex {
		p := base
		for i := 0; i < 3; i++ {
			p[i] += float32(dir.du[i]*hu + dir.dv[i]*wv)
		}
		return Vertex{Position: p, Normal: dir.normal, Color: c}
	}
	verts := [4]Vertex{corner(0, 0), corner(h, 0), corner(h, w), corner(0, w)}

	swap := (dir.normal[perp] < 0) != (perp == 1)
	if swap {
		verts[1], verts[3] = verts[3], verts[1]
	}

	baseIdx := uint32(len(mesh.Vertices))
	mesh.Vertices = append(mesh.Vertices, verts[:]...)
	mesh.Indices = append(mesh.Indices, baseIdx, baseIdx+1, baseIdx+2, baseIdx, baseIdx+2, baseIdx+3)
}

// GenerateMesh builds a greedy-merged surface of the filled cells of grid.
// Adjacent faces of the same color are merged into one quad.
func GenerateMesh(grid *Grid) *Mesh {
	mesh := &Mesh{}
	dims := [3]int{int(grid.W), int(grid.H), int(grid.D)}

	for _, dir := range directions {
		perp := 3 - dir.u - dir.v
		nu, nv := dims[dir.u], dims[dir.v]
		// empty Voxel{} marks "no face"
		mask := make([]Voxel, nu*nv)
		visited := make([]bool, nu*nv)

		for p := 0; p < dims[perp]; p++ {
			clear(mask)
			clear(visited)

			for u := 0; u < nu; u++ {
				for v := 0; v < nv; v++ {
					pos := [3]int{}
					pos[dir.u] = u
					pos[dir.v] = v
					pos[perp] = p

					voxel := grid.At(pos[0], pos[1], pos[2])
					if !voxel.Filled {
						continue
					}

					adj := pos
					if dir.normal[perp] < 0 {
						adj[perp] = p - 1
					} else {
						adj[perp] = p + 1
					}
					if !grid.At(adj[0], adj[1], adj[2]).Filled {
						mask[u*nv+v] = voxel
					}
				}
			}

			for u := 0; u < nu; u++ {
				for v := 0; v < nv; {
					m := mask[u*nv+v]
					if !m.Filled || visited[u*nv+v] {
						v++
						continue
					}
					width := 1
					for w := v + 1; w < nv && mask[u*nv+w] == m && !visited[u*nv+w]; w++ {
						width++
					}
					height := 1
					stop := false
					for h := u + 1; h < nu && !stop; h++ {
						for w := v; w < v+width; w++ {
							if mask[h*nv+w] != m || visited[h*nv+w] {
								stop = true
								break
							}
						}
						if !stop {
							height++
						}
					}
					for hu := u; hu < u+height; hu++ {
						for hv := v; hv < v+width; hv++ {
							visited[hu*nv+hv] = true
						}
					}
					addQuad(mesh, dir, [3]int{p, u, v}, width, height, m.Color, perp)
					v += width
				}
			}
		}
	}
	return mesh
}
