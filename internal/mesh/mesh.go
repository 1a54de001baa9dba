package mesh

import (
	"errors"
	"fmt"
	gomath "math"
)

// ErrInvalid reports mesh data that breaks the array invariants.
var ErrInvalid = errors.New("invalid mesh data")

// Attribute returns the array stored under an attribute name, or nil.
func (d *Data) Attribute(name string) []float32 {
	switch name {
	case Position:
		return d.Position
	case Normal:
		return d.Normal
	case TexCoord:
		return d.TexCoord
	}
	return nil
}

// VertexCount returns the number of vertices N.
func (d *Data) VertexCount() int {
	return len(d.Position) / 3
}

// Indexed reports whether the mesh is drawn through an index array.
func (d *Data) Indexed() bool {
	return len(d.Indices) > 0
}

// DrawCount returns how many vertices one draw call renders.
func (d *Data) DrawCount() int {
	if d.Indexed() {
		return len(d.Indices)
	}
	return d.VertexCount()
}

// Validate checks that every present array agrees on the vertex count
// and that all indices are in range.
func (d *Data) Validate() error {
	if len(d.Position) == 0 {
		return fmt.Errorf("%w: no vertex positions", ErrInvalid)
	}
	n := d.VertexCount()
	for _, a := range Attributes {
		arr := d.Attribute(a.Name)
		if len(arr) == 0 {
			continue
		}
		if len(arr)%a.Size != 0 {
			return fmt.Errorf("%w: %s has %d values, not a multiple of %d", ErrInvalid, a.Name, len(arr), a.Size)
		}
		if got := len(arr) / a.Size; got != n {
			return fmt.Errorf("%w: %s has %d vertices, position has %d", ErrInvalid, a.Name, got, n)
		}
	}
	for i, idx := range d.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalid, idx, i, n)
		}
	}
	return nil
}

// Bounds computes the axis-aligned bounding box of the positions.
func (d *Data) Bounds() Bounds {
	b := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	if len(d.Position) < 3 {
		return Bounds{}
	}
	for i := 0; i+2 < len(d.Position); i += 3 {
		updateBounds(&b, [3]float32{d.Position[i], d.Position[i+1], d.Position[i+2]})
	}
	return b
}

// Center returns the middle of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Radius returns the radius of the sphere enclosing the box.
func (b Bounds) Radius() float32 {
	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	dz := b.Max[2] - b.Min[2]
	return sqrtf(dx*dx+dy*dy+dz*dz) / 2
}

// EnsureNormals fills Normal with area-weighted vertex normals when the
// source carried none. Vertices sharing a position are smoothed together.
// Returns true if normals were generated.
func (d *Data) EnsureNormals() bool {
	if len(d.Normal) > 0 || len(d.Position) == 0 {
		return false
	}

	n := d.VertexCount()
	normals := make([][3]float32, n)

	addFace := func(a, b, c int) {
		if a >= n || b >= n || c >= n {
			return
		}
		p0 := d.vertex(a)
		p1 := d.vertex(b)
		p2 := d.vertex(c)
		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		// Unnormalized cross product: its length weights by face area
		fn := Cross(e1, e2)
		for _, v := range [3]int{a, b, c} {
			normals[v][0] += fn[0]
			normals[v][1] += fn[1]
			normals[v][2] += fn[2]
		}
	}

	if d.Indexed() {
		for i := 0; i+2 < len(d.Indices); i += 3 {
			addFace(int(d.Indices[i]), int(d.Indices[i+1]), int(d.Indices[i+2]))
		}
	} else {
		for i := 0; i+2 < n; i += 3 {
			addFace(i, i+1, i+2)
		}
	}

	smoothNormals(d.Position, normals)

	d.Normal = make([]float32, 0, n*3)
	for _, nv := range normals {
		u := Normalize(nv)
		d.Normal = append(d.Normal, u[0], u[1], u[2])
	}
	d.GeneratedNormals = true
	return true
}

func (d *Data) vertex(i int) [3]float32 {
	return [3]float32{d.Position[i*3], d.Position[i*3+1], d.Position[i*3+2]}
}

// smoothNormals sums the accumulated normals of vertices at the same position.
// Positions are snapped to a grid of epsilon and keyed as float64, which
// holds any float32 coordinate without overflow.
func smoothNormals(positions []float32, normals [][3]float32) {
	const epsilon = 0.001

	quantize := func(v float32) float64 {
		return gomath.Round(float64(v) / epsilon)
	}

	// Group vertices by quantized position for O(n) lookup
	posMap := make(map[[3]float64][]int)
	for i := range normals {
		key := [3]float64{
			quantize(positions[i*3]),
			quantize(positions[i*3+1]),
			quantize(positions[i*3+2]),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}
		var sum [3]float32
		for _, idx := range idxs {
			sum[0] += normals[idx][0]
			sum[1] += normals[idx][1]
			sum[2] += normals[idx][2]
		}
		for _, idx := range idxs {
			normals[idx] = sum
		}
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Cross computes the cross product of two 3D vectors.
func Cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Normalize returns a unit vector in the same direction as v.
// Degenerate vectors map to +Y.
func Normalize(v [3]float32) [3]float32 {
	length := sqrtf(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if length < 1e-12 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / length, v[1] / length, v[2] / length}
}

func sqrtf(x float32) float32 {
	return float32(gomath.Sqrt(float64(x)))
}
