package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle() *Data {
	return &Data{
		Name:     "tri",
		Position: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
	}
}

func TestInputName(t *testing.T) {
	assert.Equal(t, "a_position", InputName(Position))
	assert.Equal(t, "a_normal", InputName(Normal))

	spec, ok := Spec(TexCoord)
	require.True(t, ok)
	assert.Equal(t, 2, spec.Size)
	assert.False(t, spec.Required)

	_, ok = Spec("color")
	assert.False(t, ok)
}

func TestDrawCount(t *testing.T) {
	d := triangle()
	assert.Equal(t, 3, d.VertexCount())
	assert.False(t, d.Indexed())
	assert.Equal(t, 3, d.DrawCount())

	d.Indices = []uint32{0, 1, 2, 2, 1, 0}
	assert.True(t, d.Indexed())
	assert.Equal(t, 6, d.DrawCount())
}

func TestValidate(t *testing.T) {
	d := triangle()
	d.Normal = []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	assert.NoError(t, d.Validate())

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, (&Data{}).Validate(), ErrInvalid)
	})

	t.Run("normal count mismatch", func(t *testing.T) {
		bad := triangle()
		bad.Normal = []float32{0, 0, 1}
		assert.ErrorIs(t, bad.Validate(), ErrInvalid)
	})

	t.Run("ragged texcoords", func(t *testing.T) {
		bad := triangle()
		bad.TexCoord = []float32{0, 0, 1}
		assert.ErrorIs(t, bad.Validate(), ErrInvalid)
	})

	t.Run("index out of range", func(t *testing.T) {
		bad := triangle()
		bad.Indices = []uint32{0, 1, 3}
		assert.ErrorIs(t, bad.Validate(), ErrInvalid)
	})
}

func TestBounds(t *testing.T) {
	d := &Data{Position: []float32{-1, 0, 2, 3, -2, 0, 0, 4, 1}}
	b := d.Bounds()

	assert.Equal(t, [3]float32{-1, -2, 0}, b.Min)
	assert.Equal(t, [3]float32{3, 4, 2}, b.Max)
	assert.Equal(t, [3]float32{1, 1, 1}, b.Center())
	assert.InDelta(t, 3.7417, b.Radius(), 1e-3)

	assert.Equal(t, Bounds{}, (&Data{}).Bounds())
}

func TestEnsureNormalsFlatTriangle(t *testing.T) {
	d := triangle()
	require.True(t, d.EnsureNormals())
	assert.True(t, d.GeneratedNormals)
	require.Len(t, d.Normal, 9)

	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, d.Normal[i*3], 1e-6)
		assert.InDelta(t, 0, d.Normal[i*3+1], 1e-6)
		assert.InDelta(t, 1, d.Normal[i*3+2], 1e-6)
	}
	assert.NoError(t, d.Validate())

	// Existing normals are kept
	assert.False(t, d.EnsureNormals())
}

func TestEnsureNormalsSmoothsSharedPositions(t *testing.T) {
	// Two triangles folded along the X axis, unindexed so the edge
	// vertices are duplicated
	d := &Data{Position: []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0, // faces +Z
		1, 0, 0, 0, 0, 0, 0, 0, 1, // faces +Y
	}}
	require.True(t, d.EnsureNormals())

	// Vertex 0 and vertex 4 share a position and receive the same normal
	assert.InDeltaSlice(t, d.Normal[0:3], d.Normal[12:15], 1e-6)
	assert.InDelta(t, 0.7071, d.Normal[1], 1e-3)
	assert.InDelta(t, 0.7071, d.Normal[2], 1e-3)

	// Vertex 2 is on the +Z face only
	assert.InDeltaSlice(t, []float32{0, 0, 1}, d.Normal[6:9], 1e-6)
}

func TestEnsureNormalsLargeCoordinates(t *testing.T) {
	// Survey-grid sized coordinates, two disjoint faces pointing opposite ways
	d := &Data{Position: []float32{
		300000, 0, 0, 300001, 0, 0, 300000, 1, 0, // faces +Z
		500000, 0, 0, 500000, 1, 0, 500001, 0, 0, // faces -Z
	}}
	require.True(t, d.EnsureNormals())

	for i := 0; i < 3; i++ {
		assert.InDeltaSlice(t, []float32{0, 0, 1}, d.Normal[i*3:i*3+3], 1e-6)
		assert.InDeltaSlice(t, []float32{0, 0, -1}, d.Normal[9+i*3:9+i*3+3], 1e-6)
	}
}

func TestEnsureNormalsIndexed(t *testing.T) {
	d := &Data{
		Position: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
	require.True(t, d.EnsureNormals())
	for i := 0; i < 4; i++ {
		assert.InDelta(t, 1, d.Normal[i*3+2], 1e-6)
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	assert.Equal(t, [3]float32{0, 1, 0}, Normalize([3]float32{}))
	assert.Equal(t, [3]float32{0, 0, 1}, Cross([3]float32{1, 0, 0}, [3]float32{0, 1, 0}))
}
