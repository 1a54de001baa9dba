package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meshProgram() *Program {
	return &Program{
		ID:         1,
		Attributes: map[string]int32{"a_position": 0, "a_normal": 1},
		Uniforms:   map[string]int32{"u_world": 0},
	}
}

func TestCheckProgram(t *testing.T) {
	assert.NoError(t, CheckProgram(meshProgram()))

	p := meshProgram()
	delete(p.Attributes, "a_normal")
	assert.ErrorIs(t, CheckProgram(p), ErrAttributeMismatch)
}

func TestCheckBinding(t *testing.T) {
	bs := &BufferSet{
		Buffers:     map[string]uint32{"position": 1, "normal": 2, "texcoord": 3},
		Sizes:       map[string]int{"position": 3, "normal": 3, "texcoord": 2},
		VertexCount: 3,
	}

	inputs, err := CheckBinding(bs, meshProgram())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a_position": "position", "a_normal": "normal"}, inputs)

	t.Run("missing buffer", func(t *testing.T) {
		p := meshProgram()
		p.Attributes["a_color"] = 2
		_, err := CheckBinding(bs, p)
		assert.ErrorIs(t, err, ErrAttributeMismatch)
	})

	t.Run("unprefixed input", func(t *testing.T) {
		p := meshProgram()
		p.Attributes["position"] = 3
		_, err := CheckBinding(bs, p)
		assert.ErrorIs(t, err, ErrAttributeMismatch)
	})

	t.Run("wrong width", func(t *testing.T) {
		narrow := *bs
		narrow.Sizes = map[string]int{"position": 2, "normal": 3}
		_, err := CheckBinding(&narrow, meshProgram())
		assert.ErrorIs(t, err, ErrAttributeMismatch)
	})
}

func TestDrawCountAndAspect(t *testing.T) {
	assert.Equal(t, 3, (&BufferSet{VertexCount: 3}).DrawCount())
	assert.Equal(t, 36, (&BufferSet{VertexCount: 24, IndexCount: 36}).DrawCount())

	assert.Equal(t, float32(2), Size{Width: 200, Height: 100}.Aspect())
	assert.Equal(t, float32(1), Size{}.Aspect())
}
