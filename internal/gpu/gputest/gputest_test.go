package gputest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/mesh"
)

const vert = `#version 410 core
layout(location = 0) in vec4 a_position;
in vec3 a_normal;
uniform mat4 u_world;
void main() {}
`

const frag = `#version 410 core
uniform vec4 u_diffuse;
out vec4 outColor;
void main() {}
`

func TestCompileReadsDeclarations(t *testing.T) {
	dev := NewDevice()
	p, err := dev.CompileProgram(vert, frag)
	require.NoError(t, err)

	assert.Equal(t, []string{"a_normal", "a_position"}, p.Inputs())
	assert.Contains(t, p.Uniforms, "u_world")
	assert.Contains(t, p.Uniforms, "u_diffuse")
	assert.Equal(t, 1, dev.Live().Programs)

	dev.FailCompile(errors.New("syntax error"))
	_, err = dev.CompileProgram(vert, frag)
	assert.ErrorIs(t, err, gpu.ErrCompile)
	assert.Equal(t, 2, dev.Compiles())

	dev.DeleteProgram(p)
	assert.Equal(t, Counts{}, dev.Live())
}

func TestSurfaceLifecycle(t *testing.T) {
	dev := NewDevice()
	p, err := dev.CompileProgram(vert, frag)
	require.NoError(t, err)

	s := dev.NewSurface("main", 320, 240)
	ctx, err := s.Acquire()
	require.NoError(t, err)

	_, err = s.Acquire()
	assert.ErrorIs(t, err, gpu.ErrContextUnavailable)

	data := &mesh.Data{
		Position: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normal:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
	}
	bs, err := ctx.UploadBuffers(data)
	require.NoError(t, err)
	b, err := ctx.BindAttributes(bs, p)
	require.NoError(t, err)

	assert.Equal(t, gpu.Size{Width: 320, Height: 240}, ctx.ResizeToDisplay())
	ctx.Begin(gpu.State{DepthTest: true})
	ctx.UseProgram(p)
	ctx.SetUniforms(p, gpu.Uniforms{"u_world": float32(1), "u_unused": float32(2)})
	ctx.Draw(b)
	ctx.End()

	draws := dev.DrawsFor("main")
	require.Len(t, draws, 1)
	assert.Equal(t, 3, draws[0].Count)
	assert.Contains(t, draws[0].Uniforms, "u_world")
	assert.NotContains(t, draws[0].Uniforms, "u_unused")

	assert.Equal(t, Counts{Programs: 1, Buffers: 2, Bindings: 1, Contexts: 1}, dev.Live())

	assert.False(t, s.Blank())

	ctx.DeleteBinding(b)
	ctx.DeleteBuffers(bs)
	ctx.Release()
	ctx.Release()
	assert.Equal(t, Counts{Programs: 1}, dev.Live())
	assert.False(t, s.Busy())
	assert.True(t, s.Blank())
	assert.Equal(t, 1, s.Clears())
}

func TestUploadFailure(t *testing.T) {
	dev := NewDevice()
	ctx, err := dev.NewSurface("s", 1, 1).Acquire()
	require.NoError(t, err)

	dev.FailUpload(errors.New("out of memory"))
	_, err = ctx.UploadBuffers(&mesh.Data{Position: []float32{0, 0, 0}})
	assert.ErrorIs(t, err, gpu.ErrUpload)
	assert.Equal(t, 0, dev.Live().Buffers)
}
