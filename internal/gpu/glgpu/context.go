package glgpu

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/mesh"
)

// Background color of every panel.
var clearColor = [4]float32{0.1, 0.1, 0.15, 1.0}

// drawContext renders into one panel's framebuffer.
type drawContext struct {
	panel *Panel
}

func (c *drawContext) ResizeToDisplay() gpu.Size {
	d := c.panel.display
	c.panel.resize(int32(d.Width), int32(d.Height))
	return gpu.Size{Width: int(c.panel.width), Height: int(c.panel.height)}
}

func (c *drawContext) Begin(state gpu.State) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, c.panel.fbo)
	gl.Viewport(0, 0, c.panel.width, c.panel.height)
	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if state.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if state.CullFace {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
}

func (c *drawContext) UseProgram(p *gpu.Program) {
	gl.UseProgram(p.ID)
}

// SetUniforms uploads the values the program declares. Uniforms the linker
// optimized away are skipped.
func (c *drawContext) SetUniforms(p *gpu.Program, u gpu.Uniforms) {
	for name, value := range u {
		loc, ok := p.Uniforms[name]
		if !ok || loc < 0 {
			continue
		}
		switch v := value.(type) {
		case mgl32.Mat4:
			gl.UniformMatrix4fv(loc, 1, false, &v[0])
		case mgl32.Mat3:
			gl.UniformMatrix3fv(loc, 1, false, &v[0])
		case mgl32.Vec4:
			gl.Uniform4fv(loc, 1, &v[0])
		case mgl32.Vec3:
			gl.Uniform3fv(loc, 1, &v[0])
		case mgl32.Vec2:
			gl.Uniform2fv(loc, 1, &v[0])
		case float32:
			gl.Uniform1f(loc, v)
		case int32:
			gl.Uniform1i(loc, v)
		}
	}
}

// UploadBuffers stores each present attribute array in its own buffer.
func (c *drawContext) UploadBuffers(data *mesh.Data) (*gpu.BufferSet, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrUpload, err)
	}

	bs := &gpu.BufferSet{
		Buffers:     make(map[string]uint32, len(mesh.Attributes)),
		Sizes:       make(map[string]int, len(mesh.Attributes)),
		VertexCount: data.VertexCount(),
	}

	for _, a := range mesh.Attributes {
		arr := data.Attribute(a.Name)
		if len(arr) == 0 {
			continue
		}
		var buf uint32
		gl.GenBuffers(1, &buf)
		gl.BindBuffer(gl.ARRAY_BUFFER, buf)
		gl.BufferData(gl.ARRAY_BUFFER, len(arr)*4, unsafe.Pointer(&arr[0]), gl.STATIC_DRAW)
		bs.Buffers[a.Name] = buf
		bs.Sizes[a.Name] = a.Size
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if data.Indexed() {
		gl.GenBuffers(1, &bs.IndexBuffer)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, bs.IndexBuffer)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, unsafe.Pointer(&data.Indices[0]), gl.STATIC_DRAW)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
		bs.IndexCount = len(data.Indices)
	}

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		c.DeleteBuffers(bs)
		return nil, fmt.Errorf("%w: GL error 0x%x", gpu.ErrUpload, glErr)
	}
	return bs, nil
}

// BindAttributes records a vertex array connecting each program input to its buffer.
func (c *drawContext) BindAttributes(bs *gpu.BufferSet, p *gpu.Program) (*gpu.Binding, error) {
	inputs, err := gpu.CheckBinding(bs, p)
	if err != nil {
		return nil, err
	}

	b := &gpu.Binding{Count: bs.DrawCount(), Indexed: bs.IndexCount > 0}
	gl.GenVertexArrays(1, &b.VAO)
	gl.BindVertexArray(b.VAO)

	for input, name := range inputs {
		loc := p.Attributes[input]
		if loc < 0 {
			continue
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, bs.Buffers[name])
		gl.VertexAttribPointerWithOffset(uint32(loc), int32(bs.Sizes[name]), gl.FLOAT, false, 0, 0)
		gl.EnableVertexAttribArray(uint32(loc))
	}
	if b.Indexed {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, bs.IndexBuffer)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b, nil
}

func (c *drawContext) Draw(b *gpu.Binding) {
	gl.BindVertexArray(b.VAO)
	if b.Indexed {
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(b.Count), gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(b.Count))
	}
	gl.BindVertexArray(0)
}

func (c *drawContext) End() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (c *drawContext) DeleteBinding(b *gpu.Binding) {
	if b == nil || b.VAO == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &b.VAO)
	b.VAO = 0
}

func (c *drawContext) DeleteBuffers(bs *gpu.BufferSet) {
	if bs == nil {
		return
	}
	for name, buf := range bs.Buffers {
		gl.DeleteBuffers(1, &buf)
		delete(bs.Buffers, name)
	}
	if bs.IndexBuffer != 0 {
		gl.DeleteBuffers(1, &bs.IndexBuffer)
		bs.IndexBuffer = 0
	}
}

// Release blanks the panel and frees it for the next session.
func (c *drawContext) Release() {
	c.panel.clear()
	c.panel.busy = false
}
