// Package gpu defines the narrow graphics interface the viewer renders through.
// Every resource is an explicit handle owned by whoever created it.
package gpu

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Faultbox/meshview/internal/mesh"
)

var (
	// ErrContextUnavailable is returned when a surface cannot provide a drawing context.
	ErrContextUnavailable = errors.New("drawing context unavailable")
	// ErrCompile is returned when a shader fails to compile or link.
	ErrCompile = errors.New("shader compile")
	// ErrUpload is returned when vertex data cannot be stored in GPU buffers.
	ErrUpload = errors.New("buffer upload")
	// ErrAttributeMismatch is returned when a program input has no matching buffer.
	ErrAttributeMismatch = errors.New("attribute mismatch")
)

// Device creates resources shared by every surface.
type Device interface {
	CompileProgram(vertex, fragment string) (*Program, error)
	DeleteProgram(p *Program)
}

// Surface is a render target that can hand out one drawing context at a time.
type Surface interface {
	ID() string
	Acquire() (Context, error)
}

// Context issues draw work against one surface. It is only used from the
// thread that owns the graphics API.
type Context interface {
	// ResizeToDisplay matches the backing store to the displayed size and returns it.
	ResizeToDisplay() Size
	Begin(state State)
	UseProgram(p *Program)
	SetUniforms(p *Program, u Uniforms)
	UploadBuffers(data *mesh.Data) (*BufferSet, error)
	BindAttributes(bs *BufferSet, p *Program) (*Binding, error)
	Draw(b *Binding)
	End()
	DeleteBinding(b *Binding)
	DeleteBuffers(bs *BufferSet)
	// Release clears the surface to its background and frees it for the next session.
	Release()
}

// Size is a drawable size in pixels.
type Size struct {
	Width  int
	Height int
}

// Aspect returns width over height, or 1 for an empty size.
func (s Size) Aspect() float32 {
	if s.Width <= 0 || s.Height <= 0 {
		return 1
	}
	return float32(s.Width) / float32(s.Height)
}

// State holds the fixed-function switches set at the start of a frame.
type State struct {
	DepthTest bool
	CullFace  bool
}

// Uniforms maps uniform names to values (mgl32 vectors and matrices, float32).
type Uniforms map[string]any

// Program is a linked shader pair with its active input and uniform tables.
type Program struct {
	ID         uint32
	Attributes map[string]int32 // input name -> location
	Uniforms   map[string]int32 // uniform name -> location
}

// Inputs returns the program's active input names in sorted order.
func (p *Program) Inputs() []string {
	names := make([]string, 0, len(p.Attributes))
	for name := range p.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BufferSet holds one vertex buffer per uploaded attribute plus an optional index buffer.
type BufferSet struct {
	Buffers     map[string]uint32 // attribute name -> buffer
	Sizes       map[string]int    // attribute name -> components per vertex
	IndexBuffer uint32
	VertexCount int
	IndexCount  int
}

// DrawCount returns the number of vertices one draw renders.
func (bs *BufferSet) DrawCount() int {
	if bs.IndexCount > 0 {
		return bs.IndexCount
	}
	return bs.VertexCount
}

// Binding connects a buffer set to a program's inputs.
type Binding struct {
	VAO     uint32
	Count   int
	Indexed bool
}

// CheckProgram verifies that a program exposes every required attribute input.
func CheckProgram(p *Program) error {
	for _, a := range mesh.Attributes {
		if !a.Required {
			continue
		}
		if _, ok := p.Attributes[mesh.InputName(a.Name)]; !ok {
			return fmt.Errorf("%w: program has no input %s", ErrAttributeMismatch, mesh.InputName(a.Name))
		}
	}
	return nil
}

// CheckBinding verifies that every active program input has a buffer of the
// expected width. The returned map gives the buffer for each input.
func CheckBinding(bs *BufferSet, p *Program) (map[string]string, error) {
	inputs := make(map[string]string, len(p.Attributes))
	for _, input := range p.Inputs() {
		name, ok := strings.CutPrefix(input, "a_")
		if !ok {
			return nil, fmt.Errorf("%w: input %s does not follow the a_ naming", ErrAttributeMismatch, input)
		}
		if _, ok := bs.Buffers[name]; !ok {
			return nil, fmt.Errorf("%w: no %s buffer for input %s", ErrAttributeMismatch, name, input)
		}
		if spec, ok := mesh.Spec(name); ok && bs.Sizes[name] != spec.Size {
			return nil, fmt.Errorf("%w: %s buffer has %d components, want %d", ErrAttributeMismatch, name, bs.Sizes[name], spec.Size)
		}
		inputs[input] = name
	}
	return inputs, nil
}
