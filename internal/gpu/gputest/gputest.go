// Package gputest provides an in-memory gpu implementation that records
// every resource and draw, for tests that run without a GL context.
package gputest

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/mesh"
)

var (
	inputDecl   = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)
)

// Draw is one recorded draw call.
type Draw struct {
	Surface  string
	Count    int
	Indexed  bool
	Size     gpu.Size
	Uniforms gpu.Uniforms
}

// Counts reports live resources.
type Counts struct {
	Programs int
	Buffers  int
	Bindings int
	Contexts int
}

// Device is a recording fake. It is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	failCompile error
	failUpload  error

	nextID   uint32
	programs map[uint32]bool
	buffers  map[uint32]bool
	bindings map[uint32]bool
	contexts int
	compiles int
	draws    []Draw
}

// NewDevice creates an empty fake device.
func NewDevice() *Device {
	return &Device{
		programs: make(map[uint32]bool),
		buffers:  make(map[uint32]bool),
		bindings: make(map[uint32]bool),
	}
}

// FailCompile makes every following compile fail with err; nil restores success.
func (d *Device) FailCompile(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failCompile = err
}

// FailUpload makes every following buffer upload fail with err; nil restores success.
func (d *Device) FailUpload(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failUpload = err
}

// CompileProgram reads input and uniform declarations from the sources.
func (d *Device) CompileProgram(vertex, fragment string) (*gpu.Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.compiles++
	if d.failCompile != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrCompile, d.failCompile)
	}
	if vertex == "" || fragment == "" {
		return nil, fmt.Errorf("%w: empty shader source", gpu.ErrCompile)
	}

	p := &gpu.Program{
		ID:         d.id(),
		Attributes: make(map[string]int32),
		Uniforms:   make(map[string]int32),
	}
	for i, m := range inputDecl.FindAllStringSubmatch(vertex, -1) {
		p.Attributes[m[1]] = int32(i)
	}
	for _, src := range []string{vertex, fragment} {
		for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
			if _, ok := p.Uniforms[m[1]]; !ok {
				p.Uniforms[m[1]] = int32(len(p.Uniforms))
			}
		}
	}
	d.programs[p.ID] = true
	return p, nil
}

// DeleteProgram releases a program.
func (d *Device) DeleteProgram(p *gpu.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.programs, p.ID)
}

// Live returns the number of resources not yet released.
func (d *Device) Live() Counts {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Counts{
		Programs: len(d.programs),
		Buffers:  len(d.buffers),
		Bindings: len(d.bindings),
		Contexts: d.contexts,
	}
}

// Compiles returns how many compiles were attempted.
func (d *Device) Compiles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compiles
}

// Draws returns a copy of every recorded draw.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Draw, len(d.draws))
	copy(out, d.draws)
	return out
}

// DrawsFor returns the draws recorded against one surface.
func (d *Device) DrawsFor(surface string) []Draw {
	var out []Draw
	for _, dr := range d.Draws() {
		if dr.Surface == surface {
			out = append(out, dr)
		}
	}
	return out
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

// Surface is a fake render target.
type Surface struct {
	dev *Device
	id  string

	mu          sync.Mutex
	size        gpu.Size
	busy        bool
	failAcquire bool
	drawn       bool // Holds a drawn image since the last clear
	clears      int
}

// NewSurface creates a surface displayed at width x height.
func (d *Device) NewSurface(id string, width, height int) *Surface {
	return &Surface{dev: d, id: id, size: gpu.Size{Width: width, Height: height}}
}

// ID returns the surface name.
func (s *Surface) ID() string {
	return s.id
}

// SetSize changes the displayed size seen by the next ResizeToDisplay.
func (s *Surface) SetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = gpu.Size{Width: width, Height: height}
}

// FailAcquire makes the surface refuse to hand out contexts.
func (s *Surface) FailAcquire(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAcquire = fail
}

// Busy reports whether a context is currently held.
func (s *Surface) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Blank reports whether the surface shows only its background.
func (s *Surface) Blank() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.drawn
}

// Clears returns how many times a released context blanked the surface.
func (s *Surface) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// Acquire hands out a context; only one may be held at a time.
func (s *Surface) Acquire() (gpu.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAcquire {
		return nil, fmt.Errorf("%w: surface %s has no context", gpu.ErrContextUnavailable, s.id)
	}
	if s.busy {
		return nil, fmt.Errorf("%w: surface %s in use", gpu.ErrContextUnavailable, s.id)
	}
	s.busy = true

	s.dev.mu.Lock()
	s.dev.contexts++
	s.dev.mu.Unlock()
	return &fakeContext{dev: s.dev, surface: s}, nil
}

var errNotInFrame = errors.New("draw outside Begin/End")

type fakeContext struct {
	dev     *Device
	surface *Surface

	size     gpu.Size
	inFrame  bool
	program  *gpu.Program
	uniforms gpu.Uniforms
	released bool
}

func (c *fakeContext) ResizeToDisplay() gpu.Size {
	c.surface.mu.Lock()
	defer c.surface.mu.Unlock()
	c.size = c.surface.size
	return c.size
}

func (c *fakeContext) Begin(gpu.State) {
	c.inFrame = true
	c.uniforms = make(gpu.Uniforms)
}

func (c *fakeContext) UseProgram(p *gpu.Program) {
	c.program = p
}

func (c *fakeContext) SetUniforms(p *gpu.Program, u gpu.Uniforms) {
	for name, v := range u {
		if _, ok := p.Uniforms[name]; ok {
			c.uniforms[name] = v
		}
	}
}

func (c *fakeContext) UploadBuffers(data *mesh.Data) (*gpu.BufferSet, error) {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()

	if c.dev.failUpload != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrUpload, c.dev.failUpload)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", gpu.ErrUpload, err)
	}

	bs := &gpu.BufferSet{
		Buffers:     make(map[string]uint32),
		Sizes:       make(map[string]int),
		VertexCount: data.VertexCount(),
	}
	for _, a := range mesh.Attributes {
		if len(data.Attribute(a.Name)) == 0 {
			continue
		}
		id := c.dev.id()
		c.dev.buffers[id] = true
		bs.Buffers[a.Name] = id
		bs.Sizes[a.Name] = a.Size
	}
	if data.Indexed() {
		bs.IndexBuffer = c.dev.id()
		c.dev.buffers[bs.IndexBuffer] = true
		bs.IndexCount = len(data.Indices)
	}
	return bs, nil
}

func (c *fakeContext) BindAttributes(bs *gpu.BufferSet, p *gpu.Program) (*gpu.Binding, error) {
	if _, err := gpu.CheckBinding(bs, p); err != nil {
		return nil, err
	}
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	b := &gpu.Binding{VAO: c.dev.id(), Count: bs.DrawCount(), Indexed: bs.IndexCount > 0}
	c.dev.bindings[b.VAO] = true
	return b, nil
}

func (c *fakeContext) Draw(b *gpu.Binding) {
	if !c.inFrame {
		panic(errNotInFrame)
	}
	snapshot := make(gpu.Uniforms, len(c.uniforms))
	for k, v := range c.uniforms {
		snapshot[k] = v
	}

	c.surface.mu.Lock()
	c.surface.drawn = true
	c.surface.mu.Unlock()

	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	if !c.dev.bindings[b.VAO] {
		panic(fmt.Sprintf("draw with released binding %d", b.VAO))
	}
	c.dev.draws = append(c.dev.draws, Draw{
		Surface:  c.surface.id,
		Count:    b.Count,
		Indexed:  b.Indexed,
		Size:     c.size,
		Uniforms: snapshot,
	})
}

func (c *fakeContext) End() {
	c.inFrame = false
}

func (c *fakeContext) DeleteBinding(b *gpu.Binding) {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	delete(c.dev.bindings, b.VAO)
}

func (c *fakeContext) DeleteBuffers(bs *gpu.BufferSet) {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	for _, id := range bs.Buffers {
		delete(c.dev.buffers, id)
	}
	if bs.IndexBuffer != 0 {
		delete(c.dev.buffers, bs.IndexBuffer)
	}
}

func (c *fakeContext) Release() {
	if c.released {
		return
	}
	c.released = true

	c.surface.mu.Lock()
	c.surface.busy = false
	c.surface.drawn = false
	c.surface.clears++
	c.surface.mu.Unlock()

	c.dev.mu.Lock()
	c.dev.contexts--
	c.dev.mu.Unlock()
}
