package glgpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshview/internal/gpu"
)

// Panel is an offscreen render target with color and depth attachments.
// The window composites panels with Blit after every frame.
type Panel struct {
	id string

	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32

	// Where the panel is shown, in window pixels with the origin top-left
	x, y    int32
	display gpu.Size

	busy bool
}

// NewPanel creates a panel with a 1x1 backing store. The first
// ResizeToDisplay grows it to the displayed size.
func NewPanel(id string) (*Panel, error) {
	p := &Panel{id: id, width: 1, height: 1}
	if err := p.create(); err != nil {
		return nil, fmt.Errorf("creating panel %s: %w", id, err)
	}
	p.clear()
	return p, nil
}

func (p *Panel) create() error {
	gl.GenFramebuffers(1, &p.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo)

	gl.GenTextures(1, &p.colorTexture)
	gl.BindTexture(gl.TEXTURE_2D, p.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, p.width, p.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, p.colorTexture, 0)

	gl.GenRenderbuffers(1, &p.depthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, p.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, p.width, p.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, p.depthRBO)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		p.Destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return nil
}

// ID returns the panel name.
func (p *Panel) ID() string {
	return p.id
}

// SetDisplay places the panel in the window.
func (p *Panel) SetDisplay(x, y, width, height int) {
	p.x, p.y = int32(x), int32(y)
	p.display = gpu.Size{Width: width, Height: height}
}

// Display returns the displayed size.
func (p *Panel) Display() gpu.Size {
	return p.display
}

// Acquire hands out the panel's drawing context. A panel that is already
// bound to a session cannot be acquired again until released.
func (p *Panel) Acquire() (gpu.Context, error) {
	if p.fbo == 0 {
		return nil, fmt.Errorf("%w: panel %s destroyed", gpu.ErrContextUnavailable, p.id)
	}
	if p.busy {
		return nil, fmt.Errorf("%w: panel %s in use", gpu.ErrContextUnavailable, p.id)
	}
	p.busy = true
	return &drawContext{panel: p}, nil
}

// Blit copies the panel's color attachment to its place in the default
// framebuffer. windowHeight is the drawable height in pixels.
func (p *Panel) Blit(windowHeight int) {
	if p.fbo == 0 || p.display.Width <= 0 || p.display.Height <= 0 {
		return
	}
	// GL window coordinates start bottom-left
	y0 := int32(windowHeight) - p.y - int32(p.display.Height)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(
		0, 0, p.width, p.height,
		p.x, y0, p.x+int32(p.display.Width), y0+int32(p.display.Height),
		gl.COLOR_BUFFER_BIT, gl.NEAREST,
	)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// ReadPixels reads the color attachment as bottom-up RGBA rows.
func (p *Panel) ReadPixels() (pixels []byte, width, height int) {
	pixels = make([]byte, p.width*p.height*4)

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo)
	gl.ReadPixels(0, 0, p.width, p.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))

	return pixels, int(p.width), int(p.height)
}

// resize reallocates the attachments if the size changed.
func (p *Panel) resize(width, height int32) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == p.width && height == p.height {
		return
	}
	p.width = width
	p.height = height

	gl.BindTexture(gl.TEXTURE_2D, p.colorTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, p.width, p.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	gl.BindRenderbuffer(gl.RENDERBUFFER, p.depthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, p.width, p.height)
	p.clear()
}

// clear fills the attachments with the background so a panel without a
// running session shows nothing.
func (p *Panel) clear() {
	if p.fbo == 0 {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, p.fbo)
	gl.Viewport(0, 0, p.width, p.height)
	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Destroy releases all OpenGL resources.
func (p *Panel) Destroy() {
	if p.fbo != 0 {
		gl.DeleteFramebuffers(1, &p.fbo)
		p.fbo = 0
	}
	if p.colorTexture != 0 {
		gl.DeleteTextures(1, &p.colorTexture)
		p.colorTexture = 0
	}
	if p.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &p.depthRBO)
		p.depthRBO = 0
	}
}
