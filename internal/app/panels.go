package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/gpu/glgpu"
	"github.com/Faultbox/meshview/internal/layout"
)

// panels hands out framebuffer panels to the menu and composites them
// into the window.
type panels struct {
	main     *glgpu.Panel
	previews map[gpu.Surface]*glgpu.Panel
	log      *zap.Logger
}

func newPanels(log *zap.Logger) (*panels, error) {
	main, err := glgpu.NewPanel("main")
	if err != nil {
		return nil, err
	}
	return &panels{
		main:     main,
		previews: make(map[gpu.Surface]*glgpu.Panel),
		log:      log,
	}, nil
}

func (p *panels) Main() gpu.Surface {
	return p.main
}

func (p *panels) NewPreview(name string) (gpu.Surface, error) {
	panel, err := glgpu.NewPanel("preview:" + name)
	if err != nil {
		return nil, fmt.Errorf("preview for %s: %w", name, err)
	}
	p.previews[panel] = panel
	p.log.Debug("preview panel created", zap.String("mesh", name), zap.Int("previews", len(p.previews)))
	return panel, nil
}

func (p *panels) DiscardPreview(s gpu.Surface) {
	panel, ok := p.previews[s]
	if !ok {
		return
	}
	panel.Destroy()
	delete(p.previews, s)
}

// arrange places the main panel and the given preview surfaces, in tile order.
func (p *panels) arrange(l layout.Layout, order []gpu.Surface) {
	p.main.SetDisplay(l.Main.X, l.Main.Y, l.Main.W, l.Main.H)
	for _, panel := range p.previews {
		panel.SetDisplay(0, 0, 0, 0)
	}
	for i, s := range order {
		panel, ok := p.previews[s]
		if !ok || i >= len(l.Tiles) {
			continue
		}
		r := l.Tiles[i]
		panel.SetDisplay(r.X, r.Y, r.W, r.H)
	}
}

// blit copies every visible panel into the default framebuffer.
func (p *panels) blit(windowHeight int) {
	p.main.Blit(windowHeight)
	for _, panel := range p.previews {
		panel.Blit(windowHeight)
	}
}

func (p *panels) destroy() {
	for s, panel := range p.previews {
		panel.Destroy()
		delete(p.previews, s)
	}
	p.main.Destroy()
}
