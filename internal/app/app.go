// Package app runs the viewer window: the preview sidebar, the main scene
// and the keyboard and mouse controls around the menu controller.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/camera"
	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/frame"
	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/gpu/glgpu"
	"github.com/Faultbox/meshview/internal/input"
	"github.com/Faultbox/meshview/internal/layout"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/menu"
	"github.com/Faultbox/meshview/internal/mesh/obj"
	"github.com/Faultbox/meshview/internal/screenshot"
	"github.com/Faultbox/meshview/internal/viewer"
	"github.com/Faultbox/meshview/internal/watch"
	"github.com/Faultbox/meshview/internal/window"
)

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window  *window.Window
	input   *input.Input
	device  *glgpu.Device
	loop    *frame.Loop
	panels  *panels
	capture *screenshot.Capture

	root    *assets.Root
	ctrl    *menu.Controller
	watcher *watch.Folder
	layout  layout.Layout
	title   string
}

// New creates the window and GL device and opens the configured folder.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg: cfg,
		log: logger.Named("app"),
	}
	a.log.Info("initializing viewer",
		zap.String("folder", cfg.Menu.Folder),
		zap.String("pattern", cfg.Menu.Pattern),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// GL functions load only once the context exists
	a.device, err = glgpu.NewDevice()
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	a.panels, err = newPanels(logger.Named("panels"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create main panel: %w", err)
	}

	a.input = input.New()
	a.loop = frame.NewLoop(logger.Named("frame"))
	a.capture = screenshot.New(cfg.Screenshot.Dir, cfg.Screenshot.Prefix)

	if cfg.Menu.Folder != "" {
		if err := a.openFolder(cfg.Menu.Folder); err != nil {
			// The window stays usable; another folder can be opened
			a.log.Warn("cannot open folder", zap.String("folder", cfg.Menu.Folder), zap.Error(err))
		}
	}

	a.log.Info("viewer initialized")
	return a, nil
}

// Run drives the frame loop until the window is closed.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting frame loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if a.input.Update() {
			a.running = false
			break
		}
		for _, event := range a.input.Events() {
			a.handle(event)
		}

		a.render(now)
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.Uint64("frames", a.loop.Frames()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handle(event input.Event) {
	switch event.Type {
	case input.EventKeyDown:
		a.handleKey(event.Key)

	case input.EventMouseDown:
		if event.Button != sdl.BUTTON_LEFT {
			return
		}
		scale := a.window.PixelScale()
		x := int(float64(event.MouseX) * scale)
		y := int(float64(event.MouseY) * scale)
		if i := a.layout.HitTile(x, y); i >= 0 {
			a.selectIndex(i)
		}

	case input.EventMouseWheel:
		if event.Wheel != 0 {
			a.step(-event.Wheel)
		}

	case input.EventDrop:
		if err := a.openFolder(event.Path); err != nil {
			a.log.Warn("cannot open dropped path", zap.String("path", event.Path), zap.Error(err))
		}
	}
}

func (a *App) handleKey(key sdl.Keycode) {
	switch key {
	case sdl.K_ESCAPE:
		a.running = false
	case sdl.K_o:
		a.browse()
	case sdl.K_r:
		a.rescan()
	case sdl.K_DOWN, sdl.K_RIGHT:
		a.step(1)
	case sdl.K_UP, sdl.K_LEFT:
		a.step(-1)
	case sdl.K_F12:
		a.screenshot()
	}
}

// browse asks for a folder without blocking the frame loop. The choice is
// applied on the render thread.
func (a *App) browse() {
	start := a.cfg.Menu.Folder
	go func() {
		dir, err := dialog.Directory().
			Title("Open Mesh Folder").
			SetStartDir(start).
			Browse()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				a.log.Warn("folder dialog failed", zap.Error(err))
			}
			return
		}
		a.loop.Post(func() {
			if err := a.openFolder(dir); err != nil {
				a.log.Warn("cannot open folder", zap.String("folder", dir), zap.Error(err))
			}
		})
	}()
}

// openFolder replaces the menu with one over dir. A file path opens its
// containing folder.
func (a *App) openFolder(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	a.closeFolder()

	a.root = assets.NewRoot(dir)
	env := viewer.Env{
		Scheduler: a.loop,
		Programs:  viewer.NewProgramCache(a.device, logger.Named("programs")),
		Meshes:    obj.NewLoader(a.root, logger.Named("obj")),
		Camera:    a.camera(),
		FitCamera: a.cfg.Camera.Fit,
		Logger:    logger.Named("session"),
	}
	a.ctrl, err = menu.New(env, a.panels, a.cfg.Menu.Pattern)
	if err != nil {
		return err
	}
	a.cfg.Menu.Folder = dir
	a.log.Info("opened folder", zap.String("folder", dir))

	a.rescan()

	if a.cfg.Menu.Watch {
		a.watcher, err = watch.New(dir, a.cfg.Menu.RescanDelay, func() {
			a.loop.Post(a.rescan)
		}, logger.Named("watch"))
		if err == nil {
			err = a.watcher.Start()
		}
		if err != nil {
			a.log.Warn("folder watch disabled", zap.String("folder", dir), zap.Error(err))
			a.watcher = nil
		}
	}
	return nil
}

func (a *App) closeFolder() {
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
	if a.ctrl != nil {
		a.ctrl.Close()
		a.ctrl = nil
	}
	a.root = nil
}

// rescan rebuilds the previews from the folder. The first entry is shown
// when nothing is selected yet.
func (a *App) rescan() {
	if a.ctrl == nil {
		return
	}
	listing, err := a.root.List(".")
	if err != nil {
		a.log.Warn("cannot list folder", zap.String("folder", a.root.Dir()), zap.Error(err))
		listing = nil
	}
	entries := a.ctrl.Rescan(listing)
	if a.ctrl.Selected() == nil && len(entries) > 0 {
		a.selectIndex(0)
	}
}

func (a *App) selectIndex(i int) {
	if a.ctrl == nil {
		return
	}
	if err := a.ctrl.SelectIndex(i); err != nil {
		a.log.Debug("select ignored", zap.Error(err))
	}
}

func (a *App) step(delta int) {
	if a.ctrl == nil {
		return
	}
	if err := a.ctrl.Step(delta); err != nil {
		a.log.Debug("step ignored", zap.Error(err))
	}
}

func (a *App) screenshot() {
	pixels, w, h := a.panels.main.ReadPixels()
	label := ""
	if a.ctrl != nil && a.ctrl.Selected() != nil {
		label = a.ctrl.Selected().Name
	}
	path, err := a.capture.CaptureFromPixels(pixels, w, h, label)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

func (a *App) camera() camera.Camera {
	c := a.cfg.Camera
	return camera.Camera{
		Position:    mgl32.Vec3(c.Position),
		Target:      mgl32.Vec3(c.Target),
		Up:          mgl32.Vec3(c.Up),
		FieldOfView: mgl32.DegToRad(c.FOVDegrees),
		Near:        c.Near,
		Far:         c.Far,
	}
}

func (a *App) render(now time.Time) {
	width, height := a.window.DrawableSize()

	var order []gpu.Surface
	if a.ctrl != nil {
		for _, e := range a.ctrl.Entries() {
			order = append(order, e.Surface)
		}
	}
	a.layout = layout.Compute(width, height, a.cfg.Menu.PreviewSize, a.cfg.Menu.Gap, len(order))
	a.panels.arrange(a.layout, order)

	// Sessions draw into their panels
	a.loop.Tick(now)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0.05, 0.05, 0.07, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	a.panels.blit(height)

	a.updateTitle()
}

func (a *App) updateTitle() {
	title := a.cfg.Window.Title
	if a.ctrl != nil {
		if e := a.ctrl.Selected(); e != nil {
			title = fmt.Sprintf("%s - %s", title, e.Path)
			if s := a.ctrl.Main(); s != nil {
				switch s.State() {
				case viewer.Running:
					title = fmt.Sprintf("%s (%d vertices)", title, s.Data().VertexCount())
				case viewer.Failed:
					title = fmt.Sprintf("%s (%s)", title, viewer.KindOf(s.Err()))
				}
			}
		}
	}
	if title != a.title {
		a.window.SetTitle(title)
		a.title = title
	}
}

// Close tears down every session and the window and remembers the folder.
func (a *App) Close() error {
	a.log.Info("closing viewer")

	a.closeFolder()
	// Work posted by sessions closed above has nothing left to touch
	a.loop.Drain()

	var err error
	if a.panels != nil {
		a.panels.destroy()
	}
	if a.cfg.Menu.Folder != "" {
		err = multierr.Append(err, a.cfg.Save())
	}
	if a.window != nil {
		a.window.Close()
	}
	return err
}
