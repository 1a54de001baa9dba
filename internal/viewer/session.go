// Package viewer renders one mesh on one surface: it acquires a drawing
// context, builds the GPU resources for the mesh and redraws it every frame
// under a rotating transform until closed.
package viewer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/camera"
	"github.com/Faultbox/meshview/internal/frame"
	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/mesh"
	"github.com/Faultbox/meshview/internal/viewer/shaders"
)

// Scheduler runs work on the render thread.
type Scheduler interface {
	Post(fn func())
	RequestFrame(cb frame.Callback)
}

// MeshLoader fetches and parses a mesh. It runs off the render thread.
type MeshLoader interface {
	LoadMesh(ctx context.Context, path string, lookup assets.Lookup) (*mesh.Data, error)
}

// Env holds what every session on one device shares.
type Env struct {
	Scheduler Scheduler
	Programs  *ProgramCache
	Meshes    MeshLoader
	Camera    camera.Camera
	FitCamera bool // Derive the camera from the mesh bounds at load
	Logger    *zap.Logger
}

// Source names the mesh a session shows. Data, when set, is used as is
// and nothing is fetched.
type Source struct {
	Path   string
	Lookup assets.Lookup
	Data   *mesh.Data
}

// State is a session's lifecycle stage.
type State int32

// Session states
const (
	Loading State = iota
	Running
	Failed
	Closed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Running:
		return "running"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Session is one mesh bound to one surface. Open, Close and every frame
// run on the render thread; Done, Err, State and Frames may be read from
// any goroutine.
type Session struct {
	env     Env
	surface gpu.Surface
	src     Source
	log     *zap.Logger

	alive  atomic.Bool
	state  atomic.Int32
	frames atomic.Uint64

	done     chan struct{}
	doneOnce sync.Once
	err      error

	cancel context.CancelFunc

	gctx    gpu.Context
	program *gpu.Program
	buffers *gpu.BufferSet
	binding *gpu.Binding
	data    *mesh.Data
	cam     camera.Camera

	start   time.Time
	started bool
}

// Open starts a session. Context acquisition and program creation happen
// before Open returns; the mesh fetch continues in the background and the
// outcome is reported through Done and Err.
func Open(env Env, surface gpu.Surface, src Source) *Session {
	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		env:     env,
		surface: surface,
		src:     src,
		log:     log.With(zap.String("surface", surface.ID()), zap.String("mesh", src.Path)),
		done:    make(chan struct{}),
		cam:     env.Camera,
	}
	s.alive.Store(true)
	s.state.Store(int32(Loading))

	gctx, err := surface.Acquire()
	if err != nil {
		s.fail(ContextUnavailable, err)
		return s
	}
	s.gctx = gctx

	program, err := env.Programs.Get(shaders.Vertex, shaders.Fragment)
	if err != nil {
		s.fail(programKind(err), err)
		return s
	}
	s.program = program

	if src.Data != nil {
		s.setup(src.Data)
		return s
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.fetch(ctx)
	return s
}

func (s *Session) fetch(ctx context.Context) {
	data, err := s.env.Meshes.LoadMesh(ctx, s.src.Path, s.src.Lookup)
	s.env.Scheduler.Post(func() {
		if !s.alive.Load() {
			return
		}
		if err != nil {
			s.fail(loadKind(err), err)
			return
		}
		s.setup(data)
	})
}

// setup builds the buffers and binding and schedules the first frame.
func (s *Session) setup(data *mesh.Data) {
	if s.env.FitCamera {
		s.cam = s.cam.Fit(data.Bounds())
	}

	buffers, err := s.gctx.UploadBuffers(data)
	if err != nil {
		s.fail(bindKind(err), err)
		return
	}
	s.buffers = buffers

	binding, err := s.gctx.BindAttributes(buffers, s.program)
	if err != nil {
		s.fail(bindKind(err), err)
		return
	}
	s.binding = binding
	s.data = data

	for _, name := range data.Missing {
		s.log.Warn("rendering without asset", zap.String("asset", name))
	}
	s.log.Debug("session running",
		zap.Int("vertices", data.VertexCount()),
		zap.Int("draw_count", binding.Count),
		zap.Bool("indexed", binding.Indexed),
	)

	s.state.Store(int32(Running))
	s.finish(nil)
	s.env.Scheduler.RequestFrame(s.render)
}

// render draws one frame and requests the next.
func (s *Session) render(now time.Time) {
	if !s.alive.Load() {
		return
	}
	if !s.started {
		s.start = now
		s.started = true
	}

	size := s.gctx.ResizeToDisplay()
	f := ComputeFrame(s.cam, size, now.Sub(s.start))

	s.gctx.Begin(gpu.State{DepthTest: true, CullFace: true})
	s.gctx.UseProgram(s.program)
	s.gctx.SetUniforms(s.program, f.Uniforms())
	s.gctx.Draw(s.binding)
	s.gctx.End()

	s.frames.Add(1)
	s.env.Scheduler.RequestFrame(s.render)
}

// Close stops rendering and releases the session's binding, buffers and
// context. The shared program stays in the cache. Safe to call twice.
func (s *Session) Close() {
	if !s.alive.CompareAndSwap(true, false) {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.release()
	s.state.Store(int32(Closed))
	s.finish(ErrClosed)
}

// fail records a terminal error; the surface is left blank.
func (s *Session) fail(kind ErrorKind, err error) {
	e := &Error{Kind: kind, Surface: s.surface.ID(), Path: s.src.Path, Err: err}
	s.log.Warn("session failed", zap.Stringer("kind", kind), zap.Error(err))

	s.alive.Store(false)
	s.release()
	s.state.Store(int32(Failed))
	s.finish(e)
}

func (s *Session) release() {
	if s.gctx == nil {
		return
	}
	if s.binding != nil {
		s.gctx.DeleteBinding(s.binding)
		s.binding = nil
	}
	if s.buffers != nil {
		s.gctx.DeleteBuffers(s.buffers)
		s.buffers = nil
	}
	s.gctx.Release()
	s.gctx = nil
}

// finish resolves Done once. A session that already loaded keeps a nil Err.
func (s *Session) finish(err error) {
	s.doneOnce.Do(func() {
		s.err = err
		close(s.done)
	})
}

// Done is closed once the session is running, failed or closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the failure, ErrClosed if closed while loading, or nil.
// It is only meaningful after Done is closed.
func (s *Session) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Frames returns how many frames the session has drawn.
func (s *Session) Frames() uint64 {
	return s.frames.Load()
}

// Surface returns the surface the session draws on.
func (s *Session) Surface() gpu.Surface {
	return s.surface
}

// Path returns the mesh path.
func (s *Session) Path() string {
	return s.src.Path
}

// Data returns the loaded mesh, or nil before the session is running.
// Call it on the render thread.
func (s *Session) Data() *mesh.Data {
	return s.data
}
