// Package frame runs work on the render thread: tasks posted from any
// goroutine and callbacks scheduled for the next display frame.
package frame

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Callback runs once on the next frame with that frame's timestamp.
type Callback func(now time.Time)

// Loop is the render thread's scheduler. Tick must only be called from the
// render thread; Post and RequestFrame are safe from any goroutine.
type Loop struct {
	mu      sync.Mutex
	tasks   []func()
	pending []Callback

	log    *zap.Logger
	frames uint64
}

// NewLoop creates an empty loop.
func NewLoop(log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{log: log}
}

// Post queues fn to run on the render thread before the next frame's callbacks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
}

// RequestFrame schedules cb for the next Tick. Callbacks requested while a
// tick is running wait for the following one.
func (l *Loop) RequestFrame(cb Callback) {
	l.mu.Lock()
	l.pending = append(l.pending, cb)
	l.mu.Unlock()
}

// Pending reports whether any task or callback is waiting.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) > 0 || len(l.pending) > 0
}

// Frames returns how many ticks have run.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Tick runs posted tasks, then every callback requested before the tick.
func (l *Loop) Tick(now time.Time) {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, fn := range tasks {
		l.run(fn)
	}

	l.mu.Lock()
	callbacks := l.pending
	l.pending = nil
	l.frames++
	l.mu.Unlock()

	for _, cb := range callbacks {
		l.run(func() { cb(now) })
	}
}

// Drain runs posted tasks until none remain, without running frame callbacks.
func (l *Loop) Drain() {
	for {
		l.mu.Lock()
		tasks := l.tasks
		l.tasks = nil
		l.mu.Unlock()
		if len(tasks) == 0 {
			return
		}
		for _, fn := range tasks {
			l.run(fn)
		}
	}
}

// run isolates a panicking task so the rest of the frame still runs.
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("frame task panicked", zap.String("panic", fmt.Sprint(r)), zap.Stack("stack"))
		}
	}()
	fn()
}
