package viewer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/gpu"
)

type programKey struct {
	vertex   string
	fragment string
}

// ProgramCache shares one linked program per distinct shader source pair
// across every session on a device. Sessions never delete programs; Close
// releases them all.
type ProgramCache struct {
	dev gpu.Device
	log *zap.Logger

	mu       sync.Mutex
	programs map[programKey]*gpu.Program
}

// NewProgramCache creates an empty cache compiling on dev.
func NewProgramCache(dev gpu.Device, log *zap.Logger) *ProgramCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgramCache{
		dev:      dev,
		log:      log,
		programs: make(map[programKey]*gpu.Program),
	}
}

// Get returns the program for a source pair, compiling it on first use.
// A program missing a required input is deleted and reported as an
// attribute mismatch. Failures are not cached.
func (c *ProgramCache) Get(vertex, fragment string) (*gpu.Program, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := programKey{vertex: vertex, fragment: fragment}
	if p, ok := c.programs[key]; ok {
		return p, nil
	}

	p, err := c.dev.CompileProgram(vertex, fragment)
	if err != nil {
		return nil, err
	}
	if err := gpu.CheckProgram(p); err != nil {
		c.dev.DeleteProgram(p)
		return nil, fmt.Errorf("checking program: %w", err)
	}

	c.programs[key] = p
	c.log.Debug("program cached", zap.Uint32("id", p.ID), zap.Int("cached", len(c.programs)))
	return p, nil
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.programs)
}

// Close deletes every cached program.
func (c *ProgramCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.programs {
		c.dev.DeleteProgram(p)
		delete(c.programs, key)
	}
}
