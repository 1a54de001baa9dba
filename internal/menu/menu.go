// Package menu keeps one preview session per mesh file of a folder and the
// single main-scene session for the selected entry.
package menu

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/gpu"
	"github.com/Faultbox/meshview/internal/viewer"
)

// DefaultPattern selects Wavefront OBJ files.
const DefaultPattern = "*.obj"

// ErrNoEntry is returned when selecting outside the entry list.
var ErrNoEntry = errors.New("no such menu entry")

// Surfaces hands out the render targets the controller binds sessions to.
type Surfaces interface {
	Main() gpu.Surface
	NewPreview(name string) (gpu.Surface, error)
	DiscardPreview(s gpu.Surface)
}

// Entry is one mesh file of the scanned folder.
type Entry struct {
	Name    string
	Path    string
	Lookup  assets.Lookup
	Surface gpu.Surface
	Preview *viewer.Session
	Err     error // Set when no preview surface could be created
}

// Controller owns the preview sessions and the main session. All methods
// run on the render thread.
type Controller struct {
	env      viewer.Env
	surfaces Surfaces
	pattern  glob.Glob
	log      *zap.Logger

	entries  []*Entry
	main     *viewer.Session
	selected *Entry
}

// CompilePattern compiles a file-name glob. Letters outside character
// classes match either case; classes such as [A-Z] keep their meaning.
func CompilePattern(pattern string) (glob.Glob, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(foldLiterals(pattern))
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return g, nil
}

// foldLiterals rewrites each letter outside [...] classes as a class of
// both its cases, so "*.obj" becomes "*.[oO][bB][jJ]". Escaped characters
// stay exact.
func foldLiterals(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) * 2)
	inClass, escaped := false, false
	for _, r := range pattern {
		lower, upper := unicode.ToLower(r), unicode.ToUpper(r)
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '[':
			inClass = true
		case r == ']':
			inClass = false
		case !inClass && lower != upper:
			b.WriteRune('[')
			b.WriteRune(lower)
			b.WriteRune(upper)
			b.WriteRune(']')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Match returns the listing entries whose file name matches pattern,
// sorted by path.
func Match(listing assets.Listing, pattern string) (assets.Listing, error) {
	g, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return match(listing, g), nil
}

func match(listing assets.Listing, g glob.Glob) assets.Listing {
	var out assets.Listing
	for _, f := range listing {
		name := f.Name
		if name == "" {
			name = path.Base(f.Path)
		}
		if g.Match(name) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// New creates a controller with no entries.
func New(env viewer.Env, surfaces Surfaces, pattern string) (*Controller, error) {
	g, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		env:      env,
		surfaces: surfaces,
		pattern:  g,
		log:      log,
	}, nil
}

// Rescan replaces every entry and preview session with ones built from
// listing. A preview that fails does not stop the others. The main session
// keeps running; the selection follows its path if it is still listed.
func (c *Controller) Rescan(listing assets.Listing) []*Entry {
	c.closePreviews()

	matches := match(listing, c.pattern)
	entries := make([]*Entry, 0, len(matches))
	for _, f := range matches {
		e := &Entry{
			Name:   f.Name,
			Path:   f.Path,
			Lookup: listing.ResolverFor(f.Path),
		}
		entries = append(entries, e)

		surface, err := c.surfaces.NewPreview(f.Path)
		if err != nil {
			e.Err = err
			c.log.Warn("no preview surface", zap.String("mesh", f.Path), zap.Error(err))
			continue
		}
		e.Surface = surface
		e.Preview = viewer.Open(c.env, surface, viewer.Source{Path: e.Path, Lookup: e.Lookup})
	}
	c.entries = entries

	prev := c.selected
	c.selected = nil
	if prev != nil {
		for _, e := range entries {
			if e.Path == prev.Path {
				c.selected = e
				break
			}
		}
	}

	c.log.Info("menu rescanned", zap.Int("files", len(listing)), zap.Int("entries", len(entries)))
	return entries
}

// Select closes the main session and opens a new one for e on the main surface.
func (c *Controller) Select(e *Entry) {
	if c.main != nil {
		c.main.Close()
		c.main = nil
	}
	c.selected = e
	c.main = viewer.Open(c.env, c.surfaces.Main(), viewer.Source{Path: e.Path, Lookup: e.Lookup})
	c.log.Info("selected", zap.String("mesh", e.Path))
}

// SelectIndex selects the i-th entry.
func (c *Controller) SelectIndex(i int) error {
	if i < 0 || i >= len(c.entries) {
		return fmt.Errorf("%w: index %d of %d", ErrNoEntry, i, len(c.entries))
	}
	c.Select(c.entries[i])
	return nil
}

// Step moves the selection by delta entries, wrapping around. With nothing
// selected, stepping forward selects the first entry and backward the last.
func (c *Controller) Step(delta int) error {
	n := len(c.entries)
	if n == 0 {
		return fmt.Errorf("%w: menu is empty", ErrNoEntry)
	}
	i := c.SelectedIndex()
	switch {
	case i < 0 && delta >= 0:
		i = 0
	case i < 0:
		i = n - 1
	default:
		i = ((i+delta)%n + n) % n
	}
	return c.SelectIndex(i)
}

// SelectedIndex returns the position of the selected entry, or -1.
func (c *Controller) SelectedIndex() int {
	for i, e := range c.entries {
		if e == c.selected {
			return i
		}
	}
	return -1
}

// Entries returns the current entries in path order.
func (c *Controller) Entries() []*Entry {
	return c.entries
}

// Selected returns the selected entry, or nil.
func (c *Controller) Selected() *Entry {
	return c.selected
}

// Main returns the main-scene session, or nil before the first selection.
func (c *Controller) Main() *viewer.Session {
	return c.main
}

// Close tears down every session and releases the shared programs.
func (c *Controller) Close() {
	c.closePreviews()
	c.entries = nil
	c.selected = nil
	if c.main != nil {
		c.main.Close()
		c.main = nil
	}
	if c.env.Programs != nil {
		c.env.Programs.Close()
	}
}

func (c *Controller) closePreviews() {
	for _, e := range c.entries {
		if e.Preview != nil {
			e.Preview.Close()
		}
		if e.Surface != nil {
			c.surfaces.DiscardPreview(e.Surface)
		}
	}
}
