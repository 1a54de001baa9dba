// Package assets resolves mesh files and their co-located assets below a fixed root.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a path does not exist below the root.
	ErrNotFound = errors.New("asset not found")
	// ErrInvalidPath is returned for absolute paths and paths escaping the root.
	ErrInvalidPath = errors.New("invalid asset path")
)

// Root gives read access to the files below one directory.
type Root struct {
	fsys fs.FS
	dir  string
}

// NewRoot opens a root on a directory of the local filesystem.
func NewRoot(dir string) *Root {
	return &Root{fsys: os.DirFS(dir), dir: dir}
}

// NewRootFS wraps an existing filesystem.
func NewRootFS(fsys fs.FS) *Root {
	return &Root{fsys: fsys}
}

// Dir returns the directory the root was opened on, or "" for a wrapped filesystem.
func (r *Root) Dir() string {
	return r.dir
}

// Clean validates a root-relative path and returns its canonical form.
func Clean(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, elem := range strings.Split(p, "/") {
		if elem == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	clean := path.Clean(p)
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}

// ReadFile reads a file below the root.
func (r *Root) ReadFile(p string) ([]byte, error) {
	clean, err := Clean(p)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(r.fsys, clean)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return nil, fmt.Errorf("reading %s: %w", clean, err)
	}
	return data, nil
}

// Exists reports whether a regular file exists at p.
func (r *Root) Exists(p string) bool {
	clean, err := Clean(p)
	if err != nil {
		return false
	}
	info, err := fs.Stat(r.fsys, clean)
	return err == nil && info.Mode().IsRegular()
}

// List enumerates every regular file below dir, recursively.
func (r *Root) List(dir string) (Listing, error) {
	clean, err := Clean(dir)
	if err != nil {
		return nil, err
	}

	var files Listing
	err = fs.WalkDir(r.fsys, clean, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (.git, .cache) never hold user meshes
			if p != clean && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, File{Name: d.Name(), Path: p})
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return nil, fmt.Errorf("listing %s: %w", clean, err)
	}
	return files, nil
}

// File is one entry of a folder listing.
type File struct {
	Name string // Base name
	Path string // Root-relative path
}

// Listing is an enumeration of files with no ordering guarantee.
type Listing []File

// Sorted returns a copy ordered by path.
func (l Listing) Sorted() Listing {
	out := make(Listing, len(l))
	copy(out, l)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Lookup resolves an asset name referenced by a mesh to a root-relative path.
type Lookup func(name string) (string, bool)

// ResolverFor builds the lookup used while loading the mesh at meshPath.
// A name is first tried relative to the mesh's directory, then matched by
// exact file name anywhere in the listing (first path in sorted order).
func (l Listing) ResolverFor(meshPath string) Lookup {
	byPath := make(map[string]struct{}, len(l))
	byName := make(map[string]string, len(l))
	for _, f := range l.Sorted() {
		byPath[f.Path] = struct{}{}
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = f.Path
		}
	}
	dir := path.Dir(meshPath)

	return func(name string) (string, bool) {
		name = strings.ReplaceAll(name, "\\", "/")
		if rel, err := Clean(path.Join(dir, name)); err == nil {
			if _, ok := byPath[rel]; ok {
				return rel, true
			}
		}
		p, ok := byName[path.Base(name)]
		return p, ok
	}
}

// SiblingLookup resolves names relative to the mesh's directory without a listing.
func SiblingLookup(meshPath string) Lookup {
	dir := path.Dir(meshPath)
	return func(name string) (string, bool) {
		rel, err := Clean(path.Join(dir, strings.ReplaceAll(name, "\\", "/")))
		if err != nil {
			return "", false
		}
		return rel, true
	}
}
