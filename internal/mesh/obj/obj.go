// Package obj parses Wavefront OBJ meshes into mesh.Data.
package obj

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/udhos/gwob"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/assets"
	"github.com/Faultbox/meshview/internal/mesh"
)

// ErrParse is returned when a mesh file is not a valid OBJ mesh.
var ErrParse = errors.New("parse mesh")

// Parse decodes OBJ text into flat attribute arrays. Material libraries are
// not resolved here; their names are returned in Data.Materials.
func Parse(name string, buf []byte, log *zap.Logger) (*mesh.Data, error) {
	if log == nil {
		log = zap.NewNop()
	}
	options := &gwob.ObjParserOptions{
		Logger: func(msg string) { log.Debug("obj parser", zap.String("file", name), zap.String("msg", msg)) },
	}

	o, err := gwob.NewObjFromBuf(name, buf, options)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}

	n := o.NumberOfElements()
	if n == 0 {
		return nil, fmt.Errorf("%w: %s: no vertices", ErrParse, name)
	}

	data := &mesh.Data{
		Name:     strings.TrimSuffix(path.Base(name), path.Ext(name)),
		Position: make([]float32, 0, n*3),
	}
	if o.NormCoordFound {
		data.Normal = make([]float32, 0, n*3)
	}
	if o.TextCoordFound {
		data.TexCoord = make([]float32, 0, n*2)
	}

	// gwob interleaves attributes; strides and offsets are in bytes
	stride := o.StrideSize / 4
	posOff := o.StrideOffsetPosition / 4
	texOff := o.StrideOffsetTexture / 4
	normOff := o.StrideOffsetNormal / 4

	for i := 0; i < n; i++ {
		base := i * stride
		data.Position = append(data.Position, o.Coord[base+posOff:base+posOff+3]...)
		if o.TextCoordFound {
			data.TexCoord = append(data.TexCoord, o.Coord[base+texOff:base+texOff+2]...)
		}
		if o.NormCoordFound {
			data.Normal = append(data.Normal, o.Coord[base+normOff:base+normOff+3]...)
		}
	}

	data.Indices = make([]uint32, len(o.Indices))
	for i, idx := range o.Indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: %s: index %d out of range", ErrParse, name, idx)
		}
		data.Indices[i] = uint32(idx)
	}

	// A plain 0..n-1 sequence draws the same without an index buffer
	if sequential(data.Indices, n) {
		data.Indices = nil
	}

	for _, g := range o.Groups {
		if g.IndexCount == 0 {
			continue
		}
		data.Groups = append(data.Groups, mesh.Group{
			Name:     g.Name,
			Material: g.Usemtl,
			First:    g.IndexBegin,
			Count:    g.IndexCount,
		})
	}

	if o.Mtllib != "" {
		data.Materials = append(data.Materials, o.Mtllib)
	}

	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, name, err)
	}
	return data, nil
}

func sequential(indices []uint32, n int) bool {
	if len(indices) != n {
		return false
	}
	for i, idx := range indices {
		if idx != uint32(i) {
			return false
		}
	}
	return true
}

// Loader fetches and parses meshes from an asset root.
type Loader struct {
	Root   *assets.Root
	Logger *zap.Logger
}

// NewLoader creates a loader reading from root.
func NewLoader(root *assets.Root, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{Root: root, Logger: log}
}

// LoadMesh reads the mesh at p, resolves its material libraries and
// textures through lookup, and generates normals when the file has none.
// Unresolvable auxiliary files are logged and recorded in Data.Missing.
func (l *Loader) LoadMesh(ctx context.Context, p string, lookup assets.Lookup) (*mesh.Data, error) {
	if lookup == nil {
		lookup = assets.SiblingLookup(p)
	}

	buf, err := l.Root.ReadFile(p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := Parse(p, buf, l.Logger)
	if err != nil {
		return nil, err
	}

	for _, lib := range data.Materials {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.loadMaterials(p, lib, lookup, data)
	}

	if data.EnsureNormals() {
		l.Logger.Debug("generated normals", zap.String("mesh", p), zap.Int("vertices", data.VertexCount()))
	}
	return data, nil
}

func (l *Loader) loadMaterials(meshPath, lib string, lookup assets.Lookup, data *mesh.Data) {
	resolved, ok := lookup(lib)
	if !ok {
		l.missing(meshPath, lib, data, nil)
		return
	}
	buf, err := l.Root.ReadFile(resolved)
	if err != nil {
		l.missing(meshPath, lib, data, err)
		return
	}

	matlib, err := gwob.ReadMaterialLibFromBuf(buf, &gwob.ObjParserOptions{})
	if err != nil {
		l.Logger.Warn("bad material library", zap.String("mesh", meshPath), zap.String("mtllib", resolved), zap.Error(err))
		return
	}

	seen := make(map[string]bool)
	for _, g := range data.Groups {
		mtl, ok := matlib.Lib[g.Material]
		if !ok || mtl.MapKd == "" || seen[mtl.MapKd] {
			continue
		}
		seen[mtl.MapKd] = true
		tex, ok := lookup(mtl.MapKd)
		if !ok || !l.Root.Exists(tex) {
			l.missing(meshPath, mtl.MapKd, data, nil)
			continue
		}
		data.Textures = append(data.Textures, tex)
	}
}

func (l *Loader) missing(meshPath, name string, data *mesh.Data, err error) {
	data.Missing = append(data.Missing, name)
	fields := []zap.Field{zap.String("mesh", meshPath), zap.String("asset", name)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.Logger.Warn("referenced asset not found", fields...)
}
