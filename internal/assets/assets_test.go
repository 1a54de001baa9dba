package assets

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoot() *Root {
	return NewRootFS(fstest.MapFS{
		"a.obj":                 {Data: []byte("v 0 0 0\n")},
		"b.obj":                 {Data: []byte("v 1 0 0\n")},
		"readme.txt":            {Data: []byte("hello")},
		"cars/car.obj":          {Data: []byte("mtllib car.mtl\n")},
		"cars/car.mtl":          {Data: []byte("newmtl paint\n")},
		"shared/car.mtl":        {Data: []byte("newmtl other\n")},
		"textures/wood.png":     {Data: []byte{0x89, 'P', 'N', 'G'}},
		".git/objects/pack.obj": {Data: []byte("not a mesh")},
	})
}

func TestClean(t *testing.T) {
	for _, ok := range []string{"a.obj", "cars/car.obj", "./cars/car.obj", `cars\car.obj`, "."} {
		_, err := Clean(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "/etc/passwd", "../secret.obj", "cars/../../x.obj", `..\x.obj`} {
		_, err := Clean(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestReadFile(t *testing.T) {
	root := testRoot()

	data, err := root.ReadFile("cars/car.obj")
	require.NoError(t, err)
	assert.Equal(t, "mtllib car.mtl\n", string(data))

	_, err = root.ReadFile("missing.obj")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = root.ReadFile("../a.obj")
	assert.ErrorIs(t, err, ErrInvalidPath)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestExists(t *testing.T) {
	root := testRoot()
	assert.True(t, root.Exists("cars/car.obj"))
	assert.False(t, root.Exists("cars"))
	assert.False(t, root.Exists("cars/van.obj"))
	assert.False(t, root.Exists("../a.obj"))
}

func TestListSkipsHiddenDirectories(t *testing.T) {
	listing, err := testRoot().List(".")
	require.NoError(t, err)

	var paths []string
	for _, f := range listing.Sorted() {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"a.obj", "b.obj", "cars/car.mtl", "cars/car.obj",
		"readme.txt", "shared/car.mtl", "textures/wood.png",
	}, paths)
}

func TestListMissingDir(t *testing.T) {
	_, err := testRoot().List("nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolverPrefersMeshDirectory(t *testing.T) {
	listing, err := testRoot().List(".")
	require.NoError(t, err)

	lookup := listing.ResolverFor("cars/car.obj")

	p, ok := lookup("car.mtl")
	require.True(t, ok)
	assert.Equal(t, "cars/car.mtl", p)

	// Exact file-name match anywhere in the listing
	p, ok = lookup("wood.png")
	require.True(t, ok)
	assert.Equal(t, "textures/wood.png", p)

	p, ok = lookup(`C:\exports\textures\wood.png`)
	require.True(t, ok)
	assert.Equal(t, "textures/wood.png", p)

	_, ok = lookup("metal.png")
	assert.False(t, ok)
}

func TestResolverFallsBackToAnyDirectory(t *testing.T) {
	listing := Listing{
		{Name: "ship.obj", Path: "ship.obj"},
		{Name: "car.mtl", Path: "shared/car.mtl"},
	}
	p, ok := listing.ResolverFor("ship.obj")("car.mtl")
	require.True(t, ok)
	assert.Equal(t, "shared/car.mtl", p)
}

func TestSiblingLookup(t *testing.T) {
	lookup := SiblingLookup("cars/car.obj")

	p, ok := lookup("car.mtl")
	require.True(t, ok)
	assert.Equal(t, "cars/car.mtl", p)

	_, ok = lookup("../../etc/passwd")
	assert.False(t, ok)
}
