package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSingleColumn(t *testing.T) {
	l := Compute(1280, 800, 128, 8, 3)

	assert.Equal(t, Rect{X: 0, Y: 0, W: 144, H: 800}, l.Sidebar)
	assert.Equal(t, []Rect{
		{X: 8, Y: 8, W: 128, H: 128},
		{X: 8, Y: 144, W: 128, H: 128},
		{X: 8, Y: 280, W: 128, H: 128},
	}, l.Tiles)
	assert.Equal(t, Rect{X: 144, Y: 0, W: 1136, H: 800}, l.Main)
}

func TestComputeWrapsIntoColumns(t *testing.T) {
	// 800 px fits 5 tiles of 128+8 per column
	l := Compute(1280, 800, 128, 8, 7)

	assert.Equal(t, 8+2*136, l.Sidebar.W)
	assert.Equal(t, Rect{X: 144, Y: 8, W: 128, H: 128}, l.Tiles[5])
	assert.Equal(t, l.Sidebar.W, l.Main.X)
}

func TestComputeCapsSidebarAtHalfWidth(t *testing.T) {
	l := Compute(400, 150, 128, 8, 10)

	assert.LessOrEqual(t, l.Sidebar.W, 200)
	assert.False(t, l.Tiles[0].Empty())
	assert.True(t, l.Tiles[9].Empty())
	assert.Greater(t, l.Main.W, 0)
}

func TestComputeEmptyWindow(t *testing.T) {
	l := Compute(0, 0, 128, 8, 2)
	assert.Len(t, l.Tiles, 2)
	assert.True(t, l.Main.Empty())
}

func TestHitTile(t *testing.T) {
	l := Compute(1280, 800, 128, 8, 3)

	assert.Equal(t, 0, l.HitTile(10, 10))
	assert.Equal(t, 1, l.HitTile(100, 200))
	assert.Equal(t, -1, l.HitTile(4, 4))     // gap
	assert.Equal(t, -1, l.HitTile(600, 300)) // main scene
	assert.Equal(t, -1, l.HitTile(10, 500))  // below the last tile
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 5, H: 5}
	assert.True(t, r.Contains(10, 10))
	assert.True(t, r.Contains(14, 14))
	assert.False(t, r.Contains(15, 10))
}
