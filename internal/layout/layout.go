// Package layout places the preview tiles and the main scene in the window.
package layout

// Rect is an area in window pixels with the origin top-left.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Layout is a sidebar of square tiles on the left and the main scene filling the rest.
type Layout struct {
	Sidebar Rect
	Tiles   []Rect
	Main    Rect
}

// Compute lays out count tiles of size tile in columns separated by gap.
// The sidebar grows by whole columns until every tile fits, but never
// takes more than half the window.
func Compute(width, height, tile, gap, count int) Layout {
	if width <= 0 || height <= 0 {
		return Layout{Tiles: make([]Rect, count)}
	}
	if tile <= 0 {
		tile = 1
	}
	if gap < 0 {
		gap = 0
	}

	perColumn := (height - gap) / (tile + gap)
	if perColumn < 1 {
		perColumn = 1
	}
	columns := 1
	if count > 0 {
		columns = (count + perColumn - 1) / perColumn
	}
	maxColumns := (width/2 - gap) / (tile + gap)
	if maxColumns < 1 {
		maxColumns = 1
	}
	if columns > maxColumns {
		columns = maxColumns
	}

	sidebarW := gap + columns*(tile+gap)
	l := Layout{
		Sidebar: Rect{X: 0, Y: 0, W: sidebarW, H: height},
		Tiles:   make([]Rect, count),
	}

	capacity := columns * perColumn
	for i := 0; i < count; i++ {
		if i >= capacity {
			// Tiles that do not fit are not shown
			continue
		}
		col := i / perColumn
		row := i % perColumn
		l.Tiles[i] = Rect{
			X: gap + col*(tile+gap),
			Y: gap + row*(tile+gap),
			W: tile,
			H: tile,
		}
	}

	l.Main = Rect{X: sidebarW, Y: 0, W: width - sidebarW, H: height}
	if l.Main.W < 0 {
		l.Main.W = 0
	}
	return l
}

// HitTile returns the index of the tile under the point, or -1.
func (l Layout) HitTile(x, y int) int {
	for i, r := range l.Tiles {
		if !r.Empty() && r.Contains(x, y) {
			return i
		}
	}
	return -1
}
