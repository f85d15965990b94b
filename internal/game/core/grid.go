package core

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TileWalkabilityOracle is the read-only view of a loaded map that the
// engine consumes. Map-file parsing lives outside the engine.
type TileWalkabilityOracle interface {
	Width() int
	Height() int
	IsBlocked(x, y int) bool
}

// GridMap is a fixed-size rectangular grid of walkable or blocked tiles.
// It is built once before a match starts and never changes afterwards.
type GridMap struct {
	W, H    int
	blocked []bool // length = W*H (row-major)
}

// NewGridMap returns a fully walkable w x h grid
func NewGridMap(w, h int) *GridMap {
	return &GridMap{W: w, H: h, blocked: make([]bool, w*h)}
}

// NewGridMapFromOracle copies the walkability of an external map into a GridMap
func NewGridMapFromOracle(o TileWalkabilityOracle) *GridMap {
	g := NewGridMap(o.Width(), o.Height())
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			g.blocked[g.Idx(x, y)] = o.IsBlocked(x, y)
		}
	}
	return g
}

// ParseGridRows builds a grid from text rows where '#' marks a blocked
// tile and any other ASCII byte is walkable. All rows must have the same
// width; non-ASCII rows are rejected.
func ParseGridRows(rows []string) (*GridMap, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse grid: no rows")
	}
	w := len(rows[0])
	g := NewGridMap(w, len(rows))
	for y, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("parse grid: row %d has width %d, want %d", y, len(row), w)
		}
		for x := 0; x < w; x++ {
			if row[x] >= utf8.RuneSelf {
				return nil, fmt.Errorf("parse grid: row %d has non-ASCII byte at column %d", y, x)
			}
			g.blocked[g.Idx(x, y)] = row[x] == '#'
		}
	}
	return g, nil
}

func (g *GridMap) Width() int  { return g.W }
func (g *GridMap) Height() int { return g.H }

func (g *GridMap) Idx(x, y int) int { return y*g.W + x }

// InBounds checks if coordinates are within grid boundaries
func (g *GridMap) InBounds(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// IsBlocked reports whether a tile is impassable. Out-of-bounds tiles are blocked.
func (g *GridMap) IsBlocked(x, y int) bool {
	if !g.InBounds(x, y) {
		return true
	}
	return g.blocked[g.Idx(x, y)]
}

// IsWalkable is true iff the tile is in bounds and not blocked
func (g *GridMap) IsWalkable(x, y int) bool {
	return g.InBounds(x, y) && !g.blocked[g.Idx(x, y)]
}

func (g *GridMap) IsWalkablePos(p Position) bool { return g.IsWalkable(p.X, p.Y) }

// SetBlocked marks a tile. Only map generation calls this, before a match owns the grid.
func (g *GridMap) SetBlocked(x, y int, blocked bool) {
	if g.InBounds(x, y) {
		g.blocked[g.Idx(x, y)] = blocked
	}
}

// WalkableTiles returns every walkable tile in row-major order
func (g *GridMap) WalkableTiles() []Position {
	out := make([]Position, 0, len(g.blocked))
	for i, b := range g.blocked {
		if !b {
			out = append(out, FromIndex(i, g.W))
		}
	}
	return out
}

// String renders the grid with '#' for blocked and '.' for walkable tiles
func (g *GridMap) String() string {
	var sb strings.Builder
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if g.blocked[g.Idx(x, y)] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
