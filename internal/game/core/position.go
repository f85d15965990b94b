package core

import (
	"fmt"
	"math"
)

// Position is an integer tile coordinate on the grid
type Position struct {
	X, Y int
}

// Pos is shorthand for Position{X: x, Y: y}
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// FromIndex creates a position from a row-major tile index
func FromIndex(idx, width int) Position {
	return Position{X: idx % width, Y: idx / width}
}

// ToIndex converts the position to a row-major tile index
func (p Position) ToIndex(width int) int {
	return p.Y*width + p.X
}

// Directions lists the eight neighbour offsets in expansion order.
// Pathfinding and reachability both iterate in exactly this order, which
// is what makes their results deterministic.
var Directions = [8]Position{
	{X: 0, Y: 1},
	{X: 1, Y: 0},
	{X: 0, Y: -1},
	{X: -1, Y: 0},
	{X: 1, Y: 1},
	{X: -1, Y: -1},
	{X: 1, Y: -1},
	{X: -1, Y: 1},
}

// Add returns the sum of two positions
func (p Position) Add(other Position) Position {
	return Position{X: p.X + other.X, Y: p.Y + other.Y}
}

// Neighbors returns the eight surrounding positions in Directions order.
// Bounds are not checked.
func (p Position) Neighbors() []Position {
	out := make([]Position, 0, len(Directions))
	for _, d := range Directions {
		out = append(out, p.Add(d))
	}
	return out
}

// ManhattanTo returns |dx| + |dy|
func (p Position) ManhattanTo(other Position) int {
	return abs(p.X-other.X) + abs(p.Y-other.Y)
}

// EuclideanTo returns the straight-line distance in tiles
func (p Position) EuclideanTo(other Position) float64 {
	dx := float64(p.X - other.X)
	dy := float64(p.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// WithinRange reports whether other lies within Euclidean distance r.
// Squares are compared in float64, which is exact for board-sized
// coordinates and cannot wrap for large ones.
func (p Position) WithinRange(other Position, r int) bool {
	if r < 0 {
		return false
	}
	dx := float64(p.X) - float64(other.X)
	dy := float64(p.Y) - float64(other.Y)
	fr := float64(r)
	return dx*dx+dy*dy <= fr*fr
}

// String returns a string representation of the position
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
