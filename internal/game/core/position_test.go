package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition_IndexRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		pos   Position
		width int
		index int
	}{
		{"TopLeft", Pos(0, 0), 10, 0},
		{"TopRight", Pos(9, 0), 10, 9},
		{"SecondRow", Pos(0, 1), 10, 10},
		{"SmallGrid", Pos(3, 1), 4, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.index, tt.pos.ToIndex(tt.width))
			assert.Equal(t, tt.pos, FromIndex(tt.index, tt.width))
		})
	}
}

func TestPosition_NeighborsOrder(t *testing.T) {
	n := Pos(5, 5).Neighbors()
	require.Len(t, n, 8)
	assert.Equal(t, []Position{
		{5, 6}, {6, 5}, {5, 4}, {4, 5},
		{6, 6}, {4, 4}, {6, 4}, {4, 6},
	}, n)
}

func TestPosition_Distances(t *testing.T) {
	a := Pos(0, 0)
	b := Pos(3, 4)

	assert.Equal(t, 7, a.ManhattanTo(b))
	assert.InDelta(t, 5.0, a.EuclideanTo(b), 1e-9)
	assert.True(t, a.WithinRange(b, 5))
	assert.False(t, a.WithinRange(b, 4))

	// A diagonal step is sqrt(2) away, outside range 1
	assert.False(t, a.WithinRange(Pos(1, 1), 1))
	assert.True(t, a.WithinRange(Pos(1, 0), 1))
	assert.True(t, a.WithinRange(Pos(2, 2), 3))
}

func TestWithinRange_LargeCoordinates(t *testing.T) {
	origin := Pos(0, 0)
	tests := []struct {
		name  string
		other Position
	}{
		{"SquareWrapsToZero", Pos(1<<32, 0)},
		{"BothAxes", Pos(3_000_000_000, 3_000_000_000)},
		{"Extremes", Pos(math.MinInt, math.MaxInt)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, origin.WithinRange(tt.other, 1))
			assert.False(t, tt.other.WithinRange(origin, 3))
		})
	}
	assert.True(t, Pos(1<<40, 5).WithinRange(Pos(1<<40, 2), 3))
	assert.False(t, origin.WithinRange(origin, -1))
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "(2,-1)", Pos(2, -1).String())
}
