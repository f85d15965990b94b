package testutil

import (
	"testing"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// OpenGrid returns a fully walkable grid
func OpenGrid(width, height int) *core.GridMap {
	return core.NewGridMap(width, height)
}

// GridFromRows parses rows where '#' is blocked and fails the test on bad input
func GridFromRows(t *testing.T, rows ...string) *core.GridMap {
	t.Helper()
	g, err := core.ParseGridRows(rows)
	if err != nil {
		t.Fatalf("bad grid fixture: %v", err)
	}
	return g
}

// WalledGrid returns a grid with a vertical wall at column wallX, leaving a
// single gap at row gapY. A gapY outside the grid closes the wall completely.
func WalledGrid(width, height, wallX, gapY int) *core.GridMap {
	g := core.NewGridMap(width, height)
	for y := 0; y < height; y++ {
		if y != gapY {
			g.SetBlocked(wallX, y, true)
		}
	}
	return g
}
