package mapgen

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/pathfind"
)

func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(12345))
}

func TestDefaultMapConfig(t *testing.T) {
	cfg := DefaultMapConfig(30, 20)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 20, cfg.Height)
	assert.Equal(t, 25, cfg.MinSpawnSpacing)
	assert.Positive(t, cfg.VeinRatio)
}

func TestGenerateMap(t *testing.T) {
	g := NewGenerator(DefaultMapConfig(30, 30), newTestRNG())

	grid, anchors, err := g.GenerateMap()
	require.NoError(t, err)
	require.Len(t, anchors, 2)

	blocked := 0
	for y := 0; y < grid.H; y++ {
		for x := 0; x < grid.W; x++ {
			if grid.IsBlocked(x, y) {
				blocked++
			}
		}
	}
	assert.Positive(t, blocked, "veins should block some tiles")

	for i, a := range anchors {
		assert.Equal(t, i, a.PlayerID)
		for _, tile := range a.Tiles() {
			assert.True(t, grid.IsWalkablePos(tile), "anchor tile %s", tile)
		}
	}
	assert.GreaterOrEqual(t, anchors[0].Pos.ManhattanTo(anchors[1].Pos), 30)
	assert.NotEmpty(t, pathfind.New(grid).FindPath(anchors[0].Pos, anchors[1].Pos))
}

func TestGenerateMap_Deterministic(t *testing.T) {
	g1 := NewGenerator(DefaultMapConfig(20, 20), rand.New(rand.NewSource(7)))
	g2 := NewGenerator(DefaultMapConfig(20, 20), rand.New(rand.NewSource(7)))

	grid1, anchors1, err := g1.GenerateMap()
	require.NoError(t, err)
	grid2, anchors2, err := g2.GenerateMap()
	require.NoError(t, err)

	assert.Equal(t, grid1.String(), grid2.String())
	assert.Equal(t, anchors1, anchors2)
}

func TestGenerateMap_NoVeins(t *testing.T) {
	cfg := DefaultMapConfig(10, 10)
	cfg.VeinRatio = 0
	grid, anchors, err := NewGenerator(cfg, newTestRNG()).GenerateMap()
	require.NoError(t, err)
	assert.Len(t, grid.WalkableTiles(), 100)
	assert.Len(t, anchors, 2)
}

func TestGenerateMap_SpacingFallback(t *testing.T) {
	cfg := DefaultMapConfig(6, 2)
	cfg.VeinRatio = 0
	cfg.MinSpawnSpacing = 100
	_, anchors, err := NewGenerator(cfg, newTestRNG()).GenerateMap()
	require.NoError(t, err)
	require.Len(t, anchors, 2)

	occupied := map[core.Position]bool{}
	for _, a := range anchors {
		for _, tile := range a.Tiles() {
			assert.False(t, occupied[tile], "anchors overlap at %s", tile)
			occupied[tile] = true
		}
	}
}

func TestGenerateMap_TooSmall(t *testing.T) {
	_, _, err := NewGenerator(DefaultMapConfig(3, 1), newTestRNG()).GenerateMap()
	assert.Error(t, err)
}

func TestPlaceAnchors_ExistingGrid(t *testing.T) {
	grid, err := core.ParseGridRows([]string{
		"......",
		"######",
		"......",
	})
	require.NoError(t, err)

	cfg := DefaultMapConfig(6, 3)
	cfg.MinSpawnSpacing = 0
	g := NewGenerator(cfg, newTestRNG())

	// Rows 0 and 2 are cut off from each other; either both anchors land on
	// one side or placement fails.
	anchors, err := g.PlaceAnchors(grid)
	if err != nil {
		assert.Contains(t, err.Error(), "not connected")
		return
	}
	assert.Equal(t, anchors[0].Pos.Y, anchors[1].Pos.Y)
}

func TestPlaceAnchors_NoRoom(t *testing.T) {
	grid, err := core.ParseGridRows([]string{
		".#.#",
		"#.#.",
	})
	require.NoError(t, err)

	_, err = NewGenerator(DefaultMapConfig(4, 2), newTestRNG()).PlaceAnchors(grid)
	assert.Error(t, err)
}
