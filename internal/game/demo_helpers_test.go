package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/testutil"
)

func TestPlayRandomTurn_KeepsInvariants(t *testing.T) {
	e, err := NewEngine(context.Background(), GameConfig{
		Rules:     DefaultRules(16, 16),
		Seed:      7,
		StartTime: testStart,
		Logger:    testutil.NopLogger(),
	})
	require.NoError(t, err)
	rng := testutil.NewTestRNG(testutil.DefaultSeed)

	for turn := 0; turn < 40 && !e.IsGameOver(); turn++ {
		before := e.TurnCount()
		applied, _ := PlayRandomTurn(e, rng)
		assert.GreaterOrEqual(t, applied, 1)
		if !e.IsGameOver() {
			assert.Equal(t, before+1, e.TurnCount())
		}

		seen := map[core.Position]bool{}
		for _, u := range e.reg.Units() {
			assert.Greater(t, u.HP, 0)
			assert.True(t, e.Grid().IsWalkablePos(u.Pos))
			assert.False(t, seen[u.Pos], "two units on %s", u.Pos)
			seen[u.Pos] = true
			assert.False(t, u.InTransit(), "movement is settled after a random turn")
		}
		for pid := 0; pid < core.NumPlayers; pid++ {
			assert.GreaterOrEqual(t, e.Treasury(pid), 0)
		}
		assert.Equal(t, (e.TurnCount()/2)+1, e.Round())
	}
}

func TestGenerateRandomCommands_EndsWithEndTurn(t *testing.T) {
	e := newTestEngine(t, testutil.OpenGrid(10, 10), core.Pos(0, 0), core.Pos(7, 9))
	cmds := GenerateRandomCommands(e, testutil.NewTestRNG(1))
	require.NotEmpty(t, cmds)
	assert.Equal(t, "end_turn", string(cmds[len(cmds)-1].Type))
	for _, c := range cmds {
		assert.NoError(t, c.Validate())
	}
}
