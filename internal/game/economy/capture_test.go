package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

func TestUpdateCapturePoints_FlipsExactlyAt100(t *testing.T) {
	e, reg := newEconomy(t, core.NewGridMap(5, 5))
	cp, _ := reg.AddCapturePoint(core.Pos(2, 2), 80, 1)
	_, err := reg.AddUnit(0, core.Soldier, stats[core.Soldier], core.Pos(2, 2))
	require.NoError(t, err)

	for i := 1; i < 100; i++ {
		assert.Empty(t, e.UpdateCapturePoints())
		assert.Equal(t, i, cp.Progress)
		assert.Equal(t, core.NoOwner, cp.Owner, "tick %d", i)
	}

	changes := e.UpdateCapturePoints()
	require.Len(t, changes, 1)
	assert.Equal(t, CaptureChange{PointID: cp.ID, PreviousOwner: core.NoOwner, NewOwner: 0}, changes[0])
	assert.Equal(t, 100, cp.Progress)
	assert.Equal(t, 0, cp.Owner)

	// Owner standing on its own point changes nothing
	assert.Empty(t, e.UpdateCapturePoints())
	assert.Equal(t, 100, cp.Progress)
}

func TestUpdateCapturePoints_DecaysWhenEmpty(t *testing.T) {
	e, reg := newEconomy(t, core.NewGridMap(5, 5))
	cp, _ := reg.AddCapturePoint(core.Pos(1, 1), 80, 1)
	cp.Owner = 1
	cp.Progress = 3

	assert.Empty(t, e.UpdateCapturePoints())
	assert.Empty(t, e.UpdateCapturePoints())
	assert.Equal(t, 1, cp.Progress)
	assert.Equal(t, 1, cp.Owner)

	changes := e.UpdateCapturePoints()
	require.Len(t, changes, 1)
	assert.Equal(t, core.NoOwner, changes[0].NewOwner)
	assert.Equal(t, 0, cp.Progress)

	assert.Empty(t, e.UpdateCapturePoints(), "neutral point at zero stays put")
	assert.Equal(t, 0, cp.Progress)
}

func TestUpdateCapturePoints_EnemyTakesOwnedPoint(t *testing.T) {
	e, reg := newEconomy(t, core.NewGridMap(5, 5))
	cp, _ := reg.AddCapturePoint(core.Pos(1, 1), 80, 1)
	cp.Owner = 0
	cp.Progress = 100
	_, _ = reg.AddUnit(1, core.Soldier, stats[core.Soldier], core.Pos(1, 1))

	changes := e.UpdateCapturePoints()
	require.Len(t, changes, 1)
	assert.Equal(t, 0, changes[0].PreviousOwner)
	assert.Equal(t, 1, cp.Owner)
	assert.Equal(t, 100, cp.Progress)
}

func TestUpdateCapturePoints_IgnoresUnitsInTransit(t *testing.T) {
	e, reg := newEconomy(t, core.NewGridMap(5, 5))
	cp, _ := reg.AddCapturePoint(core.Pos(3, 3), 80, 1)
	u, _ := reg.AddUnit(0, core.Soldier, stats[core.Soldier], core.Pos(3, 3))
	u.Path = []core.Position{{X: 3, Y: 3}}

	e.UpdateCapturePoints()
	assert.Equal(t, 0, cp.Progress)

	u.Path = nil
	e.UpdateCapturePoints()
	assert.Equal(t, 1, cp.Progress)
}

func TestUpdateCapturePoints_IgnoresTilesPassedMidWalk(t *testing.T) {
	e, reg := newEconomy(t, core.NewGridMap(5, 5))
	cp, _ := reg.AddCapturePoint(core.Pos(2, 2), 80, 1)
	u, _ := reg.AddUnit(0, core.Soldier, stats[core.Soldier], core.Pos(4, 4))
	u.FX, u.FY = 2, 2
	u.Path = []core.Position{{X: 3, Y: 3}, {X: 4, Y: 4}}

	e.UpdateCapturePoints()
	assert.Equal(t, 0, cp.Progress)
	assert.Equal(t, core.NoOwner, cp.Owner)
}

func TestUpdateCapturePoints_ProgressStaysInBounds(t *testing.T) {
	e, reg := newEconomy(t, core.NewGridMap(5, 5))
	cp, _ := reg.AddCapturePoint(core.Pos(0, 0), 80, 7)
	u, _ := reg.AddUnit(1, core.Soldier, stats[core.Soldier], core.Pos(0, 0))

	for i := 0; i < 40; i++ {
		e.UpdateCapturePoints()
		assert.GreaterOrEqual(t, cp.Progress, 0)
		assert.LessOrEqual(t, cp.Progress, 100)
	}
	assert.Equal(t, 1, cp.Owner)

	reg.RemoveUnit(u.ID)
	for i := 0; i < 40; i++ {
		e.UpdateCapturePoints()
		assert.GreaterOrEqual(t, cp.Progress, 0)
		assert.LessOrEqual(t, cp.Progress, 100)
	}
	assert.Equal(t, core.NoOwner, cp.Owner)
}
