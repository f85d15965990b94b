package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/testutil"
)

var soldier = core.DefaultUnitStats()[core.Soldier]

func TestRegistry_AddAndQuery(t *testing.T) {
	r := NewRegistry()

	u, err := r.AddUnit(0, core.Soldier, soldier, core.Pos(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.Equal(t, soldier.MaxHP, u.HP)
	assert.Equal(t, 1.0, u.FX)

	tw, err := r.AddTower(1, core.Pos(3, 3), 100, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, tw.ID)

	got, ok := r.UnitAt(core.Pos(1, 1))
	require.True(t, ok)
	assert.Same(t, u, got)

	_, ok = r.UnitAt(core.Pos(3, 3))
	assert.False(t, ok, "tower tile is not a unit tile")

	gotTower, ok := r.TowerAt(core.Pos(3, 3))
	require.True(t, ok)
	assert.Same(t, tw, gotTower)

	occ, ok := r.OccupantAt(core.Pos(3, 3))
	require.True(t, ok)
	assert.Equal(t, Occupant{Kind: OccupantTower, ID: tw.ID}, occ)
}

func TestRegistry_EnforcesOneBlockerPerTile(t *testing.T) {
	r := NewRegistry()
	p := core.Pos(2, 2)

	_, err := r.AddUnit(0, core.Soldier, soldier, p)
	require.NoError(t, err)

	_, err = r.AddUnit(1, core.Archer, soldier, p)
	assert.ErrorIs(t, err, core.ErrTileOccupied)
	_, err = r.AddTower(0, p, 100, 10, 3)
	assert.ErrorIs(t, err, core.ErrTileOccupied)
	_, err = r.AddMonster(p, 100, 10, 50)
	assert.ErrorIs(t, err, core.ErrTileOccupied)
	_, err = r.SpawnBoss(p, 500, 40, 1200)
	assert.ErrorIs(t, err, core.ErrTileOccupied)

	assert.Len(t, r.Units(), 1)
	assert.Nil(t, r.Boss())
}

func TestRegistry_CapturePointsDoNotBlock(t *testing.T) {
	r := NewRegistry()
	p := core.Pos(4, 4)

	cp, err := r.AddCapturePoint(p, 75, 1)
	require.NoError(t, err)
	assert.Equal(t, core.NoOwner, cp.Owner)
	assert.False(t, cp.Owned())

	_, err = r.AddUnit(0, core.Soldier, soldier, p)
	require.NoError(t, err)

	_, err = r.AddCapturePoint(p, 60, 1)
	assert.ErrorIs(t, err, core.ErrTileOccupied)

	got, ok := r.CapturePointAt(p)
	require.True(t, ok)
	assert.Same(t, cp, got)
}

func TestRegistry_MoveUnit(t *testing.T) {
	r := NewRegistry()
	a, _ := r.AddUnit(0, core.Soldier, soldier, core.Pos(0, 0))
	b, _ := r.AddUnit(1, core.Soldier, soldier, core.Pos(1, 0))

	assert.ErrorIs(t, r.MoveUnit(a.ID, b.Pos), core.ErrTileOccupied)
	assert.Equal(t, core.Pos(0, 0), a.Pos)

	require.NoError(t, r.MoveUnit(a.ID, core.Pos(0, 1)))
	assert.False(t, r.IsOccupied(core.Pos(0, 0)))
	assert.True(t, r.IsOccupied(core.Pos(0, 1)))

	assert.NoError(t, r.MoveUnit(a.ID, a.Pos), "moving in place is a no-op")
	assert.ErrorIs(t, r.MoveUnit(99, core.Pos(5, 5)), core.ErrUnknownEntity)
}

func TestRegistry_RemoveFreesTile(t *testing.T) {
	r := NewRegistry()
	u, _ := r.AddUnit(0, core.Soldier, soldier, core.Pos(0, 0))
	m, _ := r.AddMonster(core.Pos(1, 1), 100, 10, 50)
	_, err := r.SpawnBoss(core.Pos(2, 2), 500, 40, 1200)
	require.NoError(t, err)

	r.RemoveUnit(u.ID)
	r.RemoveMonster(m.ID)
	r.RemoveBoss()

	for _, p := range []core.Position{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}} {
		assert.False(t, r.IsOccupied(p))
	}
	assert.Zero(t, r.MonsterCount())
	assert.Nil(t, r.Boss())

	// Removing twice is harmless
	r.RemoveUnit(u.ID)
	r.RemoveBoss()
}

func TestRegistry_SingleBoss(t *testing.T) {
	r := NewRegistry()
	_, err := r.SpawnBoss(core.Pos(0, 0), 500, 40, 1200)
	require.NoError(t, err)
	_, err = r.SpawnBoss(core.Pos(5, 5), 500, 40, 1200)
	assert.Error(t, err)

	require.NoError(t, r.MoveBoss(core.Pos(1, 0)))
	assert.Equal(t, core.Pos(1, 0), r.Boss().Pos)
}

func TestRegistry_OrderedIterationAndCounts(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 4; i++ {
		_, err := r.AddUnit(i%2, core.Soldier, soldier, core.Pos(i, 0))
		require.NoError(t, err)
	}

	units := r.Units()
	require.Len(t, units, 4)
	for i := 1; i < len(units); i++ {
		assert.Less(t, units[i-1].ID, units[i].ID)
	}
	assert.Len(t, r.UnitsOf(0), 2)
	assert.Equal(t, 2, r.LiveUnitCount(1))

	units[1].HP = 0
	assert.Equal(t, 1, r.LiveUnitCount(1))
}

func TestRegistry_DanglingIndexPanics(t *testing.T) {
	r := NewRegistry()
	u, _ := r.AddUnit(0, core.Soldier, soldier, core.Pos(0, 0))
	delete(r.units, u.ID)

	testutil.AssertPanic(t, func() { r.UnitAt(core.Pos(0, 0)) })
}
