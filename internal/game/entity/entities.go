package entity

import (
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// Unit is a player-owned piece. A unit is alive while HP > 0; dead units
// are removed from the registry.
type Unit struct {
	ID          int
	Owner       int
	Kind        core.UnitKind
	Stats       core.UnitStats
	HP          int
	Pos         core.Position
	HasMoved    bool
	HasAttacked bool

	// FX, FY trail Pos while the unit walks Path. Pos is already the
	// destination as far as occupancy and capture are concerned.
	FX, FY float64
	Path   []core.Position
}

func (u *Unit) Alive() bool { return u.HP > 0 }

// InTransit is true while the movement animation has waypoints left
func (u *Unit) InTransit() bool { return len(u.Path) > 0 }

// ResetTurnFlags clears the per-turn action slots
func (u *Unit) ResetTurnFlags() {
	u.HasMoved = false
	u.HasAttacked = false
}

// Tower is a player structure that spawns units and can be attacked
type Tower struct {
	ID          int
	Owner       int
	Pos         core.Position
	HP          int
	Attack      int
	AttackRange int
}

// CapturePoint is a tile decoration that pays its owner at end of turn.
// Owner is core.NoOwner when neutral.
type CapturePoint struct {
	ID       int
	Pos      core.Position
	Owner    int
	Progress int
	Speed    int
	Value    int
}

func (c *CapturePoint) Owned() bool { return c.Owner != core.NoOwner }

// Monster is a neutral wandering creature that pays a bounty when killed
type Monster struct {
	ID     int
	Pos    core.Position
	HP     int
	Attack int
	Bounty int
}

// Boss is the singleton neutral creature. It strikes back when attacked.
type Boss struct {
	ID     int
	Pos    core.Position
	HP     int
	MaxHP  int
	Attack int
	Bounty int
}
