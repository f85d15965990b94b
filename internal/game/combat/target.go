package combat

import (
	"fmt"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
)

// TargetKind tags the Target union
type TargetKind int

const (
	TargetUnit TargetKind = iota
	TargetTower
	TargetMonster
	TargetBoss
)

func (k TargetKind) String() string {
	switch k {
	case TargetUnit:
		return "unit"
	case TargetTower:
		return "tower"
	case TargetMonster:
		return "monster"
	case TargetBoss:
		return "boss"
	default:
		return fmt.Sprintf("TargetKind(%d)", int(k))
	}
}

// ParseTargetKind is the inverse of TargetKind.String
func ParseTargetKind(s string) (TargetKind, error) {
	for _, k := range []TargetKind{TargetUnit, TargetTower, TargetMonster, TargetBoss} {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown target kind %q", s)
}

// Target is one of Unit(id), Tower(id), Monster(id) or Boss. ID is unused for Boss.
type Target struct {
	Kind TargetKind
	ID   int
}

func UnitTarget(id int) Target    { return Target{Kind: TargetUnit, ID: id} }
func TowerTarget(id int) Target   { return Target{Kind: TargetTower, ID: id} }
func MonsterTarget(id int) Target { return Target{Kind: TargetMonster, ID: id} }
func BossTarget() Target          { return Target{Kind: TargetBoss} }

func (t Target) String() string {
	if t.Kind == TargetBoss {
		return "boss"
	}
	return fmt.Sprintf("%s %d", t.Kind, t.ID)
}

// TargetAt maps the blocking piece on a tile to a Target
func TargetAt(reg *entity.Registry, pos core.Position) (Target, bool) {
	occ, ok := reg.OccupantAt(pos)
	if !ok {
		return Target{}, false
	}
	switch occ.Kind {
	case entity.OccupantUnit:
		return UnitTarget(occ.ID), true
	case entity.OccupantTower:
		return TowerTarget(occ.ID), true
	case entity.OccupantMonster:
		return MonsterTarget(occ.ID), true
	case entity.OccupantBoss:
		return BossTarget(), true
	default:
		panic(fmt.Sprintf("combat: unhandled occupant kind %v", occ.Kind))
	}
}

// view is the part of a target the resolver needs: where it is, who owns
// it and a handle on its hit points.
type view struct {
	pos    core.Position
	owner  int
	hp     *int
	bounty int
}

func resolve(reg *entity.Registry, t Target) (view, bool) {
	switch t.Kind {
	case TargetUnit:
		u, ok := reg.Unit(t.ID)
		if !ok {
			return view{}, false
		}
		return view{pos: u.Pos, owner: u.Owner, hp: &u.HP}, true
	case TargetTower:
		tw, ok := reg.Tower(t.ID)
		if !ok {
			return view{}, false
		}
		return view{pos: tw.Pos, owner: tw.Owner, hp: &tw.HP}, true
	case TargetMonster:
		m, ok := reg.Monster(t.ID)
		if !ok {
			return view{}, false
		}
		return view{pos: m.Pos, owner: core.NoOwner, hp: &m.HP, bounty: m.Bounty}, true
	case TargetBoss:
		b := reg.Boss()
		if b == nil {
			return view{}, false
		}
		return view{pos: b.Pos, owner: core.NoOwner, hp: &b.HP, bounty: b.Bounty}, true
	default:
		panic(fmt.Sprintf("combat: unhandled target kind %v", t.Kind))
	}
}
