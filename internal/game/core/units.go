package core

import "fmt"

// UnitKind identifies a purchasable unit archetype
type UnitKind int

const (
	Soldier UnitKind = iota
	Archer
	Mage
	Cavalry
)

// AllUnitKinds in purchase-menu order
var AllUnitKinds = []UnitKind{Soldier, Archer, Mage, Cavalry}

func (k UnitKind) String() string {
	switch k {
	case Soldier:
		return "soldier"
	case Archer:
		return "archer"
	case Mage:
		return "mage"
	case Cavalry:
		return "cavalry"
	default:
		return fmt.Sprintf("UnitKind(%d)", int(k))
	}
}

// ParseUnitKind maps a lowercase name to its kind
func ParseUnitKind(s string) (UnitKind, error) {
	for _, k := range AllUnitKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnitKind, s)
}

// UnitStats are the per-kind combat and movement numbers
type UnitStats struct {
	MaxHP           int
	Attack          int
	MoveRange       int
	AttackRange     int
	TowerBuildRange int
	Cost            int
}

// DefaultUnitStats is the stock balance table
func DefaultUnitStats() map[UnitKind]UnitStats {
	return map[UnitKind]UnitStats{
		Soldier: {MaxHP: 100, Attack: 50, MoveRange: 3, AttackRange: 1, TowerBuildRange: 2, Cost: 50},
		Archer:  {MaxHP: 75, Attack: 40, MoveRange: 2, AttackRange: 3, TowerBuildRange: 3, Cost: 100},
		Mage:    {MaxHP: 60, Attack: 60, MoveRange: 2, AttackRange: 2, TowerBuildRange: 2, Cost: 150},
		Cavalry: {MaxHP: 120, Attack: 45, MoveRange: 5, AttackRange: 1, TowerBuildRange: 2, Cost: 200},
	}
}
