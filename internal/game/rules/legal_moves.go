package rules

import (
	"sort"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/pathfind"
)

// LegalMoveCalculator lists the tiles a unit may move to or build on
type LegalMoveCalculator struct {
	grid *core.GridMap
	reg  *entity.Registry
	pf   *pathfind.PathFinder
}

func NewLegalMoveCalculator(grid *core.GridMap, reg *entity.Registry, pf *pathfind.PathFinder) *LegalMoveCalculator {
	return &LegalMoveCalculator{grid: grid, reg: reg, pf: pf}
}

// CheckMove validates a move destination the same way a commit does:
// Euclidean range, free tile, then an A* path.
func (lmc *LegalMoveCalculator) CheckMove(u *entity.Unit, dest core.Position) ([]core.Position, error) {
	if !u.Pos.WithinRange(dest, u.Stats.MoveRange) {
		return nil, core.ErrOutOfRange
	}
	if dest != u.Pos && lmc.reg.IsOccupied(dest) {
		return nil, core.ErrIllegalTarget
	}
	path := lmc.pf.FindPath(u.Pos, dest)
	if len(path) == 0 {
		return nil, core.ErrNoPath
	}
	return path, nil
}

// MoveDestinations returns every tile CheckMove accepts, the unit's own
// tile excluded, in row-major order.
func (lmc *LegalMoveCalculator) MoveDestinations(u *entity.Unit) []core.Position {
	var out []core.Position
	lmc.forEachInRadius(u.Pos, u.Stats.MoveRange, func(p core.Position) {
		if p == u.Pos || !lmc.grid.IsWalkablePos(p) {
			return
		}
		if _, err := lmc.CheckMove(u, p); err == nil {
			out = append(out, p)
		}
	})
	return out
}

// TowerSites returns the walkable free tiles within the unit's build range
func (lmc *LegalMoveCalculator) TowerSites(u *entity.Unit) []core.Position {
	var out []core.Position
	lmc.forEachInRadius(u.Pos, u.Stats.TowerBuildRange, func(p core.Position) {
		if lmc.grid.IsWalkablePos(p) && !lmc.reg.IsOccupied(p) {
			out = append(out, p)
		}
	})
	return out
}

// ReachableTiles is the hop-count highlight set for a unit's move range
func (lmc *LegalMoveCalculator) ReachableTiles(u *entity.Unit) []core.Position {
	set := lmc.pf.ReachableSet(u.Pos, u.Stats.MoveRange)
	out := make([]core.Position, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func (lmc *LegalMoveCalculator) forEachInRadius(center core.Position, r int, fn func(core.Position)) {
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			p := core.Pos(x, y)
			if lmc.grid.InBounds(x, y) && center.WithinRange(p, r) {
				fn(p)
			}
		}
	}
}
