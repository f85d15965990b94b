package economy

import (
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
)

// CaptureChange reports a point whose owner changed during an update
type CaptureChange struct {
	PointID       int
	PreviousOwner int
	NewOwner      int
}

// GenerateCapturePoints places up to n neutral points on distinct walkable
// tiles at least MinPointSpacing (Manhattan) from existing points and from
// every position in avoid. When the attempt budget runs out the remaining
// points are placed on the free walkable tile farthest from everything
// already placed, so the count is met whenever free tiles remain.
func (e *Economy) GenerateCapturePoints(n int, avoid []core.Position) []*entity.CapturePoint {
	walkable := e.grid.WalkableTiles()
	if len(walkable) == 0 || n <= 0 {
		return nil
	}

	anchors := append([]core.Position(nil), avoid...)
	for _, cp := range e.reg.CapturePoints() {
		anchors = append(anchors, cp.Pos)
	}

	nearest := func(p core.Position) int {
		best := -1
		for _, a := range anchors {
			if d := p.ManhattanTo(a); best < 0 || d < best {
				best = d
			}
		}
		return best
	}
	usable := func(p core.Position) bool {
		if _, taken := e.reg.CapturePointAt(p); taken {
			return false
		}
		return !e.reg.IsOccupied(p)
	}

	var placed []*entity.CapturePoint
	for len(placed) < n {
		var pos core.Position
		found := false
		for attempt := 0; attempt < e.cfg.PlacementAttempts; attempt++ {
			p := walkable[e.rng.Intn(len(walkable))]
			if !usable(p) {
				continue
			}
			if d := nearest(p); d >= 0 && d < e.cfg.MinPointSpacing {
				continue
			}
			pos, found = p, true
			break
		}
		if !found {
			bestDist := -2
			for _, p := range walkable {
				if !usable(p) {
					continue
				}
				if d := nearest(p); d > bestDist {
					pos, bestDist, found = p, d, true
				}
			}
		}
		if !found {
			e.logger.Warn().Int("requested", n).Int("placed", len(placed)).Msg("No free tile left for capture point")
			break
		}

		value := e.cfg.CapturePointMinValue
		if spread := e.cfg.CapturePointMaxValue - e.cfg.CapturePointMinValue; spread > 0 {
			value += e.rng.Intn(spread + 1)
		}
		cp, err := e.reg.AddCapturePoint(pos, value, e.cfg.CaptureSpeed)
		if err != nil {
			continue
		}
		anchors = append(anchors, pos)
		placed = append(placed, cp)
	}

	e.logger.Info().Int("count", len(placed)).Msg("Capture points generated")
	return placed
}

// UpdateCapturePoints advances capture progress by one tick. A unit that
// is still walking does not count as standing on its destination, and the
// tiles it passes over mid-walk are not counted either: only a unit at
// rest occupies a point.
//
// A point under a unit not owned by that unit's player gains Speed and
// flips to that player on reaching 100. A point with nobody on it loses
// Speed and becomes neutral on reaching 0. A point under its own owner's
// unit is left alone.
func (e *Economy) UpdateCapturePoints() []CaptureChange {
	var changes []CaptureChange
	for _, cp := range e.reg.CapturePoints() {
		u, occupied := e.reg.UnitAt(cp.Pos)
		if occupied && u.InTransit() {
			occupied = false
		}

		if occupied {
			if u.Owner == cp.Owner {
				continue
			}
			cp.Progress += cp.Speed
			if cp.Progress >= 100 {
				cp.Progress = 100
				changes = append(changes, CaptureChange{PointID: cp.ID, PreviousOwner: cp.Owner, NewOwner: u.Owner})
				cp.Owner = u.Owner
			}
			continue
		}

		cp.Progress -= cp.Speed
		if cp.Progress <= 0 {
			cp.Progress = 0
			if cp.Owned() {
				changes = append(changes, CaptureChange{PointID: cp.ID, PreviousOwner: cp.Owner, NewOwner: core.NoOwner})
				cp.Owner = core.NoOwner
			}
		}
	}
	return changes
}
