package game

import (
	"math"
	"time"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/events"
)

// Tick advances the match clock to now: walking units move dt worth of
// distance along their paths and capture points progress. Tick never ends
// a turn.
func (e *Engine) Tick(dt time.Duration, now time.Time) {
	e.now = now
	if dt > 0 {
		step := e.rules.UnitSpeed * dt.Seconds()
		for _, u := range e.reg.Units() {
			if u.InTransit() {
				advance(u, step)
			}
		}
	}
	if e.gameOver {
		return
	}

	for _, ch := range e.economy.UpdateCapturePoints() {
		if ch.NewOwner >= 0 {
			e.logger.Info().Int("point_id", ch.PointID).Int("player_id", ch.NewOwner).Msg("Capture point taken")
			e.publish(events.NewPointCapturedEvent(e.matchID, e.now, e.round, ch.PointID, ch.NewOwner, ch.PreviousOwner))
		} else {
			e.logger.Info().Int("point_id", ch.PointID).Int("previous_owner", ch.PreviousOwner).Msg("Capture point lost")
			e.publish(events.NewPointLostEvent(e.matchID, e.now, e.round, ch.PointID, ch.PreviousOwner))
		}
	}
}

// advance walks a unit up to dist tiles along its remaining path
func advance(u *entity.Unit, dist float64) {
	for dist > 0 && len(u.Path) > 0 {
		next := u.Path[0]
		dx := float64(next.X) - u.FX
		dy := float64(next.Y) - u.FY
		gap := math.Hypot(dx, dy)
		if gap <= dist {
			u.FX, u.FY = float64(next.X), float64(next.Y)
			u.Path = u.Path[1:]
			dist -= gap
			continue
		}
		u.FX += dx / gap * dist
		u.FY += dy / gap * dist
		dist = 0
	}
	if len(u.Path) == 0 {
		u.Path = nil
	}
}

// SettleMovement finishes every walk instantly. Headless hosts call it
// instead of ticking through animations.
func (e *Engine) SettleMovement() {
	for _, u := range e.reg.Units() {
		if u.InTransit() {
			u.FX, u.FY = float64(u.Pos.X), float64(u.Pos.Y)
			u.Path = nil
		}
	}
}
