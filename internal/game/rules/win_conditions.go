package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// UnitCounter is the part of the entity registry the checker needs
type UnitCounter interface {
	LiveUnitCount(owner int) int
}

// WinConditionChecker decides when a match is over
type WinConditionChecker struct {
	logger zerolog.Logger
}

func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver reports whether a side has no live units. The acting
// player's opponent is checked first, so if both sides were wiped out by
// the same action the acting player wins.
// Returns (isGameOver, winnerID); winnerID is core.NoOwner while play continues.
func (wc *WinConditionChecker) CheckGameOver(units UnitCounter, actingPlayer int) (bool, int) {
	opponent := core.Opponent(actingPlayer)

	winner := core.NoOwner
	switch {
	case units.LiveUnitCount(opponent) == 0:
		winner = actingPlayer
	case units.LiveUnitCount(actingPlayer) == 0:
		winner = opponent
	}

	if winner != core.NoOwner {
		wc.logger.Info().Int("winner_player_id", winner).Msg("Winner determined")
		return true, winner
	}
	return false, core.NoOwner
}
