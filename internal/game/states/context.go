package states

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// MatchContext is the information states need to validate and log transitions
type MatchContext struct {
	MatchID string
	Logger  zerolog.Logger

	// Now reads the match clock. The engine points it at the last time
	// passed to Tick so transitions are stamped deterministically.
	Now func() time.Time

	BoardReady bool
	StartTime  time.Time
	EndTime    time.Time

	// Winner is core.NoOwner until the match ends
	Winner int

	// Error holds the setup error that caused PhaseError
	Error error
}

// NewMatchContext creates a new match context
func NewMatchContext(matchID string, logger zerolog.Logger, now func() time.Time) *MatchContext {
	if now == nil {
		now = time.Now
	}
	return &MatchContext{
		MatchID: matchID,
		Logger:  logger.With().Str("match_id", matchID).Logger(),
		Now:     now,
		Winner:  core.NoOwner,
	}
}

// Elapsed returns the match duration so far, or the final duration once ended
func (mc *MatchContext) Elapsed() time.Duration {
	if mc.StartTime.IsZero() {
		return 0
	}
	if !mc.EndTime.IsZero() {
		return mc.EndTime.Sub(mc.StartTime)
	}
	return mc.Now().Sub(mc.StartTime)
}
