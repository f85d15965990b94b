package states

import (
	"fmt"
)

// InitializingState is the phase before the board exists
type InitializingState struct{}

func (s *InitializingState) Phase() MatchPhase             { return PhaseInitializing }
func (s *InitializingState) Enter(ctx *MatchContext) error { return nil }
func (s *InitializingState) Exit(ctx *MatchContext) error  { return nil }
func (s *InitializingState) Validate(ctx *MatchContext) error {
	return nil
}

// StartingState covers map generation and initial placement
type StartingState struct{}

func (s *StartingState) Phase() MatchPhase { return PhaseStarting }

func (s *StartingState) Enter(ctx *MatchContext) error {
	ctx.Logger.Info().Msg("Setting up match board")
	return nil
}

func (s *StartingState) Exit(ctx *MatchContext) error { return nil }

func (s *StartingState) Validate(ctx *MatchContext) error {
	if ctx.MatchID == "" {
		return fmt.Errorf("match id must be set before setup")
	}
	return nil
}

// RunningState is active play
type RunningState struct{}

func (s *RunningState) Phase() MatchPhase { return PhaseRunning }

func (s *RunningState) Enter(ctx *MatchContext) error {
	ctx.StartTime = ctx.Now()
	ctx.Logger.Info().Time("start_time", ctx.StartTime).Msg("Match running")
	return nil
}

func (s *RunningState) Exit(ctx *MatchContext) error { return nil }

func (s *RunningState) Validate(ctx *MatchContext) error {
	if !ctx.BoardReady {
		return fmt.Errorf("board is not ready")
	}
	return nil
}

// EndedState is reached when a player has no units left
type EndedState struct{}

func (s *EndedState) Phase() MatchPhase { return PhaseEnded }

func (s *EndedState) Enter(ctx *MatchContext) error {
	ctx.EndTime = ctx.Now()
	ctx.Logger.Info().
		Int("winner", ctx.Winner).
		Dur("duration", ctx.Elapsed()).
		Msg("Match ended")
	return nil
}

func (s *EndedState) Exit(ctx *MatchContext) error { return nil }

func (s *EndedState) Validate(ctx *MatchContext) error {
	if ctx.Winner < 0 {
		return fmt.Errorf("cannot end match without a winner")
	}
	return nil
}

// ErrorState records a failed setup
type ErrorState struct{}

func (s *ErrorState) Phase() MatchPhase { return PhaseError }

func (s *ErrorState) Enter(ctx *MatchContext) error {
	ctx.Logger.Error().Err(ctx.Error).Msg("Match entered error state")
	return nil
}

func (s *ErrorState) Exit(ctx *MatchContext) error     { return nil }
func (s *ErrorState) Validate(ctx *MatchContext) error { return nil }
