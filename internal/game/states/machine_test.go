package states

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/events"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestMatchPhase_String(t *testing.T) {
	tests := []struct {
		phase    MatchPhase
		expected string
	}{
		{PhaseInitializing, "Initializing"},
		{PhaseStarting, "Starting"},
		{PhaseRunning, "Running"},
		{PhaseEnded, "Ended"},
		{PhaseError, "Error"},
		{MatchPhase(99), "Unknown(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestMatchPhase_Properties(t *testing.T) {
	assert.True(t, PhaseEnded.IsTerminal())
	assert.True(t, PhaseError.IsTerminal())
	assert.False(t, PhaseRunning.IsTerminal())

	assert.True(t, PhaseRunning.CanReceiveActions())
	assert.False(t, PhaseStarting.CanReceiveActions())
	assert.False(t, PhaseEnded.CanReceiveActions())

	assert.True(t, PhaseRunning.CanTransitionTo(PhaseEnded))
	assert.False(t, PhaseEnded.CanTransitionTo(PhaseRunning))
	assert.Empty(t, PhaseEnded.AllowedTransitions())

	p, err := ParsePhase("Running")
	require.NoError(t, err)
	assert.Equal(t, PhaseRunning, p)
	_, err = ParsePhase("Paused")
	assert.Error(t, err)
}

func TestStateMachine_Lifecycle(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := start
	ctx := NewMatchContext("m-1", zerolog.Nop(), func() time.Time { return clock })
	bus := events.NewEventBus(zerolog.Nop())

	var published []*events.StateTransitionEvent
	bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
		published = append(published, e.(*events.StateTransitionEvent))
	})

	sm := NewStateMachine(ctx, bus)
	assert.Equal(t, PhaseInitializing, sm.CurrentPhase())

	require.NoError(t, sm.TransitionTo(PhaseStarting, "setup"))

	err := sm.TransitionTo(PhaseRunning, "premature")
	assert.Error(t, err, "board not ready")
	assert.Equal(t, PhaseStarting, sm.CurrentPhase())

	ctx.BoardReady = true
	require.NoError(t, sm.TransitionTo(PhaseRunning, "board ready"))
	assert.Equal(t, start, ctx.StartTime)

	assert.Error(t, sm.TransitionTo(PhaseEnded, "no winner yet"))

	clock = start.Add(90 * time.Second)
	ctx.Winner = 1
	require.NoError(t, sm.TransitionTo(PhaseEnded, "player 0 eliminated"))
	assert.Equal(t, 90*time.Second, ctx.Elapsed())

	assert.Error(t, sm.TransitionTo(PhaseRunning, "cannot leave ended"))

	history := sm.GetHistory()
	require.Len(t, history, 3)
	assert.Equal(t, PhaseStarting, history[0].To)
	assert.Equal(t, PhaseEnded, history[2].To)
	assert.Equal(t, "player 0 eliminated", history[2].Reason)

	require.Len(t, published, 3)
	assert.Equal(t, "Running", published[2].FromPhase)
	assert.Equal(t, "Ended", published[2].ToPhase)
	assert.Equal(t, "m-1", published[2].MatchID())
}

func TestStateMachine_ErrorFromStarting(t *testing.T) {
	ctx := NewMatchContext("m-2", zerolog.Nop(), fixedClock(time.Unix(0, 0)))
	sm := NewStateMachine(ctx, nil)

	require.NoError(t, sm.TransitionTo(PhaseStarting, "setup"))
	require.NoError(t, sm.TransitionTo(PhaseError, "map generation failed"))
	assert.True(t, sm.CurrentPhase().IsTerminal())
	assert.Same(t, ctx, sm.GetContext())
}

func TestStateMachine_StartingNeedsMatchID(t *testing.T) {
	ctx := NewMatchContext("", zerolog.Nop(), nil)
	sm := NewStateMachine(ctx, nil)
	assert.Error(t, sm.TransitionTo(PhaseStarting, "setup"))
	assert.Equal(t, PhaseInitializing, sm.CurrentPhase())
}
