package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/events"
)

// State is one lifecycle phase with its hooks
type State interface {
	Phase() MatchPhase
	Enter(ctx *MatchContext) error
	Exit(ctx *MatchContext) error
	Validate(ctx *MatchContext) error
}

// Transition is one entry of the phase history
type Transition struct {
	From      MatchPhase
	To        MatchPhase
	Timestamp time.Time
	Reason    string
}

// StateMachine moves a match through its lifecycle phases
type StateMachine struct {
	mu           sync.RWMutex
	currentPhase MatchPhase
	states       map[MatchPhase]State
	context      *MatchContext
	history      []Transition
	publisher    events.Publisher
}

// NewStateMachine creates a machine in PhaseInitializing
func NewStateMachine(ctx *MatchContext, publisher events.Publisher) *StateMachine {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	sm := &StateMachine{
		currentPhase: PhaseInitializing,
		states:       make(map[MatchPhase]State),
		context:      ctx,
		publisher:    publisher,
	}
	for _, s := range []State{&InitializingState{}, &StartingState{}, &RunningState{}, &EndedState{}, &ErrorState{}} {
		sm.states[s.Phase()] = s
	}
	return sm
}

func (sm *StateMachine) CurrentPhase() MatchPhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentPhase
}

// TransitionTo attempts to transition to the specified phase. The
// transition event is published after the lock is released so handlers may
// query the machine.
func (sm *StateMachine) TransitionTo(targetPhase MatchPhase, reason string) error {
	tr, err := sm.transition(targetPhase, reason)
	if err != nil {
		return err
	}
	sm.publisher.Publish(events.NewStateTransitionEvent(
		sm.context.MatchID,
		tr.Timestamp,
		tr.From.String(),
		tr.To.String(),
		reason,
	))
	return nil
}

func (sm *StateMachine) transition(targetPhase MatchPhase, reason string) (Transition, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.currentPhase.CanTransitionTo(targetPhase) {
		return Transition{}, fmt.Errorf("invalid transition from %s to %s", sm.currentPhase, targetPhase)
	}
	targetState := sm.states[targetPhase]
	if err := targetState.Validate(sm.context); err != nil {
		return Transition{}, fmt.Errorf("target state validation failed: %w", err)
	}

	if err := sm.states[sm.currentPhase].Exit(sm.context); err != nil {
		sm.context.Logger.Error().
			Err(err).
			Str("from_phase", sm.currentPhase.String()).
			Str("to_phase", targetPhase.String()).
			Msg("Error exiting state")
	}

	previousPhase := sm.currentPhase
	sm.currentPhase = targetPhase
	if err := targetState.Enter(sm.context); err != nil {
		sm.currentPhase = previousPhase
		return Transition{}, fmt.Errorf("failed to enter state %s: %w", targetPhase, err)
	}

	tr := Transition{From: previousPhase, To: targetPhase, Timestamp: sm.context.Now(), Reason: reason}
	sm.history = append(sm.history, tr)

	sm.context.Logger.Debug().
		Str("from_phase", previousPhase.String()).
		Str("to_phase", targetPhase.String()).
		Str("reason", reason).
		Msg("State transition completed")
	return tr, nil
}

// GetHistory returns a copy of the transition history
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// GetContext returns the match context
func (sm *StateMachine) GetContext() *MatchContext {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.context
}
