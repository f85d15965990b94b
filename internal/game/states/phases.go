package states

import "fmt"

// MatchPhase is the lifecycle phase of a match
type MatchPhase int

const (
	// PhaseInitializing - engine objects created, no board yet
	PhaseInitializing MatchPhase = iota

	// PhaseStarting - map generated, armies and capture points being placed
	PhaseStarting

	// PhaseRunning - players are taking turns
	PhaseRunning

	// PhaseEnded - one side has no units left
	PhaseEnded

	// PhaseError - setup failed
	PhaseError
)

func (p MatchPhase) String() string {
	switch p {
	case PhaseInitializing:
		return "Initializing"
	case PhaseStarting:
		return "Starting"
	case PhaseRunning:
		return "Running"
	case PhaseEnded:
		return "Ended"
	case PhaseError:
		return "Error"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// IsTerminal returns true if no further transitions are possible
func (p MatchPhase) IsTerminal() bool {
	return p == PhaseEnded || p == PhaseError
}

// CanReceiveActions returns true if player commands are accepted in this phase
func (p MatchPhase) CanReceiveActions() bool {
	return p == PhaseRunning
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p MatchPhase) AllowedTransitions() []MatchPhase {
	switch p {
	case PhaseInitializing:
		return []MatchPhase{PhaseStarting, PhaseError}
	case PhaseStarting:
		return []MatchPhase{PhaseRunning, PhaseError}
	case PhaseRunning:
		return []MatchPhase{PhaseEnded, PhaseError}
	default:
		return nil
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p MatchPhase) CanTransitionTo(target MatchPhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string produced by String back to a phase
func ParsePhase(s string) (MatchPhase, error) {
	for p := PhaseInitializing; p <= PhaseError; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return PhaseInitializing, fmt.Errorf("unknown phase %q", s)
}
