package core

import "fmt"

// ActionKind is the kind of action a selected unit can begin
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionAttack
	ActionBuildTower
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	case ActionBuildTower:
		return "build_tower"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// ParseActionKind is the inverse of ActionKind.String
func ParseActionKind(s string) (ActionKind, error) {
	switch s {
	case "move":
		return ActionMove, nil
	case "attack":
		return ActionAttack, nil
	case "build_tower":
		return ActionBuildTower, nil
	default:
		return ActionNone, fmt.Errorf("unknown action kind %q", s)
	}
}

// UsesMoveSlot reports whether the action consumes the unit's move for the turn.
// Building a tower spends the move slot.
func (k ActionKind) UsesMoveSlot() bool {
	return k == ActionMove || k == ActionBuildTower
}

const (
	NumPlayers = 2
	NoOwner    = -1
)

// Opponent returns the other player of a two-player match
func Opponent(player int) int {
	return 1 - player
}

// ValidPlayer reports whether id names one of the two seats
func ValidPlayer(id int) bool {
	return id >= 0 && id < NumPlayers
}
