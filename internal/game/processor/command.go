package processor

import (
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/combat"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// ErrMalformedCommand marks a command that could not be decoded into an
// engine call. Rule violations are reported with the core error types instead.
var ErrMalformedCommand = errors.New("malformed command")

// CommandType names the engine operation a command maps to
type CommandType string

const (
	CommandSelect     CommandType = "select"
	CommandDeselect   CommandType = "deselect"
	CommandBegin      CommandType = "begin_action"
	CommandMove       CommandType = "move"
	CommandAttack     CommandType = "attack"
	CommandBuildTower CommandType = "build_tower"
	CommandCreateUnit CommandType = "create_unit"
	CommandEndTurn    CommandType = "end_turn"
)

// TargetRef is the wire form of an attack target
type TargetRef struct {
	Kind string `json:"kind"`
	ID   int    `json:"id,omitempty"`
}

// Command is one player instruction. Move, attack and build_tower with a
// UnitID select that unit and arm the action before committing; without a
// UnitID they commit the pending action of the current selection.
type Command struct {
	Type    CommandType `json:"type"`
	UnitID  int         `json:"unit_id,omitempty"`
	TowerID int         `json:"tower_id,omitempty"`

	// Kind is the action kind for begin_action and the unit kind for create_unit
	Kind   string     `json:"kind,omitempty"`
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Target *TargetRef `json:"target,omitempty"`
}

func (c Command) Dest() core.Position { return core.Pos(c.X, c.Y) }

// AttackTarget decodes the target reference
func (c Command) AttackTarget() (combat.Target, error) {
	if c.Target == nil {
		return combat.Target{}, fmt.Errorf("%w: attack without target", ErrMalformedCommand)
	}
	kind, err := combat.ParseTargetKind(c.Target.Kind)
	if err != nil {
		return combat.Target{}, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
	}
	if kind == combat.TargetBoss {
		return combat.BossTarget(), nil
	}
	return combat.Target{Kind: kind, ID: c.Target.ID}, nil
}

// RefFor is the inverse of AttackTarget
func RefFor(t combat.Target) *TargetRef {
	ref := &TargetRef{Kind: t.Kind.String()}
	if t.Kind != combat.TargetBoss {
		ref.ID = t.ID
	}
	return ref
}

// Validate checks that the command carries the fields its type needs
func (c Command) Validate() error {
	switch c.Type {
	case CommandSelect:
		if c.UnitID <= 0 {
			return fmt.Errorf("%w: select needs unit_id", ErrMalformedCommand)
		}
	case CommandBegin:
		if _, err := core.ParseActionKind(c.Kind); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
	case CommandAttack:
		if _, err := c.AttackTarget(); err != nil {
			return err
		}
	case CommandCreateUnit:
		if c.TowerID <= 0 {
			return fmt.Errorf("%w: create_unit needs tower_id", ErrMalformedCommand)
		}
		if _, err := core.ParseUnitKind(c.Kind); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}
	case CommandDeselect, CommandMove, CommandBuildTower, CommandEndTurn:
	default:
		return fmt.Errorf("%w: unknown command type %q", ErrMalformedCommand, c.Type)
	}
	return nil
}
