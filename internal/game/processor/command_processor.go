package processor

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/combat"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// Controller is the part of the match engine commands drive. It is an
// interface so the engine can embed a processor without an import cycle.
type Controller interface {
	CurrentPlayer() int
	SelectedUnit() int
	PendingAction() core.ActionKind
	SelectUnit(unitID int) error
	Deselect()
	RestoreSelection(unitID int, pending core.ActionKind)
	BeginAction(kind core.ActionKind) error
	CommitMove(dest core.Position) error
	CommitAttack(target combat.Target) error
	CommitBuildTower(dest core.Position) error
	CreateUnit(towerID int, kind core.UnitKind) (int, error)
	EndTurn() error
}

// Result carries what a successful command produced
type Result struct {
	CreatedUnitID int  `json:"created_unit_id,omitempty"`
	TurnEnded     bool `json:"turn_ended,omitempty"`
}

// CommandProcessor decodes commands and applies them to a Controller
type CommandProcessor struct {
	logger zerolog.Logger
}

// NewCommandProcessor creates a new command processor
func NewCommandProcessor(logger zerolog.Logger) *CommandProcessor {
	return &CommandProcessor{
		logger: logger.With().Str("component", "CommandProcessor").Logger(),
	}
}

// Apply runs one command on behalf of player. Commands from the player
// who is not to move are refused before anything is decoded.
func (cp *CommandProcessor) Apply(c Controller, player int, cmd Command) (Result, error) {
	if !core.ValidPlayer(player) || player != c.CurrentPlayer() {
		return Result{}, core.WrapTurnError(string(cmd.Type), player, core.ErrNotCurrentPlayersUnit)
	}
	if err := cmd.Validate(); err != nil {
		cp.logger.Warn().Err(err).Int("player_id", player).Str("command_type", string(cmd.Type)).Msg("Malformed command")
		return Result{}, err
	}

	cp.logger.Debug().
		Int("player_id", player).
		Str("command_type", string(cmd.Type)).
		Int("unit_id", cmd.UnitID).
		Int("x", cmd.X).
		Int("y", cmd.Y).
		Msg("Applying command")

	switch cmd.Type {
	case CommandSelect:
		return Result{}, c.SelectUnit(cmd.UnitID)
	case CommandDeselect:
		c.Deselect()
		return Result{}, nil
	case CommandBegin:
		kind, _ := core.ParseActionKind(cmd.Kind)
		return Result{}, c.BeginAction(kind)
	case CommandMove:
		return Result{}, cp.armAndCommit(c, cmd.UnitID, core.ActionMove, func() error {
			return c.CommitMove(cmd.Dest())
		})
	case CommandAttack:
		target, _ := cmd.AttackTarget()
		return Result{}, cp.armAndCommit(c, cmd.UnitID, core.ActionAttack, func() error {
			return c.CommitAttack(target)
		})
	case CommandBuildTower:
		return Result{}, cp.armAndCommit(c, cmd.UnitID, core.ActionBuildTower, func() error {
			return c.CommitBuildTower(cmd.Dest())
		})
	case CommandCreateUnit:
		kind, _ := core.ParseUnitKind(cmd.Kind)
		id, err := c.CreateUnit(cmd.TowerID, kind)
		return Result{CreatedUnitID: id}, err
	case CommandEndTurn:
		if err := c.EndTurn(); err != nil {
			return Result{}, err
		}
		return Result{TurnEnded: true}, nil
	}
	return Result{}, nil
}

// armAndCommit selects unitID and begins the action when the command names
// a unit, then commits. A failure at any step puts the previous selection
// and pending action back.
func (cp *CommandProcessor) armAndCommit(c Controller, unitID int, kind core.ActionKind, commit func() error) error {
	if unitID == 0 {
		return commit()
	}
	prevUnit, prevPending := c.SelectedUnit(), c.PendingAction()
	err := c.SelectUnit(unitID)
	if err == nil {
		err = c.BeginAction(kind)
	}
	if err == nil {
		err = commit()
	}
	if err != nil {
		c.RestoreSelection(prevUnit, prevPending)
	}
	return err
}

// ApplyAll runs commands in order and stops at the first error or when
// ctx is cancelled. It returns how many commands were applied.
func (cp *CommandProcessor) ApplyAll(ctx context.Context, c Controller, player int, cmds []Command) (int, error) {
	for i, cmd := range cmds {
		select {
		case <-ctx.Done():
			cp.logger.Warn().Err(ctx.Err()).Int("applied", i).Msg("Command processing interrupted by context cancellation")
			return i, ctx.Err()
		default:
		}
		if _, err := cp.Apply(c, player, cmd); err != nil {
			return i, err
		}
	}
	return len(cmds), nil
}
