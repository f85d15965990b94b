package core

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAlreadyBuiltThisTurn   = errors.New("tower already built this turn")
	ErrUnwalkable             = errors.New("tile is not walkable")
	ErrOutOfRange             = errors.New("target out of range")
	ErrTileOccupied           = errors.New("tile is occupied")
	ErrNoUnitSelected         = errors.New("no unit selected")
	ErrActionAlreadyPerformed = errors.New("action already performed this turn")
	ErrNoPath                 = errors.New("no path to destination")
	ErrIllegalTarget          = errors.New("illegal target")
	ErrNotCurrentPlayersUnit  = errors.New("unit does not belong to current player")
	ErrMatchAlreadyOver       = errors.New("match is already over")
	ErrNoPendingAction        = errors.New("no pending action")
	ErrUnknownEntity          = errors.New("unknown entity")
	ErrUnknownUnitKind        = errors.New("unknown unit kind")
)

// EconomyError wraps a rejected purchase or treasury operation
type EconomyError struct {
	Op       string
	PlayerID int
	Err      error
}

func (e *EconomyError) Error() string {
	return fmt.Sprintf("player %d: %s: %v", e.PlayerID, e.Op, e.Err)
}

func (e *EconomyError) Unwrap() error { return e.Err }

// ActionError wraps a rejected unit action (select, move, attack, build)
type ActionError struct {
	Op     string
	UnitID int
	Err    error
}

func (e *ActionError) Error() string {
	if e.UnitID == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("unit %d: %s: %v", e.UnitID, e.Op, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// TurnError wraps a rejected turn-level operation
type TurnError struct {
	Op       string
	PlayerID int
	Err      error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("player %d: %s: %v", e.PlayerID, e.Op, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }

// WrapEconomyError returns nil for a nil err
func WrapEconomyError(op string, playerID int, err error) error {
	if err == nil {
		return nil
	}
	return &EconomyError{Op: op, PlayerID: playerID, Err: err}
}

// WrapActionError returns nil for a nil err. Unit ids start at 1, so 0 means no unit.
func WrapActionError(op string, unitID int, err error) error {
	if err == nil {
		return nil
	}
	return &ActionError{Op: op, UnitID: unitID, Err: err}
}

// WrapTurnError returns nil for a nil err
func WrapTurnError(op string, playerID int, err error) error {
	if err == nil {
		return nil
	}
	return &TurnError{Op: op, PlayerID: playerID, Err: err}
}

// ErrorKind names the category of a rejection for logs and wire responses
func ErrorKind(err error) string {
	var ee *EconomyError
	var ae *ActionError
	var te *TurnError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ee):
		return "economy"
	case errors.As(err, &ae):
		return "action"
	case errors.As(err, &te):
		return "turn"
	default:
		return "internal"
	}
}
