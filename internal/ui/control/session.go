// Package control turns player intents from the client into engine commands.
package control

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
)

var (
	ErrNothingToAttack = errors.New("nothing to attack there")
	ErrNoTowerSelected = errors.New("select one of your towers first")
	ErrNotYourTurn     = errors.New("it is not your turn")
)

// IntentKind is what the player asked for
type IntentKind int

const (
	IntentClick IntentKind = iota
	IntentBegin
	IntentBuy
	IntentEndTurn
	IntentDeselect
)

// Intent is one piece of player input, already mapped to the board
type Intent struct {
	Kind   IntentKind
	Tile   core.Position   // IntentClick
	Action core.ActionKind // IntentBegin
	Unit   core.UnitKind   // IntentBuy
}

// Session applies one local player's intents to an engine. A click
// commits the pending action when one is armed and selects otherwise.
type Session struct {
	engine        *game.Engine
	player        int
	selectedTower int
	logger        zerolog.Logger
}

// NewSession creates a session acting as player
func NewSession(engine *game.Engine, player int, logger zerolog.Logger) *Session {
	return &Session{
		engine: engine,
		player: player,
		logger: logger.With().Str("component", "Session").Int("player_id", player).Logger(),
	}
}

// Player returns the seat this session controls
func (s *Session) Player() int { return s.player }

// SelectedTower returns the tower picked for purchases, or 0
func (s *Session) SelectedTower() int { return s.selectedTower }

// MyTurn reports whether the engine is waiting on this session
func (s *Session) MyTurn() bool {
	return !s.engine.IsGameOver() && s.engine.CurrentPlayer() == s.player
}

// Handle applies one intent. Engine rejections are returned unchanged.
func (s *Session) Handle(in Intent) (processor.Result, error) {
	if !s.MyTurn() {
		return processor.Result{}, ErrNotYourTurn
	}
	cmd, err := s.commandFor(in)
	if err != nil {
		return processor.Result{}, err
	}
	res, err := s.engine.Apply(s.player, cmd)
	if err != nil {
		s.logger.Debug().Err(err).Str("command_type", string(cmd.Type)).Msg("Command rejected")
		return res, err
	}
	if in.Kind == IntentEndTurn || in.Kind == IntentDeselect {
		s.selectedTower = 0
	}
	return res, nil
}

func (s *Session) commandFor(in Intent) (processor.Command, error) {
	switch in.Kind {
	case IntentClick:
		return s.clickCommand(in.Tile)
	case IntentBegin:
		return processor.Command{Type: processor.CommandBegin, Kind: in.Action.String()}, nil
	case IntentBuy:
		if s.selectedTower == 0 {
			return processor.Command{}, ErrNoTowerSelected
		}
		return processor.Command{Type: processor.CommandCreateUnit, TowerID: s.selectedTower, Kind: in.Unit.String()}, nil
	case IntentEndTurn:
		return processor.Command{Type: processor.CommandEndTurn}, nil
	case IntentDeselect:
		return processor.Command{Type: processor.CommandDeselect}, nil
	default:
		return processor.Command{}, fmt.Errorf("unknown intent %d", in.Kind)
	}
}

func (s *Session) clickCommand(tile core.Position) (processor.Command, error) {
	snap := s.engine.Snapshot()
	switch snap.PendingAction {
	case core.ActionMove.String():
		return processor.Command{Type: processor.CommandMove, X: tile.X, Y: tile.Y}, nil
	case core.ActionBuildTower.String():
		return processor.Command{Type: processor.CommandBuildTower, X: tile.X, Y: tile.Y}, nil
	case core.ActionAttack.String():
		ref, ok := targetAt(snap, tile)
		if !ok {
			return processor.Command{}, ErrNothingToAttack
		}
		return processor.Command{Type: processor.CommandAttack, Target: ref}, nil
	}

	for _, u := range snap.Units {
		if u.X == tile.X && u.Y == tile.Y && u.Owner == s.player {
			s.selectedTower = 0
			return processor.Command{Type: processor.CommandSelect, UnitID: u.ID}, nil
		}
	}
	for _, t := range snap.Towers {
		if t.X == tile.X && t.Y == tile.Y && t.Owner == s.player {
			s.selectedTower = t.ID
			return processor.Command{Type: processor.CommandDeselect}, nil
		}
	}
	s.selectedTower = 0
	return processor.Command{Type: processor.CommandDeselect}, nil
}

// targetAt names whatever stands on tile as an attack target. The engine
// decides whether it is a legal one.
func targetAt(snap game.Snapshot, tile core.Position) (*processor.TargetRef, bool) {
	for _, u := range snap.Units {
		if u.X == tile.X && u.Y == tile.Y {
			return &processor.TargetRef{Kind: "unit", ID: u.ID}, true
		}
	}
	for _, t := range snap.Towers {
		if t.X == tile.X && t.Y == tile.Y {
			return &processor.TargetRef{Kind: "tower", ID: t.ID}, true
		}
	}
	for _, m := range snap.Monsters {
		if m.X == tile.X && m.Y == tile.Y {
			return &processor.TargetRef{Kind: "monster", ID: m.ID}, true
		}
	}
	if b := snap.Boss; b != nil && b.X == tile.X && b.Y == tile.Y {
		return &processor.TargetRef{Kind: "boss"}, true
	}
	return nil, false
}

// PlayOpponent plays one random turn for the seat that is not this
// session's, when it holds the turn. It reports whether a turn was played.
func (s *Session) PlayOpponent(rng *rand.Rand) bool {
	if s.engine.IsGameOver() || s.engine.CurrentPlayer() == s.player {
		return false
	}
	applied, rejected := game.PlayRandomTurn(s.engine, rng)
	s.logger.Debug().Int("applied", applied).Int("rejected", rejected).Msg("Opponent turn played")
	return true
}
