package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/combat"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/economy"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/events"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/mapgen"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/pathfind"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/rules"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/spawn"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/states"
)

// GameConfig holds configuration for creating a new match
type GameConfig struct {
	MatchID string
	Rules   Rules

	// Seed is used when Rng is nil. Zero picks a time-based seed.
	Seed int64
	Rng  *rand.Rand

	// Grid replaces the generated map, e.g. one loaded through a
	// TileWalkabilityOracle. Anchors are placed on it when nil.
	Grid    *core.GridMap
	Anchors []mapgen.SpawnAnchor

	// StartTime is the match clock before the first Tick
	StartTime time.Time

	Logger   zerolog.Logger
	EventBus *events.EventBus
}

// Engine owns one match: the world model, both players' turn state and
// the components that apply rules to it. It is not safe for concurrent use.
type Engine struct {
	matchID string
	rules   Rules
	seed    int64
	rng     *rand.Rand
	logger  zerolog.Logger

	grid         *core.GridMap
	reg          *entity.Registry
	pathFinder   *pathfind.PathFinder
	economy      *economy.Economy
	combat       *combat.Resolver
	spawner      *spawn.Scheduler
	legalMoves   *rules.LegalMoveCalculator
	winCondition *rules.WinConditionChecker

	eventBus         *events.EventBus
	stateMachine     *states.StateMachine
	turnProcessor    *TurnProcessor
	commandProcessor *processor.CommandProcessor

	currentPlayer int
	round         int
	turnCount     int

	selectedUnit int
	pending      core.ActionKind

	gameOver bool
	winner   int

	now time.Time
}

// NewEngine creates a match ready for player 0's first turn
func NewEngine(ctx context.Context, cfg GameConfig) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// Public accessors
func (e *Engine) MatchID() string                { return e.matchID }
func (e *Engine) Seed() int64                    { return e.seed }
func (e *Engine) Grid() *core.GridMap            { return e.grid }
func (e *Engine) Registry() *entity.Registry     { return e.reg }
func (e *Engine) EventBus() *events.EventBus     { return e.eventBus }
func (e *Engine) Rules() Rules                   { return e.rules }
func (e *Engine) CurrentPlayer() int             { return e.currentPlayer }
func (e *Engine) Round() int                     { return e.round }
func (e *Engine) TurnCount() int                 { return e.turnCount }
func (e *Engine) SelectedUnit() int              { return e.selectedUnit }
func (e *Engine) PendingAction() core.ActionKind { return e.pending }
func (e *Engine) IsGameOver() bool               { return e.gameOver }
func (e *Engine) Now() time.Time                 { return e.now }
func (e *Engine) Treasury(player int) int        { return e.economy.Treasury(player) }

// Phase returns the lifecycle phase of the match
func (e *Engine) Phase() states.MatchPhase { return e.stateMachine.CurrentPhase() }

// GetWinner returns the winning player ID, or core.NoOwner if the match isn't over
func (e *Engine) GetWinner() int {
	if !e.gameOver {
		return core.NoOwner
	}
	return e.winner
}

func (e *Engine) publish(ev events.Event) {
	e.eventBus.Publish(ev)
}

// reject logs and reports a refused command, then hands the error back
func (e *Engine) reject(op string, err error) error {
	e.logger.Debug().
		Err(err).
		Str("op", op).
		Int("player_id", e.currentPlayer).
		Int("unit_id", e.selectedUnit).
		Msg("Action rejected")
	e.publish(events.NewActionRejectedEvent(e.matchID, e.now, e.round, e.currentPlayer, op, err))
	return err
}

func (e *Engine) checkNotOver(op string) error {
	if e.gameOver {
		return core.WrapTurnError(op, e.currentPlayer, core.ErrMatchAlreadyOver)
	}
	return nil
}

// selected returns the selected unit, dropping the selection if the unit
// has died since it was selected.
func (e *Engine) selected() (*entity.Unit, bool) {
	if e.selectedUnit == 0 {
		return nil, false
	}
	u, ok := e.reg.Unit(e.selectedUnit)
	if !ok || !u.Alive() {
		e.clearSelection()
		return nil, false
	}
	return u, true
}

func (e *Engine) clearSelection() {
	e.selectedUnit = 0
	e.pending = core.ActionNone
}

// SelectUnit makes one of the current player's live units the actor for
// the next action. Any pending action is dropped.
func (e *Engine) SelectUnit(unitID int) error {
	const op = "select unit"
	if err := e.checkNotOver(op); err != nil {
		return err
	}
	u, ok := e.reg.Unit(unitID)
	if !ok || !u.Alive() {
		return e.reject(op, core.WrapActionError(op, unitID, core.ErrUnknownEntity))
	}
	if u.Owner != e.currentPlayer {
		return e.reject(op, core.WrapTurnError(op, e.currentPlayer, core.ErrNotCurrentPlayersUnit))
	}

	e.selectedUnit = unitID
	e.pending = core.ActionNone
	e.publish(events.NewUnitSelectedEvent(e.matchID, e.now, e.round, e.currentPlayer, unitID))
	return nil
}

// Deselect cancels the selection and any pending action
func (e *Engine) Deselect() {
	e.clearSelection()
}

// RestoreSelection puts back a selection read earlier from SelectedUnit
// and PendingAction. A unit that is gone or no longer the current
// player's clears the selection instead. No event is published.
func (e *Engine) RestoreSelection(unitID int, pending core.ActionKind) {
	u, ok := e.reg.Unit(unitID)
	if unitID == 0 || !ok || !u.Alive() || u.Owner != e.currentPlayer {
		e.clearSelection()
		return
	}
	e.selectedUnit = unitID
	e.pending = pending
}

// BeginAction arms an action for the selected unit. Move and BuildTower
// share the move slot; Attack has its own.
func (e *Engine) BeginAction(kind core.ActionKind) error {
	const op = "begin action"
	if err := e.checkNotOver(op); err != nil {
		return err
	}
	u, ok := e.selected()
	if !ok {
		return e.reject(op, core.WrapActionError(op, 0, core.ErrNoUnitSelected))
	}

	switch kind {
	case core.ActionMove, core.ActionBuildTower:
		if u.HasMoved {
			return e.reject(op, core.WrapActionError(op, u.ID, core.ErrActionAlreadyPerformed))
		}
	case core.ActionAttack:
		if u.HasAttacked {
			return e.reject(op, core.WrapActionError(op, u.ID, core.ErrActionAlreadyPerformed))
		}
	default:
		return e.reject(op, core.WrapActionError(op, u.ID, core.ErrIllegalTarget))
	}

	e.pending = kind
	return nil
}

// pendingUnit resolves the selected unit for a commit of the given kind.
// A spent slot is reported before a missing pending action so a repeated
// commit reads as ActionAlreadyPerformed.
func (e *Engine) pendingUnit(op string, kind core.ActionKind) (*entity.Unit, error) {
	u, ok := e.selected()
	if !ok {
		return nil, core.WrapActionError(op, 0, core.ErrNoUnitSelected)
	}
	spent := u.HasMoved
	if kind == core.ActionAttack {
		spent = u.HasAttacked
	}
	if spent {
		return nil, core.WrapActionError(op, u.ID, core.ErrActionAlreadyPerformed)
	}
	if e.pending != kind {
		return nil, core.WrapActionError(op, u.ID, core.ErrNoPendingAction)
	}
	return u, nil
}

// CommitMove sends the selected unit to dest. The unit's tile changes at
// once; Tick animates the walk along the path.
func (e *Engine) CommitMove(dest core.Position) error {
	const op = "move"
	if err := e.checkNotOver(op); err != nil {
		return err
	}
	u, err := e.pendingUnit(op, core.ActionMove)
	if err != nil {
		return e.reject(op, err)
	}
	if dest == u.Pos {
		return e.reject(op, core.WrapActionError(op, u.ID, core.ErrIllegalTarget))
	}
	path, err := e.legalMoves.CheckMove(u, dest)
	if err != nil {
		return e.reject(op, core.WrapActionError(op, u.ID, err))
	}

	from := u.Pos
	if err := e.reg.MoveUnit(u.ID, dest); err != nil {
		return e.reject(op, core.WrapActionError(op, u.ID, err))
	}
	u.FX, u.FY = float64(from.X), float64(from.Y)
	u.Path = path[1:]
	u.HasMoved = true
	e.pending = core.ActionNone

	e.logger.Debug().
		Int("unit_id", u.ID).
		Int("player_id", u.Owner).
		Int("from_x", from.X).Int("from_y", from.Y).
		Int("x", dest.X).Int("y", dest.Y).
		Int("steps", len(u.Path)).
		Msg("Unit moving")
	e.publish(events.NewUnitMovedEvent(e.matchID, e.now, e.round, u.Owner, u.ID, from, dest, len(u.Path)))
	return nil
}

// CommitAttack resolves an attack by the selected unit
func (e *Engine) CommitAttack(target combat.Target) error {
	const op = "attack"
	if err := e.checkNotOver(op); err != nil {
		return err
	}
	u, err := e.pendingUnit(op, core.ActionAttack)
	if err != nil {
		return e.reject(op, err)
	}

	out, err := e.combat.Attack(u.ID, target)
	if err != nil {
		return e.reject(op, err)
	}
	e.pending = core.ActionNone
	e.recordAttack(out)
	e.checkGameOver(e.currentPlayer)
	return nil
}

func (e *Engine) recordAttack(out combat.Outcome) {
	e.publish(events.NewUnitAttackedEvent(e.matchID, e.now, e.round, out.AttackerOwner, out.AttackerID,
		out.Target.Kind.String(), out.Target.ID, out.Damage, out.TargetHPAfter, out.Killed, out.Bounty))

	if out.Killed {
		e.publish(events.NewEntityKilledEvent(e.matchID, e.now, e.round,
			out.Target.Kind.String(), out.Target.ID, out.TargetOwner, out.AttackerID))
		if out.Target.Kind == combat.TargetBoss {
			e.spawner.NotifyBossKilled(e.round)
		}
		if out.Bounty > 0 {
			e.publish(events.NewIncomeCreditedEvent(e.matchID, e.now, e.round, out.AttackerOwner, out.Bounty,
				e.economy.Treasury(out.AttackerOwner)))
		}
	}

	if c := out.Counter; c != nil {
		e.publish(events.NewBossCounterattackedEvent(e.matchID, e.now, e.round, out.AttackerID, c.Damage, c.AttackerHPAfter, c.AttackerKilled))
		if c.AttackerKilled {
			e.publish(events.NewEntityKilledEvent(e.matchID, e.now, e.round,
				combat.TargetUnit.String(), out.AttackerID, out.AttackerOwner, 0))
			if e.selectedUnit == out.AttackerID {
				e.clearSelection()
			}
		}
	}
}

// CommitBuildTower has the selected unit build a tower at dest. Building
// spends the unit's move slot.
func (e *Engine) CommitBuildTower(dest core.Position) error {
	const op = "build tower"
	if err := e.checkNotOver(op); err != nil {
		return err
	}
	u, err := e.pendingUnit(op, core.ActionBuildTower)
	if err != nil {
		return e.reject(op, err)
	}

	tower, err := e.economy.CreateTower(e.currentPlayer, dest, u.ID)
	if err != nil {
		return e.reject(op, err)
	}
	u.HasMoved = true
	e.pending = core.ActionNone

	e.publish(events.NewTowerBuiltEvent(e.matchID, e.now, e.round, e.currentPlayer, tower.ID, u.ID, dest))
	return nil
}

// CreateUnit buys a unit at one of the current player's towers and returns its id
func (e *Engine) CreateUnit(towerID int, kind core.UnitKind) (int, error) {
	const op = "create unit"
	if err := e.checkNotOver(op); err != nil {
		return 0, err
	}
	u, err := e.economy.CreateUnit(e.currentPlayer, towerID, kind)
	if err != nil {
		return 0, e.reject(op, err)
	}
	e.publish(events.NewUnitCreatedEvent(e.matchID, e.now, e.round, e.currentPlayer, u.ID,
		kind.String(), towerID, u.Pos, u.Stats.Cost))
	return u.ID, nil
}

// Apply runs a decoded command for player. Hosts use it instead of
// calling the action methods one by one.
func (e *Engine) Apply(player int, cmd processor.Command) (processor.Result, error) {
	return e.commandProcessor.Apply(e, player, cmd)
}

// EndTurn hands control to the other player
func (e *Engine) EndTurn() error {
	return e.turnProcessor.ProcessEndTurn()
}

// checkGameOver ends the match if either side has no live units left
func (e *Engine) checkGameOver(actingPlayer int) {
	if e.gameOver {
		return
	}
	over, winner := e.winCondition.CheckGameOver(e.reg, actingPlayer)
	if !over {
		return
	}

	e.gameOver = true
	e.winner = winner
	e.clearSelection()

	ctx := e.stateMachine.GetContext()
	ctx.Winner = winner
	if err := e.stateMachine.TransitionTo(states.PhaseEnded, "player eliminated"); err != nil {
		e.logger.Error().Err(err).Msg("Failed to transition to Ended state")
	}

	e.logger.Info().
		Int("winner", winner).
		Int("round", e.round).
		Int("turn_count", e.turnCount).
		Msg("Match over")
	e.publish(events.NewMatchEndedEvent(e.matchID, e.now, e.round, winner, e.turnCount))
}
