package game

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/events"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/spawn"
)

// TurnProcessor handles the orchestration of an end-turn
type TurnProcessor struct {
	engine *Engine
	logger zerolog.Logger
}

// NewTurnProcessor creates a new turn processor
func NewTurnProcessor(engine *Engine) *TurnProcessor {
	return &TurnProcessor{
		engine: engine,
		logger: engine.logger.With().Str("component", "TurnProcessor").Logger(),
	}
}

// ProcessEndTurn runs the end-turn phases in order: income for the ending
// player, tower flag reset, hand-over (with the round bump), neutral
// spawn cadence, flag reset for the incoming player, game-over check.
func (tp *TurnProcessor) ProcessEndTurn() error {
	e := tp.engine
	if err := tp.validateMatchState(); err != nil {
		return err
	}

	ending := e.currentPlayer
	turnLogger := tp.logger.With().Int("round", e.round).Int("player_id", ending).Logger()
	turnLogger.Debug().Msg("Ending turn")

	income := tp.processIncomePhase(ending)
	e.economy.ResetTowerFlags()

	tp.processHandOverPhase(ending)
	tp.processSpawnPhase(turnLogger)
	tp.processTurnStartPhase()

	e.publish(events.NewTurnEndedEvent(e.matchID, e.now, e.round, ending, e.currentPlayer, income, e.turnCount))
	e.checkGameOver(ending)

	turnLogger.Info().
		Int("next_player", e.currentPlayer).
		Int("income", income).
		Int("turn_count", e.turnCount).
		Msg("Turn ended")
	return nil
}

// validateMatchState ensures the match can still take an end-turn
func (tp *TurnProcessor) validateMatchState() error {
	e := tp.engine
	if e.gameOver {
		tp.logger.Warn().Int("turn_count", e.turnCount).Msg("Attempted to end turn in a finished match")
		return core.WrapTurnError("end turn", e.currentPlayer, core.ErrMatchAlreadyOver)
	}
	if phase := e.stateMachine.CurrentPhase(); !phase.CanReceiveActions() {
		tp.logger.Warn().Str("current_phase", phase.String()).Msg("Attempted to end turn in phase that cannot receive actions")
		return core.WrapTurnError("end turn", e.currentPlayer, core.ErrMatchAlreadyOver)
	}
	return nil
}

func (tp *TurnProcessor) processIncomePhase(player int) int {
	e := tp.engine
	income := e.economy.EndTurnIncome(player)
	e.publish(events.NewIncomeCreditedEvent(e.matchID, e.now, e.round, player, income, e.economy.Treasury(player)))
	return income
}

// processHandOverPhase switches the current player. The round advances
// exactly when control returns to player 0.
func (tp *TurnProcessor) processHandOverPhase(ending int) {
	e := tp.engine
	e.turnCount++
	e.currentPlayer = core.Opponent(ending)
	if e.currentPlayer == 0 {
		e.round++
		e.publish(events.NewRoundStartedEvent(e.matchID, e.now, e.round))
	}
}

func (tp *TurnProcessor) processSpawnPhase(turnLogger zerolog.Logger) {
	e := tp.engine
	rep := e.spawner.OnEndTurn(e.turnCount, e.round)
	tp.publishSpawnReport(rep)

	turnLogger.Debug().
		Int("monsters_spawned", len(rep.MonstersSpawned)).
		Int("monsters_moved", len(rep.MonstersMoved)).
		Bool("boss_spawned", rep.BossSpawned != nil).
		Bool("boss_moved", rep.BossMoved).
		Msg("Spawn cadence applied")
}

func (tp *TurnProcessor) publishSpawnReport(rep spawn.Report) {
	e := tp.engine
	for _, m := range rep.MonstersSpawned {
		e.publish(events.NewMonsterSpawnedEvent(e.matchID, e.now, e.round, m.ID, m.Pos))
	}
	if b := rep.BossSpawned; b != nil {
		e.publish(events.NewBossSpawnedEvent(e.matchID, e.now, e.round, b.ID, b.Pos, b.HP))
	}
}

// processTurnStartPhase readies the incoming player's units and drops
// the previous player's selection.
func (tp *TurnProcessor) processTurnStartPhase() {
	e := tp.engine
	for _, u := range e.reg.UnitsOf(e.currentPlayer) {
		u.ResetTurnFlags()
	}
	e.clearSelection()
}
