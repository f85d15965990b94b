package game

import (
	"context"
	"fmt"
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

// StartingArmy is the pair each player starts with, placed on the two
// tiles of their spawn anchor
var StartingArmy = [2]core.UnitKind{core.Soldier, core.Archer}

// EngineInitializer handles the setup of a new match
type EngineInitializer struct {
	config GameConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg GameConfig) *EngineInitializer {
	return &EngineInitializer{
		config: cfg,
		logger: cfg.Logger.With().Str("component", "GameEngine").Logger(),
	}
}

// Initialize creates the engine, builds the board and moves the match to Running
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled or timed out during initial phase")
		return nil, ctx.Err()
	default:
	}

	ei.setupDefaults()
	if err := ei.config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}

	engine := ei.createEngine()
	if err := engine.stateMachine.TransitionTo(states.PhaseStarting, "engine created"); err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}

	anchors, err := ei.buildBoard(engine)
	if err != nil {
		ei.failSetup(engine, err)
		return nil, fmt.Errorf("map generation failed: %w", err)
	}
	if err := ei.placeStartingArmies(engine, anchors); err != nil {
		ei.failSetup(engine, err)
		return nil, fmt.Errorf("placing starting armies failed: %w", err)
	}
	ei.placeCapturePoints(engine)

	engine.stateMachine.GetContext().BoardReady = true
	if err := engine.stateMachine.TransitionTo(states.PhaseRunning, "board set up"); err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}

	engine.publish(events.NewMatchStartedEvent(engine.matchID, engine.now, engine.grid.W, engine.grid.H, engine.seed))

	ei.logger.Info().
		Str("match_id", engine.matchID).
		Int("width", engine.grid.W).
		Int("height", engine.grid.H).
		Int64("seed", engine.seed).
		Int("capture_points", len(engine.reg.CapturePoints())).
		Msg("Engine created successfully")

	return engine, nil
}

// setupDefaults sets up default values for missing configuration
func (ei *EngineInitializer) setupDefaults() {
	if ei.config.StartTime.IsZero() {
		ei.config.StartTime = time.Now()
	}
	if ei.config.Rng == nil {
		if ei.config.Seed == 0 {
			ei.config.Seed = ei.config.StartTime.UnixNano()
		}
		ei.logger.Debug().Int64("seed", ei.config.Seed).Msg("No RNG provided, creating seeded RNG")
		ei.config.Rng = rand.New(rand.NewSource(ei.config.Seed))
	}
	if ei.config.MatchID == "" {
		ei.config.MatchID = fmt.Sprintf("match_%d", ei.config.StartTime.UnixNano())
	}
	if ei.config.Grid != nil {
		ei.config.Rules.Map.Width = ei.config.Grid.W
		ei.config.Rules.Map.Height = ei.config.Grid.H
	}
	if ei.config.EventBus == nil {
		ei.config.EventBus = events.NewEventBus(ei.config.Logger)
	}
}

// createEngine wires the components that do not depend on the board
func (ei *EngineInitializer) createEngine() *Engine {
	cfg := ei.config
	engine := &Engine{
		matchID:       cfg.MatchID,
		rules:         cfg.Rules,
		seed:          cfg.Seed,
		rng:           cfg.Rng,
		logger:        ei.logger.With().Str("match_id", cfg.MatchID).Logger(),
		eventBus:      cfg.EventBus,
		winCondition:  rules.NewWinConditionChecker(ei.logger),
		currentPlayer: 0,
		round:         1,
		winner:        core.NoOwner,
		now:           cfg.StartTime,
	}

	matchCtx := states.NewMatchContext(cfg.MatchID, ei.logger, engine.Now)
	engine.stateMachine = states.NewStateMachine(matchCtx, cfg.EventBus)
	engine.turnProcessor = NewTurnProcessor(engine)
	engine.commandProcessor = processor.NewCommandProcessor(engine.logger)
	return engine
}

// buildBoard generates or adopts the grid and wires the grid-dependent components
func (ei *EngineInitializer) buildBoard(engine *Engine) ([]mapgen.SpawnAnchor, error) {
	gen := mapgen.NewGenerator(ei.config.Rules.Map, ei.config.Rng)

	grid := ei.config.Grid
	anchors := ei.config.Anchors
	var err error
	switch {
	case grid == nil:
		grid, anchors, err = gen.GenerateMap()
	case len(anchors) == 0:
		anchors, err = gen.PlaceAnchors(grid)
	case len(anchors) != core.NumPlayers:
		err = fmt.Errorf("expected %d spawn anchors, got %d", core.NumPlayers, len(anchors))
	}
	if err != nil {
		return nil, err
	}

	engine.grid = grid
	engine.reg = entity.NewRegistry()
	engine.pathFinder = pathfind.New(grid)
	engine.economy = economy.New(engine.reg, grid, ei.config.Rules.Economy, ei.config.Rng, ei.logger)
	engine.combat = combat.NewResolver(engine.reg, engine.economy, ei.logger)
	engine.spawner = spawn.NewScheduler(engine.reg, grid, ei.config.Rules.Spawn, ei.config.Rng, ei.logger)
	engine.legalMoves = rules.NewLegalMoveCalculator(grid, engine.reg, engine.pathFinder)
	return anchors, nil
}

// placeStartingArmies puts each player's starting pair on their anchor
func (ei *EngineInitializer) placeStartingArmies(engine *Engine, anchors []mapgen.SpawnAnchor) error {
	for _, a := range anchors {
		if !core.ValidPlayer(a.PlayerID) {
			return fmt.Errorf("spawn anchor for unknown player %d", a.PlayerID)
		}
		for i, pos := range a.Tiles() {
			kind := StartingArmy[i]
			stats, ok := ei.config.Rules.Economy.UnitStats[kind]
			if !ok {
				return fmt.Errorf("no stats for starting unit %s", kind)
			}
			if !engine.grid.IsWalkablePos(pos) {
				return fmt.Errorf("spawn tile %s for player %d: %w", pos, a.PlayerID, core.ErrUnwalkable)
			}
			if _, err := engine.reg.AddUnit(a.PlayerID, kind, stats, pos); err != nil {
				return fmt.Errorf("spawn tile %s for player %d: %w", pos, a.PlayerID, err)
			}
		}
	}
	return nil
}

// placeCapturePoints scatters capture points away from the starting units
func (ei *EngineInitializer) placeCapturePoints(engine *Engine) {
	var avoid []core.Position
	for _, u := range engine.reg.Units() {
		avoid = append(avoid, u.Pos)
	}
	points := engine.economy.GenerateCapturePoints(ei.config.Rules.CapturePoints, avoid)
	if len(points) < ei.config.Rules.CapturePoints {
		ei.logger.Warn().
			Int("requested", ei.config.Rules.CapturePoints).
			Int("placed", len(points)).
			Msg("Could not place every capture point")
	}
}

// failSetup moves the match to the error phase after a setup failure
func (ei *EngineInitializer) failSetup(engine *Engine, err error) {
	engine.stateMachine.GetContext().Error = err
	if tErr := engine.stateMachine.TransitionTo(states.PhaseError, "setup failed"); tErr != nil {
		ei.logger.Error().Err(tErr).Msg("Failed to transition to Error state")
	}
}
