// Package economy tracks treasuries and resolves purchases, capture points
// and end-of-turn income.
package economy

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
)

// Config holds the economic balance numbers
type Config struct {
	StartingTreasury int
	EndTurnBonus     int
	UnitStats        map[core.UnitKind]core.UnitStats

	TowerCost        int
	TowerHP          int
	TowerAttack      int
	TowerAttackRange int

	CapturePointMinValue int
	CapturePointMaxValue int
	CaptureSpeed         int
	MinPointSpacing      int
	PlacementAttempts    int
}

// DefaultConfig returns the stock balance
func DefaultConfig() Config {
	return Config{
		StartingTreasury:     250,
		EndTurnBonus:         100,
		UnitStats:            core.DefaultUnitStats(),
		TowerCost:            100,
		TowerHP:              100,
		TowerAttack:          10,
		TowerAttackRange:     3,
		CapturePointMinValue: 50,
		CapturePointMaxValue: 100,
		CaptureSpeed:         1,
		MinPointSpacing:      5,
		PlacementAttempts:    1000,
	}
}

// Economy owns both treasuries and the per-turn tower flags
type Economy struct {
	reg    *entity.Registry
	grid   *core.GridMap
	cfg    Config
	rng    *rand.Rand
	logger zerolog.Logger

	treasury   [core.NumPlayers]int
	towerBuilt [core.NumPlayers]bool
}

func New(reg *entity.Registry, grid *core.GridMap, cfg Config, rng *rand.Rand, logger zerolog.Logger) *Economy {
	e := &Economy{
		reg:    reg,
		grid:   grid,
		cfg:    cfg,
		rng:    rng,
		logger: logger.With().Str("component", "Economy").Logger(),
	}
	for p := range e.treasury {
		e.treasury[p] = cfg.StartingTreasury
	}
	return e
}

func (e *Economy) Treasury(player int) int { return e.treasury[player] }

// Credit adds money to a player's treasury
func (e *Economy) Credit(player, amount int) {
	e.treasury[player] += amount
}

func (e *Economy) TowerBuiltThisTurn(player int) bool { return e.towerBuilt[player] }

// ResetTowerFlags clears the one-tower-per-turn flag for both players
func (e *Economy) ResetTowerFlags() {
	for p := range e.towerBuilt {
		e.towerBuilt[p] = false
	}
}

// UnitCost returns the purchase price of a unit kind
func (e *Economy) UnitCost(kind core.UnitKind) (int, bool) {
	s, ok := e.cfg.UnitStats[kind]
	return s.Cost, ok
}

// spawnOffsets puts the tile east of the tower first, then the rest of the
// neighbour ring in expansion order.
func spawnOffsets() []core.Position {
	east := core.Pos(1, 0)
	out := []core.Position{east}
	for _, d := range core.Directions {
		if d != east {
			out = append(out, d)
		}
	}
	return out
}

// CreateUnit buys a unit at one of the player's towers. The unit appears on
// the first free walkable tile around the tower and cannot act until its
// owner's next turn.
func (e *Economy) CreateUnit(player, towerID int, kind core.UnitKind) (*entity.Unit, error) {
	tower, ok := e.reg.Tower(towerID)
	if !ok {
		return nil, core.WrapEconomyError("create unit", player, core.ErrIllegalTarget)
	}
	if tower.Owner != player {
		return nil, core.WrapEconomyError("create unit", player, core.ErrNotCurrentPlayersUnit)
	}
	stats, ok := e.cfg.UnitStats[kind]
	if !ok {
		return nil, core.WrapEconomyError("create unit", player, core.ErrUnknownUnitKind)
	}
	if e.treasury[player] < stats.Cost {
		return nil, core.WrapEconomyError("create unit", player, core.ErrInsufficientFunds)
	}

	for _, off := range spawnOffsets() {
		pos := tower.Pos.Add(off)
		if !e.grid.IsWalkablePos(pos) || e.reg.IsOccupied(pos) {
			continue
		}
		u, err := e.reg.AddUnit(player, kind, stats, pos)
		if err != nil {
			return nil, core.WrapEconomyError("create unit", player, err)
		}
		u.HasMoved = true
		u.HasAttacked = true
		e.treasury[player] -= stats.Cost

		e.logger.Info().
			Int("player_id", player).
			Int("unit_id", u.ID).
			Str("kind", kind.String()).
			Int("cost", stats.Cost).
			Int("treasury", e.treasury[player]).
			Msg("Unit created")
		return u, nil
	}
	return nil, core.WrapEconomyError("create unit", player, core.ErrTileOccupied)
}

// CreateTower builds a tower at dest for the requesting unit. Failures are
// reported in a fixed order: already built, funds, walkability, range, occupancy.
func (e *Economy) CreateTower(player int, dest core.Position, unitID int) (*entity.Tower, error) {
	unit, ok := e.reg.Unit(unitID)
	if !ok || unit.Owner != player {
		return nil, core.WrapEconomyError("create tower", player, core.ErrNotCurrentPlayersUnit)
	}

	var err error
	switch {
	case e.towerBuilt[player]:
		err = core.ErrAlreadyBuiltThisTurn
	case e.treasury[player] < e.cfg.TowerCost:
		err = core.ErrInsufficientFunds
	case !e.grid.IsWalkablePos(dest):
		err = core.ErrUnwalkable
	case !unit.Pos.WithinRange(dest, unit.Stats.TowerBuildRange):
		err = core.ErrOutOfRange
	case e.reg.IsOccupied(dest):
		err = core.ErrTileOccupied
	}
	if err != nil {
		e.logger.Debug().Err(err).Int("player_id", player).Int("x", dest.X).Int("y", dest.Y).Msg("Tower rejected")
		return nil, core.WrapEconomyError("create tower", player, err)
	}

	tower, err := e.reg.AddTower(player, dest, e.cfg.TowerHP, e.cfg.TowerAttack, e.cfg.TowerAttackRange)
	if err != nil {
		return nil, core.WrapEconomyError("create tower", player, err)
	}
	e.treasury[player] -= e.cfg.TowerCost
	e.towerBuilt[player] = true

	e.logger.Info().
		Int("player_id", player).
		Int("tower_id", tower.ID).
		Int("x", dest.X).
		Int("y", dest.Y).
		Int("treasury", e.treasury[player]).
		Msg("Tower built")
	return tower, nil
}

// EndTurnIncome credits the ending player with the value of every point
// they own plus the flat bonus, and returns the amount credited.
func (e *Economy) EndTurnIncome(player int) int {
	income := e.cfg.EndTurnBonus
	for _, cp := range e.reg.CapturePoints() {
		if cp.Owner == player {
			income += cp.Value
		}
	}
	e.treasury[player] += income
	e.logger.Debug().Int("player_id", player).Int("income", income).Int("treasury", e.treasury[player]).Msg("End-turn income")
	return income
}
