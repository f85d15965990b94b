// Package spawn handles the neutral population: monster and boss spawning
// and their random walk between turns.
package spawn

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/entity"
)

// Config holds spawn cadence and neutral creature stats. Intervals are
// counted in end-turn events, rounds in full player 0 -> 1 -> 0 cycles.
type Config struct {
	MonsterCap           int
	MonsterSpawnInterval int
	MonsterMinDistance   int
	MonsterMoveInterval  int
	MonsterHP            int
	MonsterAttack        int
	MonsterBounty        int

	BossFirstRound    int
	BossRespawnRounds int
	BossMoveInterval  int
	BossHP            int
	BossAttack        int
	BossBounty        int

	SpawnAttempts int
}

func DefaultConfig() Config {
	return Config{
		MonsterCap:           5,
		MonsterSpawnInterval: 2,
		MonsterMinDistance:   3,
		MonsterMoveInterval:  1,
		MonsterHP:            100,
		MonsterAttack:        10,
		MonsterBounty:        50,
		BossFirstRound:       3,
		BossRespawnRounds:    3,
		BossMoveInterval:     2,
		BossHP:               500,
		BossAttack:           40,
		BossBounty:           1200,
		SpawnAttempts:        200,
	}
}

// Report lists what one end-turn cadence check did
type Report struct {
	MonstersSpawned []*entity.Monster
	BossSpawned     *entity.Boss
	MonstersMoved   []int
	BossMoved       bool
}

// Scheduler decides when neutral creatures appear and move
type Scheduler struct {
	reg    *entity.Registry
	grid   *core.GridMap
	cfg    Config
	rng    *rand.Rand
	logger zerolog.Logger

	bossEverSpawned bool
	bossKilledRound int
}

func NewScheduler(reg *entity.Registry, grid *core.GridMap, cfg Config, rng *rand.Rand, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		reg:    reg,
		grid:   grid,
		cfg:    cfg,
		rng:    rng,
		logger: logger.With().Str("component", "SpawnScheduler").Logger(),
	}
}

// NotifyBossKilled starts the respawn countdown
func (s *Scheduler) NotifyBossKilled(round int) {
	s.bossKilledRound = round
	s.logger.Info().Int("round", round).Msg("Boss killed, respawn scheduled")
}

// BossDue reports whether the boss should be on the board in this round.
// The first boss arrives at BossFirstRound; after a kill in round R the
// next one arrives at R + BossRespawnRounds.
func (s *Scheduler) BossDue(round int) bool {
	if s.reg.Boss() != nil {
		return false
	}
	if !s.bossEverSpawned {
		return round >= s.cfg.BossFirstRound
	}
	return s.bossKilledRound > 0 && round >= s.bossKilledRound+s.cfg.BossRespawnRounds
}

// OnEndTurn runs the cadence checks for the given end-turn count and the
// round that is about to be played. Existing creatures move before new
// ones spawn.
func (s *Scheduler) OnEndTurn(turnCount, round int) Report {
	var rep Report

	if every(turnCount, s.cfg.MonsterMoveInterval) {
		for _, m := range s.reg.Monsters() {
			if to, ok := s.randomStep(m.Pos); ok {
				if err := s.reg.MoveMonster(m.ID, to); err == nil {
					rep.MonstersMoved = append(rep.MonstersMoved, m.ID)
				}
			}
		}
	}
	if boss := s.reg.Boss(); boss != nil && every(turnCount, s.cfg.BossMoveInterval) {
		if to, ok := s.randomStep(boss.Pos); ok {
			rep.BossMoved = s.reg.MoveBoss(to) == nil
		}
	}

	if every(turnCount, s.cfg.MonsterSpawnInterval) && s.reg.MonsterCount() < s.cfg.MonsterCap {
		if pos, ok := s.findSpawnTile(); ok {
			m, err := s.reg.AddMonster(pos, s.cfg.MonsterHP, s.cfg.MonsterAttack, s.cfg.MonsterBounty)
			if err == nil {
				rep.MonstersSpawned = append(rep.MonstersSpawned, m)
				s.logger.Debug().Int("monster_id", m.ID).Int("x", pos.X).Int("y", pos.Y).Msg("Monster spawned")
			}
		} else {
			s.logger.Debug().Int("turn", turnCount).Msg("No spawn tile for monster, skipping")
		}
	}

	if s.BossDue(round) {
		if pos, ok := s.findSpawnTile(); ok {
			b, err := s.reg.SpawnBoss(pos, s.cfg.BossHP, s.cfg.BossAttack, s.cfg.BossBounty)
			if err == nil {
				s.bossEverSpawned = true
				s.bossKilledRound = 0
				rep.BossSpawned = b
				s.logger.Info().Int("round", round).Int("x", pos.X).Int("y", pos.Y).Msg("Boss spawned")
			}
		}
	}

	return rep
}

func every(count, interval int) bool {
	return interval > 0 && count > 0 && count%interval == 0
}

// randomStep picks one of the eight directions uniformly. The step is
// taken only if the tile is walkable and free; there is no retry.
func (s *Scheduler) randomStep(from core.Position) (core.Position, bool) {
	to := from.Add(core.Directions[s.rng.Intn(len(core.Directions))])
	if !s.grid.IsWalkablePos(to) || s.reg.IsOccupied(to) {
		return from, false
	}
	return to, true
}

// findSpawnTile samples free walkable tiles at least MonsterMinDistance
// (Manhattan) from every monster and every player unit.
func (s *Scheduler) findSpawnTile() (core.Position, bool) {
	walkable := s.grid.WalkableTiles()
	if len(walkable) == 0 {
		return core.Position{}, false
	}

	var keepAway []core.Position
	for _, m := range s.reg.Monsters() {
		keepAway = append(keepAway, m.Pos)
	}
	for _, u := range s.reg.Units() {
		keepAway = append(keepAway, u.Pos)
	}

	for attempt := 0; attempt < s.cfg.SpawnAttempts; attempt++ {
		p := walkable[s.rng.Intn(len(walkable))]
		if s.reg.IsOccupied(p) {
			continue
		}
		ok := true
		for _, a := range keepAway {
			if p.ManhattanTo(a) < s.cfg.MonsterMinDistance {
				ok = false
				break
			}
		}
		if ok {
			return p, true
		}
	}
	return core.Position{}, false
}
