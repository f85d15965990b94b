package events

import (
	"time"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
)

// Event type constants
const (
	TypeMatchStarted        = "match.started"
	TypeMatchEnded          = "match.ended"
	TypeTurnEnded           = "turn.ended"
	TypeRoundStarted        = "round.started"
	TypeUnitSelected        = "unit.selected"
	TypeUnitMoved           = "unit.moved"
	TypeUnitAttacked        = "unit.attacked"
	TypeEntityKilled        = "entity.killed"
	TypeBossCounterattacked = "boss.counterattacked"
	TypeUnitCreated         = "unit.created"
	TypeTowerBuilt          = "tower.built"
	TypePointCaptured       = "point.captured"
	TypePointLost           = "point.lost"
	TypeIncomeCredited      = "income.credited"
	TypeMonsterSpawned      = "monster.spawned"
	TypeBossSpawned         = "boss.spawned"
	TypeStateTransition     = "state.transition"
	TypeActionRejected      = "action.rejected"
)

func base(eventType, matchID string, at time.Time, round int) BaseEvent {
	return BaseEvent{EventType: eventType, Time: at, Match: matchID, Round: round}
}

// MatchStartedEvent is published once the board is set up
type MatchStartedEvent struct {
	BaseEvent
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Seed   int64 `json:"seed"`
}

func NewMatchStartedEvent(matchID string, at time.Time, width, height int, seed int64) *MatchStartedEvent {
	return &MatchStartedEvent{BaseEvent: base(TypeMatchStarted, matchID, at, 1), Width: width, Height: height, Seed: seed}
}

// MatchEndedEvent is published when one side has no units left
type MatchEndedEvent struct {
	BaseEvent
	Winner    int `json:"winner"`
	TurnCount int `json:"turn_count"`
}

func NewMatchEndedEvent(matchID string, at time.Time, round, winner, turnCount int) *MatchEndedEvent {
	return &MatchEndedEvent{BaseEvent: base(TypeMatchEnded, matchID, at, round), Winner: winner, TurnCount: turnCount}
}

// TurnEndedEvent is published after a player ends their turn
type TurnEndedEvent struct {
	BaseEvent
	PlayerID   int `json:"player_id"`
	NextPlayer int `json:"next_player"`
	Income     int `json:"income"`
	TurnCount  int `json:"turn_count"`
}

func NewTurnEndedEvent(matchID string, at time.Time, round, player, next, income, turnCount int) *TurnEndedEvent {
	return &TurnEndedEvent{
		BaseEvent:  base(TypeTurnEnded, matchID, at, round),
		PlayerID:   player,
		NextPlayer: next,
		Income:     income,
		TurnCount:  turnCount,
	}
}

// RoundStartedEvent is published when control returns to player 0
type RoundStartedEvent struct {
	BaseEvent
}

func NewRoundStartedEvent(matchID string, at time.Time, round int) *RoundStartedEvent {
	return &RoundStartedEvent{BaseEvent: base(TypeRoundStarted, matchID, at, round)}
}

type UnitSelectedEvent struct {
	BaseEvent
	PlayerID int `json:"player_id"`
	UnitID   int `json:"unit_id"`
}

func NewUnitSelectedEvent(matchID string, at time.Time, round, player, unitID int) *UnitSelectedEvent {
	return &UnitSelectedEvent{BaseEvent: base(TypeUnitSelected, matchID, at, round), PlayerID: player, UnitID: unitID}
}

// UnitMovedEvent is published when a move is committed, before the walk animation finishes
type UnitMovedEvent struct {
	BaseEvent
	PlayerID int           `json:"player_id"`
	UnitID   int           `json:"unit_id"`
	From     core.Position `json:"from"`
	To       core.Position `json:"to"`
	Steps    int           `json:"steps"`
}

func NewUnitMovedEvent(matchID string, at time.Time, round, player, unitID int, from, to core.Position, steps int) *UnitMovedEvent {
	return &UnitMovedEvent{
		BaseEvent: base(TypeUnitMoved, matchID, at, round),
		PlayerID:  player,
		UnitID:    unitID,
		From:      from,
		To:        to,
		Steps:     steps,
	}
}

type UnitAttackedEvent struct {
	BaseEvent
	PlayerID      int    `json:"player_id"`
	UnitID        int    `json:"unit_id"`
	TargetKind    string `json:"target_kind"`
	TargetID      int    `json:"target_id"`
	Damage        int    `json:"damage"`
	TargetHPAfter int    `json:"target_hp_after"`
	Killed        bool   `json:"killed"`
	Bounty        int    `json:"bounty"`
}

func NewUnitAttackedEvent(matchID string, at time.Time, round, player, unitID int, targetKind string, targetID, damage, hpAfter int, killed bool, bounty int) *UnitAttackedEvent {
	return &UnitAttackedEvent{
		BaseEvent:     base(TypeUnitAttacked, matchID, at, round),
		PlayerID:      player,
		UnitID:        unitID,
		TargetKind:    targetKind,
		TargetID:      targetID,
		Damage:        damage,
		TargetHPAfter: hpAfter,
		Killed:        killed,
		Bounty:        bounty,
	}
}

// EntityKilledEvent covers units, towers, monsters and the boss. Owner is
// core.NoOwner for neutral creatures.
type EntityKilledEvent struct {
	BaseEvent
	Kind     string `json:"kind"`
	EntityID int    `json:"entity_id"`
	Owner    int    `json:"owner"`
	KilledBy int    `json:"killed_by"`
}

func NewEntityKilledEvent(matchID string, at time.Time, round int, kind string, id, owner, killedBy int) *EntityKilledEvent {
	return &EntityKilledEvent{
		BaseEvent: base(TypeEntityKilled, matchID, at, round),
		Kind:      kind,
		EntityID:  id,
		Owner:     owner,
		KilledBy:  killedBy,
	}
}

type BossCounterattackedEvent struct {
	BaseEvent
	UnitID      int  `json:"unit_id"`
	Damage      int  `json:"damage"`
	UnitHPAfter int  `json:"unit_hp_after"`
	UnitKilled  bool `json:"unit_killed"`
}

func NewBossCounterattackedEvent(matchID string, at time.Time, round, unitID, damage, hpAfter int, killed bool) *BossCounterattackedEvent {
	return &BossCounterattackedEvent{
		BaseEvent:   base(TypeBossCounterattacked, matchID, at, round),
		UnitID:      unitID,
		Damage:      damage,
		UnitHPAfter: hpAfter,
		UnitKilled:  killed,
	}
}

type UnitCreatedEvent struct {
	BaseEvent
	PlayerID int           `json:"player_id"`
	UnitID   int           `json:"unit_id"`
	Kind     string        `json:"kind"`
	TowerID  int           `json:"tower_id"`
	Pos      core.Position `json:"pos"`
	Cost     int           `json:"cost"`
}

func NewUnitCreatedEvent(matchID string, at time.Time, round, player, unitID int, kind string, towerID int, pos core.Position, cost int) *UnitCreatedEvent {
	return &UnitCreatedEvent{
		BaseEvent: base(TypeUnitCreated, matchID, at, round),
		PlayerID:  player,
		UnitID:    unitID,
		Kind:      kind,
		TowerID:   towerID,
		Pos:       pos,
		Cost:      cost,
	}
}

type TowerBuiltEvent struct {
	BaseEvent
	PlayerID int           `json:"player_id"`
	TowerID  int           `json:"tower_id"`
	UnitID   int           `json:"unit_id"`
	Pos      core.Position `json:"pos"`
}

func NewTowerBuiltEvent(matchID string, at time.Time, round, player, towerID, unitID int, pos core.Position) *TowerBuiltEvent {
	return &TowerBuiltEvent{
		BaseEvent: base(TypeTowerBuilt, matchID, at, round),
		PlayerID:  player,
		TowerID:   towerID,
		UnitID:    unitID,
		Pos:       pos,
	}
}

type PointCapturedEvent struct {
	BaseEvent
	PointID       int `json:"point_id"`
	PlayerID      int `json:"player_id"`
	PreviousOwner int `json:"previous_owner"`
}

func NewPointCapturedEvent(matchID string, at time.Time, round, pointID, player, previous int) *PointCapturedEvent {
	return &PointCapturedEvent{
		BaseEvent:     base(TypePointCaptured, matchID, at, round),
		PointID:       pointID,
		PlayerID:      player,
		PreviousOwner: previous,
	}
}

// PointLostEvent is published when a point decays back to neutral
type PointLostEvent struct {
	BaseEvent
	PointID       int `json:"point_id"`
	PreviousOwner int `json:"previous_owner"`
}

func NewPointLostEvent(matchID string, at time.Time, round, pointID, previous int) *PointLostEvent {
	return &PointLostEvent{BaseEvent: base(TypePointLost, matchID, at, round), PointID: pointID, PreviousOwner: previous}
}

type IncomeCreditedEvent struct {
	BaseEvent
	PlayerID int `json:"player_id"`
	Amount   int `json:"amount"`
	Treasury int `json:"treasury"`
}

func NewIncomeCreditedEvent(matchID string, at time.Time, round, player, amount, treasury int) *IncomeCreditedEvent {
	return &IncomeCreditedEvent{
		BaseEvent: base(TypeIncomeCredited, matchID, at, round),
		PlayerID:  player,
		Amount:    amount,
		Treasury:  treasury,
	}
}

type MonsterSpawnedEvent struct {
	BaseEvent
	MonsterID int           `json:"monster_id"`
	Pos       core.Position `json:"pos"`
}

func NewMonsterSpawnedEvent(matchID string, at time.Time, round, monsterID int, pos core.Position) *MonsterSpawnedEvent {
	return &MonsterSpawnedEvent{BaseEvent: base(TypeMonsterSpawned, matchID, at, round), MonsterID: monsterID, Pos: pos}
}

type BossSpawnedEvent struct {
	BaseEvent
	BossID int           `json:"boss_id"`
	Pos    core.Position `json:"pos"`
	HP     int           `json:"hp"`
}

func NewBossSpawnedEvent(matchID string, at time.Time, round, bossID int, pos core.Position, hp int) *BossSpawnedEvent {
	return &BossSpawnedEvent{BaseEvent: base(TypeBossSpawned, matchID, at, round), BossID: bossID, Pos: pos, HP: hp}
}

// StateTransitionEvent is published by the lifecycle state machine
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
	Reason    string `json:"reason"`
}

func NewStateTransitionEvent(matchID string, at time.Time, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: base(TypeStateTransition, matchID, at, 0),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}

// ActionRejectedEvent is published when a player command fails validation
type ActionRejectedEvent struct {
	BaseEvent
	PlayerID  int    `json:"player_id"`
	Op        string `json:"op"`
	ErrorKind string `json:"error_kind"`
	Reason    string `json:"reason"`
}

func NewActionRejectedEvent(matchID string, at time.Time, round, player int, op string, err error) *ActionRejectedEvent {
	return &ActionRejectedEvent{
		BaseEvent: base(TypeActionRejected, matchID, at, round),
		PlayerID:  player,
		Op:        op,
		ErrorKind: core.ErrorKind(err),
		Reason:    err.Error(),
	}
}
