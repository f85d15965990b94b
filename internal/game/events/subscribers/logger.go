package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/events"
)

// LoggerSubscriber logs match events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}
	ls.eventTypeFilter = make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables logging of the full event payload
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent logs one event with its type-specific fields
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	logEvent := ls.logger.WithLevel(ls.level(event)).
		Str("event_type", event.Type()).
		Str("match_id", event.MatchID()).
		Time("timestamp", event.Timestamp())

	switch e := event.(type) {
	case *events.MatchStartedEvent:
		logEvent.Int("width", e.Width).Int("height", e.Height).Int64("seed", e.Seed)
	case *events.MatchEndedEvent:
		logEvent.Int("winner", e.Winner).Int("turn_count", e.TurnCount).Int("round", e.Round)
	case *events.TurnEndedEvent:
		logEvent.Int("player_id", e.PlayerID).Int("next_player", e.NextPlayer).Int("income", e.Income).Int("turn_count", e.TurnCount)
	case *events.RoundStartedEvent:
		logEvent.Int("round", e.Round)
	case *events.UnitMovedEvent:
		logEvent.Int("player_id", e.PlayerID).Int("unit_id", e.UnitID).
			Int("from_x", e.From.X).Int("from_y", e.From.Y).
			Int("to_x", e.To.X).Int("to_y", e.To.Y).
			Int("steps", e.Steps)
	case *events.UnitAttackedEvent:
		logEvent.Int("player_id", e.PlayerID).Int("unit_id", e.UnitID).
			Str("target_kind", e.TargetKind).Int("target_id", e.TargetID).
			Int("damage", e.Damage).Int("target_hp", e.TargetHPAfter).
			Bool("killed", e.Killed).Int("bounty", e.Bounty)
	case *events.EntityKilledEvent:
		logEvent.Str("kind", e.Kind).Int("entity_id", e.EntityID).Int("owner", e.Owner).Int("killed_by", e.KilledBy)
	case *events.BossCounterattackedEvent:
		logEvent.Int("unit_id", e.UnitID).Int("damage", e.Damage).Bool("unit_killed", e.UnitKilled)
	case *events.UnitCreatedEvent:
		logEvent.Int("player_id", e.PlayerID).Int("unit_id", e.UnitID).Str("kind", e.Kind).Int("cost", e.Cost)
	case *events.TowerBuiltEvent:
		logEvent.Int("player_id", e.PlayerID).Int("tower_id", e.TowerID).Int("x", e.Pos.X).Int("y", e.Pos.Y)
	case *events.PointCapturedEvent:
		logEvent.Int("point_id", e.PointID).Int("player_id", e.PlayerID).Int("previous_owner", e.PreviousOwner)
	case *events.PointLostEvent:
		logEvent.Int("point_id", e.PointID).Int("previous_owner", e.PreviousOwner)
	case *events.IncomeCreditedEvent:
		logEvent.Int("player_id", e.PlayerID).Int("amount", e.Amount).Int("treasury", e.Treasury)
	case *events.MonsterSpawnedEvent:
		logEvent.Int("monster_id", e.MonsterID).Int("x", e.Pos.X).Int("y", e.Pos.Y)
	case *events.BossSpawnedEvent:
		logEvent.Int("boss_id", e.BossID).Int("x", e.Pos.X).Int("y", e.Pos.Y).Int("hp", e.HP)
	case *events.StateTransitionEvent:
		logEvent.Str("from", e.FromPhase).Str("to", e.ToPhase).Str("reason", e.Reason)
	case *events.ActionRejectedEvent:
		logEvent.Int("player_id", e.PlayerID).Str("op", e.Op).Str("error_kind", e.ErrorKind).Str("reason", e.Reason)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Match event")
}

// level lowers the noisy per-action events to debug when the subscriber
// logs at info, so a long match does not flood the console.
func (ls *LoggerSubscriber) level(event events.Event) zerolog.Level {
	if ls.logLevel != zerolog.InfoLevel {
		return ls.logLevel
	}
	switch event.Type() {
	case events.TypeUnitSelected, events.TypeActionRejected:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}
