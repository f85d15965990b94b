package matchserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/events"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/states"
	"github.com/mitchelldurbincs/IsoTactics/internal/replay"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrAtCapacity    = errors.New("server at capacity")
)

// finishedMatchTTL is how long an ended match stays queryable
const finishedMatchTTL = 10 * time.Minute

// Broadcaster receives snapshot JSON after every change to a match.
// The websocket hub implements it.
type Broadcaster interface {
	Broadcast(matchID string, payload []byte)
	CloseMatch(matchID string)
}

// MatchOptions are the per-match settings a client may choose
type MatchOptions struct {
	Width  int
	Height int
	Seed   int64
}

// RulesFunc builds the rules for a w x h match
type RulesFunc func(w, h int) game.Rules

// ManagerConfig configures a MatchManager
type ManagerConfig struct {
	MaxMatches      int // 0 means unlimited
	DefaultWidth    int
	DefaultHeight   int
	IdleTimeout     time.Duration
	CleanupInterval time.Duration
	TickInterval    time.Duration // capture point clock; 0 disables it
	JournalSize     int
	Rules           RulesFunc
	Broadcaster     Broadcaster
	Logger          zerolog.Logger
	Now             func() time.Time
}

type matchInstance struct {
	id     string
	engine *game.Engine
	mu     sync.Mutex // guards engine and activity tracking

	createdAt    time.Time
	lastActivity time.Time
	dirty        bool // a capture point changed hands since the last broadcast

	idempotency *IdempotencyManager
	journal     *replay.Journal
}

// SubmitResult is the outcome of one submitted command. A rule rejection
// is carried in Err; it is not a transport failure.
type SubmitResult struct {
	Result   processor.Result
	Err      error
	Snapshot game.Snapshot
}

// MatchManager owns every live match on the server
type MatchManager struct {
	mu          sync.RWMutex
	matches     map[string]*matchInstance
	maxMatches  int
	defaultW    int
	defaultH    int
	idleTimeout time.Duration
	journalSize int
	rules       RulesFunc
	broadcaster Broadcaster
	logger      zerolog.Logger
	now         func() time.Time

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewMatchManager creates a manager and starts its cleanup loop when a
// cleanup interval is set
func NewMatchManager(cfg ManagerConfig) *MatchManager {
	if cfg.Rules == nil {
		cfg.Rules = game.DefaultRules
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.DefaultWidth <= 0 {
		cfg.DefaultWidth = 20
	}
	if cfg.DefaultHeight <= 0 {
		cfg.DefaultHeight = 20
	}
	mm := &MatchManager{
		matches:     make(map[string]*matchInstance),
		maxMatches:  cfg.MaxMatches,
		defaultW:    cfg.DefaultWidth,
		defaultH:    cfg.DefaultHeight,
		idleTimeout: cfg.IdleTimeout,
		journalSize: cfg.JournalSize,
		rules:       cfg.Rules,
		broadcaster: cfg.Broadcaster,
		logger:      cfg.Logger.With().Str("component", "MatchManager").Logger(),
		now:         cfg.Now,
		stopCh:      make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		mm.wg.Add(1)
		go mm.runCleanup(cfg.CleanupInterval)
	}
	if cfg.TickInterval > 0 {
		mm.wg.Add(1)
		go mm.runTicker(cfg.TickInterval)
	}
	return mm
}

// CreateMatch starts a new match and returns its id
func (mm *MatchManager) CreateMatch(ctx context.Context, opts MatchOptions) (string, error) {
	mm.mu.RLock()
	current := len(mm.matches)
	mm.mu.RUnlock()

	if mm.maxMatches > 0 && current >= mm.maxMatches {
		mm.logger.Warn().
			Int("current_matches", current).
			Int("max_matches", mm.maxMatches).
			Msg("Rejecting match creation - server at capacity")
		return "", fmt.Errorf("%w: %d/%d matches active", ErrAtCapacity, current, mm.maxMatches)
	}

	if opts.Width <= 0 {
		opts.Width = mm.defaultW
	}
	if opts.Height <= 0 {
		opts.Height = mm.defaultH
	}

	id := uuid.NewString()
	now := mm.now()
	engine, err := game.NewEngine(ctx, game.GameConfig{
		MatchID:   id,
		Rules:     mm.rules(opts.Width, opts.Height),
		Seed:      opts.Seed,
		StartTime: now,
		Logger:    mm.logger,
	})
	if err != nil {
		return "", err
	}
	inst := &matchInstance{
		id:           id,
		engine:       engine,
		createdAt:    now,
		lastActivity: now,
		idempotency:  NewIdempotencyManager(mm.now),
		journal:      replay.NewJournal(mm.journalSize, mm.logger.With().Str("match_id", id).Logger()),
	}
	bus := engine.EventBus()
	bus.Subscribe(subscribers.NewLoggerSubscriber("log-"+id, mm.logger, zerolog.DebugLevel))
	markDirty := func(events.Event) { inst.dirty = true }
	bus.SubscribeFunc(events.TypePointCaptured, markDirty)
	bus.SubscribeFunc(events.TypePointLost, markDirty)

	mm.mu.Lock()
	if mm.maxMatches > 0 && len(mm.matches) >= mm.maxMatches {
		mm.mu.Unlock()
		return "", fmt.Errorf("%w: %d/%d matches active", ErrAtCapacity, len(mm.matches), mm.maxMatches)
	}
	mm.matches[id] = inst
	mm.mu.Unlock()

	mm.logger.Info().
		Str("match_id", id).
		Int("width", opts.Width).
		Int("height", opts.Height).
		Int64("seed", engine.Seed()).
		Msg("Created match")

	inst.mu.Lock()
	mm.broadcastLocked(inst)
	inst.mu.Unlock()
	return id, nil
}

func (mm *MatchManager) getMatch(id string) (*matchInstance, error) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	inst, ok := mm.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return inst, nil
}

// ActiveMatches returns the number of matches held
func (mm *MatchManager) ActiveMatches() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.matches)
}

// Snapshot returns the current state of a match
func (mm *MatchManager) Snapshot(id string) (game.Snapshot, error) {
	inst, err := mm.getMatch(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst.engine.Snapshot(), nil
}

// SnapshotJSON returns the encoded snapshot of a match. Spectators get it
// when they connect.
func (mm *MatchManager) SnapshotJSON(id string) ([]byte, error) {
	snap, err := mm.Snapshot(id)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

// Submit applies one command for player. A repeated idempotency key
// returns the cached response instead of running the command again;
// cached reports whether that happened.
func (mm *MatchManager) Submit(id string, player int, key string, cmd processor.Command) (resp *structpb.Struct, cached bool, err error) {
	inst, err := mm.getMatch(id)
	if err != nil {
		return nil, false, err
	}

	inst.mu.Lock()
	defer inst.mu.Unlock()

	if hit := inst.idempotency.Check(player, key); hit != nil {
		mm.logger.Debug().Str("match_id", id).Int("player_id", player).Str("idempotency_key", key).Msg("Returning cached response")
		return hit, true, nil
	}

	inst.lastActivity = mm.now()
	round := inst.engine.Round()
	res, applyErr := inst.engine.Apply(player, cmd)
	if errors.Is(applyErr, processor.ErrMalformedCommand) {
		return nil, false, applyErr
	}
	if _, err := inst.journal.Record(replay.Entry{
		Time:      inst.lastActivity,
		Player:    player,
		Round:     round,
		Command:   cmd,
		OK:        applyErr == nil,
		ErrorKind: core.ErrorKind(applyErr),
	}); err != nil {
		mm.logger.Warn().Err(err).Str("match_id", id).Msg("Failed to journal command")
	}
	// Walk animation is a client concern; server state settles at once
	inst.engine.SettleMovement()

	resp, err = submitResponse(SubmitResult{Result: res, Err: applyErr, Snapshot: inst.engine.Snapshot()})
	if err != nil {
		return nil, false, err
	}
	inst.idempotency.Store(player, key, resp)
	mm.broadcastLocked(inst)
	return resp, false, nil
}

// History returns the journaled commands of a match with a sequence
// number greater than since
func (mm *MatchManager) History(id string, since int64) ([]replay.Entry, replay.Stats, error) {
	inst, err := mm.getMatch(id)
	if err != nil {
		return nil, replay.Stats{}, err
	}
	return inst.journal.Since(since), inst.journal.Stats(), nil
}

// EndMatch removes a match and disconnects its spectators
func (mm *MatchManager) EndMatch(id string) error {
	mm.mu.Lock()
	inst, ok := mm.matches[id]
	delete(mm.matches, id)
	mm.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	inst.journal.Close()
	if mm.broadcaster != nil {
		mm.broadcaster.CloseMatch(id)
	}
	mm.logger.Info().Str("match_id", id).Msg("Match ended by request")
	return nil
}

// broadcastLocked sends the snapshot to spectators. Must be called with inst.mu held.
func (mm *MatchManager) broadcastLocked(inst *matchInstance) {
	if mm.broadcaster == nil {
		return
	}
	payload, err := json.Marshal(inst.engine.Snapshot())
	if err != nil {
		mm.logger.Error().Err(err).Str("match_id", inst.id).Msg("Failed to encode snapshot")
		return
	}
	mm.broadcaster.Broadcast(inst.id, payload)
	inst.dirty = false
}

func (mm *MatchManager) runTicker(interval time.Duration) {
	defer mm.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mm.tickAll(interval)
		case <-mm.stopCh:
			return
		}
	}
}

// tickAll advances every match clock by dt and pushes a snapshot for the
// matches where a capture point changed hands
func (mm *MatchManager) tickAll(dt time.Duration) {
	mm.mu.RLock()
	refs := make([]*matchInstance, 0, len(mm.matches))
	for _, inst := range mm.matches {
		refs = append(refs, inst)
	}
	mm.mu.RUnlock()

	now := mm.now()
	for _, inst := range refs {
		inst.mu.Lock()
		inst.engine.Tick(dt, now)
		if inst.dirty {
			mm.broadcastLocked(inst)
		}
		inst.mu.Unlock()
	}
}

func (mm *MatchManager) runCleanup(interval time.Duration) {
	defer mm.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			mm.logger.Error().Interface("panic", r).Msg("Match cleanup goroutine panicked")
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mm.cleanupMatches()
		case <-mm.stopCh:
			return
		}
	}
}

// cleanupMatches drops ended matches after finishedMatchTTL and matches
// idle for longer than the idle timeout
func (mm *MatchManager) cleanupMatches() int {
	// Phase 1: collect references without holding the manager lock while taking match locks
	mm.mu.RLock()
	refs := make([]*matchInstance, 0, len(mm.matches))
	for _, inst := range mm.matches {
		refs = append(refs, inst)
	}
	mm.mu.RUnlock()

	// Phase 2: check each match independently
	now := mm.now()
	var toDelete []string
	for _, inst := range refs {
		inst.mu.Lock()
		idle := now.Sub(inst.lastActivity)
		phase := inst.engine.Phase()
		inst.mu.Unlock()

		reason := ""
		switch {
		case phase == states.PhaseEnded && idle > finishedMatchTTL:
			reason = "finished match TTL expired"
		case mm.idleTimeout > 0 && idle > mm.idleTimeout:
			reason = "match abandoned (no activity)"
		}
		if reason != "" {
			toDelete = append(toDelete, inst.id)
			mm.logger.Info().
				Str("match_id", inst.id).
				Str("reason", reason).
				Dur("inactive", idle).
				Msg("Cleaning up match")
		}
	}

	if len(toDelete) == 0 {
		return 0
	}

	// Phase 3: remove with a single lock
	mm.mu.Lock()
	for _, id := range toDelete {
		if inst, ok := mm.matches[id]; ok {
			inst.journal.Close()
		}
		delete(mm.matches, id)
	}
	remaining := len(mm.matches)
	mm.mu.Unlock()

	if mm.broadcaster != nil {
		for _, id := range toDelete {
			mm.broadcaster.CloseMatch(id)
		}
	}
	mm.logger.Info().Int("cleaned", len(toDelete)).Int("remaining", remaining).Msg("Match cleanup completed")
	return len(toDelete)
}

// Close stops the background loops. It is safe to call more than once.
func (mm *MatchManager) Close() {
	mm.closeOnce.Do(func() {
		close(mm.stopCh)
	})
	mm.wg.Wait()
}
