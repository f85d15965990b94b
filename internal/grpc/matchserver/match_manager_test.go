package matchserver

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/IsoTactics/internal/game"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
	"github.com/mitchelldurbincs/IsoTactics/internal/testutil"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	payloads map[string][][]byte
	closed   []string
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{payloads: make(map[string][][]byte)}
}

func (b *recordingBroadcaster) Broadcast(matchID string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads[matchID] = append(b.payloads[matchID], payload)
}

func (b *recordingBroadcaster) CloseMatch(matchID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = append(b.closed, matchID)
}

func (b *recordingBroadcaster) count(matchID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.payloads[matchID])
}

func newTestManager(t *testing.T, maxMatches int) (*MatchManager, *fakeClock, *recordingBroadcaster) {
	t.Helper()
	clock := newFakeClock()
	b := newRecordingBroadcaster()
	mm := NewMatchManager(ManagerConfig{
		MaxMatches:    maxMatches,
		DefaultWidth:  12,
		DefaultHeight: 10,
		IdleTimeout:   30 * time.Minute,
		Broadcaster:   b,
		Logger:        testutil.NopLogger(),
		Now:           clock.Now,
	})
	t.Cleanup(mm.Close)
	return mm, clock, b
}

func TestCreateMatch(t *testing.T) {
	mm, _, b := newTestManager(t, 0)

	id, err := mm.CreateMatch(context.Background(), MatchOptions{Seed: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, mm.ActiveMatches())
	assert.Equal(t, 1, b.count(id), "creation pushes the opening snapshot")

	snap, err := mm.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.MatchID)
	assert.Equal(t, 12, snap.Width)
	assert.Equal(t, 10, snap.Height)
	assert.Len(t, snap.Units, 4)

	data, err := mm.SnapshotJSON(id)
	require.NoError(t, err)
	var decoded game.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap.Rows, decoded.Rows)
}

func TestCreateMatch_RejectsOversizedMap(t *testing.T) {
	mm, _, b := newTestManager(t, 0)

	for _, opts := range []MatchOptions{
		{Width: game.MaxMapDimension + 1, Height: 10},
		{Width: 1 << 32, Height: 1 << 32},
	} {
		_, err := mm.CreateMatch(context.Background(), opts)
		assert.ErrorIs(t, err, game.ErrInvalidRules)
	}
	assert.Equal(t, 0, mm.ActiveMatches())
	assert.Empty(t, b.payloads)
}

func TestCreateMatch_Deterministic(t *testing.T) {
	mm, _, _ := newTestManager(t, 0)

	a, err := mm.CreateMatch(context.Background(), MatchOptions{Width: 14, Height: 14, Seed: 77})
	require.NoError(t, err)
	b, err := mm.CreateMatch(context.Background(), MatchOptions{Width: 14, Height: 14, Seed: 77})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	sa, _ := mm.Snapshot(a)
	sb, _ := mm.Snapshot(b)
	assert.Equal(t, sa.Rows, sb.Rows)
	assert.Equal(t, sa.Units, sb.Units)
}

func TestMaxMatchesLimit(t *testing.T) {
	mm, _, _ := newTestManager(t, 2)

	for i := 0; i < 2; i++ {
		_, err := mm.CreateMatch(context.Background(), MatchOptions{})
		require.NoError(t, err)
	}
	_, err := mm.CreateMatch(context.Background(), MatchOptions{})
	assert.ErrorIs(t, err, ErrAtCapacity)
	assert.Equal(t, 2, mm.ActiveMatches())
}

func TestMaxMatchesZeroMeansUnlimited(t *testing.T) {
	mm, _, _ := newTestManager(t, 0)
	for i := 0; i < 10; i++ {
		_, err := mm.CreateMatch(context.Background(), MatchOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, 10, mm.ActiveMatches())
}

func TestSubmit(t *testing.T) {
	mm, _, b := newTestManager(t, 0)
	id, err := mm.CreateMatch(context.Background(), MatchOptions{Seed: 1})
	require.NoError(t, err)

	resp, cached, err := mm.Submit(id, 0, "", processor.Command{Type: processor.CommandSelect, UnitID: 1})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.True(t, resp.GetFields()["ok"].GetBoolValue())
	assert.Equal(t, 2, b.count(id))

	resp, _, err = mm.Submit(id, 1, "", processor.Command{Type: processor.CommandEndTurn})
	require.NoError(t, err, "rule rejections are not transport errors")
	assert.False(t, resp.GetFields()["ok"].GetBoolValue())
	assert.Equal(t, "turn", resp.GetFields()["error_kind"].GetStringValue())
	assert.NotEmpty(t, resp.GetFields()["error"].GetStringValue())

	_, _, err = mm.Submit(id, 0, "", processor.Command{Type: "dance"})
	assert.ErrorIs(t, err, processor.ErrMalformedCommand)

	_, _, err = mm.Submit("nope", 0, "", processor.Command{Type: processor.CommandEndTurn})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestSubmit_Idempotent(t *testing.T) {
	mm, _, _ := newTestManager(t, 0)
	id, err := mm.CreateMatch(context.Background(), MatchOptions{Seed: 1})
	require.NoError(t, err)

	first, cached, err := mm.Submit(id, 0, "key-1", processor.Command{Type: processor.CommandEndTurn})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.True(t, first.GetFields()["turn_ended"].GetBoolValue())

	again, cached, err := mm.Submit(id, 0, "key-1", processor.Command{Type: processor.CommandEndTurn})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Same(t, first, again)

	snap, err := mm.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TurnCount, "a replayed key does not end the turn twice")
	assert.Equal(t, 1, snap.CurrentPlayer)
}

func TestEndMatch(t *testing.T) {
	mm, _, b := newTestManager(t, 0)
	id, err := mm.CreateMatch(context.Background(), MatchOptions{})
	require.NoError(t, err)

	require.NoError(t, mm.EndMatch(id))
	assert.Equal(t, 0, mm.ActiveMatches())
	assert.Equal(t, []string{id}, b.closed)

	assert.ErrorIs(t, mm.EndMatch(id), ErrMatchNotFound)
	_, err = mm.Snapshot(id)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestCleanupMatches(t *testing.T) {
	mm, clock, b := newTestManager(t, 0)
	idle, err := mm.CreateMatch(context.Background(), MatchOptions{})
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	active, err := mm.CreateMatch(context.Background(), MatchOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, mm.cleanupMatches())

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, mm.cleanupMatches())
	assert.Equal(t, 1, mm.ActiveMatches())
	assert.Equal(t, []string{idle}, b.closed)

	_, err = mm.Snapshot(active)
	assert.NoError(t, err)
}

func TestTickAllAdvancesMatchClock(t *testing.T) {
	mm, clock, _ := newTestManager(t, 0)
	id, err := mm.CreateMatch(context.Background(), MatchOptions{})
	require.NoError(t, err)

	clock.Advance(time.Second)
	mm.tickAll(100 * time.Millisecond)

	snap, err := mm.Snapshot(id)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), snap.Time)
}

func TestClose_StopsLoops(t *testing.T) {
	mm := NewMatchManager(ManagerConfig{
		CleanupInterval: time.Millisecond,
		TickInterval:    time.Millisecond,
		Logger:          testutil.NopLogger(),
	})
	_, err := mm.CreateMatch(context.Background(), MatchOptions{})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	mm.Close()
	mm.Close()
}

func TestHistory(t *testing.T) {
	mm, _, _ := newTestManager(t, 0)
	id, err := mm.CreateMatch(context.Background(), MatchOptions{Seed: 3})
	require.NoError(t, err)

	_, _, err = mm.Submit(id, 0, "k", processor.Command{Type: processor.CommandEndTurn})
	require.NoError(t, err)
	_, _, err = mm.Submit(id, 0, "k", processor.Command{Type: processor.CommandEndTurn})
	require.NoError(t, err)
	_, _, err = mm.Submit(id, 0, "", processor.Command{Type: processor.CommandEndTurn})
	require.NoError(t, err)

	entries, stats, err := mm.History(id, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2, "cached replays are not journaled")
	assert.True(t, entries[0].OK)
	assert.Equal(t, 1, entries[0].Round)
	assert.False(t, entries[1].OK, "player 0 no longer holds the turn")
	assert.Equal(t, "turn", entries[1].ErrorKind)
	assert.Equal(t, int64(2), stats.TotalAdded)

	_, _, err = mm.History("missing", 0)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
