package replay

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/processor"
)

func entry(player int) Entry {
	return Entry{Player: player, Command: processor.Command{Type: processor.CommandEndTurn}, OK: true}
}

func TestJournal_Creation(t *testing.T) {
	j := NewJournal(0, zerolog.Nop())
	assert.Equal(t, DefaultCapacity, j.Capacity())
	assert.Equal(t, 0, j.Size())
	assert.Empty(t, j.Latest(5))
}

func TestJournal_RecordAssignsSequence(t *testing.T) {
	j := NewJournal(10, zerolog.Nop())
	for i := 1; i <= 3; i++ {
		seq, err := j.Record(entry(i % 2))
		require.NoError(t, err)
		assert.Equal(t, int64(i), seq)
	}

	got := j.Latest(0)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{got[0].Seq, got[1].Seq, got[2].Seq})
}

func TestJournal_Wraparound(t *testing.T) {
	j := NewJournal(3, zerolog.Nop())
	for i := 0; i < 5; i++ {
		_, err := j.Record(entry(0))
		require.NoError(t, err)
	}

	assert.Equal(t, 3, j.Size())
	got := j.Latest(0)
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[0].Seq, "oldest entries are dropped first")
	assert.Equal(t, int64(5), got[2].Seq)

	latest := j.Latest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(4), latest[0].Seq)

	stats := j.Stats()
	assert.Equal(t, int64(5), stats.TotalAdded)
	assert.Equal(t, int64(2), stats.TotalDropped)
	assert.InDelta(t, 100.0, stats.UtilizationPct, 0.001)
}

func TestJournal_Since(t *testing.T) {
	j := NewJournal(4, zerolog.Nop())
	for i := 0; i < 6; i++ {
		_, _ = j.Record(entry(0))
	}

	got := j.Since(4)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].Seq)

	assert.Len(t, j.Since(0), 4, "a cursor older than the buffer returns everything held")
	assert.Empty(t, j.Since(6))
}

func TestJournal_Close(t *testing.T) {
	j := NewJournal(4, zerolog.Nop())
	j.Close()
	j.Close()

	_, err := j.Record(entry(0))
	assert.ErrorIs(t, err, ErrJournalClosed)
}

func TestJournal_Concurrent(t *testing.T) {
	j := NewJournal(50, zerolog.Nop())
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(player int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, _ = j.Record(entry(player % 2))
				_ = j.Latest(5)
			}
		}(w)
	}
	wg.Wait()

	stats := j.Stats()
	assert.Equal(t, int64(800), stats.TotalAdded)
	assert.Equal(t, 50, stats.CurrentSize)
}
