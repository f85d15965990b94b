package subscribers_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/IsoTactics/internal/game/core"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/events"
	"github.com/mitchelldurbincs/IsoTactics/internal/game/events/subscribers"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &out))
	return out
}

func TestLoggerSubscriber(t *testing.T) {
	logSub := subscribers.NewLoggerSubscriber("test-logger", zerolog.Nop(), zerolog.InfoLevel)

	assert.Equal(t, "test-logger", logSub.ID())
	assert.True(t, logSub.InterestedIn(events.TypeMatchStarted))
	assert.True(t, logSub.InterestedIn("any.event.type"))

	logSub.SetEventFilter([]string{events.TypeMatchEnded})
	assert.False(t, logSub.InterestedIn(events.TypeMatchStarted))
	assert.True(t, logSub.InterestedIn(events.TypeMatchEnded))

	logSub.SetEventFilter(nil)
	assert.True(t, logSub.InterestedIn(events.TypeMatchStarted))
}

func TestLoggerSubscriberEventFields(t *testing.T) {
	testCases := []struct {
		name  string
		event events.Event
		check func(t *testing.T, line map[string]interface{})
	}{
		{
			name:  "MatchStarted",
			event: events.NewMatchStartedEvent("m-1", now, 30, 20, 7),
			check: func(t *testing.T, line map[string]interface{}) {
				assert.Equal(t, float64(30), line["width"])
				assert.Equal(t, float64(7), line["seed"])
			},
		},
		{
			name:  "UnitMoved",
			event: events.NewUnitMovedEvent("m-1", now, 2, 1, 9, core.Pos(1, 1), core.Pos(3, 2), 2),
			check: func(t *testing.T, line map[string]interface{}) {
				assert.Equal(t, float64(9), line["unit_id"])
				assert.Equal(t, float64(3), line["to_x"])
				assert.Equal(t, float64(2), line["steps"])
			},
		},
		{
			name:  "UnitAttacked",
			event: events.NewUnitAttackedEvent("m-1", now, 2, 0, 4, "monster", 12, 50, 0, true, 50),
			check: func(t *testing.T, line map[string]interface{}) {
				assert.Equal(t, "monster", line["target_kind"])
				assert.Equal(t, true, line["killed"])
				assert.Equal(t, float64(50), line["bounty"])
			},
		},
		{
			name:  "MatchEnded",
			event: events.NewMatchEndedEvent("m-1", now, 6, 1, 11),
			check: func(t *testing.T, line map[string]interface{}) {
				assert.Equal(t, float64(1), line["winner"])
				assert.Equal(t, "info", line["level"])
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logSub := subscribers.NewLoggerSubscriber("event-logger", zerolog.New(&buf), zerolog.InfoLevel)

			logSub.HandleEvent(tc.event)

			line := lastLine(t, &buf)
			assert.Equal(t, "Match event", line["message"])
			assert.Equal(t, tc.event.Type(), line["event_type"])
			assert.Equal(t, "m-1", line["match_id"])
			tc.check(t, line)
		})
	}
}

func TestLoggerSubscriberDemotesNoisyEvents(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("event-logger", zerolog.New(&buf), zerolog.InfoLevel)

	logSub.HandleEvent(events.NewUnitSelectedEvent("m-1", now, 1, 0, 3))
	assert.Equal(t, "debug", lastLine(t, &buf)["level"])
}

func TestLoggerSubscriberDevMode(t *testing.T) {
	var buf bytes.Buffer
	logSub := subscribers.NewLoggerSubscriber("event-logger", zerolog.New(&buf), zerolog.WarnLevel)
	logSub.SetDevMode(true)

	logSub.HandleEvent(events.NewTowerBuiltEvent("m-1", now, 1, 0, 5, 2, core.Pos(4, 4)))

	line := lastLine(t, &buf)
	assert.Equal(t, "warn", line["level"])
	data, ok := line["event_data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "tower.built", data["type"])
}

func TestLoggerSubscriberOnBus(t *testing.T) {
	var buf bytes.Buffer
	bus := events.NewEventBus(zerolog.Nop())
	bus.Subscribe(subscribers.NewLoggerSubscriber("bus-logger", zerolog.New(&buf), zerolog.InfoLevel))

	bus.Publish(events.NewIncomeCreditedEvent("m-1", now, 1, 0, 160, 410))

	line := lastLine(t, &buf)
	assert.Equal(t, float64(160), line["amount"])
	assert.Equal(t, float64(410), line["treasury"])
}
