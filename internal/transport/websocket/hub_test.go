package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource map[string][]byte

func (f fakeSource) SnapshotJSON(matchID string) ([]byte, error) {
	data, ok := f[matchID]
	if !ok {
		return nil, errors.New("match not found")
	}
	return data, nil
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(HubConfig{Logger: zerolog.Nop()})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub.Handler(fakeSource{"m1": []byte(`{"match_id":"m1"}`)}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, matchID string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + matchID
	return websocket.DefaultDialer.Dial(url, nil)
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	return string(data)
}

func TestNewHubDefaults(t *testing.T) {
	hub := NewHub(HubConfig{Logger: zerolog.Nop()})
	assert.Equal(t, defaultPingInterval, hub.pingInterval)
	assert.Greater(t, hub.pongWait, hub.pingInterval)
	assert.Equal(t, defaultWriteTimeout, hub.writeTimeout)
	assert.Equal(t, defaultSendBuffer, hub.sendBuffer)
	assert.Equal(t, 0, hub.Spectators())
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(HubConfig{Logger: zerolog.Nop()})
	a := &Client{hub: hub, matchID: "m", send: make(chan []byte, 1)}
	b := &Client{hub: hub, matchID: "m", send: make(chan []byte, 1)}

	hub.registerClient(a)
	hub.registerClient(b)
	assert.Len(t, hub.matches["m"], 2)
	assert.Equal(t, 2, hub.Spectators())

	hub.unregisterClient(a)
	hub.unregisterClient(a)
	assert.Len(t, hub.matches["m"], 1)
	assert.Equal(t, 1, hub.Spectators())

	_, open := <-a.send
	assert.False(t, open, "send channel is closed on unregister")

	hub.unregisterClient(b)
	_, exists := hub.matches["m"]
	assert.False(t, exists, "empty matches are removed")
}

func TestHubDropsSlowSpectator(t *testing.T) {
	hub := NewHub(HubConfig{Logger: zerolog.Nop()})
	slow := &Client{hub: hub, matchID: "m", send: make(chan []byte, 1)}
	other := &Client{hub: hub, matchID: "other", send: make(chan []byte, 1)}
	hub.registerClient(slow)
	hub.registerClient(other)

	hub.broadcastMessage(message{matchID: "m", payload: []byte("1")})
	assert.Equal(t, 2, hub.Spectators())
	hub.broadcastMessage(message{matchID: "m", payload: []byte("2")})
	assert.Equal(t, 1, hub.Spectators())
	assert.Empty(t, other.send, "other matches are untouched")
}

func TestServeWS_InitialSnapshotAndUpdates(t *testing.T) {
	hub, srv := startHub(t)

	conn, _, err := dial(t, srv, "m1")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, `{"match_id":"m1"}`, readText(t, conn))
	require.Eventually(t, func() bool { return hub.Spectators() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast("m1", []byte(`{"turn_count":1}`))
	hub.Broadcast("m2", []byte(`{"ignored":true}`))
	assert.Equal(t, `{"turn_count":1}`, readText(t, conn))
}

func TestServeWS_UnknownMatch(t *testing.T) {
	_, srv := startHub(t)

	_, resp, err := dial(t, srv, "missing")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCloseMatchDisconnectsSpectators(t *testing.T) {
	hub, srv := startHub(t)

	conn, _, err := dial(t, srv, "m1")
	require.NoError(t, err)
	defer conn.Close()
	readText(t, conn)
	require.Eventually(t, func() bool { return hub.Spectators() == 1 }, time.Second, 5*time.Millisecond)

	hub.CloseMatch("m1")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Equal(t, 0, hub.Spectators())
}

func TestClientDisconnectUnregisters(t *testing.T) {
	hub, srv := startHub(t)

	conn, _, err := dial(t, srv, "m1")
	require.NoError(t, err)
	readText(t, conn)
	require.Eventually(t, func() bool { return hub.Spectators() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Spectators() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRunStopsOnCancel(t *testing.T) {
	hub := NewHub(HubConfig{Logger: zerolog.Nop()})
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	// After shutdown these return instead of blocking
	hub.Broadcast("m1", []byte("x"))
	hub.CloseMatch("m1")
}
