// Package websocket pushes match snapshots to spectators.
package websocket

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Maximum message size allowed from a spectator. Spectators only send
	// control frames.
	maxMessageSize = 512

	defaultPingInterval = 30 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultSendBuffer   = 16
)

// SnapshotSource supplies the current snapshot a spectator receives on connect
type SnapshotSource interface {
	SnapshotJSON(matchID string) ([]byte, error)
}

// HubConfig configures a Hub
type HubConfig struct {
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	SendBufferSize  int
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
	Logger          zerolog.Logger
}

type message struct {
	matchID string
	payload []byte
}

// Client is one spectator connection
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	matchID string
}

// Hub maintains the spectators of every match and fans out snapshots.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	matches map[string]map[*Client]bool

	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	closeMatch chan string
	done       chan struct{}

	upgrader     websocket.Upgrader
	pingInterval time.Duration
	pongWait     time.Duration
	writeTimeout time.Duration
	sendBuffer   int

	spectators atomic.Int64
	logger     zerolog.Logger
}

// NewHub creates a hub; call Run to start it
func NewHub(cfg HubConfig) *Hub {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaultSendBuffer
	}
	if cfg.CheckOrigin == nil {
		cfg.CheckOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		matches:    make(map[string]map[*Client]bool),
		broadcast:  make(chan message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		closeMatch: make(chan string, 8),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		pingInterval: cfg.PingInterval,
		// pings must arrive well inside the read deadline
		pongWait:     cfg.PingInterval * 10 / 9,
		writeTimeout: cfg.WriteTimeout,
		sendBuffer:   cfg.SendBufferSize,
		logger:       cfg.Logger.With().Str("component", "SpectatorHub").Logger(),
	}
}

// Run processes hub events until ctx is cancelled, then disconnects every
// spectator
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case m := <-h.broadcast:
			h.broadcastMessage(m)
		case id := <-h.closeMatch:
			h.closeMatchClients(id)
		case <-ctx.Done():
			for id := range h.matches {
				h.closeMatchClients(id)
			}
			return
		}
	}
}

// Broadcast queues payload for every spectator of matchID
func (h *Hub) Broadcast(matchID string, payload []byte) {
	select {
	case h.broadcast <- message{matchID: matchID, payload: payload}:
	case <-h.done:
	}
}

// CloseMatch disconnects every spectator of matchID
func (h *Hub) CloseMatch(matchID string) {
	select {
	case h.closeMatch <- matchID:
	case <-h.done:
	}
}

// Spectators returns the number of connected spectators
func (h *Hub) Spectators() int {
	return int(h.spectators.Load())
}

// Handler serves GET /ws/{match_id}. A spectator first receives the
// current snapshot, then every update.
func (h *Hub) Handler(source SnapshotSource) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{match_id}", func(w http.ResponseWriter, r *http.Request) {
		matchID := r.PathValue("match_id")
		initial, err := source.SnapshotJSON(matchID)
		if err != nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}
		h.ServeWS(w, r, matchID, initial)
	})
	return mux
}

// ServeWS upgrades the request and registers the spectator for matchID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, matchID string, initial []byte) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("match_id", matchID).Msg("WebSocket upgrade failed")
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, h.sendBuffer),
		matchID: matchID,
	}
	if initial != nil {
		client.send <- initial
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) registerClient(client *Client) {
	if h.matches[client.matchID] == nil {
		h.matches[client.matchID] = make(map[*Client]bool)
	}
	h.matches[client.matchID][client] = true
	h.spectators.Add(1)

	h.logger.Debug().
		Str("match_id", client.matchID).
		Int("match_spectators", len(h.matches[client.matchID])).
		Msg("Spectator connected")
}

func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.matches[client.matchID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	h.spectators.Add(-1)
	if len(clients) == 0 {
		delete(h.matches, client.matchID)
	}

	h.logger.Debug().
		Str("match_id", client.matchID).
		Int("match_spectators", len(clients)).
		Msg("Spectator disconnected")
}

func (h *Hub) broadcastMessage(m message) {
	for client := range h.matches[m.matchID] {
		select {
		case client.send <- m.payload:
		default:
			// too slow to keep up
			h.logger.Warn().Str("match_id", m.matchID).Msg("Dropping slow spectator")
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) closeMatchClients(matchID string) {
	for client := range h.matches[matchID] {
		h.unregisterClient(client)
	}
}

// readPump keeps the read deadline fresh and notices disconnects
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Str("match_id", c.matchID).Msg("Spectator read error")
			}
			return
		}
	}
}

// writePump sends queued snapshots and pings. Each snapshot is its own
// text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match closed"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
