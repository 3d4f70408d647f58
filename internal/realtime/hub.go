package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/greyhelm/vtt-api/internal/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// client is one subscribed socket. The mutex serializes writes; gorilla
// connections do not allow concurrent writers.
type client struct {
	conn   *websocket.Conn
	gameID string
	mu     sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// Hub tracks rooms of subscribed sockets keyed by game ID and implements
// Broadcaster over them.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// HubConfig contains configuration for the Hub.
type HubConfig struct {
	// CheckOrigin overrides the upgrader origin check. Nil allows all
	// origins; the edge is expected to authenticate before upgrading.
	CheckOrigin func(r *http.Request) bool
}

// NewHub creates a websocket hub with no rooms.
func NewHub(cfg *HubConfig) *Hub {
	checkOrigin := func(r *http.Request) bool { return true }
	if cfg != nil && cfg.CheckOrigin != nil {
		checkOrigin = cfg.CheckOrigin
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		rooms: make(map[string]map[*client]struct{}),
	}
}

// Subscribe upgrades the request to a websocket and joins it to the
// game's room. It blocks until the socket closes.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, gameID string) error {
	if gameID == "" {
		return errors.InvalidArgument("game ID is required")
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return errors.Wrap(err, "websocket upgrade failed")
	}

	c := &client{conn: conn, gameID: gameID}
	h.join(c)
	defer h.leave(c)

	slog.Info("socket subscribed", "game_id", gameID)

	go h.pingLoop(c)

	// Inbound traffic is ignored apart from keeping the read pump alive
	// for pong frames and close detection.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	slog.Info("socket closed", "game_id", gameID)
	return nil
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.gameID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[c.gameID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.gameID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.gameID)
	}
	_ = c.conn.Close()
}

func (h *Hub) pingLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		if err := c.write(websocket.PingMessage, nil); err != nil {
			return
		}
	}
}

// EmitToRoom implements Broadcaster. Sockets that fail the write are
// dropped from the room.
func (h *Hub) EmitToRoom(gameID, event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, GameID: gameID, Payload: payload})
	if err != nil {
		slog.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	members := make([]*client, 0, len(h.rooms[gameID]))
	for c := range h.rooms[gameID] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if err := c.write(websocket.TextMessage, data); err != nil {
			slog.Warn("dropping dead socket", "game_id", gameID, "error", err)
			h.leave(c)
		}
	}
}

// RoomSize reports the subscriber count for a game. Used by tests and
// the health endpoint.
func (h *Hub) RoomSize(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}
