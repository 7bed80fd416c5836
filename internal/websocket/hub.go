package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"kishanmitra/client/internal/model"
)

// Event types pushed to the view.
const (
	EventSnapshot        = "snapshot"
	EventNotice          = "notice"
	EventVoiceStart      = "voice_start"
	EventLocationRequest = "location_request"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Event is the envelope of every message sent over the socket.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// VoiceStart asks the view to begin speech recognition.
type VoiceStart struct {
	Locale string `json:"locale"`
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeLocked(data)
}

func (c *client) writeLocked(data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans session snapshots, notices and capability requests out to every
// connected view. The newest snapshot is replayed to views that connect late.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	snapshot *model.SessionSnapshot

	// publishMu keeps snapshot broadcasts in version order.
	publishMu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn}
	h.register(c)

	go func() {
		defer h.unregister(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// register adds c and replays the newest snapshot to it. The client's write
// lock is held throughout, so a broadcast that already sees c is written
// after the replay.
func (h *Hub) register(c *client) {
	c.writeMu.Lock()
	h.mu.Lock()
	h.clients[c] = struct{}{}
	snap := h.snapshot
	total := len(h.clients)
	h.mu.Unlock()

	var err error
	if snap != nil {
		var data []byte
		if data, err = json.Marshal(Event{Type: EventSnapshot, Data: snap}); err == nil {
			err = c.writeLocked(data)
		}
	}
	c.writeMu.Unlock()

	if err != nil {
		slog.Debug("Failed to replay snapshot", "error", err)
		h.unregister(c)
		return
	}
	slog.Debug("WebSocket connected", "total", total)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
		slog.Debug("WebSocket disconnected")
	}
}

// Clients returns the number of connected views.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every connected view. Views whose socket
// fails are dropped.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Data: payload})
	if err != nil {
		slog.Error("Failed to marshal websocket event", "type", eventType, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(data); err != nil {
			slog.Debug("Dropping websocket client", "error", err)
			h.unregister(c)
		}
	}
}

// PublishSnapshot broadcasts a session snapshot. Snapshots older than the
// last one published are dropped.
func (h *Hub) PublishSnapshot(snap model.SessionSnapshot) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	if h.snapshot != nil && snap.Version <= h.snapshot.Version {
		h.mu.Unlock()
		return
	}
	h.snapshot = &snap
	h.mu.Unlock()

	h.Broadcast(EventSnapshot, snap)
}

// Notify broadcasts a transient notice.
func (h *Hub) Notify(n model.Notice) {
	h.Broadcast(EventNotice, n)
}

// RequestVoice asks the view to start speech recognition in locale.
func (h *Hub) RequestVoice(locale string) {
	h.Broadcast(EventVoiceStart, VoiceStart{Locale: locale})
}

// RequestLocation asks the view for the browser's current position.
func (h *Hub) RequestLocation() {
	h.Broadcast(EventLocationRequest, nil)
}

// Close disconnects every view.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	}
}
