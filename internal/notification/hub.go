package notification

import (
	"sync"
	"time"

	"github.com/classpulse/classpulse-backend/internal/model"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeTimeout = 10 * time.Second

// AlertFrame is the payload pushed to connected alert stream clients.
type AlertFrame struct {
	Event    string         `json:"event"`
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Priority model.Priority `json:"priority"`
	At       time.Time      `json:"at"`
}

// Hub is a websocket-backed Sink. Each user may hold any number of
// open alert stream connections; a user with none simply receives
// nothing, which satisfies the best-effort delivery contract.
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]struct{}
	log   zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
		log:   log.With().Str("component", "alert_hub").Logger(),
	}
}

// Register attaches a connection to a user's alert stream.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[userID][conn] = struct{}{}
}

// Unregister detaches a connection. Safe to call twice.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[userID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.conns, userID)
		}
	}
}

// Show broadcasts an alert frame to the user's open connections.
// Write failures drop the connection; they never propagate.
func (h *Hub) Show(userID, title, body string, priority model.Priority) {
	frame := AlertFrame{
		Event:    "alert",
		Title:    title,
		Body:     body,
		Priority: priority,
		At:       time.Now().UTC(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns[userID] {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			h.log.Debug().Err(err).Str("user_id", userID).Msg("Dropping dead alert connection")
			conn.Close()
			delete(h.conns[userID], conn)
		}
	}
}
