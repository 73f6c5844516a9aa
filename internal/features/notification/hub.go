package notification

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// jsonWriter is the slice of the websocket connection the hub writes to.
type jsonWriter interface {
	WriteJSON(v any) error
}

// client pairs a connection with a write lock. The websocket contract
// allows only one concurrent writer per connection, and Send can be
// reached from any request goroutine.
type client struct {
	mu   sync.Mutex
	conn jsonWriter
}

// Hub tracks live websocket connections keyed by user ID and pushes events
// to them. It is the only shared mutable state in the process besides the
// cron scheduler.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]*client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string][]*client),
		logger:  logger,
	}
}

// Register attaches a connection for a user.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.register(userID, conn)
}

func (h *Hub) register(userID string, conn jsonWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = append(h.clients[userID], &client{conn: conn})
}

// Unregister detaches a connection.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.unregister(userID, conn)
}

func (h *Hub) unregister(userID string, conn jsonWriter) {
	h.mu.Lock()
	defer h.mu.Unlock()

	remaining := h.clients[userID][:0]
	for _, c := range h.clients[userID] {
		if c.conn != conn {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(h.clients, userID)
	} else {
		h.clients[userID] = remaining
	}
}

// Send pushes an event to every live connection of a user. Writes to one
// connection are serialized on its lock. Write errors are logged and
// otherwise ignored; a dead connection is cleaned up on its next read
// failure.
func (h *Hub) Send(userID string, event Event) {
	h.mu.RLock()
	clients := append([]*client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		err := c.conn.WriteJSON(event)
		c.mu.Unlock()
		if err != nil {
			h.logger.Warn("websocket push failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

// NotifyAccountDeactivated pushes the forced-logout signal. Implements
// user.DeactivationNotifier.
func (h *Hub) NotifyAccountDeactivated(userID string) {
	h.Send(userID, Event{Type: "account_deactivated"})
}
