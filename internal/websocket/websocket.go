// Package websocket pushes committed session snapshots to connected
// browser clients. Each connection holds its own store subscription, so
// every client observes the store's commit order directly.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/scrumdeck/internal/logger"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Session ids are the access token; origin is not.
	},
}

// Snapshot message types pushed to clients.
const (
	MsgSession  = "session"
	MsgNotFound = "not_found"
	MsgDeleted  = "deleted"
)

// Hub upgrades connections and bridges store subscriptions to them.
type Hub struct {
	log   logger.Logger
	store store.Store

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New creates a Hub reading from the given session store.
func New(log logger.Logger, st store.Store) *Hub {
	return &Hub{
		log:     log,
		store:   st,
		clients: make(map[*client]struct{}),
	}
}

type client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	send      chan models.WSMessage
	sub       *store.Subscription
	closeOnce sync.Once
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeSession upgrades the request and streams the session's snapshots
// until the client disconnects or the session is deleted.
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sub, err := h.store.Subscribe(r.Context(), sessionID)
	if err != nil {
		h.log.Error("Subscribe failed", "session_id", sessionID, "error", err)
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		sub.Cancel()
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	c := &client{
		hub:       h,
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan models.WSMessage, 16),
		sub:       sub,
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("Client connected", "session_id", sessionID, "total_clients", h.ClientCount())

	go c.snapshotPump()
	go c.writePump()
	go c.readPump()
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		c.sub.Cancel()
		c.conn.Close()
		c.hub.mu.Lock()
		delete(c.hub.clients, c)
		c.hub.mu.Unlock()
		c.hub.log.Debug("Client disconnected", "session_id", c.sessionID)
	})
}

// snapshotPump translates store snapshots into outbound messages. A nil
// snapshot is terminal: deleted when the subscription ever carried a
// record, not_found when it never did. The subscription tracks that across
// its latest-wins buffer, so a delete landing before the first read still
// reports deleted.
func (c *client) snapshotPump() {
	defer c.close()
	for snap := range c.sub.Snapshots() {
		if snap == nil {
			if c.sub.SawRecord() {
				c.enqueue(models.WSMessage{Type: MsgDeleted, Payload: c.sessionID})
			} else {
				c.enqueue(models.WSMessage{Type: MsgNotFound, Payload: c.sessionID})
			}
			return
		}
		c.enqueue(models.WSMessage{Type: MsgSession, Payload: snap})
	}
}

func (c *client) enqueue(msg models.WSMessage) {
	select {
	case c.send <- msg:
	default:
		// Slow client; drop the connection rather than block the pump.
		c.close()
	}
}

// readPump drains and discards inbound frames; clients speak through the
// HTTP API, not the socket. It exists to notice disconnects and answer
// pings.
func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			return
		}
	}
}

// writePump pumps outbound messages to the connection with keepalive pings.
func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				c.hub.log.Error("Marshal snapshot failed", "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			if msg.Type == MsgDeleted || msg.Type == MsgNotFound {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
