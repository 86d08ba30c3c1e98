// Package realtime pushes server events to connected browsers over websockets.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	TypePermissionsChanged = "permissions_changed"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Event is one JSON frame sent to a client.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Envelope is an event addressed to a set of users. It is what travels
// through a Broker.
type Envelope struct {
	UserIDs []string        `json:"user_ids"`
	Event   json.RawMessage `json:"event"`
}

// Broker relays envelopes between replicas. Without one, events only reach
// clients connected to this process.
type Broker interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context, deliver func(Envelope)) error
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks websocket connections per user.
type Hub struct {
	Logger *slog.Logger
	Broker Broker

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
}

// NewHub builds a hub. allowedOrigins empty accepts any origin.
func NewHub(logger *slog.Logger, broker Broker, allowedOrigins []string) *Hub {
	h := &Hub{
		Logger:  logger,
		Broker:  broker,
		clients: make(map[string]map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Run subscribes to the broker until ctx is done. It returns immediately
// when no broker is configured.
func (h *Hub) Run(ctx context.Context) error {
	if h.Broker == nil {
		return nil
	}
	return h.Broker.Subscribe(ctx, h.deliver)
}

// ServeWS upgrades the request and registers the connection for userID.
// It returns once the upgrade has been handled; pumps run in the background.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// Connections returns how many sockets userID has open.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Send addresses ev to userIDs through the broker when present, or straight
// to local connections otherwise.
func (h *Hub) Send(ctx context.Context, ev Event, userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		h.Logger.Error("realtime: encode event", slog.String("type", ev.Type), slog.Any("error", err))
		return
	}
	env := Envelope{UserIDs: userIDs, Event: raw}

	if h.Broker != nil {
		if err := h.Broker.Publish(ctx, env); err == nil {
			return
		} else {
			h.Logger.Warn("realtime: broker publish failed, delivering locally", slog.Any("error", err))
		}
	}
	h.deliver(env)
}

// PermissionsChanged tells the users' open sessions to reload their permissions.
func (h *Hub) PermissionsChanged(ctx context.Context, userIDs ...string) {
	h.Send(ctx, Event{Type: TypePermissionsChanged}, userIDs...)
}

func (h *Hub) deliver(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range env.UserIDs {
		for c := range h.clients[id] {
			select {
			case c.send <- env.Event:
			default:
				// Slow consumer; it will resync on reconnect.
				h.Logger.Warn("realtime: dropping event for slow client", slog.String("user_id", id))
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.Logger.Debug("realtime client connected", slog.String("user_id", c.userID))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	h.Logger.Debug("realtime client disconnected", slog.String("user_id", c.userID))
}

// readPump only watches for disconnects and pongs; clients never send data.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
