package dashboard

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/starshine-sys/clipbot/common"
	"github.com/starshine-sys/clipbot/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// frames buffered per client before it's considered too slow and dropped
	sendBuffer = 256
)

// Frame is a single push message.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub fans store events out to every connected WebSocket client.
type Hub struct {
	store *Store

	mu      sync.Mutex
	clients map[*client]struct{}

	upgrader websocket.Upgrader
}

// NewHub creates a hub and subscribes it to the store's events.
func NewHub(s *Store) (*Hub, error) {
	h := &Hub{
		store:   s,
		clients: map[*client]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the dashboard is public, same as the API
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	err := s.OnCommand(func(e CommandEntry) {
		h.broadcast(Frame{Event: EventNewCommand, Data: e})
	})
	if err != nil {
		return nil, err
	}

	err = s.OnStats(func(st Stats) {
		h.broadcast(Frame{Event: EventStatsUpdate, Data: st})
	})
	if err != nil {
		return nil, err
	}

	return h, nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a WebSocket connection and sends the current state, then every update.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := common.Log.Named("ws")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("Error upgrading connection: %v", err)
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.register(c)
	log.Infof("Client %v connected from %v", c.id, r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)

	log.Infof("Client %v disconnected", c.id)
}

// register queues the catch-up frames and adds c to the broadcast set.
func (h *Hub) register(c *client) {
	h.store.Attach(func(s Snapshot) {
		h.mu.Lock()
		defer h.mu.Unlock()

		if b, err := json.Marshal(Frame{Event: EventCommandHistory, Data: s.History}); err == nil {
			c.send <- b
		}
		if b, err := json.Marshal(Frame{Event: EventStatsUpdate, Data: s.Stats}); err == nil {
			c.send <- b
		}

		h.clients[c] = struct{}{}
		metrics.DashboardClients.Set(float64(len(h.clients)))
	})
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		metrics.DashboardClients.Set(float64(len(h.clients)))
	}
}

func (h *Hub) broadcast(f Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		common.Log.Named("ws").Errorf("Error encoding %v frame: %v", f.Event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			common.Log.Named("ws").Warnf("Client %v is too slow, dropping it", c.id)
			delete(h.clients, c)
			close(c.send)
		}
	}
	metrics.DashboardClients.Set(float64(len(h.clients)))
}

// readPump discards everything the client sends, it only exists to notice disconnects.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
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
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
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
