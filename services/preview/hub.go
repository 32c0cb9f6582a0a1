// Package preview streams the simulator's channel levels to browsers over a
// websocket, so a breathing pattern can be watched without hardware.
//
// Messages are JSON text frames {type, ts, data}. A client first receives
// "hello" with the engine counters, then a "frame" at a fixed rate. Clients
// that cannot keep up are disconnected.
package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub tracks connected clients and fans frames out to them.
type Hub struct {
	logger *slog.Logger

	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{} // closed when Run returns

	mu      sync.Mutex
	clients map[*client]struct{}

	sendBuf int
}

func newHub(logger *slog.Logger, sendBuf int) *Hub {
	if sendBuf <= 0 {
		sendBuf = 16
	}
	return &Hub{
		logger:     logger,
		broadcast:  make(chan []byte, 32),
		register:   make(chan *client, 16),
		unregister: make(chan *client, 16),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
		sendBuf:    sendBuf,
	}
}

// Run is the only goroutine that adds, removes or closes clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("preview client connected", "remote_addr", c.remoteAddr, "clients", n)

		case c := <-h.unregister:
			h.remove(c, "closed")

		case msg := <-h.broadcast:
			var slow []*client
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.Unlock()
			for _, c := range slow {
				h.remove(c, "slow_client")
			}
		}
	}
}

// join hands c to the hub. It gives up when ctx ends or the hub has stopped.
func (h *Hub) join(ctx context.Context, c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
	case <-ctx.Done():
	}
	return false
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(c *client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		h.drop(c)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info("preview client disconnected", "remote_addr", c.remoteAddr, "reason", reason, "clients", n)
	}
}

// caller holds h.mu
func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	close(c.send)
}

// Broadcast queues msg for every client. It never blocks.
func (h *Hub) Broadcast(msg []byte) bool {
	select {
	case h.broadcast <- msg:
		return true
	default:
		h.logger.Debug("preview broadcast queue full, dropping frame")
		return false
	}
}

type client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
}

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second
)

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
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

// readPump discards input and reports the disconnect to the hub.
func (c *client) readPump() {
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			select {
			case c.hub.unregister <- c:
			default: // hub gone or busy; the slow-client path removes us
			}
			return
		}
	}
}
