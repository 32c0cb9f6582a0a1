package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"ledtree-go/types"
)

// Source is what the preview reads from the engine.
type Source interface {
	Snapshot(dst []types.ChannelState) []types.ChannelState
	Stats() types.EngineStats
}

type Config struct {
	Interval time.Duration // frame period, default 40 ms
	SendBuf  int           // per-client queue, default 16
}

type envelope struct {
	Type string `json:"type"`
	TS   int64  `json:"ts"`
	Data any    `json:"data,omitempty"`
}

type Server struct {
	logger *slog.Logger
	src    Source
	hub    *Hub
	cfg    Config

	upgrader websocket.Upgrader
}

func NewServer(logger *slog.Logger, src Source, cfg Config) *Server {
	if cfg.Interval <= 0 {
		cfg.Interval = 40 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger: logger,
		src:    src,
		hub:    newHub(logger, cfg.SendBuf),
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler serves the websocket on /ws and the engine counters on /stats.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/stats", s.handleStats)
	return mux
}

// Run drives the hub and the frame broadcaster until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	go s.hub.Run(ctx)

	tk := time.NewTicker(s.cfg.Interval)
	defer tk.Stop()
	var f types.Frame
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tk.C:
			if s.hub.Clients() == 0 {
				continue
			}
			f.TS = now.UnixMilli()
			f.Channels = s.src.Snapshot(f.Channels[:0])
			msg, err := encode("frame", now, f)
			if err != nil {
				s.logger.Warn("preview marshal failed", "error", err)
				continue
			}
			s.hub.Broadcast(msg)
		}
	}
}

func encode(typ string, at time.Time, data any) ([]byte, error) {
	return json.Marshal(envelope{Type: typ, TS: at.UnixMilli(), Data: data})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("preview upgrade failed", "error", err)
		return
	}
	c := &client{hub: s.hub, conn: conn, send: make(chan []byte, s.hub.sendBuf), remoteAddr: r.RemoteAddr}
	if hello, err := encode("hello", time.Now(), s.src.Stats()); err == nil {
		c.send <- hello
	}
	if !s.hub.join(r.Context(), c) {
		s.logger.Debug("preview hub stopped, refusing client", "remote_addr", r.RemoteAddr)
		_ = conn.Close()
		return
	}

	// Pumps outlive the request; the hub owns the connection from here.
	go c.writePump()
	go c.readPump()
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.src.Stats()); err != nil {
		s.logger.Warn("preview stats encode failed", "error", err)
	}
}
