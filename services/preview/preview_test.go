package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ledtree-go/types"
)

type fakeSource struct{}

func (fakeSource) Snapshot(dst []types.ChannelState) []types.ChannelState {
	return append(dst,
		types.ChannelState{ID: 0, Stage: types.StageRising, Level: 10, Duty: 40},
		types.ChannelState{ID: 1, Stage: types.StageFalling, Level: 200, Duty: 3000},
	)
}

func (fakeSource) Stats() types.EngineStats {
	return types.EngineStats{Ticks: 5, Installs: []uint32{1, 1}, Brightness: 1}
}

func waitUntil(t *testing.T, d time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(d)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(2 * time.Millisecond):
		}
	}
}

type rawEnvelope struct {
	Type string          `json:"type"`
	TS   int64           `json:"ts"`
	Data json.RawMessage `json:"data"`
}

func TestStreamsHelloThenFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewServer(slog.Default(), fakeSource{}, Config{Interval: 5 * time.Millisecond})
	go s.Run(ctx)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg rawEnvelope
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "hello" {
		t.Fatalf("first message %q, want hello", msg.Type)
	}
	var st types.EngineStats
	if err := json.Unmarshal(msg.Data, &st); err != nil || st.Ticks != 5 {
		t.Fatalf("hello data %s: %v", msg.Data, err)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	var f types.Frame
	if err := json.Unmarshal(msg.Data, &f); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "frame" || len(f.Channels) != 2 || f.Channels[1].Duty != 3000 {
		t.Fatalf("frame = %s %s", msg.Type, msg.Data)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := NewServer(nil, fakeSource{}, Config{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var st types.EngineStats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil || len(st.Installs) != 2 {
		t.Fatalf("stats body %q: %v", rec.Body.String(), err)
	}
}

// A client whose queue is full is disconnected; the others keep receiving.
func TestSlowClientDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := newHub(slog.Default(), 1)
	go h.Run(ctx)

	slow := &client{hub: h, send: make(chan []byte, 1), remoteAddr: "slow"}
	fast := &client{hub: h, send: make(chan []byte, 4), remoteAddr: "fast"}
	h.register <- slow
	h.register <- fast
	waitUntil(t, time.Second, func() bool { return h.Clients() == 2 }, "clients not registered")

	h.broadcast <- []byte("a")
	h.broadcast <- []byte("b")
	waitUntil(t, time.Second, func() bool { return h.Clients() == 1 }, "slow client not dropped")

	if got := <-fast.send; string(got) != "a" {
		t.Fatalf("fast got %q", got)
	}
	if got := <-fast.send; string(got) != "b" {
		t.Fatalf("fast got %q", got)
	}
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Fatal("slow client's queue not closed")
	}
}

// Once the hub has stopped, a new connection is closed instead of waiting on
// a registration nobody will read.
func TestConnectAfterHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer(slog.Default(), fakeSource{}, Config{})
	go s.Hub().Run(ctx)
	cancel()
	select {
	case <-s.Hub().done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	for i := 0; i < cap(s.Hub().register); i++ {
		s.Hub().register <- &client{hub: s.Hub(), send: make(chan []byte, 1)}
	}

	returned := make(chan struct{})
	h := s.Handler()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
		close(returned)
	}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("handler blocked on a stopped hub")
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection to a stopped hub stayed open")
	}
}
