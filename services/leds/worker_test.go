package leds

import (
	"context"
	"testing"
	"time"

	"ledtree-go/x/ramp"
)

func newTestWorker(n, queue int, poll time.Duration) (*Worker, []*Channel, chan Request) {
	outs, _ := fakeOutputs(n)
	chans := make([]*Channel, n)
	for i, o := range outs {
		chans[i] = newChannel(i, o)
	}
	q := make(chan Request, queue)
	s := NewScheduler(breathing, seeded(1), AmplitudeRandom, ramp.Linear)
	return newWorker(q, s, chans, poll), chans, q
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting for %s", what)
		case <-time.After(time.Millisecond):
		}
	}
}

func recompute(ch int, n int) Request {
	return Request{Kind: ReqRecompute, Channel: ch, Start: 10, N: n}
}

// N recompute requests interleaved with a brightness change produce exactly
// N installs, each on the channel that asked.
func TestWorkerInstallsInOrder(t *testing.T) {
	w, chans, q := newTestWorker(5, 16, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	go func() {
		for i := 0; i < 5; i++ {
			q <- recompute(i, 5)
			if i == 2 {
				q <- Request{Kind: ReqBrightness, Scale: 0.25}
			}
		}
	}()

	waitFor(t, "installs", func() bool {
		n := uint32(0)
		for i := range chans {
			n += w.Installs(i)
		}
		return n == 5
	})
	waitFor(t, "brightness", func() bool { return w.Brightness() == 0.25 })
	for i, c := range chans {
		if w.Installs(i) != 1 {
			t.Fatalf("channel %d installs = %d", i, w.Installs(i))
		}
		if !c.installed.Load() {
			t.Fatalf("channel %d has no pending profile", i)
		}
		if c.next.Start != 10 {
			t.Fatalf("channel %d next start = %v", i, c.next.Start)
		}
	}
}

func TestWorkerPolledDrains(t *testing.T) {
	w, chans, q := newTestWorker(3, 8, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q <- recompute(0, 3)
	q <- recompute(2, 3)
	go w.Run(ctx)

	waitFor(t, "polled installs", func() bool { return w.Installs(0) == 1 && w.Installs(2) == 1 })
	if w.Installs(1) != 0 || chans[1].installed.Load() {
		t.Fatal("channel 1 received a profile it did not ask for")
	}
}

func TestWorkerDrain(t *testing.T) {
	w, chans, q := newTestWorker(2, 4, 0)
	if n := w.Drain(); n != 0 {
		t.Fatalf("empty drain handled %d", n)
	}
	q <- recompute(1, 2)
	q <- Request{Kind: ReqSetValue, Channel: 0, Value: 77}
	q <- recompute(9, 2) // out of range, ignored
	if n := w.Drain(); n != 3 {
		t.Fatalf("drain handled %d, want 3", n)
	}
	if w.Installs(1) != 1 || w.Installs(0) != 0 {
		t.Fatalf("installs = %d/%d", w.Installs(0), w.Installs(1))
	}
	if got := chans[0].override.Load(); got != 77 {
		t.Fatalf("override = %d, want 77", got)
	}
}

// The recompute snapshot reaches the scheduler: a peer 1500 ticks from its
// trough pins the new period to 3000.
func TestWorkerUsesSnapshot(t *testing.T) {
	w, chans, _ := newTestWorker(2, 1, 0)
	r := recompute(1, 2)
	r.Snapshot[0] = 1500
	w.Handle(r)
	if got := chans[1].next.Period; got != 3000 {
		t.Fatalf("period = %d, want 3000", got)
	}
}
