package leds

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

// Worker drains the handoff queue. It is the only goroutine that runs the
// scheduler and the only writer of a channel's next profile.
type Worker struct {
	q     <-chan Request
	sched *Scheduler
	chans []*Channel
	poll  time.Duration

	installs [MaxChannels]atomic.Uint32
	scale    atomic.Uint32 // float32 bits of the last applied brightness
}

// newWorker builds a worker. A positive poll switches it from blocking
// receive to waking every poll interval and draining what is queued.
func newWorker(q <-chan Request, s *Scheduler, chans []*Channel, poll time.Duration) *Worker {
	w := &Worker{q: q, sched: s, chans: chans, poll: poll}
	w.scale.Store(math.Float32bits(1))
	return w
}

// Run processes requests until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w.poll > 0 {
		w.runPolled(ctx)
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-w.q:
			w.Handle(r)
		}
	}
}

func (w *Worker) runPolled(ctx context.Context) {
	tk := time.NewTicker(w.poll)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			w.Drain()
		}
	}
}

// Drain handles everything currently queued and returns how many requests
// it processed. An empty queue is a no-op.
func (w *Worker) Drain() int {
	n := 0
	for {
		select {
		case r := <-w.q:
			w.Handle(r)
			n++
		default:
			return n
		}
	}
}

// Handle applies one request.
func (w *Worker) Handle(r Request) {
	switch r.Kind {
	case ReqRecompute:
		if r.Channel < 0 || r.Channel >= len(w.chans) {
			return
		}
		p := w.sched.Next(r.Channel, r.Start, r.Remaining())
		w.chans[r.Channel].install(p)
		w.installs[r.Channel].Add(1)

	case ReqBrightness:
		bits := math.Float32bits(r.Scale)
		for _, c := range w.chans {
			c.scale.Store(bits)
		}
		w.scale.Store(bits)

	case ReqSetValue:
		if r.Channel < 0 || r.Channel >= len(w.chans) {
			return
		}
		w.chans[r.Channel].override.Store(int32(r.Value))
	}
}

// Installs reports how many profiles the worker installed on channel ch.
func (w *Worker) Installs(ch int) uint32 {
	if ch < 0 || ch >= MaxChannels {
		return 0
	}
	return w.installs[ch].Load()
}

// Brightness is the last master scale the worker applied.
func (w *Worker) Brightness() float32 { return math.Float32frombits(w.scale.Load()) }
