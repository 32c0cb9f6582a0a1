package leds

import (
	"context"
	"sync/atomic"
	"time"
)

// Dispatcher advances every channel once per tick. Tick is written for a
// time-critical context: no allocation, no randomness, no blocking.
type Dispatcher struct {
	chans []*Channel
	gamma *Gamma
	q     chan<- Request

	ticks    atomic.Uint64
	requests atomic.Uint32
	drops    atomic.Uint32
}

func newDispatcher(chans []*Channel, g *Gamma, q chan<- Request) *Dispatcher {
	return &Dispatcher{chans: chans, gamma: g, q: q}
}

// Tick steps every channel, then posts one recompute request per channel
// that finished its cycle this tick. All requests of a tick carry the same
// snapshot, taken after every channel has stepped. If the queue is full the
// request is dropped and the channel stays at its trough until kicked.
func (d *Dispatcher) Tick() {
	var done uint32 // bit i: channel i finished
	for i, c := range d.chans {
		if c.step(d.gamma) {
			done |= 1 << i
		}
	}
	if done != 0 {
		d.post(done)
	}
	d.ticks.Add(1)
}

func (d *Dispatcher) post(done uint32) {
	r := Request{Kind: ReqRecompute, N: len(d.chans)}
	for i, o := range d.chans {
		r.Snapshot[i] = o.remaining()
	}
	for i, c := range d.chans {
		if done&(1<<i) == 0 {
			continue
		}
		r.Channel, r.Start = c.id, c.value
		select {
		case d.q <- r:
			d.requests.Add(1)
		default:
			d.drops.Add(1) // protect tick path
			c.stalled.Store(true)
		}
	}
}

// Run calls Tick every period until ctx is cancelled. Ticks the ticker drops
// while a Tick is running are not replayed.
func (d *Dispatcher) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = time.Millisecond
	}
	tk := time.NewTicker(period)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			d.Tick()
		}
	}
}

func (d *Dispatcher) Ticks() uint64    { return d.ticks.Load() }
func (d *Dispatcher) Requests() uint32 { return d.requests.Load() }
func (d *Dispatcher) Drops() uint32    { return d.drops.Load() }
