// Package leds is the breathing engine: every channel fades up and down on
// its own randomized cycle.
//
// A Dispatcher advances all channels once per tick and writes their PWM
// outputs. When a channel's cycle ends it posts a recompute request on a
// bounded queue instead of building the next profile itself; the Worker
// drains that queue, runs the Scheduler and hands the new profile back.
// Brightness and absolute-value commands travel on the same queue.
package leds

import (
	"context"
	"math/rand"
	"time"

	"ledtree-go/errcode"
	"ledtree-go/types"
	"ledtree-go/x/mathx"
	"ledtree-go/x/ramp"
	"ledtree-go/x/strconvx"
	"ledtree-go/x/timex"
)

// Limits are the settings values the engine consumes, periods in ms.
type Limits struct {
	MinValue, MaxValue   uint8
	MinPeriod, MaxPeriod uint32
	TurnOnMaxPause       uint32
}

// Config controls engine construction. Zero fields take defaults.
type Config struct {
	Limits Limits

	Tick      time.Duration // default 1 ms
	FreqHz    uint64        // PWM carrier, default 630 Hz
	Top       uint16        // output resolution, default 4095
	Gamma     GammaCurve
	Shape     ramp.Shape
	Amplitude Amplitude

	QueueLen     int           // handoff queue capacity, default 18
	PollInterval time.Duration // >0 selects the polled worker

	Rand Rand // default math/rand seeded from the clock
}

func (c *Config) withDefaults() {
	if c.Tick <= 0 {
		c.Tick = time.Millisecond
	}
	if c.FreqHz == 0 {
		c.FreqHz = 630
	}
	if c.Top == 0 {
		c.Top = 4095
	}
	if c.QueueLen <= 0 {
		c.QueueLen = 18
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
}

// Bounds converts the limits into ticks of length tick.
func (l Limits) Bounds(tick time.Duration) Bounds {
	return Bounds{
		MinValue:       l.MinValue,
		MaxValue:       l.MaxValue,
		MinPeriod:      timex.Ticks(l.MinPeriod, tick),
		MaxPeriod:      timex.Ticks(l.MaxPeriod, tick),
		TurnOnMaxPause: timex.Ticks(l.TurnOnMaxPause, tick),
	}
}

// Engine ties the channels, dispatcher and worker together.
type Engine struct {
	cfg   Config
	chans []*Channel
	q     chan Request
	sched *Scheduler
	disp  *Dispatcher
	work  *Worker
}

// New configures every output and builds the power-on profiles. Any output
// that fails to configure aborts construction with errcode.OutputInit.
func New(outs []Output, cfg Config) (*Engine, error) {
	if len(outs) == 0 || len(outs) > MaxChannels {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "leds.New", Msg: "channel count"}
	}
	cfg.withDefaults()

	chans := make([]*Channel, len(outs))
	for i, o := range outs {
		if o == nil {
			return nil, &errcode.E{C: errcode.OutputInit, Op: "leds.New", Msg: "channel " + strconvx.Itoa(i) + ": no output"}
		}
		if err := o.Configure(cfg.FreqHz, cfg.Top); err != nil {
			println("[leds] output init failed, channel", i, "err:", err.Error())
			return nil, &errcode.E{C: errcode.OutputInit, Op: "leds.New", Msg: "channel " + strconvx.Itoa(i), Err: err}
		}
		o.Set(0)
		chans[i] = newChannel(i, o)
	}

	q := make(chan Request, cfg.QueueLen)
	sched := NewScheduler(cfg.Limits.Bounds(cfg.Tick), cfg.Rand, cfg.Amplitude, cfg.Shape)
	e := &Engine{
		cfg:   cfg,
		chans: chans,
		q:     q,
		sched: sched,
		disp:  newDispatcher(chans, NewGamma(cfg.Top, cfg.Gamma), q),
		work:  newWorker(q, sched, chans, cfg.PollInterval),
	}
	// Power-on profiles go straight in; nothing is ticking yet.
	for _, c := range chans {
		c.install(sched.First())
	}
	return e, nil
}

// Start runs the worker and the tick loop until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	go e.work.Run(ctx)
	go e.disp.Run(ctx, e.cfg.Tick)
}

func (e *Engine) Dispatcher() *Dispatcher { return e.disp }
func (e *Engine) Worker() *Worker         { return e.work }
func (e *Engine) Scheduler() *Scheduler   { return e.sched }
func (e *Engine) Len() int                { return len(e.chans) }

// SetBrightness normalises value against full and queues a master brightness
// change. It reports false if the queue was full.
func (e *Engine) SetBrightness(value, full uint32) bool {
	scale := float32(1)
	if full > 0 {
		scale = float32(mathx.Min(value, full)) / float32(full)
	}
	return e.send(Request{Kind: ReqBrightness, Scale: scale})
}

// SetValue holds channel ch at an absolute drive level until its current
// cycle ends.
func (e *Engine) SetValue(ch int, value uint8) error {
	if ch < 0 || ch >= len(e.chans) {
		return errcode.InvalidChannel
	}
	if !e.send(Request{Kind: ReqSetValue, Channel: ch, Value: value}) {
		return errcode.QueueFull
	}
	return nil
}

// Kick re-queues the recompute request of a channel whose end-of-cycle
// request was dropped.
func (e *Engine) Kick(ch int) error {
	if ch < 0 || ch >= len(e.chans) {
		return errcode.InvalidChannel
	}
	c := e.chans[ch]
	if !c.stalled.CompareAndSwap(true, false) {
		return errcode.NotStalled
	}
	r := Request{Kind: ReqRecompute, Channel: ch, Start: float32(c.pubLevel.Load()), N: len(e.chans)}
	for i, o := range e.chans {
		r.Snapshot[i] = o.pubLeft.Load()
	}
	if !e.send(r) {
		c.stalled.Store(true)
		return errcode.QueueFull
	}
	return nil
}

func (e *Engine) send(r Request) bool {
	select {
	case e.q <- r:
		return true
	default:
		return false
	}
}

// Snapshot appends the published state of every channel to dst.
func (e *Engine) Snapshot(dst []types.ChannelState) []types.ChannelState {
	for _, c := range e.chans {
		dst = append(dst, c.state())
	}
	return dst
}

// Stats returns the engine counters.
func (e *Engine) Stats() types.EngineStats {
	st := types.EngineStats{
		Ticks:      e.disp.Ticks(),
		Requests:   e.disp.Requests(),
		Drops:      e.disp.Drops(),
		Installs:   make([]uint32, len(e.chans)),
		Brightness: e.work.Brightness(),
	}
	for i := range e.chans {
		st.Installs[i] = e.work.Installs(i)
	}
	return st
}
