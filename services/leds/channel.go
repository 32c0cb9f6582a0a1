package leds

import (
	"math"
	"sync/atomic"

	"ledtree-go/types"
	"ledtree-go/x/ramp"
)

// Output is one PWM channel as the engine sees it.
type Output interface {
	// Configure is called once at startup; an error is fatal to startup.
	Configure(freqHz uint64, top uint16) error
	// Set writes a duty count in [0,top]. It runs in the tick context and
	// must not block.
	Set(level uint16)
}

const noOverride = -1

// Channel is the breathing state of one output.
//
// Ownership: the tick context is the only writer of stage, value, t and prof;
// the worker hands a new profile over through next + installed, and writes
// scale and override atomically. Readers outside the tick context use the
// pub* snapshot fields only.
type Channel struct {
	id  int
	out Output

	// tick-owned
	prof  Profile
	stage types.Stage
	t     uint32 // ticks elapsed in the current stage
	value float32
	held  bool    // override active until the cycle ends
	hold  float32 // override level
	moved bool    // override landed while waiting; next rise starts from value

	// worker -> tick handoff
	next      Profile
	installed atomic.Bool
	scale     atomic.Uint32 // float32 bits
	override  atomic.Int32
	stalled   atomic.Bool

	// tick -> readers
	pubStage atomic.Uint32
	pubLevel atomic.Uint32
	pubDuty  atomic.Uint32
	pubLeft  atomic.Uint32
}

func newChannel(id int, out Output) *Channel {
	c := &Channel{id: id, out: out, stage: types.StageWaiting}
	c.scale.Store(math.Float32bits(1))
	c.override.Store(noOverride)
	return c
}

// ID is the stable channel index.
func (c *Channel) ID() int { return c.id }

// install hands p to the tick context. Worker only.
func (c *Channel) install(p Profile) {
	c.next = p
	c.installed.Store(true)
}

// begin starts the active profile. Tick only.
func (c *Channel) begin() {
	c.t = 0
	c.value = c.prof.Start
	if c.prof.Delay > 0 {
		c.stage = types.StagePaused
	} else {
		c.stage = types.StageRising
	}
}

// rebase makes the active profile rise from v instead of its planned start.
func (c *Channel) rebase(v float32) {
	c.moved = false
	if v == c.prof.Start {
		return
	}
	c.prof.Start = v
	r := c.prof.Rise
	c.prof.Rise = ramp.Through(v, c.prof.Peak, r.Len, r.Shape)
}

// remaining is the number of ticks left in the current cycle. Tick only.
func (c *Channel) remaining() uint32 {
	p := &c.prof
	switch c.stage {
	case types.StagePaused:
		return p.Delay - c.t + p.Period
	case types.StageRising:
		return p.Rise.Len - c.t + p.Fall.Len
	case types.StageFalling:
		return p.Fall.Len - c.t
	default:
		return 0
	}
}

// step advances the channel by one tick and writes its output. It reports
// true exactly once per cycle, on the tick the trough is reached.
func (c *Channel) step(g *Gamma) (done bool) {
	switch c.stage {
	case types.StageWaiting:
		if c.installed.Load() {
			c.prof = c.next
			c.installed.Store(false)
			c.held = false
			if c.moved {
				c.rebase(c.value)
			}
			c.begin()
		}

	case types.StagePaused:
		c.t++
		if c.t >= c.prof.Delay {
			c.stage, c.t = types.StageRising, 0
		}

	case types.StageRising:
		c.t++
		if c.t >= c.prof.Rise.Len {
			c.value = c.prof.Peak
			c.stage, c.t = types.StageFalling, 0
		} else {
			c.value = c.prof.Rise.At(c.t)
		}

	case types.StageFalling:
		c.t++
		if c.t >= c.prof.Fall.Len {
			c.value = c.prof.Trough
			c.stage, c.t = types.StageWaiting, 0
			done = true
		} else {
			c.value = c.prof.Fall.At(c.t)
		}
	}

	if ov := c.override.Swap(noOverride); ov != noOverride {
		if c.stage == types.StageWaiting {
			c.value, c.moved = float32(ov), true
		} else {
			c.held, c.hold = true, float32(ov)
		}
	}
	if c.held && done {
		// the next profile starts from where the override left the output
		c.held = false
		c.value = c.hold
	}

	lvl := c.value
	if c.held {
		lvl = c.hold
	}
	duty := g.Map(lvl, math.Float32frombits(c.scale.Load()))
	c.out.Set(duty)

	c.pubStage.Store(uint32(c.stage))
	c.pubLevel.Store(uint32(lvl + 0.5))
	c.pubDuty.Store(uint32(duty))
	c.pubLeft.Store(c.remaining())
	return done
}

// state copies the published snapshot. Safe from any goroutine.
func (c *Channel) state() types.ChannelState {
	return types.ChannelState{
		ID:        c.id,
		Stage:     types.Stage(c.pubStage.Load()),
		Level:     uint8(c.pubLevel.Load()),
		Duty:      uint16(c.pubDuty.Load()),
		Remaining: c.pubLeft.Load(),
		Stalled:   c.stalled.Load(),
	}
}
