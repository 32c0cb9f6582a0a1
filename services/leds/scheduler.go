package leds

import (
	"ledtree-go/x/mathx"
	"ledtree-go/x/ramp"
)

// MaxChannels bounds the number of channels an engine drives; it sizes the
// fixed snapshot carried by recompute requests.
const MaxChannels = 8

// Rand is the randomness the scheduler draws from. *math/rand.Rand
// satisfies it.
type Rand interface {
	Intn(n int) int
}

// Amplitude selects how peak and trough are chosen for each cycle.
type Amplitude uint8

const (
	// AmplitudeRandom draws the trough from [MinValue, mid] and the peak
	// from (mid, MaxValue] every cycle.
	AmplitudeRandom Amplitude = iota
	// AmplitudeFixed pins peak and trough to MaxValue and MinValue.
	AmplitudeFixed
)

func (a Amplitude) String() string {
	if a == AmplitudeFixed {
		return "fixed"
	}
	return "random"
}

// Bounds are the validated limits a scheduler works within. Periods and the
// pause are in ticks.
type Bounds struct {
	MinValue, MaxValue   uint8
	MinPeriod, MaxPeriod uint32
	TurnOnMaxPause       uint32
}

func (b Bounds) normalized() Bounds {
	if b.MaxValue < b.MinValue {
		b.MinValue, b.MaxValue = b.MaxValue, b.MinValue
	}
	if b.MaxPeriod < b.MinPeriod {
		b.MinPeriod, b.MaxPeriod = b.MaxPeriod, b.MinPeriod
	}
	b.MinPeriod = mathx.Max(b.MinPeriod, 2)
	b.MaxPeriod = mathx.Max(b.MaxPeriod, b.MinPeriod)
	return b
}

// Scheduler builds the next profile for a channel whose cycle ended. It does
// float division and draws random numbers, so it runs in the worker only.
type Scheduler struct {
	b     Bounds
	rnd   Rand
	amp   Amplitude
	shape ramp.Shape
	pool  [MaxChannels]uint32
}

// NewScheduler returns a scheduler over b. amp and shape select the
// amplitude mode and segment curve.
func NewScheduler(b Bounds, rnd Rand, amp Amplitude, shape ramp.Shape) *Scheduler {
	return &Scheduler{b: b.normalized(), rnd: rnd, amp: amp, shape: shape}
}

// Bounds returns the limits in use after normalisation.
func (s *Scheduler) Bounds() Bounds { return s.b }

// uniform draws from [lo, hi] inclusive.
func (s *Scheduler) uniform(lo, hi uint32) uint32 {
	if hi <= lo {
		return lo
	}
	return lo + uint32(s.rnd.Intn(int(hi-lo)+1))
}

// Candidates appends to dst the doubled remaining times of every channel
// other than self that lands inside [MinPeriod, MaxPeriod].
func (s *Scheduler) Candidates(self int, remaining []uint32, dst []uint32) []uint32 {
	for i, r := range remaining {
		if i == self {
			continue
		}
		if d := 2 * r; mathx.Between(d, s.b.MinPeriod, s.b.MaxPeriod) {
			dst = append(dst, d)
		}
	}
	return dst
}

// midCycle reports whether any peer's remaining time lies in the half range
// [MinPeriod/2, MaxPeriod/2].
func (s *Scheduler) midCycle(self int, remaining []uint32) bool {
	for i, r := range remaining {
		if i != self && mathx.Between(r, s.b.MinPeriod/2, s.b.MaxPeriod/2) {
			return true
		}
	}
	return false
}

// Period picks the next cycle length for channel self given every channel's
// remaining ticks. With no peer mid-cycle the draw is uniform over the full
// range; otherwise it is uniform over the doubled remaining times of the
// peers. Rounding of odd bounds can leave that pool empty, in which case the
// full-range draw is used as well.
func (s *Scheduler) Period(self int, remaining []uint32) uint32 {
	if !s.midCycle(self, remaining) {
		return s.uniform(s.b.MinPeriod, s.b.MaxPeriod)
	}
	pool := s.Candidates(self, remaining, s.pool[:0])
	if len(pool) == 0 {
		return s.uniform(s.b.MinPeriod, s.b.MaxPeriod)
	}
	return pool[s.rnd.Intn(len(pool))]
}

// Extremes picks peak and trough for the next cycle.
func (s *Scheduler) Extremes() (peak, trough uint8) {
	lo, hi := uint32(s.b.MinValue), uint32(s.b.MaxValue)
	if s.amp == AmplitudeFixed || lo == hi {
		return uint8(hi), uint8(lo)
	}
	mid := (lo + hi) / 2
	trough = uint8(s.uniform(lo, mid))
	peak = uint8(s.uniform(mid+1, hi))
	return peak, trough
}

// Next builds the profile for channel self, rising from start.
func (s *Scheduler) Next(self int, start float32, remaining []uint32) Profile {
	period := s.Period(self, remaining)
	peak, trough := s.Extremes()
	return NewProfile(period, 0, start, float32(peak), float32(trough), s.shape)
}

// First builds the power-on profile: dark start, random pause, full-range
// period.
func (s *Scheduler) First() Profile {
	period := s.uniform(s.b.MinPeriod, s.b.MaxPeriod)
	delay := s.uniform(0, s.b.TurnOnMaxPause)
	peak, trough := s.Extremes()
	return NewProfile(period, delay, 0, float32(peak), float32(trough), s.shape)
}
