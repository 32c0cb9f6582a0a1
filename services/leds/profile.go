package leds

import (
	"ledtree-go/types"
	"ledtree-go/x/ramp"
)

// Profile is one breathing cycle: an optional pause, a rise from Start to
// Peak over Period/2 ticks and a fall from Peak to Trough over the rest.
//
//	           Peak
//	           /\
//	          /  \
//	Start __ /    \ Trough
//	   [Delay]
//
// Rise and Fall carry the a1,b1 / a2,b2 coefficients for the two segments.
type Profile struct {
	Period uint32 // ticks, rise + fall
	Delay  uint32 // ticks held at Start before rising (power-on only)

	Start, Peak, Trough float32

	Rise ramp.Segment
	Fall ramp.Segment
}

// NewProfile derives the segment coefficients for a cycle.
func NewProfile(period, delay uint32, start, peak, trough float32, shape ramp.Shape) Profile {
	rise := period / 2
	fall := period - rise
	return Profile{
		Period: period,
		Delay:  delay,
		Start:  start,
		Peak:   peak,
		Trough: trough,
		Rise:   ramp.Through(start, peak, rise, shape),
		Fall:   ramp.Through(peak, trough, fall, shape),
	}
}

// Total is the length of the profile in ticks including the pause.
func (p Profile) Total() uint32 { return p.Delay + p.Period }

// At evaluates the profile at tick n counted from its start. n past Total
// holds the trough and reports StageWaiting.
func (p Profile) At(n uint32) (float32, types.Stage) {
	if n < p.Delay {
		return p.Start, types.StagePaused
	}
	n -= p.Delay
	if n < p.Rise.Len {
		return p.Rise.At(n), types.StageRising
	}
	n -= p.Rise.Len
	if n < p.Fall.Len {
		return p.Fall.At(n), types.StageFalling
	}
	return p.Fall.End(), types.StageWaiting
}
