// Package ramp evaluates the rise/fall segments of a breathing curve.
//
// A segment is v(t) = A·x + B for t in [0, Len], where x is t (Linear) or t²
// (Parabolic). Coefficients are computed once per cycle; evaluation is a
// multiply-add and is safe on the tick path.
package ramp

// Shape selects the independent variable of a segment.
type Shape uint8

const (
	Linear    Shape = iota // x = t
	Parabolic              // x = t², slow near the start value
)

func (s Shape) String() string {
	switch s {
	case Linear:
		return "linear"
	case Parabolic:
		return "parabolic"
	default:
		return "unknown"
	}
}

// Segment holds the coefficients for one monotonic run.
type Segment struct {
	A, B  float32
	Len   uint32
	Shape Shape
}

// Through returns the segment with v(0)=from and v(length)=to.
// A zero length collapses to the constant 'to'.
func Through(from, to float32, length uint32, shape Shape) Segment {
	if length == 0 {
		return Segment{B: to, Shape: shape}
	}
	l := float32(length)
	if shape == Parabolic {
		l *= l
	}
	return Segment{A: (to - from) / l, B: from, Len: length, Shape: shape}
}

// At evaluates the segment; t past Len is held at Len.
func (s Segment) At(t uint32) float32 {
	if t > s.Len {
		t = s.Len
	}
	x := float32(t)
	if s.Shape == Parabolic {
		x *= x
	}
	return s.A*x + s.B
}

// End is the value reached at Len.
func (s Segment) End() float32 { return s.At(s.Len) }
