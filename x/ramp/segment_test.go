package ramp

import (
	"math"
	"testing"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 0.5 }

func TestThroughHitsEndpoints(t *testing.T) {
	for _, sh := range []Shape{Linear, Parabolic} {
		for _, c := range []struct {
			from, to float32
			n        uint32
		}{{0, 255, 1350}, {200, 7, 2700}, {7, 7, 10}, {12, 250, 30000}} {
			s := Through(c.from, c.to, c.n, sh)
			if !near(s.At(0), c.from) {
				t.Errorf("%v %+v: At(0)=%v", sh, c, s.At(0))
			}
			if !near(s.End(), c.to) {
				t.Errorf("%v %+v: End()=%v", sh, c, s.End())
			}
		}
	}
}

func TestSegmentIsMonotonic(t *testing.T) {
	for _, sh := range []Shape{Linear, Parabolic} {
		up := Through(10, 240, 900, sh)
		down := Through(240, 10, 900, sh)
		for i := uint32(1); i <= 900; i++ {
			if up.At(i) < up.At(i-1) {
				t.Fatalf("%v rising not monotonic at %d", sh, i)
			}
			if down.At(i) > down.At(i-1) {
				t.Fatalf("%v falling not monotonic at %d", sh, i)
			}
		}
	}
}

func TestZeroLengthAndOvershoot(t *testing.T) {
	s := Through(3, 99, 0, Linear)
	if s.At(0) != 99 || s.At(50) != 99 {
		t.Fatalf("zero-length segment = %v/%v", s.At(0), s.At(50))
	}
	s = Through(0, 100, 10, Linear)
	if s.At(1000) != s.End() {
		t.Fatal("t past Len must hold the end value")
	}
}
