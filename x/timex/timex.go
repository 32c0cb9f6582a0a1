package timex

import "time"

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint64) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return 1_000_000_000 / freqHz
}

// Ticks converts a duration expressed in milliseconds into ticks of the given
// length, rounding down. A non-positive tick is treated as 1 ms.
func Ticks(ms uint32, tick time.Duration) uint32 {
	if tick <= 0 {
		tick = time.Millisecond
	}
	return uint32(time.Duration(ms) * time.Millisecond / tick)
}
