package leds

import (
	"errors"
	"math/rand"
	"sync"
)

// fakeOut records what the engine writes to a PWM output.
type fakeOut struct {
	mu     sync.Mutex
	freq   uint64
	top    uint16
	last   uint16
	writes int
	err    error
}

func (f *fakeOut) Configure(freqHz uint64, top uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.freq, f.top = freqHz, top
	return nil
}

func (f *fakeOut) Set(level uint16) {
	f.mu.Lock()
	f.last = level
	f.writes++
	f.mu.Unlock()
}

func (f *fakeOut) snapshot() (last uint16, writes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.writes
}

var errSliceBusy = errors.New("slice busy")

func seeded(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func fakeOutputs(n int) ([]Output, []*fakeOut) {
	outs := make([]Output, n)
	fakes := make([]*fakeOut, n)
	for i := range outs {
		fakes[i] = &fakeOut{}
		outs[i] = fakes[i]
	}
	return outs, fakes
}
