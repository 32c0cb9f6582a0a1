// Package heartbeat blinks the indicator LED. The pattern says whether the
// board started cleanly.
package heartbeat

import (
	"context"
	"time"
)

// Pin is the indicator output.
type Pin interface {
	Set(on bool)
}

// Step holds the pin at On for D.
type Step struct {
	On bool
	D  time.Duration
}

// Pattern repeats forever.
type Pattern []Step

var (
	// Normal toggles once a second.
	Normal = Pattern{{true, 999 * time.Millisecond}, {false, 999 * time.Millisecond}}
	// Degraded is a double blink: the engine runs on default settings.
	Degraded = Pattern{
		{true, 100 * time.Millisecond}, {false, 150 * time.Millisecond},
		{true, 100 * time.Millisecond}, {false, 900 * time.Millisecond},
	}
	// Fatal is a fast flicker: an output failed and the engine is not running.
	Fatal = Pattern{{true, 80 * time.Millisecond}, {false, 80 * time.Millisecond}}
)

type Service struct {
	pin   Pin
	patCh chan Pattern
}

func New(pin Pin, initial Pattern) *Service {
	s := &Service{pin: pin, patCh: make(chan Pattern, 1)}
	s.patCh <- initial
	return s
}

// SetPattern replaces the running pattern, restarting at its first step.
// Only the latest pattern is kept if the loop has not picked one up yet.
func (s *Service) SetPattern(p Pattern) {
	for {
		select {
		case s.patCh <- p:
			return
		default:
		}
		select {
		case <-s.patCh:
		default:
		}
	}
}

func (s *Service) serviceLoop(ctx context.Context) {
	var (
		pat Pattern
		i   int
	)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	apply := func() {
		st := pat[i]
		s.pin.Set(st.On)
		timer.Reset(st.D)
	}

	for {
		select {
		case <-ctx.Done():
			s.pin.Set(false)
			println("[heartbeat] stopping")
			return
		case p := <-s.patCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			pat, i = p, 0
			if len(pat) == 0 {
				s.pin.Set(false)
				continue
			}
			apply()
		case <-timer.C:
			i = (i + 1) % len(pat)
			apply()
		}
	}
}

// Start runs the pattern until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}
