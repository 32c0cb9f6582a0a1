// Package knob samples the brightness potentiometer and forwards changes to
// the engine as master brightness requests.
package knob

import (
	"context"
	"time"

	"ledtree-go/x/mathx"
)

// Full is the ADC range a sample is normalised against.
const Full = 65535

// ADC is an analogue input returning a left-justified 16-bit sample.
type ADC interface {
	Get() uint16
}

// Sink receives brightness changes; false means the request was not queued.
type Sink interface {
	SetBrightness(value, full uint32) bool
}

// Config for the knob service. Zero fields take defaults.
type Config struct {
	Interval time.Duration // default 50 ms
	Samples  int           // oversampling per poll, default 8
	Deadband uint16        // change needed before a push, default 512
}

type Service struct {
	adc  ADC
	sink Sink
	cfg  Config

	last   uint16
	primed bool
	pushes uint32
}

func New(adc ADC, sink Sink, cfg Config) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = 50 * time.Millisecond
	}
	if cfg.Samples <= 0 {
		cfg.Samples = 8
	}
	if cfg.Deadband == 0 {
		cfg.Deadband = 512
	}
	return &Service{adc: adc, sink: sink, cfg: cfg}
}

// Read averages the configured number of samples.
func (s *Service) Read() uint16 {
	var sum uint32
	for i := 0; i < s.cfg.Samples; i++ {
		sum += uint32(s.adc.Get())
	}
	return uint16(mathx.RoundDiv(sum, uint32(s.cfg.Samples)))
}

// Poll takes one reading and pushes it if it moved past the deadband. The
// first reading is always pushed. A push the engine could not queue is
// retried on the next poll.
func (s *Service) Poll() bool {
	v := s.Read()
	if s.primed && mathx.AbsDiff(v, s.last) < s.cfg.Deadband {
		return false
	}
	if !s.sink.SetBrightness(uint32(v), Full) {
		return false
	}
	s.last, s.primed = v, true
	s.pushes++
	return true
}

// Pushes counts the brightness requests accepted so far.
func (s *Service) Pushes() uint32 { return s.pushes }

func (s *Service) serviceLoop(ctx context.Context) {
	tick := time.NewTicker(s.cfg.Interval)
	defer tick.Stop()
	s.Poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.Poll()
		}
	}
}

// Start runs the sampling loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	go s.serviceLoop(ctx)
	return nil
}
