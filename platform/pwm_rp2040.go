//go:build rp2040

package platform

import (
	"machine"
	"sync"

	"ledtree-go/errcode"
	"ledtree-go/x/mathx"
	"ledtree-go/x/timex"
)

// Local interface to avoid depending on an unexported concrete type in machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Top() uint32
	Set(channel uint8, value uint32)
}

// Select controller handle for a given slice number (0..7).
func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// Slice policy: the first channel on a slice sets its carrier, later ones
// must match it.
var slices struct {
	mu   sync.Mutex
	freq [8]uint64
}

// PWM is one breathing channel on an RP2040 PWM pin. Even GPIOs are the
// slice's A output, odd ones B.
type PWM struct {
	pin   machine.Pin
	ctrl  pwmCtrl
	slice uint8
	chIdx uint8

	reqTop uint16 // logical resolution
	hwTop  uint32 // controller top after Configure
}

// NewPWM binds pin to its PWM slice. Nothing is configured yet.
func NewPWM(pin machine.Pin) (*PWM, error) {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil, errcode.Wrap(errcode.Unsupported, "platform.NewPWM", err)
	}
	return &PWM{pin: pin, ctrl: pwmGroupBySlice(slice), slice: slice, chIdx: uint8(pin) & 1}, nil
}

// Configure sets the carrier and logical resolution. Two channels sharing a
// slice must ask for the same carrier.
func (p *PWM) Configure(freqHz uint64, top uint16) error {
	top = mathx.Max(top, 1)
	freqHz = mathx.Max(freqHz, 1)

	slices.mu.Lock()
	defer slices.mu.Unlock()
	switch f := slices.freq[p.slice]; {
	case f == 0:
		if err := p.ctrl.Configure(machine.PWMConfig{Period: timex.PeriodFromHz(freqHz)}); err != nil {
			return err
		}
		slices.freq[p.slice] = freqHz
	case f != freqHz:
		return errcode.Conflict
	}

	p.pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	p.reqTop = top
	p.hwTop = p.ctrl.Top()
	return nil
}

// Set scales level from [0,top] onto the slice's hardware top. It is a
// register store and is called from the tick loop.
func (p *PWM) Set(level uint16) {
	if p.hwTop == 0 {
		return
	}
	p.ctrl.Set(p.chIdx, mathx.ScaleU32(uint32(level), uint32(p.reqTop), p.hwTop))
}
