package pca9685

import (
	"sync/atomic"

	"ledtree-go/errcode"
	"ledtree-go/x/mathx"
)

// Output is one expander channel in the shape the breathing engine drives:
// it maps the engine's [0,top] onto the chip's 12 bits and skips bus writes
// when the duty has not changed, since an I2C transfer costs far more than a
// PWM register store.
type Output struct {
	dev *Device
	ch  int
	top uint16

	last   int32 // -1 until the first write
	errors atomic.Uint32
}

// Output binds channel ch of d.
func (d *Device) Output(ch int) *Output {
	return &Output{dev: d, ch: ch, last: -1}
}

// Configure programs the device on first use. Later channels must ask for the
// same carrier; the prescaler is shared.
func (o *Output) Configure(freqHz uint64, top uint16) error {
	if o.ch < 0 || o.ch >= Channels {
		return errcode.Wrap(errcode.InvalidChannel, "pca9685.Output", ErrChannel)
	}
	if top == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "pca9685.Output", Msg: "top must be > 0"}
	}
	switch f := o.dev.Freq(); {
	case f == 0:
		if err := o.dev.Configure(freqHz); err != nil {
			return errcode.Wrap(errcode.OutputInit, "pca9685.Configure", err)
		}
	case f != freqHz:
		return &errcode.E{C: errcode.Conflict, Op: "pca9685.Output", Msg: "device runs a different carrier"}
	}
	o.top = top
	o.last = -1
	return nil
}

// Set writes level in [0,top]. Bus errors are counted, not returned.
func (o *Output) Set(level uint16) {
	duty := uint16(mathx.ScaleU32(uint32(level), uint32(o.top), Top))
	if int32(duty) == o.last {
		return
	}
	if err := o.dev.Set(o.ch, duty); err != nil {
		o.errors.Add(1)
		return
	}
	o.last = int32(duty)
}

// Errors counts failed bus writes.
func (o *Output) Errors() uint32 { return o.errors.Load() }
