//go:build rp2040 && !pca9685

package main

import (
	"machine"

	"ledtree-go/platform"
	"ledtree-go/services/leds"
)

var ledPins = []machine.Pin{machine.GP16, machine.GP17, machine.GP18, machine.GP19, machine.GP20}

// newOutputs binds one on-chip PWM channel per LED.
func newOutputs() ([]leds.Output, error) {
	outs := make([]leds.Output, len(ledPins))
	for i, pin := range ledPins {
		p, err := platform.NewPWM(pin)
		if err != nil {
			return nil, err
		}
		outs[i] = p
	}
	return outs, nil
}
