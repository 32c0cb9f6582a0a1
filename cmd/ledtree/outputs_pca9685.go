//go:build rp2040 && pca9685

package main

import (
	"machine"

	"ledtree-go/drivers/pca9685"
	"ledtree-go/errcode"
	"ledtree-go/platform"
	"ledtree-go/services/leds"
)

const expanderChannels = 5

// newOutputs drives the LEDs from a PCA9685 on I2C0.
func newOutputs() ([]leds.Output, error) {
	bus, err := platform.I2C0(400 * machine.KHz)
	if err != nil {
		return nil, errcode.Wrap(errcode.OutputInit, "i2c0", err)
	}
	dev := pca9685.New(bus)
	outs := make([]leds.Output, expanderChannels)
	for i := range outs {
		outs[i] = dev.Output(i)
	}
	return outs, nil
}
