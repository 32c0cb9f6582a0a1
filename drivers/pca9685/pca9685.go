// Package pca9685 drives the NXP PCA9685 16-channel, 12-bit PWM expander.
//
// All channels share one prescaler, so the carrier frequency is a property
// of the device, not of a channel. Register auto-increment is enabled by
// Configure so a channel update is a single 5-byte write.
package pca9685

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"

	"ledtree-go/x/mathx"
)

// Address is the default I2C address (A0..A5 low).
const Address = 0x40

// Channels on one device.
const Channels = 16

// Top is the largest duty count.
const Top = 4095

const (
	regMode1    = 0x00
	regMode2    = 0x01
	regLED0     = 0x06 // ON_L; ON_H, OFF_L, OFF_H follow
	regAllLED   = 0xFA
	regPrescale = 0xFE

	mode1Restart = 0x80
	mode1AI      = 0x20
	mode1Sleep   = 0x10
	mode2OutDrv  = 0x04

	fullBit = 0x10 // bit 4 of ON_H / OFF_H

	oscHz = 25_000_000
)

var (
	ErrChannel = errors.New("pca9685: channel out of range")
	ErrFreq    = errors.New("pca9685: frequency out of range")
)

// Device is one PCA9685 on an I2C bus.
type Device struct {
	bus     drivers.I2C
	Address uint16

	freq uint64
	buf  [5]byte
}

// New returns a device at the default address. It does not touch the bus.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address}
}

// Prescale returns the prescaler value for freqHz, clamped to the chip's
// [3,255] range.
func Prescale(freqHz uint64) uint8 {
	if freqHz == 0 {
		return 255
	}
	p := mathx.RoundDiv(uint64(oscHz), 4096*freqHz)
	if p > 0 {
		p--
	}
	return uint8(mathx.Clamp(p, 3, 255))
}

// Freq is the carrier the device was configured for, 0 before Configure.
func (d *Device) Freq() uint64 { return d.freq }

// Configure sets the carrier frequency and wakes the oscillator with
// auto-increment and totem-pole outputs. All channels are switched off.
func (d *Device) Configure(freqHz uint64) error {
	if freqHz < 24 || freqHz > 1526 {
		return ErrFreq
	}
	old, err := d.readReg(regMode1)
	if err != nil {
		return err
	}
	// The prescaler is writable only while asleep.
	if err := d.writeReg(regMode1, (old&^mode1Restart)|mode1Sleep); err != nil {
		return err
	}
	if err := d.writeReg(regPrescale, Prescale(freqHz)); err != nil {
		return err
	}
	if err := d.writeReg(regMode2, mode2OutDrv); err != nil {
		return err
	}
	wake := (old &^ (mode1Sleep | mode1Restart)) | mode1AI
	if err := d.writeReg(regMode1, wake); err != nil {
		return err
	}
	time.Sleep(500 * time.Microsecond) // oscillator start-up
	if err := d.writeReg(regMode1, wake|mode1Restart); err != nil {
		return err
	}
	d.freq = freqHz
	return d.SetAll(0)
}

// Set writes a duty count in [0,Top] to channel ch. 0 and Top use the full
// off / full on bits so the output has no glitch pulse.
func (d *Device) Set(ch int, value uint16) error {
	if ch < 0 || ch >= Channels {
		return ErrChannel
	}
	return d.writeDuty(regLED0+4*uint8(ch), value)
}

// SetAll writes the same duty count to every channel.
func (d *Device) SetAll(value uint16) error {
	return d.writeDuty(regAllLED, value)
}

func (d *Device) writeDuty(reg uint8, value uint16) error {
	b := d.buf[:]
	b[0] = reg
	switch {
	case value == 0:
		b[1], b[2], b[3], b[4] = 0, 0, 0, fullBit
	case value >= Top:
		b[1], b[2], b[3], b[4] = 0, fullBit, 0, 0
	default:
		b[1], b[2], b[3], b[4] = 0, 0, byte(value), byte(value>>8)
	}
	return d.bus.Tx(d.Address, b, nil)
}

func (d *Device) readReg(reg uint8) (uint8, error) {
	d.buf[0] = reg
	if err := d.bus.Tx(d.Address, d.buf[:1], d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}

func (d *Device) writeReg(reg, v uint8) error {
	d.buf[0], d.buf[1] = reg, v
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}
