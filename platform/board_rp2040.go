//go:build rp2040

package platform

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
)

// ADC is a potentiometer input.
type ADC struct{ a machine.ADC }

var adcInit bool

// NewADC configures pin as an analogue input.
func NewADC(pin machine.Pin) *ADC {
	if !adcInit {
		machine.InitADC()
		adcInit = true
	}
	a := machine.ADC{Pin: pin}
	a.Configure(machine.ADCConfig{})
	return &ADC{a: a}
}

func (a *ADC) Get() uint16 { return a.a.Get() }

// Pin is a push-pull indicator output.
type Pin struct{ p machine.Pin }

func NewPin(p machine.Pin) *Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return &Pin{p: p}
}

func (p *Pin) Set(on bool) { p.p.Set(on) }

// Console is the shell's UART. Reads block until data arrives or the
// console's context ends.
type Console struct {
	ctx context.Context
	u   *uartx.UART
}

// NewConsole configures UART0 on tx/rx.
func NewConsole(ctx context.Context, baud uint32, tx, rx machine.Pin) *Console {
	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{BaudRate: baud, TX: tx, RX: rx})
	return &Console{ctx: ctx, u: u}
}

func (c *Console) Read(b []byte) (int, error) { return c.u.RecvSomeContext(c.ctx, b) }

func (c *Console) Write(b []byte) (int, error) { return c.u.Write(b) }

// I2C0 configures the first I2C bus on the board-default pins.
func I2C0(hz uint32) (drivers.I2C, error) {
	b := machine.I2C0
	err := b.Configure(machine.I2CConfig{
		Frequency: hz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	return b, err
}

// Seed draws a random seed from the ROSC-based generator, falling back to
// the clock if it is unavailable.
func Seed() int64 {
	hi, err1 := machine.GetRNG()
	lo, err2 := machine.GetRNG()
	if err1 != nil || err2 != nil {
		return time.Now().UnixNano()
	}
	return int64(hi)<<32 | int64(lo)
}
