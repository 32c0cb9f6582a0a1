//go:build !rp2040

package platform

import (
	"errors"
	"testing"

	"ledtree-go/drivers/pca9685"
	"ledtree-go/services/leds"
)

var (
	_ leds.Output = (*FakeOutput)(nil)
	_ leds.Output = (*pca9685.Output)(nil)
)

func TestHostI2CRegisterFile(t *testing.T) {
	bus := NewHostI2C()
	if err := bus.Tx(0x40, []byte{0x06, 1, 2, 3, 4}, nil); err != nil {
		t.Fatal(err)
	}
	r := make([]byte, 2)
	if err := bus.Tx(0x40, []byte{0x07}, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 2 || r[1] != 3 {
		t.Fatalf("read back %v", r)
	}
	if bus.Reg(0x41, 0x06) != 0 {
		t.Fatal("devices share registers")
	}
	if bus.Txs() != 2 {
		t.Fatalf("txs = %d", bus.Txs())
	}
}

// The expander driver runs against the host bus and leaves the channel
// registers where the datasheet puts them.
func TestPCA9685OnHostBus(t *testing.T) {
	bus := NewHostI2C()
	o := pca9685.New(bus).Output(2)
	if err := o.Configure(630, 4095); err != nil {
		t.Fatal(err)
	}
	if got := bus.Reg(pca9685.Address, 0xFE); got != pca9685.Prescale(630) {
		t.Fatalf("prescale = %d", got)
	}
	o.Set(0x234)
	base := uint8(0x06 + 4*2)
	if lo, hi := bus.Reg(pca9685.Address, base+2), bus.Reg(pca9685.Address, base+3); lo != 0x34 || hi != 0x02 {
		t.Fatalf("OFF = %#x %#x", lo, hi)
	}
}

func TestFakeOutput(t *testing.T) {
	o := &FakeOutput{}
	if err := o.Configure(630, 4095); err != nil {
		t.Fatal(err)
	}
	o.Set(100)
	if o.Level() != 100 || o.Top() != 4095 || o.FreqHz() != 630 || o.Writes() != 1 {
		t.Fatal("fake output did not record")
	}
	o.FailErr = errors.New("slice busy")
	if o.Configure(630, 4095) == nil {
		t.Fatal("FailErr ignored")
	}
}

func TestFakePinCountsChanges(t *testing.T) {
	p := &FakePin{}
	p.Set(false)
	p.Set(true)
	p.Set(true)
	p.Set(false)
	if p.Changes() != 2 || p.On() {
		t.Fatalf("changes = %d on = %v", p.Changes(), p.On())
	}
}
