//go:build !rp2040

package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"ledtree-go/errcode"
)

// FakeOutput stands in for a PWM channel on the host. It keeps the last
// level written so previews and tests can read it back.
type FakeOutput struct {
	freq    atomic.Uint64
	top     atomic.Uint32
	level   atomic.Uint32
	writes  atomic.Uint64
	FailErr error // returned by Configure when set
}

func (o *FakeOutput) Configure(freqHz uint64, top uint16) error {
	if o.FailErr != nil {
		return o.FailErr
	}
	if top == 0 {
		return errcode.InvalidParams
	}
	o.freq.Store(freqHz)
	o.top.Store(uint32(top))
	return nil
}

func (o *FakeOutput) Set(level uint16) {
	o.level.Store(uint32(level))
	o.writes.Add(1)
}

func (o *FakeOutput) Level() uint16  { return uint16(o.level.Load()) }
func (o *FakeOutput) Top() uint16    { return uint16(o.top.Load()) }
func (o *FakeOutput) FreqHz() uint64 { return o.freq.Load() }
func (o *FakeOutput) Writes() uint64 { return o.writes.Load() }

// HostI2C implements tinygo drivers.I2C as a register file per address:
// a write stores bytes from the first register on, auto-incrementing; a
// write-then-read returns bytes from the addressed register.
type HostI2C struct {
	mu   sync.Mutex
	regs map[uint16]*[256]byte
	txs  int
}

func NewHostI2C() *HostI2C { return &HostI2C{regs: make(map[uint16]*[256]byte)} }

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.txs++
	if len(w) == 0 {
		return nil
	}
	file := h.regs[addr]
	if file == nil {
		file = new([256]byte)
		h.regs[addr] = file
	}
	reg := w[0]
	for i, b := range w[1:] {
		file[reg+uint8(i)] = b
	}
	for i := range r {
		r[i] = file[reg+uint8(i)]
	}
	return nil
}

// Reg reads back one register of the device at addr.
func (h *HostI2C) Reg(addr uint16, reg uint8) uint8 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f := h.regs[addr]; f != nil {
		return f[reg]
	}
	return 0
}

// Txs counts transactions.
func (h *HostI2C) Txs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.txs
}

// FakeADC returns whatever was last stored.
type FakeADC struct{ v atomic.Uint32 }

func (a *FakeADC) Store(v uint16) { a.v.Store(uint32(v)) }
func (a *FakeADC) Get() uint16    { return uint16(a.v.Load()) }

// FakePin records the indicator state and how often it changed.
type FakePin struct {
	on      atomic.Bool
	changes atomic.Uint32
}

func (p *FakePin) Set(on bool) {
	if p.on.Swap(on) != on {
		p.changes.Add(1)
	}
}

func (p *FakePin) On() bool        { return p.on.Load() }
func (p *FakePin) Changes() uint32 { return p.changes.Load() }

func Seed() int64 { return time.Now().UnixNano() }
