// Package timer implements the DIV/TIMA/TMA/TAC timer described in spec.md
// section 4.4: DIV free-runs at a fixed rate, TIMA increments at a
// TAC-selected rate while enabled, and a TIMA overflow reloads from TMA and
// requests the timer interrupt.
//
// Grounded on the teacher repo's jeebie/memory/timer.go, but using the
// simpler period-accumulator algorithm spec.md prescribes rather than the
// teacher's falling-edge-of-a-system-counter-bit algorithm: both are
// accurate simulations of the real hardware divider, but spec.md's testable
// property 5 (TAC=0x05, TIMA=0xFE, update(32) ticks twice and overflows
// once) is defined in
// terms of period crossings, so that is what this implements.
package timer

import (
	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/device"
)

// divPeriod is the number of T-cycles between DIV increments: DIV runs at
// 16384 Hz against a ~4.194304 MHz T-cycle clock, i.e. every 256 T-cycles.
const divPeriod = 256

// tacPeriods maps TAC's clock-select bits [0..1] to the T-cycle period of
// one TIMA tick.
var tacPeriods = [4]int{1024, 16, 64, 256}

// Timer is a memory-mapped device covering DIV/TIMA/TMA/TAC (0xFF04-0xFF07)
// and an interrupt.Source that requests the timer interrupt on TIMA
// overflow.
type Timer struct {
	device.Base

	divCounter   int
	timaCounter  int
}

// New creates a timer device and registers it readable+writeable at
// 0xFF04-0xFF07.
func New(bus interface {
	AddReadable(dev device.Device, start, size uint16)
	AddWriteable(dev device.Device, start, size uint16)
}) *Timer {
	t := &Timer{Base: device.NewBase(addr.DIV, 4)}
	bus.AddReadable(t, addr.DIV, 4)
	bus.AddWriteable(t, addr.DIV, 4)
	return t
}

// WriteByte applies register-specific side effects: a write to DIV resets
// it (and its internal accumulator) to 0 regardless of the written value;
// TIMA/TMA/TAC are plain writes.
func (t *Timer) WriteByte(a uint16, val uint8) {
	if a == addr.DIV {
		t.divCounter = 0
		t.Base.WriteByte(addr.DIV, 0)
		return
	}
	t.Base.WriteByte(a, val)
}

func (t *Timer) tac() uint8  { return t.ReadByte(addr.TAC) }
func (t *Timer) enabled() bool { return t.tac()&0x04 != 0 }
func (t *Timer) period() int   { return tacPeriods[t.tac()&0x03] }

// Update advances the timer by cycles T-cycles. It returns true exactly
// when TIMA overflowed 0xFF->0x00 this call, requesting the timer
// interrupt (spec.md section 4.4).
func (t *Timer) Update(cycles int) bool {
	t.divCounter += cycles
	for t.divCounter >= divPeriod {
		t.divCounter -= divPeriod
		t.Base.WriteByte(addr.DIV, t.ReadByte(addr.DIV)+1)
	}

	if !t.enabled() {
		return false
	}

	overflowed := false
	period := t.period()
	t.timaCounter += cycles
	for t.timaCounter >= period {
		t.timaCounter -= period
		tima := t.ReadByte(addr.TIMA)
		if tima == 0xFF {
			t.Base.WriteByte(addr.TIMA, t.ReadByte(addr.TMA))
			overflowed = true
		} else {
			t.Base.WriteByte(addr.TIMA, tima+1)
		}
	}

	return overflowed
}

// FlagBit identifies this source as the timer interrupt.
func (t *Timer) FlagBit() addr.Interrupt { return addr.TimerFlag }

// Vector is the timer interrupt's dispatch address.
func (t *Timer) Vector() uint16 { return addr.TimerVector }
