// Package joypad implements the P1 register at 0xFF00: the CPU selects
// either the button or d-pad line, reads back the selected group's state
// (active-low), and a newly pressed button requests the joypad interrupt
// (spec.md section 4 and the 0xFF00 entry in the memory map).
//
// Grounded on the teacher's jeebie/memory.Joypad (button/dpad nibble
// layout and Press/Release naming) and jeebie/input/default_keys.go (the
// button-to-bit vocabulary), adapted into a device.Device plus
// interrupt.Source that detects press edges itself instead of relying on
// an external key-event dispatcher, since this package only sees the
// renderer's polled bitmask (spec.md's Renderer.input() contract) once per
// frame rather than individual key events.
package joypad

import (
	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bit"
	"github.com/0ctobyte/gb-emulator/internal/device"
)

// Button indexes the bit layout of the input bitmask accepted by SetInput,
// matching the order a Renderer.input() implementation is expected to use.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Joypad is the P1 register. It implements device.Device (so it can be
// registered on the bus) and interrupt.Source.
type Joypad struct {
	device.Base

	buttons uint8 // bits 0-3: A,B,Select,Start; active-low (1 = released)
	dpad    uint8 // bits 0-3: Right,Left,Up,Down; active-low

	prevMask  uint8 // last bitmask passed to SetInput, for edge detection
	pending   bool
}

// New creates the joypad register and registers it on bus.
func New(bus interface {
	AddReadable(dev device.Device, start, size uint16)
	AddWriteable(dev device.Device, start, size uint16)
}) *Joypad {
	j := &Joypad{
		Base:    device.NewBase(addr.P1, 1),
		buttons: 0x0F,
		dpad:    0x0F,
	}
	bus.AddWriteable(j, addr.P1, 1)
	bus.AddReadable(j, addr.P1, 1)
	return j
}

// WriteByte stores only the select-line bits (4-5); the lower nibble is
// never CPU-writable.
func (j *Joypad) WriteByte(a uint16, val uint8) {
	j.Base.WriteByte(a, val&0x30)
}

// ReadByte returns the selected group's active-low state in the lower
// nibble. Bits 6-7 always read as 1; if neither or both lines are
// selected, the lower nibble reads as all 1s (no buttons reported), per
// the reference implementation.
func (j *Joypad) ReadByte(a uint16) uint8 {
	line := j.Base.ReadByte(addr.P1)
	result := line | 0xC0

	dpadSelected := line&0x10 == 0
	buttonsSelected := line&0x20 == 0

	switch {
	case dpadSelected && !buttonsSelected:
		result |= j.dpad
	case buttonsSelected && !dpadSelected:
		result |= j.buttons
	default:
		result |= 0x0F
	}

	return result
}

// SetInput updates the joypad's button state from a renderer-reported
// bitmask (bit set = pressed, indexed by Button). Any bit that newly
// transitions from released to pressed requests the joypad interrupt on
// the next Update call.
func (j *Joypad) SetInput(mask uint8) {
	newlyPressed := mask &^ j.prevMask
	if newlyPressed != 0 {
		j.pending = true
	}
	j.prevMask = mask

	j.dpad = activeLowNibble(mask, Right, Left, Up, Down)
	j.buttons = activeLowNibble(mask, A, B, Select, Start)
}

func activeLowNibble(mask uint8, b0, b1, b2, b3 Button) uint8 {
	var n uint8 = 0x0F
	if bit.IsSet(uint8(b0), mask) {
		n = bit.Reset(0, n)
	}
	if bit.IsSet(uint8(b1), mask) {
		n = bit.Reset(1, n)
	}
	if bit.IsSet(uint8(b2), mask) {
		n = bit.Reset(2, n)
	}
	if bit.IsSet(uint8(b3), mask) {
		n = bit.Reset(3, n)
	}
	return n
}

// Update implements interrupt.Source: it reports (and clears) whether a
// button press edge occurred since the last call.
func (j *Joypad) Update(cycles int) bool {
	fired := j.pending
	j.pending = false
	return fired
}

// FlagBit implements interrupt.Source.
func (j *Joypad) FlagBit() addr.Interrupt { return addr.JoypadFlag }

// Vector implements interrupt.Source.
func (j *Joypad) Vector() uint16 { return addr.JoypadVector }
