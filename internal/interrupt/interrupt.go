// Package interrupt implements the interrupt request/enable/flag/dispatch
// pipeline described in spec.md sections 3 and 4.3: IF/IE as ordinary
// memory-mapped registers, a set of polled Source capabilities, and a
// Controller that is the single join point where the CPU sees a unified
// view of every peripheral's pending interrupt.
package interrupt

import (
	"fmt"

	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bit"
	"github.com/0ctobyte/gb-emulator/internal/device"
)

// Source is an interrupt source capability (spec.md section 3): it carries
// a flag bit and a dispatch vector, and is polled once per cycle-step to
// decide whether it wants its flag bit set in IF.
type Source interface {
	FlagBit() addr.Interrupt
	Vector() uint16
	Update(cycles int) bool
}

// CPU is the subset of the CPU black box the controller needs to dispatch
// an interrupt: observe/clear IME, and push the current PC before jumping
// to the interrupt vector (spec.md section 4.3 and section 9's "CPU step()
// as external black box").
type CPU interface {
	IME() bool
	ClearIME()
	PC() uint16
	SetPC(uint16)
	PushStack(uint16)
}

// flagsRegister is the IF register at 0xFF0F; it is an ordinary
// memory-mapped byte with no write side effects of its own.
type flagsRegister struct {
	device.Base
}

func newFlagsRegister() *flagsRegister {
	return &flagsRegister{Base: device.NewBase(addr.IF, 1)}
}

// enableRegister is the IE register at 0xFFFF.
type enableRegister struct {
	device.Base
}

func newEnableRegister() *enableRegister {
	return &enableRegister{Base: device.NewBase(addr.IE, 1)}
}

// Controller owns the IF/IE registers and the list of registered interrupt
// sources, and drives the request/enable/dispatch pipeline every step.
type Controller struct {
	flags  *flagsRegister
	enable *enableRegister
	cpu    CPU
	used   addr.Interrupt
	sources []Source
}

// New creates an interrupt controller and registers its IF/IE registers
// readable+writeable on bus.
func New(bus interface {
	AddReadable(dev device.Device, start, size uint16)
	AddWriteable(dev device.Device, start, size uint16)
}, cpu CPU) *Controller {
	c := &Controller{
		flags:  newFlagsRegister(),
		enable: newEnableRegister(),
		cpu:    cpu,
	}

	bus.AddReadable(c.flags, addr.IF, 1)
	bus.AddWriteable(c.flags, addr.IF, 1)
	bus.AddReadable(c.enable, addr.IE, 1)
	bus.AddWriteable(c.enable, addr.IE, 1)

	return c
}

// AddSource registers an interrupt source. Duplicate flag bits across
// sources is a misconfiguration and is fatal at registration time (spec.md
// section 7).
func (c *Controller) AddSource(s Source) {
	if c.used&s.FlagBit() != 0 {
		panic(fmt.Sprintf("interrupt: duplicate flag bit 0x%02X registered twice", s.FlagBit()))
	}
	c.used |= s.FlagBit()
	c.sources = append(c.sources, s)
}

// RequestFlag sets the given flag bit directly in IF, for collaborators
// (the LCD controller's STAT interrupt) that are interrupt sources in
// spirit but not registered as Source values polled every cycle.
func (c *Controller) RequestFlag(flag addr.Interrupt) {
	c.flags.WriteByte(addr.IF, c.flags.ReadByte(addr.IF)|uint8(flag))
}

// Update polls every registered source, latches requested flags into IF,
// and if an enabled interrupt is pending and the CPU will accept it,
// dispatches the lowest-numbered one: clears its IF bit, clears IME, pushes
// PC, and jumps to its vector (spec.md section 4.3). Polling order across
// sources within one call is unspecified; sources must be independent.
func (c *Controller) Update(cycles int) {
	for _, s := range c.sources {
		if s.Update(cycles) {
			c.RequestFlag(s.FlagBit())
		}
	}

	ifReg := c.flags.ReadByte(addr.IF)
	ieReg := c.enable.ReadByte(addr.IE)
	pending := ifReg & ieReg & 0x1F

	if pending == 0 || !c.cpu.IME() {
		return
	}

	bitIdx, ok := bit.LowestSet(pending)
	if !ok {
		return
	}

	vector := vectorForBit(bitIdx)
	c.flags.WriteByte(addr.IF, bit.Reset(bitIdx, ifReg))
	c.cpu.ClearIME()
	c.cpu.PushStack(c.cpu.PC())
	c.cpu.SetPC(vector)
}

func vectorForBit(bitIdx uint8) uint16 {
	switch addr.Interrupt(1 << bitIdx) {
	case addr.VBlankFlag:
		return addr.VBlankVector
	case addr.LCDStatFlag:
		return addr.LCDStatVector
	case addr.TimerFlag:
		return addr.TimerVector
	case addr.SerialFlag:
		return addr.SerialVector
	case addr.JoypadFlag:
		return addr.JoypadVector
	default:
		panic(fmt.Sprintf("interrupt: no vector for flag bit index %d", bitIdx))
	}
}
