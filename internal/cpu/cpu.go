package cpu

import "log/slog"

// bus is the subset of bus.Bus the CPU needs: plain byte access. Declared
// locally to avoid importing package bus (spec.md keeps the CPU a black
// box collaborator, not a bus-aware component).
type bus interface {
	ReadByte(addr uint16) uint8
	WriteByte(addr uint16, val uint8)
}

// CPU is the DMG instruction-execution engine: registers, flags, IME, and
// a Step that fetches/decodes/executes one instruction and reports its
// T-cycle cost, matching spec.md section 9's "CPU step() as external black
// box" contract.
type CPU struct {
	a, b, c, d, e, h, l, f uint8
	sp, pc                 uint16

	bus bus

	ime         bool
	pendingIME  int // EI takes effect after the instruction following it
	halted      bool
	ifAddr      uint16
	ieAddr      uint16

	logger *slog.Logger // optional instruction trace sink
}

// New creates a CPU wired to bus. ifAddr/ieAddr are the IF/IE register
// addresses, needed only to decide whether a pending interrupt should wake
// the CPU from HALT (real hardware exits HALT whenever (IF & IE) != 0,
// independent of IME).
func New(bus bus, ifAddr, ieAddr uint16, logger *slog.Logger) *CPU {
	return &CPU{bus: bus, ifAddr: ifAddr, ieAddr: ieAddr, logger: logger}
}

// PC implements interrupt.CPU.
func (c *CPU) PC() uint16 { return c.pc }

// SetPC implements interrupt.CPU.
func (c *CPU) SetPC(v uint16) { c.pc = v }

// IME implements interrupt.CPU.
func (c *CPU) IME() bool { return c.ime }

// ClearIME implements interrupt.CPU.
func (c *CPU) ClearIME() { c.ime = false }

// PushStack implements interrupt.CPU.
func (c *CPU) PushStack(v uint16) { c.pushStack(v) }

// SP returns the stack pointer, for tracing/debugging.
func (c *CPU) SP() uint16 { return c.sp }

// A returns the accumulator, for tracing/debugging and test assertions.
func (c *CPU) A() uint8 { return c.a }

// F returns the flags register, for tracing/debugging and test assertions.
func (c *CPU) F() uint8 { return c.f }

// Halted reports whether the CPU is parked in HALT.
func (c *CPU) Halted() bool { return c.halted }

// Registers is a point-in-time snapshot of every CPU register, for the
// debugger's register dump (spec.md's original _debugger_dump_registers
// equivalent).
type Registers struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	IME                    bool
	Halted                 bool
}

// Registers returns a snapshot of the CPU's current state.
func (c *CPU) Registers() Registers {
	return Registers{
		A: c.a, F: c.f, B: c.b, C: c.c, D: c.d, E: c.e, H: c.h, L: c.l,
		SP: c.sp, PC: c.pc, IME: c.ime, Halted: c.halted,
	}
}

func (c *CPU) fetch8() uint8 {
	v := c.bus.ReadByte(c.pc)
	c.pc++
	return v
}

func (c *CPU) fetch16() uint16 {
	low := c.fetch8()
	high := c.fetch8()
	return combine(high, low)
}

func (c *CPU) interruptsPending() bool {
	return c.bus.ReadByte(c.ifAddr)&c.bus.ReadByte(c.ieAddr)&0x1F != 0
}

// Step executes exactly one instruction (or, while halted, advances a
// single no-op tick) and returns its T-cycle cost.
func (c *CPU) Step() int {
	if c.pendingIME > 0 {
		c.pendingIME--
		if c.pendingIME == 0 {
			c.ime = true
		}
	}

	if c.halted {
		if c.interruptsPending() {
			c.halted = false
		} else {
			return 4
		}
	}

	pc := c.pc
	opcode := c.fetch8()
	var cycles int
	if opcode == 0xCB {
		cycles = c.executeCB(c.fetch8())
	} else {
		cycles = c.execute(opcode)
	}

	if c.logger != nil {
		c.logger.Info("step", "pc", pc, "opcode", opcode, "cycles", cycles)
	}
	return cycles
}

func (c *CPU) jr() {
	offset := int8(c.fetch8())
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func (c *CPU) jp(addr uint16) {
	c.pc = addr
}

func (c *CPU) call(addr uint16) {
	c.pushStack(c.pc)
	c.pc = addr
}

func (c *CPU) ret() {
	c.pc = c.popStack()
}
