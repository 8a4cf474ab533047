package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	mem [0x10000]uint8
}

func (f *fakeBus) ReadByte(addr uint16) uint8       { return f.mem[addr] }
func (f *fakeBus) WriteByte(addr uint16, val uint8) { f.mem[addr] = val }

func (f *fakeBus) load(at uint16, program ...uint8) {
	copy(f.mem[at:], program)
}

func newFixture() (*fakeBus, *CPU) {
	b := &fakeBus{}
	c := New(b, 0xFF0F, 0xFFFF, nil)
	return b, c
}

func TestCPU_LDImmediateAndAdd(t *testing.T) {
	b, c := newFixture()
	b.load(0, 0x3E, 0x05, 0xC6, 0x03) // LD A,5 ; ADD A,3

	cycles := c.Step()
	assert.Equal(t, 8, cycles)
	assert.Equal(t, uint8(5), c.A())

	c.Step()
	assert.Equal(t, uint8(8), c.A())
	assert.False(t, c.isSet(zeroFlag))
}

func TestCPU_IncDecSetsZeroAndHalfCarry(t *testing.T) {
	b, c := newFixture()
	b.load(0, 0x3E, 0xFF, 0x3C) // LD A,0xFF ; INC A

	c.Step()
	c.Step()

	assert.Equal(t, uint8(0), c.A())
	assert.True(t, c.isSet(zeroFlag))
	assert.True(t, c.isSet(halfCarryFlag))
}

func TestCPU_JRTaken(t *testing.T) {
	b, c := newFixture()
	// XOR A (zero flag set) ; JR Z,+1 ; (skipped) NOP ; target: LD A,0x42
	b.load(0, 0xAF, 0x28, 0x01, 0x00, 0x3E, 0x42)

	c.Step() // XOR A
	require.True(t, c.isSet(zeroFlag))
	cycles := c.Step() // JR Z,+1
	assert.Equal(t, 12, cycles)
	assert.Equal(t, uint16(4), c.PC())
}

func TestCPU_CallAndReturnRoundTripsStack(t *testing.T) {
	b, c := newFixture()
	c.sp = 0xFFFE
	b.load(0, 0xCD, 0x10, 0x00) // CALL 0x0010
	b.load(0x10, 0xC9)          // RET

	c.Step() // CALL
	assert.Equal(t, uint16(0x10), c.PC())

	c.Step() // RET
	assert.Equal(t, uint16(0x03), c.PC())
	assert.Equal(t, uint16(0xFFFE), c.sp)
}

func TestCPU_PushPopRoundTrips(t *testing.T) {
	b, c := newFixture()
	c.sp = 0xFFFE
	c.setBC(0xBEEF)
	b.load(0, 0xC5, 0xD1) // PUSH BC ; POP DE

	c.Step()
	c.Step()

	assert.Equal(t, uint16(0xBEEF), c.de())
}

func TestCPU_HaltWakesWhenInterruptPending(t *testing.T) {
	b, c := newFixture()
	b.load(0, 0x76) // HALT

	c.Step()
	assert.True(t, c.Halted())

	cycles := c.Step()
	assert.Equal(t, 4, cycles, "still halted: no pending interrupt")
	assert.True(t, c.Halted())

	b.WriteByte(0xFF0F, 0x01)
	b.WriteByte(0xFFFF, 0x01)
	c.Step()
	assert.False(t, c.Halted())
}

func TestCPU_EITakesEffectAfterFollowingInstruction(t *testing.T) {
	b, c := newFixture()
	b.load(0, 0xFB, 0x00, 0x00) // EI ; NOP ; NOP

	c.Step() // EI
	assert.False(t, c.IME(), "IME must not be set immediately")

	c.Step() // NOP (the instruction immediately following EI)
	assert.True(t, c.IME())
}

func TestCPU_DIClearsIMEImmediately(t *testing.T) {
	b, c := newFixture()
	b.load(0, 0xFB, 0x00, 0xF3) // EI ; NOP ; DI
	c.Step()
	c.Step()
	require.True(t, c.IME())

	c.Step()
	assert.False(t, c.IME())
}

func TestCPU_RegistersSnapshotsCurrentState(t *testing.T) {
	b, c := newFixture()
	c.setBC(0x1234)
	c.sp = 0xFFFE
	b.load(0, 0x3E, 0x42) // LD A,0x42
	c.Step()

	regs := c.Registers()
	assert.Equal(t, uint8(0x42), regs.A)
	assert.Equal(t, uint8(0x12), regs.B)
	assert.Equal(t, uint8(0x34), regs.C)
	assert.Equal(t, uint16(0xFFFE), regs.SP)
	assert.Equal(t, uint16(2), regs.PC)
}

func TestCPU_PushStackImplementsInterruptCPUContract(t *testing.T) {
	_, c := newFixture()
	c.sp = 0xFFFE
	c.SetPC(0x1234)

	c.PushStack(c.PC())

	assert.Equal(t, uint16(0xFFFC), c.sp)
	assert.Equal(t, uint16(0x1234), c.popStack())
}
