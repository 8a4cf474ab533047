package interrupt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bus"
)

// stubCPU is a minimal CPU black box double for exercising the dispatch
// pipeline in isolation.
type stubCPU struct {
	ime     bool
	pc      uint16
	pushed  []uint16
}

func (c *stubCPU) IME() bool        { return c.ime }
func (c *stubCPU) ClearIME()        { c.ime = false }
func (c *stubCPU) PC() uint16       { return c.pc }
func (c *stubCPU) SetPC(v uint16)   { c.pc = v }
func (c *stubCPU) PushStack(v uint16) { c.pushed = append(c.pushed, v) }

// fakeSource is an interrupt source that fires on the Nth call to Update.
type fakeSource struct {
	flag    addr.Interrupt
	vector  uint16
	fireAt  int
	calls   int
}

func (f *fakeSource) FlagBit() addr.Interrupt { return f.flag }
func (f *fakeSource) Vector() uint16          { return f.vector }
func (f *fakeSource) Update(cycles int) bool {
	f.calls++
	return f.calls == f.fireAt
}

func TestController_DispatchesWhenIMESet(t *testing.T) {
	b := bus.New()
	cpu := &stubCPU{ime: true, pc: 0x1234}
	c := New(b, cpu)
	b.WriteByte(addr.IE, uint8(addr.TimerFlag))

	src := &fakeSource{flag: addr.TimerFlag, vector: addr.TimerVector, fireAt: 1}
	c.AddSource(src)

	c.Update(4)

	assert.Equal(t, addr.TimerVector, cpu.pc)
	assert.False(t, cpu.ime, "IME must be cleared on dispatch")
	require.Len(t, cpu.pushed, 1)
	assert.Equal(t, uint16(0x1234), cpu.pushed[0])
	assert.Equal(t, uint8(0), b.ReadByte(addr.IF)&uint8(addr.TimerFlag), "dispatched flag bit should be cleared")
}

func TestController_NoDispatchWithoutIME(t *testing.T) {
	b := bus.New()
	cpu := &stubCPU{ime: false, pc: 0x1234}
	c := New(b, cpu)
	b.WriteByte(addr.IE, uint8(addr.TimerFlag))

	src := &fakeSource{flag: addr.TimerFlag, vector: addr.TimerVector, fireAt: 1}
	c.AddSource(src)

	c.Update(4)

	assert.Equal(t, uint16(0x1234), cpu.pc, "PC must not change when IME is clear")
	assert.NotEqual(t, uint8(0), b.ReadByte(addr.IF)&uint8(addr.TimerFlag), "flag should still be latched")
}

func TestController_NoDispatchWhenDisabledInIE(t *testing.T) {
	b := bus.New()
	cpu := &stubCPU{ime: true, pc: 0x1234}
	c := New(b, cpu)

	src := &fakeSource{flag: addr.TimerFlag, vector: addr.TimerVector, fireAt: 1}
	c.AddSource(src)
	// IE left at 0: nothing enabled.

	c.Update(4)

	assert.Equal(t, uint16(0x1234), cpu.pc)
}

func TestController_LowestBitWinsOnSimultaneousPending(t *testing.T) {
	b := bus.New()
	cpu := &stubCPU{ime: true, pc: 0x1234}
	c := New(b, cpu)
	b.WriteByte(addr.IE, 0xFF)

	vblank := &fakeSource{flag: addr.VBlankFlag, vector: addr.VBlankVector, fireAt: 1}
	timer := &fakeSource{flag: addr.TimerFlag, vector: addr.TimerVector, fireAt: 1}
	c.AddSource(timer)
	c.AddSource(vblank)

	c.Update(4)

	assert.Equal(t, addr.VBlankVector, cpu.pc, "VBlank (bit 0) must win over Timer (bit 2)")
}

func TestController_DuplicateFlagBitPanics(t *testing.T) {
	b := bus.New()
	cpu := &stubCPU{}
	c := New(b, cpu)

	c.AddSource(&fakeSource{flag: addr.TimerFlag, vector: addr.TimerVector})

	assert.Panics(t, func() {
		c.AddSource(&fakeSource{flag: addr.TimerFlag, vector: addr.TimerVector})
	})
}
