package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bus"
)

func TestTimer_DIVIncrementsEvery256Cycles(t *testing.T) {
	b := bus.New()
	tm := New(b)

	tm.Update(255)
	assert.Equal(t, uint8(0), b.ReadByte(addr.DIV))

	tm.Update(1)
	assert.Equal(t, uint8(1), b.ReadByte(addr.DIV))
}

func TestTimer_WritingDIVResetsIt(t *testing.T) {
	b := bus.New()
	tm := New(b)
	tm.Update(512)
	require.Equal(t, uint8(2), b.ReadByte(addr.DIV))

	b.WriteByte(addr.DIV, 0x99)

	assert.Equal(t, uint8(0), b.ReadByte(addr.DIV))
}

func TestTimer_DisabledTIMADoesNotTick(t *testing.T) {
	b := bus.New()
	tm := New(b)
	b.WriteByte(addr.TAC, 0x01) // clock select /16, enable bit clear
	b.WriteByte(addr.TIMA, 0x00)

	tm.Update(1000)

	assert.Equal(t, uint8(0), b.ReadByte(addr.TIMA))
}

func TestTimer_OverflowReloadsFromTMAAndRequestsInterrupt(t *testing.T) {
	b := bus.New()
	tm := New(b)
	b.WriteByte(addr.TAC, 0x05) // enabled, /16
	b.WriteByte(addr.TIMA, 0xFE)
	b.WriteByte(addr.TMA, 0xA0)

	fired := tm.Update(32)

	assert.True(t, fired)
	assert.Equal(t, uint8(0xA0), b.ReadByte(addr.TIMA))
}

func TestTimer_NoOverflowReturnsFalse(t *testing.T) {
	b := bus.New()
	tm := New(b)
	b.WriteByte(addr.TAC, 0x05)
	b.WriteByte(addr.TIMA, 0x00)

	fired := tm.Update(16)

	assert.False(t, fired)
	assert.Equal(t, uint8(1), b.ReadByte(addr.TIMA))
}

func TestTimer_FlagAndVector(t *testing.T) {
	b := bus.New()
	tm := New(b)

	assert.Equal(t, addr.TimerFlag, tm.FlagBit())
	assert.Equal(t, addr.TimerVector, tm.Vector())
}
