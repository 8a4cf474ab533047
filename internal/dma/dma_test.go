package dma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bus"
	"github.com/0ctobyte/gb-emulator/internal/device"
)

func TestDMA_CopiesSourceBlockIntoOAM(t *testing.T) {
	b := bus.New()
	wram := device.NewRAM(addr.WRAMStart, addr.WRAMSize)
	oam := device.NewRAM(addr.OAMStart, addr.OAMSize)
	b.AddReadable(wram, addr.WRAMStart, addr.WRAMSize)
	b.AddWriteable(wram, addr.WRAMStart, addr.WRAMSize)
	b.AddReadable(oam, addr.OAMStart, addr.OAMSize)
	b.AddWriteable(oam, addr.OAMStart, addr.OAMSize)

	for i := 0; i < 0xA0; i++ {
		b.WriteByte(0xC000+uint16(i), uint8(i))
	}

	d := New(b, oam)
	b.WriteByte(addr.DMA, 0xC0)

	require.True(t, d.Active())
	d.Update(640) // 160 bytes * 4 cycles/byte

	assert.False(t, d.Active())
	for i := 0; i < 0xA0; i++ {
		assert.Equal(t, uint8(i), b.ReadByte(addr.OAMStart+uint16(i)))
	}
}

func TestDMA_PacesOneByePerFourCycles(t *testing.T) {
	b := bus.New()
	wram := device.NewRAM(addr.WRAMStart, addr.WRAMSize)
	oam := device.NewRAM(addr.OAMStart, addr.OAMSize)
	b.AddReadable(wram, addr.WRAMStart, addr.WRAMSize)
	b.AddWriteable(wram, addr.WRAMStart, addr.WRAMSize)
	b.AddReadable(oam, addr.OAMStart, addr.OAMSize)
	b.AddWriteable(oam, addr.OAMStart, addr.OAMSize)
	b.WriteByte(0xC000, 0x42)

	d := New(b, oam)
	b.WriteByte(addr.DMA, 0xC0)

	d.Update(3)
	assert.Equal(t, uint8(0x00), b.ReadByte(addr.OAMStart), "fewer than 4 cycles must not copy a byte yet")

	d.Update(1)
	assert.Equal(t, uint8(0x42), b.ReadByte(addr.OAMStart))
}

func TestDMA_RetriggerRestartsFromNewSource(t *testing.T) {
	b := bus.New()
	wram := device.NewRAM(addr.WRAMStart, addr.WRAMSize)
	oam := device.NewRAM(addr.OAMStart, addr.OAMSize)
	b.AddReadable(wram, addr.WRAMStart, addr.WRAMSize)
	b.AddWriteable(wram, addr.WRAMStart, addr.WRAMSize)
	b.AddReadable(oam, addr.OAMStart, addr.OAMSize)
	b.AddWriteable(oam, addr.OAMStart, addr.OAMSize)
	b.WriteByte(0xC000, 0x11)
	b.WriteByte(0xC100, 0x22)

	d := New(b, oam)
	b.WriteByte(addr.DMA, 0xC0)
	d.Update(4) // copies byte 0 from 0xC000

	b.WriteByte(addr.DMA, 0xC1) // restart from a new source
	d.Update(4)

	assert.Equal(t, uint8(0x22), b.ReadByte(addr.OAMStart), "restarted transfer should copy from the new source")
}
