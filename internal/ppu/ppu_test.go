package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bus"
	"github.com/0ctobyte/gb-emulator/internal/device"
)

type fakeLCD struct {
	mode    uint8
	ly      uint8
	enabled bool
}

func (f *fakeLCD) Mode() uint8   { return f.mode }
func (f *fakeLCD) LY() uint8     { return f.ly }
func (f *fakeLCD) Enabled() bool { return f.enabled }

func newFixture(t *testing.T) (*bus.Bus, *Controller, *fakeLCD, func() uint8) {
	t.Helper()
	b := bus.New()
	vram := device.NewRAM(addr.VRAMStart, addr.VRAMSize)
	oam := device.NewRAM(addr.OAMStart, addr.OAMSize)
	b.AddReadable(vram, addr.VRAMStart, addr.VRAMSize)
	b.AddWriteable(vram, addr.VRAMStart, addr.VRAMSize)
	b.AddReadable(oam, addr.OAMStart, addr.OAMSize)
	b.AddWriteable(oam, addr.OAMStart, addr.OAMSize)

	lcdc := device.NewRAM(addr.LCDC, 1)
	b.AddReadable(lcdc, addr.LCDC, 1)
	b.AddWriteable(lcdc, addr.LCDC, 1)
	lcdcFn := func() uint8 { return lcdc.ReadByte(addr.LCDC) }

	lcd := &fakeLCD{enabled: true}
	c := New(b, lcd, vram, oam, lcdcFn)
	return b, c, lcd, lcdcFn
}

func TestPPU_RendersBackgroundTileIntoFramebuffer(t *testing.T) {
	b, c, lcd, _ := newFixture(t)

	b.WriteByte(addr.LCDC, 0x91) // LCD on, BG on, unsigned tiles, map 0
	b.WriteByte(addr.BGP, 0xE4)  // identity palette: 11 10 01 00

	// Tile 0, row 0: all pixels color index 1 (low=0xFF, high=0x00).
	b.WriteByte(0x8000, 0xFF)
	b.WriteByte(0x8001, 0x00)
	// Map entry (0,0) -> tile 0 (default zero value already points there).

	lcd.mode = 3
	lcd.ly = 0

	fired := c.Update(1)

	assert.False(t, fired)
	assert.Equal(t, Shade(1), c.FrameBuffer().Pixel(0, 0))
}

func TestPPU_VBlankFiresOnceWhenLYBecomes144(t *testing.T) {
	_, c, lcd, _ := newFixture(t)

	lcd.ly = 144
	fired := c.Update(1)
	assert.True(t, fired)

	fired = c.Update(1)
	assert.False(t, fired, "must only fire once per line transition")
}

func TestPPU_FlagAndVector(t *testing.T) {
	_, c, _, _ := newFixture(t)

	assert.Equal(t, addr.VBlankFlag, c.FlagBit())
	assert.Equal(t, addr.VBlankVector, c.Vector())
}

func TestPPU_DisabledBackgroundDrawsColorZero(t *testing.T) {
	b, c, lcd, _ := newFixture(t)
	b.WriteByte(addr.LCDC, 0x80) // LCD on, BG/window off

	lcd.mode = 3
	lcd.ly = 10

	c.Update(1)

	assert.Equal(t, Shade(0), c.FrameBuffer().Pixel(5, 10))
}
