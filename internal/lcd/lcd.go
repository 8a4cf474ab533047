// Package lcd implements the LCD controller's four-mode scanline state
// machine described in spec.md section 4.5: the LCDC/STAT/LY/LYC register
// quartet, OAM/VRAM bus gating during modes 2/3, and STAT interrupt
// generation.
//
// Grounded directly on the original implementation's gb_lcd.cc (the C++
// source this spec was distilled from): the mode-boundary constants (80,
// 204, 456) and the LCD-off branch setting mode=0 rather than the commonly
// cited mode=1 are both carried over verbatim, per spec.md section 9's
// explicit note to match the reference behavior rather than hardware docs.
package lcd

import (
	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bit"
	"github.com/0ctobyte/gb-emulator/internal/device"
)

const (
	oamScanCycles   = 80  // mode 2 ends here
	vramXferCycles  = 204 // mode 3 ends here (spec.md's intentional simplification)
	scanlineCycles  = 456
	lastScanline    = 153
	vblankStartLine = 144
)

// Mode is one of the LCD controller's four scanline states, stored in
// STAT bits [0..1].
type Mode uint8

const (
	ModeHBlank   Mode = 0
	ModeVBlank   Mode = 1
	ModeOAMScan  Mode = 2
	ModeVRAMXfer Mode = 3
)

// writeableBus is the subset of bus.Bus the LCD controller needs for the
// OAM/VRAM parking protocol (spec.md section 4.2's get_readable plus
// add/remove readable/writeable).
type writeableBus interface {
	AddReadable(dev device.Device, start, size uint16)
	AddWriteable(dev device.Device, start, size uint16)
	RemoveReadable(start, size uint16)
	RemoveWriteable(start, size uint16)
	GetReadable(addr uint16) device.Device
}

// statRegister is the STAT register at 0xFF41; bit 7 always reads back as 1
// (spec.md section 3).
type statRegister struct {
	device.Base
}

func newStatRegister() *statRegister {
	return &statRegister{Base: device.NewBase(addr.STAT, 1)}
}

func (s *statRegister) WriteByte(a uint16, val uint8) {
	s.Base.WriteByte(a, val|0x80)
}

// lyRegister is the LY/LYC pair at 0xFF44-0xFF45. A CPU write to LY always
// resets it to 0; the LCD controller itself updates LY through setLY, which
// bypasses that reset (spec.md section 4.1: "this routine gives a backdoor
// to allow the LCD controller itself to update LY").
type lyRegister struct {
	device.Base
}

func newLYRegister() *lyRegister {
	return &lyRegister{Base: device.NewBase(addr.LY, 2)}
}

func (l *lyRegister) WriteByte(a uint16, val uint8) {
	if a == addr.LY {
		val = 0
	}
	l.Base.WriteByte(a, val)
}

func (l *lyRegister) setLY(val uint8) {
	l.Base.WriteByte(addr.LY, val)
}

// lcdcRegister is the LCDC register at 0xFF40, owned by the LCD
// controller. A 0->1 transition of bit 7 resets LY to 0 through the ly
// register's backdoor.
type lcdcRegister struct {
	device.Base
	ly *lyRegister
}

func (l *lcdcRegister) WriteByte(a uint16, val uint8) {
	wasOn := l.Base.ReadByte(addr.LCDC)&0x80 != 0
	nowOn := val&0x80 != 0
	if !wasOn && nowOn {
		l.ly.setLY(0)
	}
	l.Base.WriteByte(a, val)
}

// Controller is the LCD controller: scanline counter, mode state machine,
// and STAT-interrupt generation. It owns the LCDC, STAT and LY/LYC register
// devices (it is not itself a device.Device) and is polled like an
// interrupt.Source (though it is
// wired into the driver loop directly rather than through
// interrupt.Controller, since it must run exactly once per CPU step
// regardless of whether any source list contains it - see
// internal/emulator).
type Controller struct {
	lcdc *lcdcRegister
	stat *statRegister
	ly   *lyRegister

	bus writeableBus

	scanlineCounter int
	parkedOAM       device.Device
	parkedVRAM      device.Device
}

// New creates the LCD controller and registers LCDC, STAT, and LY/LYC on
// bus. The caller is responsible for registering the OAM and VRAM devices
// themselves before the controller's first Update call.
func New(bus writeableBus) *Controller {
	ly := newLYRegister()
	lcdc := &lcdcRegister{Base: device.NewBase(addr.LCDC, 1), ly: ly}
	stat := newStatRegister()

	c := &Controller{lcdc: lcdc, stat: stat, ly: ly, bus: bus}
	stat.Base.WriteByte(addr.STAT, 0x80) // bit 7 always reads as 1, even before any CPU write

	bus.AddReadable(lcdc, addr.LCDC, 1)
	bus.AddWriteable(lcdc, addr.LCDC, 1)
	bus.AddReadable(stat, addr.STAT, 1)
	bus.AddWriteable(stat, addr.STAT, 1)
	bus.AddReadable(ly, addr.LY, 2)
	bus.AddWriteable(ly, addr.LY, 2)

	return c
}

// LCDC returns the raw LCDC device for registration bookkeeping in the
// driver (spec.md's memory map table lists LCDC/STAT/LY/LYC as a single
// "LCD/PPU registers" block, but each is its own device here).
func (c *Controller) LCDC() device.Device { return c.lcdc }

// Enabled reports whether LCDC bit 7 (LCD power) is set.
func (c *Controller) Enabled() bool {
	return c.lcdc.ReadByte(addr.LCDC)&0x80 != 0
}

// Mode returns the LCD's current mode, decoded from STAT bits [0..1].
func (c *Controller) Mode() Mode {
	return Mode(c.stat.ReadByte(addr.STAT) & 0x3)
}

// LY returns the current scanline.
func (c *Controller) LY() uint8 {
	return c.ly.ReadByte(addr.LY)
}

// Update advances the LCD state machine by cycles T-cycles, per spec.md
// section 4.5. It returns true iff a STAT-sourced interrupt was requested
// this call (V-blank itself is raised by the PPU, not here).
func (c *Controller) Update(cycles int) bool {
	if !c.Enabled() {
		c.scanlineCounter = 0
		c.ly.setLY(0)
		stat := c.stat.ReadByte(addr.STAT)
		c.stat.WriteByte(addr.STAT, stat&^uint8(0x3)) // mode = 0, per the reference implementation
		c.unparkOAM()
		c.unparkVRAM()
		return false
	}

	interrupt := false
	ly := c.ly.ReadByte(addr.LY)
	lyc := c.ly.ReadByte(addr.LYC)
	stat := c.stat.ReadByte(addr.STAT)
	prevMode := Mode(stat & 0x3)

	c.scanlineCounter += cycles
	for c.scanlineCounter >= scanlineCycles {
		c.scanlineCounter -= scanlineCycles
		ly++
		if ly > lastScanline {
			ly = 0
		}
		c.ly.setLY(ly)

		if ly == lyc {
			stat = bit.Set(2, stat)
			if stat&0x40 != 0 {
				interrupt = true
			}
		} else {
			stat = bit.Reset(2, stat)
		}
	}

	var mode Mode
	switch {
	case ly >= vblankStartLine:
		mode = ModeVBlank
		if prevMode != ModeVBlank && stat&0x10 != 0 {
			interrupt = true
		}
	case c.scanlineCounter < oamScanCycles:
		mode = ModeOAMScan
		c.parkOAM()
		if prevMode != ModeOAMScan && stat&0x20 != 0 {
			interrupt = true
		}
	case c.scanlineCounter < vramXferCycles:
		mode = ModeVRAMXfer
		c.parkVRAM()
	default:
		mode = ModeHBlank
		c.unparkOAM()
		c.unparkVRAM()
		if prevMode != ModeHBlank && stat&0x8 != 0 {
			interrupt = true
		}
	}

	stat = (stat &^ 0x3) | uint8(mode)
	c.stat.WriteByte(addr.STAT, stat)

	return interrupt
}

func (c *Controller) parkOAM() {
	if c.parkedOAM != nil {
		return
	}
	c.parkedOAM = c.bus.GetReadable(addr.OAMStart)
	c.bus.RemoveReadable(addr.OAMStart, addr.OAMSize)
	c.bus.RemoveWriteable(addr.OAMStart, addr.OAMSize)
}

func (c *Controller) unparkOAM() {
	if c.parkedOAM == nil {
		return
	}
	start, size := c.parkedOAM.AddressRange()
	c.bus.AddReadable(c.parkedOAM, start, size)
	c.bus.AddWriteable(c.parkedOAM, start, size)
	c.parkedOAM = nil
}

func (c *Controller) parkVRAM() {
	if c.parkedVRAM != nil {
		return
	}
	c.parkedVRAM = c.bus.GetReadable(addr.VRAMStart)
	c.bus.RemoveReadable(addr.VRAMStart, addr.VRAMSize)
	c.bus.RemoveWriteable(addr.VRAMStart, addr.VRAMSize)
}

func (c *Controller) unparkVRAM() {
	if c.parkedVRAM == nil {
		return
	}
	start, size := c.parkedVRAM.AddressRange()
	c.bus.AddReadable(c.parkedVRAM, start, size)
	c.bus.AddWriteable(c.parkedVRAM, start, size)
	c.parkedVRAM = nil
}
