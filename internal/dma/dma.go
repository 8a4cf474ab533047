// Package dma implements the OAM DMA transfer described in spec.md section
// 4.7: a write to 0xFF46 with source-high-byte X copies 160 bytes from
// 0xXX00-0xXX9F into OAM, paced at one byte per 4 T-cycles of Update.
package dma

import (
	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/device"
)

const (
	transferSize       = 0xA0 // 160 bytes
	cyclesPerByte      = 4
)

// reader is the subset of bus.Bus the DMA engine needs to read the source
// region; OAM itself is written directly, bypassing bus write gating
// (spec.md: "DMA... writes OAM directly").
type reader interface {
	ReadByte(addr uint16) uint8
}

// trigger is the memory-mapped DMA trigger register at 0xFF46. Reads
// return the last byte written (the source high byte); writes start (or
// restart) a transfer.
type trigger struct {
	device.Base
	onWrite func(sourceHigh uint8)
}

func (t *trigger) WriteByte(a uint16, val uint8) {
	t.Base.WriteByte(a, val)
	t.onWrite(val)
}

// DMA paces an active OAM transfer one byte per cyclesPerByte T-cycles. A
// new trigger write during an active transfer restarts it from the new
// source (spec.md section 4.7).
type DMA struct {
	trig *trigger
	bus  reader
	oam  *device.RAM

	active     bool
	sourceBase uint16
	bytesDone  int
	cycleDebt  int
}

// New creates the DMA engine. oam must be the actual OAM device instance so
// transfers can write it directly, bypassing LCD bus gating.
func New(bus interface {
	AddReadable(dev device.Device, start, size uint16)
	AddWriteable(dev device.Device, start, size uint16)
	ReadByte(addr uint16) uint8
}, oam *device.RAM) *DMA {
	d := &DMA{bus: bus, oam: oam}
	d.trig = &trigger{Base: device.NewBase(addr.DMA, 1), onWrite: d.start}

	bus.AddReadable(d.trig, addr.DMA, 1)
	bus.AddWriteable(d.trig, addr.DMA, 1)

	return d
}

func (d *DMA) start(sourceHigh uint8) {
	d.sourceBase = uint16(sourceHigh) << 8
	d.bytesDone = 0
	d.cycleDebt = 0
	d.active = true
}

// Update advances an in-progress transfer by cycles T-cycles, copying one
// byte per 4 T-cycles consumed.
func (d *DMA) Update(cycles int) {
	if !d.active {
		return
	}

	d.cycleDebt += cycles
	for d.cycleDebt >= cyclesPerByte && d.bytesDone < transferSize {
		d.cycleDebt -= cyclesPerByte
		val := d.bus.ReadByte(d.sourceBase + uint16(d.bytesDone))
		d.oam.WriteByte(addr.OAMStart+uint16(d.bytesDone), val)
		d.bytesDone++
	}

	if d.bytesDone >= transferSize {
		d.active = false
	}
}

// Active reports whether a transfer is currently in progress.
func (d *DMA) Active() bool {
	return d.active
}
