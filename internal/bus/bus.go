// Package bus implements the memory map described in spec.md section 4.2:
// a pair of 16-bit-address -> device.Device mappings, one for reads and one
// for writes, routed through flat 64 KiB arrays for O(1) dispatch (the
// array size is trivial at this address-space scale, same tradeoff the
// teacher repo (valerio-go-jeebie) makes with its regionMap).
//
// Keeping separate read and write tables - rather than one set of devices
// with an access-control flag - is what lets the LCD controller park
// OAM/VRAM out of CPU reach during modes 2/3 by simply removing the
// binding, and reinstate it in mode 0 (spec.md section 4.5).
package bus

import "github.com/0ctobyte/gb-emulator/internal/device"

const addressSpaceSize = 1 << 16

// Bus is the DMG's unified 16-bit memory map.
type Bus struct {
	readable  [addressSpaceSize]device.Device
	writeable [addressSpaceSize]device.Device
}

// New creates an empty memory map. No device is bound until Add* is called.
func New() *Bus {
	return &Bus{}
}

// AddReadable installs dev as the readable device for every address in
// [start, start+size). A later call for an overlapping range replaces the
// earlier binding on the overlap (spec.md: "registering overlapping ranges
// replaces the previous binding").
func (b *Bus) AddReadable(dev device.Device, start, size uint16) {
	end := uint32(start) + uint32(size)
	for a := uint32(start); a < end; a++ {
		b.readable[uint16(a)] = dev
	}
}

// AddWriteable installs dev as the writeable device for [start, start+size).
func (b *Bus) AddWriteable(dev device.Device, start, size uint16) {
	end := uint32(start) + uint32(size)
	for a := uint32(start); a < end; a++ {
		b.writeable[uint16(a)] = dev
	}
}

// RemoveReadable unbinds the readable device for [start, start+size).
func (b *Bus) RemoveReadable(start, size uint16) {
	end := uint32(start) + uint32(size)
	for a := uint32(start); a < end; a++ {
		b.readable[uint16(a)] = nil
	}
}

// RemoveWriteable unbinds the writeable device for [start, start+size).
func (b *Bus) RemoveWriteable(start, size uint16) {
	end := uint32(start) + uint32(size)
	for a := uint32(start); a < end; a++ {
		b.writeable[uint16(a)] = nil
	}
}

// GetReadable returns the device currently bound as readable at addr, or
// nil if none is bound. Used by the LCD controller to save the OAM/VRAM
// device reference before parking it (spec.md section 4.2).
func (b *Bus) GetReadable(addr uint16) device.Device {
	return b.readable[addr]
}

// ReadByte returns the byte at addr, or 0xFF (open bus) if no readable
// device is bound there (spec.md section 4.2 and 7).
func (b *Bus) ReadByte(addr uint16) uint8 {
	dev := b.readable[addr]
	if dev == nil {
		return 0xFF
	}
	return dev.ReadByte(addr)
}

// ReadShort returns read_byte(addr) | (read_byte(addr+1) << 8). The two
// bytes may route to different devices.
func (b *Bus) ReadShort(addr uint16) uint16 {
	lo := b.ReadByte(addr)
	hi := b.ReadByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteByte writes val to addr, or does nothing if no writeable device is
// bound there.
func (b *Bus) WriteByte(addr uint16, val uint8) {
	dev := b.writeable[addr]
	if dev == nil {
		return
	}
	dev.WriteByte(addr, val)
}

// WriteShort writes val as two bytes, little-endian, at addr and addr+1.
func (b *Bus) WriteShort(addr uint16, val uint16) {
	b.WriteByte(addr, uint8(val&0xFF))
	b.WriteByte(addr+1, uint8(val>>8))
}
