// Package device implements the memory-mapped device capability described
// in spec.md section 4.1: a narrow interface over a contiguous byte buffer,
// with ROM/RAM/HighRAM variants and a Base embeddable by register devices
// that need custom write side effects.
//
// The original C++ implementation (0ctobyte/gb_emulator) expressed this as
// a base class with virtual read_byte/write_byte; Go has no virtual
// dispatch, so every variant embeds Base and overrides WriteByte by simply
// not delegating to it, per spec.md section 9's "capability set... with a
// default-buffer inner state" redesign note.
package device

import "fmt"

// Device is a memory-mapped device: it owns an address range and a byte
// buffer, and answers byte reads/writes for any address in that range.
type Device interface {
	InRange(addr uint16) bool
	AddressRange() (start, size uint16)
	ReadByte(addr uint16) uint8
	WriteByte(addr uint16, val uint8)
}

// Base provides the default memory-mapped device behavior: reads and writes
// go straight to the backing buffer at addr-start. Out-of-range access is a
// programmer error (spec.md section 7) and panics rather than being
// silently tolerated - unlike bus-level unmapped access, which is fine.
type Base struct {
	start uint16
	size  uint16
	mem   []uint8
}

// NewBase allocates a zeroed device buffer covering [start, start+size).
func NewBase(start, size uint16) Base {
	return Base{start: start, size: size, mem: make([]uint8, size)}
}

func (b *Base) InRange(addr uint16) bool {
	return addr >= b.start && uint32(addr) < uint32(b.start)+uint32(b.size)
}

func (b *Base) AddressRange() (uint16, uint16) {
	return b.start, b.size
}

func (b *Base) translate(addr uint16) uint16 {
	if !b.InRange(addr) {
		panic(fmt.Sprintf("device: address 0x%04X out of range [0x%04X, 0x%04X)", addr, b.start, b.start+b.size))
	}
	return addr - b.start
}

// ReadByte returns the byte stored at addr. Panics if addr is out of range.
func (b *Base) ReadByte(addr uint16) uint8 {
	return b.mem[b.translate(addr)]
}

// ReadShort returns the little-endian pair of read_byte(addr) and
// read_byte(addr+1). Both bytes must be in range of this device; callers
// that need to read across device boundaries must use bus.Bus.ReadShort
// instead (spec.md section 4.1).
func (b *Base) ReadShort(addr uint16) uint16 {
	lo := b.ReadByte(addr)
	hi := b.ReadByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteByte stores val at addr. Panics if addr is out of range. Variants
// that need side effects (ROM's no-op, STAT's bit-7 pin, LY's reset-to-zero)
// override this by defining their own WriteByte and optionally delegating
// to Base.WriteByte for the plain-buffer part.
func (b *Base) WriteByte(addr uint16, val uint8) {
	b.mem[b.translate(addr)] = val
}

// Raw exposes the underlying buffer for devices that need direct access
// (the boot-ROM overlay save/restore, and DMA's bypass-the-bus OAM writes).
func (b *Base) Raw() []uint8 {
	return b.mem
}

// RAM is a plain read/write memory-mapped device: work RAM, external
// cartridge RAM, and high RAM are all instances of this with different
// ranges (spec.md section 4, component 2).
type RAM struct {
	Base
}

// NewRAM creates a RAM device covering [start, start+size).
func NewRAM(start, size uint16) *RAM {
	return &RAM{Base: NewBase(start, size)}
}

// NewHighRAM creates the 0xFF80-0xFFFE high RAM bank. It is a plain RAM
// device; the distinct constructor exists only to name its intent, matching
// spec.md's "HighRAM" variant name.
func NewHighRAM() *RAM {
	return NewRAM(0xFF80, 0x7F)
}

// ROM is a read-only device: reads go to the buffer, writes are silently
// ignored (spec.md section 4, component 2 and the ROM round-trip testable
// property in section 8).
type ROM struct {
	Base
}

// NewROM creates a ROM device covering [start, start+size) and loads it
// with data starting at offset 0, padded with zeros after the data if it is
// shorter than size and
// truncated if longer (spec.md section 6: "files larger than 32 KiB have
// their tail ignored").
func NewROM(start, size uint16, data []byte) *ROM {
	r := &ROM{Base: NewBase(start, size)}
	n := copy(r.Raw(), data)
	_ = n
	return r
}

// WriteByte ignores the write: no address in the ROM region is writable.
func (r *ROM) WriteByte(addr uint16, val uint8) {
	if !r.InRange(addr) {
		panic(fmt.Sprintf("device: address 0x%04X out of range of ROM", addr))
	}
}
