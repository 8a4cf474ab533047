// Package bootrom implements the boot-ROM overlay protocol described in
// spec.md sections 4.8 and 6: the first 256 bytes of game ROM are saved
// aside and temporarily shadowed by the boot-ROM image; once the CPU's PC
// first reaches 0x0100, the saved bytes are restored. If no boot-ROM image
// is supplied, the overlay is simply inactive and the driver is expected
// to force PC=0x0100 itself.
//
// Grounded on spec.md section 7's note that this is one of the two
// components allowed to reach into another device's buffer directly
// (the other being DMA), mirroring the original implementation's direct
// byte-array manipulation in gb_emulator.cc's startup sequence.
package bootrom

import "github.com/0ctobyte/gb-emulator/internal/device"

const overlaySize = 256

// Overlay manages the temporary ROM shadow.
type Overlay struct {
	rom    *device.ROM
	saved  [overlaySize]uint8
	active bool
}

// New creates the overlay. If bootImage is empty, the overlay starts (and
// stays) inactive. Otherwise it immediately saves rom's first 256 bytes
// and overwrites them with bootImage.
func New(rom *device.ROM, bootImage []uint8) *Overlay {
	o := &Overlay{rom: rom}
	if len(bootImage) == 0 {
		return o
	}

	copy(o.saved[:], rom.Raw()[:overlaySize])
	copy(rom.Raw()[:overlaySize], bootImage)
	o.active = true

	return o
}

// Active reports whether the boot ROM is currently shadowing game ROM.
func (o *Overlay) Active() bool {
	return o.active
}

// CheckPC restores the saved game-ROM bytes the first time pc reaches
// 0x0100. It is a no-op once the overlay has already been restored, or if
// it was never active.
func (o *Overlay) CheckPC(pc uint16) {
	if !o.active || pc != 0x0100 {
		return
	}
	copy(o.rom.Raw()[:overlaySize], o.saved[:])
	o.active = false
}
