package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ctobyte/gb-emulator/internal/device"
)

func TestBus_UnmappedAddressIsOpenBus(t *testing.T) {
	b := New()

	assert.Equal(t, uint8(0xFF), b.ReadByte(0x1234))
	b.WriteByte(0x1234, 0x42) // must not panic
}

func TestBus_ReadWriteRouting(t *testing.T) {
	b := New()
	ram := device.NewRAM(0xC000, 0x2000)

	b.AddReadable(ram, 0xC000, 0x2000)
	b.AddWriteable(ram, 0xC000, 0x2000)

	b.WriteByte(0xC123, 0x77)
	assert.Equal(t, uint8(0x77), b.ReadByte(0xC123))
}

func TestBus_ReadOnlyDeviceIgnoresWrites(t *testing.T) {
	b := New()
	rom := device.NewROM(0x0000, 0x8000, []byte{0xAB})

	b.AddReadable(rom, 0x0000, 0x8000)
	// deliberately not added as writeable

	b.WriteByte(0x0000, 0x99)
	assert.Equal(t, uint8(0xAB), b.ReadByte(0x0000))
}

func TestBus_OverlappingRegistrationReplacesBinding(t *testing.T) {
	b := New()
	first := device.NewRAM(0xC000, 0x1000)
	second := device.NewRAM(0xC000, 0x1000)
	second.WriteByte(0xC000, 0x5A)

	b.AddReadable(first, 0xC000, 0x1000)
	b.AddReadable(second, 0xC000, 0x1000)

	assert.Equal(t, uint8(0x5A), b.ReadByte(0xC000), "later registration should win")
}

func TestBus_RemoveReadableParksDevice(t *testing.T) {
	b := New()
	oam := device.NewRAM(0xFE00, 0x00A0)
	oam.WriteByte(0xFE00, 0x11)

	b.AddReadable(oam, 0xFE00, 0x00A0)
	require.Equal(t, uint8(0x11), b.ReadByte(0xFE00))

	b.RemoveReadable(0xFE00, 0x00A0)
	assert.Equal(t, uint8(0xFF), b.ReadByte(0xFE00), "parked region reads as open bus")

	b.AddReadable(oam, 0xFE00, 0x00A0)
	assert.Equal(t, uint8(0x11), b.ReadByte(0xFE00), "unparking restores the original device and its contents")
}

func TestBus_GetReadableReturnsBoundDevice(t *testing.T) {
	b := New()
	ram := device.NewRAM(0xC000, 0x2000)
	b.AddReadable(ram, 0xC000, 0x2000)

	got := b.GetReadable(0xC100)
	require.NotNil(t, got)

	start, size := got.AddressRange()
	assert.Equal(t, uint16(0xC000), start)
	assert.Equal(t, uint16(0x2000), size)
}

func TestBus_ReadShortSpansDevices(t *testing.T) {
	b := New()
	low := device.NewRAM(0x0000, 0x0001)
	high := device.NewRAM(0x0001, 0x0001)
	low.WriteByte(0x0000, 0xCD)
	high.WriteByte(0x0001, 0xAB)

	b.AddReadable(low, 0x0000, 0x0001)
	b.AddReadable(high, 0x0001, 0x0001)

	assert.Equal(t, uint16(0xABCD), b.ReadShort(0x0000))
}
