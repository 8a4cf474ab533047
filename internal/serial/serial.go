// Package serial implements the SB/SC serial port registers (0xFF01-0xFF02)
// as a logging sink: no link cable partner exists, so an internal-clock
// transfer always reads back 0xFF and completes after a fixed delay,
// requesting the serial interrupt. Non-goal per spec.md: no link cable
// emulation, only the register-level contract outgoing software observes.
//
// Grounded on the teacher's jeebie/serial.LogSink, adapted from its
// irq-callback shape to this package's poll-driven interrupt.Source
// contract (Update returns whether an interrupt fired, rather than
// invoking a handler function).
package serial

import (
	"log/slog"

	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bit"
	"github.com/0ctobyte/gb-emulator/internal/device"
)

// cyclesPerByte approximates the DMG's internal-clock serial rate: one bit
// every 512 T-cycles, 8 bits per byte.
const cyclesPerByte = 512 * 8

// Port is the serial data/control register pair. It implements
// device.Device directly (covering both SB and SC) and interrupt.Source.
type Port struct {
	device.Base

	transferActive bool
	countdown      int
	defaultRX      uint8

	logger *slog.Logger
	line   []byte
}

// New creates the serial port and registers it on bus.
func New(bus interface {
	AddReadable(dev device.Device, start, size uint16)
	AddWriteable(dev device.Device, start, size uint16)
}, logger *slog.Logger) *Port {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Port{
		Base:      device.NewBase(addr.SB, 2),
		defaultRX: 0xFF,
		logger:    logger,
	}
	bus.AddReadable(p, addr.SB, 2)
	bus.AddWriteable(p, addr.SB, 2)
	return p
}

// WriteByte intercepts writes to SC to detect a transfer start; SB itself
// is plain storage.
func (p *Port) WriteByte(a uint16, val uint8) {
	p.Base.WriteByte(a, val)
	if a == addr.SC {
		p.maybeStartTransfer()
	}
}

func (p *Port) maybeStartTransfer() {
	if p.transferActive {
		return
	}
	sc := p.Base.ReadByte(addr.SC)
	if !bit.IsSet(7, sc) || !bit.IsSet(0, sc) {
		return
	}

	p.bufferOutgoingByte()
	p.transferActive = true
	p.countdown = cyclesPerByte
}

func (p *Port) bufferOutgoingByte() {
	b := p.Base.ReadByte(addr.SB)
	if b == 0 || b == '\n' || b == '\r' {
		if len(p.line) > 0 {
			p.logger.Info("serial output", "line", string(p.line))
			p.line = p.line[:0]
		}
		return
	}
	p.line = append(p.line, b)
}

// Update advances an in-progress transfer by cycles T-cycles. It returns
// true iff the serial interrupt was requested this call.
func (p *Port) Update(cycles int) bool {
	if !p.transferActive {
		return false
	}

	p.countdown -= cycles
	if p.countdown > 0 {
		return false
	}

	p.Base.WriteByte(addr.SB, p.defaultRX)
	sc := p.Base.ReadByte(addr.SC)
	p.Base.WriteByte(addr.SC, bit.Reset(7, sc))
	p.transferActive = false
	p.countdown = 0

	return true
}

// FlagBit implements interrupt.Source.
func (p *Port) FlagBit() addr.Interrupt { return addr.SerialFlag }

// Vector implements interrupt.Source.
func (p *Port) Vector() uint16 { return addr.SerialVector }
