// Package emulator is the driver spec.md section 4.8 describes: it
// constructs the device graph in the required order, owns the per-frame
// cycle loop, and coordinates the boot-ROM overlay and renderer handoff.
//
// Grounded on the teacher's jeebie/core.go (construction sequence and
// frame-cycle-budget loop) and jeebie/emulator.go (the Emulator
// interface's RunUntilFrame/GetCurrentFrame shape), generalized to this
// package's component types instead of the teacher's CPU/GPU/MMU.
package emulator

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/0ctobyte/gb-emulator/internal/addr"
	"github.com/0ctobyte/gb-emulator/internal/bootrom"
	"github.com/0ctobyte/gb-emulator/internal/bus"
	"github.com/0ctobyte/gb-emulator/internal/cpu"
	"github.com/0ctobyte/gb-emulator/internal/device"
	"github.com/0ctobyte/gb-emulator/internal/dma"
	"github.com/0ctobyte/gb-emulator/internal/interrupt"
	"github.com/0ctobyte/gb-emulator/internal/joypad"
	"github.com/0ctobyte/gb-emulator/internal/lcd"
	"github.com/0ctobyte/gb-emulator/internal/ppu"
	"github.com/0ctobyte/gb-emulator/internal/serial"
	"github.com/0ctobyte/gb-emulator/internal/timer"
)

// FrameCycles is one Game Boy frame's T-cycle budget (~59.7 Hz).
const FrameCycles = 70224

// Renderer is the spec.md section 6 renderer contract: a framebuffer
// consumer with is_open/update/input.
type Renderer interface {
	IsOpen() bool
	Update(fb *ppu.FrameBuffer, lcdOn bool) error
	Input() uint8
}

// Emulator owns the bus, CPU, and every memory-mapped peripheral, and
// drives the cycle loop described in spec.md section 4.8.
type Emulator struct {
	bus     *bus.Bus
	cpu     *cpu.CPU
	irq     *interrupt.Controller
	timer   *timer.Timer
	lcd     *lcd.Controller
	ppu     *ppu.Controller
	dma     *dma.DMA
	serial  *serial.Port
	joypad  *joypad.Joypad
	bootROM *bootrom.Overlay

	rom *device.ROM

	totalCycles uint64
	logger      *slog.Logger
}

// Options configures emulator construction.
type Options struct {
	ROM       []byte
	BootImage []byte // optional DMG_ROM.bin contents; nil to skip
	Tracing   bool
	Logger    *slog.Logger
}

// New constructs the full device graph in the order spec.md section 4.8
// requires: memory map, CPU, interrupt controller, devices, DMA.
func New(opts Options) (*Emulator, error) {
	if len(opts.ROM) == 0 {
		return nil, fmt.Errorf("emulator: empty ROM")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := bus.New()

	rom := device.NewROM(addr.ROMStart, addr.ROMSize, opts.ROM)
	b.AddReadable(rom, addr.ROMStart, addr.ROMSize)
	b.AddWriteable(rom, addr.ROMStart, addr.ROMSize)

	extRAM := device.NewRAM(addr.ExtRAMStart, addr.ExtRAMSize)
	b.AddReadable(extRAM, addr.ExtRAMStart, addr.ExtRAMSize)
	b.AddWriteable(extRAM, addr.ExtRAMStart, addr.ExtRAMSize)

	wram := device.NewRAM(addr.WRAMStart, addr.WRAMSize)
	b.AddReadable(wram, addr.WRAMStart, addr.WRAMSize)
	b.AddWriteable(wram, addr.WRAMStart, addr.WRAMSize)

	vram := device.NewRAM(addr.VRAMStart, addr.VRAMSize)
	b.AddReadable(vram, addr.VRAMStart, addr.VRAMSize)
	b.AddWriteable(vram, addr.VRAMStart, addr.VRAMSize)

	oam := device.NewRAM(addr.OAMStart, addr.OAMSize)
	b.AddReadable(oam, addr.OAMStart, addr.OAMSize)
	b.AddWriteable(oam, addr.OAMStart, addr.OAMSize)

	hram := device.NewHighRAM()
	start, size := hram.AddressRange()
	b.AddReadable(hram, start, size)
	b.AddWriteable(hram, start, size)

	var traceLogger *slog.Logger
	if opts.Tracing {
		traceLogger = logger
	}
	c := cpu.New(b, addr.IF, addr.IE, traceLogger)

	irq := interrupt.New(b, c)

	tm := timer.New(b)
	irq.AddSource(tm)

	lcdCtl := lcd.New(b)

	lcdcReg := lcdCtl.LCDC()
	ppuCtl := ppu.New(b, lcdAdapter{lcdCtl}, vram, oam, func() uint8 { return lcdcReg.ReadByte(addr.LCDC) })
	irq.AddSource(ppuCtl)

	ser := serial.New(b, logger)
	irq.AddSource(ser)

	jp := joypad.New(b)
	irq.AddSource(jp)

	d := dma.New(b, oam)

	overlay := bootrom.New(rom, opts.BootImage)
	if !overlay.Active() {
		c.SetPC(0x0100)
	}

	return &Emulator{
		bus: b, cpu: c, irq: irq, timer: tm, lcd: lcdCtl, ppu: ppuCtl,
		dma: d, serial: ser, joypad: jp, bootROM: overlay, rom: rom,
		logger: logger,
	}, nil
}

// lcdAdapter narrows lcd.Controller to the ppu package's local lcdState
// interface (Mode returns lcd.Mode, ppu wants a plain uint8).
type lcdAdapter struct{ c *lcd.Controller }

func (a lcdAdapter) Mode() uint8   { return uint8(a.c.Mode()) }
func (a lcdAdapter) LY() uint8     { return a.c.LY() }
func (a lcdAdapter) Enabled() bool { return a.c.Enabled() }

// LoadROMFile reads a ROM and optional boot-ROM file from disk and
// constructs an Emulator, matching spec.md section 6's CLI contract.
func LoadROMFile(romPath string, tracing bool, logger *slog.Logger) (*Emulator, error) {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return nil, fmt.Errorf("emulator: failed to load ROM %q: %w", romPath, err)
	}

	var bootImage []byte
	if bootData, err := os.ReadFile("DMG_ROM.bin"); err == nil {
		bootImage = bootData
	}

	return New(Options{ROM: data, BootImage: bootImage, Tracing: tracing, Logger: logger})
}

// Step advances the CPU/peripherals until at least budget T-cycles have
// been consumed, per spec.md section 4.8's pseudocode.
func (e *Emulator) Step(budget int) {
	consumed := 0
	for consumed < budget {
		consumed += e.StepInstruction()
	}
}

// StepInstruction executes exactly one CPU instruction (or one HALT tick)
// and its peripheral side effects, returning the T-cycles it consumed.
// Used by the single-step debugger, where Step's budget-loop granularity
// is too coarse.
func (e *Emulator) StepInstruction() int {
	cycles := e.cpu.Step()
	e.totalCycles += uint64(cycles)

	if e.lcd.Update(cycles) {
		e.irq.RequestFlag(addr.LCDStatFlag)
	}
	e.irq.Update(cycles)
	e.dma.Update(cycles)

	e.bootROM.CheckPC(e.cpu.PC())

	return cycles
}

// RunFrame runs Step with one frame's cycle budget (FrameCycles); the last
// instruction may carry the total a few cycles past the budget.
func (e *Emulator) RunFrame() {
	e.Step(FrameCycles)
}

// FrameBuffer returns the PPU's current framebuffer.
func (e *Emulator) FrameBuffer() *ppu.FrameBuffer {
	return e.ppu.FrameBuffer()
}

// LCDEnabled reports whether the LCD power bit is set, gating whether the
// renderer should show pixels (spec.md section 2).
func (e *Emulator) LCDEnabled() bool {
	return e.lcd.Enabled()
}

// SetInput forwards the renderer's polled button bitmask to the joypad.
func (e *Emulator) SetInput(mask uint8) {
	e.joypad.SetInput(mask)
}

// TotalCycles returns the monotonic T-cycle count consumed since startup.
func (e *Emulator) TotalCycles() uint64 {
	return e.totalCycles
}

// CPU exposes the CPU for the debugger UI (register/PC inspection only;
// instruction semantics remain the CPU package's concern).
func (e *Emulator) CPU() *cpu.CPU {
	return e.cpu
}

// Run drives the frame loop until renderer reports it is no longer open,
// per spec.md section 4.8's "outer frame loop calls step(70224) then
// renderer.update(lcd_on) while renderer.is_open()".
func (e *Emulator) Run(r Renderer) error {
	for r.IsOpen() {
		e.SetInput(r.Input())
		e.RunFrame()
		if err := r.Update(e.FrameBuffer(), e.LCDEnabled()); err != nil {
			return err
		}
	}
	return nil
}
