// Package debugger implements an interactive single-step debugger, a
// terminal-UI counterpart to the spec's CPU black box: it lets a user
// step one instruction at a time, dump registers, and scroll a log of
// what happened.
//
// Grounded on original_source/include/gb_debugger.h and
// src/gb_debugger.cc: the key vocabulary (n=step, r=dump registers,
// c=toggle continue, u/d=half-page scroll, b/f=full-page scroll,
// g/G=jump to start/end, arrow keys=line scroll, q=quit) and the
// scrolling-log-pane shape are carried over directly, replacing ncurses's
// pad/window pair with tcell (the teacher's terminal library) and a plain
// []string line buffer.
package debugger

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/0ctobyte/gb-emulator/internal/cpu"
)

// Stepper is the subset of the emulator driver the debugger needs.
type Stepper interface {
	StepInstruction() int
	CPU() *cpu.CPU
}

// Debugger drives a Stepper interactively, rendering a scrolling log of
// register dumps and step notices into a tcell screen.
type Debugger struct {
	emu    Stepper
	screen tcell.Screen

	lines    []string
	scroll   int
	continueMode bool
	quit     bool
}

// New creates a debugger UI over emu, using screen for display. The
// caller owns screen's lifecycle (Init/Fini).
func New(emu Stepper, screen tcell.Screen) *Debugger {
	return &Debugger{emu: emu, screen: screen}
}

// Run processes key events until the user quits ('q'), per the original
// gb_debugger::go() loop.
func (d *Debugger) Run() {
	d.render()
	for !d.quit {
		ev := d.screen.PollEvent()
		keyEv, ok := ev.(*tcell.EventKey)
		if !ok {
			if _, resized := ev.(*tcell.EventResize); resized {
				d.screen.Sync()
			}
			continue
		}

		if d.continueMode {
			d.stepOnce()
		}

		d.handleKey(keyEv)
		d.render()
	}
}

func (d *Debugger) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyUp {
		d.scrollBy(-1)
		return
	}
	if ev.Key() == tcell.KeyDown {
		d.scrollBy(1)
		return
	}

	switch ev.Rune() {
	case 'q':
		d.quit = true
	case 'n':
		d.stepOnce()
	case 'r':
		d.dumpRegisters()
	case 'c':
		d.continueMode = !d.continueMode
	case 'u':
		d.scrollBy(-d.halfPage())
	case 'd':
		d.scrollBy(d.halfPage())
	case 'b':
		d.scrollBy(-d.fullPage())
	case 'f':
		d.scrollBy(d.fullPage())
	case 'g':
		d.scroll = 0
	case 'G':
		d.scroll = d.maxScroll()
	}
}

func (d *Debugger) stepOnce() {
	cycles := d.emu.StepInstruction()
	regs := d.emu.CPU().Registers()
	d.log(fmt.Sprintf("step: %d cycles, pc=0x%04X", cycles, regs.PC))
	d.scroll = d.maxScroll()
}

func (d *Debugger) dumpRegisters() {
	r := d.emu.CPU().Registers()
	d.log(fmt.Sprintf("A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X PC=%04X IME=%v HALT=%v",
		r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, r.SP, r.PC, r.IME, r.Halted))
	d.scroll = d.maxScroll()
}

func (d *Debugger) log(line string) {
	d.lines = append(d.lines, line)
}

func (d *Debugger) linesPerScreen() int {
	_, h := d.screen.Size()
	if h < 1 {
		return 1
	}
	return h - 1
}

func (d *Debugger) halfPage() int { return d.linesPerScreen() / 2 }
func (d *Debugger) fullPage() int { return d.linesPerScreen() }

func (d *Debugger) maxScroll() int {
	m := len(d.lines) - d.linesPerScreen()
	if m < 0 {
		return 0
	}
	return m
}

func (d *Debugger) scrollBy(delta int) {
	d.scroll += delta
	if d.scroll < 0 {
		d.scroll = 0
	}
	if max := d.maxScroll(); d.scroll > max {
		d.scroll = max
	}
}

func (d *Debugger) render() {
	d.screen.Clear()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	rows := d.linesPerScreen()
	for row := 0; row < rows; row++ {
		idx := d.scroll + row
		if idx >= len(d.lines) {
			break
		}
		for col, r := range d.lines[idx] {
			d.screen.SetContent(col, row, r, nil, style)
		}
	}
	d.screen.Show()
}
