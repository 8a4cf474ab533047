package debugger

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"github.com/0ctobyte/gb-emulator/internal/cpu"
)

type fakeBus struct {
	mem [0x10000]uint8
}

func (f *fakeBus) ReadByte(addr uint16) uint8       { return f.mem[addr] }
func (f *fakeBus) WriteByte(addr uint16, val uint8) { f.mem[addr] = val }

type fakeStepper struct {
	c      *cpu.CPU
	cycles int
}

func (s *fakeStepper) StepInstruction() int { return s.cycles }
func (s *fakeStepper) CPU() *cpu.CPU        { return s.c }

func newFixture(t *testing.T) (*Debugger, tcell.SimulationScreen) {
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 10)

	b := &fakeBus{}
	c := cpu.New(b, 0xFF0F, 0xFFFF, nil)
	d := New(&fakeStepper{c: c, cycles: 4}, screen)
	return d, screen
}

func TestDebugger_StepOnceLogsALine(t *testing.T) {
	d, _ := newFixture(t)

	d.stepOnce()

	require.Len(t, d.lines, 1)
	require.Contains(t, d.lines[0], "step:")
}

func TestDebugger_DumpRegistersLogsRegisterLine(t *testing.T) {
	d, _ := newFixture(t)

	d.dumpRegisters()

	require.Len(t, d.lines, 1)
	require.Contains(t, d.lines[0], "PC=0000")
}

func TestDebugger_ScrollClampsToValidRange(t *testing.T) {
	d, _ := newFixture(t)
	for i := 0; i < 50; i++ {
		d.stepOnce()
	}

	d.scroll = 0
	d.scrollBy(-5)
	require.Equal(t, 0, d.scroll)

	d.scrollBy(1000)
	require.Equal(t, d.maxScroll(), d.scroll)
}

func TestDebugger_ToggleContinueFlipsContinueMode(t *testing.T) {
	d, _ := newFixture(t)
	require.False(t, d.continueMode)

	d.handleKey(tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone))
	require.True(t, d.continueMode)

	d.handleKey(tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone))
	require.False(t, d.continueMode)
}

func TestDebugger_QuitKeySetsQuit(t *testing.T) {
	d, _ := newFixture(t)
	d.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	require.True(t, d.quit)
}
