// Package render implements the Renderer contract spec.md section 6
// describes (is_open/update/input) for the command-line front end: a
// tcell-based terminal view, plus a headless renderer used by tests and
// batch/snapshot runs.
//
// Grounded on the teacher's root main.go TerminalRenderer: the shade
// character ramp, the scaleX/scaleY terminal aspect-ratio correction, the
// frame ticker, and the SIGINT/SIGTERM-driven shutdown are all carried
// over, generalized from the teacher's jeebie.Emulator/video.FrameBuffer
// types to this module's ppu.FrameBuffer and its 2-bit Shade values
// (which need no brightness-bucketing: the shade index is already direct).
package render

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/0ctobyte/gb-emulator/internal/joypad"
	"github.com/0ctobyte/gb-emulator/internal/ppu"
)

// frameTime paces the render loop at the Game Boy's ~59.7 Hz refresh rate.
const frameTime = time.Second / 60

// scaleX/scaleY correct for terminal cells being taller than they are
// wide: each Game Boy pixel becomes a 2x1 block of characters.
const (
	scaleX = 2
	scaleY = 1
)

// shadeChars maps a ppu.Shade (0 = lightest, 3 = darkest) to a character,
// darkest first to match the teacher's ramp.
var shadeChars = []rune{'░', '▒', '▓', '█'}

// keymap mirrors the teacher's jeebie/input/default_keys.go vocabulary,
// narrowed to the buttons this renderer's Input() reports: the four
// directions here, plus A ('z') and B ('x') in runeKeymap. Select and Start
// have no key binding.
var keymap = map[tcell.Key]joypad.Button{
	tcell.KeyRight: joypad.Right,
	tcell.KeyLeft:  joypad.Left,
	tcell.KeyUp:    joypad.Up,
	tcell.KeyDown:  joypad.Down,
}

var runeKeymap = map[rune]joypad.Button{
	'z': joypad.A,
	'x': joypad.B,
}

// Terminal is a tcell-backed Renderer: it draws the framebuffer as block
// characters and polls the keyboard for button state every frame.
type Terminal struct {
	screen  tcell.Screen
	running bool
	held    uint8 // current button bitmask, same bit order as joypad.Button

	ticker *time.Ticker
	sigs   chan os.Signal
}

// NewTerminal initializes the terminal screen. The caller must call
// Close when done (or let IsOpen() go false and stop using the renderer).
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("render: failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("render: failed to initialize terminal: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	t := &Terminal{
		screen:  screen,
		running: true,
		ticker:  time.NewTicker(frameTime),
		sigs:    sigs,
	}

	go t.pollInput()

	return t, nil
}

// IsOpen reports whether the renderer should keep receiving frames.
func (t *Terminal) IsOpen() bool {
	return t.running
}

// Input returns the currently held button bitmask, in joypad.Button bit
// order (spec.md's Renderer.input() contract).
func (t *Terminal) Input() uint8 {
	return t.held
}

// Update paces to one frame per tick, draws fb, and shows it. It blocks
// until the next tick or a shutdown signal arrives.
func (t *Terminal) Update(fb *ppu.FrameBuffer, lcdOn bool) error {
	select {
	case <-t.sigs:
		t.running = false
		return nil
	case <-t.ticker.C:
	}

	t.draw(fb, lcdOn)
	t.screen.Show()
	return nil
}

// Close releases the terminal screen.
func (t *Terminal) Close() {
	t.running = false
	t.ticker.Stop()
	t.screen.Fini()
}

func (t *Terminal) draw(fb *ppu.FrameBuffer, lcdOn bool) {
	t.screen.Clear()
	if !lcdOn {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for y := 0; y < ppu.Height; y++ {
		for x := 0; x < ppu.Width; x++ {
			char := shadeChars[fb.Pixel(x, y)]
			screenX, screenY := x*scaleX, y*scaleY
			for sx := 0; sx < scaleX; sx++ {
				t.screen.SetContent(screenX+sx, screenY, char, nil, style)
			}
		}
	}
}

func (t *Terminal) pollInput() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape {
				t.running = false
				return
			}
			if btn, ok := keymap[ev.Key()]; ok {
				t.held |= 1 << uint8(btn)
			}
			if btn, ok := runeKeymap[ev.Rune()]; ok {
				t.held |= 1 << uint8(btn)
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}
