// Command dmgcore is the CLI front end: load a ROM, then either drive it
// interactively in a terminal, run it headlessly for a fixed number of
// frames, or attach the single-step debugger.
//
// Grounded on the teacher's cmd/jeebie/main.go (headless/--frames flag
// shape, snapshot-interval-free progress logging) and root main.go
// (the plain interactive TerminalRenderer path), combined with
// urfave/cli's flag/action wiring the teacher uses throughout.
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli"

	"github.com/0ctobyte/gb-emulator/internal/debugger"
	"github.com/0ctobyte/gb-emulator/internal/emulator"
	"github.com/0ctobyte/gb-emulator/internal/render"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Description = "A Game Boy (DMG) core emulator"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a terminal display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "tracing",
			Usage: "Log every CPU instruction as it executes",
		},
		cli.BoolFlag{
			Name:  "debugger",
			Usage: "Attach the interactive single-step debugger instead of running freely",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	logger := slog.Default()
	emu, err := emulator.LoadROMFile(romPath, c.Bool("tracing"), logger)
	if err != nil {
		return err
	}

	if c.Bool("debugger") {
		return runDebugger(emu)
	}

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames with a positive value")
		}
		return runHeadless(emu, frames, logger)
	}

	return runInteractive(emu)
}

func runHeadless(emu *emulator.Emulator, frames int, logger *slog.Logger) error {
	r := render.NewHeadless(frames, logger)
	logger.Info("running headless", "frames", frames)
	if err := emu.Run(r); err != nil {
		return err
	}
	logger.Info("headless run completed", "frames", r.FrameCount())
	return nil
}

func runInteractive(emu *emulator.Emulator) error {
	r, err := render.NewTerminal()
	if err != nil {
		return err
	}
	defer r.Close()
	return emu.Run(r)
}

func runDebugger(emu *emulator.Emulator) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	d := debugger.New(emu, screen)
	d.Run()
	return nil
}
