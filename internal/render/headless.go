package render

import (
	"log/slog"

	"github.com/0ctobyte/gb-emulator/internal/ppu"
)

// Headless is a Renderer with no visible output, grounded on the teacher's
// jeebie/backend/headless.Backend: it runs for a fixed number of frames
// (or indefinitely if maxFrames <= 0) and logs progress, for batch runs
// and tests that need a real Run() loop without a terminal.
type Headless struct {
	maxFrames  int
	frameCount int
	logger     *slog.Logger
	input      uint8
}

// NewHeadless creates a headless renderer that closes after maxFrames
// calls to Update (0 means run forever, until the caller stops polling).
func NewHeadless(maxFrames int, logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	return &Headless{maxFrames: maxFrames, logger: logger}
}

func (h *Headless) IsOpen() bool {
	return h.maxFrames <= 0 || h.frameCount < h.maxFrames
}

func (h *Headless) Input() uint8 {
	return h.input
}

// SetInput lets a test drive button presses through a headless run.
func (h *Headless) SetInput(mask uint8) {
	h.input = mask
}

func (h *Headless) Update(fb *ppu.FrameBuffer, lcdOn bool) error {
	h.frameCount++
	if h.maxFrames > 0 && h.frameCount%10 == 0 {
		h.logger.Info("frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}
	return nil
}

// FrameCount returns how many frames have been rendered so far.
func (h *Headless) FrameCount() int {
	return h.frameCount
}
