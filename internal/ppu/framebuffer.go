package ppu

// Width and Height are the DMG's visible resolution (spec.md's renderer
// contract: "consumes a 160x144 framebuffer").
const (
	Width  = 160
	Height = 144
	Size   = Width * Height
)

// Shade is one of the four DMG gray levels, indexed 0 (lightest) to 3
// (darkest) after palette translation - matches the BGP/OBPn register
// encoding directly, so no further remapping is needed by a renderer that
// wants to stay palette-accurate.
type Shade uint8

// FrameBuffer holds one rendered frame as a flat row-major pixel array.
// Grounded on the teacher's jeebie/video.FrameBuffer, simplified to store
// shade indices directly rather than pre-expanded RGBA, leaving color
// mapping to the renderer (spec.md: "indexed or RGB").
type FrameBuffer struct {
	pixels [Size]Shade
}

// NewFrameBuffer returns an all-white (shade 0) framebuffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Pixel returns the shade at (x, y).
func (f *FrameBuffer) Pixel(x, y int) Shade {
	return f.pixels[y*Width+x]
}

func (f *FrameBuffer) set(x, y int, s Shade) {
	f.pixels[y*Width+x] = s
}

// Raw exposes the backing pixel slice for a renderer to consume directly.
func (f *FrameBuffer) Raw() []Shade {
	return f.pixels[:]
}
