package compositor

import "image/color"

// Color keeps the channels as requested; they are only clamped when rendered.
type Color struct {
	R, G, B, A int
}

func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: clampChannel(c.R), G: clampChannel(c.G), B: clampChannel(c.B), A: clampChannel(c.A)}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
