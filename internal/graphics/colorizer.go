package graphics

import (
	"gochip8/internal/display"
)

// Colorizer converts CHIP-8 frame cells into RGB pixels
type Colorizer struct {
	gradient   bool
	brightness float32

	// Per-column colors, precomputed once
	palette [display.Width]uint32
}

// NewColorizer creates a colorizer. With gradient enabled, lit pixels take a
// hue that sweeps across the columns; otherwise they render white.
func NewColorizer(gradient bool, brightness float32) *Colorizer {
	c := &Colorizer{
		gradient:   gradient,
		brightness: brightness,
	}
	c.buildPalette()
	return c
}

// buildPalette precomputes the lit-pixel color for every column
func (c *Colorizer) buildPalette() {
	for x := 0; x < display.Width; x++ {
		var r, g, b float32
		if c.gradient {
			hue := float32(x) / float32(display.Width)
			r, g, b = hslToRGB(hue, 1.0, 0.5)
		} else {
			r, g, b = 1.0, 1.0, 1.0
		}

		r = clamp(r*c.brightness*255.0, 0, 255)
		g = clamp(g*c.brightness*255.0, 0, 255)
		b = clamp(b*c.brightness*255.0, 0, 255)

		c.palette[x] = (uint32(r) << 16) | (uint32(g) << 8) | uint32(b)
	}
}

// ProcessFrame converts frame cells to packed 0xRRGGBB pixels
func (c *Colorizer) ProcessFrame(frame FrameBuffer) [display.Width * display.Height]uint32 {
	var pixels [display.Width * display.Height]uint32

	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			idx := y*display.Width + x
			if frame[idx] != 0 {
				pixels[idx] = c.palette[x]
			}
		}
	}

	return pixels
}

// SetBrightness updates the brightness value and rebuilds the palette
func (c *Colorizer) SetBrightness(brightness float32) {
	c.brightness = brightness
	c.buildPalette()
}

// clamp limits a value to a range
func clamp(value, min, max float32) float32 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// hslToRGB converts HSL to RGB color space, all components in [0,1]
func hslToRGB(h, s, l float32) (r, g, b float32) {
	if s == 0 {
		r = l
		g = l
		b = l
	} else {
		var q float32
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToRGB(p, q, h+1.0/3.0)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3.0)
	}

	return r, g, b
}

// hueToRGB helper function for HSL to RGB conversion
func hueToRGB(p, q, t float32) float32 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 1.0/2.0 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
