package graphics

import (
	"testing"

	"gochip8/internal/display"
)

func TestColorizer_Monochrome_LitPixelsAreWhite(t *testing.T) {
	c := NewColorizer(false, 1.0)

	var frame FrameBuffer
	frame[0] = 1
	frame[display.Width-1] = 1

	pixels := c.ProcessFrame(frame)

	if pixels[0] != 0xFFFFFF {
		t.Errorf("Expected white pixel, got 0x%06X", pixels[0])
	}
	if pixels[display.Width-1] != 0xFFFFFF {
		t.Errorf("Expected white pixel, got 0x%06X", pixels[display.Width-1])
	}
	if pixels[1] != 0 {
		t.Errorf("Expected unlit pixel black, got 0x%06X", pixels[1])
	}
}

func TestColorizer_Gradient_HueVariesAcrossColumns(t *testing.T) {
	c := NewColorizer(true, 1.0)

	var frame FrameBuffer
	for x := 0; x < display.Width; x++ {
		frame[x] = 1
	}

	pixels := c.ProcessFrame(frame)

	if pixels[0] == pixels[display.Width/2] {
		t.Error("Expected different colors at column 0 and the middle column")
	}
	// Hue 0 is pure red
	if pixels[0] != 0xFF0000 {
		t.Errorf("Expected red at column 0, got 0x%06X", pixels[0])
	}
	for x := 0; x < display.Width; x++ {
		if pixels[x] == 0 {
			t.Errorf("Expected lit pixel at column %d to have a color", x)
		}
	}
}

func TestColorizer_SameColumnSameColor(t *testing.T) {
	c := NewColorizer(true, 1.0)

	var frame FrameBuffer
	frame[5] = 1
	frame[display.Width+5] = 1 // same column, next row

	pixels := c.ProcessFrame(frame)

	if pixels[5] != pixels[display.Width+5] {
		t.Error("Expected the gradient to depend on the column only")
	}
}

func TestColorizer_BrightnessScalesOutput(t *testing.T) {
	c := NewColorizer(false, 0.5)

	var frame FrameBuffer
	frame[0] = 1

	pixels := c.ProcessFrame(frame)

	r := (pixels[0] >> 16) & 0xFF
	if r < 0x7E || r > 0x80 {
		t.Errorf("Expected half brightness around 0x7F, got 0x%02X", r)
	}
}
