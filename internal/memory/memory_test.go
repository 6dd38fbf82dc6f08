package memory

import (
	"errors"
	"testing"
)

func TestNew_ShouldSeedFontAtBase(t *testing.T) {
	mem := New()

	// Glyph 0 starts with 0xF0 0x90, glyph F ends with 0x80
	if got := mem.Read(0x000); got != 0xF0 {
		t.Errorf("Expected first font byte 0xF0, got 0x%02X", got)
	}
	if got := mem.Read(0x001); got != 0x90 {
		t.Errorf("Expected second font byte 0x90, got 0x%02X", got)
	}
	if got := mem.Read(0x04F); got != 0x80 {
		t.Errorf("Expected last font byte 0x80, got 0x%02X", got)
	}

	// Memory above the font is zeroed
	for _, addr := range []uint16{0x050, 0x1FF, 0x200, 0xFFF} {
		if got := mem.Read(addr); got != 0 {
			t.Errorf("Expected 0x%03X to be zero, got 0x%02X", addr, got)
		}
	}
}

func TestReadWrite_ShouldRoundTrip(t *testing.T) {
	mem := New()

	addresses := []uint16{0x050, 0x200, 0x5AB, 0xFFF}
	for i, addr := range addresses {
		value := uint8(0x11 * (i + 1))
		mem.Write(addr, value)
		if got := mem.Read(addr); got != value {
			t.Errorf("Read(0x%03X) = 0x%02X, want 0x%02X", addr, got, value)
		}
	}
}

func TestWrite_ProgramRegion_ShouldAllowSelfModification(t *testing.T) {
	mem := New()

	if err := mem.Load([]uint8{0x12, 0x00}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Overwriting loaded program bytes is defined behavior
	mem.Write(ProgramStart, 0xAA)
	if got := mem.Read(ProgramStart); got != 0xAA {
		t.Errorf("Expected self-modified byte 0xAA, got 0x%02X", got)
	}
}

func TestLoad_ShouldPlaceProgramAtStartAddress(t *testing.T) {
	mem := New()
	program := []uint8{0x60, 0x01, 0x61, 0x02, 0xA2, 0x20}

	if err := mem.Load(program); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i, want := range program {
		if got := mem.Read(ProgramStart + uint16(i)); got != want {
			t.Errorf("byte %d: got 0x%02X, want 0x%02X", i, got, want)
		}
	}
}

func TestLoad_ExactFit_ShouldSucceed(t *testing.T) {
	mem := New()
	program := make([]uint8, MaxProgramSize)
	program[0] = 0xDE
	program[len(program)-1] = 0xAD

	if err := mem.Load(program); err != nil {
		t.Fatalf("Expected exact-fit load to succeed, got %v", err)
	}
	if got := mem.Read(Size - 1); got != 0xAD {
		t.Errorf("Expected last byte 0xAD, got 0x%02X", got)
	}
}

func TestLoad_OneByteTooLarge_ShouldFailWithoutMutation(t *testing.T) {
	mem := New()
	program := make([]uint8, MaxProgramSize+1)
	for i := range program {
		program[i] = 0xEE
	}

	err := mem.Load(program)
	if err == nil {
		t.Fatal("Expected size error, got nil")
	}

	var sizeErr *SizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("Expected *SizeError, got %T: %v", err, err)
	}
	if sizeErr.ImageSize != MaxProgramSize+1 {
		t.Errorf("Expected reported size %d, got %d", MaxProgramSize+1, sizeErr.ImageSize)
	}

	// No partial mutation
	for addr := uint16(ProgramStart); addr < Size; addr++ {
		if mem.Read(addr) != 0 {
			t.Fatalf("Memory at 0x%03X mutated by failed load", addr)
		}
	}
}

func TestReset_ShouldDiscardProgramAndReseedFont(t *testing.T) {
	mem := New()
	if err := mem.Load([]uint8{0xFF, 0xFF}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	mem.Write(0x000, 0x00) // clobber a font byte

	mem.Reset()

	if got := mem.Read(0x000); got != 0xF0 {
		t.Errorf("Expected font re-seeded after reset, got 0x%02X", got)
	}
	if got := mem.Read(ProgramStart); got != 0 {
		t.Errorf("Expected program region cleared after reset, got 0x%02X", got)
	}
}

func TestGlyphAddress(t *testing.T) {
	tests := []struct {
		digit uint8
		want  uint16
	}{
		{0x0, 0},
		{0x1, 5},
		{0x4, 20},
		{0xF, 75},
	}

	for _, tt := range tests {
		if got := GlyphAddress(tt.digit); got != tt.want {
			t.Errorf("GlyphAddress(0x%X) = %d, want %d", tt.digit, got, tt.want)
		}
	}
}
