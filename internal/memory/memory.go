// Package memory implements the 4KB memory bank of the CHIP-8 machine.
package memory

import "fmt"

// Memory layout constants
const (
	// Total addressable memory
	Size = 4096

	// ProgramStart is the conventional load address for CHIP-8 programs
	ProgramStart = 0x200

	// MaxProgramSize is the space left for a program image above ProgramStart
	MaxProgramSize = Size - ProgramStart

	// FontStart is the base address of the built-in hexadecimal font
	FontStart = 0x000

	// GlyphSize is the number of bytes per font glyph
	GlyphSize = 5
)

// font holds the built-in sprites for the hexadecimal digits 0-F,
// one glyph per digit, 5 bytes each, seeded at FontStart on reset.
var font = [80]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// SizeError is returned by Load when a program image does not fit into the
// space above ProgramStart.
type SizeError struct {
	ImageSize int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("program image too large: %d bytes (max %d)", e.ImageSize, MaxProgramSize)
}

// Memory represents the CHIP-8 memory bank
type Memory struct {
	ram [Size]uint8
}

// New creates a new memory bank with the font seeded at FontStart
func New() *Memory {
	mem := &Memory{}
	mem.Reset()
	return mem
}

// Reset zeroes all memory and re-seeds the built-in font.
// Any loaded program is discarded.
func (m *Memory) Reset() {
	m.ram = [Size]uint8{}
	copy(m.ram[FontStart:], font[:])
}

// Read reads a byte from the given address.
// Addresses are 12-bit by construction, so no bounds check is performed;
// an out-of-range address is a caller contract violation.
func (m *Memory) Read(address uint16) uint8 {
	return m.ram[address]
}

// Write writes a byte to the given address. Writes into the program region
// are legal: CHIP-8 programs may self-modify.
func (m *Memory) Write(address uint16, value uint8) {
	m.ram[address] = value
}

// Load copies a program image into memory starting at ProgramStart.
// It returns a *SizeError and leaves memory untouched when the image does
// not fit; this is the only fallible memory operation.
func (m *Memory) Load(program []uint8) error {
	if len(program) > MaxProgramSize {
		return &SizeError{ImageSize: len(program)}
	}
	copy(m.ram[ProgramStart:], program)
	return nil
}

// GlyphAddress returns the base address of the font glyph for the given
// hexadecimal digit.
func GlyphAddress(digit uint8) uint16 {
	return FontStart + uint16(digit)*GlyphSize
}
