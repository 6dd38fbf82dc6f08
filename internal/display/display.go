// Package display implements the 64x32 monochrome display buffer of the
// CHIP-8 machine. The buffer is off-screen storage; rendering backends read
// it on their own schedule and the interpreter never pushes frames.
package display

// Display dimensions
const (
	Width  = 64
	Height = 32
)

// Display represents the 64x32 bit grid, row-major, each cell 0 or 1
type Display struct {
	cells [Width * Height]uint8
}

// New creates a new cleared display buffer
func New() *Display {
	return &Display{}
}

// Clear zeroes every cell
func (d *Display) Clear() {
	d.cells = [Width * Height]uint8{}
}

// Get returns the cell at (x, y). Coordinates are pre-wrapped by the caller.
func (d *Display) Get(x, y int) uint8 {
	return d.cells[y*Width+x]
}

// XORPlot combines bit into the cell at (x, y) via exclusive-or and reports
// whether the cell was already set before the XOR. The interpreter
// accumulates this into the collision flag during sprite drawing.
func (d *Display) XORPlot(x, y int, bit uint8) bool {
	idx := y*Width + x
	collision := d.cells[idx] == 1 && bit == 1
	d.cells[idx] ^= bit
	return collision
}

// Snapshot returns a copy of the bit grid for renderers. The copy keeps the
// render driver decoupled from interpreter mutation.
func (d *Display) Snapshot() [Width * Height]uint8 {
	return d.cells
}
