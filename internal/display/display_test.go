package display

import "testing"

func TestNew_ShouldStartCleared(t *testing.T) {
	d := New()

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if d.Get(x, y) != 0 {
				t.Fatalf("Expected cell (%d,%d) clear, got set", x, y)
			}
		}
	}
}

func TestXORPlot_ShouldSetAndReportCollision(t *testing.T) {
	d := New()

	// First plot sets the cell, no collision
	if collision := d.XORPlot(3, 5, 1); collision {
		t.Error("Expected no collision on first plot")
	}
	if d.Get(3, 5) != 1 {
		t.Error("Expected cell set after first plot")
	}

	// Second plot erases the cell and reports collision
	if collision := d.XORPlot(3, 5, 1); !collision {
		t.Error("Expected collision on second plot")
	}
	if d.Get(3, 5) != 0 {
		t.Error("Expected cell cleared after XOR of set cell")
	}
}

func TestXORPlot_ZeroBit_ShouldNeverCollideOrMutate(t *testing.T) {
	d := New()
	d.XORPlot(10, 10, 1)

	if collision := d.XORPlot(10, 10, 0); collision {
		t.Error("XOR with 0 over a set cell must not report collision")
	}
	if d.Get(10, 10) != 1 {
		t.Error("XOR with 0 must not change the cell")
	}
}

func TestXORPlot_RowMajorAddressing(t *testing.T) {
	d := New()

	d.XORPlot(0, 0, 1)
	d.XORPlot(Width-1, 0, 1)
	d.XORPlot(0, Height-1, 1)
	d.XORPlot(Width-1, Height-1, 1)

	cells := d.Snapshot()
	for _, idx := range []int{0, Width - 1, (Height - 1) * Width, Width*Height - 1} {
		if cells[idx] != 1 {
			t.Errorf("Expected cell index %d set", idx)
		}
	}
}

func TestClear_ShouldZeroEveryCell(t *testing.T) {
	d := New()
	for i := 0; i < Width; i++ {
		d.XORPlot(i, i%Height, 1)
	}

	d.Clear()

	for _, cell := range d.Snapshot() {
		if cell != 0 {
			t.Fatal("Expected all cells cleared")
		}
	}
}

func TestSnapshot_ShouldBeDecoupledFromBuffer(t *testing.T) {
	d := New()
	d.XORPlot(1, 1, 1)

	snap := d.Snapshot()
	d.Clear()

	if snap[Width+1] != 1 {
		t.Error("Snapshot must not reflect later mutation")
	}
}
