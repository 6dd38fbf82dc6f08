package app

import (
	"os"
	"path/filepath"
	"testing"

	"gochip8/internal/bus"
	"gochip8/internal/display"
)

func writeTestROM(t *testing.T, name string, program []uint8) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, program, 0644); err != nil {
		t.Fatalf("writing test ROM: %v", err)
	}
	return path
}

func loadTestROM(t *testing.T, machine *bus.Bus, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading test ROM: %v", err)
	}
	if err := machine.LoadROM(data); err != nil {
		t.Fatalf("LoadROM() error = %v", err)
	}
}

func TestSaveState_LoadState_RestoresMachine(t *testing.T) {
	// Sets registers, draws glyph 0 at the origin, then calls a subroutine
	// that sets one more register, leaving a pending return address
	program := []uint8{
		0x60, 0x12, // V0 = 0x12
		0x61, 0x34, // V1 = 0x34
		0xA0, 0x00, // I = 0x000
		0x64, 0x00, // V4 = 0
		0xD4, 0x45, // draw 5 rows at (V4, V4)
		0x22, 0x0E, // call 0x20E
		0x12, 0x0C, // spin
		0x63, 0x0A, // V3 = 0x0A
	}
	romPath := writeTestROM(t, "demo.ch8", program)

	machine := bus.New()
	loadTestROM(t, machine, romPath)
	for i := 0; i < 7; i++ {
		machine.Step()
	}

	sm := NewStateManager(t.TempDir())
	if err := sm.SaveState(machine, 0, romPath); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	// Reload the ROM so every captured value differs from the fresh state
	loadTestROM(t, machine, romPath)
	if machine.CPU.V[0] != 0 || machine.CPU.PC != 0x200 {
		t.Fatal("machine was not reset before restore")
	}

	if err := sm.LoadState(machine, 0, romPath); err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	c := machine.CPU
	if c.V[0] != 0x12 || c.V[1] != 0x34 || c.V[3] != 0x0A || c.V[4] != 0 {
		t.Errorf("registers = %#02x %#02x %#02x %#02x, want 0x12 0x34 0x0a 0x00",
			c.V[0], c.V[1], c.V[3], c.V[4])
	}
	if c.I != 0x000 {
		t.Errorf("I = %#04x, want 0x000", c.I)
	}
	if c.PC != 0x210 {
		t.Errorf("PC = %#04x, want 0x210", c.PC)
	}

	stack := c.StackAddresses()
	if len(stack) != 1 || stack[0] != 0x20C {
		t.Errorf("call stack = %#04x, want [0x20c]", stack)
	}

	// Glyph 0 starts with row 0xF0: four lit pixels then a gap
	frame := machine.FrameBuffer()
	for x := 0; x < 4; x++ {
		if frame[x] != 1 {
			t.Errorf("restored pixel (%d,0) = %d, want 1", x, frame[x])
		}
	}
	if frame[4] != 0 {
		t.Error("restored pixel (4,0) should be clear")
	}
	// Row 1 of glyph 0 is 0x90: pixels 0 and 3 lit
	for x := 0; x < 8; x++ {
		want := x == 0 || x == 3
		if got := frame[display.Width+x] != 0; got != want {
			t.Errorf("restored pixel (%d,1) lit = %v, want %v", x, got, want)
		}
	}
}

func TestSaveState_LoadState_RestoresInputWaitLatch(t *testing.T) {
	program := []uint8{0xF5, 0x0A}
	romPath := writeTestROM(t, "wait.ch8", program)

	machine := bus.New()
	loadTestROM(t, machine, romPath)
	machine.Step()
	if !machine.CPU.WaitingForKey() {
		t.Fatal("machine should be blocked on the input latch")
	}

	sm := NewStateManager(t.TempDir())
	if err := sm.SaveState(machine, 1, romPath); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	loadTestROM(t, machine, romPath)
	if err := sm.LoadState(machine, 1, romPath); err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if !machine.CPU.WaitingForKey() {
		t.Error("restored machine lost the input-wait latch")
	}
	if got := machine.CPU.WaitRegister(); got != 0x5 {
		t.Errorf("restored wait register = %d, want 5", got)
	}

	// The restored latch must still resolve on a key press
	machine.SetKey(0xB, true)
	machine.Step()
	if got := machine.CPU.V[5]; got != 0xB {
		t.Errorf("V5 after key press = %#02x, want 0x0b", got)
	}
}

func TestLoadState_DifferentROM_ShouldFail(t *testing.T) {
	romA := writeTestROM(t, "a.ch8", []uint8{0x12, 0x00})
	romB := writeTestROM(t, "a.ch8", []uint8{0x12, 0x02, 0x12, 0x00})

	machine := bus.New()
	loadTestROM(t, machine, romA)

	sm := NewStateManager(t.TempDir())
	if err := sm.SaveState(machine, 0, romA); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	if err := sm.LoadState(machine, 0, romB); err == nil {
		t.Error("LoadState() should reject a state saved from a different ROM")
	}
}

func TestSaveState_InvalidSlot_ShouldFail(t *testing.T) {
	machine := bus.New()
	sm := NewStateManager(t.TempDir())

	for _, slot := range []int{-1, sm.GetMaxSlots()} {
		if err := sm.SaveState(machine, slot, "any.ch8"); err == nil {
			t.Errorf("SaveState(slot=%d) should fail", slot)
		}
	}
}

func TestLoadState_EmptySlot_ShouldFail(t *testing.T) {
	romPath := writeTestROM(t, "demo.ch8", []uint8{0x12, 0x00})
	machine := bus.New()
	loadTestROM(t, machine, romPath)

	sm := NewStateManager(t.TempDir())
	if err := sm.LoadState(machine, 3, romPath); err == nil {
		t.Error("LoadState() from an empty slot should fail")
	}
}

func TestHasSaveState_And_DeleteState(t *testing.T) {
	romPath := writeTestROM(t, "demo.ch8", []uint8{0x12, 0x00})
	machine := bus.New()
	loadTestROM(t, machine, romPath)

	sm := NewStateManager(t.TempDir())

	if sm.HasSaveState(2, romPath) {
		t.Error("fresh manager should have no state in slot 2")
	}

	if err := sm.SaveState(machine, 2, romPath); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	if !sm.HasSaveState(2, romPath) {
		t.Error("slot 2 should be occupied after saving")
	}

	if err := sm.DeleteState(2, romPath); err != nil {
		t.Fatalf("DeleteState() error = %v", err)
	}
	if sm.HasSaveState(2, romPath) {
		t.Error("slot 2 should be empty after deleting")
	}
}

func TestGetSlotInfo_ReportsUsedSlots(t *testing.T) {
	romPath := writeTestROM(t, "demo.ch8", []uint8{0x12, 0x00})
	machine := bus.New()
	loadTestROM(t, machine, romPath)

	sm := NewStateManager(t.TempDir())
	if err := sm.SaveState(machine, 4, romPath); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	slots := sm.GetSlotInfo(romPath)
	if len(slots) != sm.GetMaxSlots() {
		t.Fatalf("slot count = %d, want %d", len(slots), sm.GetMaxSlots())
	}
	for i, slot := range slots {
		if slot.Used != (i == 4) {
			t.Errorf("slot %d used = %v", i, slot.Used)
		}
	}
	if slots[4].ROMPath != romPath {
		t.Errorf("slot 4 ROM path = %q, want %q", slots[4].ROMPath, romPath)
	}
}

func TestExportState_ImportState_RoundTrip(t *testing.T) {
	program := []uint8{0x6C, 0x99, 0x12, 0x02}
	romPath := writeTestROM(t, "demo.ch8", program)

	machine := bus.New()
	loadTestROM(t, machine, romPath)
	machine.Step()

	sm := NewStateManager(t.TempDir())
	exportPath := filepath.Join(t.TempDir(), "exported.save")
	if err := sm.ExportState(machine, exportPath, romPath); err != nil {
		t.Fatalf("ExportState() error = %v", err)
	}

	loadTestROM(t, machine, romPath)
	if err := sm.ImportState(machine, exportPath, romPath); err != nil {
		t.Fatalf("ImportState() error = %v", err)
	}

	if got := machine.CPU.V[0xC]; got != 0x99 {
		t.Errorf("VC after import = %#02x, want 0x99", got)
	}
}
