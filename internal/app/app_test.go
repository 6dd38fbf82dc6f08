package app

import (
	"testing"

	"gochip8/internal/audio"
	"gochip8/internal/bus"
	"gochip8/internal/graphics"
)

// stubWindow feeds scripted input events into the application loop
type stubWindow struct {
	events []graphics.InputEvent
}

func (w *stubWindow) SetTitle(string)                        {}
func (w *stubWindow) GetSize() (int, int)                    { return 0, 0 }
func (w *stubWindow) ShouldClose() bool                      { return false }
func (w *stubWindow) RenderFrame(graphics.FrameBuffer) error { return nil }
func (w *stubWindow) Cleanup() error                         { return nil }

func (w *stubWindow) PollEvents() []graphics.InputEvent {
	events := w.events
	w.events = nil
	return events
}

func (w *stubWindow) push(events ...graphics.InputEvent) {
	w.events = append(w.events, events...)
}

func newControlTestApp(t *testing.T, program []uint8) (*Application, *stubWindow, *audio.NullSpeaker) {
	t.Helper()

	romPath := writeTestROM(t, "demo.ch8", program)
	machine := bus.New()
	loadTestROM(t, machine, romPath)

	window := &stubWindow{}
	speaker := audio.NewNullSpeaker()
	config := NewConfig()

	app := &Application{
		bus:         machine,
		config:      config,
		window:      window,
		speaker:     speaker,
		emulator:    NewEmulator(machine, config),
		states:      NewStateManager(t.TempDir()),
		romPath:     romPath,
		romLoaded:   true,
		initialized: true,
	}
	return app, window, speaker
}

func TestProcessInput_FunctionKey_SavesAndLoadsState(t *testing.T) {
	program := []uint8{0x60, 0x12, 0x12, 0x02}
	app, window, _ := newControlTestApp(t, program)

	app.bus.Step()
	if app.bus.CPU.V[0] != 0x12 {
		t.Fatal("program did not run")
	}

	window.push(graphics.InputEvent{Type: graphics.InputEventTypeSaveState, Slot: 0, Pressed: true})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if !app.states.HasSaveState(0, app.romPath) {
		t.Fatal("save state key did not create a save state")
	}

	// Reload the ROM so the restore is observable
	loadTestROM(t, app.bus, app.romPath)
	if app.bus.CPU.V[0] != 0 {
		t.Fatal("machine was not reset before restore")
	}

	window.push(graphics.InputEvent{Type: graphics.InputEventTypeLoadState, Slot: 0, Pressed: true})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if got := app.bus.CPU.V[0]; got != 0x12 {
		t.Errorf("V0 after load state key = %#02x, want 0x12", got)
	}
}

func TestProcessInput_SaveStateWithoutROM_DoesNotCreateFile(t *testing.T) {
	app, window, _ := newControlTestApp(t, []uint8{0x12, 0x00})
	app.romLoaded = false

	window.push(graphics.InputEvent{Type: graphics.InputEventTypeSaveState, Slot: 1, Pressed: true})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if app.states.HasSaveState(1, app.romPath) {
		t.Error("save state key should be ignored without a loaded ROM")
	}
}

func TestProcessInput_PauseKey_TogglesPause(t *testing.T) {
	app, window, _ := newControlTestApp(t, []uint8{0x12, 0x00})

	window.push(graphics.InputEvent{Type: graphics.InputEventTypePause, Pressed: true})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if !app.IsPaused() {
		t.Fatal("pause key should pause the emulator")
	}

	// A paused emulator executes nothing
	before := app.bus.GetCycleCount()
	if err := app.updateEmulator(); err != nil {
		t.Fatalf("updateEmulator() error = %v", err)
	}
	if app.bus.GetCycleCount() != before {
		t.Error("paused emulator should not run cycles")
	}

	window.push(graphics.InputEvent{Type: graphics.InputEventTypePause, Pressed: true})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if app.IsPaused() {
		t.Error("second pause key should resume the emulator")
	}
}

func TestProcessInput_MuteKey_TogglesSpeakerMute(t *testing.T) {
	app, window, speaker := newControlTestApp(t, []uint8{0x12, 0x00})

	window.push(graphics.InputEvent{Type: graphics.InputEventTypeMute, Pressed: true})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if !app.IsMuted() || !speaker.IsMuted() {
		t.Fatal("mute key should mute the speaker")
	}

	speaker.SetActive(true)
	if speaker.IsActive() {
		t.Error("muted speaker should stay silent")
	}

	window.push(graphics.InputEvent{Type: graphics.InputEventTypeMute, Pressed: true})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if app.IsMuted() || speaker.IsMuted() {
		t.Error("second mute key should unmute the speaker")
	}
}

func TestProcessInput_KeypadEventsReachBus(t *testing.T) {
	app, window, _ := newControlTestApp(t, []uint8{0x12, 0x00})

	window.push(graphics.InputEvent{Type: graphics.InputEventTypeKey, HexKey: 0xA, Pressed: true})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if !app.bus.Keypad.IsPressed(0xA) {
		t.Error("keypad press did not reach the bus")
	}

	window.push(graphics.InputEvent{Type: graphics.InputEventTypeKey, HexKey: 0xA, Pressed: false})
	if err := app.processInput(); err != nil {
		t.Fatalf("processInput() error = %v", err)
	}
	if app.bus.Keypad.IsPressed(0xA) {
		t.Error("keypad release did not reach the bus")
	}
}
