// Package bus implements the system bus for communication between CHIP-8 components.
package bus

import (
	"gochip8/internal/cpu"
	"gochip8/internal/display"
	"gochip8/internal/input"
	"gochip8/internal/memory"
)

// Bus connects all CHIP-8 components together
type Bus struct {
	// Core components
	CPU     *cpu.CPU
	Memory  *memory.Memory
	Display *display.Display
	Keypad  *input.Keypad

	// System state
	timerTicks uint64

	// Execution logging for testing
	executionLog   []ExecutionEvent
	loggingEnabled bool
}

// New creates a new system bus with all components
func New() *Bus {
	bus := &Bus{
		Memory:  memory.New(),
		Display: display.New(),
		Keypad:  input.New(),
	}

	// CPU drives memory, display and keypad through the bus interfaces
	bus.CPU = cpu.New(bus.Memory, bus.Display, bus.Keypad)

	return bus
}

// Reset resets all components to their initial state
func (b *Bus) Reset() {
	b.Memory.Reset()
	b.Display.Clear()
	b.Keypad.Reset()
	b.CPU.Reset()

	b.timerTicks = 0

	b.executionLog = nil
	b.loggingEnabled = false
}

// LoadROM resets the machine and places a program image at the program start address
func (b *Bus) LoadROM(program []uint8) error {
	b.Reset()
	return b.Memory.Load(program)
}

// Step executes one CPU cycle
func (b *Bus) Step() {
	var prePC uint16
	var preOpcode uint16
	if b.loggingEnabled {
		prePC = b.CPU.PC
		preOpcode = uint16(b.Memory.Read(prePC))<<8 | uint16(b.Memory.Read(prePC+1))
	}

	b.CPU.Cycle()

	if b.loggingEnabled {
		event := ExecutionEvent{
			StepNumber: len(b.executionLog) + 1,
			Cycles:     b.CPU.Cycles(),
			PC:         prePC,
			Opcode:     preOpcode,
			Waiting:    b.CPU.WaitingForKey(),
		}
		b.executionLog = append(b.executionLog, event)
	}
}

// TickTimers advances the delay and sound timers by one tick
func (b *Bus) TickTimers() {
	b.CPU.TickTimers()
	b.timerTicks++
}

// RunCycles runs the machine for a specified number of CPU cycles
func (b *Bus) RunCycles(cycles uint64) {
	target := b.CPU.Cycles() + cycles
	for b.CPU.Cycles() < target {
		b.Step()
		if b.CPU.WaitingForKey() {
			// Waiting cycles execute nothing, stop instead of spinning
			return
		}
	}
}

// SetKey updates the pressed state of a single key
func (b *Bus) SetKey(key uint8, pressed bool) {
	b.Keypad.SetKey(key, pressed)
}

// SetKeys replaces the whole keypad state, typically once per polled frame
func (b *Bus) SetKeys(keys [input.NumKeys]bool) {
	b.Keypad.SetKeys(keys)
}

// FrameBuffer returns a copy of the current display cells
func (b *Bus) FrameBuffer() [display.Width * display.Height]uint8 {
	return b.Display.Snapshot()
}

// SoundActive reports whether the sound timer is running
func (b *Bus) SoundActive() bool {
	return b.CPU.SoundActive()
}

// GetCycleCount returns the current CPU cycle count
func (b *Bus) GetCycleCount() uint64 {
	return b.CPU.Cycles()
}

// GetTimerTickCount returns the number of timer ticks delivered so far
func (b *Bus) GetTimerTickCount() uint64 {
	return b.timerTicks
}

// EnableCPUDebug enables/disables CPU debug logging and loop detection
func (b *Bus) EnableCPUDebug(enable bool) {
	b.CPU.EnableDebugLogging(enable)
	b.CPU.EnableLoopDetection(enable)
}

// EnableInputDebug enables debug logging for the keypad
func (b *Bus) EnableInputDebug(enable bool) {
	b.Keypad.EnableDebug(enable)
}

// ExecutionEvent represents a single execution step for testing
type ExecutionEvent struct {
	StepNumber int
	Cycles     uint64
	PC         uint16
	Opcode     uint16
	Waiting    bool
}

// GetExecutionLog returns the execution log for integration testing
func (b *Bus) GetExecutionLog() []ExecutionEvent {
	return b.executionLog
}

// EnableExecutionLogging enables execution logging for testing
func (b *Bus) EnableExecutionLogging() {
	b.loggingEnabled = true
}

// DisableExecutionLogging disables execution logging
func (b *Bus) DisableExecutionLogging() {
	b.loggingEnabled = false
}
