// Package app provides emulator integration for the main application.
package app

import (
	"fmt"
	"time"

	"gochip8/internal/bus"
	"gochip8/internal/cpu"
	"gochip8/internal/graphics"
)

// updatesPerSecond is the rate Ebitengine calls Update at
const updatesPerSecond = 60

// Emulator manages the emulation loop and timing. Update is called at
// 60Hz; the CPU clock and the 60Hz timers are paced independently with
// per-rate accumulators so any clock rate divides cleanly over time.
type Emulator struct {
	bus    *bus.Bus
	config *Config

	// Cadence control, in rate units per update
	clockRate        int
	timerRate        int
	cycleAccumulator int
	timerAccumulator int

	// Frame management
	frameBuffer graphics.FrameBuffer

	// Performance monitoring
	actualFrameTime  time.Duration
	emulationTime    time.Duration
	averageFrameTime time.Duration
	cycleCount       uint64
	frameCount       uint64

	// State tracking
	isRunning     bool
	lastResetTime time.Time
}

// NewEmulator creates a new emulator instance
func NewEmulator(machine *bus.Bus, config *Config) *Emulator {
	emulator := &Emulator{
		bus:           machine,
		config:        config,
		clockRate:     config.Emulation.ClockRate,
		timerRate:     config.Emulation.TimerRate,
		isRunning:     false,
		lastResetTime: time.Now(),
	}

	emulator.Reset()
	return emulator
}

// Reset resets the emulator pacing state
func (e *Emulator) Reset() {
	e.cycleAccumulator = 0
	e.timerAccumulator = 0
	e.actualFrameTime = 0
	e.emulationTime = 0
	e.averageFrameTime = 0
	e.cycleCount = 0
	e.frameCount = 0
	e.lastResetTime = time.Now()

	e.frameBuffer = graphics.FrameBuffer{}
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.isRunning = true
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// Update advances the machine by one 60Hz slice
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}

	frameStartTime := time.Now()

	if err := e.runSlice(); err != nil {
		return fmt.Errorf("frame execution error: %v", err)
	}

	e.actualFrameTime = time.Since(frameStartTime)
	e.updateAverageFrameTime()

	return nil
}

// runSlice executes one update slice worth of cycles and timer ticks
func (e *Emulator) runSlice() error {
	emulationStart := time.Now()

	// CPU cycles for this slice
	e.cycleAccumulator += e.clockRate
	cyclesToRun := e.cycleAccumulator / updatesPerSecond
	e.cycleAccumulator %= updatesPerSecond

	for i := 0; i < cyclesToRun; i++ {
		e.bus.Step()
		if e.bus.CPU.WaitingForKey() {
			// Nothing executes until a key arrives, drop the rest of the slice
			break
		}
	}

	// Timer ticks for this slice, normally exactly one
	e.timerAccumulator += e.timerRate
	ticksToRun := e.timerAccumulator / updatesPerSecond
	e.timerAccumulator %= updatesPerSecond

	for i := 0; i < ticksToRun; i++ {
		e.bus.TickTimers()
	}

	e.frameCount++
	e.frameBuffer = e.bus.FrameBuffer()

	e.emulationTime = time.Since(emulationStart)
	e.cycleCount = e.bus.GetCycleCount()

	return nil
}

// updateAverageFrameTime keeps a simple weighted average
func (e *Emulator) updateAverageFrameTime() {
	if e.averageFrameTime == 0 {
		e.averageFrameTime = e.actualFrameTime
	} else {
		e.averageFrameTime = time.Duration(
			float64(e.averageFrameTime)*0.95 + float64(e.actualFrameTime)*0.05,
		)
	}
}

// GetFrameBuffer returns the current frame buffer
func (e *Emulator) GetFrameBuffer() graphics.FrameBuffer {
	return e.frameBuffer
}

// SoundActive reports whether the beeper should play
func (e *Emulator) SoundActive() bool {
	return e.bus.SoundActive()
}

// GetFrameCount returns the current frame count
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetCycleCount returns the current CPU cycle count
func (e *Emulator) GetCycleCount() uint64 {
	return e.cycleCount
}

// GetEmulationTime returns the time spent in emulation for the last slice
func (e *Emulator) GetEmulationTime() time.Duration {
	return e.emulationTime
}

// GetActualFrameTime returns the actual frame time including rendering
func (e *Emulator) GetActualFrameTime() time.Duration {
	return e.actualFrameTime
}

// GetAverageFrameTime returns the average frame time
func (e *Emulator) GetAverageFrameTime() time.Duration {
	return e.averageFrameTime
}

// IsRunning returns whether the emulator is running
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// GetUptime returns the emulator uptime since last reset
func (e *Emulator) GetUptime() time.Duration {
	return time.Since(e.lastResetTime)
}

// SetClockRate sets the CPU cycles per second
func (e *Emulator) SetClockRate(rate int) {
	if rate > 0 {
		e.clockRate = rate
	}
}

// SetTimerRate sets the timer ticks per second
func (e *Emulator) SetTimerRate(rate int) {
	if rate > 0 {
		e.timerRate = rate
	}
}

// StepInstruction executes one CPU instruction
func (e *Emulator) StepInstruction() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}

	e.bus.Step()
	e.cycleCount = e.bus.GetCycleCount()

	return nil
}

// GetCPUState returns a CPU state snapshot for debugging
func (e *Emulator) GetCPUState() CPUState {
	if e.bus == nil {
		return CPUState{}
	}

	c := e.bus.CPU
	return CPUState{
		PC:         c.PC,
		I:          c.I,
		V:          c.V,
		DT:         c.DT,
		ST:         c.ST,
		StackDepth: c.StackDepth(),
		Waiting:    c.WaitingForKey(),
		Cycles:     c.Cycles(),
	}
}

// CPUState represents a CPU state snapshot for debugging
type CPUState struct {
	PC         uint16
	I          uint16
	V          [cpu.NumRegisters]uint8
	DT         uint8
	ST         uint8
	StackDepth int
	Waiting    bool
	Cycles     uint64
}

// GetPerformanceStats returns emulator performance statistics
func (e *Emulator) GetPerformanceStats() EmulatorStats {
	return EmulatorStats{
		FrameCount:       e.frameCount,
		CycleCount:       e.cycleCount,
		EmulationTime:    e.emulationTime,
		ActualFrameTime:  e.actualFrameTime,
		AverageFrameTime: e.averageFrameTime,
		Uptime:           e.GetUptime(),
		IsRunning:        e.isRunning,
	}
}

// EmulatorStats contains emulator performance statistics
type EmulatorStats struct {
	FrameCount       uint64
	CycleCount       uint64
	EmulationTime    time.Duration
	ActualFrameTime  time.Duration
	AverageFrameTime time.Duration
	Uptime           time.Duration
	IsRunning        bool
}

// Cleanup cleans up emulator resources
func (e *Emulator) Cleanup() error {
	e.Stop()
	return nil
}
