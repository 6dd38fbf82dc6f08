// Package app implements the main CHIP-8 emulator application with GUI support.
package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gochip8/internal/audio"
	"gochip8/internal/bus"
	"gochip8/internal/graphics"
	"gochip8/internal/input"
)

// Application represents the main CHIP-8 emulator application
type Application struct {
	// Core emulation components
	bus *bus.Bus

	// Graphics backend
	graphicsBackend graphics.Backend
	window          graphics.Window

	// Audio
	speaker audio.Speaker

	// Application state
	config   *Config
	emulator *Emulator
	states   *StateManager

	// Control flags
	running     bool
	paused      bool
	muted       bool
	initialized bool
	headless    bool

	// Performance tracking
	frameCount          uint64
	startTime           time.Time
	lastFPSTime         time.Time
	currentFPS          float64
	lastFrameTime       time.Time
	frameCountAtLastFPS uint64
	averageFPS          float64
	maxFrameTime        time.Duration
	minFrameTime        time.Duration
	lastFPSLog          time.Time

	// Performance timing hooks
	emulatorTime time.Duration
	renderTime   time.Duration

	// ROM management
	romPath   string
	romLoaded bool

	// ESC key confirmation tracking
	lastESCTime time.Time

	// Keypad state caching to prevent redundant updates
	keypadState [input.NumKeys]bool
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

// NewApplication creates a new CHIP-8 emulator application
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates a new CHIP-8 emulator application with optional headless mode
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	return NewApplicationWithOptions(configPath, Options{Headless: headless})
}

// Options overrides configuration values from the command line. Zero values
// leave the loaded configuration untouched. Overrides apply before component
// setup so the emulator, colorizer and frame dumper all see them.
type Options struct {
	Headless       bool
	ClockRate      int
	Gradient       bool
	FrameDumpEvery int
}

// NewApplicationWithOptions creates a new CHIP-8 emulator application with
// command line overrides applied on top of the loaded configuration
func NewApplicationWithOptions(configPath string, opts Options) (*Application, error) {
	headless := opts.Headless
	app := &Application{
		config:      NewConfig(),
		running:     false,
		paused:      false,
		initialized: false,
		headless:    headless,
		startTime:   time.Now(),
		lastFPSTime: time.Now(),
	}

	// Load configuration
	if configPath != "" {
		if err := app.config.LoadFromFile(configPath); err != nil {
			// Log warning but continue with defaults
			fmt.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v\n", configPath, err)
		}
	}

	// Apply command line overrides
	if headless {
		app.config.Video.Backend = "headless"
	}
	if opts.ClockRate > 0 {
		app.config.Emulation.ClockRate = opts.ClockRate
	}
	if opts.Gradient {
		app.config.Video.Gradient = true
	}
	if opts.FrameDumpEvery > 0 {
		app.config.Debug.FrameDumpEvery = opts.FrameDumpEvery
	}

	// Initialize components
	if err := app.initializeComponents(headless); err != nil {
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents(headless bool) error {
	// Create system bus
	app.bus = bus.New()

	// Initialize graphics backend
	if err := app.initializeGraphicsBackend(headless); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %v", err)
	}

	// Initialize audio
	app.initializeAudio(headless)

	// Create emulator
	app.emulator = NewEmulator(app.bus, app.config)

	// Create state manager
	app.states = NewStateManager(app.config.Paths.States)

	app.initialized = true
	return nil
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend(headless bool) error {
	// Determine backend type
	var backendType graphics.BackendType
	if headless {
		backendType = graphics.BackendHeadless
	} else {
		switch app.config.Video.Backend {
		case "ebitengine":
			backendType = graphics.BackendEbitengine
		case "headless":
			backendType = graphics.BackendHeadless
		case "terminal":
			backendType = graphics.BackendTerminal
		default:
			// Default to Ebitengine for best compatibility
			backendType = graphics.BackendEbitengine
		}
	}

	// Create graphics backend
	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %v", err)
	}

	// Initialize backend
	graphicsConfig := graphics.Config{
		WindowTitle:  "gochip8 - Go CHIP-8 Emulator",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		Gradient:     app.config.Video.Gradient,
		Headless:     headless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		// If Ebitengine fails (e.g., no DISPLAY), fallback to headless mode
		if backendType == graphics.BackendEbitengine {
			fmt.Printf("[APP_WARNING] Ebitengine backend failed (%v), falling back to headless mode\n", err)
			app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
			if err != nil {
				return fmt.Errorf("failed to create fallback headless backend: %v", err)
			}
			graphicsConfig.Headless = true
			if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
				return fmt.Errorf("failed to initialize fallback headless backend: %v", err)
			}
		} else {
			return fmt.Errorf("failed to initialize graphics backend: %v", err)
		}
	}

	// Create window (only if not headless)
	if !app.graphicsBackend.IsHeadless() {
		app.window, err = app.graphicsBackend.CreateWindow(
			graphicsConfig.WindowTitle,
			graphicsConfig.WindowWidth,
			graphicsConfig.WindowHeight,
		)
		if err != nil {
			return fmt.Errorf("failed to create window: %v", err)
		}
	} else if headlessWindow, ok := app.newHeadlessWindow(graphicsConfig); ok {
		app.window = headlessWindow
	}

	return nil
}

// newHeadlessWindow creates the headless window with frame dumping configured
func (app *Application) newHeadlessWindow(config graphics.Config) (graphics.Window, bool) {
	window, err := app.graphicsBackend.CreateWindow(config.WindowTitle, config.WindowWidth, config.WindowHeight)
	if err != nil {
		fmt.Printf("[APP_WARNING] Could not create headless window: %v\n", err)
		return nil, false
	}

	if headless, ok := window.(*graphics.HeadlessWindow); ok {
		headless.SetOutputPath(app.config.Paths.Frames)
		headless.SetDumpInterval(app.config.Debug.FrameDumpEvery)
	}

	return window, true
}

// initializeAudio sets up the beeper, falling back to silence when no
// audio device is available
func (app *Application) initializeAudio(headless bool) {
	if headless || !app.config.Audio.Enabled {
		app.speaker = audio.NewNullSpeaker()
		return
	}

	beeper, err := audio.NewBeeper(app.config.Audio.SampleRate, app.config.Audio.Frequency)
	if err != nil {
		fmt.Printf("[APP_WARNING] Audio unavailable (%v), running silent\n", err)
		app.speaker = audio.NewNullSpeaker()
		return
	}
	app.speaker = beeper
}

// LoadROM loads a ROM file into the emulator
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	program, err := os.ReadFile(romPath)
	if err != nil {
		return &ApplicationError{
			Component: "rom",
			Operation: "read file",
			Err:       err,
		}
	}

	if err := app.bus.LoadROM(program); err != nil {
		return &ApplicationError{
			Component: "rom",
			Operation: "load program",
			Err:       err,
		}
	}

	app.romPath = romPath
	app.romLoaded = true
	app.keypadState = [input.NumKeys]bool{}

	// Update window title (if window exists)
	if app.window != nil {
		romName := filepath.Base(romPath)
		title := fmt.Sprintf("gochip8 - %s", romName)
		app.window.SetTitle(title)
	}

	// Start the emulator
	app.emulator.Reset()
	app.emulator.Start()

	return nil
}

// Run starts the main application loop
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	app.startTime = time.Now()
	app.lastFPSTime = time.Now()

	if app.config.Debug.EnableLogging {
		fmt.Printf("[APP_DEBUG] Starting emulator with %s backend...\n", app.graphicsBackend.GetName())
	}

	// Check if we're using Ebitengine backend
	if app.graphicsBackend.GetName() == "Ebitengine" && app.window != nil {
		// For Ebitengine, the game loop drives updates at 60Hz
		if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
			ebitengineWindow.SetEmulatorUpdateFunc(func() error {
				return app.tick()
			})
			return ebitengineWindow.Run()
		}
	}

	// Standard main application loop for other backends
	for app.running {
		if err := app.tick(); err != nil {
			if app.config.Debug.EnableLogging {
				fmt.Printf("[APP_ERROR] Tick error: %v\n", err)
			}
		}

		// Simple frame rate limiting for non-Ebitengine backends
		time.Sleep(16 * time.Millisecond) // ~60 FPS
	}

	if app.config.Debug.EnableLogging {
		fmt.Println("[APP_DEBUG] Emulator main loop ended")
	}
	return nil
}

// RunFrames runs a fixed number of 60Hz slices, used by headless mode
func (app *Application) RunFrames(frames int) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true
	for i := 0; i < frames && app.running; i++ {
		if err := app.tick(); err != nil {
			return err
		}
	}
	app.running = false
	return nil
}

// tick advances input, emulation, audio and rendering by one 60Hz slice
func (app *Application) tick() error {
	frameStartTime := time.Now()

	// Process input events
	if err := app.processInput(); err != nil {
		if app.config.Debug.EnableLogging {
			fmt.Printf("[APP_ERROR] Input processing error: %v\n", err)
		}
	}

	// Update emulator state
	emulatorStart := time.Now()
	if err := app.updateEmulator(); err != nil {
		return err
	}
	app.emulatorTime = time.Since(emulatorStart)

	// Drive the beeper from the sound timer
	if app.speaker != nil && app.romLoaded {
		app.speaker.SetActive(!app.paused && app.emulator.SoundActive())
	}

	// Render the frame
	renderStart := time.Now()
	if err := app.render(); err != nil {
		return err
	}
	app.renderTime = time.Since(renderStart)

	app.updatePerformanceMetrics(frameStartTime)

	// Check if window should close
	if app.window != nil && app.window.ShouldClose() {
		app.Stop()
	}

	return nil
}

// updateEmulator updates the emulator state
func (app *Application) updateEmulator() error {
	if !app.paused && app.romLoaded {
		if err := app.emulator.Update(); err != nil {
			return err
		}
	}
	return nil
}

// processInput processes input events from the graphics backend
func (app *Application) processInput() error {
	if app.window == nil {
		return nil
	}

	events := app.window.PollEvents()
	if len(events) == 0 {
		return nil
	}

	keysChanged := false
	keys := app.keypadState

	for _, event := range events {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			if app.handleQuitRequest() {
				return nil
			}

		case graphics.InputEventTypeKey:
			if event.HexKey < input.NumKeys && keys[event.HexKey] != event.Pressed {
				keys[event.HexKey] = event.Pressed
				keysChanged = true
			}

		default:
			app.handleControlEvent(event)
		}
	}

	if keysChanged && app.romLoaded {
		app.bus.SetKeys(keys)
		app.keypadState = keys
	}

	return nil
}

// handleControlEvent dispatches the emulator control keys: save states on
// the function keys, pause and mute toggles
func (app *Application) handleControlEvent(event graphics.InputEvent) {
	switch event.Type {
	case graphics.InputEventTypeSaveState:
		if err := app.SaveState(event.Slot); err != nil {
			fmt.Printf("Failed to save state %d: %v\n", event.Slot, err)
		} else {
			fmt.Printf("State saved to slot %d\n", event.Slot)
		}

	case graphics.InputEventTypeLoadState:
		if err := app.LoadState(event.Slot); err != nil {
			fmt.Printf("Failed to load state %d: %v\n", event.Slot, err)
		} else {
			fmt.Printf("State loaded from slot %d\n", event.Slot)
		}

	case graphics.InputEventTypePause:
		app.TogglePause()
		if app.paused {
			fmt.Println("⏸️  Paused")
		} else {
			fmt.Println("▶️  Resumed")
		}

	case graphics.InputEventTypeMute:
		app.ToggleMute()
	}
}

// handleQuitRequest requires an ESC double-tap within 3 seconds to quit.
// Returns true when the application is shutting down.
func (app *Application) handleQuitRequest() bool {
	now := time.Now()
	if !app.lastESCTime.IsZero() && now.Sub(app.lastESCTime) < 3*time.Second {
		fmt.Println("ESC double-tap confirmed - shutting down emulator...")
		app.Stop()
		return true
	}

	fmt.Println("ESC pressed - press ESC again within 3 seconds to quit")
	app.lastESCTime = now
	return false
}

// GetBus returns the bus for direct access (useful for testing and advanced control)
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// render renders the current frame
func (app *Application) render() error {
	// Skip rendering if no window available
	if app.window == nil {
		return nil
	}

	// Render emulator output (if ROM loaded)
	if app.romLoaded {
		if err := app.window.RenderFrame(app.emulator.GetFrameBuffer()); err != nil {
			return fmt.Errorf("failed to render frame: %v", err)
		}
	}

	return nil
}

// updatePerformanceMetrics provides basic performance tracking with minimal overhead
func (app *Application) updatePerformanceMetrics(frameStartTime time.Time) {
	now := time.Now()
	app.frameCount++

	frameTime := now.Sub(frameStartTime)

	// Initialize timing on first frame
	if app.lastFrameTime.IsZero() {
		app.lastFrameTime = frameStartTime
		app.lastFPSTime = now
		app.frameCountAtLastFPS = app.frameCount
		app.minFrameTime = frameTime
		app.maxFrameTime = frameTime
		app.lastFPSLog = now
		return
	}

	// Track min/max frame times
	if frameTime < app.minFrameTime {
		app.minFrameTime = frameTime
	}
	if frameTime > app.maxFrameTime {
		app.maxFrameTime = frameTime
	}

	// Update FPS calculation every second
	if now.Sub(app.lastFPSTime) >= time.Second {
		elapsed := now.Sub(app.lastFPSTime).Seconds()
		framesInPeriod := app.frameCount - app.frameCountAtLastFPS
		app.currentFPS = float64(framesInPeriod) / elapsed

		// Calculate average FPS since start
		totalElapsed := now.Sub(app.startTime).Seconds()
		if totalElapsed > 0 {
			app.averageFPS = float64(app.frameCount) / totalElapsed
		}

		app.lastFPSTime = now
		app.frameCountAtLastFPS = app.frameCount

		// Log FPS occasionally to reduce overhead
		if app.config.Debug.EnableLogging && now.Sub(app.lastFPSLog) >= 10*time.Second {
			log.Printf("[FPS] Current: %.1f FPS | Average: %.1f FPS | Frame: %d | Emulator: %.2fms | Render: %.2fms",
				app.currentFPS, app.averageFPS, app.frameCount,
				float64(app.emulatorTime.Nanoseconds())/1000000.0,
				float64(app.renderTime.Nanoseconds())/1000000.0)
			app.lastFPSLog = now
		}
	}

	app.lastFrameTime = now
}

// Stop stops the application
func (app *Application) Stop() {
	app.running = false
}

// Pause pauses the emulator
func (app *Application) Pause() {
	app.paused = true
}

// Resume resumes the emulator
func (app *Application) Resume() {
	app.paused = false
}

// TogglePause toggles pause state
func (app *Application) TogglePause() {
	app.paused = !app.paused
}

// ToggleMute toggles the beeper mute state
func (app *Application) ToggleMute() {
	app.muted = !app.muted
	if app.speaker != nil {
		app.speaker.SetMuted(app.muted)
	}
	if app.muted {
		fmt.Println("🔇 Muted")
	} else {
		fmt.Println("🔊 Unmuted")
	}
}

// IsMuted returns whether the beeper is muted
func (app *Application) IsMuted() bool {
	return app.muted
}

// SaveState saves the current emulator state
func (app *Application) SaveState(slot int) error {
	if !app.romLoaded {
		return errors.New("no ROM loaded")
	}

	return app.states.SaveState(app.bus, slot, app.romPath)
}

// LoadState loads a saved emulator state
func (app *Application) LoadState(slot int) error {
	if !app.romLoaded {
		return errors.New("no ROM loaded")
	}

	return app.states.LoadState(app.bus, slot, app.romPath)
}

// Reset resets the emulator
func (app *Application) Reset() {
	if app.bus != nil {
		app.bus.Reset()
	}
}

// IsRunning returns whether the application is running
func (app *Application) IsRunning() bool {
	return app.running
}

// IsPaused returns whether the emulator is paused
func (app *Application) IsPaused() bool {
	return app.paused
}

// GetFPS returns the current FPS
func (app *Application) GetFPS() float64 {
	return app.currentFPS
}

// GetFrameCount returns the total frame count
func (app *Application) GetFrameCount() uint64 {
	return app.frameCount
}

// GetUptime returns the application uptime
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetROMPath returns the currently loaded ROM path
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// ApplyDebugSettings applies debug settings to all components
func (app *Application) ApplyDebugSettings() {
	if app.config == nil || app.bus == nil {
		return
	}

	if app.config.Debug.CPUTracing {
		app.bus.EnableCPUDebug(true)
		fmt.Printf("[DEBUG] CPU trace logging enabled\n")
	}

	if app.config.Debug.InputDebugging {
		app.bus.EnableInputDebug(true)
		fmt.Printf("[DEBUG] Input debug logging enabled\n")
	}

	// CPU debugging has a very high performance impact, allow forcing it on
	if os.Getenv("GOCHIP8_DEBUG_CPU") == "1" {
		app.bus.EnableCPUDebug(true)
		fmt.Printf("[DEBUG] CPU debug logging enabled (GOCHIP8_DEBUG_CPU=1)\n")
	}
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	if app.config != nil && app.config.Debug.EnableLogging {
		fmt.Println("[APP_DEBUG] Cleaning up application resources...")
	}

	var lastErr error

	if app.speaker != nil {
		if err := app.speaker.Close(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Speaker cleanup error: %v\n", err)
		}
	}

	if app.emulator != nil {
		if err := app.emulator.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Emulator cleanup error: %v\n", err)
		}
	}

	// Clean up graphics window
	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Window cleanup error: %v\n", err)
		}
	}

	// Clean up graphics backend
	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Graphics backend cleanup error: %v\n", err)
		}
	}

	app.initialized = false
	if app.config != nil && app.config.Debug.EnableLogging {
		fmt.Println("[APP_DEBUG] Application cleanup complete")
	}

	return lastErr
}
