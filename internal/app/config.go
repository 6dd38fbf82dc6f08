// Package app provides configuration management for the CHIP-8 emulator.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gochip8/internal/display"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
	Resizable  bool `json:"resizable"`
	Scale      int  `json:"scale"` // display resolution multiplier
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	VSync      bool    `json:"vsync"`
	Filter     string  `json:"filter"`  // "nearest", "linear"
	Backend    string  `json:"backend"` // "ebitengine", "headless", "terminal"
	Gradient   bool    `json:"gradient"`
	Brightness float32 `json:"brightness"`
}

// AudioConfig contains audio configuration
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	Frequency  float64 `json:"frequency"` // beeper tone in Hz
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	ClockRate int `json:"clock_rate"` // CPU cycles per second
	TimerRate int `json:"timer_rate"` // delay/sound timer ticks per second
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	EnableLogging  bool `json:"enable_logging"`
	CPUTracing     bool `json:"cpu_tracing"`
	InputDebugging bool `json:"input_debugging"`
	FrameDumpEvery int  `json:"frame_dump_every"` // headless frame dumps, 0 disables
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs   string `json:"roms"`
	Frames string `json:"frames"` // headless frame dump directory
	States string `json:"states"` // save state directory
	Config string `json:"config"`
	Logs   string `json:"logs"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	config := &Config{
		Window: WindowConfig{
			Width:      display.Width * 10,
			Height:     display.Height * 10,
			Fullscreen: false,
			Resizable:  true,
			Scale:      10,
		},
		Video: VideoConfig{
			VSync:      true,
			Filter:     "nearest",
			Backend:    "ebitengine", // Default to Ebitengine for GUI mode
			Gradient:   false,
			Brightness: 1.0,
		},
		Audio: AudioConfig{
			Enabled:    true,
			SampleRate: 44100,
			Frequency:  440.0,
		},
		Emulation: EmulationConfig{
			ClockRate: 1000,
			TimerRate: 60,
		},
		Debug: DebugConfig{
			EnableLogging:  false,
			CPUTracing:     false,
			InputDebugging: false,
			FrameDumpEvery: 0,
		},
		Paths: PathsConfig{
			ROMs:   "./roms",
			Frames: "./frames",
			States: "./states",
			Config: "./config",
			Logs:   "./logs",
		},
		loaded: false,
	}

	return config
}

// LoadFromFile loads configuration from a JSON file
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist - save default config and return
		return c.SaveToFile(path)
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %v", err)
	}

	// Parse JSON
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %v", err)
	}

	// Validate configuration
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	// Ensure required directories exist
	if err := c.createDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %v", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// validate validates the configuration values
func (c *Config) validate() error {
	// Validate window configuration
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window dimensions: %dx%d", c.Window.Width, c.Window.Height)
	}

	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	// Validate video configuration
	if c.Video.Brightness < 0.1 || c.Video.Brightness > 3.0 {
		c.Video.Brightness = 1.0
	}

	// Validate audio configuration
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}

	if c.Audio.Frequency <= 0 {
		c.Audio.Frequency = 440.0
	}

	// Validate emulation configuration
	if c.Emulation.ClockRate <= 0 {
		c.Emulation.ClockRate = 1000
	}

	if c.Emulation.TimerRate <= 0 {
		c.Emulation.TimerRate = 60
	}

	if c.Debug.FrameDumpEvery < 0 {
		c.Debug.FrameDumpEvery = 0
	}

	return nil
}

// createDirectories creates required directories
func (c *Config) createDirectories() error {
	dirs := []string{
		c.Paths.ROMs,
		c.Paths.Frames,
		c.Paths.States,
		c.Paths.Config,
		c.Paths.Logs,
	}

	for _, dir := range dirs {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %v", dir, err)
			}
		}
	}

	return nil
}

// GetNativeResolution returns the native display resolution
func (c *Config) GetNativeResolution() (int, int) {
	return display.Width, display.Height
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	width, height := c.GetNativeResolution()
	return width * c.Window.Scale, height * c.Window.Scale
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	// Marshal to JSON and back to create deep copy
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig() // Return default config on error
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig() // Return default config on error
	}

	// Copy non-serialized fields
	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// UpdateWindow updates window configuration
func (c *Config) UpdateWindow(width, height int, fullscreen bool) {
	c.Window.Width = width
	c.Window.Height = height
	c.Window.Fullscreen = fullscreen
}

// UpdateEmulation updates emulation configuration
func (c *Config) UpdateEmulation(clockRate, timerRate int) {
	c.Emulation.ClockRate = clockRate
	c.Emulation.TimerRate = timerRate
}

// UpdateDebug updates debug configuration
func (c *Config) UpdateDebug(enableLogging, cpuTracing bool) {
	c.Debug.EnableLogging = enableLogging
	c.Debug.CPUTracing = cpuTracing
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/gochip8.json"
}

// GetDefaultConfigDir returns the default configuration directory
func GetDefaultConfigDir() string {
	return "./config"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}
