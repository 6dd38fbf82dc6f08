// Package main implements the gochip8 CHIP-8 emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gochip8/internal/app"
	"gochip8/internal/version"
)

func main() {
	// Parse command line flags
	var (
		romFile     = flag.String("rom", "", "Path to CHIP-8 ROM file (optional for GUI mode)")
		configFile  = flag.String("config", "", "Path to configuration file")
		clockRate   = flag.Int("clock", 0, "CPU clock rate in Hz (0 uses the configured rate)")
		debug       = flag.Bool("debug", false, "Enable debug mode")
		nogui       = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		gradient    = flag.Bool("gradient", false, "Color lit pixels with a hue gradient instead of white")
		frames      = flag.Int("frames", 120, "Number of frames to run in headless mode")
		dumpEvery   = flag.Int("dump", 0, "Dump every Nth frame as PPM in headless mode (0 disables)")
		help        = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVersion {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	// Set up graceful shutdown
	setupGracefulShutdown()

	fmt.Println("🎮 gochip8 - Go CHIP-8 Emulator Starting...")

	// Determine config file path
	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	if *nogui {
		fmt.Println("🖥️  Headless mode requested")
	}

	// Create application with command line overrides
	application, err := app.NewApplicationWithOptions(configPath, app.Options{
		Headless:       *nogui,
		ClockRate:      *clockRate,
		Gradient:       *gradient,
		FrameDumpEvery: *dumpEvery,
	})
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	config := application.GetConfig()
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()

	// Apply debug settings
	if *debug {
		config.UpdateDebug(true, true)
		application.ApplyDebugSettings()
		fmt.Println("🐛 Debug mode enabled")
	}

	// Load ROM if specified
	if *romFile != "" {
		fmt.Printf("📁 Loading ROM: %s\n", *romFile)
		if err := application.LoadROM(*romFile); err != nil {
			log.Fatalf("Failed to load ROM: %v", err)
		}
		fmt.Println("✅ ROM loaded successfully")
	}

	if *nogui {
		// Run in headless mode (for testing or automation)
		if *romFile == "" {
			log.Fatal("ROM file required for headless mode")
		}
		runHeadlessMode(application, *frames)
	} else {
		// Run full GUI application
		fmt.Println("🖥️  Starting GUI mode...")
		if err := runGUIMode(application); err != nil {
			log.Fatalf("GUI mode failed: %v", err)
		}
	}

	fmt.Println("👋 Emulator shutting down...")
}

// runGUIMode runs the full GUI application
func runGUIMode(application *app.Application) error {
	// Display startup information
	config := application.GetConfig()
	windowWidth, windowHeight := config.GetWindowResolution()
	fmt.Printf("   Window: %dx%d (Scale: %dx)\n", windowWidth, windowHeight, config.Window.Scale)
	fmt.Printf("   Audio: %s (%d Hz, %.0f Hz tone)\n",
		enabledString(config.Audio.Enabled),
		config.Audio.SampleRate,
		config.Audio.Frequency)
	fmt.Printf("   Clock: %d Hz, Timers: %d Hz\n",
		config.Emulation.ClockRate,
		config.Emulation.TimerRate)
	fmt.Printf("   Video: %s, VSync: %s\n",
		config.Video.Filter,
		enabledString(config.Video.VSync))

	// Start the application
	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %v", err)
	}

	// Display shutdown statistics
	fmt.Printf("📊 Session Statistics:\n")
	fmt.Printf("   Frames rendered: %d\n", application.GetFrameCount())
	fmt.Printf("   Session time: %v\n", application.GetUptime())
	fmt.Printf("   Average FPS: %.1f\n", application.GetFPS())

	return nil
}

// runHeadlessMode runs the emulator without GUI (for testing/automation)
func runHeadlessMode(application *app.Application, frames int) {
	config := application.GetConfig()
	fmt.Printf("Running %d frames at %d Hz...\n", frames, config.Emulation.ClockRate)
	if config.Debug.FrameDumpEvery > 0 {
		fmt.Printf("📸 Dumping every %d frames to %s\n", config.Debug.FrameDumpEvery, config.Paths.Frames)
	}

	if err := application.RunFrames(frames); err != nil {
		log.Fatalf("Headless run failed: %v", err)
	}

	fmt.Println("✅ Headless mode complete")
	fmt.Printf("   Frames run: %d\n", application.GetFrameCount())
	fmt.Printf("   Cycles executed: %d\n", application.GetBus().GetCycleCount())
}

// setupGracefulShutdown sets up signal handling for graceful shutdown
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\n🛑 Interrupt received, shutting down gracefully...")
		os.Exit(0)
	}()
}

// enabledString returns "enabled" or "disabled" based on boolean value
func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printUsage() {
	fmt.Println("gochip8 - Go CHIP-8 Emulator")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  A CHIP-8 virtual machine written in Go. Features the classic 64x32")
	fmt.Println("  XOR display, Ebitengine graphics, square wave audio, save states,")
	fmt.Println("  and headless frame dumping for automation.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gochip8 [options]                      # Start GUI mode without ROM")
	fmt.Println("  gochip8 -rom <file> [options]          # Start with ROM loaded")
	fmt.Println("  gochip8 -nogui -rom <file> [options]   # Run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  gochip8 -rom game.ch8                  # Start with ROM loaded")
	fmt.Println("  gochip8 -rom game.ch8 -gradient        # Color the display by column")
	fmt.Println("  gochip8 -rom game.ch8 -clock 700       # Slow the CPU to 700 Hz")
	fmt.Println("  gochip8 -config custom.json            # Use custom configuration")
	fmt.Println("  gochip8 -nogui -rom test.ch8 -dump 30  # Headless, dump every 30th frame")
	fmt.Println()
	fmt.Println("CONTROLS (Default):")
	fmt.Println("  CHIP-8 Keypad:")
	fmt.Println("    1 2 3 4   maps to   1 2 3 C")
	fmt.Println("    Q W E R             4 5 6 D")
	fmt.Println("    A S D F             7 8 9 E")
	fmt.Println("    Z X C V             A 0 B F")
	fmt.Println()
	fmt.Println("  Special Keys:")
	fmt.Println("    Escape (2x)       - Quit (double-tap within 3 seconds)")
	fmt.Println("    F1-F10            - Save State (slots 1-10)")
	fmt.Println("    Shift+F1-F10      - Load State")
	fmt.Println("    P                 - Pause / Resume")
	fmt.Println("    M                 - Mute / Unmute")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  Config file: ./config/gochip8.json")
	fmt.Println("  ROMs:        ./roms/")
	fmt.Println("  Save States: ./states/")
	fmt.Println("  Frame Dumps: ./frames/")
	fmt.Println()
	fmt.Println("SUPPORTED FORMATS:")
	fmt.Println("  - Raw CHIP-8 images (.ch8), up to 3584 bytes, loaded at 0x200")
	fmt.Println()
	fmt.Println("For more information, visit the project documentation.")
}
