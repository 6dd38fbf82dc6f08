//go:build !headless
// +build !headless

package graphics

import (
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gochip8/internal/display"
)

// keyMappings maps host keys to the hex keypad. The left block of the
// keyboard mirrors the original keypad layout:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <->  q w e r
//	7 8 9 E        a s d f
//	A 0 B F        z x c v
var keyMappings = map[ebiten.Key]uint8{
	ebiten.Key1: 0x1,
	ebiten.Key2: 0x2,
	ebiten.Key3: 0x3,
	ebiten.Key4: 0xC,
	ebiten.KeyQ: 0x4,
	ebiten.KeyW: 0x5,
	ebiten.KeyE: 0x6,
	ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7,
	ebiten.KeyS: 0x8,
	ebiten.KeyD: 0x9,
	ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA,
	ebiten.KeyX: 0x0,
	ebiten.KeyC: 0xB,
	ebiten.KeyV: 0xF,
}

// slotKeys maps the function keys F1-F10 to save state slots 0-9.
// Plain press saves, Shift loads.
var slotKeys = [...]ebiten.Key{
	ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4, ebiten.KeyF5,
	ebiten.KeyF6, ebiten.KeyF7, ebiten.KeyF8, ebiten.KeyF9, ebiten.KeyF10,
}

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend            *EbitengineBackend
	title              string
	width              int
	height             int
	game               *EbitengineGame
	running            bool
	events             []InputEvent
	emulatorUpdateFunc func() error
}

// EbitengineGame implements ebiten.Game for the CHIP-8 machine
type EbitengineGame struct {
	window       *EbitengineWindow
	frameImage   *ebiten.Image
	colorizer    *Colorizer
	windowWidth  int
	windowHeight int
	drawCount    int // For limiting debug logs

	// Reusable image buffer to prevent per-frame allocations
	imageBuffer *image.RGBA
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.Headless {
		return nil, fmt.Errorf("cannot create window in headless mode")
	}

	game := &EbitengineGame{
		windowWidth:  width,
		windowHeight: height,
		frameImage:   ebiten.NewImage(display.Width, display.Height),
		colorizer:    NewColorizer(b.config.Gradient, 1.0),
		imageBuffer:  image.NewRGBA(image.Rect(0, 0, display.Width, display.Height)),
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}

	game.window = window
	b.game = game

	// Configure Ebitengine
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if b.config.VSync {
		ebiten.SetVsyncEnabled(true)
	} else {
		ebiten.SetVsyncEnabled(false)
	}

	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	// Nearest-neighbor keeps the large pixels crisp; linear softens them
	if b.config.Filter == "linear" {
		ebiten.SetScreenFilterEnabled(true)
	} else {
		ebiten.SetScreenFilterEnabled(false)
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// EbitengineWindow implementation

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// PollEvents processes input events and returns them
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil // Clear events after returning them
	return events
}

// RenderFrame renders a CHIP-8 frame buffer to the window
func (w *EbitengineWindow) RenderFrame(frame FrameBuffer) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	pixels := w.game.colorizer.ProcessFrame(frame)

	img := w.game.imageBuffer // Reuse pre-allocated buffer
	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			pixel := pixels[y*display.Width+x]
			r := uint8((pixel >> 16) & 0xFF)
			g := uint8((pixel >> 8) & 0xFF)
			b := uint8(pixel & 0xFF)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	w.game.frameImage.ReplacePixels(img.Pix)
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	return ebiten.RunGame(w.game)
}

// SetEmulatorUpdateFunc sets the emulator update function
func (w *EbitengineWindow) SetEmulatorUpdateFunc(updateFunc func() error) {
	w.emulatorUpdateFunc = updateFunc
}

// EbitengineGame implementation

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	// Process keyboard input
	g.processInput()

	// Update the emulator if function is provided
	if g.window.emulatorUpdateFunc != nil {
		if err := g.window.emulatorUpdateFunc(); err != nil {
			// Log error but don't stop the game
			log.Printf("[Ebitengine] Emulator update error: %v", err)
		}
	}

	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0, G: 0, B: 0, A: 255})

	if g.frameImage == nil {
		return
	}

	op := &ebiten.DrawImageOptions{}

	// Scale to fit the window while maintaining the 2:1 aspect ratio
	scaleX := float64(g.windowWidth) / float64(display.Width)
	scaleY := float64(g.windowHeight) / float64(display.Height)

	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}

	// Center the image
	offsetX := (float64(g.windowWidth) - float64(display.Width)*scale) / 2
	offsetY := (float64(g.windowHeight) - float64(display.Height)*scale) / 2

	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)

	screen.DrawImage(g.frameImage, op)

	g.drawCount++
	if g.drawCount%1800 == 0 { // Log every 1800 frames (about once per 30 seconds)
		log.Printf("[Ebitengine] Drawing frame %d - %dx%d scaled %.2fx at offset (%.1f,%.1f)",
			g.drawCount, display.Width, display.Height, scale, offsetX, offsetY)
	}
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// processInput processes keyboard input
func (g *EbitengineGame) processInput() {
	if g.window == nil {
		return
	}

	var events []InputEvent

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		events = append(events, InputEvent{
			Type:    InputEventTypeQuit,
			Pressed: true,
		})
	}

	// Save state slots on the function keys, Shift swaps save for load
	shiftHeld := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)
	for slot, slotKey := range slotKeys {
		if inpututil.IsKeyJustPressed(slotKey) {
			eventType := InputEventTypeSaveState
			if shiftHeld {
				eventType = InputEventTypeLoadState
			}
			events = append(events, InputEvent{
				Type:    eventType,
				Slot:    slot,
				Pressed: true,
			})
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		events = append(events, InputEvent{
			Type:    InputEventTypePause,
			Pressed: true,
		})
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		events = append(events, InputEvent{
			Type:    InputEventTypeMute,
			Pressed: true,
		})
	}

	// Edge-based key change detection for the keypad mapping
	for ebitenKey, hexKey := range keyMappings {
		if inpututil.IsKeyJustPressed(ebitenKey) {
			events = append(events, InputEvent{
				Type:    InputEventTypeKey,
				HexKey:  hexKey,
				Pressed: true,
			})
		} else if inpututil.IsKeyJustReleased(ebitenKey) {
			events = append(events, InputEvent{
				Type:    InputEventTypeKey,
				HexKey:  hexKey,
				Pressed: false,
			})
		}
	}

	// Store events for retrieval by PollEvents
	g.window.events = append(g.window.events, events...)
}
