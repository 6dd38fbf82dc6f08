// Package app save state functionality for the CHIP-8 emulator.
package app

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gochip8/internal/bus"
	"gochip8/internal/cpu"
	"gochip8/internal/display"
	"gochip8/internal/memory"
)

// StateManager manages save states
type StateManager struct {
	saveDirectory string
	maxSlots      int
	initialized   bool
}

// SaveState represents a saved machine state. The CHIP-8 machine is small
// enough to serialize completely: registers, call stack, the full 4KB memory
// bank and the display cells.
type SaveState struct {
	// Metadata
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	ROMPath     string    `json:"rom_path"`
	ROMChecksum string    `json:"rom_checksum"`
	SlotNumber  int       `json:"slot_number"`
	Description string    `json:"description"`

	// Machine state
	CPUState     CPUStateData `json:"cpu_state"`
	MemoryState  MemoryData   `json:"memory_state"`
	DisplayState DisplayData  `json:"display_state"`

	// Counters, recorded for display only. Restoring them would make the
	// loaded machine claim work it never executed.
	CycleCount     uint64 `json:"cycle_count"`
	TimerTickCount uint64 `json:"timer_tick_count"`
}

// CPUStateData represents interpreter state for save files
type CPUStateData struct {
	PC           uint16   `json:"pc"`
	I            uint16   `json:"i"`
	V            []uint8  `json:"v"`
	DT           uint8    `json:"dt"`
	ST           uint8    `json:"st"`
	Stack        []uint16 `json:"stack"`
	Waiting      bool     `json:"waiting"`
	WaitRegister uint8    `json:"wait_register"`
}

// MemoryData represents the memory bank for save files. The font region
// lives in ordinary RAM, so the whole bank is captured as one block.
type MemoryData struct {
	RAMData []uint8 `json:"ram_data"`
}

// DisplayData represents the display cells for save files, one byte per
// pixel in row-major order
type DisplayData struct {
	Cells []uint8 `json:"cells"`
}

// StateSlotInfo contains information about a save state slot
type StateSlotInfo struct {
	SlotNumber  int       `json:"slot_number"`
	Used        bool      `json:"used"`
	Timestamp   time.Time `json:"timestamp"`
	ROMPath     string    `json:"rom_path"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	FileSize    int64     `json:"file_size"`
}

// NewStateManager creates a new state manager
func NewStateManager(saveDirectory string) *StateManager {
	manager := &StateManager{
		saveDirectory: saveDirectory,
		maxSlots:      10,
		initialized:   false,
	}

	if err := manager.initialize(); err != nil {
		// Log error but continue
		fmt.Printf("Warning: State manager initialization failed: %v\n", err)
	}

	return manager
}

// initialize initializes the state manager
func (sm *StateManager) initialize() error {
	if err := os.MkdirAll(sm.saveDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %v", err)
	}

	sm.initialized = true
	return nil
}

// SaveState saves the current machine state to a slot
func (sm *StateManager) SaveState(b *bus.Bus, slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}

	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}

	if b == nil {
		return fmt.Errorf("bus cannot be nil")
	}

	saveState := sm.captureState(b, romPath)
	saveState.SlotNumber = slot
	saveState.Description = fmt.Sprintf("Auto-save %s", time.Now().Format("2006-01-02 15:04:05"))

	filePath := sm.getSlotFilePath(slot, romPath)

	if err := sm.saveToFile(saveState, filePath); err != nil {
		return fmt.Errorf("failed to save state: %v", err)
	}

	return nil
}

// LoadState loads a saved state from a slot
func (sm *StateManager) LoadState(b *bus.Bus, slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}

	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}

	if b == nil {
		return fmt.Errorf("bus cannot be nil")
	}

	filePath := sm.getSlotFilePath(slot, romPath)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("save state not found in slot %d", slot)
	}

	saveState, err := sm.loadFromFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to load state: %v", err)
	}

	if err := sm.validateSaveState(saveState, romPath); err != nil {
		return fmt.Errorf("invalid save state: %v", err)
	}

	if err := sm.restoreState(b, saveState); err != nil {
		return fmt.Errorf("failed to restore state: %v", err)
	}

	return nil
}

// captureState snapshots the complete machine state
func (sm *StateManager) captureState(b *bus.Bus, romPath string) *SaveState {
	saveState := &SaveState{
		Version:        "1.0",
		Timestamp:      time.Now(),
		ROMPath:        romPath,
		ROMChecksum:    sm.calculateROMChecksum(romPath),
		CycleCount:     b.GetCycleCount(),
		TimerTickCount: b.GetTimerTickCount(),
	}

	c := b.CPU
	registers := make([]uint8, cpu.NumRegisters)
	copy(registers, c.V[:])
	saveState.CPUState = CPUStateData{
		PC:           c.PC,
		I:            c.I,
		V:            registers,
		DT:           c.DT,
		ST:           c.ST,
		Stack:        c.StackAddresses(),
		Waiting:      c.WaitingForKey(),
		WaitRegister: c.WaitRegister(),
	}

	ram := make([]uint8, memory.Size)
	for address := 0; address < memory.Size; address++ {
		ram[address] = b.Memory.Read(uint16(address))
	}
	saveState.MemoryState = MemoryData{RAMData: ram}

	frame := b.FrameBuffer()
	saveState.DisplayState = DisplayData{Cells: frame[:]}

	return saveState
}

// restoreState rebuilds the machine from a save state
func (sm *StateManager) restoreState(b *bus.Bus, state *SaveState) error {
	if len(state.MemoryState.RAMData) != memory.Size {
		return fmt.Errorf("memory image has %d bytes, want %d", len(state.MemoryState.RAMData), memory.Size)
	}
	if len(state.DisplayState.Cells) != display.Width*display.Height {
		return fmt.Errorf("display image has %d cells, want %d", len(state.DisplayState.Cells), display.Width*display.Height)
	}
	if len(state.CPUState.V) != cpu.NumRegisters {
		return fmt.Errorf("register file has %d entries, want %d", len(state.CPUState.V), cpu.NumRegisters)
	}
	if len(state.CPUState.Stack) > cpu.StackDepth {
		return fmt.Errorf("call stack has %d entries, limit %d", len(state.CPUState.Stack), cpu.StackDepth)
	}

	b.Reset()

	for address, value := range state.MemoryState.RAMData {
		b.Memory.Write(uint16(address), value)
	}

	b.Display.Clear()
	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			if state.DisplayState.Cells[y*display.Width+x] != 0 {
				b.Display.XORPlot(x, y, 1)
			}
		}
	}

	c := b.CPU
	copy(c.V[:], state.CPUState.V)
	c.I = state.CPUState.I
	c.PC = state.CPUState.PC
	c.DT = state.CPUState.DT
	c.ST = state.CPUState.ST
	c.RestoreStack(state.CPUState.Stack)
	c.SetWaitState(state.CPUState.Waiting, state.CPUState.WaitRegister)

	return nil
}

// saveToFile saves a state to a file
func (sm *StateManager) saveToFile(state *SaveState, filePath string) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %v", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %v", err)
	}

	return nil
}

// loadFromFile loads a state from a file
func (sm *StateManager) loadFromFile(filePath string) (*SaveState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}

	var state SaveState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %v", err)
	}

	return &state, nil
}

// validateSaveState validates a loaded save state
func (sm *StateManager) validateSaveState(state *SaveState, currentROMPath string) error {
	if state.Version == "" {
		return fmt.Errorf("missing version information")
	}

	// Compare ROM images by checksum so a moved file still loads. The path
	// check only applies when neither checksum could be computed.
	currentChecksum := sm.calculateROMChecksum(currentROMPath)
	if state.ROMChecksum != "" && currentChecksum != "" {
		if state.ROMChecksum != currentChecksum {
			return fmt.Errorf("save state is for a different ROM")
		}
	} else if state.ROMPath != currentROMPath {
		return fmt.Errorf("save state is for a different ROM")
	}

	return nil
}

// getSlotFilePath generates the file path for a save slot
func (sm *StateManager) getSlotFilePath(slot int, romPath string) string {
	romName := filepath.Base(romPath)
	romNameWithoutExt := romName[:len(romName)-len(filepath.Ext(romName))]
	fileName := fmt.Sprintf("%s_slot_%d.save", romNameWithoutExt, slot)
	return filepath.Join(sm.saveDirectory, fileName)
}

// calculateROMChecksum hashes the ROM image for save state verification.
// Returns an empty string when the file cannot be read.
func (sm *StateManager) calculateROMChecksum(romPath string) string {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// GetSlotInfo returns information about all save slots
func (sm *StateManager) GetSlotInfo(romPath string) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)

	for i := 0; i < sm.maxSlots; i++ {
		slotInfo := StateSlotInfo{
			SlotNumber: i,
			Used:       false,
		}

		filePath := sm.getSlotFilePath(i, romPath)
		if stat, err := os.Stat(filePath); err == nil {
			slotInfo.Used = true
			slotInfo.FilePath = filePath
			slotInfo.FileSize = stat.Size()
			slotInfo.Timestamp = stat.ModTime()

			if state, err := sm.loadFromFile(filePath); err == nil {
				slotInfo.ROMPath = state.ROMPath
				slotInfo.Description = state.Description
				slotInfo.Timestamp = state.Timestamp
			}
		}

		slots[i] = slotInfo
	}

	return slots
}

// DeleteState deletes a save state from a slot
func (sm *StateManager) DeleteState(slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}

	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d", slot)
	}

	filePath := sm.getSlotFilePath(slot, romPath)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("save state not found in slot %d", slot)
	}

	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete save state: %v", err)
	}

	return nil
}

// HasSaveState checks if a save state exists in a slot
func (sm *StateManager) HasSaveState(slot int, romPath string) bool {
	if slot < 0 || slot >= sm.maxSlots {
		return false
	}

	filePath := sm.getSlotFilePath(slot, romPath)
	_, err := os.Stat(filePath)
	return err == nil
}

// GetMaxSlots returns the maximum number of save slots
func (sm *StateManager) GetMaxSlots() int {
	return sm.maxSlots
}

// SetMaxSlots sets the maximum number of save slots
func (sm *StateManager) SetMaxSlots(slots int) {
	if slots > 0 {
		sm.maxSlots = slots
	}
}

// GetSaveDirectory returns the save directory path
func (sm *StateManager) GetSaveDirectory() string {
	return sm.saveDirectory
}

// SetSaveDirectory sets the save directory path
func (sm *StateManager) SetSaveDirectory(directory string) error {
	sm.saveDirectory = directory
	return sm.initialize()
}

// ExportState exports the current state to a specific file
func (sm *StateManager) ExportState(b *bus.Bus, filePath string, romPath string) error {
	if b == nil {
		return fmt.Errorf("bus cannot be nil")
	}

	saveState := sm.captureState(b, romPath)
	saveState.SlotNumber = -1 // Export doesn't use slots
	saveState.Description = fmt.Sprintf("Export %s", time.Now().Format("2006-01-02 15:04:05"))

	return sm.saveToFile(saveState, filePath)
}

// ImportState imports a save state from a specific file
func (sm *StateManager) ImportState(b *bus.Bus, filePath string, romPath string) error {
	saveState, err := sm.loadFromFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to import state: %v", err)
	}

	if err := sm.validateSaveState(saveState, romPath); err != nil {
		return fmt.Errorf("invalid imported state: %v", err)
	}

	return sm.restoreState(b, saveState)
}

// Cleanup cleans up state manager resources
func (sm *StateManager) Cleanup() error {
	sm.initialized = false
	return nil
}

// GetStateManagerStats returns statistics about the state manager
func (sm *StateManager) GetStateManagerStats(romPath string) StateManagerStats {
	slots := sm.GetSlotInfo(romPath)

	var usedSlots int
	var totalSize int64
	for _, slot := range slots {
		if slot.Used {
			usedSlots++
			totalSize += slot.FileSize
		}
	}

	return StateManagerStats{
		MaxSlots:      sm.maxSlots,
		UsedSlots:     usedSlots,
		FreeSlots:     sm.maxSlots - usedSlots,
		TotalSize:     totalSize,
		SaveDirectory: sm.saveDirectory,
		Initialized:   sm.initialized,
	}
}

// StateManagerStats contains state manager statistics
type StateManagerStats struct {
	MaxSlots      int    `json:"max_slots"`
	UsedSlots     int    `json:"used_slots"`
	FreeSlots     int    `json:"free_slots"`
	TotalSize     int64  `json:"total_size"`
	SaveDirectory string `json:"save_directory"`
	Initialized   bool   `json:"initialized"`
}
