// Package cpu implements the CHIP-8 instruction interpreter: the register
// file, call stack, interval timers and the fetch-decode-execute cycle.
package cpu

import (
	"math/rand"

	"gochip8/internal/display"
)

// CPU constants
const (
	// ProgramStart is the initial program counter value
	ProgramStart = 0x200

	// OpcodeSize is the size of every instruction in bytes
	OpcodeSize = 2

	// NumRegisters is the number of general-purpose registers
	NumRegisters = 16

	// flagRegister is VF, shared output for carry, borrow and collision
	flagRegister = 0xF
)

// MemoryBus defines the interface for CPU memory access
type MemoryBus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// DisplayBus defines the interface for sprite drawing
type DisplayBus interface {
	Clear()
	XORPlot(x, y int, bit uint8) bool
}

// KeypadBus defines the interface for keyboard state queries
type KeypadBus interface {
	IsPressed(key uint8) bool
	FirstPressed() (uint8, bool)
}

// pcKind selects how the program counter advances after an instruction
type pcKind int

const (
	pcNext pcKind = iota // advance by one instruction
	pcSkip               // advance by two instructions
	pcJump               // set to an absolute address
)

// pcAction is the tagged next-program-counter variant returned by every
// opcode handler. Keeping the control transfer in one dispatch step avoids
// double-advancement bugs in handlers.
type pcAction struct {
	kind   pcKind
	target uint16
}

func next() pcAction             { return pcAction{kind: pcNext} }
func skip() pcAction             { return pcAction{kind: pcSkip} }
func jumpTo(addr uint16) pcAction { return pcAction{kind: pcJump, target: addr} }

func skipIf(condition bool) pcAction {
	if condition {
		return skip()
	}
	return next()
}

// CPU represents the CHIP-8 processor state
type CPU struct {
	// Register file
	V  [NumRegisters]uint8 // general registers, VF doubles as the flag output
	I  uint16              // index register
	PC uint16              // program counter
	DT uint8               // delay timer
	ST uint8               // sound timer

	stack *Stack

	// Memory-mapped collaborators
	memory  MemoryBus
	display DisplayBus
	keypad  KeypadBus

	// Input-wait latch: while set, Cycle neither fetches nor executes and
	// TickTimers is a no-op, until the keypad reports a pressed key
	waitingForKey bool
	waitRegister  uint8

	// Random byte source for Cxkk, swappable in tests
	randByte func() uint8

	cycles uint64

	// Debug and loop detection fields
	enableDebugLogging  bool
	enableLoopDetection bool
	lastPC              uint16
	pcStayCount         int
}

// New creates a new CPU wired to its memory bank, display buffer and keypad
func New(memory MemoryBus, disp DisplayBus, keypad KeypadBus) *CPU {
	cpu := &CPU{
		memory:   memory,
		display:  disp,
		keypad:   keypad,
		stack:    NewStack(),
		PC:       ProgramStart,
		randByte: func() uint8 { return uint8(rand.Intn(256)) },
	}
	return cpu
}

// Reset restores the power-on register state. Memory contents are owned by
// the memory bank and reset separately.
func (cpu *CPU) Reset() {
	cpu.V = [NumRegisters]uint8{}
	cpu.I = 0
	cpu.PC = ProgramStart
	cpu.DT = 0
	cpu.ST = 0
	cpu.stack.Reset()
	cpu.waitingForKey = false
	cpu.waitRegister = 0
	cpu.cycles = 0
	cpu.lastPC = 0
	cpu.pcStayCount = 0
}

// Cycle executes one interpreter cycle.
//
// While the input-wait latch is set the keypad is scanned instead: if a key
// is down, its index lands in the latched register and execution resumes;
// otherwise the cycle is a no-op and the program counter does not move.
func (cpu *CPU) Cycle() {
	if cpu.waitingForKey {
		key, ok := cpu.keypad.FirstPressed()
		if !ok {
			return
		}
		cpu.V[cpu.waitRegister] = key
		cpu.waitingForKey = false
	}

	opcode := cpu.fetchOpcode()

	if cpu.enableLoopDetection {
		cpu.detectInfiniteLoop(cpu.PC, opcode)
	}
	if cpu.enableDebugLogging {
		cpu.logInstruction(cpu.PC, opcode)
	}

	action := cpu.execute(opcode)

	switch action.kind {
	case pcNext:
		cpu.PC += OpcodeSize
	case pcSkip:
		cpu.PC += OpcodeSize * 2
	case pcJump:
		cpu.PC = action.target
	}

	cpu.cycles++
}

// fetchOpcode reads the two bytes at PC, big-endian combined
func (cpu *CPU) fetchOpcode() uint16 {
	return uint16(cpu.memory.Read(cpu.PC))<<8 | uint16(cpu.memory.Read(cpu.PC+1))
}

// execute decodes the opcode into nibbles and dispatches it. The fully
// specified patterns (00E0, 00EE) are matched before the families they
// overlap with, and the 8/E/F families select on their trailing nibbles.
// Unmatched opcodes are defined as no-ops, never a crash.
func (cpu *CPU) execute(opcode uint16) pcAction {
	var (
		x   = uint8(opcode>>8) & 0x0F
		y   = uint8(opcode>>4) & 0x0F
		n   = uint8(opcode) & 0x0F
		kk  = uint8(opcode)
		nnn = opcode & 0x0FFF
	)

	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			return cpu.opClearDisplay()
		case 0x00EE:
			return cpu.opReturn()
		}
	case 0x1000:
		return cpu.opJump(nnn)
	case 0x2000:
		return cpu.opCall(nnn)
	case 0x3000:
		return skipIf(cpu.V[x] == kk)
	case 0x4000:
		return skipIf(cpu.V[x] != kk)
	case 0x5000:
		if n == 0x0 {
			return skipIf(cpu.V[x] == cpu.V[y])
		}
	case 0x6000:
		return cpu.opLoadByte(x, kk)
	case 0x7000:
		return cpu.opAddByte(x, kk)
	case 0x8000:
		switch n {
		case 0x0:
			return cpu.opLoadRegister(x, y)
		case 0x1:
			return cpu.opOr(x, y)
		case 0x2:
			return cpu.opAnd(x, y)
		case 0x3:
			return cpu.opXor(x, y)
		case 0x4:
			return cpu.opAddCarry(x, y)
		case 0x5:
			return cpu.opSubBorrow(x, y)
		case 0x6:
			return cpu.opShiftRight(x)
		case 0x7:
			return cpu.opSubReverse(x, y)
		case 0xE:
			return cpu.opShiftLeft(x)
		}
	case 0x9000:
		if n == 0x0 {
			return skipIf(cpu.V[x] != cpu.V[y])
		}
	case 0xA000:
		return cpu.opLoadIndex(nnn)
	case 0xB000:
		return cpu.opJumpOffset(nnn)
	case 0xC000:
		return cpu.opRandom(x, kk)
	case 0xD000:
		return cpu.opDrawSprite(x, y, n)
	case 0xE000:
		switch kk {
		case 0x9E:
			return skipIf(cpu.keypad.IsPressed(cpu.V[x]))
		case 0xA1:
			return skipIf(!cpu.keypad.IsPressed(cpu.V[x]))
		}
	case 0xF000:
		switch kk {
		case 0x07:
			return cpu.opLoadDelayTimer(x)
		case 0x0A:
			return cpu.opWaitKey(x)
		case 0x15:
			return cpu.opSetDelayTimer(x)
		case 0x18:
			return cpu.opSetSoundTimer(x)
		case 0x1E:
			return cpu.opAddIndex(x)
		case 0x29:
			return cpu.opLoadGlyph(x)
		case 0x33:
			return cpu.opStoreBCD(x)
		case 0x55:
			return cpu.opStoreRegisters(x)
		case 0x65:
			return cpu.opLoadRegisters(x)
		}
	}

	return next()
}

// TickTimers decrements the delay and sound timers toward zero. Timers
// freeze while the interpreter waits on the input latch.
func (cpu *CPU) TickTimers() {
	if cpu.waitingForKey {
		return
	}
	if cpu.DT > 0 {
		cpu.DT--
	}
	if cpu.ST > 0 {
		cpu.ST--
	}
}

// SoundActive reports whether the sound timer is running. The audio driver
// polls this; the interpreter itself never produces sound.
func (cpu *CPU) SoundActive() bool {
	return cpu.ST > 0
}

// WaitingForKey reports whether the input-wait latch is set
func (cpu *CPU) WaitingForKey() bool {
	return cpu.waitingForKey
}

// WaitRegister returns the register index latched by a pending input wait
func (cpu *CPU) WaitRegister() uint8 {
	return cpu.waitRegister
}

// SetWaitState restores the input-wait latch. Save states use this to
// reconstruct a machine frozen mid Fx0A.
func (cpu *CPU) SetWaitState(waiting bool, register uint8) {
	cpu.waitingForKey = waiting
	cpu.waitRegister = register & 0x0F
}

// RestoreStack replaces the call stack contents, oldest address first
func (cpu *CPU) RestoreStack(addresses []uint16) {
	cpu.stack.Reset()
	for _, address := range addresses {
		cpu.stack.Push(address)
	}
}

// StackAddresses returns a copy of the pending return addresses, oldest first
func (cpu *CPU) StackAddresses() []uint16 {
	return cpu.stack.Addresses()
}

// Cycles returns the number of executed interpreter cycles
func (cpu *CPU) Cycles() uint64 {
	return cpu.cycles
}

// StackDepth returns the number of pending subroutine calls
func (cpu *CPU) StackDepth() int {
	return cpu.stack.Depth()
}

// SetRandFunc replaces the random byte source used by Cxkk
func (cpu *CPU) SetRandFunc(fn func() uint8) {
	cpu.randByte = fn
}

// wrapX reduces a horizontal coordinate modulo the display width
func wrapX(x int) int {
	return x % display.Width
}

// wrapY reduces a vertical coordinate modulo the display height
func wrapY(y int) int {
	return y % display.Height
}
