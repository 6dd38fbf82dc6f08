package cpu

import (
	"log"

	rchip8 "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// EnableDebugLogging enables per-cycle instruction logging
func (cpu *CPU) EnableDebugLogging(enable bool) {
	cpu.enableDebugLogging = enable
}

// EnableLoopDetection enables detection of tight PC loops
func (cpu *CPU) EnableLoopDetection(enable bool) {
	cpu.enableLoopDetection = enable
}

// Mnemonic returns the instruction name for an opcode, looked up in the
// retrogolib CHIP-8 opcode tables the same way the disassembler matches
// them: per first nibble, mask against value. Unknown opcodes decode to "???".
func Mnemonic(opcode uint16) string {
	firstNibble := int(opcode >> 12)
	for _, op := range rchip8.Opcodes[firstNibble] {
		if op.Info.Mask&opcode == op.Info.Value {
			if op.Instruction == nil {
				break
			}
			return op.Instruction.Name
		}
	}
	return "???"
}

// logInstruction logs the instruction about to execute
func (cpu *CPU) logInstruction(pc uint16, opcode uint16) {
	log.Printf("[CPU] PC=0x%03X op=0x%04X %-4s I=0x%03X DT=%d ST=%d stack=%d",
		pc, opcode, Mnemonic(opcode), cpu.I, cpu.DT, cpu.ST, cpu.stack.Depth())
}

// detectInfiniteLoop tracks how long the PC has been parked on the same
// instruction. A 1nnn jump to itself is the conventional CHIP-8 halt, so
// this only logs, it never stops execution.
func (cpu *CPU) detectInfiniteLoop(pc uint16, opcode uint16) {
	if pc == cpu.lastPC {
		cpu.pcStayCount++
		if cpu.pcStayCount == 100 {
			log.Printf("[CPU] PC parked at 0x%03X for %d cycles (op=0x%04X %s), program likely halted",
				pc, cpu.pcStayCount, opcode, Mnemonic(opcode))
		}
	} else {
		cpu.lastPC = pc
		cpu.pcStayCount = 0
	}
}
