package cpu

import (
	"gochip8/internal/memory"
)

// Opcode handlers. Each returns the next-program-counter action; none of
// them touches PC directly.
//
// Operand notation follows Cowgod's CHIP-8 technical reference:
// nnn = lowest 12 bits, kk = lowest 8 bits, x/y = register selectors,
// n = lowest 4 bits.

// 00E0 - CLS
func (cpu *CPU) opClearDisplay() pcAction {
	cpu.display.Clear()
	return next()
}

// 00EE - RET
func (cpu *CPU) opReturn() pcAction {
	return jumpTo(cpu.stack.Pop())
}

// 1nnn - JP addr
func (cpu *CPU) opJump(nnn uint16) pcAction {
	return jumpTo(nnn)
}

// 2nnn - CALL addr, saving the address of the following instruction
func (cpu *CPU) opCall(nnn uint16) pcAction {
	cpu.stack.Push(cpu.PC + OpcodeSize)
	return jumpTo(nnn)
}

// 6xkk - LD Vx, byte
func (cpu *CPU) opLoadByte(x, kk uint8) pcAction {
	cpu.V[x] = kk
	return next()
}

// 7xkk - ADD Vx, byte. Wraps at 8 bits, no flag.
func (cpu *CPU) opAddByte(x, kk uint8) pcAction {
	cpu.V[x] += kk
	return next()
}

// 8xy0 - LD Vx, Vy
func (cpu *CPU) opLoadRegister(x, y uint8) pcAction {
	cpu.V[x] = cpu.V[y]
	return next()
}

// 8xy1 - OR Vx, Vy
func (cpu *CPU) opOr(x, y uint8) pcAction {
	cpu.V[x] |= cpu.V[y]
	return next()
}

// 8xy2 - AND Vx, Vy
func (cpu *CPU) opAnd(x, y uint8) pcAction {
	cpu.V[x] &= cpu.V[y]
	return next()
}

// 8xy3 - XOR Vx, Vy
func (cpu *CPU) opXor(x, y uint8) pcAction {
	cpu.V[x] ^= cpu.V[y]
	return next()
}

// 8xy4 - ADD Vx, Vy. VF = carry, result truncated to 8 bits.
func (cpu *CPU) opAddCarry(x, y uint8) pcAction {
	sum := uint16(cpu.V[x]) + uint16(cpu.V[y])
	if sum > 0xFF {
		cpu.V[flagRegister] = 1
	} else {
		cpu.V[flagRegister] = 0
	}
	cpu.V[x] = uint8(sum)
	return next()
}

// 8xy5 - SUB Vx, Vy. VF = NOT borrow, result wraps at 8 bits.
// The flag is computed before the subtraction so that x == 0xF still
// matches the shared-flag convention.
func (cpu *CPU) opSubBorrow(x, y uint8) pcAction {
	vx, vy := cpu.V[x], cpu.V[y]
	if vx > vy {
		cpu.V[flagRegister] = 1
	} else {
		cpu.V[flagRegister] = 0
	}
	cpu.V[x] = vx - vy
	return next()
}

// 8xy6 - SHR Vx. VF = least-significant bit before the shift.
func (cpu *CPU) opShiftRight(x uint8) pcAction {
	vx := cpu.V[x]
	cpu.V[flagRegister] = vx & 0x01
	cpu.V[x] = vx >> 1
	return next()
}

// 8xy7 - SUBN Vx, Vy. VF = NOT borrow, Vx = Vy - Vx.
func (cpu *CPU) opSubReverse(x, y uint8) pcAction {
	vx, vy := cpu.V[x], cpu.V[y]
	if vy > vx {
		cpu.V[flagRegister] = 1
	} else {
		cpu.V[flagRegister] = 0
	}
	cpu.V[x] = vy - vx
	return next()
}

// 8xyE - SHL Vx. VF = most-significant bit before the shift.
func (cpu *CPU) opShiftLeft(x uint8) pcAction {
	vx := cpu.V[x]
	cpu.V[flagRegister] = vx >> 7
	cpu.V[x] = vx << 1
	return next()
}

// Annn - LD I, addr
func (cpu *CPU) opLoadIndex(nnn uint16) pcAction {
	cpu.I = nnn
	return next()
}

// Bnnn - JP V0, addr
func (cpu *CPU) opJumpOffset(nnn uint16) pcAction {
	return jumpTo(nnn + uint16(cpu.V[0]))
}

// Cxkk - RND Vx, byte
func (cpu *CPU) opRandom(x, kk uint8) pcAction {
	cpu.V[x] = cpu.randByte() & kk
	return next()
}

// Dxyn - DRW Vx, Vy, nibble. Draws an n-byte sprite from memory at I at
// screen position (Vx, Vy), each bit XORed into the display buffer with
// per-pixel wraparound. VF = 1 iff any pixel collided across the sprite.
func (cpu *CPU) opDrawSprite(x, y, n uint8) pcAction {
	originX := int(cpu.V[x])
	originY := int(cpu.V[y])

	cpu.V[flagRegister] = 0
	for row := 0; row < int(n); row++ {
		sprite := cpu.memory.Read(cpu.I + uint16(row))
		for col := 0; col < 8; col++ {
			bit := (sprite >> (7 - col)) & 0x01
			px := wrapX(originX + col)
			py := wrapY(originY + row)
			if cpu.display.XORPlot(px, py, bit) {
				cpu.V[flagRegister] = 1
			}
		}
	}
	return next()
}

// Fx07 - LD Vx, DT
func (cpu *CPU) opLoadDelayTimer(x uint8) pcAction {
	cpu.V[x] = cpu.DT
	return next()
}

// Fx0A - LD Vx, K. Sets the input-wait latch; PC still advances now and the
// wait is enforced at the start of the next cycle.
func (cpu *CPU) opWaitKey(x uint8) pcAction {
	cpu.waitingForKey = true
	cpu.waitRegister = x
	return next()
}

// Fx15 - LD DT, Vx
func (cpu *CPU) opSetDelayTimer(x uint8) pcAction {
	cpu.DT = cpu.V[x]
	return next()
}

// Fx18 - LD ST, Vx
func (cpu *CPU) opSetSoundTimer(x uint8) pcAction {
	cpu.ST = cpu.V[x]
	return next()
}

// Fx1E - ADD I, Vx. 16-bit addition, no overflow flag.
func (cpu *CPU) opAddIndex(x uint8) pcAction {
	cpu.I += uint16(cpu.V[x])
	return next()
}

// Fx29 - LD F, Vx. Points I at the font glyph for the digit in Vx.
func (cpu *CPU) opLoadGlyph(x uint8) pcAction {
	cpu.I = memory.GlyphAddress(cpu.V[x])
	return next()
}

// Fx33 - LD B, Vx. Stores the decimal digits of Vx at I, I+1, I+2.
func (cpu *CPU) opStoreBCD(x uint8) pcAction {
	vx := cpu.V[x]
	cpu.memory.Write(cpu.I, vx/100)
	cpu.memory.Write(cpu.I+1, (vx/10)%10)
	cpu.memory.Write(cpu.I+2, vx%10)
	return next()
}

// Fx55 - LD [I], Vx. Copies V0..Vx inclusive into memory starting at I.
func (cpu *CPU) opStoreRegisters(x uint8) pcAction {
	for r := uint16(0); r <= uint16(x); r++ {
		cpu.memory.Write(cpu.I+r, cpu.V[r])
	}
	return next()
}

// Fx65 - LD Vx, [I]. Copies memory starting at I into V0..Vx inclusive.
func (cpu *CPU) opLoadRegisters(x uint8) pcAction {
	for r := uint16(0); r <= uint16(x); r++ {
		cpu.V[r] = cpu.memory.Read(cpu.I + r)
	}
	return next()
}
