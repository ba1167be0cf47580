package cpu

import (
	"github.com/Div9851/gb-go/internal/memory"
)

// execute runs an unprefixed opcode whose byte has already been fetched and
// returns the cycles it took, or 0 for an illegal opcode.
//
// Opcodes are decoded from their bit fields: x = bits 7-6, y = bits 5-3,
// z = bits 2-0, p = y >> 1, q = y & 1.
func (cpu *CPU) execute(opcode uint8) int {
	m := int(opcodeCycles[opcode])
	if m == 0 {
		return 0
	}

	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		m += cpu.executeBlock0(y, z, p, q)
	case 1:
		if opcode == 0x76 {
			cpu.halt()
		} else {
			cpu.setReg(y, cpu.reg(z))
		}
	case 2:
		cpu.alu(y, cpu.reg(z))
	case 3:
		m += cpu.executeBlock3(y, z, p, q)
	}
	return m * 4
}

func (cpu *CPU) jr(taken bool) int {
	offset := int8(cpu.fetch8())
	if !taken {
		return 0
	}
	cpu.PC = uint16(int(cpu.PC) + int(offset))
	return jrTaken
}

// executeBlock0 covers 0x00-0x3F and returns extra machine cycles.
func (cpu *CPU) executeBlock0(y, z, p, q uint8) int {
	switch z {
	case 0:
		switch y {
		case 0: // NOP
		case 1: // LD (a16),SP
			memory.Write16(cpu.Memory, cpu.fetch16(), cpu.SP)
		case 2:
			cpu.stop()
		case 3:
			cpu.jr(true)
		default:
			return cpu.jr(cpu.condition(y - 4))
		}
	case 1:
		if q == 0 {
			cpu.setRP(p, cpu.fetch16())
		} else {
			cpu.addHL(cpu.rp(p))
		}
	case 2:
		addr := cpu.indirect(p)
		if q == 0 {
			cpu.Memory.Write8(addr, cpu.A)
		} else {
			cpu.A = cpu.Memory.Read8(addr)
		}
	case 3:
		if q == 0 {
			cpu.setRP(p, cpu.rp(p)+1)
		} else {
			cpu.setRP(p, cpu.rp(p)-1)
		}
	case 4:
		cpu.setReg(y, cpu.inc8(cpu.reg(y)))
	case 5:
		cpu.setReg(y, cpu.dec8(cpu.reg(y)))
	case 6:
		cpu.setReg(y, cpu.fetch8())
	case 7:
		cpu.executeAccumulator(y)
	}
	return 0
}

// indirect returns the address for LD (rr),A and LD A,(rr): BC, DE, HL+
// and HL-.
func (cpu *CPU) indirect(p uint8) uint16 {
	switch p {
	case 0:
		return cpu.BC()
	case 1:
		return cpu.DE()
	}
	hl := cpu.HL()
	if p == 2 {
		cpu.SetHL(hl + 1)
	} else {
		cpu.SetHL(hl - 1)
	}
	return hl
}

func (cpu *CPU) executeAccumulator(y uint8) {
	switch y {
	case 0, 1, 2, 3: // RLCA RRCA RLA RRA
		cpu.A = cpu.rotate(y, cpu.A)
		cpu.SetFlag(FlagZ, false)
	case 4:
		cpu.daa()
	case 5: // CPL
		cpu.A = ^cpu.A
		cpu.SetFlag(FlagN, true)
		cpu.SetFlag(FlagH, true)
	case 6: // SCF
		cpu.SetFlag(FlagN, false)
		cpu.SetFlag(FlagH, false)
		cpu.SetFlag(FlagC, true)
	case 7: // CCF
		cpu.SetFlag(FlagN, false)
		cpu.SetFlag(FlagH, false)
		cpu.SetFlag(FlagC, !cpu.Flag(FlagC))
	}
}

// executeBlock3 covers 0xC0-0xFF and returns extra machine cycles.
func (cpu *CPU) executeBlock3(y, z, p, q uint8) int {
	switch z {
	case 0:
		switch y {
		case 0, 1, 2, 3: // RET cc
			if cpu.condition(y) {
				cpu.PC = cpu.pop()
				return retTaken
			}
		case 4: // LDH (a8),A
			cpu.Memory.Write8(0xFF00|uint16(cpu.fetch8()), cpu.A)
		case 5: // ADD SP,e
			cpu.SP = cpu.addSPOffset(cpu.fetch8())
		case 6: // LDH A,(a8)
			cpu.A = cpu.Memory.Read8(0xFF00 | uint16(cpu.fetch8()))
		case 7: // LD HL,SP+e
			cpu.SetHL(cpu.addSPOffset(cpu.fetch8()))
		}
	case 1:
		if q == 0 {
			cpu.setRP2(p, cpu.pop())
			break
		}
		switch p {
		case 0: // RET
			cpu.PC = cpu.pop()
		case 1: // RETI
			cpu.PC = cpu.pop()
			cpu.IME = true
			cpu.imeDelay = 0
		case 2: // JP HL
			cpu.PC = cpu.HL()
		case 3: // LD SP,HL
			cpu.SP = cpu.HL()
		}
	case 2:
		switch y {
		case 0, 1, 2, 3: // JP cc,a16
			addr := cpu.fetch16()
			if cpu.condition(y) {
				cpu.PC = addr
				return jpTaken
			}
		case 4: // LD (C),A
			cpu.Memory.Write8(0xFF00|uint16(cpu.C), cpu.A)
		case 5: // LD (a16),A
			cpu.Memory.Write8(cpu.fetch16(), cpu.A)
		case 6: // LD A,(C)
			cpu.A = cpu.Memory.Read8(0xFF00 | uint16(cpu.C))
		case 7: // LD A,(a16)
			cpu.A = cpu.Memory.Read8(cpu.fetch16())
		}
	case 3:
		switch y {
		case 0: // JP a16
			cpu.PC = cpu.fetch16()
		case 6: // DI
			cpu.IME = false
			cpu.imeDelay = 0
		case 7: // EI
			if !cpu.IME && cpu.imeDelay == 0 {
				cpu.imeDelay = 2
			}
		}
	case 4: // CALL cc,a16
		addr := cpu.fetch16()
		if cpu.condition(y) {
			cpu.push(cpu.PC)
			cpu.PC = addr
			return callTaken
		}
	case 5:
		if q == 0 {
			cpu.push(cpu.rp2(p))
		} else { // CALL a16
			addr := cpu.fetch16()
			cpu.push(cpu.PC)
			cpu.PC = addr
		}
	case 6:
		cpu.alu(y, cpu.fetch8())
	case 7: // RST
		cpu.push(cpu.PC)
		cpu.PC = uint16(y) * 8
	}
	return 0
}

// executeCB runs the second byte of a CB-prefixed instruction.
func (cpu *CPU) executeCB(opcode uint8) int {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7

	m := 2
	if z == 6 {
		m = 4
		if x == 1 {
			m = 3
		}
	}

	value := cpu.reg(z)
	switch x {
	case 0:
		cpu.setReg(z, cpu.rotate(y, value))
	case 1: // BIT
		cpu.SetFlag(FlagZ, value&(1<<y) == 0)
		cpu.SetFlag(FlagN, false)
		cpu.SetFlag(FlagH, true)
	case 2: // RES
		cpu.setReg(z, value&^(1<<y))
	case 3: // SET
		cpu.setReg(z, value|1<<y)
	}
	return m * 4
}
