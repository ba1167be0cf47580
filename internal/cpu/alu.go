package cpu

// alu applies one of ADD ADC SUB SBC AND XOR OR CP to A.
func (cpu *CPU) alu(op uint8, value uint8) {
	a := cpu.A
	switch op {
	case 0, 1:
		carry := uint8(0)
		if op == 1 && cpu.Flag(FlagC) {
			carry = 1
		}
		sum := uint16(a) + uint16(value) + uint16(carry)
		cpu.A = uint8(sum)
		cpu.SetFlags(cpu.A == 0, false, a&0x0F+value&0x0F+carry > 0x0F, sum > 0xFF)
	case 2, 3, 7:
		carry := uint8(0)
		if op == 3 && cpu.Flag(FlagC) {
			carry = 1
		}
		diff := int(a) - int(value) - int(carry)
		result := uint8(diff)
		cpu.SetFlags(result == 0, true, int(a&0x0F)-int(value&0x0F)-int(carry) < 0, diff < 0)
		if op != 7 {
			cpu.A = result
		}
	case 4:
		cpu.A = a & value
		cpu.SetFlags(cpu.A == 0, false, true, false)
	case 5:
		cpu.A = a ^ value
		cpu.SetFlags(cpu.A == 0, false, false, false)
	case 6:
		cpu.A = a | value
		cpu.SetFlags(cpu.A == 0, false, false, false)
	}
}

func (cpu *CPU) inc8(value uint8) uint8 {
	result := value + 1
	cpu.SetFlag(FlagZ, result == 0)
	cpu.SetFlag(FlagN, false)
	cpu.SetFlag(FlagH, value&0x0F == 0x0F)
	return result
}

func (cpu *CPU) dec8(value uint8) uint8 {
	result := value - 1
	cpu.SetFlag(FlagZ, result == 0)
	cpu.SetFlag(FlagN, true)
	cpu.SetFlag(FlagH, value&0x0F == 0)
	return result
}

func (cpu *CPU) addHL(value uint16) {
	hl := cpu.HL()
	sum := uint32(hl) + uint32(value)
	cpu.SetFlag(FlagN, false)
	cpu.SetFlag(FlagH, hl&0x0FFF+value&0x0FFF > 0x0FFF)
	cpu.SetFlag(FlagC, sum > 0xFFFF)
	cpu.SetHL(uint16(sum))
}

// addSPOffset computes SP + signed offset for ADD SP,e and LD HL,SP+e.
// Half carry and carry come from the unsigned low byte addition.
func (cpu *CPU) addSPOffset(offset uint8) uint16 {
	sp := cpu.SP
	result := sp + uint16(int16(int8(offset)))
	cpu.SetFlags(false, false,
		sp&0x0F+uint16(offset&0x0F) > 0x0F,
		sp&0xFF+uint16(offset) > 0xFF)
	return result
}

func (cpu *CPU) daa() {
	a := cpu.A
	carry := cpu.Flag(FlagC)
	if !cpu.Flag(FlagN) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if cpu.Flag(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if cpu.Flag(FlagH) {
			a -= 0x06
		}
	}
	cpu.A = a
	cpu.SetFlag(FlagZ, a == 0)
	cpu.SetFlag(FlagH, false)
	cpu.SetFlag(FlagC, carry)
}

// rotate applies one of RLC RRC RL RR SLA SRA SWAP SRL and sets Z from the
// result. The accumulator forms clear Z afterwards.
func (cpu *CPU) rotate(op uint8, value uint8) uint8 {
	var result uint8
	var carry bool
	switch op {
	case 0:
		carry = value&0x80 != 0
		result = value<<1 | value>>7
	case 1:
		carry = value&0x01 != 0
		result = value>>1 | value<<7
	case 2:
		carry = value&0x80 != 0
		result = value << 1
		if cpu.Flag(FlagC) {
			result |= 0x01
		}
	case 3:
		carry = value&0x01 != 0
		result = value >> 1
		if cpu.Flag(FlagC) {
			result |= 0x80
		}
	case 4:
		carry = value&0x80 != 0
		result = value << 1
	case 5:
		carry = value&0x01 != 0
		result = value>>1 | value&0x80
	case 6:
		result = value<<4 | value>>4
	case 7:
		carry = value&0x01 != 0
		result = value >> 1
	}
	cpu.SetFlags(result == 0, false, false, carry)
	return result
}
