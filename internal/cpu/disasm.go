package cpu

import (
	"fmt"

	"github.com/Div9851/gb-go/internal/memory"
)

var (
	regNames   = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	rpNames    = [4]string{"BC", "DE", "HL", "SP"}
	rp2Names   = [4]string{"BC", "DE", "HL", "AF"}
	ccNames    = [4]string{"NZ", "Z", "NC", "C"}
	aluNames   = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	rotNames   = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}
	accNames   = [8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}
	indirNames = [4]string{"(BC)", "(DE)", "(HL+)", "(HL-)"}
)

// Disassemble decodes the instruction at addr and returns its text and
// length in bytes. Reads go through m, so it should be a side effect free
// view of memory.
func Disassemble(m memory.Memory, addr uint16) (string, int) {
	opcode := m.Read8(addr)
	d8 := m.Read8(addr + 1)
	d16 := memory.Read16(m, addr+1)
	rel := addr + 2 + uint16(int16(int8(d8)))

	if opcode == 0xCB {
		return disassembleCB(d8), 2
	}
	length := Length(opcode)
	if length == 0 {
		return fmt.Sprintf("DB $%02X", opcode), 1
	}

	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	var text string
	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0:
				text = "NOP"
			case 1:
				text = fmt.Sprintf("LD ($%04X),SP", d16)
			case 2:
				text = "STOP"
			case 3:
				text = fmt.Sprintf("JR $%04X", rel)
			default:
				text = fmt.Sprintf("JR %s,$%04X", ccNames[y-4], rel)
			}
		case 1:
			if q == 0 {
				text = fmt.Sprintf("LD %s,$%04X", rpNames[p], d16)
			} else {
				text = "ADD HL," + rpNames[p]
			}
		case 2:
			if q == 0 {
				text = fmt.Sprintf("LD %s,A", indirNames[p])
			} else {
				text = fmt.Sprintf("LD A,%s", indirNames[p])
			}
		case 3:
			if q == 0 {
				text = "INC " + rpNames[p]
			} else {
				text = "DEC " + rpNames[p]
			}
		case 4:
			text = "INC " + regNames[y]
		case 5:
			text = "DEC " + regNames[y]
		case 6:
			text = fmt.Sprintf("LD %s,$%02X", regNames[y], d8)
		case 7:
			text = accNames[y]
		}
	case 1:
		if opcode == 0x76 {
			text = "HALT"
		} else {
			text = fmt.Sprintf("LD %s,%s", regNames[y], regNames[z])
		}
	case 2:
		text = aluNames[y] + regNames[z]
	case 3:
		text = disassembleBlock3(opcode, y, z, p, q, d8, d16)
	}
	return text, length
}

func disassembleBlock3(opcode, y, z, p, q, d8 uint8, d16 uint16) string {
	switch z {
	case 0:
		switch y {
		case 4:
			return fmt.Sprintf("LDH ($FF%02X),A", d8)
		case 5:
			return fmt.Sprintf("ADD SP,%d", int8(d8))
		case 6:
			return fmt.Sprintf("LDH A,($FF%02X)", d8)
		case 7:
			return fmt.Sprintf("LD HL,SP%+d", int8(d8))
		}
		return "RET " + ccNames[y]
	case 1:
		if q == 0 {
			return "POP " + rp2Names[p]
		}
		return [4]string{"RET", "RETI", "JP HL", "LD SP,HL"}[p]
	case 2:
		switch y {
		case 4:
			return "LD ($FF00+C),A"
		case 5:
			return fmt.Sprintf("LD ($%04X),A", d16)
		case 6:
			return "LD A,($FF00+C)"
		case 7:
			return fmt.Sprintf("LD A,($%04X)", d16)
		}
		return fmt.Sprintf("JP %s,$%04X", ccNames[y], d16)
	case 3:
		switch opcode {
		case 0xC3:
			return fmt.Sprintf("JP $%04X", d16)
		case 0xF3:
			return "DI"
		}
		return "EI"
	case 4:
		return fmt.Sprintf("CALL %s,$%04X", ccNames[y], d16)
	case 5:
		if q == 0 {
			return "PUSH " + rp2Names[p]
		}
		return fmt.Sprintf("CALL $%04X", d16)
	case 6:
		return fmt.Sprintf("%s$%02X", aluNames[y], d8)
	}
	return fmt.Sprintf("RST $%02X", y*8)
}

func disassembleCB(opcode uint8) string {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	switch x {
	case 0:
		return rotNames[y] + " " + regNames[z]
	case 1:
		return fmt.Sprintf("BIT %d,%s", y, regNames[z])
	case 2:
		return fmt.Sprintf("RES %d,%s", y, regNames[z])
	}
	return fmt.Sprintf("SET %d,%s", y, regNames[z])
}
