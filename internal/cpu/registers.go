package cpu

const (
	FlagZ uint8 = 1 << 7
	FlagN uint8 = 1 << 6
	FlagH uint8 = 1 << 5
	FlagC uint8 = 1 << 4
)

// Registers is the register file. The low nibble of F always reads zero.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
}

func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

func (r *Registers) SetAF(v uint16) { r.A, r.F = uint8(v>>8), uint8(v)&0xF0 }
func (r *Registers) SetBC(v uint16) { r.B, r.C = uint8(v>>8), uint8(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = uint8(v>>8), uint8(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = uint8(v>>8), uint8(v) }

func (r *Registers) Flag(f uint8) bool {
	return r.F&f != 0
}

func (r *Registers) SetFlag(f uint8, on bool) {
	if on {
		r.F |= f
	} else {
		r.F &^= f
	}
}

// SetFlags replaces all four flags.
func (r *Registers) SetFlags(z, n, h, c bool) {
	r.F = 0
	r.SetFlag(FlagZ, z)
	r.SetFlag(FlagN, n)
	r.SetFlag(FlagH, h)
	r.SetFlag(FlagC, c)
}

// rp returns the 16-bit register pair selected by an opcode's p field:
// BC, DE, HL, SP.
func (r *Registers) rp(p uint8) uint16 {
	switch p {
	case 0:
		return r.BC()
	case 1:
		return r.DE()
	case 2:
		return r.HL()
	}
	return r.SP
}

func (r *Registers) setRP(p uint8, v uint16) {
	switch p {
	case 0:
		r.SetBC(v)
	case 1:
		r.SetDE(v)
	case 2:
		r.SetHL(v)
	default:
		r.SP = v
	}
}

// rp2 is the PUSH/POP variant of rp with AF in place of SP.
func (r *Registers) rp2(p uint8) uint16 {
	if p == 3 {
		return r.AF()
	}
	return r.rp(p)
}

func (r *Registers) setRP2(p uint8, v uint16) {
	if p == 3 {
		r.SetAF(v)
		return
	}
	r.setRP(p, v)
}
