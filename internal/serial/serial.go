// Package serial implements the link port registers. No link partner is
// emulated: a transfer using the internal clock shifts in 0xFF and completes
// after eight bit periods.
package serial

import (
	"io"

	"github.com/Div9851/gb-go/internal/irq"
)

const (
	SB = 0xFF01
	SC = 0xFF02
)

// 8192 Hz bit clock
const transferCycles = 8 * 512

type Serial struct {
	SB uint8
	SC uint8

	remaining int
	out       io.Writer
	IRQ       *irq.IRQ
}

func NewSerial(irq *irq.IRQ) *Serial {
	return &Serial{
		IRQ: irq,
	}
}

// SetOutput sets the writer receiving every byte the CPU sends.
func (s *Serial) SetOutput(w io.Writer) {
	s.out = w
}

func (s *Serial) Reset() {
	s.SB = 0
	s.SC = 0
	s.remaining = 0
}

func (s *Serial) Read(addr uint16) uint8 {
	switch addr {
	case SB:
		return s.SB
	case SC:
		return s.SC | 0x7E
	}
	return 0xFF
}

func (s *Serial) Write(addr uint16, value uint8) {
	switch addr {
	case SB:
		s.SB = value
	case SC:
		s.SC = value & 0x81
		if s.SC&0x81 == 0x81 {
			if s.out != nil {
				s.out.Write([]byte{s.SB})
			}
			s.remaining = transferCycles
		}
	}
}

func (s *Serial) Advance(cycles int) {
	if s.remaining <= 0 {
		return
	}
	s.remaining -= cycles
	if s.remaining <= 0 {
		s.remaining = 0
		s.SB = 0xFF
		s.SC &^= 0x80
		s.IRQ.Request(irq.Serial)
	}
}
