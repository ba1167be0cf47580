package timer

import (
	"github.com/Div9851/gb-go/internal/irq"
)

const (
	DIV  = 0xFF04
	TIMA = 0xFF05
	TMA  = 0xFF06
	TAC  = 0xFF07
)

// divider bit watched for a falling edge, indexed by TAC & 3
var clockBits = [4]uint{9, 3, 5, 7}

// Timer is clocked once per T-cycle. DIV is the upper byte of a free running
// 16-bit counter; TIMA increments on a falling edge of the selected divider
// bit while the timer is enabled.
type Timer struct {
	div  uint16
	TIMA uint8
	TMA  uint8
	TAC  uint8

	// TIMA overflowed on the previous cycle and reads 0 until it is reloaded
	reloadPending bool

	IRQ *irq.IRQ
}

func NewTimer(irq *irq.IRQ) *Timer {
	return &Timer{
		IRQ: irq,
	}
}

func (tm *Timer) Reset() {
	tm.div = 0
	tm.TIMA = 0
	tm.TMA = 0
	tm.TAC = 0
	tm.reloadPending = false
}

// SetDivider sets the internal 16-bit counter. Used for the post-boot state.
func (tm *Timer) SetDivider(value uint16) {
	tm.div = value
}

func (tm *Timer) Divider() uint16 {
	return tm.div
}

func (tm *Timer) Advance(cycles int) {
	for i := 0; i < cycles; i++ {
		if tm.reloadPending {
			tm.reloadPending = false
			tm.TIMA = tm.TMA
			tm.IRQ.Request(irq.Timer)
		}
		tm.setDivider(tm.div + 1)
	}
}

func (tm *Timer) signal() bool {
	if tm.TAC&(1<<2) == 0 {
		return false
	}
	return tm.div&(1<<clockBits[tm.TAC&0x3]) != 0
}

func (tm *Timer) setDivider(value uint16) {
	old := tm.signal()
	tm.div = value
	if old && !tm.signal() {
		tm.tick()
	}
}

func (tm *Timer) tick() {
	tm.TIMA++
	if tm.TIMA == 0 {
		tm.reloadPending = true
	}
}

func (tm *Timer) Read(addr uint16) uint8 {
	switch addr {
	case DIV:
		return uint8(tm.div >> 8)
	case TIMA:
		return tm.TIMA
	case TMA:
		return tm.TMA
	case TAC:
		return tm.TAC | 0xF8
	}
	return 0xFF
}

func (tm *Timer) Write(addr uint16, value uint8) {
	switch addr {
	case DIV:
		tm.setDivider(0)
	case TIMA:
		// a write during the delay cycle cancels the reload
		tm.reloadPending = false
		tm.TIMA = value
	case TMA:
		tm.TMA = value
	case TAC:
		old := tm.signal()
		tm.TAC = value & 0x7
		if old && !tm.signal() {
			tm.tick()
		}
	}
}
