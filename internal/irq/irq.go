package irq

// Interrupt sources in priority order. The value is the bit position in IE/IF.
type Source uint8

const (
	VBlank Source = iota
	STAT
	Timer
	Serial
	Joypad
)

const sourceMask = 0x1F

var vectors = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

func (s Source) Bit() uint8 {
	return 1 << s
}

// Vector returns the address the CPU jumps to when servicing s.
func (s Source) Vector() uint16 {
	return vectors[s]
}

func (s Source) String() string {
	switch s {
	case VBlank:
		return "VBLANK"
	case STAT:
		return "STAT"
	case Timer:
		return "TIMER"
	case Serial:
		return "SERIAL"
	case Joypad:
		return "JOYPAD"
	}
	return "???"
}

// IRQ holds the interrupt enable (0xFFFF) and request (0xFF0F) registers.
// Any component may raise a request; only the CPU acknowledges one.
type IRQ struct {
	IE uint8
	IF uint8
}

func NewIRQ() *IRQ {
	return &IRQ{}
}

func (irq *IRQ) Reset() {
	irq.IE = 0
	irq.IF = 0
}

func (irq *IRQ) Request(s Source) {
	irq.IF |= s.Bit()
}

// Acknowledge clears the request bit of s.
func (irq *IRQ) Acknowledge(s Source) {
	irq.IF &^= s.Bit()
}

// Pending reports whether any enabled interrupt is requested, regardless of
// the CPU's master enable.
func (irq *IRQ) Pending() bool {
	return irq.IE&irq.IF&sourceMask != 0
}

// HighestPriorityPending returns the lowest numbered source that is both
// enabled and requested.
func (irq *IRQ) HighestPriorityPending() (Source, bool) {
	pending := irq.IE & irq.IF & sourceMask
	if pending == 0 {
		return 0, false
	}
	for s := VBlank; s <= Joypad; s++ {
		if pending&s.Bit() != 0 {
			return s, true
		}
	}
	return 0, false
}

// ReadIF returns the request register as the CPU sees it; the upper three
// bits read as 1.
func (irq *IRQ) ReadIF() uint8 {
	return irq.IF | 0xE0
}

func (irq *IRQ) WriteIF(value uint8) {
	irq.IF = value & sourceMask
}
