package input

import "github.com/Div9851/gb-go/internal/irq"

type Button uint8

// Buttons, low nibble is the direction group and high nibble the action group
// in P1 bit order.
const (
	Right Button = 1 << iota
	Left
	Up
	Down
	ButtonA
	ButtonB
	Select
	Start
)

var buttonNames = map[Button]string{
	Right:   "Right",
	Left:    "Left",
	Up:      "Up",
	Down:    "Down",
	ButtonA: "A",
	ButtonB: "B",
	Select:  "Select",
	Start:   "Start",
}

func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return "???"
}

const (
	selectDirections = 1 << 4
	selectActions    = 1 << 5
)

// Input is the P1/JOYP register (0xFF00). Buttons are active low and the
// CPU selects which group is visible by clearing bit 4 or 5.
type Input struct {
	pressed Button
	P1      uint8
	IRQ     *irq.IRQ
}

func NewInput(irq *irq.IRQ) *Input {
	return &Input{
		P1:  0x30,
		IRQ: irq,
	}
}

func (input *Input) Reset() {
	input.pressed = 0
	input.P1 = 0x30
}

func (input *Input) Read() uint8 {
	low := uint8(0x0F)
	if input.P1&selectDirections == 0 {
		low &^= uint8(input.pressed) & 0x0F
	}
	if input.P1&selectActions == 0 {
		low &^= uint8(input.pressed>>4) & 0x0F
	}
	return 0xC0 | input.P1 | low
}

func (input *Input) Write(value uint8) {
	old := input.Read()
	input.P1 = value & 0x30
	input.checkInterrupt(old)
}

// SetButton records the state of one button and raises the joypad interrupt
// when a selected line goes from high to low.
func (input *Input) SetButton(b Button, pressed bool) {
	old := input.Read()
	if pressed {
		input.pressed |= b
	} else {
		input.pressed &^= b
	}
	input.checkInterrupt(old)
}

// SetButtons replaces the state of all eight buttons at once.
func (input *Input) SetButtons(pressed Button) {
	old := input.Read()
	input.pressed = pressed
	input.checkInterrupt(old)
}

func (input *Input) Pressed() Button {
	return input.pressed
}

func (input *Input) checkInterrupt(old uint8) {
	if old & ^input.Read() & 0x0F != 0 {
		input.IRQ.Request(irq.Joypad)
	}
}
