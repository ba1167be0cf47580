package cpu

import (
	"fmt"

	"github.com/Div9851/gb-go/internal/irq"
	"github.com/Div9851/gb-go/internal/memory"
)

const (
	// cycles charged for pushing PC and jumping to an interrupt vector
	interruptCycles = 20
	// cycles charged per step while halted or stopped
	idleCycles = 4
)

// OpcodeError is returned by Step when the CPU fetches an opcode that does
// not exist. The CPU stays faulted afterwards.
type OpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode %02X at %04X", e.Opcode, e.PC)
}

type CPU struct {
	Registers
	IME bool

	Memory memory.Memory
	IRQ    *irq.IRQ
	// OnStop is called when STOP is executed. The system uses it to reset
	// the divider.
	OnStop func()

	imeDelay int
	halted   bool
	stopped  bool
	haltBug  bool
	fault    error
}

func NewCPU(memory memory.Memory, irq *irq.IRQ) *CPU {
	return &CPU{
		Memory: memory,
		IRQ:    irq,
	}
}

// Reset clears every register. Execution starts at 0x0000 where the boot
// ROM is expected.
func (cpu *CPU) Reset() {
	cpu.Registers = Registers{}
	cpu.IME = false
	cpu.imeDelay = 0
	cpu.halted = false
	cpu.stopped = false
	cpu.haltBug = false
	cpu.fault = nil
}

// PostBoot sets the registers to the values the boot ROM leaves behind.
func (cpu *CPU) PostBoot() {
	cpu.Reset()
	cpu.SetAF(0x01B0)
	cpu.SetBC(0x0013)
	cpu.SetDE(0x00D8)
	cpu.SetHL(0x014D)
	cpu.SP = 0xFFFE
	cpu.PC = 0x0100
}

func (cpu *CPU) Halted() bool {
	return cpu.halted
}

func (cpu *CPU) Stopped() bool {
	return cpu.stopped
}

// Step executes one instruction, dispatches one interrupt or idles, and
// returns the number of cycles consumed.
func (cpu *CPU) Step() (int, error) {
	if cpu.fault != nil {
		return 0, cpu.fault
	}

	if cpu.imeDelay > 0 {
		cpu.imeDelay--
		if cpu.imeDelay == 0 {
			cpu.IME = true
		}
	}

	if cpu.stopped {
		if cpu.IRQ.IF&irq.Joypad.Bit() == 0 {
			return idleCycles, nil
		}
		cpu.stopped = false
	}

	if cpu.halted {
		if !cpu.IRQ.Pending() {
			return idleCycles, nil
		}
		cpu.halted = false
	}

	if cpu.IME {
		if source, ok := cpu.IRQ.HighestPriorityPending(); ok {
			cpu.IME = false
			cpu.IRQ.Acknowledge(source)
			ret := cpu.PC
			if cpu.haltBug {
				// HALT runs again after the handler returns
				cpu.haltBug = false
				ret--
			}
			cpu.push(ret)
			cpu.PC = source.Vector()
			return interruptCycles, nil
		}
	}

	pc := cpu.PC
	opcode := cpu.fetch8()
	if cpu.haltBug {
		cpu.haltBug = false
		cpu.PC--
	}

	var cycles int
	if opcode == 0xCB {
		cycles = cpu.executeCB(cpu.fetch8())
	} else {
		cycles = cpu.execute(opcode)
	}
	if cycles == 0 {
		cpu.fault = &OpcodeError{PC: pc, Opcode: opcode}
		return 0, cpu.fault
	}
	return cycles, nil
}

func (cpu *CPU) fetch8() uint8 {
	value := cpu.Memory.Read8(cpu.PC)
	cpu.PC++
	return value
}

func (cpu *CPU) fetch16() uint16 {
	low := uint16(cpu.fetch8())
	high := uint16(cpu.fetch8())
	return high<<8 | low
}

func (cpu *CPU) push(value uint16) {
	cpu.SP--
	cpu.Memory.Write8(cpu.SP, uint8(value>>8))
	cpu.SP--
	cpu.Memory.Write8(cpu.SP, uint8(value))
}

func (cpu *CPU) pop() uint16 {
	low := uint16(cpu.Memory.Read8(cpu.SP))
	cpu.SP++
	high := uint16(cpu.Memory.Read8(cpu.SP))
	cpu.SP++
	return high<<8 | low
}

// reg reads the 8-bit operand selected by a 3-bit field: B C D E H L (HL) A.
func (cpu *CPU) reg(i uint8) uint8 {
	switch i {
	case 0:
		return cpu.B
	case 1:
		return cpu.C
	case 2:
		return cpu.D
	case 3:
		return cpu.E
	case 4:
		return cpu.H
	case 5:
		return cpu.L
	case 6:
		return cpu.Memory.Read8(cpu.HL())
	}
	return cpu.A
}

func (cpu *CPU) setReg(i uint8, value uint8) {
	switch i {
	case 0:
		cpu.B = value
	case 1:
		cpu.C = value
	case 2:
		cpu.D = value
	case 3:
		cpu.E = value
	case 4:
		cpu.H = value
	case 5:
		cpu.L = value
	case 6:
		cpu.Memory.Write8(cpu.HL(), value)
	default:
		cpu.A = value
	}
}

// condition evaluates NZ, Z, NC, C.
func (cpu *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !cpu.Flag(FlagZ)
	case 1:
		return cpu.Flag(FlagZ)
	case 2:
		return !cpu.Flag(FlagC)
	}
	return cpu.Flag(FlagC)
}

func (cpu *CPU) halt() {
	if !cpu.IME && cpu.IRQ.Pending() {
		cpu.haltBug = true
		return
	}
	cpu.halted = true
}

func (cpu *CPU) stop() {
	cpu.PC++
	if cpu.OnStop != nil {
		cpu.OnStop()
	}
	if cpu.IRQ.IF&irq.Joypad.Bit() == 0 {
		cpu.stopped = true
	}
}
