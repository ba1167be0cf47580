package emulator

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Div9851/gb-go/internal/cpu"
)

type debugger struct {
	breakpoints   map[uint16]struct{}
	paused        bool
	stepRequested bool
	// set by Resume so the breakpoint at the current PC does not fire again
	resumed bool
}

// CPUState is a snapshot of the register file and execution state.
type CPUState struct {
	cpu.Registers
	IME     bool
	Halted  bool
	Stopped bool
}

func (s CPUState) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X", s.AF(), s.BC(), s.DE(), s.HL(), s.SP, s.PC)
	flags := []byte("----")
	for i, f := range []uint8{cpu.FlagZ, cpu.FlagN, cpu.FlagH, cpu.FlagC} {
		if s.F&f != 0 {
			flags[i] = "ZNHC"[i]
		}
	}
	fmt.Fprintf(&b, " %s", flags)
	if s.IME {
		b.WriteString(" IME")
	}
	switch {
	case s.Stopped:
		b.WriteString(" STOP")
	case s.Halted:
		b.WriteString(" HALT")
	}
	return b.String()
}

func (gb *GB) CPUState() CPUState {
	return CPUState{
		Registers: gb.CPU.Registers,
		IME:       gb.CPU.IME,
		Halted:    gb.CPU.Halted(),
		Stopped:   gb.CPU.Stopped(),
	}
}

// Peek reads memory without side effects and without the pixel transfer
// lockout.
func (gb *GB) Peek(addr uint16) uint8 {
	return gb.Bus.Peek(addr)
}

// NextOpcode returns the opcode at PC and its disassembly.
func (gb *GB) NextOpcode() (uint8, string) {
	text, _ := gb.Disassemble(gb.CPU.PC)
	return gb.Peek(gb.CPU.PC), text
}

func (gb *GB) Disassemble(addr uint16) (string, int) {
	return cpu.Disassemble(gb.Bus.Raw(), addr)
}

// DisassembleRange disassembles count instructions starting at addr.
func (gb *GB) DisassembleRange(w io.Writer, addr uint16, count int) {
	for i := 0; i < count; i++ {
		text, length := gb.Disassemble(addr)
		marker := " "
		if addr == gb.CPU.PC {
			marker = ">"
		}
		fmt.Fprintf(w, "%s%04X  %s\n", marker, addr, text)
		addr += uint16(length)
	}
}

// DumpMemory writes length bytes starting at addr, 16 per line.
func (gb *GB) DumpMemory(w io.Writer, addr uint16, length int) {
	for line := 0; line < length; line += 16 {
		fmt.Fprintf(w, "%04X:", addr+uint16(line))
		for i := line; i < min(line+16, length); i++ {
			fmt.Fprintf(w, " %02X", gb.Peek(addr+uint16(i)))
		}
		fmt.Fprintln(w)
	}
}

func (gb *GB) AddBreakpoint(addr uint16) {
	gb.debugger.breakpoints[addr] = struct{}{}
}

func (gb *GB) RemoveBreakpoint(addr uint16) {
	delete(gb.debugger.breakpoints, addr)
}

func (gb *GB) ClearBreakpoints() {
	clear(gb.debugger.breakpoints)
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (gb *GB) Breakpoints() []uint16 {
	addrs := make([]uint16, 0, len(gb.debugger.breakpoints))
	for addr := range gb.debugger.breakpoints {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

func (gb *GB) checkBreakpoint() bool {
	if gb.debugger.resumed {
		gb.debugger.resumed = false
		return false
	}
	if _, ok := gb.debugger.breakpoints[gb.CPU.PC]; !ok {
		return false
	}
	gb.debugger.paused = true
	gb.Logger.Logf("debugger", "breakpoint at %04X", gb.CPU.PC)
	return true
}

func (gb *GB) Pause() {
	gb.debugger.paused = true
}

func (gb *GB) Resume() {
	if gb.debugger.paused {
		gb.debugger.resumed = true
	}
	gb.debugger.paused = false
	gb.debugger.stepRequested = false
}

func (gb *GB) TogglePause() {
	if gb.debugger.paused {
		gb.Resume()
		return
	}
	gb.Pause()
}

func (gb *GB) Paused() bool {
	return gb.debugger.paused
}

// RequestStep pauses the machine and makes the next RunFrame execute a
// single CPU step.
func (gb *GB) RequestStep() {
	gb.debugger.paused = true
	gb.debugger.stepRequested = true
}
