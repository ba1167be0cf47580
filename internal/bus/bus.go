package bus

import (
	"github.com/Div9851/gb-go/internal/gamepak"
	"github.com/Div9851/gb-go/internal/ioreg"
	"github.com/Div9851/gb-go/internal/irq"
	"github.com/Div9851/gb-go/internal/memory"
	"github.com/Div9851/gb-go/internal/ppu"
)

const BootROMSize = 0x100

type Bus struct {
	BootROM []byte
	WRAM    [0x2000]byte
	HRAM    [0x7F]byte
	GamePak *gamepak.GamePak
	PPU     *ppu.PPU
	IOReg   *ioreg.IOReg
	IRQ     *irq.IRQ

	bootEnabled bool
}

// NewBus maps bootROM over 0x0000-0x00FF when it is not nil.
func NewBus(gamePak *gamepak.GamePak, bootROM []byte) *Bus {
	bus := &Bus{
		GamePak: gamePak,
		BootROM: bootROM,
	}
	bus.bootEnabled = bootROM != nil
	return bus
}

func (bus *Bus) Setup(ppu *ppu.PPU, ioReg *ioreg.IOReg, irq *irq.IRQ) {
	bus.PPU = ppu
	bus.IOReg = ioReg
	bus.IRQ = irq
}

func (bus *Bus) Reset() {
	bus.WRAM = [0x2000]byte{}
	bus.HRAM = [0x7F]byte{}
	bus.bootEnabled = bus.BootROM != nil
}

// DisableBootROM unmaps the boot ROM for the rest of the session.
func (bus *Bus) DisableBootROM() {
	bus.bootEnabled = false
}

func (bus *Bus) BootROMEnabled() bool {
	return bus.bootEnabled
}

func (bus *Bus) Read8(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if bus.bootEnabled && addr < BootROMSize {
			return bus.BootROM[addr]
		}
		return bus.GamePak.Read8(addr)
	case addr < 0xA000:
		return bus.PPU.ReadVRAM(addr)
	case addr < 0xC000:
		return bus.GamePak.Read8(addr)
	case addr < 0xE000:
		return bus.WRAM[addr-0xC000]
	case addr < 0xFE00:
		return bus.WRAM[addr-0xE000]
	case addr < 0xFEA0:
		return bus.PPU.ReadOAM(addr)
	case addr < 0xFF00:
		return 0xFF
	case addr < 0xFF80:
		return bus.IOReg.Read8(addr)
	case addr < 0xFFFF:
		return bus.HRAM[addr-0xFF80]
	}
	return bus.IRQ.IE
}

func (bus *Bus) Write8(addr uint16, val byte) {
	switch {
	case addr < 0x8000:
		bus.GamePak.Write8(addr, val)
	case addr < 0xA000:
		bus.PPU.WriteVRAM(addr, val)
	case addr < 0xC000:
		bus.GamePak.Write8(addr, val)
	case addr < 0xE000:
		bus.WRAM[addr-0xC000] = val
	case addr < 0xFE00:
		bus.WRAM[addr-0xE000] = val
	case addr < 0xFEA0:
		bus.PPU.WriteOAM8(addr, val)
	case addr < 0xFF00:
		// unusable
	case addr < 0xFF80:
		bus.IOReg.Write8(addr, val)
	case addr < 0xFFFF:
		bus.HRAM[addr-0xFF80] = val
	default:
		bus.IRQ.IE = val
	}
}

// Peek reads without the pixel transfer lockout. It is the view used by
// OAM DMA and the debugger.
func (bus *Bus) Peek(addr uint16) byte {
	switch {
	case 0x8000 <= addr && addr < 0xA000:
		return bus.PPU.VRAM[addr-0x8000]
	case 0xFE00 <= addr && addr < 0xFEA0:
		return bus.PPU.OAM[addr-0xFE00]
	}
	return bus.Read8(addr)
}

type raw struct {
	bus *Bus
}

func (r raw) Read8(addr uint16) byte {
	return r.bus.Peek(addr)
}

func (r raw) Write8(addr uint16, val byte) {
	r.bus.Write8(addr, val)
}

// Raw returns a view of the bus whose reads ignore the lockout.
func (bus *Bus) Raw() memory.Memory {
	return raw{bus}
}
