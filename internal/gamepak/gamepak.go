package gamepak

import (
	"errors"
	"fmt"
)

var (
	ErrHeader          = errors.New("malformed cartridge header")
	ErrROMSize         = errors.New("rom image size does not match header")
	ErrUnsupportedType = errors.New("unsupported cartridge type")
	ErrRAMSize         = errors.New("save data size does not match cartridge ram")
)

// GamePak owns the ROM image, the cartridge RAM and the bank controller.
// The ROM is never written; bank switching only changes which part of it is
// visible.
type GamePak struct {
	Header Header

	rom      []byte
	ram      []byte
	romBanks int
	ramBanks int

	controller controller
}

// controller is implemented once per bank switching scheme. The set of
// schemes is closed and chosen from the header type byte at load time.
type controller interface {
	readROM(addr uint16) uint8
	readRAM(addr uint16) uint8
	writeRAM(addr uint16, value uint8)
	writeControl(addr uint16, value uint8)
	reset()
}

func NewGamePak(data []byte) (*GamePak, error) {
	header, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if len(data) != header.ROMSize() {
		return nil, fmt.Errorf("%w: header declares %d bytes, image is %d bytes", ErrROMSize, header.ROMSize(), len(data))
	}

	gamepak := &GamePak{
		Header:   header,
		rom:      append([]byte(nil), data...),
		ram:      make([]byte, header.RAMSize()),
		romBanks: header.ROMSize() / romBankSize,
	}
	gamepak.ramBanks = (len(gamepak.ram) + ramBankSize - 1) / ramBankSize

	switch header.Type {
	case ROM, ROMRAM, ROMRAMBATT:
		gamepak.controller = &romOnly{gamepak}
	case MBC1, MBC1RAM, MBC1RAMBATT:
		gamepak.controller = newMBC1(gamepak)
	case MBC2, MBC2BATT:
		gamepak.controller = newMBC2(gamepak)
	case MBC3, MBC3RAM, MBC3RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT:
		gamepak.controller = newMBC3(gamepak)
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		gamepak.controller = newMBC5(gamepak)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, header.Type)
	}

	return gamepak, nil
}

// Read8 serves 0x0000-0x7FFF and 0xA000-0xBFFF.
func (g *GamePak) Read8(addr uint16) uint8 {
	switch {
	case addr < 0x8000:
		return g.controller.readROM(addr)
	case 0xA000 <= addr && addr < 0xC000:
		return g.controller.readRAM(addr)
	}
	return 0xFF
}

// Write8 treats writes below 0x8000 as controller writes and writes to
// 0xA000-0xBFFF as RAM writes. Anything else is ignored.
func (g *GamePak) Write8(addr uint16, value uint8) {
	switch {
	case addr < 0x8000:
		g.controller.writeControl(addr, value)
	case 0xA000 <= addr && addr < 0xC000:
		g.controller.writeRAM(addr, value)
	}
}

// Reset restores the power-on bank selection. RAM contents are kept.
func (g *GamePak) Reset() {
	g.controller.reset()
}

func (g *GamePak) ROMBanks() int {
	return g.romBanks
}

func (g *GamePak) RAMSize() int {
	return len(g.ram)
}

func (g *GamePak) HasBattery() bool {
	return g.Header.Type.Battery() && len(g.ram) > 0
}

// SaveRAM returns a copy of the cartridge RAM.
func (g *GamePak) SaveRAM() []byte {
	return append([]byte(nil), g.ram...)
}

// LoadRAM replaces the cartridge RAM. The data must be exactly as large as
// the RAM; otherwise the RAM is left untouched.
func (g *GamePak) LoadRAM(data []byte) error {
	if len(data) != len(g.ram) {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrRAMSize, len(g.ram), len(data))
	}
	copy(g.ram, data)
	return nil
}

// romAt returns the byte at offset within ROM bank. The bank number is
// wrapped to the number of banks on the cartridge.
func (g *GamePak) romAt(bank int, offset uint16) uint8 {
	bank &= g.romBanks - 1
	return g.rom[bank*romBankSize+int(offset&0x3FFF)]
}

func (g *GamePak) ramIndex(bank int, addr uint16) int {
	if len(g.ram) == 0 {
		return -1
	}
	return (bank*ramBankSize + int(addr-0xA000)) % len(g.ram)
}

type romOnly struct {
	g *GamePak
}

func (c *romOnly) readROM(addr uint16) uint8 {
	return c.g.romAt(int(addr>>14), addr)
}

func (c *romOnly) readRAM(addr uint16) uint8 {
	if i := c.g.ramIndex(0, addr); i >= 0 {
		return c.g.ram[i]
	}
	return 0xFF
}

func (c *romOnly) writeRAM(addr uint16, value uint8) {
	if i := c.g.ramIndex(0, addr); i >= 0 {
		c.g.ram[i] = value
	}
}

func (c *romOnly) writeControl(addr uint16, value uint8) {}

func (c *romOnly) reset() {}
