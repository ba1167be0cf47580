package gamepak

// MBC1: 5-bit ROM bank register (BANK1) plus a 2-bit register (BANK2) used
// either as ROM bank bits 5-6 or as the RAM bank depending on the mode.
type mbc1 struct {
	g          *GamePak
	ramEnabled bool
	bank1      uint8
	bank2      uint8
	mode       uint8
}

func newMBC1(g *GamePak) *mbc1 {
	c := &mbc1{g: g}
	c.reset()
	return c
}

func (c *mbc1) reset() {
	c.ramEnabled = false
	c.bank1 = 1
	c.bank2 = 0
	c.mode = 0
}

func (c *mbc1) readROM(addr uint16) uint8 {
	if addr < 0x4000 {
		bank := 0
		if c.mode == 1 {
			bank = int(c.bank2) << 5
		}
		return c.g.romAt(bank, addr)
	}
	return c.g.romAt(int(c.bank2)<<5|int(c.bank1), addr)
}

func (c *mbc1) ramBank() int {
	if c.mode == 1 {
		return int(c.bank2)
	}
	return 0
}

func (c *mbc1) readRAM(addr uint16) uint8 {
	if !c.ramEnabled {
		return 0xFF
	}
	if i := c.g.ramIndex(c.ramBank(), addr); i >= 0 {
		return c.g.ram[i]
	}
	return 0xFF
}

func (c *mbc1) writeRAM(addr uint16, value uint8) {
	if !c.ramEnabled {
		return
	}
	if i := c.g.ramIndex(c.ramBank(), addr); i >= 0 {
		c.g.ram[i] = value
	}
}

func (c *mbc1) writeControl(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		c.bank1 = value & 0x1F
		if c.bank1 == 0 {
			c.bank1 = 1
		}
	case addr < 0x6000:
		c.bank2 = value & 0x03
	default:
		c.mode = value & 0x01
	}
}

// MBC2: 16 ROM banks and 512 half-bytes of built-in RAM. Address bit 8
// decides whether a write below 0x4000 is RAM enable or ROM bank select.
type mbc2 struct {
	g          *GamePak
	ramEnabled bool
	romBank    uint8
}

func newMBC2(g *GamePak) *mbc2 {
	c := &mbc2{g: g}
	c.reset()
	return c
}

func (c *mbc2) reset() {
	c.ramEnabled = false
	c.romBank = 1
}

func (c *mbc2) readROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return c.g.romAt(0, addr)
	}
	return c.g.romAt(int(c.romBank), addr)
}

func (c *mbc2) readRAM(addr uint16) uint8 {
	if !c.ramEnabled {
		return 0xFF
	}
	return 0xF0 | c.g.ram[addr&0x1FF]
}

func (c *mbc2) writeRAM(addr uint16, value uint8) {
	if !c.ramEnabled {
		return
	}
	c.g.ram[addr&0x1FF] = value & 0x0F
}

func (c *mbc2) writeControl(addr uint16, value uint8) {
	if addr >= 0x4000 {
		return
	}
	if addr&0x100 == 0 {
		c.ramEnabled = value&0x0F == 0x0A
		return
	}
	c.romBank = value & 0x0F
	if c.romBank == 0 {
		c.romBank = 1
	}
}

// MBC3: 7-bit ROM bank, four RAM banks and the clock registers mapped into
// the RAM window. The clock is latched and stored but does not advance.
type mbc3 struct {
	g          *GamePak
	ramEnabled bool
	romBank    uint8
	selected   uint8
	latch      uint8
	rtc        [5]uint8
	latched    [5]uint8
}

func newMBC3(g *GamePak) *mbc3 {
	c := &mbc3{g: g}
	c.reset()
	return c
}

func (c *mbc3) reset() {
	c.ramEnabled = false
	c.romBank = 1
	c.selected = 0
	c.latch = 0xFF
}

func (c *mbc3) readROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return c.g.romAt(0, addr)
	}
	return c.g.romAt(int(c.romBank), addr)
}

func (c *mbc3) readRAM(addr uint16) uint8 {
	if !c.ramEnabled {
		return 0xFF
	}
	switch {
	case c.selected <= 0x03:
		if i := c.g.ramIndex(int(c.selected), addr); i >= 0 {
			return c.g.ram[i]
		}
	case 0x08 <= c.selected && c.selected <= 0x0C:
		return c.latched[c.selected-0x08]
	}
	return 0xFF
}

func (c *mbc3) writeRAM(addr uint16, value uint8) {
	if !c.ramEnabled {
		return
	}
	switch {
	case c.selected <= 0x03:
		if i := c.g.ramIndex(int(c.selected), addr); i >= 0 {
			c.g.ram[i] = value
		}
	case 0x08 <= c.selected && c.selected <= 0x0C:
		c.rtc[c.selected-0x08] = value
		c.latched[c.selected-0x08] = value
	}
}

func (c *mbc3) writeControl(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		c.romBank = value & 0x7F
		if c.romBank == 0 {
			c.romBank = 1
		}
	case addr < 0x6000:
		c.selected = value
	default:
		if c.latch == 0x00 && value == 0x01 {
			c.latched = c.rtc
		}
		c.latch = value
	}
}

// MBC5: 9-bit ROM bank (bank 0 may be mapped in the switchable window) and
// 4-bit RAM bank.
type mbc5 struct {
	g          *GamePak
	ramEnabled bool
	romBank    uint16
	ramBank    uint8
}

func newMBC5(g *GamePak) *mbc5 {
	c := &mbc5{g: g}
	c.reset()
	return c
}

func (c *mbc5) reset() {
	c.ramEnabled = false
	c.romBank = 1
	c.ramBank = 0
}

func (c *mbc5) readROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return c.g.romAt(0, addr)
	}
	return c.g.romAt(int(c.romBank), addr)
}

func (c *mbc5) readRAM(addr uint16) uint8 {
	if !c.ramEnabled {
		return 0xFF
	}
	if i := c.g.ramIndex(int(c.ramBank), addr); i >= 0 {
		return c.g.ram[i]
	}
	return 0xFF
}

func (c *mbc5) writeRAM(addr uint16, value uint8) {
	if !c.ramEnabled {
		return
	}
	if i := c.g.ramIndex(int(c.ramBank), addr); i >= 0 {
		c.g.ram[i] = value
	}
}

func (c *mbc5) writeControl(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case addr < 0x3000:
		c.romBank = c.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		c.romBank = c.romBank&0xFF | uint16(value&0x01)<<8
	case addr < 0x6000:
		c.ramBank = value & 0x0F
	}
}
