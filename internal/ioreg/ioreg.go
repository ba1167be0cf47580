package ioreg

const (
	P1   = 0xFF00
	IF   = 0xFF0F
	BOOT = 0xFF50
)

// Register is implemented by every component that owns a range of I/O
// addresses.
type Register interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
}

type Joypad interface {
	Read() uint8
	Write(value uint8)
}

type Interrupts interface {
	ReadIF() uint8
	WriteIF(value uint8)
}

type BootControl interface {
	DisableBootROM()
}

// IOReg routes 0xFF00-0xFF7F to the owning component. Addresses without an
// owner read 0xFF and ignore writes.
type IOReg struct {
	Joypad  Joypad
	Serial  Register
	Timer   Register
	IRQ     Interrupts
	APU     Register
	PPU     Register
	DMA     Register
	BootROM BootControl
}

func NewIOReg(joypad Joypad, serial, timer Register, irq Interrupts, apu, ppu, dma Register, boot BootControl) *IOReg {
	return &IOReg{
		Joypad:  joypad,
		Serial:  serial,
		Timer:   timer,
		IRQ:     irq,
		APU:     apu,
		PPU:     ppu,
		DMA:     dma,
		BootROM: boot,
	}
}

func (r *IOReg) owner(addr uint16) Register {
	switch {
	case addr == 0xFF01 || addr == 0xFF02:
		return r.Serial
	case 0xFF04 <= addr && addr <= 0xFF07:
		return r.Timer
	case 0xFF10 <= addr && addr <= 0xFF3F:
		return r.APU
	case addr == 0xFF46:
		return r.DMA
	case 0xFF40 <= addr && addr <= 0xFF4B:
		return r.PPU
	}
	return nil
}

func (r *IOReg) Read8(addr uint16) uint8 {
	switch addr {
	case P1:
		return r.Joypad.Read()
	case IF:
		return r.IRQ.ReadIF()
	}
	if owner := r.owner(addr); owner != nil {
		return owner.Read(addr)
	}
	return 0xFF
}

func (r *IOReg) Write8(addr uint16, value uint8) {
	switch addr {
	case P1:
		r.Joypad.Write(value)
		return
	case IF:
		r.IRQ.WriteIF(value)
		return
	case BOOT:
		if value != 0 {
			r.BootROM.DisableBootROM()
		}
		return
	}
	if owner := r.owner(addr); owner != nil {
		owner.Write(addr, value)
	}
}
