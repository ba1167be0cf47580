package ppu

import (
	"github.com/Div9851/gb-go/internal/irq"
)

const (
	LCDC = 0xFF40
	STAT = 0xFF41
	SCY  = 0xFF42
	SCX  = 0xFF43
	LY   = 0xFF44
	LYC  = 0xFF45
	BGP  = 0xFF47
	OBP0 = 0xFF48
	OBP1 = 0xFF49
	WY   = 0xFF4A
	WX   = 0xFF4B
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	cyclesPerScanline   = 456
	oamSearchCycles     = 80
	pixelTransferCycles = 172
	totalScanlines      = 154

	// FrameCycles is the number of cycles between two frame ready signals.
	FrameCycles = cyclesPerScanline * totalScanlines
)

const (
	lcdEnable      = 1 << 7
	windowMap      = 1 << 6
	windowEnable   = 1 << 5
	tileDataSigned = 1 << 4
	bgMap          = 1 << 3
	objSize        = 1 << 2
	objEnable      = 1 << 1
	bgEnable       = 1 << 0
)

const (
	statCoincidenceIRQ = 1 << 6
	statOAMIRQ         = 1 << 5
	statVBlankIRQ      = 1 << 4
	statHBlankIRQ      = 1 << 3
	statCoincidence    = 1 << 2
	statWritable       = 0x78
)

type Mode uint8

const (
	HBlank Mode = iota
	VBlank
	OAMSearch
	PixelTransfer
)

var modeNames = [...]string{"HBlank", "VBlank", "OAM", "Transfer"}

func (m Mode) String() string {
	return modeNames[m&3]
}

// Frame holds one shade index (0-3) per pixel, row major.
type Frame [ScreenWidth * ScreenHeight]uint8

type PPU struct {
	VRAM [0x2000]byte
	OAM  [0xA0]byte

	LCDC uint8
	// STAT holds only the interrupt enable bits. Mode and coincidence are
	// derived when the register is read.
	STAT uint8
	SCY  uint8
	SCX  uint8
	LY   uint8
	LYC  uint8
	BGP  uint8
	OBP0 uint8
	OBP1 uint8
	WY   uint8
	WX   uint8

	mode       Mode
	dot        int
	windowLine int
	statLine   bool
	offCycles  int

	frames     [2]Frame
	back       int
	frameReady bool

	IRQ *irq.IRQ
}

func NewPPU(irq *irq.IRQ) *PPU {
	ppu := &PPU{
		IRQ: irq,
	}
	ppu.Reset()
	return ppu
}

func (ppu *PPU) Reset() {
	irq := ppu.IRQ
	*ppu = PPU{IRQ: irq}
	ppu.mode = OAMSearch
}

func (ppu *PPU) Mode() Mode {
	if !ppu.enabled() {
		return HBlank
	}
	return ppu.mode
}

// Dot is the position within the current scanline in cycles.
func (ppu *PPU) Dot() int {
	return ppu.dot
}

// Frame returns the last completed frame. It is not written again until
// the frame after next is finished.
func (ppu *PPU) Frame() *Frame {
	return &ppu.frames[ppu.back^1]
}

// FrameReady reports whether a frame was completed since the last call.
func (ppu *PPU) FrameReady() bool {
	ready := ppu.frameReady
	ppu.frameReady = false
	return ready
}

func (ppu *PPU) enabled() bool {
	return ppu.LCDC&lcdEnable != 0
}

func (ppu *PPU) Advance(cycles int) {
	for i := 0; i < cycles; i++ {
		ppu.tick()
	}
}

func (ppu *PPU) tick() {
	if !ppu.enabled() {
		// keep the presentation side paced while the display is off
		ppu.offCycles++
		if ppu.offCycles == FrameCycles {
			ppu.offCycles = 0
			ppu.frames[ppu.back] = Frame{}
			ppu.swap()
		}
		return
	}

	ppu.dot++
	if ppu.LY < ScreenHeight {
		switch ppu.dot {
		case oamSearchCycles:
			ppu.mode = PixelTransfer
		case oamSearchCycles + pixelTransferCycles:
			ppu.renderScanline()
			ppu.mode = HBlank
		case cyclesPerScanline:
			ppu.nextLine()
		}
	} else if ppu.dot == cyclesPerScanline {
		ppu.nextLine()
	}
	ppu.updateStatLine()
}

func (ppu *PPU) nextLine() {
	ppu.dot = 0
	ppu.LY++
	switch {
	case ppu.LY == ScreenHeight:
		ppu.mode = VBlank
		ppu.IRQ.Request(irq.VBlank)
	case ppu.LY == totalScanlines:
		ppu.LY = 0
		ppu.windowLine = 0
		ppu.mode = OAMSearch
		ppu.swap()
	case ppu.LY < ScreenHeight:
		ppu.mode = OAMSearch
	}
}

func (ppu *PPU) swap() {
	ppu.back ^= 1
	ppu.frameReady = true
}

func (ppu *PPU) coincidence() bool {
	return ppu.LY == ppu.LYC
}

// updateStatLine requests the STAT interrupt on a rising edge of the OR of
// all enabled conditions.
func (ppu *PPU) updateStatLine() {
	line := false
	if ppu.enabled() {
		if ppu.STAT&statCoincidenceIRQ != 0 && ppu.coincidence() {
			line = true
		}
		switch ppu.mode {
		case HBlank:
			line = line || ppu.STAT&statHBlankIRQ != 0
		case VBlank:
			line = line || ppu.STAT&statVBlankIRQ != 0
		case OAMSearch:
			line = line || ppu.STAT&statOAMIRQ != 0
		}
	}
	if line && !ppu.statLine {
		ppu.IRQ.Request(irq.STAT)
	}
	ppu.statLine = line
}

func (ppu *PPU) Read(addr uint16) uint8 {
	switch addr {
	case LCDC:
		return ppu.LCDC
	case STAT:
		value := 0x80 | ppu.STAT&statWritable
		if ppu.enabled() {
			value |= uint8(ppu.mode)
			if ppu.coincidence() {
				value |= statCoincidence
			}
		}
		return value
	case SCY:
		return ppu.SCY
	case SCX:
		return ppu.SCX
	case LY:
		return ppu.LY
	case LYC:
		return ppu.LYC
	case BGP:
		return ppu.BGP
	case OBP0:
		return ppu.OBP0
	case OBP1:
		return ppu.OBP1
	case WY:
		return ppu.WY
	case WX:
		return ppu.WX
	}
	return 0xFF
}

func (ppu *PPU) Write(addr uint16, value uint8) {
	switch addr {
	case LCDC:
		ppu.setLCDC(value)
	case STAT:
		ppu.STAT = value & statWritable
	case SCY:
		ppu.SCY = value
	case SCX:
		ppu.SCX = value
	case LY:
		// read only
	case LYC:
		ppu.LYC = value
	case BGP:
		ppu.BGP = value
	case OBP0:
		ppu.OBP0 = value
	case OBP1:
		ppu.OBP1 = value
	case WY:
		ppu.WY = value
	case WX:
		ppu.WX = value
	}
	ppu.updateStatLine()
}

func (ppu *PPU) setLCDC(value uint8) {
	wasEnabled := ppu.enabled()
	ppu.LCDC = value
	switch {
	case wasEnabled && !ppu.enabled():
		ppu.LY = 0
		ppu.dot = 0
		ppu.mode = HBlank
		ppu.offCycles = 0
		ppu.statLine = false
	case !wasEnabled && ppu.enabled():
		ppu.LY = 0
		ppu.dot = 0
		ppu.windowLine = 0
		ppu.mode = OAMSearch
	}
}

func (ppu *PPU) locked() bool {
	return ppu.enabled() && ppu.mode == PixelTransfer
}

// ReadVRAM serves 0x8000-0x9FFF. The CPU cannot see VRAM during pixel
// transfer.
func (ppu *PPU) ReadVRAM(addr uint16) uint8 {
	if ppu.locked() {
		return 0xFF
	}
	return ppu.VRAM[addr&0x1FFF]
}

func (ppu *PPU) WriteVRAM(addr uint16, value uint8) {
	if ppu.locked() {
		return
	}
	ppu.VRAM[addr&0x1FFF] = value
}

// ReadOAM serves 0xFE00-0xFE9F.
func (ppu *PPU) ReadOAM(addr uint16) uint8 {
	if ppu.locked() {
		return 0xFF
	}
	return ppu.OAM[addr-0xFE00]
}

func (ppu *PPU) WriteOAM8(addr uint16, value uint8) {
	if ppu.locked() {
		return
	}
	ppu.OAM[addr-0xFE00] = value
}

// WriteOAM is the DMA path and ignores the lockout.
func (ppu *PPU) WriteOAM(index int, value uint8) {
	ppu.OAM[index] = value
}
