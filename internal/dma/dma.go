package dma

import (
	"github.com/Div9851/gb-go/internal/memory"
)

const (
	DMA = 0xFF46

	oamSize = 0xA0
)

// OAMWriter receives the copied bytes. Writes go straight to object
// attribute memory and are not subject to the pixel transfer lockout.
type OAMWriter interface {
	WriteOAM(index int, value uint8)
}

// OAMDMA copies 160 bytes from (DMA << 8) into OAM when DMA is written.
// The copy is performed at once rather than over 160 machine cycles.
type OAMDMA struct {
	DMA    uint8
	memory memory.Memory
	oam    OAMWriter
}

func NewOAMDMA(memory memory.Memory, oam OAMWriter) *OAMDMA {
	return &OAMDMA{
		DMA:    0xFF,
		memory: memory,
		oam:    oam,
	}
}

func (d *OAMDMA) Reset() {
	d.DMA = 0xFF
}

func (d *OAMDMA) Read(addr uint16) uint8 {
	return d.DMA
}

func (d *OAMDMA) Write(addr uint16, value uint8) {
	d.DMA = value
	d.Trigger()
}

func (d *OAMDMA) Trigger() {
	src := uint16(d.DMA) << 8
	// 0xE000 and above reads from work RAM on hardware
	if src >= 0xE000 {
		src -= 0x2000
	}
	for i := 0; i < oamSize; i++ {
		d.oam.WriteOAM(i, d.memory.Read8(src+uint16(i)))
	}
}
