package ppu

import "sort"

const (
	maxSpritesPerLine = 10
	spriteCount       = 40

	attrBehindBG = 1 << 7
	attrYFlip    = 1 << 6
	attrXFlip    = 1 << 5
	attrPalette  = 1 << 4
)

type sprite struct {
	index int
	y     int
	x     int
	tile  uint8
	attr  uint8
}

type objPixel struct {
	color  uint8 // 0 is transparent
	attr   uint8
	filled bool
}

func (ppu *PPU) renderScanline() {
	y := int(ppu.LY)
	line := ppu.frames[ppu.back][y*ScreenWidth : (y+1)*ScreenWidth]

	// raw color numbers before palette mapping, needed for sprite priority
	var bg [ScreenWidth]uint8

	if ppu.LCDC&bgEnable != 0 {
		ppu.renderBackground(y, &bg)
		ppu.renderWindow(y, &bg)
	}

	for x := 0; x < ScreenWidth; x++ {
		line[x] = shade(ppu.BGP, bg[x])
	}

	if ppu.LCDC&objEnable != 0 {
		ppu.renderSprites(y, &bg, line)
	}
}

func shade(palette, color uint8) uint8 {
	return palette >> (color * 2) & 0x03
}

func (ppu *PPU) renderBackground(y int, bg *[ScreenWidth]uint8) {
	mapBase := 0x1800
	if ppu.LCDC&bgMap != 0 {
		mapBase = 0x1C00
	}
	srcY := (y + int(ppu.SCY)) & 0xFF
	for x := 0; x < ScreenWidth; x++ {
		srcX := (x + int(ppu.SCX)) & 0xFF
		tile := ppu.VRAM[mapBase+srcY/8*32+srcX/8]
		bg[x] = ppu.tilePixel(ppu.tileAddr(tile), srcX%8, srcY%8)
	}
}

func (ppu *PPU) renderWindow(y int, bg *[ScreenWidth]uint8) {
	if ppu.LCDC&windowEnable == 0 || y < int(ppu.WY) || ppu.WX > 166 {
		return
	}
	mapBase := 0x1800
	if ppu.LCDC&windowMap != 0 {
		mapBase = 0x1C00
	}
	wy := ppu.windowLine
	start := int(ppu.WX) - 7
	for x := max(start, 0); x < ScreenWidth; x++ {
		wx := x - start
		tile := ppu.VRAM[mapBase+wy/8*32+wx/8]
		bg[x] = ppu.tilePixel(ppu.tileAddr(tile), wx%8, wy%8)
	}
	ppu.windowLine++
}

// tileAddr returns the VRAM offset of a background or window tile.
func (ppu *PPU) tileAddr(tile uint8) int {
	if ppu.LCDC&tileDataSigned != 0 {
		return int(tile) * 16
	}
	return 0x1000 + int(int8(tile))*16
}

func (ppu *PPU) tilePixel(addr, x, y int) uint8 {
	lo := ppu.VRAM[addr+y*2]
	hi := ppu.VRAM[addr+y*2+1]
	bit := 7 - x
	return (hi>>bit&1)<<1 | lo>>bit&1
}

// lineSprites returns the sprites on line y in drawing priority order:
// lower X first, then lower OAM index.
func (ppu *PPU) lineSprites(y int) []sprite {
	height := 8
	if ppu.LCDC&objSize != 0 {
		height = 16
	}
	sprites := make([]sprite, 0, maxSpritesPerLine)
	for i := 0; i < spriteCount && len(sprites) < maxSpritesPerLine; i++ {
		s := sprite{
			index: i,
			y:     int(ppu.OAM[i*4]) - 16,
			x:     int(ppu.OAM[i*4+1]) - 8,
			tile:  ppu.OAM[i*4+2],
			attr:  ppu.OAM[i*4+3],
		}
		if y >= s.y && y < s.y+height {
			sprites = append(sprites, s)
		}
	}
	sort.SliceStable(sprites, func(a, b int) bool {
		return sprites[a].x < sprites[b].x
	})
	return sprites
}

func (ppu *PPU) renderSprites(y int, bg *[ScreenWidth]uint8, line []uint8) {
	height := 8
	if ppu.LCDC&objSize != 0 {
		height = 16
	}

	var objs [ScreenWidth]objPixel
	for _, s := range ppu.lineSprites(y) {
		row := y - s.y
		if s.attr&attrYFlip != 0 {
			row = height - 1 - row
		}
		tile := s.tile
		if height == 16 {
			tile &^= 1
		}
		addr := int(tile) * 16
		for col := 0; col < 8; col++ {
			x := s.x + col
			if x < 0 || x >= ScreenWidth || objs[x].filled {
				continue
			}
			px := col
			if s.attr&attrXFlip != 0 {
				px = 7 - col
			}
			color := ppu.tilePixel(addr, px, row)
			if color == 0 {
				continue
			}
			objs[x] = objPixel{color: color, attr: s.attr, filled: true}
		}
	}

	for x, o := range objs {
		if !o.filled {
			continue
		}
		if o.attr&attrBehindBG != 0 && bg[x] != 0 {
			continue
		}
		palette := ppu.OBP0
		if o.attr&attrPalette != 0 {
			palette = ppu.OBP1
		}
		line[x] = shade(palette, o.color)
	}
}
