package memory

// Memory is the CPU's view of the 16-bit address space.
type Memory interface {
	Read8(addr uint16) byte
	Write8(addr uint16, value byte)
}

func Read16(m Memory, addr uint16) uint16 {
	low := uint16(m.Read8(addr))
	high := uint16(m.Read8(addr + 1))
	return (high << 8) | low
}

func Write16(m Memory, addr uint16, value uint16) {
	m.Write8(addr, byte(value&0xFF))
	m.Write8(addr+1, byte(value>>8))
}
