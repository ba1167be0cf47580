package gamepak

import (
	"fmt"
	"strings"
)

type CartridgeType uint8

const (
	ROM               CartridgeType = 0x00
	MBC1              CartridgeType = 0x01
	MBC1RAM           CartridgeType = 0x02
	MBC1RAMBATT       CartridgeType = 0x03
	MBC2              CartridgeType = 0x05
	MBC2BATT          CartridgeType = 0x06
	ROMRAM            CartridgeType = 0x08
	ROMRAMBATT        CartridgeType = 0x09
	MBC3TIMERBATT     CartridgeType = 0x0F
	MBC3TIMERRAMBATT  CartridgeType = 0x10
	MBC3              CartridgeType = 0x11
	MBC3RAM           CartridgeType = 0x12
	MBC3RAMBATT       CartridgeType = 0x13
	MBC5              CartridgeType = 0x19
	MBC5RAM           CartridgeType = 0x1A
	MBC5RAMBATT       CartridgeType = 0x1B
	MBC5RUMBLE        CartridgeType = 0x1C
	MBC5RUMBLERAM     CartridgeType = 0x1D
	MBC5RUMBLERAMBATT CartridgeType = 0x1E
)

var typeNames = map[CartridgeType]string{
	ROM:               "ROM ONLY",
	MBC1:              "MBC1",
	MBC1RAM:           "MBC1+RAM",
	MBC1RAMBATT:       "MBC1+RAM+BATTERY",
	MBC2:              "MBC2",
	MBC2BATT:          "MBC2+BATTERY",
	ROMRAM:            "ROM+RAM",
	ROMRAMBATT:        "ROM+RAM+BATTERY",
	MBC3TIMERBATT:     "MBC3+TIMER+BATTERY",
	MBC3TIMERRAMBATT:  "MBC3+TIMER+RAM+BATTERY",
	MBC3:              "MBC3",
	MBC3RAM:           "MBC3+RAM",
	MBC3RAMBATT:       "MBC3+RAM+BATTERY",
	MBC5:              "MBC5",
	MBC5RAM:           "MBC5+RAM",
	MBC5RAMBATT:       "MBC5+RAM+BATTERY",
	MBC5RUMBLE:        "MBC5+RUMBLE",
	MBC5RUMBLERAM:     "MBC5+RUMBLE+RAM",
	MBC5RUMBLERAMBATT: "MBC5+RUMBLE+RAM+BATTERY",
}

func (c CartridgeType) String() string {
	if name, ok := typeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown cartridge type %02X", uint8(c))
}

// Battery reports whether RAM on this cartridge survives power off.
func (c CartridgeType) Battery() bool {
	switch c {
	case MBC1RAMBATT, MBC2BATT, ROMRAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT,
		MBC3RAMBATT, MBC5RAMBATT, MBC5RUMBLERAMBATT:
		return true
	}
	return false
}

const (
	headerEnd      = 0x150
	titleAddr      = 0x134
	cgbFlagAddr    = 0x143
	licenseeAddr   = 0x144
	sgbFlagAddr    = 0x146
	typeAddr       = 0x147
	romSizeAddr    = 0x148
	ramSizeAddr    = 0x149
	oldLicensee    = 0x14B
	versionAddr    = 0x14C
	checksumAddr   = 0x14D
	romBankSize    = 16 * 1024
	ramBankSize    = 8 * 1024
	mbc2RAMSize    = 512
	maxROMSizeCode = 8
)

var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header holds the fields of the cartridge header at 0x0100-0x014F.
type Header struct {
	Title          string
	CGBFlag        uint8
	SGB            bool
	Licensee       string
	Type           CartridgeType
	ROMSizeCode    uint8
	RAMSizeCode    uint8
	Version        uint8
	HeaderChecksum uint8
	// ChecksumValid is false when the boot ROM would refuse the cartridge.
	// It is reported but not enforced.
	ChecksumValid bool
}

// ROMSize returns the ROM size in bytes declared by the header.
func (h Header) ROMSize() int {
	return 32 * 1024 << h.ROMSizeCode
}

func (h Header) RAMSize() int {
	if h.Type == MBC2 || h.Type == MBC2BATT {
		return mbc2RAMSize
	}
	return ramSizes[h.RAMSizeCode]
}

func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < headerEnd {
		return Header{}, fmt.Errorf("%w: image is %d bytes", ErrHeader, len(rom))
	}

	h := Header{
		CGBFlag:        rom[cgbFlagAddr],
		SGB:            rom[sgbFlagAddr] == 0x03,
		Type:           CartridgeType(rom[typeAddr]),
		ROMSizeCode:    rom[romSizeAddr],
		RAMSizeCode:    rom[ramSizeAddr],
		Version:        rom[versionAddr],
		HeaderChecksum: rom[checksumAddr],
	}

	title := rom[titleAddr : cgbFlagAddr+1]
	if h.CGBFlag&0x80 != 0 {
		title = title[:len(title)-1]
	}
	if end := strings.IndexByte(string(title), 0); end >= 0 {
		title = title[:end]
	}
	h.Title = strings.TrimSpace(string(title))

	if rom[oldLicensee] == 0x33 {
		h.Licensee = string(rom[licenseeAddr : licenseeAddr+2])
	} else {
		h.Licensee = fmt.Sprintf("%02X", rom[oldLicensee])
	}

	var checksum uint8
	for addr := titleAddr; addr < checksumAddr; addr++ {
		checksum = checksum - rom[addr] - 1
	}
	h.ChecksumValid = checksum == h.HeaderChecksum

	if _, ok := typeNames[h.Type]; !ok {
		return h, fmt.Errorf("%w: %02X", ErrUnsupportedType, uint8(h.Type))
	}
	if h.ROMSizeCode > maxROMSizeCode {
		return h, fmt.Errorf("%w: rom size code %02X", ErrHeader, h.ROMSizeCode)
	}
	if _, ok := ramSizes[h.RAMSizeCode]; !ok {
		return h, fmt.Errorf("%w: ram size code %02X", ErrHeader, h.RAMSizeCode)
	}

	return h, nil
}
