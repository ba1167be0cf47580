package emulator

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/Div9851/gb-go/internal/cpu"
	"github.com/Div9851/gb-go/internal/gamepak"
	"github.com/Div9851/gb-go/internal/irq"
	"github.com/Div9851/gb-go/internal/logger"
	"github.com/Div9851/gb-go/internal/ppu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCart returns a 32 KiB image with program at the entry point.
func buildCart(cartType uint8, ramCode uint8, program ...uint8) []byte {
	rom := make([]byte, 32*1024)
	copy(rom[0x100:], program)
	copy(rom[0x134:], "GBTEST")
	rom[0x147] = cartType
	rom[0x149] = ramCode
	var checksum uint8
	for addr := 0x134; addr < 0x14D; addr++ {
		checksum = checksum - rom[addr] - 1
	}
	rom[0x14D] = checksum
	return rom
}

// NOP; JR -2
var spinProgram = []uint8{0x00, 0x18, 0xFE}

func newTestGB(t *testing.T, rom []byte, opts ...Option) *GB {
	t.Helper()
	gb, err := New(rom, opts...)
	require.NoError(t, err)
	return gb
}

func TestNew(t *testing.T) {
	type testArgs struct {
		rom  []byte
		opts []Option
		err  error
	}

	testDo := func(t *testing.T, in testArgs) {
		_, err := New(in.rom, in.opts...)
		if in.err == nil {
			assert.NoError(t, err)
			return
		}
		assert.ErrorIs(t, err, in.err)
	}

	t.Run("rom only", func(t *testing.T) {
		testDo(t, testArgs{rom: buildCart(0x00, 0, spinProgram...)})
	})
	t.Run("truncated rom", func(t *testing.T) {
		testDo(t, testArgs{rom: buildCart(0x00, 0)[:0x8000-1], err: gamepak.ErrROMSize})
	})
	t.Run("short header", func(t *testing.T) {
		testDo(t, testArgs{rom: make([]byte, 0x100), err: gamepak.ErrHeader})
	})
	t.Run("unsupported cartridge", func(t *testing.T) {
		testDo(t, testArgs{rom: buildCart(0xFC, 0), err: gamepak.ErrUnsupportedType})
	})
	t.Run("boot rom too short", func(t *testing.T) {
		testDo(t, testArgs{rom: buildCart(0x00, 0), opts: []Option{WithBootROM(make([]byte, 255))}, err: ErrBootROMSize})
	})
	t.Run("boot rom too long", func(t *testing.T) {
		testDo(t, testArgs{rom: buildCart(0x00, 0), opts: []Option{WithBootROM(make([]byte, 257))}, err: ErrBootROMSize})
	})
	t.Run("save data size mismatch", func(t *testing.T) {
		testDo(t, testArgs{rom: buildCart(0x03, 0x02), opts: []Option{WithSaveRAM(make([]byte, 100))}, err: gamepak.ErrRAMSize})
	})
}

func TestInvalidOptions(t *testing.T) {
	rom := buildCart(0x00, 0)
	for name, opt := range map[string]Option{
		"zero sample rate":  WithSampleRate(0),
		"huge sample rate":  WithSampleRate(ClockRate + 1),
		"zero buffer size":  WithAudioBufferSize(0),
		"nil logger":        WithLogger(nil),
		"negative buffer":   WithAudioBufferSize(-4),
		"negative sample":   WithSampleRate(-1),
		"empty boot rom":    WithBootROM(nil),
		"oversize boot rom": WithBootROM(make([]byte, 512)),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(rom, opt)
			assert.Error(t, err)
		})
	}
}

func TestPostBootState(t *testing.T) {
	gb := newTestGB(t, buildCart(0x00, 0, spinProgram...))

	assert.Equal(t, uint16(0x0100), gb.CPU.PC)
	assert.Equal(t, uint16(0xFFFE), gb.CPU.SP)
	assert.Equal(t, uint16(0x01B0), gb.CPU.AF())
	assert.Equal(t, uint8(0x91), gb.Peek(ppu.LCDC))
	assert.Equal(t, uint8(0xFC), gb.Peek(ppu.BGP))
	assert.Equal(t, uint8(0xAB), gb.Peek(0xFF04))
	assert.Equal(t, uint8(0x80), gb.Peek(0xFF26)&0x80)
	assert.Equal(t, uint8(0xE0), gb.Peek(0xFF0F))
	assert.False(t, gb.Bus.BootROMEnabled())
}

func TestBootROM(t *testing.T) {
	boot := make([]byte, 256)
	// LD A,$01; LDH ($50),A
	copy(boot[0xFC:], []uint8{0x3E, 0x01, 0xE0, 0x50})
	rom := buildCart(0x00, 0, spinProgram...)
	rom[0x00] = 0x42

	gb := newTestGB(t, rom, WithBootROM(boot))
	assert.Equal(t, uint16(0x0000), gb.CPU.PC)
	assert.Equal(t, uint8(0x00), gb.Peek(0x0000))
	assert.Equal(t, uint8(0x00), gb.Peek(ppu.LCDC))

	// the boot rom is all NOPs up to the unmapping write at 0xFC
	for gb.CPU.PC != 0x0100 {
		_, err := gb.Step()
		require.NoError(t, err)
	}
	assert.False(t, gb.Bus.BootROMEnabled())
	assert.Equal(t, uint8(0x42), gb.Peek(0x0000))
}

func TestOneFrame(t *testing.T) {
	gb := newTestGB(t, buildCart(0x00, 0, spinProgram...))

	vblankSeen := false
	for gb.Cycles() < FrameCycles {
		_, err := gb.Step()
		require.NoError(t, err)
		if gb.Cycles() >= FrameCycles {
			break
		}
		requested := gb.IRQ.IF&irq.VBlank.Bit() != 0
		if gb.PPU.LY >= ppu.ScreenHeight {
			vblankSeen = true
			assert.True(t, requested, "LY=%d", gb.PPU.LY)
		} else {
			assert.False(t, requested, "LY=%d", gb.PPU.LY)
		}
	}

	assert.True(t, vblankSeen)
	assert.Equal(t, uint64(1), gb.Frames())
	assert.True(t, gb.FrameReady())
	assert.False(t, gb.FrameReady())
}

func TestRunFrame(t *testing.T) {
	gb := newTestGB(t, buildCart(0x00, 0, spinProgram...))

	for i := 1; i <= 3; i++ {
		require.NoError(t, gb.RunFrame())
		assert.Equal(t, uint64(i), gb.Frames())
	}
	assert.GreaterOrEqual(t, gb.Cycles(), uint64(3*FrameCycles))
	assert.Less(t, gb.Cycles(), uint64(3*FrameCycles+12))
}

func TestIllegalOpcodeStopsRunFrame(t *testing.T) {
	gb := newTestGB(t, buildCart(0x00, 0, 0x00, 0xD3))

	err := gb.RunFrame()
	var opErr *cpu.OpcodeError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, uint16(0x0101), opErr.PC)
	assert.Equal(t, uint8(0xD3), opErr.Opcode)
	assert.True(t, gb.Paused())

	_, again := gb.Step()
	assert.ErrorAs(t, again, &opErr)
}

func TestDeterministicFrames(t *testing.T) {
	// draw a checkerboard tile over the whole map, then spin
	program := []uint8{
		0x21, 0x00, 0x80, // LD HL,$8000
		0x3E, 0xAA,       // LD A,$AA
		0x22,             // LD (HL+),A
		0x2F,             // CPL
		0x22,             // LD (HL+),A
		0x2F,             // CPL
		0x7D,             // LD A,L
		0xFE, 0x10,       // CP $10
		0x3E, 0xAA,       // LD A,$AA
		0x20, 0xF5,       // JR NZ,-11
		0x18, 0xFE,       // JR -2
	}
	rom := buildCart(0x00, 0, program...)

	run := func() ppu.Frame {
		gb := newTestGB(t, rom)
		for i := 0; i < 3; i++ {
			require.NoError(t, gb.RunFrame())
		}
		return *gb.Frame()
	}
	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func TestPixels(t *testing.T) {
	gb := newTestGB(t, buildCart(0x00, 0, spinProgram...))
	require.NoError(t, gb.RunFrame())

	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	gb.Pixels(pixels)
	// tile 0 is blank, BGP=0xFC maps colour 0 to shade 0
	c := DefaultPalette[0]
	assert.Equal(t, []byte{c.R, c.G, c.B, c.A}, pixels[:4])
	assert.Equal(t, []byte{c.R, c.G, c.B, c.A}, pixels[len(pixels)-4:])
}

func TestSaveRAMRoundTrip(t *testing.T) {
	rom := buildCart(0x03, 0x02, spinProgram...)
	data := []byte("persistent")

	gb := newTestGB(t, rom)
	require.True(t, gb.HasBattery())
	gb.Bus.Write8(0x0000, 0x0A)
	for i, b := range data {
		gb.Bus.Write8(0xA000+uint16(i), b)
	}
	saved := gb.SaveRAM()
	require.Len(t, saved, 8*1024)

	t.Run("load ram", func(t *testing.T) {
		fresh := newTestGB(t, rom)
		require.NoError(t, fresh.LoadRAM(saved))
		fresh.Bus.Write8(0x0000, 0x0A)
		for i, b := range data {
			assert.Equal(t, b, fresh.Bus.Read8(0xA000+uint16(i)))
		}
	})
	t.Run("option", func(t *testing.T) {
		fresh := newTestGB(t, rom, WithSaveRAM(saved))
		fresh.Bus.Write8(0x0000, 0x0A)
		for i, b := range data {
			assert.Equal(t, b, fresh.Bus.Read8(0xA000+uint16(i)))
		}
	})
	t.Run("wrong size keeps ram", func(t *testing.T) {
		err := gb.LoadRAM([]byte{1, 2, 3})
		assert.ErrorIs(t, err, gamepak.ErrRAMSize)
		assert.Equal(t, saved, gb.SaveRAM())
	})
}

func TestReset(t *testing.T) {
	rom := buildCart(0x03, 0x02, spinProgram...)
	gb := newTestGB(t, rom)
	gb.Bus.Write8(0x0000, 0x0A)
	gb.Bus.Write8(0xA000, 0x5A)
	gb.Bus.Write8(0xC000, 0x77)
	require.NoError(t, gb.RunFrame())

	gb.Reset()
	assert.Equal(t, uint64(0), gb.Cycles())
	assert.Equal(t, uint64(0), gb.Frames())
	assert.Equal(t, uint16(0x0100), gb.CPU.PC)
	assert.Equal(t, uint8(0x00), gb.Peek(0xC000))
	// ram is disabled again after reset but its content survives
	assert.Equal(t, uint8(0xFF), gb.Peek(0xA000))
	gb.Bus.Write8(0x0000, 0x0A)
	assert.Equal(t, uint8(0x5A), gb.Peek(0xA000))
}

func TestResetAfterIllegalOpcode(t *testing.T) {
	gb := newTestGB(t, buildCart(0x00, 0, 0x00, 0xD3))
	require.Error(t, gb.RunFrame())
	require.True(t, gb.Paused())

	gb.Reset()
	assert.False(t, gb.Paused())
	_, err := gb.Step()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0101), gb.CPU.PC)
	assert.Equal(t, uint64(4), gb.Cycles())
}

func TestJoypad(t *testing.T) {
	gb := newTestGB(t, buildCart(0x00, 0, spinProgram...))

	gb.Bus.Write8(0xFF00, 0x10) // select action buttons
	gb.SetButtons(A | Start)
	assert.Equal(t, uint8(0x16), gb.Peek(0xFF00)&0x1F)
	assert.NotZero(t, gb.IRQ.IF&irq.Joypad.Bit())

	gb.SetButton(A, false)
	assert.Equal(t, uint8(0x17), gb.Peek(0xFF00)&0x1F)
}

func TestSerialWriter(t *testing.T) {
	// LD A,'O'; LDH ($01),A; LD A,$81; LDH ($02),A; JR -2
	program := []uint8{0x3E, 'O', 0xE0, 0x01, 0x3E, 0x81, 0xE0, 0x02, 0x18, 0xFE}
	var out bytes.Buffer
	gb := newTestGB(t, buildCart(0x00, 0, program...), WithSerialWriter(&out))
	require.NoError(t, gb.RunFrame())
	assert.Equal(t, "O", out.String())
	assert.NotZero(t, gb.IRQ.IF&irq.Serial.Bit())
}

func TestAudioSamples(t *testing.T) {
	gb := newTestGB(t, buildCart(0x00, 0, spinProgram...), WithSampleRate(32768), WithAudioBufferSize(4096))
	require.NoError(t, gb.RunFrame())

	assert.Equal(t, 32768, gb.SampleRate())
	// 70224 cycles at 128 cycles per sample
	samples := gb.DrainSamples()
	assert.InDelta(t, 2*549, len(samples), 2)
	assert.Empty(t, gb.DrainSamples())

	require.NoError(t, gb.RunFrame())
	dst := make([]float32, 100)
	assert.Equal(t, 100, gb.ReadSamples(dst))
}

func TestLoggerOption(t *testing.T) {
	l := logger.New(16)
	newTestGB(t, buildCart(0x00, 0, spinProgram...), WithLogger(l))

	var out strings.Builder
	l.Write(&out)
	assert.Contains(t, out.String(), "GBTEST")
}

// GB_TEST_ROM points at a test ROM that reports its result over the link
// port, such as the blargg cpu_instrs suite.
func TestROM(t *testing.T) {
	path := os.Getenv("GB_TEST_ROM")
	if path == "" {
		t.Skip("GB_TEST_ROM is not set")
	}
	rom, err := os.ReadFile(path)
	require.NoError(t, err)

	var out bytes.Buffer
	gb := newTestGB(t, rom, WithSerialWriter(&out))
	for i := 0; i < 60*120; i++ {
		require.NoError(t, gb.RunFrame())
		text := out.String()
		if strings.Contains(text, "Passed") {
			return
		}
		if strings.Contains(text, "Failed") {
			break
		}
	}
	t.Fatalf("test rom did not pass:\n%s", out.String())
}
