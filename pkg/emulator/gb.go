package emulator

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/Div9851/gb-go/internal/apu"
	"github.com/Div9851/gb-go/internal/bus"
	"github.com/Div9851/gb-go/internal/cpu"
	"github.com/Div9851/gb-go/internal/dma"
	"github.com/Div9851/gb-go/internal/gamepak"
	"github.com/Div9851/gb-go/internal/input"
	"github.com/Div9851/gb-go/internal/ioreg"
	"github.com/Div9851/gb-go/internal/irq"
	"github.com/Div9851/gb-go/internal/logger"
	"github.com/Div9851/gb-go/internal/ppu"
	"github.com/Div9851/gb-go/internal/serial"
	"github.com/Div9851/gb-go/internal/timer"
)

const (
	ScreenWidth  = ppu.ScreenWidth
	ScreenHeight = ppu.ScreenHeight
	ClockRate    = apu.ClockRate
	FrameCycles  = ppu.FrameCycles
)

const divAddr = timer.DIV

var ErrBootROMSize = errors.New("boot rom must be 256 bytes")

type Button = input.Button

const (
	Right  = input.Right
	Left   = input.Left
	Up     = input.Up
	Down   = input.Down
	A      = input.ButtonA
	B      = input.ButtonB
	Select = input.Select
	Start  = input.Start
)

// DefaultPalette maps shade 0-3 to the greens of the original screen.
var DefaultPalette = [4]color.RGBA{
	{R: 0xE0, G: 0xF8, B: 0xD0, A: 0xFF},
	{R: 0x88, G: 0xC0, B: 0x70, A: 0xFF},
	{R: 0x34, G: 0x68, B: 0x56, A: 0xFF},
	{R: 0x08, G: 0x18, B: 0x20, A: 0xFF},
}

// GB is the whole machine. Every component is owned here and advanced by
// Step; nothing runs on its own.
type GB struct {
	CPU     *cpu.CPU
	Bus     *bus.Bus
	PPU     *ppu.PPU
	APU     *apu.APU
	Timer   *timer.Timer
	Serial  *serial.Serial
	Input   *input.Input
	DMA     *dma.OAMDMA
	IOReg   *ioreg.IOReg
	IRQ     *irq.IRQ
	GamePak *gamepak.GamePak
	Logger  *logger.Logger

	bootROM     []byte
	sampleRate  int
	bufferPairs int
	palette     [4]color.RGBA
	serialOut   io.Writer
	saveRAM     []byte

	cycles     uint64
	frames     uint64
	frameReady bool

	debugger debugger
}

// New builds a machine around the cartridge image rom. Without a boot ROM
// the machine starts in the state the boot ROM leaves behind.
func New(rom []byte, opts ...Option) (*GB, error) {
	gb := &GB{
		sampleRate:  apu.DefaultSampleRate,
		bufferPairs: apu.DefaultBufferPairs,
		palette:     DefaultPalette,
	}
	for _, opt := range opts {
		if err := opt(gb); err != nil {
			return nil, err
		}
	}
	if gb.Logger == nil {
		gb.Logger = logger.New(0)
	}

	gamePak, err := gamepak.NewGamePak(rom)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge: %w", err)
	}
	h := gamePak.Header
	gb.Logger.Logf("cartridge", "%q %s, %d rom banks, %d bytes ram", h.Title, h.Type, gamePak.ROMBanks(), gamePak.RAMSize())
	if !h.ChecksumValid {
		gb.Logger.Logf("cartridge", "header checksum mismatch (%02X)", h.HeaderChecksum)
	}
	if gb.saveRAM != nil {
		if err := gamePak.LoadRAM(gb.saveRAM); err != nil {
			return nil, fmt.Errorf("loading save data: %w", err)
		}
		gb.Logger.Logf("cartridge", "restored %d bytes of save data", len(gb.saveRAM))
	}

	irq := irq.NewIRQ()
	bus := bus.NewBus(gamePak, gb.bootROM)
	ppu := ppu.NewPPU(irq)
	apu := apu.NewAPU(gb.sampleRate, gb.bufferPairs)
	timer := timer.NewTimer(irq)
	serial := serial.NewSerial(irq)
	serial.SetOutput(gb.serialOut)
	input := input.NewInput(irq)
	dma := dma.NewOAMDMA(bus.Raw(), ppu)
	ioReg := ioreg.NewIOReg(input, serial, timer, irq, apu, ppu, dma, bus)
	bus.Setup(ppu, ioReg, irq)
	cpu := cpu.NewCPU(bus, irq)
	cpu.OnStop = func() { timer.Write(divAddr, 0) }

	gb.CPU = cpu
	gb.Bus = bus
	gb.PPU = ppu
	gb.APU = apu
	gb.Timer = timer
	gb.Serial = serial
	gb.Input = input
	gb.DMA = dma
	gb.IOReg = ioReg
	gb.IRQ = irq
	gb.GamePak = gamePak
	gb.debugger.breakpoints = map[uint16]struct{}{}

	gb.powerOn()
	return gb, nil
}

func (gb *GB) powerOn() {
	gb.cycles = 0
	gb.frames = 0
	gb.frameReady = false
	if gb.bootROM != nil {
		gb.Logger.Log("boot", "running boot rom")
		return
	}
	gb.postBoot()
}

// postBoot sets the registers the boot ROM would have left behind.
func (gb *GB) postBoot() {
	gb.CPU.PostBoot()
	gb.Timer.SetDivider(0xABCC)

	defaults := []struct {
		addr  uint16
		value uint8
	}{
		{apu.NR52, 0xF1},
		{apu.NR50, 0x77},
		{apu.NR51, 0xF3},
		{apu.NR10, 0x80},
		{apu.NR11, 0xBF},
		{apu.NR12, 0xF3},
		{apu.NR21, 0x3F},
		{apu.NR30, 0x7F},
		{apu.NR31, 0xFF},
		{apu.NR32, 0x9F},
		{apu.NR41, 0xFF},
		{ppu.LCDC, 0x91},
		{ppu.BGP, 0xFC},
		{ppu.OBP0, 0xFF},
		{ppu.OBP1, 0xFF},
	}
	for _, r := range defaults {
		gb.Bus.Write8(r.addr, r.value)
	}
}

// Reset puts every component back to its power-on state. The cartridge
// and its RAM stay loaded.
func (gb *GB) Reset() {
	gb.IRQ.Reset()
	gb.GamePak.Reset()
	gb.Bus.Reset()
	gb.PPU.Reset()
	gb.APU.Reset()
	gb.Timer.Reset()
	gb.Serial.Reset()
	gb.Input.Reset()
	gb.DMA.Reset()
	gb.CPU.Reset()
	// breakpoints survive a reset, run control does not
	gb.debugger.paused = false
	gb.debugger.stepRequested = false
	gb.debugger.resumed = false
	gb.Logger.Log("system", "reset")
	gb.powerOn()
}

// Step runs one CPU step and advances the rest of the machine by the
// cycles it took.
func (gb *GB) Step() (int, error) {
	cycles, err := gb.CPU.Step()
	if err != nil {
		return 0, err
	}
	gb.Timer.Advance(cycles)
	gb.Serial.Advance(cycles)
	gb.PPU.Advance(cycles)
	gb.APU.Advance(cycles)

	gb.cycles += uint64(cycles)
	if gb.PPU.FrameReady() {
		gb.frames++
		gb.frameReady = true
	}
	return cycles, nil
}

// RunFrame steps until a frame is completed. It returns early when the
// machine is paused or a breakpoint is reached.
func (gb *GB) RunFrame() error {
	gb.frameReady = false
	for !gb.frameReady {
		if gb.debugger.paused {
			if !gb.debugger.stepRequested {
				return nil
			}
			gb.debugger.stepRequested = false
			_, err := gb.step()
			return err
		}
		if gb.checkBreakpoint() {
			return nil
		}
		if _, err := gb.step(); err != nil {
			return err
		}
	}
	return nil
}

func (gb *GB) step() (int, error) {
	cycles, err := gb.Step()
	if err != nil {
		gb.Logger.Logf("cpu", "%v", err)
		gb.debugger.paused = true
	}
	return cycles, err
}

// Cycles is the number of cycles run since power on.
func (gb *GB) Cycles() uint64 {
	return gb.cycles
}

// Frames is the number of frames completed since power on.
func (gb *GB) Frames() uint64 {
	return gb.frames
}

// FrameReady reports whether a frame was completed since the last call.
func (gb *GB) FrameReady() bool {
	ready := gb.frameReady
	gb.frameReady = false
	return ready
}

// Frame returns the last completed frame as shade indices.
func (gb *GB) Frame() *ppu.Frame {
	return gb.PPU.Frame()
}

func (gb *GB) Palette() [4]color.RGBA {
	return gb.palette
}

func (gb *GB) SetPalette(palette [4]color.RGBA) {
	gb.palette = palette
}

// Pixels writes the last completed frame into dst as RGBA bytes. dst must
// hold at least ScreenWidth*ScreenHeight*4 bytes.
func (gb *GB) Pixels(dst []byte) {
	frame := gb.PPU.Frame()
	for i, shade := range frame {
		c := gb.palette[shade&3]
		dst[i*4] = c.R
		dst[i*4+1] = c.G
		dst[i*4+2] = c.B
		dst[i*4+3] = c.A
	}
}

// SetButtons replaces the set of pressed buttons.
func (gb *GB) SetButtons(pressed Button) {
	gb.Input.SetButtons(pressed)
}

func (gb *GB) SetButton(b Button, pressed bool) {
	gb.Input.SetButton(b, pressed)
}

func (gb *GB) SampleRate() int {
	return gb.APU.SampleRate()
}

// ReadSamples moves interleaved stereo samples into dst and returns how
// many values were written.
func (gb *GB) ReadSamples(dst []float32) int {
	return gb.APU.Samples.Read(dst)
}

// DrainSamples returns every queued sample and empties the queue.
func (gb *GB) DrainSamples() []float32 {
	return gb.APU.Samples.Drain()
}

// HasBattery reports whether the cartridge RAM should be persisted.
func (gb *GB) HasBattery() bool {
	return gb.GamePak.HasBattery()
}

// SaveRAM returns a copy of the cartridge RAM.
func (gb *GB) SaveRAM() []byte {
	return gb.GamePak.SaveRAM()
}

// LoadRAM replaces the cartridge RAM. On error the RAM is unchanged.
func (gb *GB) LoadRAM(data []byte) error {
	if err := gb.GamePak.LoadRAM(data); err != nil {
		return fmt.Errorf("loading save data: %w", err)
	}
	return nil
}
