package emulator

import (
	"fmt"
	"image/color"
	"io"

	"github.com/Div9851/gb-go/internal/bus"
	"github.com/Div9851/gb-go/internal/logger"
)

// Option configures a GB before its components are built.
type Option func(*GB) error

// WithBootROM maps a 256 byte boot ROM at 0x0000 and starts execution
// there instead of at the cartridge entry point.
func WithBootROM(data []byte) Option {
	return func(gb *GB) error {
		if len(data) != bus.BootROMSize {
			return fmt.Errorf("%w: got %d bytes", ErrBootROMSize, len(data))
		}
		gb.bootROM = append([]byte(nil), data...)
		return nil
	}
}

// WithSampleRate sets the number of stereo pairs produced per second.
func WithSampleRate(rate int) Option {
	return func(gb *GB) error {
		if rate <= 0 || rate > ClockRate {
			return fmt.Errorf("invalid sample rate %d", rate)
		}
		gb.sampleRate = rate
		return nil
	}
}

// WithAudioBufferSize sets how many stereo pairs are queued before the
// oldest are dropped.
func WithAudioBufferSize(pairs int) Option {
	return func(gb *GB) error {
		if pairs <= 0 {
			return fmt.Errorf("invalid audio buffer size %d", pairs)
		}
		gb.bufferPairs = pairs
		return nil
	}
}

func WithPalette(palette [4]color.RGBA) Option {
	return func(gb *GB) error {
		gb.palette = palette
		return nil
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(gb *GB) error {
		if l == nil {
			return fmt.Errorf("nil logger")
		}
		gb.Logger = l
		return nil
	}
}

// WithSerialWriter forwards every byte sent over the link port to w.
func WithSerialWriter(w io.Writer) Option {
	return func(gb *GB) error {
		gb.serialOut = w
		return nil
	}
}

// WithSaveRAM restores cartridge RAM from a previous session. The size
// must match the RAM declared by the cartridge header.
func WithSaveRAM(data []byte) Option {
	return func(gb *GB) error {
		gb.saveRAM = append([]byte(nil), data...)
		return nil
	}
}
