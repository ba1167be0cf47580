package apu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoweredAPU(bufferPairs int) *APU {
	apu := NewAPU(DefaultSampleRate, bufferPairs)
	apu.Write(NR52, 0x80)
	apu.Write(NR50, 0x77)
	return apu
}

func TestPulsePeriodInSamples(t *testing.T) {
	type testArgs struct {
		frequency int
	}

	testDo := func(t *testing.T, in testArgs) {
		apu := newPoweredAPU(DefaultSampleRate)
		apu.Write(NR51, 0x11)
		apu.Write(NR11, 0x80)
		apu.Write(NR12, 0xF0)
		apu.Write(NR13, uint8(in.frequency))
		apu.Write(NR14, 0x80|uint8(in.frequency>>8))

		apu.Advance(ClockRate / 5)
		samples := apu.Samples.Drain()
		require.NotEmpty(t, samples)

		var edges []int
		for i := 2; i < len(samples); i += 2 {
			if samples[i]-samples[i-2] > 0.1 {
				edges = append(edges, i/2)
			}
		}
		require.Greater(t, len(edges), 4)

		cycles := float64(PulsePeriod(in.frequency) * 8)
		expected := cycles * DefaultSampleRate / ClockRate
		for i := 1; i < len(edges); i++ {
			assert.InDelta(t, expected, float64(edges[i]-edges[i-1]), 1.0)
		}
	}

	t.Run("440Hz", func(t *testing.T) {
		testDo(t, testArgs{frequency: 1750})
	})
	t.Run("1kHz", func(t *testing.T) {
		testDo(t, testArgs{frequency: 1917})
	})
	t.Run("low", func(t *testing.T) {
		testDo(t, testArgs{frequency: 1024})
	})
}

func TestSampleRate(t *testing.T) {
	apu := newPoweredAPU(DefaultSampleRate)
	apu.Advance(ClockRate)
	assert.Equal(t, DefaultSampleRate*2, apu.Samples.Len())
}

func TestLengthCounter(t *testing.T) {
	apu := newPoweredAPU(16)
	apu.Write(NR12, 0xF0)
	apu.Write(NR11, 0x3F)
	apu.Write(NR14, 0xC0)
	require.Equal(t, uint8(0xF1), apu.Read(NR52))

	apu.Advance(frameSequencerPeriod - 1)
	assert.Equal(t, uint8(0xF1), apu.Read(NR52))
	apu.Advance(1)
	assert.Equal(t, uint8(0xF0), apu.Read(NR52))
}

func TestLengthDisabledKeepsPlaying(t *testing.T) {
	apu := newPoweredAPU(16)
	apu.Write(NR22, 0xF0)
	apu.Write(NR21, 0x3F)
	apu.Write(NR24, 0x80)

	apu.Advance(8 * frameSequencerPeriod)
	assert.Equal(t, uint8(0xF2), apu.Read(NR52))
}

func TestEnvelope(t *testing.T) {
	apu := newPoweredAPU(16)
	apu.Write(NR12, 0xF1)
	apu.Write(NR14, 0x80)
	require.Equal(t, 15, apu.Channel1.envelope.volume)

	apu.Advance(8 * frameSequencerPeriod)
	assert.Equal(t, 14, apu.Channel1.envelope.volume)
	apu.Advance(8 * frameSequencerPeriod)
	assert.Equal(t, 13, apu.Channel1.envelope.volume)
}

func TestSweepOverflow(t *testing.T) {
	apu := newPoweredAPU(16)
	apu.Write(NR10, 0x11)
	apu.Write(NR12, 0xF0)
	apu.Write(NR13, 0x00)
	apu.Write(NR14, 0x84)
	require.True(t, apu.Channel1.enabled)

	apu.Advance(3 * frameSequencerPeriod)
	assert.Equal(t, 1536, apu.Channel1.frequency())
	assert.False(t, apu.Channel1.enabled)
}

func TestDACOffPreventsTrigger(t *testing.T) {
	apu := newPoweredAPU(16)
	apu.Write(NR42, 0x00)
	apu.Write(NR44, 0x80)
	assert.Equal(t, uint8(0xF0), apu.Read(NR52))

	apu.Write(NR42, 0x10)
	apu.Write(NR44, 0x80)
	assert.Equal(t, uint8(0xF8), apu.Read(NR52))

	apu.Write(NR42, 0x00)
	assert.Equal(t, uint8(0xF0), apu.Read(NR52))
}

func TestWaveOutput(t *testing.T) {
	type testArgs struct {
		nr32     uint8
		expected int
	}

	testDo := func(t *testing.T, in testArgs) {
		apu := newPoweredAPU(16)
		apu.Write(WaveRAMStart, 0xC3)
		apu.Write(NR30, 0x80)
		apu.Write(NR32, in.nr32)
		apu.Write(NR34, 0x80)
		assert.Equal(t, in.expected, apu.Channel3.Output())
	}

	t.Run("mute", func(t *testing.T) {
		testDo(t, testArgs{nr32: 0x00, expected: 0})
	})
	t.Run("full", func(t *testing.T) {
		testDo(t, testArgs{nr32: 0x20, expected: 0x0C})
	})
	t.Run("half", func(t *testing.T) {
		testDo(t, testArgs{nr32: 0x40, expected: 0x06})
	})
	t.Run("quarter", func(t *testing.T) {
		testDo(t, testArgs{nr32: 0x60, expected: 0x03})
	})
}

func TestNoiseLFSR(t *testing.T) {
	type testArgs struct {
		nr43     uint8
		expected uint16
	}

	testDo := func(t *testing.T, in testArgs) {
		apu := newPoweredAPU(16)
		apu.Write(NR42, 0xF0)
		apu.Write(NR43, in.nr43)
		apu.Write(NR44, 0x80)
		apu.Advance(8)
		assert.Equal(t, in.expected, apu.Channel4.lfsr)
	}

	t.Run("15 bit", func(t *testing.T) {
		testDo(t, testArgs{nr43: 0x00, expected: 0x3FFF})
	})
	t.Run("7 bit", func(t *testing.T) {
		testDo(t, testArgs{nr43: 0x08, expected: 0x3FBF})
	})
}

func TestRegisterReadBack(t *testing.T) {
	type testArgs struct {
		addr     uint16
		value    uint8
		expected uint8
	}

	testDo := func(t *testing.T, in testArgs) {
		apu := newPoweredAPU(16)
		apu.Write(in.addr, in.value)
		assert.Equal(t, in.expected, apu.Read(in.addr))
	}

	t.Run("duty only", func(t *testing.T) {
		testDo(t, testArgs{addr: NR11, value: 0x80, expected: 0xBF})
	})
	t.Run("frequency low is write only", func(t *testing.T) {
		testDo(t, testArgs{addr: NR13, value: 0x12, expected: 0xFF})
	})
	t.Run("envelope", func(t *testing.T) {
		testDo(t, testArgs{addr: NR22, value: 0x00, expected: 0x00})
	})
	t.Run("wave volume", func(t *testing.T) {
		testDo(t, testArgs{addr: NR32, value: 0x40, expected: 0xDF})
	})
	t.Run("unused", func(t *testing.T) {
		testDo(t, testArgs{addr: 0xFF27, value: 0x12, expected: 0xFF})
	})
	t.Run("panning", func(t *testing.T) {
		testDo(t, testArgs{addr: NR51, value: 0xA5, expected: 0xA5})
	})
}

func TestPowerOff(t *testing.T) {
	apu := newPoweredAPU(16)
	apu.Write(NR51, 0xFF)
	apu.Write(WaveRAMStart+1, 0x5A)
	apu.Write(NR52, 0x00)

	assert.Equal(t, uint8(0x70), apu.Read(NR52))
	assert.Equal(t, uint8(0x00), apu.Read(NR50))
	assert.Equal(t, uint8(0x00), apu.Read(NR51))

	apu.Write(NR50, 0x77)
	assert.Equal(t, uint8(0x00), apu.Read(NR50))
	assert.Equal(t, uint8(0x5A), apu.Read(WaveRAMStart+1))

	apu.Advance(ClockRate / 100)
	for _, s := range apu.Samples.Drain() {
		assert.Zero(t, s)
	}
}

func TestMixerPanning(t *testing.T) {
	apu := newPoweredAPU(1024)
	apu.Write(NR51, 0x10)
	apu.Write(NR12, 0xF0)
	apu.Write(NR11, 0xC0)
	apu.Write(NR14, 0x87)

	apu.Advance(ClockRate / 200)
	samples := apu.Samples.Drain()
	var left, right float64
	for i := 0; i < len(samples); i += 2 {
		left += math.Abs(float64(samples[i]))
		right += math.Abs(float64(samples[i+1]))
	}
	assert.Greater(t, left, 0.0)
	assert.Zero(t, right)
}

func TestSampleQueueDropsOldest(t *testing.T) {
	q := NewSampleQueue(2)
	q.push(1, -1)
	q.push(2, -2)
	q.push(3, -3)

	assert.Equal(t, 4, q.Len())
	assert.Equal(t, []float32{2, -2, 3, -3}, q.Drain())
	assert.Zero(t, q.Len())

	q.push(4, -4)
	dst := make([]float32, 3)
	assert.Equal(t, 2, q.Read(dst))
	assert.Equal(t, []float32{4, -4, 0}, dst)
}
