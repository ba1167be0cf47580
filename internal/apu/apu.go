package apu

import (
	"math"
)

const (
	NR10 = 0xFF10
	NR11 = 0xFF11
	NR12 = 0xFF12
	NR13 = 0xFF13
	NR14 = 0xFF14
	NR21 = 0xFF16
	NR22 = 0xFF17
	NR23 = 0xFF18
	NR24 = 0xFF19
	NR30 = 0xFF1A
	NR31 = 0xFF1B
	NR32 = 0xFF1C
	NR33 = 0xFF1D
	NR34 = 0xFF1E
	NR41 = 0xFF20
	NR42 = 0xFF21
	NR43 = 0xFF22
	NR44 = 0xFF23
	NR50 = 0xFF24
	NR51 = 0xFF25
	NR52 = 0xFF26

	WaveRAMStart = 0xFF30
	WaveRAMEnd   = 0xFF3F
)

const (
	ClockRate         = 4 * 1024 * 1024
	DefaultSampleRate = 44100
	// DefaultBufferPairs holds a quarter of a second at the default rate.
	DefaultBufferPairs = DefaultSampleRate / 4

	frameSequencerPeriod = ClockRate / 512
)

// readMasks are ORed into register reads for 0xFF10-0xFF2F. Write only
// and unused bits read back as 1.
var readMasks = [0x20]uint8{
	0x80, 0x3F, 0x00, 0xFF, 0xBF, // NR10-NR14
	0xFF, 0x3F, 0x00, 0xFF, 0xBF, // NR20-NR24
	0x7F, 0xFF, 0x9F, 0xFF, 0xBF, // NR30-NR34
	0xFF, 0xFF, 0x00, 0x00, 0xBF, // NR40-NR44
	0x00, 0x00, 0x70, // NR50-NR52
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

type APU struct {
	Channel1 *Pulse
	Channel2 *Pulse
	Channel3 *Wave
	Channel4 *Noise

	NR50 uint8
	NR51 uint8

	power bool

	sequencerTimer int
	sequencerStep  int

	sampleRate int
	sampleAcc  int
	charge     float64
	capacitorL float64
	capacitorR float64
	Samples    *SampleQueue
}

// NewAPU returns a powered off APU producing sampleRate stereo pairs per
// second into a queue of bufferPairs pairs.
func NewAPU(sampleRate, bufferPairs int) *APU {
	apu := &APU{
		sampleRate: sampleRate,
		// per-cycle high pass charge factor, raised to cycles per sample
		charge:  math.Pow(0.999958, float64(ClockRate)/float64(sampleRate)),
		Samples: NewSampleQueue(bufferPairs),
	}
	apu.Reset()
	return apu
}

func (apu *APU) SampleRate() int {
	return apu.sampleRate
}

func (apu *APU) Reset() {
	ram := [16]byte{}
	if apu.Channel3 != nil {
		ram = apu.Channel3.RAM
	}
	apu.Channel1 = newPulse(true)
	apu.Channel2 = newPulse(false)
	apu.Channel3 = newWave()
	apu.Channel3.RAM = ram
	apu.Channel4 = newNoise()
	apu.NR50 = 0
	apu.NR51 = 0
	apu.power = false
	apu.sequencerTimer = frameSequencerPeriod
	apu.sequencerStep = 0
	apu.sampleAcc = 0
	apu.capacitorL = 0
	apu.capacitorR = 0
	apu.Samples.Clear()
}

// Advance runs every channel, the frame sequencer and the sampler for the
// given number of cycles.
func (apu *APU) Advance(cycles int) {
	for i := 0; i < cycles; i++ {
		apu.Step()
	}
}

func (apu *APU) Step() {
	if apu.power {
		apu.Channel1.Step()
		apu.Channel2.Step()
		apu.Channel3.Step()
		apu.Channel4.Step()

		apu.sequencerTimer--
		if apu.sequencerTimer == 0 {
			apu.sequencerTimer = frameSequencerPeriod
			apu.clockSequencer()
		}
	}

	apu.sampleAcc += apu.sampleRate
	if apu.sampleAcc >= ClockRate {
		apu.sampleAcc -= ClockRate
		apu.SendSample()
	}
}

// clockSequencer runs one of the eight 512 Hz steps: length on even steps,
// sweep on 2 and 6, envelope on 7.
func (apu *APU) clockSequencer() {
	step := apu.sequencerStep
	apu.sequencerStep = (step + 1) & 7

	if step&1 == 0 {
		apu.Channel1.clockLength()
		apu.Channel2.clockLength()
		apu.Channel3.clockLength()
		apu.Channel4.clockLength()
	}
	if step == 2 || step == 6 {
		apu.Channel1.clockSweep()
	}
	if step == 7 {
		apu.Channel1.clockEnvelope()
		apu.Channel2.clockEnvelope()
		apu.Channel4.clockEnvelope()
	}
}

// dac converts a digital level to -1..1. A channel whose DAC is off
// contributes nothing.
func dac(level int, on bool) float64 {
	if !on {
		return 0
	}
	return float64(level)/7.5 - 1
}

func (apu *APU) SendSample() {
	var left, right float64
	if apu.power {
		outputs := [4]float64{
			dac(apu.Channel1.Output(), apu.Channel1.dacEnabled()),
			dac(apu.Channel2.Output(), apu.Channel2.dacEnabled()),
			dac(apu.Channel3.Output(), apu.Channel3.dacEnabled()),
			dac(apu.Channel4.Output(), apu.Channel4.dacEnabled()),
		}
		for i, out := range outputs {
			if apu.NR51&(1<<(i+4)) != 0 {
				left += out
			}
			if apu.NR51&(1<<i) != 0 {
				right += out
			}
		}
		left *= float64((apu.NR50>>4)&0x07+1) / 8 / 4
		right *= float64(apu.NR50&0x07+1) / 8 / 4
	}

	left = apu.highPass(left, &apu.capacitorL)
	right = apu.highPass(right, &apu.capacitorR)
	apu.Samples.push(float32(left), float32(right))
}

func (apu *APU) highPass(in float64, capacitor *float64) float64 {
	out := in - *capacitor
	*capacitor = in - out*apu.charge
	return out
}

func (apu *APU) Read(addr uint16) uint8 {
	if WaveRAMStart <= addr && addr <= WaveRAMEnd {
		return apu.Channel3.RAM[addr-WaveRAMStart]
	}
	if addr < NR10 || addr >= WaveRAMStart {
		return 0xFF
	}
	mask := readMasks[addr-NR10]
	switch addr {
	case NR10:
		return mask | apu.Channel1.NRx0
	case NR11:
		return mask | apu.Channel1.NRx1
	case NR12:
		return mask | apu.Channel1.NRx2
	case NR14:
		return mask | apu.Channel1.NRx4
	case NR21:
		return mask | apu.Channel2.NRx1
	case NR22:
		return mask | apu.Channel2.NRx2
	case NR24:
		return mask | apu.Channel2.NRx4
	case NR30:
		return mask | apu.Channel3.NR30
	case NR32:
		return mask | apu.Channel3.NR32
	case NR34:
		return mask | apu.Channel3.NR34
	case NR42:
		return mask | apu.Channel4.NR42
	case NR43:
		return mask | apu.Channel4.NR43
	case NR44:
		return mask | apu.Channel4.NR44
	case NR50:
		return apu.NR50
	case NR51:
		return apu.NR51
	case NR52:
		return mask | apu.status()
	}
	return 0xFF
}

func (apu *APU) status() uint8 {
	var value uint8
	if apu.power {
		value |= 0x80
	}
	if apu.Channel1.enabled {
		value |= 0x01
	}
	if apu.Channel2.enabled {
		value |= 0x02
	}
	if apu.Channel3.enabled {
		value |= 0x04
	}
	if apu.Channel4.enabled {
		value |= 0x08
	}
	return value
}

func (apu *APU) Write(addr uint16, value uint8) {
	if WaveRAMStart <= addr && addr <= WaveRAMEnd {
		apu.Channel3.RAM[addr-WaveRAMStart] = value
		return
	}
	if addr == NR52 {
		apu.setPower(value&0x80 != 0)
		return
	}
	if !apu.power {
		return
	}
	switch {
	case NR10 <= addr && addr <= NR14:
		apu.Channel1.write(int(addr-NR10), value)
	case NR21 <= addr && addr <= NR24:
		apu.Channel2.write(int(addr-NR21)+1, value)
	case NR30 <= addr && addr <= NR34:
		apu.Channel3.write(int(addr-NR30), value)
	case NR41 <= addr && addr <= NR44:
		apu.Channel4.write(int(addr-NR41)+1, value)
	case addr == NR50:
		apu.NR50 = value
	case addr == NR51:
		apu.NR51 = value
	}
}

func (apu *APU) setPower(on bool) {
	switch {
	case apu.power && !on:
		ram := apu.Channel3.RAM
		apu.Channel1 = newPulse(true)
		apu.Channel2 = newPulse(false)
		apu.Channel3 = newWave()
		apu.Channel3.RAM = ram
		apu.Channel4 = newNoise()
		apu.NR50 = 0
		apu.NR51 = 0
	case !apu.power && on:
		apu.sequencerTimer = frameSequencerPeriod
		apu.sequencerStep = 0
	}
	apu.power = on
}
