package apu

var dutyPatterns = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1}, // 12.5%
	{1, 0, 0, 0, 0, 0, 0, 1}, // 25%
	{1, 0, 0, 0, 0, 1, 1, 1}, // 50%
	{0, 1, 1, 1, 1, 1, 1, 0}, // 75%
}

var noiseDivisors = [8]int{8, 16, 32, 48, 64, 80, 96, 112}

// PulsePeriod returns the number of cycles spent on each of the eight duty
// steps for an 11-bit frequency value.
func PulsePeriod(frequency int) int {
	return (2048 - frequency) * 4
}

type length struct {
	counter int
	max     int
}

func (l *length) load(value uint8) {
	l.counter = l.max - int(value)
}

// clock reports whether the counter just expired.
func (l *length) clock(enabled bool) bool {
	if !enabled || l.counter == 0 {
		return false
	}
	l.counter--
	return l.counter == 0
}

func (l *length) trigger() {
	if l.counter == 0 {
		l.counter = l.max
	}
}

type envelope struct {
	volume int
	timer  int
}

func (e *envelope) trigger(nrx2 uint8) {
	e.volume = int(nrx2 >> 4)
	e.timer = int(nrx2 & 0x07)
}

func (e *envelope) clock(nrx2 uint8) {
	period := int(nrx2 & 0x07)
	if period == 0 {
		return
	}
	e.timer--
	if e.timer > 0 {
		return
	}
	e.timer = period
	if nrx2&0x08 != 0 {
		e.volume = min(e.volume+1, 15)
	} else {
		e.volume = max(e.volume-1, 0)
	}
}

// Pulse is a square wave channel. Channel 1 additionally has a frequency
// sweep unit.
type Pulse struct {
	NRx0 uint8
	NRx1 uint8
	NRx2 uint8
	NRx3 uint8
	NRx4 uint8

	hasSweep bool
	enabled  bool

	timer    int
	dutyStep int
	length   length
	envelope envelope

	shadow       int
	sweepTimer   int
	sweepEnabled bool
}

func newPulse(hasSweep bool) *Pulse {
	return &Pulse{
		hasSweep: hasSweep,
		length:   length{max: 64},
	}
}

func (ch *Pulse) frequency() int {
	return int(ch.NRx4&0x07)<<8 | int(ch.NRx3)
}

func (ch *Pulse) setFrequency(f int) {
	ch.NRx3 = uint8(f)
	ch.NRx4 = ch.NRx4&^0x07 | uint8(f>>8)&0x07
}

func (ch *Pulse) dacEnabled() bool {
	return ch.NRx2&0xF8 != 0
}

func (ch *Pulse) write(reg int, value uint8) {
	switch reg {
	case 0:
		ch.NRx0 = value
	case 1:
		ch.NRx1 = value
		ch.length.load(value & 0x3F)
	case 2:
		ch.NRx2 = value
		if !ch.dacEnabled() {
			ch.enabled = false
		}
	case 3:
		ch.NRx3 = value
	case 4:
		ch.NRx4 = value
		if value&0x80 != 0 {
			ch.trigger()
		}
	}
}

func (ch *Pulse) trigger() {
	ch.enabled = ch.dacEnabled()
	ch.length.trigger()
	ch.timer = PulsePeriod(ch.frequency())
	ch.envelope.trigger(ch.NRx2)

	if ch.hasSweep {
		ch.shadow = ch.frequency()
		ch.sweepTimer = ch.sweepPeriod()
		shift := ch.NRx0 & 0x07
		ch.sweepEnabled = ch.NRx0&0x70 != 0 || shift != 0
		if shift != 0 {
			ch.sweepTarget()
		}
	}
}

func (ch *Pulse) sweepPeriod() int {
	period := int(ch.NRx0>>4) & 0x07
	if period == 0 {
		return 8
	}
	return period
}

// sweepTarget computes the next frequency and disables the channel on
// overflow.
func (ch *Pulse) sweepTarget() int {
	delta := ch.shadow >> (ch.NRx0 & 0x07)
	target := ch.shadow + delta
	if ch.NRx0&0x08 != 0 {
		target = ch.shadow - delta
	}
	if target > 2047 {
		ch.enabled = false
	}
	return target
}

func (ch *Pulse) clockSweep() {
	ch.sweepTimer--
	if ch.sweepTimer > 0 {
		return
	}
	ch.sweepTimer = ch.sweepPeriod()
	if !ch.sweepEnabled || ch.NRx0&0x70 == 0 {
		return
	}
	target := ch.sweepTarget()
	if target <= 2047 && ch.NRx0&0x07 != 0 {
		ch.shadow = target
		ch.setFrequency(target)
		ch.sweepTarget()
	}
}

func (ch *Pulse) clockLength() {
	if ch.length.clock(ch.NRx4&0x40 != 0) {
		ch.enabled = false
	}
}

func (ch *Pulse) clockEnvelope() {
	ch.envelope.clock(ch.NRx2)
}

func (ch *Pulse) Step() {
	ch.timer--
	if ch.timer <= 0 {
		ch.timer = PulsePeriod(ch.frequency())
		ch.dutyStep = (ch.dutyStep + 1) & 7
	}
}

// Output returns the digital level 0-15.
func (ch *Pulse) Output() int {
	if !ch.enabled {
		return 0
	}
	return int(dutyPatterns[ch.NRx1>>6][ch.dutyStep]) * ch.envelope.volume
}

// Wave plays 32 four-bit samples from wave RAM.
type Wave struct {
	NR30 uint8
	NR31 uint8
	NR32 uint8
	NR33 uint8
	NR34 uint8
	RAM  [16]byte

	enabled  bool
	timer    int
	position int
	length   length
}

func newWave() *Wave {
	return &Wave{
		length: length{max: 256},
	}
}

func (ch *Wave) frequency() int {
	return int(ch.NR34&0x07)<<8 | int(ch.NR33)
}

func (ch *Wave) period() int {
	return (2048 - ch.frequency()) * 2
}

func (ch *Wave) dacEnabled() bool {
	return ch.NR30&0x80 != 0
}

func (ch *Wave) write(reg int, value uint8) {
	switch reg {
	case 0:
		ch.NR30 = value
		if !ch.dacEnabled() {
			ch.enabled = false
		}
	case 1:
		ch.NR31 = value
		ch.length.load(value)
	case 2:
		ch.NR32 = value
	case 3:
		ch.NR33 = value
	case 4:
		ch.NR34 = value
		if value&0x80 != 0 {
			ch.trigger()
		}
	}
}

func (ch *Wave) trigger() {
	ch.enabled = ch.dacEnabled()
	ch.length.trigger()
	ch.timer = ch.period()
	ch.position = 0
}

func (ch *Wave) clockLength() {
	if ch.length.clock(ch.NR34&0x40 != 0) {
		ch.enabled = false
	}
}

func (ch *Wave) Step() {
	ch.timer--
	if ch.timer <= 0 {
		ch.timer = ch.period()
		ch.position = (ch.position + 1) & 31
	}
}

func (ch *Wave) Output() int {
	if !ch.enabled {
		return 0
	}
	sample := ch.RAM[ch.position/2]
	if ch.position&1 == 0 {
		sample >>= 4
	}
	sample &= 0x0F
	switch (ch.NR32 >> 5) & 0x03 {
	case 0:
		return 0
	case 1:
		return int(sample)
	case 2:
		return int(sample >> 1)
	default:
		return int(sample >> 2)
	}
}

// Noise is driven by a 15-bit linear feedback shift register, optionally
// shortened to 7 bits.
type Noise struct {
	NR41 uint8
	NR42 uint8
	NR43 uint8
	NR44 uint8

	enabled  bool
	timer    int
	lfsr     uint16
	length   length
	envelope envelope
}

func newNoise() *Noise {
	return &Noise{
		length: length{max: 64},
		lfsr:   0x7FFF,
	}
}

func (ch *Noise) period() int {
	return noiseDivisors[ch.NR43&0x07] << (ch.NR43 >> 4)
}

func (ch *Noise) dacEnabled() bool {
	return ch.NR42&0xF8 != 0
}

func (ch *Noise) write(reg int, value uint8) {
	switch reg {
	case 1:
		ch.NR41 = value
		ch.length.load(value & 0x3F)
	case 2:
		ch.NR42 = value
		if !ch.dacEnabled() {
			ch.enabled = false
		}
	case 3:
		ch.NR43 = value
	case 4:
		ch.NR44 = value
		if value&0x80 != 0 {
			ch.trigger()
		}
	}
}

func (ch *Noise) trigger() {
	ch.enabled = ch.dacEnabled()
	ch.length.trigger()
	ch.timer = ch.period()
	ch.envelope.trigger(ch.NR42)
	ch.lfsr = 0x7FFF
}

func (ch *Noise) clockLength() {
	if ch.length.clock(ch.NR44&0x40 != 0) {
		ch.enabled = false
	}
}

func (ch *Noise) clockEnvelope() {
	ch.envelope.clock(ch.NR42)
}

func (ch *Noise) Step() {
	ch.timer--
	if ch.timer > 0 {
		return
	}
	ch.timer = ch.period()
	bit := (ch.lfsr ^ ch.lfsr>>1) & 1
	ch.lfsr = ch.lfsr>>1 | bit<<14
	if ch.NR43&0x08 != 0 {
		ch.lfsr = ch.lfsr&^(1<<6) | bit<<6
	}
}

func (ch *Noise) Output() int {
	if !ch.enabled || ch.lfsr&1 != 0 {
		return 0
	}
	return ch.envelope.volume
}
