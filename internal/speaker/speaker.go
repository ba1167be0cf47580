// Package speaker plays the emulator's stereo stream through oto.
package speaker

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bytesPerValue = 4

type Speaker struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *Ring

	mu      sync.Mutex
	volume  float32
	muted   bool
	scratch []float32
}

// New opens the audio device. bufferPairs bounds the latency between the
// emulation loop and the device.
func New(sampleRate, bufferPairs int) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	s := newSpeaker(NewRing(bufferPairs))
	s.ctx = ctx
	s.player = ctx.NewPlayer(s)
	return s, nil
}

func newSpeaker(ring *Ring) *Speaker {
	return &Speaker{
		ring:   ring,
		volume: 1,
	}
}

func (s *Speaker) Play() {
	s.player.Play()
}

// Push queues interleaved stereo samples for playback.
func (s *Speaker) Push(samples []float32) {
	s.ring.Write(samples)
}

// SetVolume sets the output gain, clamped to 0-1.
func (s *Speaker) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = float32(max(0, min(1, volume)))
}

func (s *Speaker) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
}

func (s *Speaker) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Queued returns the number of stereo pairs waiting to be played.
func (s *Speaker) Queued() int {
	return s.ring.Available() / 2
}

// Read is called by oto from its own goroutine.
func (s *Speaker) Read(p []byte) (int, error) {
	n := len(p) / bytesPerValue
	if cap(s.scratch) < n {
		s.scratch = make([]float32, n)
	}
	samples := s.scratch[:n]
	s.ring.ReadInto(samples)

	s.mu.Lock()
	gain := s.volume
	if s.muted {
		gain = 0
	}
	s.mu.Unlock()

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*bytesPerValue:], math.Float32bits(v*gain))
	}
	return n * bytesPerValue, nil
}

func (s *Speaker) Close() error {
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}
