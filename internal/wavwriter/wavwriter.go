// Package wavwriter records the emulator's stereo stream to a 16-bit PCM WAV
// file.
package wavwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth     = 16
	channels     = 2
	pcmFormat    = 1
	maxAmplitude = 1<<(bitDepth-1) - 1
)

type WavWriter struct {
	file    *os.File
	enc     *wav.Encoder
	buf     *audio.IntBuffer
	samples int
}

// New creates filename and writes the header. Samples are streamed to the
// file as they arrive; the header sizes are patched on Close.
func New(filename string, sampleRate int) (*WavWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("wavwriter: %w", err)
	}
	ww := newWriter(f, sampleRate)
	ww.file = f
	return ww, nil
}

func newWriter(w io.WriteSeeker, sampleRate int) *WavWriter {
	return &WavWriter{
		enc: wav.NewEncoder(w, sampleRate, bitDepth, channels, pcmFormat),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
}

// Write appends interleaved stereo samples in the range -1 to 1.
func (ww *WavWriter) Write(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}
	data := ww.buf.Data[:0]
	for _, v := range samples {
		v = max(-1, min(1, v))
		data = append(data, int(v*maxAmplitude))
	}
	ww.buf.Data = data
	if err := ww.enc.Write(ww.buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	ww.samples += len(samples) / channels
	return nil
}

// Frames returns the number of stereo pairs written so far.
func (ww *WavWriter) Frames() int {
	return ww.samples
}

func (ww *WavWriter) Close() error {
	err := ww.enc.Close()
	if ww.file != nil {
		if cerr := ww.file.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return nil
}
