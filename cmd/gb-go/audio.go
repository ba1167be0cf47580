package main

import (
	"github.com/Div9851/gb-go/internal/logger"
	"github.com/Div9851/gb-go/internal/speaker"
	"github.com/Div9851/gb-go/internal/wavwriter"
)

// about 100ms of audio between the emulator and the device
const speakerBufferPairs = sampleRate / 10

// audioSink forwards drained samples to the speaker and the optional wav
// recording.
type audioSink struct {
	speaker *speaker.Speaker
	wav     *wavwriter.WavWriter
	logs    *logger.Logger
}

func newAudioSink(opts options, rate int, logs *logger.Logger) (*audioSink, error) {
	sink := &audioSink{logs: logs}

	spk, err := speaker.New(rate, speakerBufferPairs)
	if err != nil {
		// keep running without sound
		logs.Logf("audio", "%v", err)
	} else {
		spk.SetVolume(opts.volume)
		spk.SetMuted(opts.mute)
		spk.Play()
		sink.speaker = spk
	}

	if opts.wav != "" {
		ww, err := wavwriter.New(opts.wav, rate)
		if err != nil {
			sink.Close()
			return nil, err
		}
		logs.Logf("audio", "recording to %s", opts.wav)
		sink.wav = ww
	}
	return sink, nil
}

func (a *audioSink) Push(samples []float32) {
	if a.speaker != nil {
		a.speaker.Push(samples)
	}
	if a.wav != nil {
		if err := a.wav.Write(samples); err != nil {
			a.logs.Logf("audio", "%v, recording stopped", err)
			a.wav.Close()
			a.wav = nil
		}
	}
}

func (a *audioSink) ToggleMute() {
	if a.speaker != nil {
		a.speaker.SetMuted(!a.speaker.Muted())
	}
}

func (a *audioSink) Close() {
	if a.speaker != nil {
		a.speaker.Close()
	}
	if a.wav != nil {
		if err := a.wav.Close(); err != nil {
			a.logs.Logf("audio", "%v", err)
		} else {
			a.logs.Logf("audio", "wrote %d frames", a.wav.Frames())
		}
	}
}
