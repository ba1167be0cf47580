package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Div9851/gb-go/internal/logger"
	"github.com/Div9851/gb-go/pkg/emulator"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"
)

const (
	sampleRate    = 44100
	statsAddr     = "localhost:12600"
	defaultScale  = 3
	defaultVolume = 0.5
)

type options struct {
	rom       string
	boot      string
	save      string
	scale     int
	volume    float64
	mute      bool
	wav       string
	verbose   bool
	profile   string
	statsview bool
	autosave  time.Duration
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.rom, "rom", "", "cartridge image to run")
	flag.StringVar(&opts.boot, "boot", "", "optional 256 byte boot rom")
	flag.StringVar(&opts.save, "save", "", "battery save file (defaults to the rom path with .sav)")
	flag.IntVar(&opts.scale, "scale", defaultScale, "window scale factor")
	flag.Float64Var(&opts.volume, "volume", defaultVolume, "audio volume between 0 and 1")
	flag.BoolVar(&opts.mute, "mute", false, "start with audio muted")
	flag.StringVar(&opts.wav, "wav", "", "record audio to this wav file")
	flag.BoolVar(&opts.verbose, "verbose", false, "echo the emulator log to stderr")
	flag.StringVar(&opts.profile, "profile", "", "write a cpu or mem profile")
	flag.BoolVar(&opts.statsview, "statsview", false, "serve runtime statistics on "+statsAddr)
	flag.DurationVar(&opts.autosave, "autosave", time.Minute, "interval between battery save flushes, 0 disables")
	flag.Parse()

	if opts.rom == "" && flag.NArg() > 0 {
		opts.rom = flag.Arg(0)
	}
	if opts.save == "" && opts.rom != "" {
		opts.save = strings.TrimSuffix(opts.rom, ".gb") + ".sav"
	}
	return opts
}

func main() {
	opts := parseFlags()
	if opts.rom == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so its deferred stops and flushes run.
func run(opts options) error {
	switch opts.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile %q", opts.profile)
	}

	if opts.statsview {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(statsAddr))
			statsview.New().Start()
		}()
		log.Printf("stats server available at http://%s/debug/statsview", statsAddr)
	}

	logs := logger.New(0)
	if opts.verbose {
		logs.SetEcho(os.Stderr)
	}

	gb, err := newEmulator(opts, logs)
	if err != nil {
		return err
	}

	sink, err := newAudioSink(opts, gb.SampleRate(), logs)
	if err != nil {
		return err
	}
	defer sink.Close()

	game := newGame(gb, sink, opts, logs)
	defer game.flushSave()

	ebiten.SetWindowSize(emulator.ScreenWidth*opts.scale, emulator.ScreenHeight*opts.scale)
	ebiten.SetWindowTitle(windowTitle(gb))
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logs.Tail(os.Stderr, 10)
		return err
	}
	return nil
}

func newEmulator(opts options, logs *logger.Logger) (*emulator.GB, error) {
	rom, err := os.ReadFile(opts.rom)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	emuOpts := []emulator.Option{
		emulator.WithLogger(logs),
		emulator.WithSampleRate(sampleRate),
	}
	if opts.boot != "" {
		boot, err := os.ReadFile(opts.boot)
		if err != nil {
			return nil, fmt.Errorf("reading boot rom: %w", err)
		}
		emuOpts = append(emuOpts, emulator.WithBootROM(boot))
	}
	if opts.verbose {
		emuOpts = append(emuOpts, emulator.WithSerialWriter(os.Stderr))
	}

	gb, err := emulator.New(rom, emuOpts...)
	if err != nil {
		return nil, err
	}

	if !gb.HasBattery() {
		return gb, nil
	}
	save, err := os.ReadFile(opts.save)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logs.Logf("save", "no save file at %s", opts.save)
	case err != nil:
		return nil, fmt.Errorf("reading save file: %w", err)
	default:
		if err := gb.LoadRAM(save); err != nil {
			return nil, err
		}
		logs.Logf("save", "loaded %s", opts.save)
	}
	return gb, nil
}

func windowTitle(gb *emulator.GB) string {
	title := gb.GamePak.Header.Title
	if title == "" {
		return "gb-go"
	}
	return "gb-go - " + title
}
