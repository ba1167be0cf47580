package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Div9851/gb-go/internal/logger"
	"github.com/Div9851/gb-go/pkg/emulator"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Arrows - directions
// X / Z - A / B
// Enter / Backspace - Start / Select
// P - pause, N - one step and pause
// Tab - debug overlay, M - mute, F5 - reset, Esc - quit

var keymap = map[ebiten.Key]emulator.Button{
	ebiten.KeyArrowRight: emulator.Right,
	ebiten.KeyArrowLeft:  emulator.Left,
	ebiten.KeyArrowUp:    emulator.Up,
	ebiten.KeyArrowDown:  emulator.Down,
	ebiten.KeyX:          emulator.A,
	ebiten.KeyZ:          emulator.B,
	ebiten.KeyBackspace:  emulator.Select,
	ebiten.KeyEnter:      emulator.Start,
}

type Game struct {
	gb   *emulator.GB
	sink *audioSink
	logs *logger.Logger

	screen *ebiten.Image
	pixels []byte

	showDebug bool
	fault     error

	savePath  string
	autosave  time.Duration
	lastFlush time.Time
	lastSave  []byte
}

func newGame(gb *emulator.GB, sink *audioSink, opts options, logs *logger.Logger) *Game {
	return &Game{
		gb:        gb,
		sink:      sink,
		logs:      logs,
		screen:    ebiten.NewImage(emulator.ScreenWidth, emulator.ScreenHeight),
		pixels:    make([]byte, emulator.ScreenWidth*emulator.ScreenHeight*4),
		savePath:  opts.save,
		autosave:  opts.autosave,
		lastFlush: time.Now(),
		lastSave:  gb.SaveRAM(),
	}
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.showDebug = !g.showDebug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.sink.ToggleMute()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.flushSave()
		g.gb.Reset()
		g.fault = nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) && g.fault == nil {
		g.gb.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) && g.fault == nil {
		g.gb.RequestStep()
	}

	var pressed emulator.Button
	for key, button := range keymap {
		if ebiten.IsKeyPressed(key) {
			pressed |= button
		}
	}
	g.gb.SetButtons(pressed)

	if g.fault == nil {
		if err := g.gb.RunFrame(); err != nil {
			g.fault = err
			g.showDebug = true
		}
	}
	g.sink.Push(g.gb.DrainSamples())

	if g.autosave > 0 && time.Since(g.lastFlush) >= g.autosave {
		g.flushSave()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.gb.Pixels(g.pixels)
	g.screen.WritePixels(g.pixels)
	screen.DrawImage(g.screen, nil)

	if !g.showDebug {
		return
	}
	var info strings.Builder
	fmt.Fprintf(&info, "FPS %0.0f\n", ebiten.ActualFPS())
	state := g.gb.CPUState()
	fmt.Fprintf(&info, "PC %04X SP %04X\n", state.PC, state.SP)
	fmt.Fprintf(&info, "AF %04X BC %04X\n", state.AF(), state.BC())
	fmt.Fprintf(&info, "DE %04X HL %04X\n", state.DE(), state.HL())
	_, next := g.gb.NextOpcode()
	fmt.Fprintf(&info, "> %s\n", next)
	switch {
	case g.fault != nil:
		fmt.Fprintf(&info, "%v\n", g.fault)
	case g.gb.Paused():
		info.WriteString("PAUSED\n")
	}
	ebitenutil.DebugPrintAt(screen, info.String(), 2, 0)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return emulator.ScreenWidth, emulator.ScreenHeight
}

// flushSave writes the cartridge RAM when the cartridge has a battery and
// the RAM changed since the last flush.
func (g *Game) flushSave() {
	g.lastFlush = time.Now()
	if !g.gb.HasBattery() {
		return
	}
	ram := g.gb.SaveRAM()
	if bytes.Equal(ram, g.lastSave) {
		return
	}
	if err := os.WriteFile(g.savePath, ram, 0o644); err != nil {
		g.logs.Logf("save", "%v", err)
		return
	}
	g.lastSave = ram
	g.logs.Logf("save", "wrote %s", g.savePath)
}
