// Package game is the windowed hero backend built on ebiten. The sketch is
// ticked in Update at the requested TPS and blitted to the window in Draw.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/iburimskiy/herobg/internal/config"
	"github.com/iburimskiy/herobg/internal/hero"
	"github.com/iburimskiy/herobg/internal/raster"
	"github.com/iburimskiy/herobg/internal/ring"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"
)

// Backend opens the hero in a desktop window.
type Backend struct {
	Log   *zap.Logger
	Title string
}

type simulated interface {
	Simulator() *ring.Simulator
}

// Game implements ebiten.Game and hero.Instance.
type Game struct {
	log    *zap.Logger
	opts   hero.Options
	sketch hero.Sketch

	canvas        *canvas
	width, height int
	resizePending bool

	history *colorHistory
	started time.Time
	frames  int

	// state
	paused  bool
	debug   bool
	lastErr error
	closed  atomic.Bool
}

// Instantiate configures the window. The canvas itself is created on the
// first layout, inside the game loop; call Run from the main goroutine.
func (b *Backend) Instantiate(opts hero.Options, sketch hero.Sketch) (hero.Instance, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	title := b.Title
	if title == "" {
		title = config.WindowTitle
	}

	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if opts.FPS > 0 {
		ebiten.SetTPS(opts.FPS)
	}

	return NewGame(opts, sketch, log), nil
}

func NewGame(opts hero.Options, sketch hero.Sketch, log *zap.Logger) *Game {
	return &Game{
		log:     log,
		opts:    opts,
		sketch:  sketch,
		history: newColorHistory(config.ColorHistorySize),
		started: time.Now(),
	}
}

// Run blocks until the window is closed or Close is called.
func (g *Game) Run() error {
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}

// Close makes the next Update end the game loop.
func (g *Game) Close() error {
	g.closed.Store(true)
	return nil
}

func (g *Game) Update() error {
	if g.closed.Load() {
		if g.canvas != nil {
			g.canvas.release()
			g.canvas = nil
		}
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyD) {
		g.debug = !g.debug
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.saveSnapshot(); err != nil {
			g.lastErr = err
			g.log.Warn("snapshot failed", zap.Error(err))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	g.applyLayout()
	if g.paused || g.canvas == nil {
		return nil
	}

	g.sketch.Frame(g.canvas)
	g.frames++
	if sim := g.simulator(); sim != nil {
		g.history.record(sim.Color())
	}
	return nil
}

// applyLayout creates the canvas on the first layout and rebuilds it after
// the window changed size.
func (g *Game) applyLayout() {
	if !g.resizePending || g.width <= 0 || g.height <= 0 {
		return
	}
	g.resizePending = false

	first := g.canvas == nil
	if !first {
		g.canvas.release()
	}
	g.canvas = newCanvas(g.width, g.height)
	if first {
		g.sketch.Setup(g.canvas)
	} else {
		g.sketch.Resized(g.canvas)
	}
	g.log.Debug("window layout", zap.Int("width", g.width), zap.Int("height", g.height))
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.canvas != nil {
		screen.DrawImage(g.canvas.img, nil)
	}
	if g.debug {
		g.drawOverlay(screen)
	}
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	status := fmt.Sprintf("TPS %.0f  frames %d  up %s", ebiten.ActualTPS(), g.frames, formatDuration(time.Since(g.started)))
	if g.paused {
		status += "  (paused)"
	}
	if sim := g.simulator(); sim != nil {
		status += fmt.Sprintf("\nradius %.1f  %s", sim.Radius(), describeColor(sim.Color()))
	}
	if g.lastErr != nil {
		status += "\nError: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)

	// Recent stroke colors, oldest first
	colors := g.history.snapshot(config.ColorHistorySize)
	const swatch = 6
	for i, c := range colors {
		c.A = 255
		vector.DrawFilledRect(screen, float32(12+i*swatch), 56, swatch, 10, c, false)
	}
	if len(colors) > 0 {
		vector.StrokeRect(screen, 12, 56, float32(len(colors)*swatch), 10, 1, color.RGBA{R: 60, G: 70, B: 90, A: 255}, false)
	}
}

// Layout follows the window width; the height is pinned when the props set
// one.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.opts.Fit(outsideWidth, outsideHeight)
	if w != g.width || h != g.height {
		g.width, g.height = w, h
		g.resizePending = true
	}
	return w, h
}

func (g *Game) simulator() *ring.Simulator {
	if s, ok := g.sketch.(simulated); ok {
		return s.Simulator()
	}
	return nil
}

func (g *Game) saveSnapshot() error {
	sim := g.simulator()
	if sim == nil {
		return nil
	}
	filename, err := zenity.SelectFileSave(
		zenity.Title("Save ring snapshot"),
		zenity.Filename(config.SnapshotFileName),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "PNG image",
			Patterns: []string{"*.png"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	if err := raster.SaveRing(filename, sim); err != nil {
		return err
	}
	g.log.Info("snapshot saved", zap.String("path", filename))
	return nil
}
