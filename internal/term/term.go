// Package term is a terminal hero backend built on tcell. The ring is drawn
// with braille glyphs, giving 2x4 dots per cell.
package term

import (
	"fmt"
	"image/color"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/iburimskiy/herobg/internal/hero"
	"go.uber.org/zap"
)

// Canvas rasterizes pen calls into braille dots.
type Canvas struct {
	dots   *Dots
	style  tcell.Style
	points [][2]int
}

func newCanvas(cols, rows int) *Canvas {
	return &Canvas{dots: NewDots(cols, rows), style: tcell.StyleDefault}
}

func (c *Canvas) Size() (int, int) { return c.dots.Size() }

// Stroke keeps the color; line weight has no meaning at dot resolution.
func (c *Canvas) Stroke(col color.NRGBA, _ float64) {
	c.style = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(col.R), int32(col.G), int32(col.B)))
}

func (c *Canvas) NoFill() {}

func (c *Canvas) BeginPath() { c.points = c.points[:0] }

// Vertex snaps to the nearest dot inside the grid.
func (c *Canvas) Vertex(x, y float64) {
	w, h := c.dots.Size()
	px := min(max(int(math.Round(x)), 0), w-1)
	py := min(max(int(math.Round(y)), 0), h-1)
	c.points = append(c.points, [2]int{px, py})
}

func (c *Canvas) ClosePath() {
	n := len(c.points)
	for k := 0; k < n; k++ {
		a, b := c.points[k], c.points[(k+1)%n]
		c.dots.Line(a[0], a[1], b[0], b[1])
	}
}

// flush copies lit cells to the screen.
func (c *Canvas) flush(screen tcell.Screen) {
	screen.Clear()
	cols, rows := c.dots.Cells()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if r, ok := c.dots.Rune(col, row); ok {
				screen.SetContent(col, row, r, nil, c.style)
			}
		}
	}
	screen.Show()
}

// Backend opens instances on a terminal. Screen, when set, must already be
// initialized; otherwise the controlling terminal is used.
type Backend struct {
	Log    *zap.Logger
	Screen tcell.Screen
}

// Instance is a sketch running full-screen on a terminal.
type Instance struct {
	log    *zap.Logger
	screen tcell.Screen
	sketch hero.Sketch

	mu     sync.Mutex
	canvas *Canvas
	frames int
	closed bool

	resized  chan struct{}
	stop     chan struct{}
	quit     chan struct{}
	quitOnce sync.Once
	polled   chan struct{}
	wg       sync.WaitGroup
}

// Instantiate takes over the whole screen; the terminal decides the canvas
// size, so only the frame rate of opts is used.
func (b *Backend) Instantiate(opts hero.Options, sketch hero.Sketch) (hero.Instance, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}

	screen := b.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("open terminal: %w", err)
		}
		if err := s.Init(); err != nil {
			return nil, fmt.Errorf("init terminal: %w", err)
		}
		screen = s
	}
	screen.HideCursor()

	cols, rows := screen.Size()
	inst := &Instance{
		log:     log,
		screen:  screen,
		sketch:  sketch,
		canvas:  newCanvas(cols, rows),
		resized: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		quit:    make(chan struct{}),
		polled:  make(chan struct{}),
	}
	sketch.Setup(inst.canvas)

	fps := opts.FPS
	if fps <= 0 {
		fps = hero.FrameRate
	}
	inst.wg.Add(1)
	go inst.poll()
	go inst.run(time.Second / time.Duration(fps))
	return inst, nil
}

func (i *Instance) poll() {
	defer close(i.polled)
	for {
		ev := i.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			select {
			case i.resized <- struct{}{}:
			default:
			}
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q')) {
				i.quitOnce.Do(func() { close(i.quit) })
			}
		}
	}
}

func (i *Instance) run(interval time.Duration) {
	defer i.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-i.stop:
			return
		case <-i.resized:
			i.resize()
		case <-ticker.C:
			i.frame()
		}
	}
}

func (i *Instance) resize() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.screen.Sync()
	cols, rows := i.screen.Size()
	i.canvas.dots.Resize(cols, rows)
	i.sketch.Resized(i.canvas)
	i.log.Debug("terminal resized", zap.Int("cols", cols), zap.Int("rows", rows))
}

func (i *Instance) frame() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.canvas.dots.Clear()
	i.sketch.Frame(i.canvas)
	i.canvas.flush(i.screen)
	i.frames++
}

// Frames is the number of frames drawn so far.
func (i *Instance) Frames() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.frames
}

// Size is the canvas size in dots.
func (i *Instance) Size() (int, int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.canvas.Size()
}

// Done is closed when the user asks to quit.
func (i *Instance) Done() <-chan struct{} { return i.quit }

// Close stops both loops and restores the terminal.
func (i *Instance) Close() error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return nil
	}
	i.closed = true
	i.mu.Unlock()

	close(i.stop)
	i.wg.Wait()
	i.screen.Fini()
	<-i.polled
	return nil
}
