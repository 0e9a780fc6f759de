// Package raster is an offscreen hero backend built on gogpu/gg's software
// renderer. Frames advance on a ticker or on demand and can be exported as
// PNG.
package raster

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gogpu/gg"
	"github.com/iburimskiy/herobg/internal/hero"
	"github.com/iburimskiy/herobg/internal/ring"
	"go.uber.org/zap"
)

// Background is the color a fresh canvas is cleared to.
var Background = gg.RGB(1, 1, 1)

// Backend creates offscreen instances. With Manual set, frames only advance
// through Instance.Advance.
type Backend struct {
	Log    *zap.Logger
	Manual bool
}

// Instance is one offscreen canvas running a sketch.
type Instance struct {
	log *zap.Logger

	mu     sync.Mutex
	dc     *gg.Context
	canvas *Canvas
	sketch hero.Sketch
	frames int
	closed bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func (b *Backend) Instantiate(opts hero.Options, sketch hero.Sketch) (hero.Instance, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}

	dc := gg.NewContext(max(opts.Width, 1), max(opts.Height, 1))
	dc.ClearWithColor(Background)

	inst := &Instance{
		log:    log,
		dc:     dc,
		canvas: newCanvas(dc),
		sketch: sketch,
		stop:   make(chan struct{}),
	}
	sketch.Setup(inst.canvas)

	if !b.Manual && opts.FPS > 0 {
		inst.wg.Add(1)
		go inst.run(time.Second / time.Duration(opts.FPS))
	}
	return inst, nil
}

func (i *Instance) run(interval time.Duration) {
	defer i.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-i.stop:
			return
		case <-ticker.C:
			i.Advance(1)
		}
	}
}

// Advance runs n frames. It is a no-op once the instance is closed.
func (i *Instance) Advance(n int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return
	}
	for k := 0; k < n; k++ {
		i.sketch.Frame(i.canvas)
		i.frames++
	}
}

// Resize reallocates the canvas and lets the sketch rebuild its geometry.
func (i *Instance) Resize(width, height int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return hero.ErrClosed
	}
	if err := i.dc.Resize(width, height); err != nil {
		return fmt.Errorf("resize canvas: %w", err)
	}
	i.dc.ClearWithColor(Background)
	i.sketch.Resized(i.canvas)
	return nil
}

// Frames is the number of frames drawn so far.
func (i *Instance) Frames() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.frames
}

// Size is the current canvas size.
func (i *Instance) Size() (int, int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.canvas.Size()
}

func (i *Instance) EncodePNG(w io.Writer) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return hero.ErrClosed
	}
	if err := i.canvas.Err(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return i.dc.EncodePNG(w)
}

func (i *Instance) SavePNG(path string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return hero.ErrClosed
	}
	if err := i.dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Close stops the ticker and releases the canvas.
func (i *Instance) Close() error {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return nil
	}
	i.closed = true
	close(i.stop)
	i.mu.Unlock()

	i.wg.Wait()
	i.log.Debug("raster instance closed", zap.Int("frames", i.frames))
	return i.dc.Close()
}

// SaveRing renders the ring's current state on a fresh canvas and writes it
// to path as PNG.
func SaveRing(path string, sim *ring.Simulator) error {
	w, h := sim.Size()
	dc := gg.NewContext(max(int(w), 1), max(int(h), 1))
	defer dc.Close()
	dc.ClearWithColor(Background)

	c := newCanvas(dc)
	sim.Render(c)
	if err := c.Err(); err != nil {
		return fmt.Errorf("render ring: %w", err)
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
