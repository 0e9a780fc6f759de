// Package hero mounts the ring animation on a host surface.
//
// A Component acquires its drawing backend asynchronously, instantiates the
// ring sketch on it and tears everything down on Close. The animation is
// decoration: every backend failure is logged and swallowed so the page
// around it never notices.
package hero

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/iburimskiy/herobg/internal/ring"
	"go.uber.org/zap"
)

const (
	DefaultHeight    = 400
	FrameRate        = 60
	ReducedFrameRate = 24
)

// ErrClosed is returned by loaders that observe the component going away.
var ErrClosed = errors.New("hero: component closed")

// Props are the caller-supplied settings. Height 0 follows the host.
type Props struct {
	Height int
}

// Host is the container the hero is mounted in.
type Host interface {
	Width() int
	MeasuredHeight() int
	PrefersReducedMotion() bool
}

// StaticHost is a Host with fixed answers.
type StaticHost struct {
	W, H          int
	ReducedMotion bool
}

func (h StaticHost) Width() int                 { return h.W }
func (h StaticHost) MeasuredHeight() int        { return h.H }
func (h StaticHost) PrefersReducedMotion() bool { return h.ReducedMotion }

// Canvas is a drawable region owned by a backend instance.
type Canvas interface {
	ring.Pen
	Size() (width, height int)
}

// Fader is implemented by canvases that keep their pixels between frames.
// Fade washes the whole canvas with c before the next curve is drawn.
type Fader interface {
	Fade(c color.NRGBA)
}

// Sketch is what a backend drives: Setup once the canvas exists, Resized
// after the canvas changed size and Frame on every tick.
type Sketch interface {
	Setup(c Canvas)
	Resized(c Canvas)
	Frame(c Canvas)
}

// Options describe the canvas a backend should create.
type Options struct {
	Width, Height int
	// FixedHeight is the props height; 0 when the canvas follows the host.
	FixedHeight int
	FPS         int
}

// Fit maps a new host size to the canvas size.
func (o Options) Fit(outsideWidth, outsideHeight int) (width, height int) {
	height = o.FixedHeight
	if height <= 0 {
		height = outsideHeight
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return max(outsideWidth, 1), height
}

// Backend is a drawing library able to host a sketch.
type Backend interface {
	Instantiate(opts Options, sketch Sketch) (Instance, error)
}

// Instance is a running sketch. Close stops ticking and releases the canvas.
type Instance interface {
	Close() error
}

// Loader acquires a backend. It should return early once ctx is done.
type Loader func(ctx context.Context) (Backend, error)

// Static wraps an already available backend.
func Static(b Backend) Loader {
	return func(context.Context) (Backend, error) { return b, nil }
}

type phase int

const (
	pending phase = iota
	active
	settled
)

// Component is one mounted hero background.
type Component struct {
	log    *zap.Logger
	sketch *RingSketch

	mu        sync.Mutex
	phase     phase
	cancelled bool
	cancel    context.CancelFunc
	inst      Instance
	opts      Options

	ready chan struct{}
}

// Option customizes a Component.
type Option func(*Component)

func WithLogger(l *zap.Logger) Option {
	return func(c *Component) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRandom injects the noise source of the ring. Without it the ring
// seeds its own generator randomly.
func WithRandom(rng ring.Random) Option {
	return func(c *Component) { c.sketch.rng = rng }
}

func WithRingOptions(opts ...ring.Option) Option {
	return func(c *Component) { c.sketch.ringOpts = append(c.sketch.ringOpts, opts...) }
}

// WithFade sets the alpha of the white wash drawn before each frame on
// canvases that keep their pixels. 0 disables it.
func WithFade(alpha uint8) Option {
	return func(c *Component) { c.sketch.fade = color.NRGBA{R: 255, G: 255, B: 255, A: alpha} }
}

// Mount starts acquiring a backend and returns immediately.
func Mount(host Host, props Props, load Loader, opts ...Option) *Component {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Component{
		log:    zap.NewNop(),
		sketch: &RingSketch{},
		cancel: cancel,
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.acquire(ctx, host, props, load)
	return c
}

func (c *Component) acquire(ctx context.Context, host Host, props Props, load Loader) {
	defer close(c.ready)

	backend, err := guardLoad(ctx, load)
	if err != nil {
		c.log.Debug("hero backend unavailable", zap.Error(err))
		c.settle()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		c.log.Debug("hero unmounted before backend loaded")
		c.phase = settled
		return
	}

	c.opts = resolve(host, props)
	inst, err := guardInstantiate(backend, c.opts, c.sketch)
	if err != nil {
		c.log.Debug("hero backend failed to start", zap.Error(err))
		c.phase = settled
		return
	}
	c.inst = inst
	c.phase = active
	c.log.Debug("hero mounted",
		zap.Int("width", c.opts.Width),
		zap.Int("height", c.opts.Height),
		zap.Int("fps", c.opts.FPS))
}

func (c *Component) settle() {
	c.mu.Lock()
	c.phase = settled
	c.mu.Unlock()
}

// resolve reads the host once: height falls back from props to the measured
// host height to DefaultHeight, and reduced motion picks the frame rate.
func resolve(host Host, props Props) Options {
	o := Options{FixedHeight: max(props.Height, 0), FPS: FrameRate}
	if host.PrefersReducedMotion() {
		o.FPS = ReducedFrameRate
	}
	o.Width, o.Height = o.Fit(host.Width(), host.MeasuredHeight())
	return o
}

func guardLoad(ctx context.Context, load Loader) (b Backend, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hero: loader panicked: %v", r)
		}
	}()
	if load == nil {
		return nil, errors.New("hero: no loader")
	}
	b, err = load(ctx)
	if err == nil && b == nil {
		err = errors.New("hero: loader returned no backend")
	}
	return b, err
}

func guardInstantiate(b Backend, opts Options, s Sketch) (inst Instance, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hero: backend panicked: %v", r)
		}
	}()
	inst, err = b.Instantiate(opts, s)
	if err == nil && inst == nil {
		err = errors.New("hero: backend returned no instance")
	}
	return inst, err
}

// Close tears the component down in whatever phase it is in. A pending
// acquisition is cancelled and its result discarded; a running instance is
// closed. Close never fails and may be called repeatedly.
func (c *Component) Close() error {
	c.mu.Lock()
	if c.cancelled {
		c.mu.Unlock()
		return nil
	}
	c.cancelled = true
	c.cancel()
	inst := c.inst
	c.inst = nil
	c.phase = settled
	c.mu.Unlock()

	if inst != nil {
		if err := guardClose(inst); err != nil {
			c.log.Debug("hero teardown failed", zap.Error(err))
		}
	}
	return nil
}

func guardClose(inst Instance) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hero: close panicked: %v", r)
		}
	}()
	return inst.Close()
}

// Ready is closed once acquisition has settled, successfully or not.
func (c *Component) Ready() <-chan struct{} { return c.ready }

// Instance is the running backend instance, or nil.
func (c *Component) Instance() Instance {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inst
}

// Options is what the backend was instantiated with. Zero before Ready.
func (c *Component) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// Active reports whether a backend instance is running.
func (c *Component) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == active
}

// Sketch is the ring sketch handed to the backend.
func (c *Component) Sketch() *RingSketch { return c.sketch }
