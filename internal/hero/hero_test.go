package hero

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/iburimskiy/herobg/internal/ring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeCanvas struct {
	w, h     int
	vertices int
	closes   int
	fades    []color.NRGBA
}

func (c *fakeCanvas) Size() (int, int)            { return c.w, c.h }
func (c *fakeCanvas) Stroke(color.NRGBA, float64) {}
func (c *fakeCanvas) NoFill()                     {}
func (c *fakeCanvas) BeginPath()                  { c.vertices = 0 }
func (c *fakeCanvas) Vertex(float64, float64)     { c.vertices++ }
func (c *fakeCanvas) ClosePath()                  { c.closes++ }
func (c *fakeCanvas) Fade(col color.NRGBA)        { c.fades = append(c.fades, col) }

type fakeInstance struct {
	mu     sync.Mutex
	closed int
	err    error
}

func (i *fakeInstance) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed++
	return i.err
}

func (i *fakeInstance) closeCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

type fakeBackend struct {
	mu      sync.Mutex
	opts    []Options
	canvas  *fakeCanvas
	inst    *fakeInstance
	err     error
	explode bool
}

func (b *fakeBackend) Instantiate(opts Options, s Sketch) (Instance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.explode {
		panic("backend exploded")
	}
	b.opts = append(b.opts, opts)
	if b.err != nil {
		return nil, b.err
	}
	b.canvas = &fakeCanvas{w: opts.Width, h: opts.Height}
	s.Setup(b.canvas)
	if b.inst == nil {
		b.inst = &fakeInstance{}
	}
	return b.inst, nil
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.opts)
}

func waitReady(t *testing.T, c *Component) {
	t.Helper()
	select {
	case <-c.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("acquisition never settled")
	}
}

func TestMount_FrameRateFollowsMotionPreference(t *testing.T) {
	cases := []struct {
		reduced bool
		fps     int
	}{
		{true, 24},
		{false, 60},
	}
	for _, tc := range cases {
		b := &fakeBackend{}
		c := Mount(StaticHost{W: 800, H: 400, ReducedMotion: tc.reduced}, Props{}, Static(b))
		waitReady(t, c)

		require.Equal(t, 1, b.calls())
		assert.Equal(t, tc.fps, b.opts[0].FPS)
		assert.Equal(t, tc.fps, c.Options().FPS)
		require.NoError(t, c.Close())
	}
}

func TestMount_HeightFallback(t *testing.T) {
	cases := []struct {
		name  string
		props Props
		host  StaticHost
		want  int
	}{
		{"props win", Props{Height: 300}, StaticHost{W: 640, H: 500}, 300},
		{"measured host", Props{}, StaticHost{W: 640, H: 500}, 500},
		{"default", Props{}, StaticHost{W: 640}, DefaultHeight},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{}
			c := Mount(tc.host, tc.props, Static(b))
			defer c.Close()
			waitReady(t, c)

			require.Equal(t, 1, b.calls())
			assert.Equal(t, 640, b.opts[0].Width)
			assert.Equal(t, tc.want, b.opts[0].Height)
		})
	}
}

func TestOptionsFit(t *testing.T) {
	fixed := Options{FixedHeight: 320}
	w, h := fixed.Fit(1280, 900)
	assert.Equal(t, 1280, w)
	assert.Equal(t, 320, h)

	fluid := Options{}
	w, h = fluid.Fit(0, 0)
	assert.Equal(t, 1, w)
	assert.Equal(t, DefaultHeight, h)
}

func TestMount_SetsUpRing(t *testing.T) {
	b := &fakeBackend{}
	c := Mount(StaticHost{W: 800, H: 400}, Props{}, Static(b), WithRandom(ring.ZeroNoise))
	defer c.Close()
	waitReady(t, c)

	sim := c.Sketch().Simulator()
	require.NotNil(t, sim)
	assert.Equal(t, 1024, sim.Len())
	assert.InDelta(t, 196.0, sim.Radius(), 1e-9)
	assert.True(t, c.Active())
	assert.NotNil(t, c.Instance())
}

func TestClose_WhilePendingCreatesNothing(t *testing.T) {
	release := make(chan struct{})
	b := &fakeBackend{}
	// this loader ignores ctx so the cancel flag alone must stop instantiation
	load := func(context.Context) (Backend, error) {
		<-release
		return b, nil
	}

	c := Mount(StaticHost{W: 800, H: 400}, Props{}, load)
	require.NotPanics(t, func() { _ = c.Close() })
	close(release)
	waitReady(t, c)

	assert.Zero(t, b.calls())
	assert.Nil(t, c.Instance())
	assert.False(t, c.Active())
}

func TestClose_CancelsLoaderContext(t *testing.T) {
	started := make(chan struct{})
	load := func(ctx context.Context) (Backend, error) {
		close(started)
		<-ctx.Done()
		return nil, ErrClosed
	}

	c := Mount(StaticHost{W: 800, H: 400}, Props{}, load)
	<-started
	require.NoError(t, c.Close())
	waitReady(t, c)
	assert.Nil(t, c.Instance())
}

func TestClose_ActiveInstanceOnce(t *testing.T) {
	b := &fakeBackend{}
	c := Mount(StaticHost{W: 800, H: 400}, Props{}, Static(b))
	waitReady(t, c)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, b.inst.closeCount())
	assert.Nil(t, c.Instance())
}

func TestFailuresAreSwallowed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	loaders := map[string]Loader{
		"loader error":  func(context.Context) (Backend, error) { return nil, errors.New("no display") },
		"loader panic":  func(context.Context) (Backend, error) { panic("boom") },
		"nil backend":   func(context.Context) (Backend, error) { return nil, nil },
		"instantiate":   Static(&fakeBackend{err: errors.New("no gpu")}),
		"backend panic": Static(&fakeBackend{explode: true}),
		"nil loader":    nil,
	}
	for name, load := range loaders {
		t.Run(name, func(t *testing.T) {
			c := Mount(StaticHost{W: 100, H: 100}, Props{}, load, WithLogger(log))
			waitReady(t, c)
			assert.Nil(t, c.Instance())
			assert.False(t, c.Active())
			assert.NoError(t, c.Close())
		})
	}
	assert.NotZero(t, logs.Len())
}

func TestClose_SwallowsTeardownError(t *testing.T) {
	b := &fakeBackend{inst: &fakeInstance{err: errors.New("already gone")}}
	c := Mount(StaticHost{W: 100, H: 100}, Props{}, Static(b))
	waitReady(t, c)
	assert.NoError(t, c.Close())
	assert.Equal(t, 1, b.inst.closeCount())
}

func TestRingSketch_FrameFadesAndDraws(t *testing.T) {
	s := NewRingSketch(ring.NewRandom(1))
	s.fade = color.NRGBA{R: 255, G: 255, B: 255, A: 20}
	canvas := &fakeCanvas{w: 300, h: 200}

	s.Frame(canvas)
	require.NotNil(t, s.Simulator())
	assert.Equal(t, 1024, canvas.vertices)
	assert.Equal(t, 1, canvas.closes)
	require.Len(t, canvas.fades, 1)
	assert.Equal(t, uint8(20), canvas.fades[0].A)

	canvas.w, canvas.h = 600, 400
	s.Resized(canvas)
	w, h := s.Simulator().Size()
	assert.Equal(t, 600.0, w)
	assert.Equal(t, 400.0, h)
}

func TestMount_DefaultRandomDrifts(t *testing.T) {
	b := &fakeBackend{}
	c := Mount(StaticHost{W: 800, H: 400}, Props{}, Static(b))
	defer c.Close()
	waitReady(t, c)

	sim := c.Sketch().Simulator()
	require.NotNil(t, sim)
	start := sim.Color()
	for i := 0; i < 600; i++ {
		c.Sketch().Frame(b.canvas)
	}
	assert.NotEqual(t, start, sim.Color(), "stroke color must drift without an injected source")

	still := ring.New(800, 400, ring.ZeroNoise)
	for i := 0; i < 600; i++ {
		still.Tick()
	}
	assert.NotEqual(t, still.Snapshot(), sim.Snapshot())
}
