package ring

import (
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPen struct {
	stroke   color.NRGBA
	weight   float64
	noFill   int
	begins   int
	closes   int
	vertices [][2]float64
}

func (p *recordingPen) Stroke(c color.NRGBA, w float64) { p.stroke, p.weight = c, w }
func (p *recordingPen) NoFill()                         { p.noFill++ }
func (p *recordingPen) BeginPath()                      { p.begins++; p.vertices = p.vertices[:0] }
func (p *recordingPen) Vertex(x, y float64)             { p.vertices = append(p.vertices, [2]float64{x, y}) }
func (p *recordingPen) ClosePath()                      { p.closes++ }

func TestNew_Geometry800x400(t *testing.T) {
	s := New(800, 400, ZeroNoise)

	assert.InDelta(t, 196.0, s.Radius(), 1e-9)
	cx, cy := s.Center()
	assert.Equal(t, 400.0, cx)
	assert.Equal(t, 200.0, cy)

	x, y := s.Position(0)
	assert.InDelta(t, 596.0, x, 1e-9)
	assert.InDelta(t, 200.0, y, 1e-9)
}

func TestNew_PerfectCircle(t *testing.T) {
	cases := []struct {
		name   string
		w, h   float64
		radius float64
	}{
		{"landscape", 800, 400, 196},
		{"portrait", 300, 900, 147},
		{"tiny surface uses min radius", 20, 30, MinRadius},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.w, tc.h, ZeroNoise)
			require.Equal(t, DefaultSize, s.Len())
			assert.InDelta(t, tc.radius, s.Radius(), 1e-9)

			for i := 0; i < s.Len(); i++ {
				x, y := s.Position(i)
				d := math.Hypot(x-tc.w/2, y-tc.h/2)
				assert.InDelta(t, tc.radius, d, 1e-9, "particle %d off the circle", i)

				vx, vy := s.Velocity(i)
				assert.Zero(t, vx)
				assert.Zero(t, vy)
			}
		})
	}
}

func TestCardinalityIsConstant(t *testing.T) {
	s := New(640, 480, NewRandom(1))
	assert.Equal(t, 1024, s.Len())

	for i := 0; i < 50; i++ {
		s.Tick()
	}
	s.Resize(1280, 200)
	s.Tick()
	s.Resize(10, 10)
	assert.Equal(t, 1024, s.Len())
}

func TestTick_PositionsStayInBounds(t *testing.T) {
	sizes := [][2]float64{{800, 400}, {120, 90}, {30, 30}}
	for _, sz := range sizes {
		s := New(sz[0], sz[1], NewRandom(42))
		for tick := 0; tick < 400; tick++ {
			s.Tick()
			for i := 0; i < s.Len(); i++ {
				x, y := s.Position(i)
				if x < 0 || x > sz[0] || y < 0 || y > sz[1] {
					t.Fatalf("tick %d particle %d at (%g, %g) outside %gx%g", tick, i, x, y, sz[0], sz[1])
				}
			}
		}
	}
}

func TestTick_ColorStaysInPalette(t *testing.T) {
	p := DefaultParams()
	p.ColorNoise = 2 // exaggerate so the walk hits every bound
	s := New(200, 200, NewRandom(7), WithParams(p))

	for tick := 0; tick < 5000; tick++ {
		s.Tick()
		snap := s.Snapshot()
		require.True(t, snap.R >= 220 && snap.R <= 255, "red %g at tick %d", snap.R, tick)
		require.True(t, snap.G >= 90 && snap.G <= 170, "green %g at tick %d", snap.G, tick)
		require.True(t, snap.B >= 0 && snap.B <= 60, "blue %g at tick %d", snap.B, tick)
	}
}

func TestResize_PreservesVelocities(t *testing.T) {
	s := New(800, 400, NewRandom(3))
	for i := 0; i < 10; i++ {
		s.Tick()
	}
	s.SetVelocity(5, 1.5, -2.25)

	before := s.Snapshot()
	s.Resize(1024, 768)
	after := s.Snapshot()

	assert.Empty(t, cmp.Diff(before.VX, after.VX))
	assert.Empty(t, cmp.Diff(before.VY, after.VY))
	assert.InDelta(t, 384*0.98, after.Radius, 1e-9)

	x, y := s.Position(0)
	assert.InDelta(t, 512+after.Radius, x, 1e-9)
	assert.InDelta(t, 384.0, y, 1e-9)
}

func TestTick_DeterministicForSeed(t *testing.T) {
	a := New(800, 400, NewRandom(99))
	b := New(800, 400, NewRandom(99))
	for i := 0; i < 300; i++ {
		a.Tick()
		b.Tick()
	}
	if diff := cmp.Diff(a.Snapshot(), b.Snapshot()); diff != "" {
		t.Fatalf("same seed diverged (-a +b):\n%s", diff)
	}

	c := New(800, 400, NewRandom(100))
	for i := 0; i < 300; i++ {
		c.Tick()
	}
	assert.NotEmpty(t, cmp.Diff(a.Snapshot(), c.Snapshot()))
}

func TestAccelerate_WrapsAround(t *testing.T) {
	s := New(800, 400, ZeroNoise)
	n := s.Len()
	s.SetVelocity(n-1, 2, 0)
	s.SetVelocity(1, 0, -4)

	s.accelerate()

	wantX := (s.px[n-1]+s.px[1]-2*s.px[0])*0.5 + (2+0-0)*0.25
	wantY := (s.py[n-1]+s.py[1]-2*s.py[0])*0.5 + (0-4-0)*0.25
	assert.InDelta(t, wantX, s.ax[0], 1e-12)
	assert.InDelta(t, wantY, s.ay[0], 1e-12)

	lastX := (s.px[n-2]+s.px[0]-2*s.px[n-1])*0.5 + (0+0-2*2)*0.25
	assert.InDelta(t, lastX, s.ax[n-1], 1e-12)
}

func TestKick_PullsTowardCenter(t *testing.T) {
	s := New(800, 400, ZeroNoise)
	s.Tick()

	// particle 0 starts at (596, 200): spring force is replaced by the pull
	vx, vy := s.Velocity(0)
	assert.InDelta(t, (400-596)*0.001*0.999, vx, 1e-12)
	assert.InDelta(t, 0.0, vy, 1e-12)
}

func TestRender_ClosedStroke(t *testing.T) {
	s := New(800, 400, NewRandom(5))
	pen := &recordingPen{}
	s.Step(pen)

	assert.Equal(t, 1, pen.noFill)
	assert.Equal(t, 1, pen.begins)
	assert.Equal(t, 1, pen.closes)
	assert.Len(t, pen.vertices, 1024)
	assert.Equal(t, uint8(180), pen.stroke.A)
	assert.Equal(t, 0.5, pen.weight)

	x, y := s.Position(17)
	assert.Equal(t, [2]float64{x, y}, pen.vertices[17])
}

func TestBounds(t *testing.T) {
	s := New(800, 400, ZeroNoise)
	r := s.Bounds()
	assert.InDelta(t, 204.0, r.MinX, 1e-9)
	assert.InDelta(t, 596.0, r.MaxX, 1e-9)
	assert.InDelta(t, 4.0, r.MinY, 1e-6)
	assert.InDelta(t, 396.0, r.MaxY, 1e-6)
}

func TestWithParams_Size(t *testing.T) {
	p := DefaultParams()
	p.Size = 64
	assert.Equal(t, 64, New(100, 100, nil, WithParams(p)).Len())

	p.Size = 1
	assert.Equal(t, DefaultSize, New(100, 100, nil, WithParams(p)).Len())
}

func TestNew_NilRandomIsNoisy(t *testing.T) {
	s := New(800, 400, nil)
	start := s.Color()
	for i := 0; i < 600; i++ {
		s.Tick()
	}
	assert.NotEqual(t, start, s.Color())

	still := New(800, 400, ZeroNoise)
	for i := 0; i < 600; i++ {
		still.Tick()
	}
	assert.NotEqual(t, still.Snapshot(), s.Snapshot())
}
