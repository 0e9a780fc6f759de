// Package ring simulates a closed loop of particles tied together by springs.
//
// Every tick each particle is pulled toward its two neighbours, one random
// particle is kicked, the loop is integrated with light damping and clamped
// to the surface. The stroke color drifts in a bounded random walk.
package ring

import (
	"image/color"
	"math"
	"math/rand/v2"
)

// Simulator owns one ring. It is not safe for concurrent use; hosts drive it
// from a single frame callback.
type Simulator struct {
	p   Params
	rng Random

	width, height  float64
	cx, cy, radius float64

	px, py []float64
	vx, vy []float64
	ax, ay []float64

	color colorWalk
}

// New builds a ring on a width x height surface as a perfect circle at rest.
// A nil rng gets a generator with a random seed.
func New(width, height float64, rng Random, opts ...Option) *Simulator {
	s := &Simulator{p: DefaultParams(), rng: rng}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewRandom(rand.Uint64())
	}

	n := s.p.Size
	s.px = make([]float64, n)
	s.py = make([]float64, n)
	s.vx = make([]float64, n)
	s.vy = make([]float64, n)
	s.ax = make([]float64, n)
	s.ay = make([]float64, n)
	s.color = newColorWalk(s.p.Palette)

	s.Resize(width, height)
	return s
}

// Resize rebuilds the circle for a new surface. Velocities and accelerations
// carry over; only positions move.
func (s *Simulator) Resize(width, height float64) {
	s.width = math.Max(0, width)
	s.height = math.Max(0, height)

	hw, hh := s.width/2, s.height/2
	s.cx, s.cy = hw, hh
	s.radius = math.Max(MinRadius, math.Min(hw, hh)*RadiusScale)

	n := len(s.px)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		s.px[i] = hw + math.Cos(angle)*s.radius
		s.py[i] = hh + math.Sin(angle)*s.radius
	}
}

// Tick advances the ring by one frame.
func (s *Simulator) Tick() {
	s.accelerate()
	s.kick()
	s.integrate()
	s.color.step(s.rng, s.p.ColorDecay, s.p.ColorNoise)
}

// Step ticks and emits the ring in one call, the per-frame entry point.
func (s *Simulator) Step(pen Pen) {
	s.Tick()
	s.Render(pen)
}

func (s *Simulator) accelerate() {
	n := len(s.px)
	for i := 0; i < n; i++ {
		prev := (i + n - 1) % n
		next := (i + 1) % n
		s.ax[i] = (s.px[prev]+s.px[next]-2*s.px[i])*s.p.Tension +
			(s.vx[prev]+s.vx[next]-2*s.vx[i])*s.p.Sympathy
		s.ay[i] = (s.py[prev]+s.py[next]-2*s.py[i])*s.p.Tension +
			(s.vy[prev]+s.vy[next]-2*s.vy[i])*s.p.Sympathy
	}
}

// kick replaces the spring force of one random particle with a weak pull
// toward the center plus gaussian noise.
func (s *Simulator) kick() {
	k := s.rng.IntN(len(s.px))
	s.ax[k] = (s.cx-s.px[k])*s.p.KickPull + s.rng.NormFloat64()*s.p.KickNoise
	s.ay[k] = (s.cy-s.py[k])*s.p.KickPull + s.rng.NormFloat64()*s.p.KickNoise
}

func (s *Simulator) integrate() {
	for i := range s.px {
		s.vx[i] += s.ax[i]
		s.vy[i] += s.ay[i]
		s.vx[i] *= s.p.Damping
		s.vy[i] *= s.p.Damping
		s.px[i] = clamp(s.px[i]+s.vx[i], 0, s.width)
		s.py[i] = clamp(s.py[i]+s.vy[i], 0, s.height)
	}
}

// Render emits the ring as one closed, unfilled path.
func (s *Simulator) Render(pen Pen) {
	pen.NoFill()
	pen.Stroke(s.Color(), s.p.StrokeWeight)
	pen.BeginPath()
	for i := range s.px {
		pen.Vertex(s.px[i], s.py[i])
	}
	pen.ClosePath()
}

// Len is the ring cardinality.
func (s *Simulator) Len() int { return len(s.px) }

// Size is the surface the ring is clamped to.
func (s *Simulator) Size() (width, height float64) { return s.width, s.height }

func (s *Simulator) Center() (x, y float64) { return s.cx, s.cy }

func (s *Simulator) Radius() float64 { return s.radius }

func (s *Simulator) Position(i int) (x, y float64) { return s.px[i], s.py[i] }

func (s *Simulator) Velocity(i int) (vx, vy float64) { return s.vx[i], s.vy[i] }

// SetVelocity overrides the velocity of particle i.
func (s *Simulator) SetVelocity(i int, vx, vy float64) {
	s.vx[i], s.vy[i] = vx, vy
}

// Color is the current stroke color at the configured alpha.
func (s *Simulator) Color() color.NRGBA {
	return s.color.nrgba(s.p.StrokeAlpha)
}

// Params returns the tunables in use.
func (s *Simulator) Params() Params { return s.p }

// Rect is an axis-aligned box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds is the bounding box of the ring's current positions.
func (s *Simulator) Bounds() Rect {
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for i := range s.px {
		r.MinX = math.Min(r.MinX, s.px[i])
		r.MaxX = math.Max(r.MaxX, s.px[i])
		r.MinY = math.Min(r.MinY, s.py[i])
		r.MaxY = math.Max(r.MaxY, s.py[i])
	}
	return r
}

// Snapshot is a deep copy of a simulator's geometry and color state.
type Snapshot struct {
	Width, Height float64
	CenterX       float64
	CenterY       float64
	Radius        float64
	X, Y          []float64
	VX, VY        []float64
	R, G, B       float64
	VR, VG, VB    float64
}

func (s *Simulator) Snapshot() Snapshot {
	r, g, b := s.color.rgb()
	return Snapshot{
		Width:   s.width,
		Height:  s.height,
		CenterX: s.cx,
		CenterY: s.cy,
		Radius:  s.radius,
		X:       append([]float64(nil), s.px...),
		Y:       append([]float64(nil), s.py...),
		VX:      append([]float64(nil), s.vx...),
		VY:      append([]float64(nil), s.vy...),
		R:       r,
		G:       g,
		B:       b,
		VR:      s.color[0].velocity,
		VG:      s.color[1].velocity,
		VB:      s.color[2].velocity,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
