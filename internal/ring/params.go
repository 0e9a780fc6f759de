package ring

import (
	"image/color"
	"math/rand/v2"
)

const (
	DefaultSize = 1024

	// MinRadius keeps the ring visible on tiny surfaces.
	MinRadius   = 24
	RadiusScale = 0.98
)

// Random is the noise source of a simulator. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
	NormFloat64() float64
}

// NewRandom returns a seeded PCG generator.
func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type zeroNoise struct{}

func (zeroNoise) IntN(int) int         { return 0 }
func (zeroNoise) NormFloat64() float64 { return 0 }

// ZeroNoise always kicks particle 0 and never adds noise. It makes runs
// fully deterministic and is never picked as a default.
var ZeroNoise Random = zeroNoise{}

// Bound is an inclusive color channel range.
type Bound struct {
	Min, Max float64
}

func (b Bound) clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Palette bounds each channel of the stroke color. Start is clamped into
// the bounds when the simulator is built.
type Palette struct {
	Red, Green, Blue Bound
	Start            [3]float64
}

// Params are the tunables of the ring dynamics.
type Params struct {
	Size int

	Tension   float64
	Sympathy  float64
	Damping   float64
	KickPull  float64
	KickNoise float64

	ColorDecay   float64
	ColorNoise   float64
	StrokeAlpha  uint8
	StrokeWeight float64

	Palette Palette
}

// DefaultParams is a 1024 node orange ring.
func DefaultParams() Params {
	return Params{
		Size:         DefaultSize,
		Tension:      0.5,
		Sympathy:     0.25,
		Damping:      0.999,
		KickPull:     0.001,
		KickNoise:    5,
		ColorDecay:   0.995,
		ColorNoise:   0.04,
		StrokeAlpha:  180,
		StrokeWeight: 0.5,
		Palette: Palette{
			Red:   Bound{Min: 220, Max: 255},
			Green: Bound{Min: 90, Max: 170},
			Blue:  Bound{Min: 0, Max: 60},
			Start: [3]float64{240, 120, 20},
		},
	}
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithParams replaces the default tunables. A size below 3 keeps the default.
func WithParams(p Params) Option {
	return func(s *Simulator) {
		if p.Size < 3 {
			p.Size = DefaultSize
		}
		s.p = p
	}
}

// Pen is the drawing surface a ring is emitted to.
type Pen interface {
	Stroke(c color.NRGBA, weight float64)
	NoFill()
	BeginPath()
	Vertex(x, y float64)
	ClosePath()
}
