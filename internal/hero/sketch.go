package hero

import (
	"image/color"

	"github.com/iburimskiy/herobg/internal/ring"
)

// RingSketch drives a ring.Simulator from backend callbacks.
type RingSketch struct {
	rng      ring.Random
	ringOpts []ring.Option
	fade     color.NRGBA

	sim *ring.Simulator
}

// NewRingSketch builds a sketch outside of a Component, for tools that
// drive a backend directly.
func NewRingSketch(rng ring.Random, opts ...ring.Option) *RingSketch {
	return &RingSketch{rng: rng, ringOpts: opts}
}

func (s *RingSketch) Setup(c Canvas) {
	w, h := c.Size()
	s.sim = ring.New(float64(w), float64(h), s.rng, s.ringOpts...)
}

func (s *RingSketch) Resized(c Canvas) {
	if s.sim == nil {
		s.Setup(c)
		return
	}
	w, h := c.Size()
	s.sim.Resize(float64(w), float64(h))
}

func (s *RingSketch) Frame(c Canvas) {
	if s.sim == nil {
		s.Setup(c)
	}
	if f, ok := c.(Fader); ok && s.fade.A > 0 {
		f.Fade(s.fade)
	}
	s.sim.Step(c)
}

// Simulator is nil until Setup ran.
func (s *RingSketch) Simulator() *ring.Simulator { return s.sim }
