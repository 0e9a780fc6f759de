package ring

import (
	"image/color"
	"math"
)

// channel is one bounded random walk of the stroke color.
type channel struct {
	value    float64
	velocity float64
	bound    Bound
}

// outward reports whether value sits past a bound and is still moving away.
// A value outside the range but already heading back keeps its velocity.
func outward(value, velocity float64, b Bound) bool {
	return (value < b.Min && velocity < 0) || (value > b.Max && velocity > 0)
}

func (c *channel) step(rng Random, decay, noise float64) {
	c.velocity = c.velocity*decay + rng.NormFloat64()*noise
	c.value += c.velocity
	if outward(c.value, c.velocity, c.bound) {
		c.velocity = -c.velocity
	}
	c.value = c.bound.clamp(c.value)
}

type colorWalk [3]channel

func newColorWalk(p Palette) colorWalk {
	bounds := [3]Bound{p.Red, p.Green, p.Blue}
	var w colorWalk
	for i := range w {
		w[i] = channel{value: bounds[i].clamp(p.Start[i]), bound: bounds[i]}
	}
	return w
}

func (w *colorWalk) step(rng Random, decay, noise float64) {
	for i := range w {
		w[i].step(rng, decay, noise)
	}
}

func (w *colorWalk) rgb() (r, g, b float64) {
	return w[0].value, w[1].value, w[2].value
}

func (w *colorWalk) nrgba(alpha uint8) color.NRGBA {
	return color.NRGBA{
		R: uint8(math.Round(w[0].value)),
		G: uint8(math.Round(w[1].value)),
		B: uint8(math.Round(w[2].value)),
		A: alpha,
	}
}
