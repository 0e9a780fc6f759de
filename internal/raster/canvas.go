package raster

import (
	"image/color"

	"github.com/gogpu/gg"
)

// Canvas draws pen calls onto a gg context.
type Canvas struct {
	dc      *gg.Context
	stroke  gg.RGBA
	weight  float64
	started bool
	err     error
}

func newCanvas(dc *gg.Context) *Canvas {
	return &Canvas{dc: dc, weight: 1}
}

func (c *Canvas) Size() (int, int) { return c.dc.Width(), c.dc.Height() }

func (c *Canvas) Stroke(col color.NRGBA, weight float64) {
	c.stroke = toRGBA(col)
	c.weight = weight
}

// NoFill is implicit: paths are only ever stroked.
func (c *Canvas) NoFill() {}

func (c *Canvas) BeginPath() {
	c.dc.ClearPath()
	c.started = false
}

func (c *Canvas) Vertex(x, y float64) {
	if !c.started {
		c.dc.MoveTo(x, y)
		c.started = true
		return
	}
	c.dc.LineTo(x, y)
}

func (c *Canvas) ClosePath() {
	if !c.started {
		return
	}
	c.dc.ClosePath()
	c.dc.SetRGBA(c.stroke.R, c.stroke.G, c.stroke.B, c.stroke.A)
	c.dc.SetLineWidth(c.weight)
	if err := c.dc.Stroke(); err != nil && c.err == nil {
		c.err = err
	}
	c.started = false
}

// Fade washes the whole canvas with a translucent color.
func (c *Canvas) Fade(col color.NRGBA) {
	w, h := c.Size()
	rgba := toRGBA(col)
	c.dc.ClearPath()
	c.dc.DrawRectangle(0, 0, float64(w), float64(h))
	c.dc.SetRGBA(rgba.R, rgba.G, rgba.B, rgba.A)
	if err := c.dc.Fill(); err != nil && c.err == nil {
		c.err = err
	}
}

// Err is the first rasterization error since the canvas was created.
func (c *Canvas) Err() error { return c.err }

func toRGBA(col color.NRGBA) gg.RGBA {
	return gg.RGBA{
		R: float64(col.R) / 255,
		G: float64(col.G) / 255,
		B: float64(col.B) / 255,
		A: float64(col.A) / 255,
	}
}
