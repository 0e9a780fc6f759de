package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// canvas is an offscreen image that keeps its pixels between frames, so the
// fade wash leaves a trail behind the ring.
type canvas struct {
	img    *ebiten.Image
	stroke color.NRGBA
	weight float32
	points []float32
}

func newCanvas(w, h int) *canvas {
	img := ebiten.NewImage(w, h)
	img.Fill(color.White)
	return &canvas{img: img, weight: 1}
}

func (c *canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *canvas) Stroke(col color.NRGBA, weight float64) {
	c.stroke = col
	c.weight = float32(weight)
}

func (c *canvas) NoFill() {}

func (c *canvas) BeginPath() { c.points = c.points[:0] }

func (c *canvas) Vertex(x, y float64) {
	c.points = append(c.points, float32(x), float32(y))
}

func (c *canvas) ClosePath() {
	n := len(c.points) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		vector.StrokeLine(c.img,
			c.points[2*i], c.points[2*i+1],
			c.points[2*j], c.points[2*j+1],
			c.weight, c.stroke, true)
	}
}

func (c *canvas) Fade(col color.NRGBA) {
	w, h := c.Size()
	vector.DrawFilledRect(c.img, 0, 0, float32(w), float32(h), col, false)
}

func (c *canvas) release() {
	if c.img != nil {
		c.img.Deallocate()
		c.img = nil
	}
}
