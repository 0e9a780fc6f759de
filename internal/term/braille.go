package term

// brailleBits maps a dot inside a 2x4 cell to its bit in U+2800..U+28FF.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Dots is a monochrome bitmap with 2x4 dots per terminal cell.
type Dots struct {
	cols, rows int
	cells      []uint8
}

func NewDots(cols, rows int) *Dots {
	d := &Dots{}
	d.Resize(cols, rows)
	return d
}

// Resize drops all dots and changes the cell grid.
func (d *Dots) Resize(cols, rows int) {
	d.cols, d.rows = max(cols, 0), max(rows, 0)
	d.cells = make([]uint8, d.cols*d.rows)
}

// Size is the bitmap size in dots.
func (d *Dots) Size() (width, height int) { return d.cols * 2, d.rows * 4 }

// Cells is the grid size in terminal cells.
func (d *Dots) Cells() (cols, rows int) { return d.cols, d.rows }

func (d *Dots) Clear() {
	clear(d.cells)
}

// Set lights one dot; dots outside the bitmap are ignored.
func (d *Dots) Set(x, y int) {
	if x < 0 || y < 0 || x >= d.cols*2 || y >= d.rows*4 {
		return
	}
	d.cells[(y/4)*d.cols+x/2] |= brailleBits[y%4][x%2]
}

// Line draws a Bresenham line including both end points.
func (d *Dots) Line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		d.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Rune returns the braille glyph of a cell and whether any dot is lit.
func (d *Dots) Rune(col, row int) (rune, bool) {
	if col < 0 || row < 0 || col >= d.cols || row >= d.rows {
		return ' ', false
	}
	bits := d.cells[row*d.cols+col]
	return rune(0x2800 + int(bits)), bits != 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
