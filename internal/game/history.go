package game

import (
	"image/color"
)

// colorHistory records the last N stroke colors into a ring buffer so the
// debug overlay can draw how the palette drifted.
type colorHistory struct {
	buffer    []color.NRGBA
	nextIndex int
	count     int
}

func newColorHistory(ringSize int) *colorHistory {
	return &colorHistory{
		buffer: make([]color.NRGBA, ringSize),
	}
}

func (h *colorHistory) record(c color.NRGBA) {
	if len(h.buffer) == 0 {
		return
	}
	h.buffer[h.nextIndex] = c
	h.nextIndex++
	if h.nextIndex >= len(h.buffer) {
		h.nextIndex = 0
	}
	if h.count < len(h.buffer) {
		h.count++
	}
}

// snapshot returns up to the last n colors (most recent last).
func (h *colorHistory) snapshot(n int) []color.NRGBA {
	if n > h.count {
		n = h.count
	}
	out := make([]color.NRGBA, 0, n)
	// Walk backwards from nextIndex - 1
	idx := h.nextIndex - 1
	if idx < 0 {
		idx = len(h.buffer) - 1
	}
	for i := 0; i < n; i++ {
		out = append(out, h.buffer[idx])
		idx--
		if idx < 0 {
			idx = len(h.buffer) - 1
		}
	}
	// reverse to chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
