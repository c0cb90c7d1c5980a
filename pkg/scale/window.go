// Package scale holds host-side helpers for turning driver readings into a
// stable display value.
package scale

import "gonum.org/v1/gonum/stat"

// Window is a fixed-size rolling window of weight readings. Push overwrites
// the oldest reading once the window fills. Not safe for concurrent use.
type Window struct {
	buf  []float64
	next int
	full bool
}

// NewWindow makes a window holding size readings, minimum 1.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{buf: make([]float64, size)}
}

// Push records a reading, evicting the oldest one if the window is full.
func (w *Window) Push(v float64) {
	w.buf[w.next] = v
	w.next++
	if w.next == len(w.buf) {
		w.next = 0
		w.full = true
	}
}

// Len reports how many readings the window currently holds.
func (w *Window) Len() int {
	if w.full {
		return len(w.buf)
	}
	return w.next
}

// Mean returns the average of the held readings, or 0 for an empty window.
func (w *Window) Mean() float64 {
	n := w.Len()
	if n == 0 {
		return 0
	}
	return stat.Mean(w.buf[:n], nil)
}

// Reset empties the window.
func (w *Window) Reset() {
	w.next = 0
	w.full = false
}
