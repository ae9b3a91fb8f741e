// Package delay provides a circular sample delay line with integer and
// fractional reads.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-harmonizer/dsp/interp"
)

// Line is a circular delay line. Reads are relative to the most recently
// written sample: a delay of 0 returns it, a delay of Len()-1 the oldest
// one still held.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line holding size samples.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample

	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read returns the sample written delay writes ago. delay is clamped to
// [0, Len()-1].
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	delay = min(max(delay, 0), size-1)

	readPos := d.writePos - 1 - delay
	if readPos < 0 {
		readPos += size
	}

	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay with cubic Hermite interpolation.
// delay is clamped to [0, Len()-3].
func (d *Line) ReadFractional(delay float64) float64 {
	maxDelay := float64(len(d.buffer) - 3)
	if !(delay > 0) {
		delay = 0
	}

	if delay > maxDelay {
		delay = max(maxDelay, 0)
	}

	p := int(math.Floor(delay))
	t := delay - float64(p)

	if t == 0 {
		return d.Read(p)
	}

	x0 := d.Read(p)
	x1 := d.Read(p + 1)
	x2 := d.Read(p + 2)

	// Nothing is newer than delay 0; extrapolate the missing neighbour.
	xm1 := 2*x0 - x1
	if p > 0 {
		xm1 = d.Read(p - 1)
	}

	return interp.Hermite4(t, xm1, x0, x1, x2)
}

// Process writes x and returns the sample delay writes old, interpolated
// for fractional delays.
func (d *Line) Process(x, delay float64) float64 {
	d.Write(x)
	return d.ReadFractional(delay)
}

// Latest copies the most recent len(dst) samples into dst, oldest first.
// len(dst) must not exceed Len().
func (d *Line) Latest(dst []float64) {
	n := len(dst)
	size := len(d.buffer)

	start := d.writePos - n
	if start < 0 {
		start += size
	}

	first := copy(dst, d.buffer[start:min(start+n, size)])
	copy(dst[first:], d.buffer[:n-first])
}

// Reset clears line state.
func (d *Line) Reset() {
	for i := range d.buffer {
		d.buffer[i] = 0
	}

	d.writePos = 0
}
