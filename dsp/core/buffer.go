package core

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// CopyInto copies src into dst and returns the number of copied elements.
func CopyInto(dst, src []float64) int {
	n := min(len(dst), len(src))
	copy(dst[:n], src[:n])

	return n
}

// AddInto adds src to dst element-wise over their common length.
func AddInto(dst, src []float64) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] += src[i]
	}
}
