package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NearlyEqual reports whether a and b are equal within eps, using a relative
// comparison for large magnitudes.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// AllFinite reports whether every sample is neither NaN nor infinite.
func AllFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Detrend removes the least-squares linear trend from buf in place.
// Integrated noise processes (brown noise) drift without this step.
func Detrend(buf []float64) {
	n := len(buf)
	if n < 2 {
		return
	}

	// Fit y = a + b*x over x = 0..n-1.
	nf := float64(n)
	meanX := (nf - 1) / 2

	var meanY float64
	for _, v := range buf {
		meanY += v
	}
	meanY /= nf

	var sxy, sxx float64
	for i, v := range buf {
		dx := float64(i) - meanX
		sxy += dx * (v - meanY)
		sxx += dx * dx
	}

	if sxx == 0 {
		return
	}
	b := sxy / sxx
	a := meanY - b*meanX

	for i := range buf {
		buf[i] -= a + b*float64(i)
	}
}

// EnsureLen returns a slice with the requested length, reusing buf capacity
// if possible. Used for internal buffer reuse inside a single stage; reused
// buffers never cross a stage boundary.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}
