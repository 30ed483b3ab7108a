// Package wave provides small waveform building blocks shared by the
// signal generators: sample grids, Gaussian pulses and clipped placement.
package wave

import "math"

// Linspace returns n evenly spaced samples from start to stop inclusive.
func Linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Span returns the time grid [0, duration] at the given sampling rate.
func Span(duration, fs float64) []float64 {
	n := int(fs * duration)
	return Linspace(0, duration, n)
}

// Centered returns a time grid spanning [-duration/2, duration/2].
func Centered(duration, fs float64) []float64 {
	n := int(fs * duration)
	return Linspace(-duration/2, duration/2, n)
}

// Gaussian evaluates amplitude·exp(-decay·(t-center)²) on the grid t.
func Gaussian(t []float64, amplitude, decay, center float64) []float64 {
	out := make([]float64, len(t))
	for i, v := range t {
		d := v - center
		out[i] = amplitude * math.Exp(-decay*d*d)
	}
	return out
}

// AddAt adds src into dst starting at index start, clipping the portions
// that fall outside dst.
func AddAt(dst, src []float64, start int) {
	for i, v := range src {
		j := start + i
		if j < 0 || j >= len(dst) {
			continue
		}
		dst[j] += v
	}
}

// RaisedCosine returns a fade-in ramp of length n, rising smoothly from
// 0 to 1. Used as a crossfade window for spliced segments.
func RaisedCosine(n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = 1
		return out
	}
	for i := range out {
		out[i] = 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(n-1)))
	}
	return out
}
