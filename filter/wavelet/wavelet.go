// Package wavelet implements multi-level orthogonal wavelet decomposition
// with coefficient thresholding for denoising. The transform is periodized,
// which keeps reconstruction exact for unthresholded coefficients.
package wavelet

import (
	"fmt"
	"math"
	"sort"
)

// ThresholdMode selects how detail coefficients are shrunk.
type ThresholdMode int

const (
	// Soft shrinks coefficients toward zero by the threshold.
	Soft ThresholdMode = iota
	// Hard zeroes coefficients below the threshold and keeps the rest.
	Hard
)

// Orthonormal scaling filters, lowpass taps summing to sqrt(2).
var families = map[string][]float64{
	"db1": {
		0.7071067811865476, 0.7071067811865476,
	},
	"db2": {
		0.48296291314469025, 0.8365163037378079,
		0.22414386804185735, -0.12940952255092145,
	},
	"db4": {
		0.23037781330885523, 0.7148465705525415,
		0.6308807679295904, -0.02798376941698385,
		-0.18703481171888114, 0.030841381835986965,
		0.032883011666982945, -0.010597401784997278,
	},
}

// Filters returns the lowpass and highpass analysis filters for a named
// wavelet family (db1, db2, db4).
func Filters(family string) (lo, hi []float64, err error) {
	h, ok := families[family]
	if !ok {
		return nil, nil, fmt.Errorf("wavelet: unknown family %q", family)
	}
	g := make([]float64, len(h))
	for k := range h {
		g[k] = h[len(h)-1-k]
		if k%2 == 1 {
			g[k] = -g[k]
		}
	}
	return h, g, nil
}

// MaxLevel returns the deepest decomposition the signal length supports for
// the given family.
func MaxLevel(n int, family string) int {
	h, ok := families[family]
	if !ok || n < len(h) {
		return 0
	}
	return int(math.Floor(math.Log2(float64(n) / float64(len(h)-1))))
}

// Decompose performs a level-deep periodized DWT. The returned slice holds
// the final approximation first, then detail bands from coarsest to finest.
// The input length must be divisible by 2^level.
func Decompose(data []float64, family string, level int) ([][]float64, error) {
	h, g, err := Filters(family)
	if err != nil {
		return nil, err
	}
	if level <= 0 {
		return nil, fmt.Errorf("wavelet: level must be > 0: %d", level)
	}

	n := len(data)
	if n%(1<<uint(level)) != 0 {
		return nil, fmt.Errorf("wavelet: length %d not divisible by 2^%d", n, level)
	}
	if level > MaxLevel(n, family) {
		return nil, fmt.Errorf("wavelet: level %d exceeds maximum %d for length %d",
			level, MaxLevel(n, family), n)
	}

	details := make([][]float64, level)
	approx := append([]float64(nil), data...)
	for l := 0; l < level; l++ {
		a, d := analyze(approx, h, g)
		details[level-1-l] = d
		approx = a
	}

	bands := make([][]float64, 0, level+1)
	bands = append(bands, approx)
	bands = append(bands, details...)
	return bands, nil
}

// Reconstruct inverts Decompose.
func Reconstruct(bands [][]float64, family string) ([]float64, error) {
	h, g, err := Filters(family)
	if err != nil {
		return nil, err
	}
	if len(bands) < 2 {
		return nil, fmt.Errorf("wavelet: need approximation plus at least one detail band")
	}

	approx := append([]float64(nil), bands[0]...)
	for _, d := range bands[1:] {
		if len(d) != len(approx) {
			return nil, fmt.Errorf("wavelet: band length %d does not match approximation %d",
				len(d), len(approx))
		}
		approx = synthesize(approx, d, h, g)
	}
	return approx, nil
}

// Denoise decomposes data to the given level, applies a universal threshold
// (sigma estimated from the finest detail band via the median absolute
// deviation) to all detail coefficients, and reconstructs.
func Denoise(data []float64, family string, level int, mode ThresholdMode) ([]float64, error) {
	bands, err := Decompose(data, family, level)
	if err != nil {
		return nil, err
	}

	finest := bands[len(bands)-1]
	sigma := mad(finest) / 0.6745
	threshold := sigma * math.Sqrt(2*math.Log(float64(len(data))))

	for _, d := range bands[1:] {
		shrink(d, threshold, mode)
	}
	return Reconstruct(bands, family)
}

// analyze computes one level of periodized analysis:
// a[i] = sum_k h[k] x[(2i+k) mod n], and likewise for d with g.
func analyze(x, h, g []float64) (a, d []float64) {
	n := len(x)
	half := n / 2
	a = make([]float64, half)
	d = make([]float64, half)
	for i := 0; i < half; i++ {
		var sa, sd float64
		for k := range h {
			v := x[(2*i+k)%n]
			sa += h[k] * v
			sd += g[k] * v
		}
		a[i] = sa
		d[i] = sd
	}
	return a, d
}

// synthesize inverts analyze: x[m] = sum_i h[(m-2i) mod n] a[i] + g[...] d[i].
func synthesize(a, d, h, g []float64) []float64 {
	half := len(a)
	n := 2 * half
	x := make([]float64, n)
	for i := 0; i < half; i++ {
		for k := range h {
			m := (2*i + k) % n
			x[m] += h[k]*a[i] + g[k]*d[i]
		}
	}
	return x
}

func shrink(d []float64, threshold float64, mode ThresholdMode) {
	for i, v := range d {
		av := math.Abs(v)
		switch {
		case av <= threshold:
			d[i] = 0
		case mode == Soft && v > 0:
			d[i] = v - threshold
		case mode == Soft:
			d[i] = v + threshold
		}
	}
}

// mad returns the median absolute deviation from zero.
func mad(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	abs := make([]float64, len(x))
	for i, v := range x {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)
	mid := len(abs) / 2
	if len(abs)%2 == 0 {
		return (abs[mid-1] + abs[mid]) / 2
	}
	return abs[mid]
}
