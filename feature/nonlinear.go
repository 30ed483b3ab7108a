package feature

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-biosig/core"
)

func registerNonlinear(e *Extractor) {
	e.register("sample_entropy", func(c *segmentContext) (float64, error) {
		return sampleEntropy(c, c.opts.EmbeddingDim, c.opts.Tolerance)
	})

	e.register("approximate_entropy", func(c *segmentContext) (float64, error) {
		return approximateEntropy(c, c.opts.EmbeddingDim, c.opts.Tolerance)
	})

	e.register("fractal_dimension", func(c *segmentContext) (float64, error) {
		return higuchiFD(c.data, c.opts.KMax)
	})

	e.register("katz_fd", func(c *segmentContext) (float64, error) {
		return katzFD(c.data), nil
	})

	e.register("dfa", func(c *segmentContext) (float64, error) {
		return dfa(c.data)
	})

	e.register("hurst", func(c *segmentContext) (float64, error) {
		return hurstRS(c.data)
	})
}

// tolerance resolves the entropy radius r·std, failing on constant input
// where the radius collapses to zero.
func (c *segmentContext) tolerance(r float64) (float64, error) {
	_, std := c.moments()
	if std == 0 {
		return 0, &core.DegenerateInputError{
			Operation: "entropy tolerance",
			Reason:    "standard deviation is zero",
		}
	}
	return r * std, nil
}

// chebyshev is the maximum coordinate distance between the m-length
// templates starting at i and j.
func chebyshev(data []float64, i, j, m int) float64 {
	maxD := 0.0
	for k := 0; k < m; k++ {
		d := math.Abs(data[i+k] - data[j+k])
		if d > maxD {
			maxD = d
		}
	}
	return maxD
}

// sampleEntropy computes SampEn(m, r·std): the negative log of the
// conditional probability that template matches of length m remain matches
// at length m+1. Self-matches are excluded.
func sampleEntropy(c *segmentContext, m int, r float64) (float64, error) {
	data := c.data
	n := len(data)
	if n < m+2 {
		return 0, &core.InsufficientDataError{
			Operation: "sample_entropy",
			Length:    n,
			Required:  m + 2,
		}
	}
	radius, err := c.tolerance(r)
	if err != nil {
		return 0, err
	}

	count := func(length int) float64 {
		total := 0.0
		templates := n - length + 1
		for i := 0; i < templates; i++ {
			for j := i + 1; j < templates; j++ {
				if chebyshev(data, i, j, length) <= radius {
					total++
				}
			}
		}
		return total
	}

	b := count(m)
	a := count(m + 1)
	if a == 0 || b == 0 {
		return 0, nil
	}
	return -math.Log(a / b), nil
}

// approximateEntropy computes ApEn(m, r·std). Unlike sample entropy it
// includes self-matches, which biases it toward regularity on short data.
func approximateEntropy(c *segmentContext, m int, r float64) (float64, error) {
	data := c.data
	n := len(data)
	if n < m+1 {
		return 0, &core.InsufficientDataError{
			Operation: "approximate_entropy",
			Length:    n,
			Required:  m + 1,
		}
	}
	radius, err := c.tolerance(r)
	if err != nil {
		return 0, err
	}

	phi := func(length int) float64 {
		templates := n - length + 1
		sum := 0.0
		for i := 0; i < templates; i++ {
			matches := 0
			for j := 0; j < templates; j++ {
				if chebyshev(data, i, j, length) <= radius {
					matches++
				}
			}
			sum += math.Log(float64(matches) / float64(templates))
		}
		return sum / float64(templates)
	}

	return phi(m) - phi(m+1), nil
}

// higuchiFD estimates the fractal dimension from the log-log slope of
// curve length against scale over k = 1..kMax.
func higuchiFD(data []float64, kMax int) (float64, error) {
	n := len(data)
	if n < 2*kMax {
		return 0, &core.InsufficientDataError{
			Operation: "fractal_dimension",
			Length:    n,
			Required:  2 * kMax,
		}
	}

	var logInvK, logL []float64
	for k := 1; k <= kMax; k++ {
		sum := 0.0
		valid := 0
		for m := 0; m < k; m++ {
			points := (n - 1 - m) / k
			if points < 1 {
				continue
			}
			length := 0.0
			for i := 1; i <= points; i++ {
				length += math.Abs(data[m+i*k] - data[m+(i-1)*k])
			}
			length *= float64(n-1) / (float64(k) * float64(points))
			sum += length
			valid++
		}
		if valid == 0 {
			continue
		}
		mean := sum / float64(valid)
		if mean <= 0 {
			continue
		}
		logInvK = append(logInvK, math.Log(1/float64(k)))
		logL = append(logL, math.Log(mean))
	}
	if len(logL) < 2 {
		return 0, &core.DegenerateInputError{
			Operation: "fractal_dimension",
			Reason:    "no usable curve lengths for regression",
		}
	}
	_, slope := stat.LinearRegression(logInvK, logL, nil, false)
	return slope, nil
}

// katzFD computes the Katz fractal dimension
// D = log10(n) / (log10(d/L) + log10(n)), with L the curve length, d the
// maximum distance from the first sample, and n the step count. A flat
// segment has dimension zero by convention.
func katzFD(data []float64) float64 {
	steps := len(data) - 1
	if steps < 1 {
		return 0
	}
	length := 0.0
	for i := 1; i < len(data); i++ {
		length += math.Abs(data[i] - data[i-1])
	}
	extent := 0.0
	for _, v := range data {
		d := math.Abs(v - data[0])
		if d > extent {
			extent = d
		}
	}
	if length == 0 || extent == 0 {
		return 0
	}
	logN := math.Log10(float64(steps))
	return logN / (math.Log10(extent/length) + logN)
}

// dfa estimates the detrended fluctuation analysis scaling exponent over
// logarithmically spaced box sizes between 4 and n/4 samples.
func dfa(data []float64) (float64, error) {
	n := len(data)
	if n < 16 {
		return 0, &core.InsufficientDataError{Operation: "dfa", Length: n, Required: 16}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	profile := make([]float64, n)
	sum := 0.0
	for i, v := range data {
		sum += v - mean
		profile[i] = sum
	}

	var logN, logF []float64
	maxBox := n / 4
	for box := 4; box <= maxBox; box = int(math.Ceil(float64(box) * 1.5)) {
		boxes := n / box
		fluct := 0.0
		for b := 0; b < boxes; b++ {
			seg := profile[b*box : (b+1)*box]
			x := make([]float64, box)
			for i := range x {
				x[i] = float64(i)
			}
			alpha, beta := stat.LinearRegression(x, seg, nil, false)
			for i, v := range seg {
				d := v - (alpha + beta*float64(i))
				fluct += d * d
			}
		}
		f := math.Sqrt(fluct / float64(boxes*box))
		if f <= 0 {
			continue
		}
		logN = append(logN, math.Log(float64(box)))
		logF = append(logF, math.Log(f))
	}
	if len(logF) < 2 {
		return 0, &core.DegenerateInputError{
			Operation: "dfa",
			Reason:    "fluctuations vanish at every scale",
		}
	}
	_, slope := stat.LinearRegression(logN, logF, nil, false)
	return slope, nil
}

// hurstRS estimates the Hurst exponent by rescaled-range analysis over
// halving subseries lengths.
func hurstRS(data []float64) (float64, error) {
	n := len(data)
	if n < 20 {
		return 0, &core.InsufficientDataError{Operation: "hurst", Length: n, Required: 20}
	}

	var logN, logRS []float64
	for length := n; length >= 8; length /= 2 {
		chunks := n / length
		sum := 0.0
		valid := 0
		for ci := 0; ci < chunks; ci++ {
			rs := rescaledRange(data[ci*length : (ci+1)*length])
			if rs > 0 {
				sum += rs
				valid++
			}
		}
		if valid == 0 {
			continue
		}
		logN = append(logN, math.Log(float64(length)))
		logRS = append(logRS, math.Log(sum/float64(valid)))
	}
	if len(logRS) < 2 {
		return 0, &core.DegenerateInputError{
			Operation: "hurst",
			Reason:    "rescaled range vanishes at every scale",
		}
	}
	_, slope := stat.LinearRegression(logN, logRS, nil, false)
	return slope, nil
}

// rescaledRange computes R/S for one chunk: the range of the mean-adjusted
// cumulative sum over its standard deviation.
func rescaledRange(chunk []float64) float64 {
	mean := 0.0
	for _, v := range chunk {
		mean += v
	}
	mean /= float64(len(chunk))

	sum, minC, maxC := 0.0, math.Inf(1), math.Inf(-1)
	varSum := 0.0
	for _, v := range chunk {
		d := v - mean
		sum += d
		varSum += d * d
		if sum < minC {
			minC = sum
		}
		if sum > maxC {
			maxC = sum
		}
	}
	std := math.Sqrt(varSum / float64(len(chunk)))
	if std == 0 {
		return 0
	}
	return (maxC - minC) / std
}
