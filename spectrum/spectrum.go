// Package spectrum computes one-sided power spectral densities for feature
// extraction and verification. Welch's method is the default estimator;
// a direct FFT periodogram is available for narrowband checks.
package spectrum

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/mjibson/go-dsp/spectral"
	godspwindow "github.com/mjibson/go-dsp/window"
)

// PSD holds a one-sided power spectral density estimate. Freqs[i] is the
// center frequency in Hz of bin i; Power[i] its density. Both slices have
// equal length with Freqs[0] = 0 (DC) and the last bin at Nyquist.
type PSD struct {
	Freqs []float64
	Power []float64
}

// TotalPower returns the sum over all density bins.
func (p PSD) TotalPower() float64 {
	var sum float64
	for _, v := range p.Power {
		sum += v
	}
	return sum
}

// PeakFreq returns the frequency of the maximum-power bin.
func (p PSD) PeakFreq() float64 {
	if len(p.Power) == 0 {
		return 0
	}
	maxIdx := 0
	for i, v := range p.Power {
		if v > p.Power[maxIdx] {
			maxIdx = i
		}
	}
	return p.Freqs[maxIdx]
}

// Welch estimates the PSD of data sampled at sampleRate Hz using Welch's
// method with a Hann window. Segment length defaults to min(256, len(data))
// with 50% overlap, matching common biosignal practice.
func Welch(data []float64, sampleRate float64) (PSD, error) {
	return WelchSegmented(data, sampleRate, 0)
}

// WelchSegmented is Welch with an explicit per-segment length. A nperseg of
// 0 selects min(256, len(data)).
func WelchSegmented(data []float64, sampleRate float64, nperseg int) (PSD, error) {
	if len(data) == 0 {
		return PSD{}, fmt.Errorf("spectrum: empty input")
	}
	if sampleRate <= 0 {
		return PSD{}, fmt.Errorf("spectrum: sample rate must be > 0: %g", sampleRate)
	}

	if nperseg <= 0 {
		nperseg = 256
	}
	if nperseg > len(data) {
		nperseg = len(data)
	}

	opts := &spectral.PwelchOptions{
		NFFT:      nperseg,
		Noverlap:  nperseg / 2,
		Window:    godspwindow.Hann,
		Scale_off: false,
	}
	power, freqs := spectral.Pwelch(data, sampleRate, opts)
	return PSD{Freqs: freqs, Power: power}, nil
}

// Periodogram estimates the PSD from a single full-length FFT. It is noisier
// than Welch but has the finest frequency resolution, which suits narrowband
// verification (powerline bins, pacing frequencies).
func Periodogram(data []float64, sampleRate float64) (PSD, error) {
	n := len(data)
	if n == 0 {
		return PSD{}, fmt.Errorf("spectrum: empty input")
	}
	if sampleRate <= 0 {
		return PSD{}, fmt.Errorf("spectrum: sample rate must be > 0: %g", sampleRate)
	}

	fftSize := nextPowerOf2(n)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return PSD{}, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range data {
		in[i] = complex(v, 0)
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return PSD{}, fmt.Errorf("spectrum: fft: %w", err)
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := 0; i < bins; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)

	scale := 1 / (sampleRate * float64(n))
	freqs := make([]float64, bins)
	for i := range power {
		freqs[i] = float64(i) * sampleRate / float64(fftSize)
		power[i] *= scale
		if i > 0 && i < bins-1 {
			power[i] *= 2 // fold negative frequencies into the one-sided estimate
		}
	}
	return PSD{Freqs: freqs, Power: power}, nil
}

// Magnitude returns |X[k]| per bin from split real and imaginary parts.
func Magnitude(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// BandPower integrates the PSD over [low, high] Hz using the trapezoidal
// rule. Bins outside the band contribute nothing; an empty band yields 0.
func (p PSD) BandPower(low, high float64) float64 {
	if len(p.Freqs) < 2 || low >= high {
		return 0
	}

	var total float64
	for i := 1; i < len(p.Freqs); i++ {
		f0, f1 := p.Freqs[i-1], p.Freqs[i]
		if f1 < low || f0 > high {
			continue
		}
		total += 0.5 * (p.Power[i-1] + p.Power[i]) * (f1 - f0)
	}
	return total
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bitsLen(n-1)
}

func bitsLen(x int) int {
	n := 0
	for x > 0 {
		x >>= 1
		n++
	}
	return n
}

// MeanFreq returns the power-weighted frequency centroid of the PSD, or 0
// for an all-zero spectrum.
func (p PSD) MeanFreq() float64 {
	var num, den float64
	for i, v := range p.Power {
		num += p.Freqs[i] * v
		den += v
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// MedianFreq returns the frequency splitting cumulative power in half, or 0
// for an all-zero spectrum.
func (p PSD) MedianFreq() float64 {
	total := p.TotalPower()
	if total == 0 {
		return 0
	}
	var cum float64
	for i, v := range p.Power {
		cum += v
		if cum >= total/2 {
			return p.Freqs[i]
		}
	}
	return p.Freqs[len(p.Freqs)-1]
}

// Entropy returns the spectral entropy of the PSD treated as a probability
// distribution, normalized to [0, 1] by log2 of the bin count.
func (p PSD) Entropy() float64 {
	total := p.TotalPower()
	if total == 0 {
		return 0
	}

	var h float64
	nonzero := 0
	for _, v := range p.Power {
		if v <= 0 {
			continue
		}
		q := v / total
		h -= q * math.Log2(q)
		nonzero++
	}
	if nonzero <= 1 {
		return 0
	}
	return h / math.Log2(float64(nonzero))
}
