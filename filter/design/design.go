// Package design computes biquad coefficients for the filters the
// preprocessing pipeline uses: Butterworth lowpass/highpass/bandpass
// cascades and narrowband notch rejection.
package design

import (
	"math"

	"github.com/cwbudde/algo-biosig/filter/biquad"
)

// normalizedW0 converts a frequency to normalized angular frequency,
// reporting failure when freq is outside (0, Nyquist).
func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return 0, false
	}
	return 2 * math.Pi * freq / sampleRate, true
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 {
		return biquad.Coefficients{}
	}
	inv := 1 / a0
	return biquad.Coefficients{
		B0: b0 * inv,
		B1: b1 * inv,
		B2: b2 * inv,
		A1: a1 * inv,
		A2: a2 * inv,
	}
}

// Lowpass designs a lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Highpass designs a highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Notch designs a notch biquad centered at freq (Hz). Q controls the
// rejection bandwidth as bandwidth = freq / Q.
func Notch(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	if q <= 0 {
		q = 30
	}
	cw := math.Cos(w0)
	sw := math.Sin(w0)
	alpha := sw / (2 * q)

	b0 := 1.0
	b1 := -2 * cw
	b2 := 1.0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}
