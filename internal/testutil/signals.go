// Package testutil provides deterministic fixtures and tolerance helpers
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-biosig/core"
)

// Sine generates a deterministic sine wave at freqHz.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Noise generates white noise with a fixed seed for reproducibility.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Ramp generates a linear ramp from 0 to amplitude over length samples.
func Ramp(amplitude float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = amplitude * float64(i) / float64(length-1)
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// SineSignal wraps a sine fixture in a single-channel Signal, failing the
// test on construction errors.
func SineSignal(t *testing.T, freqHz, sampleRate, amplitude float64, length int) *core.Signal {
	t.Helper()
	sig, err := core.FromSamples(sampleRate, Sine(freqHz, sampleRate, amplitude, length))
	if err != nil {
		t.Fatalf("building sine signal: %v", err)
	}
	return sig
}

// NoiseSignal wraps a seeded noise fixture in a single-channel Signal.
func NoiseSignal(t *testing.T, seed int64, sampleRate, amplitude float64, length int) *core.Signal {
	t.Helper()
	sig, err := core.FromSamples(sampleRate, Noise(seed, amplitude, length))
	if err != nil {
		t.Fatalf("building noise signal: %v", err)
	}
	return sig
}
