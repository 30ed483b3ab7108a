// Package noise applies ordered stacks of noise and artifact layers onto
// Signals. Layer order is significant and preserved exactly as given;
// disabled layers are skipped, not removed, so configurations round-trip.
package noise

import (
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/random"
)

// Layer is a closed set of noise and artifact specifications. Each layer
// rewrites one channel buffer in place; additive layers add their samples,
// artifact layers perturb only their time window.
type Layer interface {
	apply(buf []float64, fs float64, rng *random.Stream) error

	// On reports whether the layer is enabled.
	On() bool
}

// Apply runs the layer stack over every channel of the signal in list order
// and returns a new Signal of identical shape. Randomness is drawn from rng
// in a fixed order, so equal seeds reproduce equal output.
func Apply(sig *core.Signal, layers []Layer, rng *random.Stream) (*core.Signal, error) {
	fs := sig.SampleRate()
	return sig.Map(func(buf []float64) error {
		for _, l := range layers {
			if !l.On() {
				continue
			}
			if err := l.apply(buf, fs, rng); err != nil {
				return err
			}
		}
		return nil
	})
}

// Gaussian adds white noise with the given standard deviation.
type Gaussian struct {
	Std     float64
	Enabled bool
}

// On reports whether the layer is enabled.
func (l *Gaussian) On() bool { return l.Enabled }

func (l *Gaussian) apply(buf []float64, _ float64, rng *random.Stream) error {
	if l.Std < 0 {
		return core.ValidatePositive("std", l.Std)
	}
	for i := range buf {
		buf[i] += rng.Normal(0, l.Std)
	}
	return nil
}

// Pink adds 1/f noise, spectrally shaped and scaled to the requested RMS
// amplitude.
type Pink struct {
	Amplitude float64
	Enabled   bool
}

// On reports whether the layer is enabled.
func (l *Pink) On() bool { return l.Enabled }

func (l *Pink) apply(buf []float64, _ float64, rng *random.Stream) error {
	return addShapedNoise(buf, l.Amplitude, 0.5, false, rng)
}

// Brown adds 1/f² noise. The shaped samples are detrended before scaling:
// integrated spectra otherwise accumulate drift that dwarfs the signal.
type Brown struct {
	Amplitude float64
	Enabled   bool
}

// On reports whether the layer is enabled.
func (l *Brown) On() bool { return l.Enabled }

func (l *Brown) apply(buf []float64, _ float64, rng *random.Stream) error {
	return addShapedNoise(buf, l.Amplitude, 1.0, true, rng)
}

// addShapedNoise synthesizes noise with magnitude spectrum 1/f^exponent via
// an inverse FFT of random phases, normalizes it to unit RMS, scales it to
// amplitude, and adds it to buf.
func addShapedNoise(buf []float64, amplitude, exponent float64, detrend bool, rng *random.Stream) error {
	if amplitude < 0 {
		return core.ValidatePositive("amplitude", amplitude)
	}
	n := len(buf)
	if n == 0 || amplitude == 0 {
		return nil
	}

	fftSize := nextPowerOf2(n)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return err
	}

	spec := make([]complex128, fftSize)
	half := fftSize / 2
	for k := 1; k <= half; k++ {
		mag := 1 / math.Pow(float64(k), exponent)
		phase := rng.Uniform(0, 2*math.Pi)
		c := complex(mag*math.Cos(phase), mag*math.Sin(phase))
		spec[k] = c
		if k < half {
			spec[fftSize-k] = complex(real(c), -imag(c))
		}
	}

	out := make([]complex128, fftSize)
	if err := plan.Inverse(out, spec); err != nil {
		return err
	}

	shaped := make([]float64, n)
	for i := range shaped {
		shaped[i] = real(out[i])
	}
	if detrend {
		core.Detrend(shaped)
	}

	var sumSq float64
	for _, v := range shaped {
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(n))
	if rms > 0 {
		vecmath.ScaleBlock(shaped, shaped, amplitude/rms)
	}

	vecmath.AddBlockInPlace(buf, shaped)
	return nil
}

// Powerline adds mains interference: a sinusoid at Freq Hz plus its second
// harmonic at half amplitude.
type Powerline struct {
	Freq      float64 // 50 or 60, configurable
	Amplitude float64
	Enabled   bool
}

// On reports whether the layer is enabled.
func (l *Powerline) On() bool { return l.Enabled }

func (l *Powerline) apply(buf []float64, fs float64, _ *random.Stream) error {
	freq := l.Freq
	if freq == 0 {
		freq = 50
	}
	if freq < 0 || freq >= fs/2 {
		return &core.InvalidParameterError{
			Field:  "frequency",
			Value:  freq,
			Reason: "powerline frequency must lie below the Nyquist frequency",
		}
	}

	w1 := 2 * math.Pi * freq / fs
	w2 := 2 * w1
	for i := range buf {
		t := float64(i)
		buf[i] += l.Amplitude*math.Sin(w1*t) + l.Amplitude/2*math.Sin(w2*t)
	}
	return nil
}

// BaselineWander adds slow drift: three low-frequency sinusoids at the drift
// frequency and its subharmonics with random phases.
type BaselineWander struct {
	Amplitude float64
	DriftFreq float64 // Hz, below 0.5
	Enabled   bool
}

// On reports whether the layer is enabled.
func (l *BaselineWander) On() bool { return l.Enabled }

func (l *BaselineWander) apply(buf []float64, fs float64, rng *random.Stream) error {
	drift := l.DriftFreq
	if drift == 0 {
		drift = 0.5
	}
	if drift < 0 || drift > 0.5 {
		return core.ValidateRange("drift_frequency", drift, 0, 0.5)
	}

	for _, f := range []float64{drift, drift / 2, drift / 3} {
		w := 2 * math.Pi * f / fs
		phase := rng.Uniform(0, 2*math.Pi)
		for i := range buf {
			buf[i] += l.Amplitude / 3 * math.Sin(w*float64(i)+phase)
		}
	}
	return nil
}

// HighFrequency adds a bank of random sinusoids between MinFreq and MaxFreq.
type HighFrequency struct {
	Amplitude  float64
	MinFreq    float64 // default 100 Hz
	MaxFreq    float64 // default 500 Hz
	Components int     // default 10
	Enabled    bool
}

// On reports whether the layer is enabled.
func (l *HighFrequency) On() bool { return l.Enabled }

func (l *HighFrequency) apply(buf []float64, fs float64, rng *random.Stream) error {
	lo, hi := l.MinFreq, l.MaxFreq
	if lo == 0 && hi == 0 {
		lo, hi = 100, 500
	}
	if lo <= 0 || hi <= lo {
		return &core.InvalidParameterError{
			Field:  "min_freq",
			Value:  lo,
			Reason: "frequency band must satisfy 0 < min < max",
		}
	}
	if hi > fs/2 {
		hi = fs / 2
	}

	count := l.Components
	if count <= 0 {
		count = 10
	}

	for c := 0; c < count; c++ {
		f := rng.Uniform(lo, hi)
		phase := rng.Uniform(0, 2*math.Pi)
		w := 2 * math.Pi * f / fs
		amp := l.Amplitude / float64(count)
		for i := range buf {
			buf[i] += amp * math.Sin(w*float64(i)+phase)
		}
	}
	return nil
}

func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
