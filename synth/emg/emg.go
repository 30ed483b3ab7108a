// Package emg synthesizes surface electromyography signals as stochastic
// trains of motor unit action potentials. Firing rate and amplitude both
// scale with the contraction intensity, so stronger contractions carry more
// high-frequency content as well as a larger rectified mean.
package emg

import (
	"math"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/random"
	"github.com/cwbudde/algo-biosig/synth/wave"
)

// Firing-rate model: rate = baseRate + rateSpan·intensity (Hz), with the
// per-potential amplitude 0.7 + 0.3·intensity varied ±10% per firing.
const (
	baseRate = 50.0
	rateSpan = 450.0
)

// Params describes one EMG generation request.
type Params struct {
	SampleRate float64 // Hz
	Duration   float64 // seconds
	Pattern    Pattern
}

// Pattern is the closed set of contraction patterns. A pattern renders the
// per-sample intensity envelope; the motor unit train is shared.
type Pattern interface {
	envelope(n int, fs float64) ([]float64, error)
	emgPattern()
}

// Generate synthesizes one single-channel EMG signal. It validates all
// parameters before producing any samples.
func Generate(p Params, rng *random.Stream) (*core.Signal, error) {
	if p.Duration <= 0 {
		return nil, core.ValidatePositive("duration", p.Duration)
	}
	if p.SampleRate <= 0 {
		return nil, core.ValidatePositive("sampling_rate", p.SampleRate)
	}
	if p.Pattern == nil {
		return nil, &core.InvalidParameterError{Field: "pattern", Reason: "no contraction pattern given"}
	}

	n := core.SampleCount(p.Duration, p.SampleRate)
	env, err := p.Pattern.envelope(n, p.SampleRate)
	if err != nil {
		return nil, err
	}

	buf := make([]float64, n)
	renderTrain(buf, env, p.SampleRate, rng)
	return core.FromSamples(p.SampleRate, buf)
}

// muap returns the motor unit action potential template: a biphasic pulse
// -t·exp(-2000·t²) spanning ±2 ms.
func muap(fs float64) []float64 {
	t := wave.Centered(0.004, fs)
	out := make([]float64, len(t))
	for i, v := range t {
		out[i] = -v * math.Exp(-2000*v*v)
	}
	return out
}

// renderTrain lays down a probabilistic train of action potentials whose
// instantaneous rate follows the intensity envelope.
func renderTrain(buf, env []float64, fs float64, rng *random.Stream) {
	template := muap(fs)
	for i := range buf {
		intensity := env[i]
		if intensity <= 0 {
			continue
		}
		rate := baseRate + rateSpan*intensity
		if rng.Float64() >= rate/fs {
			continue
		}
		amp := (0.7 + 0.3*intensity) * rng.Uniform(0.9, 1.1)
		for j, v := range template {
			k := i + j
			if k >= len(buf) {
				break
			}
			buf[k] += amp * v
		}
	}
}

// Isometric holds a constant target intensity, optionally decayed by a
// fatigue envelope exp(-rate·t/T).
type Isometric struct {
	Intensity   float64 // 0..1
	FatigueRate float64 // 0 disables fatigue
}

func (p *Isometric) emgPattern() {}

func (p *Isometric) envelope(n int, _ float64) ([]float64, error) {
	if err := core.ValidateRange("intensity", p.Intensity, 0, 1); err != nil {
		return nil, err
	}
	if p.FatigueRate < 0 {
		return nil, core.ValidatePositive("fatigue_rate", p.FatigueRate)
	}
	env := make([]float64, n)
	for i := range env {
		env[i] = p.Intensity
	}
	if p.FatigueRate > 0 {
		for i := range env {
			frac := float64(i) / float64(n)
			env[i] *= math.Exp(-p.FatigueRate * frac)
		}
	}
	return env, nil
}

// RampShape selects how a dynamic contraction approaches its target.
type RampShape int

const (
	RampLinear RampShape = iota
	RampExponential
	RampStep
	RampSine
)

// Dynamic ramps the intensity from rest to MaxIntensity over RampDuration
// seconds and holds it there.
type Dynamic struct {
	Shape        RampShape
	MaxIntensity float64 // 0..1
	RampDuration float64 // seconds; 0 means ramp over the whole signal
}

func (p *Dynamic) emgPattern() {}

func (p *Dynamic) envelope(n int, fs float64) ([]float64, error) {
	if err := core.ValidateRange("max_intensity", p.MaxIntensity, 0, 1); err != nil {
		return nil, err
	}
	rampSamples := n
	if p.RampDuration > 0 {
		rampSamples = core.SampleCount(p.RampDuration, fs)
		if rampSamples > n {
			rampSamples = n
		}
	} else if p.RampDuration < 0 {
		return nil, core.ValidatePositive("ramp_duration", p.RampDuration)
	}

	env := make([]float64, n)
	for i := range env {
		if i >= rampSamples {
			env[i] = p.MaxIntensity
			continue
		}
		frac := float64(i) / float64(rampSamples)
		switch p.Shape {
		case RampLinear:
			env[i] = p.MaxIntensity * frac
		case RampExponential:
			env[i] = p.MaxIntensity * (1 - math.Exp(-5*frac))
		case RampStep:
			// Rest until the ramp point, then full intensity.
			env[i] = 0
		case RampSine:
			env[i] = p.MaxIntensity * math.Sin(math.Pi/2*frac)
		default:
			return nil, &core.InvalidParameterError{
				Field:  "shape",
				Value:  float64(p.Shape),
				Reason: "unknown ramp shape",
			}
		}
	}
	return env, nil
}

// Repetitive produces cyclic bursts: Intensity for the duty fraction of
// each period, RestIntensity for the remainder.
type Repetitive struct {
	Frequency     float64 // cycles per second
	DutyCycle     float64 // 0..1
	Intensity     float64 // 0..1
	RestIntensity float64 // background activity during rest
}

func (p *Repetitive) emgPattern() {}

func (p *Repetitive) envelope(n int, fs float64) ([]float64, error) {
	if p.Frequency <= 0 {
		return nil, core.ValidatePositive("frequency", p.Frequency)
	}
	if err := core.ValidateRange("duty_cycle", p.DutyCycle, 0, 1); err != nil {
		return nil, err
	}
	if err := core.ValidateRange("intensity", p.Intensity, 0, 1); err != nil {
		return nil, err
	}
	if err := core.ValidateRange("rest_intensity", p.RestIntensity, 0, 1); err != nil {
		return nil, err
	}

	period := 1 / p.Frequency
	env := make([]float64, n)
	for i := range env {
		t := float64(i) / fs
		phase := math.Mod(t, period) / period
		if phase < p.DutyCycle {
			env[i] = p.Intensity
		} else {
			env[i] = p.RestIntensity
		}
	}
	return env, nil
}

// Movement is one sub-pattern of a Complex contraction.
type Movement struct {
	Pattern  Pattern
	Duration float64 // seconds
}

// Complex concatenates ordered sub-movements, optionally blending each
// seam with a raised-cosine crossfade of CrossfadeDuration seconds.
type Complex struct {
	Movements         []Movement
	CrossfadeDuration float64
}

func (p *Complex) emgPattern() {}

func (p *Complex) envelope(n int, fs float64) ([]float64, error) {
	if len(p.Movements) == 0 {
		return nil, &core.InvalidParameterError{Field: "movements", Reason: "needs at least one sub-movement"}
	}
	if p.CrossfadeDuration < 0 {
		return nil, core.ValidatePositive("crossfade_duration", p.CrossfadeDuration)
	}

	fade := core.SampleCount(p.CrossfadeDuration, fs)
	env := make([]float64, n)
	pos := 0
	for mi, m := range p.Movements {
		if m.Duration <= 0 {
			return nil, core.ValidatePositive("movement_duration", m.Duration)
		}
		segN := core.SampleCount(m.Duration, fs)
		seg, err := m.Pattern.envelope(segN, fs)
		if err != nil {
			return nil, err
		}

		overlap := 0
		if mi > 0 && fade > 0 {
			overlap = fade
			if overlap > segN {
				overlap = segN
			}
			pos -= overlap
			if pos < 0 {
				pos = 0
			}
		}
		ramp := wave.RaisedCosine(overlap)
		for i, v := range seg {
			j := pos + i
			if j >= n {
				break
			}
			if i < overlap {
				w := ramp[i]
				env[j] = env[j]*(1-w) + v*w
			} else {
				env[j] = v
			}
		}
		pos += segN
	}
	return env, nil
}
