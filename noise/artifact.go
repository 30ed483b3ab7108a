package noise

import (
	"math"

	"github.com/mjibson/go-dsp/window"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/random"
)

// artifactWindow converts a start/duration pair in seconds into a sample range,
// rejecting windows that fall outside the signal.
func artifactWindow(buf []float64, fs, start, duration float64) (int, int, error) {
	limit := float64(len(buf)) / fs
	if start < 0 || duration <= 0 || start+duration > limit {
		return 0, 0, &core.OutOfRangeError{Start: start, Duration: duration, Limit: limit}
	}
	i0 := int(math.Round(start * fs))
	i1 := i0 + int(math.Round(duration*fs))
	if i1 > len(buf) {
		i1 = len(buf)
	}
	return i0, i1, nil
}

// Motion models electrode motion: a baseline step at the window start that
// recovers exponentially over the window.
type Motion struct {
	Start     float64 // seconds
	Duration  float64 // seconds
	Intensity float64
	Enabled   bool
}

// On reports whether the artifact is enabled.
func (a *Motion) On() bool { return a.Enabled }

func (a *Motion) apply(buf []float64, fs float64, rng *random.Stream) error {
	i0, i1, err := artifactWindow(buf, fs, a.Start, a.Duration)
	if err != nil {
		return err
	}
	step := a.Intensity * rng.Uniform(0.5, 1.5)
	if rng.Float64() < 0.5 {
		step = -step
	}
	tau := a.Duration / 3
	for i := i0; i < i1; i++ {
		t := float64(i-i0) / fs
		buf[i] += step * math.Exp(-t/tau)
	}
	return nil
}

// ElectrodePop models a sudden contact loss: a sharp spike followed by a
// fast decaying oscillation.
type ElectrodePop struct {
	Start     float64
	Duration  float64
	Intensity float64
	Enabled   bool
}

// On reports whether the artifact is enabled.
func (a *ElectrodePop) On() bool { return a.Enabled }

func (a *ElectrodePop) apply(buf []float64, fs float64, rng *random.Stream) error {
	i0, i1, err := artifactWindow(buf, fs, a.Start, a.Duration)
	if err != nil {
		return err
	}
	sign := 1.0
	if rng.Float64() < 0.5 {
		sign = -1.0
	}
	tau := a.Duration / 10
	freq := rng.Uniform(30, 80)
	w := 2 * math.Pi * freq
	for i := i0; i < i1; i++ {
		t := float64(i-i0) / fs
		buf[i] += sign * a.Intensity * math.Exp(-t/tau) * math.Cos(w*t)
	}
	return nil
}

// PoorContact attenuates the signal over the window and mixes in contact
// noise; intensity 1 silences the window entirely. The attenuation ramps in
// and out with a Hann envelope so window edges stay continuous.
type PoorContact struct {
	Start     float64
	Duration  float64
	Intensity float64 // 0..1 attenuation depth
	Enabled   bool
}

// On reports whether the artifact is enabled.
func (a *PoorContact) On() bool { return a.Enabled }

func (a *PoorContact) apply(buf []float64, fs float64, rng *random.Stream) error {
	if a.Intensity < 0 || a.Intensity > 1 {
		return core.ValidateRange("intensity", a.Intensity, 0, 1)
	}
	i0, i1, err := artifactWindow(buf, fs, a.Start, a.Duration)
	if err != nil {
		return err
	}
	env := window.Hann(i1 - i0)
	noiseStd := 0.02 * a.Intensity
	for i := i0; i < i1; i++ {
		depth := a.Intensity * env[i-i0]
		buf[i] = buf[i]*(1-depth) + rng.Normal(0, noiseStd)
	}
	return nil
}

// DCOffset shifts the baseline by a constant over the window.
type DCOffset struct {
	Start    float64
	Duration float64
	Offset   float64
	Enabled  bool
}

// On reports whether the artifact is enabled.
func (a *DCOffset) On() bool { return a.Enabled }

func (a *DCOffset) apply(buf []float64, fs float64, _ *random.Stream) error {
	i0, i1, err := artifactWindow(buf, fs, a.Start, a.Duration)
	if err != nil {
		return err
	}
	for i := i0; i < i1; i++ {
		buf[i] += a.Offset
	}
	return nil
}

// EMGCrosstalk mixes a down-scaled burst of muscle activity into the window:
// band-limited random sinusoids under a Hann envelope.
type EMGCrosstalk struct {
	Start     float64
	Duration  float64
	Intensity float64
	Enabled   bool
}

// On reports whether the artifact is enabled.
func (a *EMGCrosstalk) On() bool { return a.Enabled }

func (a *EMGCrosstalk) apply(buf []float64, fs float64, rng *random.Stream) error {
	i0, i1, err := artifactWindow(buf, fs, a.Start, a.Duration)
	if err != nil {
		return err
	}
	const components = 8
	env := window.Hann(i1 - i0)
	hi := math.Min(500, fs/2)
	for c := 0; c < components; c++ {
		f := rng.Uniform(20, hi)
		phase := rng.Uniform(0, 2*math.Pi)
		w := 2 * math.Pi * f / fs
		amp := a.Intensity / components * rng.Uniform(0.5, 1.5)
		for i := i0; i < i1; i++ {
			buf[i] += amp * env[i-i0] * math.Sin(w*float64(i-i0)+phase)
		}
	}
	return nil
}

// ECGInterference mixes a down-scaled cardiac waveform into the window: a
// train of narrow QRS-like spikes at the given heart rate.
type ECGInterference struct {
	Start     float64
	Duration  float64
	Intensity float64
	HeartRate float64 // bpm, default 70
	Enabled   bool
}

// On reports whether the artifact is enabled.
func (a *ECGInterference) On() bool { return a.Enabled }

func (a *ECGInterference) apply(buf []float64, fs float64, rng *random.Stream) error {
	i0, i1, err := artifactWindow(buf, fs, a.Start, a.Duration)
	if err != nil {
		return err
	}
	hr := a.HeartRate
	if hr == 0 {
		hr = 70
	}
	if hr < 30 || hr > 200 {
		return core.ValidateRange("heart_rate", hr, 30, 200)
	}
	beat := 60 / hr
	width := 0.04 // seconds, QRS-like
	for t := rng.Uniform(0, beat); ; t += beat {
		i := i0 + int(math.Round(t*fs))
		if i >= i1 {
			break
		}
		for j := i0; j < i1; j++ {
			dt := (float64(j) - float64(i)) / fs
			if math.Abs(dt) > 3*width {
				continue
			}
			buf[j] += a.Intensity * math.Exp(-dt*dt/(2*width*width/9))
		}
	}
	return nil
}
