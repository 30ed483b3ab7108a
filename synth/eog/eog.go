// Package eog synthesizes electrooculogram signals: saccades following the
// main sequence relationship, smooth pursuit tracking, fixational drift and
// tremor, and stereotyped blink pulses.
package eog

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/random"
	"github.com/cwbudde/algo-biosig/synth/wave"
)

// Params describes one EOG generation request.
type Params struct {
	SampleRate float64 // Hz
	Duration   float64 // seconds
	Movement   Movement
}

// Movement is the closed set of eye movement patterns.
type Movement interface {
	render(buf []float64, fs float64, rng *random.Stream) error
	eogMovement()
}

// Generate synthesizes one single-channel EOG signal in degrees of gaze
// angle. All parameters are validated before any sample is produced.
func Generate(p Params, rng *random.Stream) (*core.Signal, error) {
	if p.Duration <= 0 {
		return nil, core.ValidatePositive("duration", p.Duration)
	}
	if p.SampleRate <= 0 {
		return nil, core.ValidatePositive("sampling_rate", p.SampleRate)
	}
	if p.Movement == nil {
		return nil, &core.InvalidParameterError{Field: "movement", Reason: "no movement pattern given"}
	}

	n := core.SampleCount(p.Duration, p.SampleRate)
	buf := make([]float64, n)
	if err := p.Movement.render(buf, p.SampleRate, rng); err != nil {
		return nil, err
	}
	return core.FromSamples(p.SampleRate, buf)
}

// saccadePulse builds a single saccade position profile of the given
// amplitude in degrees. Duration and peak velocity follow the main
// sequence when zero: duration 20 ms + 2 ms/deg, velocity 200 + 20·|A|
// deg/s. The velocity profile is asymmetric, peaking at a third of the
// duration, and is integrated then rescaled to land exactly on amplitude.
func saccadePulse(amplitude, duration, fs float64) []float64 {
	if duration <= 0 {
		duration = 0.02 + 0.002*math.Abs(amplitude)
	}
	peak := 200 + 20*math.Abs(amplitude)
	n := int(duration * fs)
	if n < 2 {
		n = 2
	}
	t := wave.Linspace(0, duration, n)

	pos := make([]float64, n)
	width := 0.2 * duration
	sum := 0.0
	for i, v := range t {
		d := v - duration/3
		sum += peak * math.Exp(-d*d/(width*width))
		pos[i] = sum / fs
	}
	final := pos[n-1]
	if final != 0 {
		scale := amplitude / final
		for i := range pos {
			pos[i] *= scale
		}
	}
	return pos
}

// Saccades emits a sequence of saccades with the given amplitudes in
// degrees, spaced by Gap seconds of steady gaze (default 50 ms).
type Saccades struct {
	Amplitudes []float64
	Gap        float64
}

func (*Saccades) eogMovement() {}

func (m *Saccades) render(buf []float64, fs float64, _ *random.Stream) error {
	if len(m.Amplitudes) == 0 {
		return &core.InvalidParameterError{Field: "amplitudes", Reason: "needs at least one saccade"}
	}
	gap := m.Gap
	if gap == 0 {
		gap = 0.05
	}
	if gap < 0 {
		return core.ValidatePositive("gap", gap)
	}

	t := 0.0
	for _, amp := range m.Amplitudes {
		pulse := saccadePulse(amp, 0, fs)
		start := int(t * fs)
		wave.AddAt(buf, pulse, start)
		// Gaze holds the new angle after the saccade lands.
		for i := start + len(pulse); i < len(buf); i++ {
			buf[i] += amp
		}
		t += float64(len(pulse))/fs + gap
	}
	return nil
}

// PursuitPattern selects the smooth pursuit trajectory shape.
type PursuitPattern int

const (
	PursuitSinusoidal PursuitPattern = iota
	PursuitLinear
	PursuitCircular
)

// SmoothPursuit emits a continuous tracking waveform at the target
// frequency. The linear pattern is a constant-velocity sawtooth with small
// catch-up saccades at each reversal to model pursuit lag.
type SmoothPursuit struct {
	Pattern   PursuitPattern
	Amplitude float64 // degrees
	Frequency float64 // Hz
}

func (*SmoothPursuit) eogMovement() {}

func (m *SmoothPursuit) render(buf []float64, fs float64, _ *random.Stream) error {
	if m.Frequency <= 0 {
		return core.ValidatePositive("target_frequency", m.Frequency)
	}

	w := 2 * math.Pi * m.Frequency
	switch m.Pattern {
	case PursuitSinusoidal:
		for i := range buf {
			buf[i] += m.Amplitude * math.Sin(w*float64(i)/fs)
		}
	case PursuitCircular:
		for i := range buf {
			buf[i] += m.Amplitude * math.Cos(w*float64(i)/fs)
		}
	case PursuitLinear:
		for i := range buf {
			phase := math.Mod(w*float64(i)/fs, 2*math.Pi)
			buf[i] += m.Amplitude * (phase/math.Pi - 1)
		}
		period := int(fs / m.Frequency)
		catchUp := saccadePulse(0.1*m.Amplitude, 0.02, fs)
		for i := period; i < len(buf); i += period {
			wave.AddAt(buf, catchUp, i-len(catchUp))
		}
	default:
		return &core.InvalidParameterError{
			Field:  "pattern",
			Value:  float64(m.Pattern),
			Reason: "unknown pursuit pattern",
		}
	}
	return nil
}

// Fixation emits near-zero gaze: slow random-walk drift, 80 Hz tremor with
// a weaker second harmonic, and small microsaccades at the given rate.
type Fixation struct {
	MicrosaccadeRate      float64 // per second, default 2
	MicrosaccadeAmplitude float64 // degrees, default 0.2
	DriftAmplitude        float64 // degrees, default 0.5
	TremorAmplitude       float64 // degrees, default 0.1
}

func (*Fixation) eogMovement() {}

func (m *Fixation) render(buf []float64, fs float64, rng *random.Stream) error {
	rate := m.MicrosaccadeRate
	if rate == 0 {
		rate = 2
	}
	msAmp := m.MicrosaccadeAmplitude
	if msAmp == 0 {
		msAmp = 0.2
	}
	drift := m.DriftAmplitude
	if drift == 0 {
		drift = 0.5
	}
	tremor := m.TremorAmplitude
	if tremor == 0 {
		tremor = 0.1
	}
	if rate < 0 || msAmp < 0 || drift < 0 || tremor < 0 {
		return &core.InvalidParameterError{Field: "fixation", Reason: "fixation parameters must be non-negative"}
	}

	duration := float64(len(buf)) / fs

	// Random-walk drift.
	walk := 0.0
	for i := range buf {
		walk += rng.Normal(0, drift/duration) / fs
		buf[i] += walk
	}

	// Physiological tremor around 80 Hz plus a weak second harmonic.
	const tremorFreq = 80.0
	w := 2 * math.Pi * tremorFreq / fs
	for i := range buf {
		t := float64(i)
		buf[i] += tremor*math.Sin(w*t) + 0.5*tremor*math.Sin(2*w*t)
	}

	count := int(duration * rate)
	for k := 0; k < count; k++ {
		amp := rng.Uniform(-msAmp, msAmp)
		pulse := saccadePulse(amp, 0.02, fs)
		start := int(rng.Uniform(0, duration-0.02) * fs)
		wave.AddAt(buf, pulse, start)
	}
	return nil
}

// Blinks emits stereotyped biphasic blink pulses at random, non-overlapping
// times. The profile closes faster than it reopens.
type Blinks struct {
	Count        int
	Duration     float64 // seconds per blink, default 0.2
	AmplitudeMin float64 // default 0.8
	AmplitudeMax float64 // default 1.2
	MinInterval  float64 // seconds between blinks, default 0.5
}

func (*Blinks) eogMovement() {}

func (m *Blinks) render(buf []float64, fs float64, rng *random.Stream) error {
	if m.Count <= 0 {
		return core.ValidatePositive("n_blinks", float64(m.Count))
	}
	dur := m.Duration
	if dur == 0 {
		dur = 0.2
	}
	lo, hi := m.AmplitudeMin, m.AmplitudeMax
	if lo == 0 && hi == 0 {
		lo, hi = 0.8, 1.2
	}
	minGap := m.MinInterval
	if minGap == 0 {
		minGap = 0.5
	}
	total := float64(len(buf)) / fs
	if total-float64(m.Count)*dur < float64(m.Count-1)*minGap {
		return &core.InvalidParameterError{
			Field:  "n_blinks",
			Value:  float64(m.Count),
			Reason: "signal too short for the requested blinks and intervals",
		}
	}

	times := blinkTimes(m.Count, total-dur, minGap, rng)
	for _, start := range times {
		d := dur * rng.Uniform(0.8, 1.2)
		amp := rng.Uniform(lo, hi)
		if rng.Float64() < 0.2 {
			// Partial blink.
			amp *= rng.Uniform(0.3, 0.7)
		}
		wave.AddAt(buf, blinkPulse(amp, d, fs), int(start*fs))
	}
	return nil
}

// blinkTimes draws count start times in [0, limit] keeping every pair at
// least minGap apart.
func blinkTimes(count int, limit, minGap float64, rng *random.Stream) []float64 {
	times := make([]float64, 0, count)
	for len(times) < count {
		t := rng.Uniform(0, limit)
		ok := true
		for _, prev := range times {
			if math.Abs(t-prev) < minGap {
				ok = false
				break
			}
		}
		if ok {
			times = append(times, t)
		}
	}
	sort.Float64s(times)
	return times
}

// blinkPulse builds one asymmetric blink: the closing phase occupies a
// third of the duration, the opening phase the remaining two thirds.
func blinkPulse(amplitude, duration, fs float64) []float64 {
	t := wave.Centered(duration, fs)
	out := make([]float64, len(t))
	closeW := duration / 6
	openW := duration / 3
	for i, v := range t {
		if v < 0 {
			r := v / closeW
			out[i] = amplitude * math.Exp(-100*r*r)
		} else {
			r := v / openW
			out[i] = amplitude * math.Exp(-50*r*r)
		}
	}
	return out
}

// Event schedules one movement on a Combined timeline.
type Event struct {
	Start    float64 // seconds
	Duration float64 // seconds
	Movement Movement
}

// Combined composites movements on an event timeline; each event renders
// into its own window and is added to the running signal. Events whose
// window falls outside the signal fail with an OutOfRangeError.
type Combined struct {
	Events []Event
}

func (*Combined) eogMovement() {}

func (m *Combined) render(buf []float64, fs float64, rng *random.Stream) error {
	if len(m.Events) == 0 {
		return &core.InvalidParameterError{Field: "events", Reason: "needs at least one event"}
	}
	limit := float64(len(buf)) / fs
	for _, ev := range m.Events {
		if ev.Start < 0 || ev.Duration <= 0 || ev.Start+ev.Duration > limit {
			return &core.OutOfRangeError{Start: ev.Start, Duration: ev.Duration, Limit: limit}
		}
		sub := make([]float64, core.SampleCount(ev.Duration, fs))
		if err := ev.Movement.render(sub, fs, rng); err != nil {
			return err
		}
		wave.AddAt(buf, sub, int(ev.Start*fs))
	}
	return nil
}
