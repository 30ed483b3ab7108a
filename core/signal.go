package core

import (
	"fmt"
	"math"
)

// Signal is an immutable multi-channel sequence of samples at a fixed
// sampling rate. All channels hold the same number of samples.
//
// Channel data returned by accessors is a read-only view into the signal's
// storage; processing stages must allocate fresh output rather than writing
// through it.
type Signal struct {
	channels   [][]float64
	sampleRate float64
}

// New creates a Signal from per-channel sample slices. The slices are
// adopted, not copied; the caller must not retain mutable references.
func New(sampleRate float64, channels [][]float64) (*Signal, error) {
	if sampleRate <= 0 {
		return nil, &ValidationError{Field: "sampling_rate", Value: sampleRate, Min: math.SmallestNonzeroFloat64, Max: math.Inf(1)}
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("signal must have at least one channel")
	}
	n := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != n {
			return nil, fmt.Errorf("channel %d has %d samples, channel 0 has %d", i+1, len(ch), n)
		}
	}
	return &Signal{channels: channels, sampleRate: sampleRate}, nil
}

// FromSamples creates a single-channel Signal. The slice is adopted, not copied.
func FromSamples(sampleRate float64, samples []float64) (*Signal, error) {
	return New(sampleRate, [][]float64{samples})
}

// SampleRate returns the sampling rate in Hz.
func (s *Signal) SampleRate() float64 { return s.sampleRate }

// NumChannels returns the channel count.
func (s *Signal) NumChannels() int { return len(s.channels) }

// Len returns the per-channel sample count.
func (s *Signal) Len() int {
	if len(s.channels) == 0 {
		return 0
	}
	return len(s.channels[0])
}

// Duration returns the signal duration in seconds.
func (s *Signal) Duration() float64 {
	return float64(s.Len()) / s.sampleRate
}

// Channel returns a read-only view of channel i's samples.
func (s *Signal) Channel(i int) []float64 { return s.channels[i] }

// Map returns a new Signal whose channels are produced by applying fn to a
// private copy of each channel. fn may modify buf in place and must return a
// slice of the same length. This is the shared scaffolding for stages that
// preserve shape (filters, normalization, noise).
func (s *Signal) Map(fn func(buf []float64) error) (*Signal, error) {
	out := make([][]float64, len(s.channels))
	for i, ch := range s.channels {
		buf := make([]float64, len(ch))
		copy(buf, ch)
		if err := fn(buf); err != nil {
			return nil, err
		}
		out[i] = buf
	}
	return &Signal{channels: out, sampleRate: s.sampleRate}, nil
}

// SampleCount returns round(duration * sampleRate), the canonical sample
// count for a generated signal.
func SampleCount(duration, sampleRate float64) int {
	return int(math.Round(duration * sampleRate))
}

// Segment is a read-only, time-bounded view into one channel of a Signal.
// Segments from overlapping windows share underlying samples.
type Segment struct {
	data       []float64
	start      int
	channel    int
	sampleRate float64
}

// NewSegment creates a segment view. data is adopted as read-only.
func NewSegment(data []float64, start, channel int, sampleRate float64) Segment {
	return Segment{data: data, start: start, channel: channel, sampleRate: sampleRate}
}

// Data returns the read-only sample view.
func (g Segment) Data() []float64 { return g.data }

// Start returns the segment's offset in samples from the signal start.
func (g Segment) Start() int { return g.start }

// Channel returns the index of the originating channel.
func (g Segment) Channel() int { return g.channel }

// Len returns the sample count.
func (g Segment) Len() int { return len(g.data) }

// SampleRate returns the sampling rate in Hz.
func (g Segment) SampleRate() float64 { return g.sampleRate }
