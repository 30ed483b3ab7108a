// Package random provides the seeded deterministic random source shared by
// all generators and noise models. One Stream per logical generation task
// guarantees reproducible, order-independent results under concurrency;
// a Stream itself is not safe for concurrent use.
package random

import "math/rand"

// Stream is a deterministic random-number source.
type Stream struct {
	rng *rand.Rand
}

// NewStream creates a Stream seeded with seed. Equal seeds yield identical
// sample sequences.
func NewStream(seed int64) *Stream {
	return &Stream{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform value in [0, 1).
func (s *Stream) Float64() float64 { return s.rng.Float64() }

// Uniform returns a uniform value in [lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// Normal returns a normally distributed value with the given mean and
// standard deviation.
func (s *Stream) Normal(mean, std float64) float64 {
	return mean + std*s.rng.NormFloat64()
}

// Intn returns a uniform integer in [0, n). n must be > 0.
func (s *Stream) Intn(n int) int { return s.rng.Intn(n) }

// Fork returns an independent Stream derived from this one. Forked streams
// let sub-generators consume randomness without perturbing the parent's
// sequence alignment.
func (s *Stream) Fork() *Stream {
	return NewStream(s.rng.Int63())
}
