package testutil

import (
	"math"
	"testing"
)

// RequireNear fails t if got differs from want by more than eps.
func RequireNear(t *testing.T, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Fatalf("got %v, want %v (diff %v > eps %v)", got, want, math.Abs(got-want), eps)
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireAllZero fails t if any element deviates from zero by more than eps.
func RequireAllZero(t *testing.T, data []float64, eps float64) {
	t.Helper()
	for i, v := range data {
		if math.Abs(v) > eps {
			t.Fatalf("index %d: got %v, want 0 (eps %v)", i, v, eps)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices of
// equal length.
func MaxAbsDiff(t *testing.T, a, b []float64) float64 {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

// Mean returns the arithmetic mean of data.
func Mean(data []float64) float64 {
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Std returns the population standard deviation of data.
func Std(data []float64) float64 {
	mean := Mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(data)))
}
