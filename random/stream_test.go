package random

import (
	"math"
	"testing"
)

func TestStream_SameSeedSameSequence(t *testing.T) {
	a := NewStream(42)
	b := NewStream(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("sequences diverge at sample %d", i)
		}
	}
}

func TestStream_DifferentSeedsDiffer(t *testing.T) {
	a := NewStream(1)
	b := NewStream(2)
	same := true
	for i := 0; i < 16; i++ {
		if a.Float64() != b.Float64() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical sequences")
	}
}

func TestStream_UniformBounds(t *testing.T) {
	s := NewStream(7)
	for i := 0; i < 1000; i++ {
		v := s.Uniform(-2, 5)
		if v < -2 || v >= 5 {
			t.Fatalf("sample %d: %v outside [-2, 5)", i, v)
		}
	}
}

func TestStream_NormalMoments(t *testing.T) {
	s := NewStream(11)
	const n = 50000
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		v := s.Normal(1.5, 0.5)
		sum += v
		sumSq += v * v
	}
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)
	if math.Abs(mean-1.5) > 0.02 {
		t.Fatalf("mean: got %v, want 1.5", mean)
	}
	if math.Abs(std-0.5) > 0.02 {
		t.Fatalf("std: got %v, want 0.5", std)
	}
}

func TestStream_ForkIsIndependent(t *testing.T) {
	parent := NewStream(3)
	child := parent.Fork()

	// The same construction sequence must reproduce the same fork.
	parent2 := NewStream(3)
	child2 := parent2.Fork()
	for i := 0; i < 32; i++ {
		if child.Float64() != child2.Float64() {
			t.Fatalf("forked streams diverge at sample %d", i)
		}
	}
}
