package wave

import (
	"math"
	"testing"
)

func TestLinspace_Endpoints(t *testing.T) {
	got := Linspace(-1, 1, 5)
	want := []float64{-1, -0.5, 0, 0.5, 1}
	if len(got) != len(want) {
		t.Fatalf("length: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLinspace_SingleSample(t *testing.T) {
	got := Linspace(3, 7, 1)
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("got %v, want [3]", got)
	}
}

func TestCentered_Symmetric(t *testing.T) {
	grid := Centered(0.004, 1000)
	if len(grid) != 4 {
		t.Fatalf("length: got %d, want 4", len(grid))
	}
	if grid[0] != -0.002 || grid[len(grid)-1] != 0.002 {
		t.Fatalf("endpoints: got [%v, %v], want [-0.002, 0.002]", grid[0], grid[len(grid)-1])
	}
}

func TestGaussian_PeakAtCenter(t *testing.T) {
	grid := Linspace(-1, 1, 201)
	pulse := Gaussian(grid, 2, 50, 0.5)
	peakIdx := 0
	for i, v := range pulse {
		if v > pulse[peakIdx] {
			peakIdx = i
		}
	}
	if math.Abs(grid[peakIdx]-0.5) > 0.02 {
		t.Fatalf("peak at t=%v, want 0.5", grid[peakIdx])
	}
	if math.Abs(pulse[peakIdx]-2) > 1e-6 {
		t.Fatalf("peak amplitude: got %v, want 2", pulse[peakIdx])
	}
}

func TestAddAt_ClipsOutside(t *testing.T) {
	dst := make([]float64, 4)
	AddAt(dst, []float64{1, 2, 3}, -1)
	if dst[0] != 2 || dst[1] != 3 || dst[2] != 0 {
		t.Fatalf("negative start: got %v", dst)
	}

	dst = make([]float64, 4)
	AddAt(dst, []float64{1, 2, 3}, 2)
	if dst[2] != 1 || dst[3] != 2 {
		t.Fatalf("tail clip: got %v", dst)
	}
}

func TestRaisedCosine_Endpoints(t *testing.T) {
	ramp := RaisedCosine(11)
	if ramp[0] != 0 {
		t.Fatalf("ramp start: got %v, want 0", ramp[0])
	}
	if math.Abs(ramp[10]-1) > 1e-12 {
		t.Fatalf("ramp end: got %v, want 1", ramp[10])
	}
	if math.Abs(ramp[5]-0.5) > 1e-12 {
		t.Fatalf("ramp midpoint: got %v, want 0.5", ramp[5])
	}
	for i := 1; i < len(ramp); i++ {
		if ramp[i] < ramp[i-1] {
			t.Fatalf("ramp not monotone at %d", i)
		}
	}
}
