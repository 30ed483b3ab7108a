package normalize

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/internal/testutil"
)

func TestZScore_MeanZeroStdOne(t *testing.T) {
	sig := testutil.NoiseSignal(t, 1, 1000, 3.5, 5000)
	out, err := Spec{Method: ZScore}.Apply(sig)
	if err != nil {
		t.Fatal(err)
	}
	buf := out.Channel(0)
	testutil.RequireNear(t, testutil.Mean(buf), 0, 1e-9)
	testutil.RequireNear(t, testutil.Std(buf), 1, 1e-9)
}

func TestZScore_ConstantInput(t *testing.T) {
	sig, err := core.FromSamples(1000, testutil.DC(4.2, 256))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Spec{Method: ZScore}.Apply(sig)
	var derr *core.DegenerateInputError
	if !errors.As(err, &derr) {
		t.Fatalf("got %v, want DegenerateInputError", err)
	}
	if derr.Operation != "zscore" {
		t.Fatalf("operation: got %q, want %q", derr.Operation, "zscore")
	}
}

func TestMinMax_DefaultRange(t *testing.T) {
	sig := testutil.SineSignal(t, 5, 1000, 2.0, 1000)
	out, err := Spec{Method: MinMax}.Apply(sig)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := bounds(out.Channel(0))
	testutil.RequireNear(t, lo, 0, 1e-12)
	testutil.RequireNear(t, hi, 1, 1e-12)
}

func TestMinMax_CustomRange(t *testing.T) {
	sig := testutil.NoiseSignal(t, 2, 1000, 1.0, 1000)
	out, err := Spec{Method: MinMax, Min: -1, Max: 1}.Apply(sig)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := bounds(out.Channel(0))
	testutil.RequireNear(t, lo, -1, 1e-12)
	testutil.RequireNear(t, hi, 1, 1e-12)
}

func TestMinMax_InvertedRange(t *testing.T) {
	sig := testutil.NoiseSignal(t, 3, 1000, 1.0, 100)
	var perr *core.InvalidParameterError
	if _, err := (Spec{Method: MinMax, Min: 1, Max: -1}).Apply(sig); !errors.As(err, &perr) {
		t.Fatal("expected InvalidParameterError for inverted range")
	}
}

func TestMinMax_ConstantInput(t *testing.T) {
	sig, err := core.FromSamples(1000, testutil.DC(-7, 64))
	if err != nil {
		t.Fatal(err)
	}
	var derr *core.DegenerateInputError
	if _, err := (Spec{Method: MinMax}).Apply(sig); !errors.As(err, &derr) {
		t.Fatal("expected DegenerateInputError for zero-range input")
	}
}

func TestRobust_MedianZero(t *testing.T) {
	sig := testutil.NoiseSignal(t, 4, 1000, 2.0, 5001)
	out, err := Spec{Method: Robust}.Apply(sig)
	if err != nil {
		t.Fatal(err)
	}
	sorted := append([]float64(nil), out.Channel(0)...)
	med := medianOf(sorted)
	testutil.RequireNear(t, med, 0, 1e-9)
}

func TestRobust_OutlierResistance(t *testing.T) {
	base := testutil.Noise(5, 1.0, 1000)
	spiked := append([]float64(nil), base...)
	spiked[500] = 1e6

	sigA, err := core.FromSamples(1000, base)
	if err != nil {
		t.Fatal(err)
	}
	sigB, err := core.FromSamples(1000, spiked)
	if err != nil {
		t.Fatal(err)
	}
	outA, err := Spec{Method: Robust}.Apply(sigA)
	if err != nil {
		t.Fatal(err)
	}
	outB, err := Spec{Method: Robust}.Apply(sigB)
	if err != nil {
		t.Fatal(err)
	}
	// A single outlier barely moves median and IQR, so the bulk of the
	// samples should normalize almost identically.
	diff := 0.0
	for i := 0; i < 400; i++ {
		if d := math.Abs(outA.Channel(0)[i] - outB.Channel(0)[i]); d > diff {
			diff = d
		}
	}
	if diff > 0.05 {
		t.Fatalf("outlier shifted robust scaling too much: max diff %v", diff)
	}
}

func TestQuantile_UniformBins(t *testing.T) {
	sig := testutil.NoiseSignal(t, 6, 1000, 1.0, 1000)
	out, err := Spec{Method: Quantile, NQuantiles: 10}.Apply(sig)
	if err != nil {
		t.Fatal(err)
	}
	counts := map[float64]int{}
	for _, v := range out.Channel(0) {
		if v <= 0 || v >= 1 {
			t.Fatalf("quantile value out of (0,1): %v", v)
		}
		counts[v]++
	}
	if len(counts) != 10 {
		t.Fatalf("distinct bin centers: got %d, want 10", len(counts))
	}
	for center, c := range counts {
		if c != 100 {
			t.Fatalf("bin %v holds %d samples, want 100", center, c)
		}
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	sig := testutil.NoiseSignal(t, 7, 1000, 1.0, 500)
	before := append([]float64(nil), sig.Channel(0)...)
	if _, err := (Spec{Method: ZScore}).Apply(sig); err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, sig.Channel(0), before, 0)
}

func TestMethod_StringRoundTrip(t *testing.T) {
	for _, m := range []Method{ZScore, MinMax, Robust, Quantile} {
		got, err := MethodFromString(m.String())
		if err != nil {
			t.Fatal(err)
		}
		if got != m {
			t.Fatalf("round trip: got %v, want %v", got, m)
		}
	}
	if _, err := MethodFromString("log"); err == nil {
		t.Fatal("expected error for unknown method name")
	}
}

func bounds(buf []float64) (lo, hi float64) {
	lo, hi = buf[0], buf[0]
	for _, v := range buf {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

func medianOf(buf []float64) float64 {
	s := append([]float64(nil), buf...)
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	return s[len(s)/2]
}
