package noise

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/internal/testutil"
	"github.com/cwbudde/algo-biosig/random"
)

func TestApply_Deterministic(t *testing.T) {
	layers := []Layer{
		&Gaussian{Std: 0.1, Enabled: true},
		&Pink{Amplitude: 0.05, Enabled: true},
		&Powerline{Freq: 50, Amplitude: 0.02, Enabled: true},
	}

	sig := testutil.SineSignal(t, 10, 1000, 1.0, 2048)
	a, err := Apply(sig, layers, random.NewStream(42))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Apply(sig, layers, random.NewStream(42))
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, a.Channel(0), b.Channel(0), 0)
}

func TestApply_DifferentSeedsDiffer(t *testing.T) {
	layers := []Layer{&Gaussian{Std: 0.1, Enabled: true}}
	sig := testutil.SineSignal(t, 10, 1000, 1.0, 1024)

	a, err := Apply(sig, layers, random.NewStream(1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Apply(sig, layers, random.NewStream(2))
	if err != nil {
		t.Fatal(err)
	}
	if d := testutil.MaxAbsDiff(t, a.Channel(0), b.Channel(0)); d == 0 {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestApply_SkipsDisabledLayers(t *testing.T) {
	sig := testutil.SineSignal(t, 10, 1000, 1.0, 1024)
	out, err := Apply(sig, []Layer{&Gaussian{Std: 0.5, Enabled: false}}, random.NewStream(3))
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, out.Channel(0), sig.Channel(0), 0)
}

func TestGaussian_StdMatches(t *testing.T) {
	sig, err := core.FromSamples(1000, make([]float64, 50000))
	if err != nil {
		t.Fatal(err)
	}
	out, err := Apply(sig, []Layer{&Gaussian{Std: 0.1, Enabled: true}}, random.NewStream(42))
	if err != nil {
		t.Fatal(err)
	}
	buf := out.Channel(0)
	testutil.RequireNear(t, testutil.Mean(buf), 0, 0.005)
	testutil.RequireNear(t, testutil.Std(buf), 0.1, 0.005)
}

func TestShapedNoise_AmplitudeAndSpectrum(t *testing.T) {
	const n = 8192
	sig, err := core.FromSamples(1000, make([]float64, n))
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name  string
		layer Layer
	}{
		{"pink", &Pink{Amplitude: 0.2, Enabled: true}},
		{"brown", &Brown{Amplitude: 0.2, Enabled: true}},
	} {
		out, err := Apply(sig, []Layer{tc.layer}, random.NewStream(7))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		buf := out.Channel(0)
		testutil.RequireFinite(t, buf)
		// RMS is normalized to the requested amplitude.
		testutil.RequireNear(t, testutil.Std(buf), 0.2, 0.05)
		// Colored noise concentrates power at low frequencies.
		lo := bandEnergy(buf, 1000, 1, 50)
		hi := bandEnergy(buf, 1000, 200, 400)
		if lo <= hi {
			t.Fatalf("%s: low band %v not above high band %v", tc.name, lo, hi)
		}
	}
}

func TestPowerline_NyquistCheck(t *testing.T) {
	sig, err := core.FromSamples(80, make([]float64, 256))
	if err != nil {
		t.Fatal(err)
	}
	layer := &Powerline{Freq: 50, Amplitude: 0.1, Enabled: true}
	var perr *core.InvalidParameterError
	if _, err := Apply(sig, []Layer{layer}, random.NewStream(1)); !errors.As(err, &perr) {
		t.Fatal("expected InvalidParameterError for tone above Nyquist")
	}
}

func TestBaselineWander_DriftFreqRange(t *testing.T) {
	sig, err := core.FromSamples(1000, make([]float64, 1000))
	if err != nil {
		t.Fatal(err)
	}
	layer := &BaselineWander{Amplitude: 0.5, DriftFreq: 0.9, Enabled: true}
	var verr *core.ValidationError
	if _, err := Apply(sig, []Layer{layer}, random.NewStream(1)); !errors.As(err, &verr) {
		t.Fatal("expected ValidationError for drift frequency above 0.5 Hz")
	}
}

func TestArtifact_OutOfRange(t *testing.T) {
	sig := testutil.NoiseSignal(t, 4, 1000, 1.0, 1000) // 1 second long
	cases := []struct {
		name  string
		layer Layer
	}{
		{"motion past end", &Motion{Start: 0.8, Duration: 0.5, Intensity: 1, Enabled: true}},
		{"pop negative start", &ElectrodePop{Start: -0.1, Duration: 0.2, Intensity: 1, Enabled: true}},
		{"dc offset past end", &DCOffset{Start: 1.5, Duration: 0.1, Offset: 0.2, Enabled: true}},
	}
	for _, tc := range cases {
		_, err := Apply(sig, []Layer{tc.layer}, random.NewStream(1))
		var rerr *core.OutOfRangeError
		if !errors.As(err, &rerr) {
			t.Fatalf("%s: got %v, want OutOfRangeError", tc.name, err)
		}
	}
}

func TestArtifact_ConfinedToWindow(t *testing.T) {
	sig, err := core.FromSamples(1000, make([]float64, 2000))
	if err != nil {
		t.Fatal(err)
	}
	layer := &DCOffset{Start: 0.5, Duration: 0.5, Offset: 0.3, Enabled: true}
	out, err := Apply(sig, []Layer{layer}, random.NewStream(1))
	if err != nil {
		t.Fatal(err)
	}
	buf := out.Channel(0)
	testutil.RequireAllZero(t, buf[:500], 0)
	testutil.RequireAllZero(t, buf[1000:], 0)
	for i := 500; i < 1000; i++ {
		if buf[i] != 0.3 {
			t.Fatalf("index %d: got %v, want 0.3", i, buf[i])
		}
	}
}

func TestPoorContact_IntensityValidation(t *testing.T) {
	sig := testutil.NoiseSignal(t, 5, 1000, 1.0, 1000)
	layer := &PoorContact{Start: 0.1, Duration: 0.2, Intensity: 1.5, Enabled: true}
	var verr *core.ValidationError
	if _, err := Apply(sig, []Layer{layer}, random.NewStream(1)); !errors.As(err, &verr) {
		t.Fatal("expected ValidationError for intensity above 1")
	}
}

func TestECGInterference_HeartRateValidation(t *testing.T) {
	sig := testutil.NoiseSignal(t, 6, 1000, 1.0, 2000)
	layer := &ECGInterference{Start: 0, Duration: 1, Intensity: 0.5, HeartRate: 500, Enabled: true}
	var verr *core.ValidationError
	if _, err := Apply(sig, []Layer{layer}, random.NewStream(1)); !errors.As(err, &verr) {
		t.Fatal("expected ValidationError for heart rate outside [30, 200]")
	}
}

func TestApply_PreservesInputAndShape(t *testing.T) {
	sig := testutil.SineSignal(t, 10, 1000, 1.0, 1500)
	before := append([]float64(nil), sig.Channel(0)...)

	layers := []Layer{
		&Gaussian{Std: 0.1, Enabled: true},
		&HighFrequency{Amplitude: 0.05, Enabled: true},
		&Motion{Start: 0.2, Duration: 0.3, Intensity: 0.5, Enabled: true},
	}
	out, err := Apply(sig, layers, random.NewStream(11))
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != sig.Len() || out.SampleRate() != sig.SampleRate() {
		t.Fatalf("shape changed: %d samples at %v Hz", out.Len(), out.SampleRate())
	}
	testutil.RequireSliceNearlyEqual(t, sig.Channel(0), before, 0)
	if d := testutil.MaxAbsDiff(t, out.Channel(0), before); d == 0 {
		t.Fatal("enabled layers left the signal untouched")
	}
}

// bandEnergy sums |X(f)|^2 over a frequency band using a direct DFT on a
// subset of bins. Accurate enough for relative comparisons.
func bandEnergy(buf []float64, fs, lo, hi float64) float64 {
	n := len(buf)
	binLo := int(lo * float64(n) / fs)
	binHi := int(hi * float64(n) / fs)
	total := 0.0
	for k := binLo; k <= binHi; k += 4 {
		re, im := 0.0, 0.0
		for i, v := range buf {
			angle := -2 * math.Pi * float64(k) * float64(i) / float64(n)
			re += v * math.Cos(angle)
			im += v * math.Sin(angle)
		}
		total += re*re + im*im
	}
	return total
}
