package ecg

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/internal/testutil"
	"github.com/cwbudde/algo-biosig/random"
)

// countRPeaks counts local maxima above threshold with a refractory gap so
// one QRS complex registers as exactly one beat.
func countRPeaks(buf []float64, threshold float64, minGap int) int {
	count := 0
	last := -minGap
	for i := 1; i < len(buf)-1; i++ {
		if buf[i] <= threshold || buf[i] < buf[i-1] || buf[i] < buf[i+1] {
			continue
		}
		if i-last >= minGap {
			count++
			last = i
		}
	}
	return count
}

func TestGenerate_BeatCountMatchesHeartRate(t *testing.T) {
	sig, err := Generate(Params{
		SampleRate: 500,
		Duration:   10,
		HeartRate:  60,
	}, random.NewStream(42))
	if err != nil {
		t.Fatal(err)
	}
	if sig.Len() != 5000 {
		t.Fatalf("length: got %d, want 5000", sig.Len())
	}
	beats := countRPeaks(sig.Channel(0), 0.5, 150)
	if beats < 9 || beats > 11 {
		t.Fatalf("beats in 10 s at 60 bpm: got %d, want 10 +/- 1", beats)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	p := Params{SampleRate: 500, Duration: 5, HeartRate: 72, Condition: &NormalSinus{HRVStd: 0.05}}
	a, err := Generate(p, random.NewStream(7))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(p, random.NewStream(7))
	if err != nil {
		t.Fatal(err)
	}
	testutil.RequireSliceNearlyEqual(t, a.Channel(0), b.Channel(0), 0)
}

func TestGenerate_HeartRateValidation(t *testing.T) {
	for _, hr := range []float64{0, 20, 250} {
		_, err := Generate(Params{SampleRate: 500, Duration: 2, HeartRate: hr}, random.NewStream(1))
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("heart rate %v: got %v, want ValidationError", hr, err)
		}
		if verr.Field != "heart_rate" {
			t.Fatalf("field: got %q, want %q", verr.Field, "heart_rate")
		}
	}
}

func TestGenerate_UnknownLead(t *testing.T) {
	_, err := Generate(Params{SampleRate: 500, Duration: 2, HeartRate: 60, Lead: "X9"}, random.NewStream(1))
	var perr *core.InvalidParameterError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want InvalidParameterError", err)
	}
}

func TestGenerate_AVRInverted(t *testing.T) {
	ii, err := Generate(Params{SampleRate: 500, Duration: 4, HeartRate: 60, Lead: LeadII}, random.NewStream(3))
	if err != nil {
		t.Fatal(err)
	}
	avr, err := Generate(Params{SampleRate: 500, Duration: 4, HeartRate: 60, Lead: LeadAVR}, random.NewStream(3))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range ii.Channel(0) {
		testutil.RequireNear(t, avr.Channel(0)[i], -0.5*v, 1e-12)
		_ = i
	}
}

func TestPVC_TallerEctopicBeats(t *testing.T) {
	normal, err := Generate(Params{SampleRate: 500, Duration: 10, HeartRate: 60}, random.NewStream(5))
	if err != nil {
		t.Fatal(err)
	}
	pvc, err := Generate(Params{
		SampleRate: 500,
		Duration:   10,
		HeartRate:  60,
		Condition:  &PVC{Frequency: 1},
	}, random.NewStream(5))
	if err != nil {
		t.Fatal(err)
	}
	if peakOf(pvc.Channel(0)) <= peakOf(normal.Channel(0))*1.5 {
		t.Fatalf("ectopic beats should tower over normal ones: pvc %v, normal %v",
			peakOf(pvc.Channel(0)), peakOf(normal.Channel(0)))
	}
}

func TestPVC_FrequencyValidation(t *testing.T) {
	_, err := Generate(Params{
		SampleRate: 500,
		Duration:   2,
		HeartRate:  60,
		Condition:  &PVC{Frequency: 1.5},
	}, random.NewStream(1))
	if err == nil {
		t.Fatal("expected error for ectopic frequency above 1")
	}
}

func TestBradycardiaTachycardia_OverrideRate(t *testing.T) {
	brady, err := Generate(Params{
		SampleRate: 500, Duration: 20, HeartRate: 100, Condition: &Bradycardia{},
	}, random.NewStream(6))
	if err != nil {
		t.Fatal(err)
	}
	tachy, err := Generate(Params{
		SampleRate: 500, Duration: 20, HeartRate: 60, Condition: &Tachycardia{},
	}, random.NewStream(6))
	if err != nil {
		t.Fatal(err)
	}
	// 45 bpm over 20 s gives ~15 beats; 120 bpm gives ~40.
	bradyBeats := countRPeaks(brady.Channel(0), 0.5, 150)
	tachyBeats := countRPeaks(tachy.Channel(0), 0.5, 100)
	if bradyBeats < 13 || bradyBeats > 17 {
		t.Fatalf("bradycardia beats: got %d, want ~15", bradyBeats)
	}
	if tachyBeats < 36 || tachyBeats > 44 {
		t.Fatalf("tachycardia beats: got %d, want ~40", tachyBeats)
	}
}

func TestAtrialFibrillation_IrregularIntervals(t *testing.T) {
	sig, err := Generate(Params{
		SampleRate: 500,
		Duration:   30,
		HeartRate:  80,
		Condition:  &AtrialFibrillation{Spread: 0.3},
	}, random.NewStream(8))
	if err != nil {
		t.Fatal(err)
	}
	intervals := rPeakIntervals(sig.Channel(0), 0.5, 100)
	if len(intervals) < 10 {
		t.Fatalf("too few detected beats: %d intervals", len(intervals))
	}
	if testutil.Std(intervals) < 10 {
		t.Fatalf("RR intervals too regular for fibrillation: std %v samples", testutil.Std(intervals))
	}
}

func TestAtrialFibrillation_SpreadValidation(t *testing.T) {
	for _, spread := range []float64{1.0, 1.5, -0.1} {
		_, err := Generate(Params{
			SampleRate: 500,
			Duration:   10,
			HeartRate:  80,
			Condition:  &AtrialFibrillation{Spread: spread},
		}, random.NewStream(8))
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("spread %v: got %v, want ValidationError", spread, err)
		}
		if verr.Field != "rr_spread" {
			t.Fatalf("spread %v: got field %q, want rr_spread", spread, verr.Field)
		}
	}
}

func TestSTElevation_RaisesSTLevel(t *testing.T) {
	normal, err := Generate(Params{SampleRate: 500, Duration: 10, HeartRate: 60}, random.NewStream(9))
	if err != nil {
		t.Fatal(err)
	}
	st, err := Generate(Params{
		SampleRate: 500,
		Duration:   10,
		HeartRate:  60,
		Condition:  &STElevation{Severity: 1},
	}, random.NewStream(9))
	if err != nil {
		t.Fatal(err)
	}
	if testutil.Mean(st.Channel(0)) <= testutil.Mean(normal.Channel(0)) {
		t.Fatal("ST elevation should raise the mean level")
	}
}

func TestVentricularTachycardia_FastWideBeats(t *testing.T) {
	sig, err := Generate(Params{
		SampleRate: 500,
		Duration:   10,
		HeartRate:  60,
		Condition:  &VentricularTachycardia{},
	}, random.NewStream(10))
	if err != nil {
		t.Fatal(err)
	}
	// The rhythm runs at 150 bpm minimum regardless of the requested rate.
	beats := countRPeaks(sig.Channel(0), 0.4, 80)
	if beats < 20 {
		t.Fatalf("ventricular tachycardia beats in 10 s: got %d, want >= 20", beats)
	}
}

func peakOf(buf []float64) float64 {
	peak := 0.0
	for _, v := range buf {
		if v > peak {
			peak = v
		}
	}
	return peak
}

func rPeakIntervals(buf []float64, threshold float64, minGap int) []float64 {
	var peaks []int
	last := -minGap
	for i := 1; i < len(buf)-1; i++ {
		if buf[i] <= threshold || buf[i] < buf[i-1] || buf[i] < buf[i+1] {
			continue
		}
		if i-last >= minGap {
			peaks = append(peaks, i)
			last = i
		}
	}
	intervals := make([]float64, 0, len(peaks))
	for i := 1; i < len(peaks); i++ {
		intervals = append(intervals, float64(peaks[i]-peaks[i-1]))
	}
	return intervals
}
