// Package filter transforms Signals through single filter specifications:
// Butterworth bandpass/highpass/lowpass cascades, narrowband notch
// rejection, and wavelet denoising. All IIR filters are applied zero-phase
// (forward-backward), so sequential application composes without phase
// distortion and sample count and sampling rate are always preserved.
package filter

import (
	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/filter/biquad"
	"github.com/cwbudde/algo-biosig/filter/design"
	"github.com/cwbudde/algo-biosig/filter/wavelet"
)

// Spec is a closed set of filter specifications. Implementations are the
// *Spec structs in this package; each carries an Enabled flag so a disabled
// stage round-trips through configuration without being applied.
type Spec interface {
	// Apply returns a freshly allocated filtered signal of identical shape.
	Apply(sig *core.Signal) (*core.Signal, error)
	// On reports whether the stage is enabled.
	On() bool

	filterSpec()
}

// Bandpass passes frequencies between Low and High Hz using Butterworth
// highpass and lowpass cascades of the stated order.
type Bandpass struct {
	Low     float64
	High    float64
	Order   int
	Enabled bool
}

// Highpass attenuates frequencies below Cutoff Hz.
type Highpass struct {
	Cutoff  float64
	Order   int
	Enabled bool
}

// Lowpass attenuates frequencies above Cutoff Hz.
type Lowpass struct {
	Cutoff  float64
	Order   int
	Enabled bool
}

// Notch rejects a narrow band centered at Freq Hz with bandwidth Freq/Q.
type Notch struct {
	Freq    float64
	Q       float64
	Enabled bool
}

// WaveletDenoise shrinks detail coefficients of a multi-level wavelet
// decomposition. Family selects the wavelet (db1, db2, db4).
type WaveletDenoise struct {
	Family  string
	Level   int
	Mode    wavelet.ThresholdMode
	Enabled bool
}

func (*Bandpass) filterSpec()       {}
func (*Highpass) filterSpec()       {}
func (*Lowpass) filterSpec()        {}
func (*Notch) filterSpec()          {}
func (*WaveletDenoise) filterSpec() {}

// On reports whether the stage is enabled.
func (f *Bandpass) On() bool { return f.Enabled }

// On reports whether the stage is enabled.
func (f *Highpass) On() bool { return f.Enabled }

// On reports whether the stage is enabled.
func (f *Lowpass) On() bool { return f.Enabled }

// On reports whether the stage is enabled.
func (f *Notch) On() bool { return f.Enabled }

// On reports whether the stage is enabled.
func (f *WaveletDenoise) On() bool { return f.Enabled }

func validateCutoff(field string, freq, sampleRate float64) error {
	if freq <= 0 || freq >= sampleRate/2 {
		return &core.InvalidParameterError{
			Field:  field,
			Value:  freq,
			Reason: "cutoff must lie strictly between 0 and the Nyquist frequency",
		}
	}
	return nil
}

func validateOrder(order int) error {
	if order < 1 || order > 16 {
		return &core.InvalidParameterError{
			Field:  "order",
			Value:  float64(order),
			Reason: "filter order must be in [1, 16]",
		}
	}
	return nil
}

func applyCascade(sig *core.Signal, coeffs []biquad.Coefficients) (*core.Signal, error) {
	return sig.Map(func(buf []float64) error {
		biquad.FiltFilt(biquad.NewChain(coeffs), buf)
		return nil
	})
}

// Apply filters the signal through the bandpass cascade.
func (f *Bandpass) Apply(sig *core.Signal) (*core.Signal, error) {
	fs := sig.SampleRate()
	if err := validateCutoff("low_cutoff", f.Low, fs); err != nil {
		return nil, err
	}
	if err := validateCutoff("high_cutoff", f.High, fs); err != nil {
		return nil, err
	}
	if f.Low >= f.High {
		return nil, &core.InvalidParameterError{
			Field:  "low_cutoff",
			Value:  f.Low,
			Reason: "low cutoff must be below high cutoff",
		}
	}
	if err := validateOrder(f.Order); err != nil {
		return nil, err
	}
	return applyCascade(sig, design.ButterworthBP(f.Low, f.High, f.Order, fs))
}

// Apply filters the signal through the highpass cascade.
func (f *Highpass) Apply(sig *core.Signal) (*core.Signal, error) {
	fs := sig.SampleRate()
	if err := validateCutoff("cutoff", f.Cutoff, fs); err != nil {
		return nil, err
	}
	if err := validateOrder(f.Order); err != nil {
		return nil, err
	}
	return applyCascade(sig, design.ButterworthHP(f.Cutoff, f.Order, fs))
}

// Apply filters the signal through the lowpass cascade.
func (f *Lowpass) Apply(sig *core.Signal) (*core.Signal, error) {
	fs := sig.SampleRate()
	if err := validateCutoff("cutoff", f.Cutoff, fs); err != nil {
		return nil, err
	}
	if err := validateOrder(f.Order); err != nil {
		return nil, err
	}
	return applyCascade(sig, design.ButterworthLP(f.Cutoff, f.Order, fs))
}

// Apply rejects the notch band.
func (f *Notch) Apply(sig *core.Signal) (*core.Signal, error) {
	fs := sig.SampleRate()
	if err := validateCutoff("freq", f.Freq, fs); err != nil {
		return nil, err
	}
	if f.Q <= 0 {
		return nil, &core.InvalidParameterError{
			Field:  "q",
			Value:  f.Q,
			Reason: "quality factor must be > 0",
		}
	}
	coeffs := []biquad.Coefficients{design.Notch(f.Freq, f.Q, fs)}
	return applyCascade(sig, coeffs)
}

// Apply denoises each channel. Channels are padded by edge replication to a
// multiple of 2^level before the transform and trimmed afterwards, so the
// output shape matches the input.
func (f *WaveletDenoise) Apply(sig *core.Signal) (*core.Signal, error) {
	family := f.Family
	if family == "" {
		family = "db4"
	}
	n := sig.Len()
	maxLevel := wavelet.MaxLevel(n, family)
	if f.Level < 1 || f.Level > maxLevel {
		return nil, &core.InvalidParameterError{
			Field:  "level",
			Value:  float64(f.Level),
			Reason: "decomposition level not supported by signal length",
		}
	}

	block := 1 << uint(f.Level)
	padded := n
	if rem := n % block; rem != 0 {
		padded = n + block - rem
	}

	return sig.Map(func(buf []float64) error {
		work := make([]float64, padded)
		copy(work, buf)
		for i := n; i < padded; i++ {
			work[i] = buf[n-1]
		}

		out, err := wavelet.Denoise(work, family, f.Level, f.Mode)
		if err != nil {
			return err
		}
		copy(buf, out[:n])
		return nil
	})
}
