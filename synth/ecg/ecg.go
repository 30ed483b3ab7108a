// Package ecg synthesizes electrocardiogram signals. One cardiac cycle is
// modeled as a sum of Gaussian wavelets for the P, QRS and T deflections;
// cycles repeat at the heart rate with optional per-beat jitter, and a
// condition variant rewrites the cycle template or the timing rule.
package ecg

import (
	"math"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/random"
	"github.com/cwbudde/algo-biosig/synth/wave"
)

// Lead identifies one of the standard electrode-pair views.
type Lead string

const (
	LeadI   Lead = "I"
	LeadII  Lead = "II"
	LeadIII Lead = "III"
	LeadAVR Lead = "aVR"
	LeadAVL Lead = "aVL"
	LeadAVF Lead = "aVF"
	LeadV1  Lead = "V1"
	LeadV2  Lead = "V2"
	LeadV3  Lead = "V3"
	LeadV4  Lead = "V4"
	LeadV5  Lead = "V5"
	LeadV6  Lead = "V6"
)

// leadGain scales (and for aVR inverts) the lead II reference waveform.
var leadGain = map[Lead]float64{
	LeadI:   0.6,
	LeadII:  1.0,
	LeadIII: 0.4,
	LeadAVR: -0.5,
	LeadAVL: 0.2,
	LeadAVF: 0.7,
	LeadV1:  -0.3,
	LeadV2:  0.3,
	LeadV3:  0.6,
	LeadV4:  0.9,
	LeadV5:  1.0,
	LeadV6:  0.8,
}

// Morphology configures the cycle template. Zero fields take the defaults
// of a normal adult lead II complex.
type Morphology struct {
	PAmplitude float64 // default 0.2
	PDuration  float64 // default 0.1 s

	QAmplitude  float64 // default -0.5
	RAmplitude  float64 // default 1.0
	SAmplitude  float64 // default -0.2
	QRSDuration float64 // default 0.1 s

	TAmplitude float64 // default 0.3
	TDuration  float64 // default 0.14 s

	PRInterval float64 // P onset before QRS, default 0.2 s
	QTInterval float64 // QRS onset to T end, default 0.4 s
}

func (m Morphology) withDefaults() Morphology {
	def := func(v, d float64) float64 {
		if v == 0 {
			return d
		}
		return v
	}
	return Morphology{
		PAmplitude:  def(m.PAmplitude, 0.2),
		PDuration:   def(m.PDuration, 0.1),
		QAmplitude:  def(m.QAmplitude, -0.5),
		RAmplitude:  def(m.RAmplitude, 1.0),
		SAmplitude:  def(m.SAmplitude, -0.2),
		QRSDuration: def(m.QRSDuration, 0.1),
		TAmplitude:  def(m.TAmplitude, 0.3),
		TDuration:   def(m.TDuration, 0.14),
		PRInterval:  def(m.PRInterval, 0.2),
		QTInterval:  def(m.QTInterval, 0.4),
	}
}

// Params describes one ECG generation request.
type Params struct {
	SampleRate float64 // Hz
	Duration   float64 // seconds
	HeartRate  float64 // bpm, [30,200]
	Lead       Lead    // default LeadII
	Morphology Morphology
	Condition  Condition // default NormalSinus
}

// Condition is the closed set of cardiac rhythm and morphology variants.
type Condition interface {
	render(buf []float64, c *cycle, rng *random.Stream) error
	ecgCondition()
}

// Generate synthesizes one single-channel ECG signal. All parameters are
// validated before any sample is produced.
func Generate(p Params, rng *random.Stream) (*core.Signal, error) {
	if p.Duration <= 0 {
		return nil, core.ValidatePositive("duration", p.Duration)
	}
	if p.SampleRate <= 0 {
		return nil, core.ValidatePositive("sampling_rate", p.SampleRate)
	}
	if err := core.ValidateRange("heart_rate", p.HeartRate, 30, 200); err != nil {
		return nil, err
	}
	lead := p.Lead
	if lead == "" {
		lead = LeadII
	}
	gain, ok := leadGain[lead]
	if !ok {
		return nil, &core.InvalidParameterError{Field: "lead", Reason: "unknown lead " + string(lead)}
	}
	cond := p.Condition
	if cond == nil {
		cond = &NormalSinus{}
	}

	c := newCycle(p.Morphology.withDefaults(), p.HeartRate, p.SampleRate)
	n := core.SampleCount(p.Duration, p.SampleRate)
	buf := make([]float64, n)
	if err := cond.render(buf, c, rng); err != nil {
		return nil, err
	}
	for i := range buf {
		buf[i] *= gain
	}
	return core.FromSamples(p.SampleRate, buf)
}

// cycle holds the precomputed waveform templates and timing for one beat.
type cycle struct {
	morph     Morphology
	fs        float64
	heartRate float64
	interval  float64 // seconds per beat
	p, qrs, t []float64
}

func newCycle(m Morphology, heartRate, fs float64) *cycle {
	return &cycle{
		morph:     m,
		fs:        fs,
		heartRate: heartRate,
		interval:  60 / heartRate,
		p:         wave.Gaussian(wave.Centered(m.PDuration, fs), m.PAmplitude, 100, 0),
		qrs:       qrsComplex(m.QAmplitude, m.RAmplitude, m.SAmplitude, m.QRSDuration, fs),
		t:         wave.Gaussian(wave.Centered(m.TDuration, fs), m.TAmplitude, 100, 0),
	}
}

// qrsComplex sums three Gaussian deflections at -d/4, 0 and +d/4.
func qrsComplex(q, r, s, duration, fs float64) []float64 {
	grid := wave.Centered(duration, fs)
	out := make([]float64, len(grid))
	for i, t := range grid {
		out[i] = q*gauss(t+duration/4) + r*gauss(t) + s*gauss(t-duration/4)
	}
	return out
}

func gauss(t float64) float64 { return math.Exp(-50 * t * t) }

// addBeat places a full P-QRS-T complex with the QRS onset at beatStart.
func (c *cycle) addBeat(buf []float64, beatStart int, withP bool) {
	if withP {
		pStart := beatStart - int(c.morph.PRInterval*c.fs)
		wave.AddAt(buf, c.p, pStart)
	}
	wave.AddAt(buf, c.qrs, beatStart)
	tStart := beatStart + int(c.morph.QTInterval/2*c.fs)
	wave.AddAt(buf, c.t, tStart)
}

// beatStarts returns the QRS onsets for a regular rhythm with optional
// Gaussian jitter on the beat interval.
func (c *cycle) beatStarts(n int, jitterStd float64, rng *random.Stream) []int {
	var starts []int
	t := 0.0
	for {
		i := int(math.Round(t * c.fs))
		if i >= n {
			break
		}
		starts = append(starts, i)
		dt := c.interval
		if jitterStd > 0 {
			dt += rng.Normal(0, jitterStd)
			if dt < 0.2 {
				dt = 0.2
			}
		}
		t += dt
	}
	return starts
}

// NormalSinus is a regular rhythm; HRVStd adds Gaussian heart rate
// variability to the beat interval (seconds).
type NormalSinus struct {
	HRVStd float64
}

func (*NormalSinus) ecgCondition() {}

func (v *NormalSinus) render(buf []float64, c *cycle, rng *random.Stream) error {
	if v.HRVStd < 0 {
		return core.ValidatePositive("hrv_std", v.HRVStd)
	}
	for _, start := range c.beatStarts(len(buf), v.HRVStd, rng) {
		c.addBeat(buf, start, true)
	}
	return nil
}

// PVC replaces beats with wide aberrant ventricular complexes at the given
// probability per beat.
type PVC struct {
	Frequency float64 // 0..1, probability a beat is ectopic
}

func (*PVC) ecgCondition() {}

func (v *PVC) render(buf []float64, c *cycle, rng *random.Stream) error {
	if err := core.ValidateRange("pvc_frequency", v.Frequency, 0, 1); err != nil {
		return err
	}
	m := c.morph
	ectopic := qrsComplex(m.QAmplitude, 2.5*m.RAmplitude, m.SAmplitude, 2*m.QRSDuration, c.fs)
	for _, start := range c.beatStarts(len(buf), 0, rng) {
		if rng.Float64() < v.Frequency {
			// Wide complex with no preceding P wave.
			wave.AddAt(buf, ectopic, start)
		} else {
			c.addBeat(buf, start, true)
		}
	}
	return nil
}

// AtrialFibrillation randomizes RR intervals and drops the P wave. The RR
// spread scales the base interval by a uniform factor in [1-Spread, 1+Spread].
type AtrialFibrillation struct {
	Spread float64 // default 0.3
}

func (*AtrialFibrillation) ecgCondition() {}

func (v *AtrialFibrillation) render(buf []float64, c *cycle, rng *random.Stream) error {
	spread := v.Spread
	if spread == 0 {
		spread = 0.3
	}
	if spread < 0 || spread >= 1 {
		// A spread of exactly 1 would allow zero-length RR intervals, so the
		// upper bound is exclusive.
		return &core.ValidationError{Field: "rr_spread", Value: spread, Min: 0, Max: 1}
	}
	t := 0.0
	for {
		i := int(math.Round(t * c.fs))
		if i >= len(buf) {
			break
		}
		c.addBeat(buf, i, false)
		t += c.interval * rng.Uniform(1-spread, 1+spread)
	}
	return nil
}

// VentricularTachycardia is a fast, wide-complex rhythm without P waves.
// The rate is raised to at least 150 bpm.
type VentricularTachycardia struct{}

func (*VentricularTachycardia) ecgCondition() {}

func (v *VentricularTachycardia) render(buf []float64, c *cycle, rng *random.Stream) error {
	rate := math.Max(150, 1.8*c.heartRate)
	m := c.morph
	m.QRSDuration = 0.16
	fast := newCycle(m, rate, c.fs)
	for _, start := range fast.beatStarts(len(buf), 0.01, rng) {
		wave.AddAt(buf, fast.qrs, start)
		tStart := start + int(m.QTInterval/2*c.fs)
		wave.AddAt(buf, fast.t, tStart)
	}
	return nil
}

// Bradycardia renders a normal rhythm slowed to 45 bpm.
type Bradycardia struct{}

func (*Bradycardia) ecgCondition() {}

func (v *Bradycardia) render(buf []float64, c *cycle, rng *random.Stream) error {
	slow := newCycle(c.morph, 45, c.fs)
	return (&NormalSinus{}).render(buf, slow, rng)
}

// Tachycardia renders a normal rhythm accelerated to 120 bpm.
type Tachycardia struct{}

func (*Tachycardia) ecgCondition() {}

func (v *Tachycardia) render(buf []float64, c *cycle, rng *random.Stream) error {
	fast := newCycle(c.morph, 120, c.fs)
	return (&NormalSinus{}).render(buf, fast, rng)
}

// STElevation renders normal beats with the ST segment raised by
// 0.3·Severity over the 100 ms following the QRS.
type STElevation struct {
	Severity float64 // 0..1
}

func (*STElevation) ecgCondition() {}

func (v *STElevation) render(buf []float64, c *cycle, rng *random.Stream) error {
	return renderSTShift(buf, c, rng, v.Severity, 0.3)
}

// STDepression renders normal beats with the ST segment lowered by
// 0.2·Severity.
type STDepression struct {
	Severity float64 // 0..1
}

func (*STDepression) ecgCondition() {}

func (v *STDepression) render(buf []float64, c *cycle, rng *random.Stream) error {
	return renderSTShift(buf, c, rng, v.Severity, -0.2)
}

func renderSTShift(buf []float64, c *cycle, rng *random.Stream, severity, scale float64) error {
	if err := core.ValidateRange("severity", severity, 0, 1); err != nil {
		return err
	}
	shift := severity * scale
	stLen := int(0.1 * c.fs)
	for _, start := range c.beatStarts(len(buf), 0, rng) {
		c.addBeat(buf, start, true)
		stStart := start + int(0.1*c.fs)
		for i := stStart; i < stStart+stLen && i < len(buf); i++ {
			if i >= 0 {
				buf[i] += shift
			}
		}
	}
	return nil
}

// TWaveInversion renders normal beats with the T wave inverted and scaled
// by Severity.
type TWaveInversion struct {
	Severity float64 // 0..1
}

func (*TWaveInversion) ecgCondition() {}

func (v *TWaveInversion) render(buf []float64, c *cycle, rng *random.Stream) error {
	if err := core.ValidateRange("severity", v.Severity, 0, 1); err != nil {
		return err
	}
	inverted := make([]float64, len(c.t))
	for i, s := range c.t {
		inverted[i] = -v.Severity * s
	}
	for _, start := range c.beatStarts(len(buf), 0, rng) {
		pStart := start - int(c.morph.PRInterval*c.fs)
		wave.AddAt(buf, c.p, pStart)
		wave.AddAt(buf, c.qrs, start)
		tStart := start + int(c.morph.QTInterval/2*c.fs)
		wave.AddAt(buf, inverted, tStart)
	}
	return nil
}

// QWave renders normal beats preceded by a pathological Q wave: a deep
// 40 ms negative deflection of 0.4·Severity.
type QWave struct {
	Severity float64 // 0..1
}

func (*QWave) ecgCondition() {}

func (v *QWave) render(buf []float64, c *cycle, rng *random.Stream) error {
	if err := core.ValidateRange("severity", v.Severity, 0, 1); err != nil {
		return err
	}
	qLen := int(0.04 * c.fs)
	q := make([]float64, qLen)
	for i := range q {
		q[i] = -0.4 * v.Severity
	}
	for _, start := range c.beatStarts(len(buf), 0, rng) {
		c.addBeat(buf, start, true)
		wave.AddAt(buf, q, start-qLen)
	}
	return nil
}

// LBBB widens the QRS to 120-200 ms with a broad notched R wave. Severity
// controls the widening.
type LBBB struct {
	Severity float64 // 0..1
}

func (*LBBB) ecgCondition() {}

func (v *LBBB) render(buf []float64, c *cycle, rng *random.Stream) error {
	return renderBlock(buf, c, rng, v.Severity, 0.8, 1.0, 0.8)
}

// RBBB widens the QRS with an RSR' pattern. Severity controls the widening.
type RBBB struct {
	Severity float64 // 0..1
}

func (*RBBB) ecgCondition() {}

func (v *RBBB) render(buf []float64, c *cycle, rng *random.Stream) error {
	return renderBlock(buf, c, rng, v.Severity, -0.5, 1.0, 0.7)
}

// renderBlock renders a bundle branch block rhythm: normal P and T waves
// around a widened three-peak QRS whose side deflections sit at ±d/4.
func renderBlock(buf []float64, c *cycle, rng *random.Stream, severity, first, mid, last float64) error {
	if err := core.ValidateRange("severity", severity, 0, 1); err != nil {
		return err
	}
	duration := 0.12 + severity*0.08
	grid := wave.Centered(duration, c.fs)
	qrs := make([]float64, len(grid))
	for i, t := range grid {
		qrs[i] = first*gauss(t+duration/4) + mid*gauss(t) + last*gauss(t-duration/4)
	}
	for _, start := range c.beatStarts(len(buf), 0, rng) {
		pStart := start - int(c.morph.PRInterval*c.fs)
		wave.AddAt(buf, c.p, pStart)
		wave.AddAt(buf, qrs, start)
		tStart := start + len(qrs) + int(0.05*c.fs)
		wave.AddAt(buf, c.t, tStart)
	}
	return nil
}
