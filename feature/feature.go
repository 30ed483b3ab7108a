// Package feature computes per-segment feature vectors across the time,
// frequency and nonlinear domains. Every feature is pure with respect to
// the requested set: computing one feature never changes the value of
// another, so callers can select arbitrary subsets.
package feature

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/spectrum"
)

// Band is one frequency band for band power features.
type Band struct {
	Low  float64
	High float64
}

// Options configures the extractor. Zero values select the defaults noted
// per field.
type Options struct {
	// DeadZone is the amplitude band around zero ignored by the zero
	// crossing and slope sign change counters.
	DeadZone float64

	// Bands registers one band_power_<name> feature per entry.
	Bands map[string]Band

	// EmbeddingDim is the entropy embedding dimension m (default 2).
	EmbeddingDim int

	// Tolerance is the entropy radius r as a factor of the segment's
	// standard deviation (default 0.2).
	Tolerance float64

	// KMax bounds the Higuchi fractal dimension scales (default 10).
	KMax int
}

func (o Options) withDefaults() Options {
	if o.EmbeddingDim == 0 {
		o.EmbeddingDim = 2
	}
	if o.Tolerance == 0 {
		o.Tolerance = 0.2
	}
	if o.KMax == 0 {
		o.KMax = 10
	}
	return o
}

// Vector maps feature names to scalar values, tagged with the segment it
// was computed from. The name order is the request order.
type Vector struct {
	segment core.Segment
	names   []string
	values  map[string]float64
}

// Segment returns the originating segment.
func (v *Vector) Segment() core.Segment { return v.segment }

// Names returns the feature names in request order.
func (v *Vector) Names() []string { return append([]string(nil), v.names...) }

// Value returns the named feature and whether it was computed.
func (v *Vector) Value(name string) (float64, bool) {
	x, ok := v.values[name]
	return x, ok
}

// Values returns the feature values in request order.
func (v *Vector) Values() []float64 {
	out := make([]float64, len(v.names))
	for i, name := range v.names {
		out[i] = v.values[name]
	}
	return out
}

// Matrix is an ordered set of vectors sharing one feature-name set, ready
// for row-major tabular export.
type Matrix struct {
	names []string
	rows  []*Vector
}

// Names returns the column names.
func (m *Matrix) Names() []string { return append([]string(nil), m.names...) }

// NumRows returns the row count.
func (m *Matrix) NumRows() int { return len(m.rows) }

// NumColumns returns the feature count.
func (m *Matrix) NumColumns() int { return len(m.names) }

// Row returns the i-th vector.
func (m *Matrix) Row(i int) *Vector { return m.rows[i] }

// Table returns the matrix as row-major numeric data with stable column
// ordering.
func (m *Matrix) Table() [][]float64 {
	out := make([][]float64, len(m.rows))
	for i, row := range m.rows {
		out[i] = row.Values()
	}
	return out
}

type computeFn func(c *segmentContext) (float64, error)

// Extractor computes named features over segments. It is stateless and
// safe for concurrent use.
type Extractor struct {
	opts Options
	fns  map[string]computeFn
}

// NewExtractor builds an extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	e := &Extractor{opts: opts.withDefaults(), fns: make(map[string]computeFn)}
	registerTime(e)
	registerFrequency(e)
	registerNonlinear(e)
	return e
}

func (e *Extractor) register(name string, fn computeFn) {
	e.fns[name] = fn
}

// Names returns every available feature name, sorted.
func (e *Extractor) Names() []string {
	out := make([]string, 0, len(e.fns))
	for name := range e.fns {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Extract computes the requested features over one segment.
func (e *Extractor) Extract(seg core.Segment, names []string) (*Vector, error) {
	if len(names) == 0 {
		return nil, &core.InvalidParameterError{Field: "features", Reason: "no feature names requested"}
	}
	c := &segmentContext{
		data: seg.Data(),
		fs:   seg.SampleRate(),
		opts: e.opts,
	}
	v := &Vector{
		segment: seg,
		names:   append([]string(nil), names...),
		values:  make(map[string]float64, len(names)),
	}
	for _, name := range names {
		fn, ok := e.fns[name]
		if !ok {
			return nil, &core.InvalidParameterError{
				Field:  "features",
				Reason: fmt.Sprintf("unknown feature %q", name),
			}
		}
		x, err := fn(c)
		if err != nil {
			return nil, err
		}
		v.values[name] = x
	}
	return v, nil
}

// ExtractAll computes the requested features over every segment and
// assembles the rows into a Matrix.
func (e *Extractor) ExtractAll(segs []core.Segment, names []string) (*Matrix, error) {
	m := &Matrix{names: append([]string(nil), names...)}
	for _, seg := range segs {
		v, err := e.Extract(seg, names)
		if err != nil {
			return nil, err
		}
		m.rows = append(m.rows, v)
	}
	return m, nil
}

// segmentContext carries one segment through a feature pass. The PSD and
// basic moments are memoized: they are deterministic in the segment alone,
// so sharing them cannot couple one feature's value to another.
type segmentContext struct {
	data []float64
	fs   float64
	opts Options

	psdOnce bool
	psdVal  spectrum.PSD
	psdErr  error

	momentsOnce bool
	mean, std   float64
}

func (c *segmentContext) psd() (spectrum.PSD, error) {
	if !c.psdOnce {
		c.psdVal, c.psdErr = spectrum.Welch(c.data, c.fs)
		c.psdOnce = true
	}
	return c.psdVal, c.psdErr
}
