// Package normalize rescales Signals channel-by-channel. All methods are
// stateless pure transforms: statistics are computed per channel from the
// input alone.
package normalize

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-biosig/core"
)

// Method identifies a normalization method.
type Method int

const (
	ZScore Method = iota
	MinMax
	Robust
	Quantile
)

// String returns the configuration name of the method.
func (m Method) String() string {
	switch m {
	case ZScore:
		return "zscore"
	case MinMax:
		return "minmax"
	case Robust:
		return "robust"
	case Quantile:
		return "quantile_normalize"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// MethodFromString parses a configuration name.
func MethodFromString(name string) (Method, error) {
	switch name {
	case "zscore":
		return ZScore, nil
	case "minmax":
		return MinMax, nil
	case "robust":
		return Robust, nil
	case "quantile_normalize":
		return Quantile, nil
	default:
		return 0, fmt.Errorf("normalize: unknown method %q", name)
	}
}

// Spec configures a normalization stage.
type Spec struct {
	Method Method

	// MinMax target range.
	Min float64
	Max float64

	// Quantile bin count. Zero selects a default of 10.
	NQuantiles int
}

// Apply returns a normalized copy of the signal.
func (s Spec) Apply(sig *core.Signal) (*core.Signal, error) {
	switch s.Method {
	case ZScore:
		return sig.Map(zscore)
	case MinMax:
		lo, hi := s.Min, s.Max
		if lo == 0 && hi == 0 {
			lo, hi = 0, 1
		}
		if lo >= hi {
			return nil, &core.InvalidParameterError{
				Field:  "range_min",
				Value:  lo,
				Reason: "min-max target range must have min < max",
			}
		}
		return sig.Map(func(buf []float64) error { return minmax(buf, lo, hi) })
	case Robust:
		return sig.Map(robust)
	case Quantile:
		n := s.NQuantiles
		if n <= 0 {
			n = 10
		}
		return sig.Map(func(buf []float64) error { return quantile(buf, n) })
	default:
		return nil, fmt.Errorf("normalize: unknown method %d", int(s.Method))
	}
}

func zscore(buf []float64) error {
	mean := stat.Mean(buf, nil)
	std := stat.PopStdDev(buf, nil)
	if std == 0 {
		return &core.DegenerateInputError{
			Operation: "zscore",
			Reason:    "standard deviation is zero",
		}
	}
	for i, v := range buf {
		buf[i] = (v - mean) / std
	}
	return nil
}

func minmax(buf []float64, lo, hi float64) error {
	minVal, maxVal := buf[0], buf[0]
	for _, v := range buf {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		return &core.DegenerateInputError{
			Operation: "minmax",
			Reason:    "signal range is zero",
		}
	}
	scale := (hi - lo) / (maxVal - minVal)
	for i, v := range buf {
		buf[i] = lo + (v-minVal)*scale
	}
	return nil
}

func robust(buf []float64) error {
	sorted := append([]float64(nil), buf...)
	sort.Float64s(sorted)

	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	if iqr == 0 {
		return &core.DegenerateInputError{
			Operation: "robust",
			Reason:    "interquartile range is zero",
		}
	}
	for i, v := range buf {
		buf[i] = (v - median) / iqr
	}
	return nil
}

// quantile maps the empirical distribution onto n uniform bins in [0, 1]:
// each sample is replaced by the bin center of its rank. Ties share a rank.
func quantile(buf []float64, n int) error {
	type indexed struct {
		value float64
		pos   int
	}
	order := make([]indexed, len(buf))
	for i, v := range buf {
		order[i] = indexed{value: v, pos: i}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].value < order[j].value })

	m := float64(len(buf))
	for rank, e := range order {
		q := (float64(rank) + 0.5) / m
		bin := int(q * float64(n))
		if bin >= n {
			bin = n - 1
		}
		buf[e.pos] = (float64(bin) + 0.5) / float64(n)
	}
	return nil
}
