// Package pipeline composes filtering, normalization and segmentation into
// one configurable preprocessing chain. A Config is a value: applying the
// same Config to the same Signal always yields the same result, and configs
// round-trip through JSON and YAML.
package pipeline

import (
	"github.com/cwbudde/algo-biosig/core"
	"github.com/cwbudde/algo-biosig/filter"
	"github.com/cwbudde/algo-biosig/normalize"
	"github.com/cwbudde/algo-biosig/segment"
)

// Config describes one preprocessing chain. Filters run in list order;
// normalization and segmentation are optional and run after the filters.
type Config struct {
	Filters       []filter.Spec
	Normalization *normalize.Spec
	Segmentation  segment.Spec
}

// Result carries the processed signal and, when segmentation is
// configured, its windows.
type Result struct {
	Signal   *core.Signal
	Segments []core.Segment
}

// Apply runs the chain over the signal. Disabled filters are skipped but
// keep their position, so toggling a stage never reorders the chain.
func (c *Config) Apply(sig *core.Signal) (*Result, error) {
	out := sig
	for _, f := range c.Filters {
		if !f.On() {
			continue
		}
		next, err := f.Apply(out)
		if err != nil {
			return nil, err
		}
		out = next
	}

	if c.Normalization != nil {
		next, err := c.Normalization.Apply(out)
		if err != nil {
			return nil, err
		}
		out = next
	}

	res := &Result{Signal: out}
	if c.Segmentation != nil {
		segs, err := c.Segmentation.Apply(out)
		if err != nil {
			return nil, err
		}
		res.Segments = segs
	}
	return res, nil
}
