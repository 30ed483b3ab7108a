package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-biosig/filter"
	"github.com/cwbudde/algo-biosig/filter/wavelet"
	"github.com/cwbudde/algo-biosig/normalize"
	"github.com/cwbudde/algo-biosig/segment"
)

// ErrUnknownStage is returned when a serialized stage references an
// unrecognized type name.
var ErrUnknownStage = errors.New("unknown stage type")

// document is the serialized form of a Config. Unknown keys are ignored on
// load for forward compatibility; absent sections leave that stage out of
// the pipeline.
type document struct {
	Filters       []stageDoc `json:"filters,omitempty" yaml:"filters,omitempty"`
	Normalization *stageDoc  `json:"normalization,omitempty" yaml:"normalization,omitempty"`
	Segmentation  *stageDoc  `json:"segmentation,omitempty" yaml:"segmentation,omitempty"`
}

type stageDoc struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	Method     string `json:"method,omitempty" yaml:"method,omitempty"`
	Enabled    *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Parameters params `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// JSON serializes the config.
func (c *Config) JSON() ([]byte, error) {
	doc, err := c.document()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// YAML serializes the config.
func (c *Config) YAML() ([]byte, error) {
	doc, err := c.document()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// FromJSON loads a config serialized by JSON.
func FromJSON(data []byte) (*Config, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pipeline: decode config: %w", err)
	}
	return doc.config()
}

// FromYAML loads a config serialized by YAML.
func FromYAML(data []byte) (*Config, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("pipeline: decode config: %w", err)
	}
	return doc.config()
}

func (c *Config) document() (*document, error) {
	doc := &document{}
	for _, f := range c.Filters {
		sd, err := filterDoc(f)
		if err != nil {
			return nil, err
		}
		doc.Filters = append(doc.Filters, sd)
	}
	if c.Normalization != nil {
		doc.Normalization = normalizationDoc(c.Normalization)
	}
	if c.Segmentation != nil {
		sd, err := segmentationDoc(c.Segmentation)
		if err != nil {
			return nil, err
		}
		doc.Segmentation = sd
	}
	return doc, nil
}

func (doc *document) config() (*Config, error) {
	cfg := &Config{}
	for _, sd := range doc.Filters {
		f, err := filterFromDoc(sd)
		if err != nil {
			return nil, err
		}
		cfg.Filters = append(cfg.Filters, f)
	}
	if doc.Normalization != nil {
		spec, err := normalizationFromDoc(*doc.Normalization)
		if err != nil {
			return nil, err
		}
		cfg.Normalization = spec
	}
	if doc.Segmentation != nil {
		spec, err := segmentationFromDoc(*doc.Segmentation)
		if err != nil {
			return nil, err
		}
		cfg.Segmentation = spec
	}
	return cfg, nil
}

func filterDoc(f filter.Spec) (stageDoc, error) {
	enabled := f.On()
	switch s := f.(type) {
	case *filter.Bandpass:
		return stageDoc{Type: "bandpass", Enabled: &enabled, Parameters: params{
			"low_cutoff":  s.Low,
			"high_cutoff": s.High,
			"order":       float64(s.Order),
		}}, nil
	case *filter.Highpass:
		return stageDoc{Type: "highpass", Enabled: &enabled, Parameters: params{
			"cutoff": s.Cutoff,
			"order":  float64(s.Order),
		}}, nil
	case *filter.Lowpass:
		return stageDoc{Type: "lowpass", Enabled: &enabled, Parameters: params{
			"cutoff": s.Cutoff,
			"order":  float64(s.Order),
		}}, nil
	case *filter.Notch:
		return stageDoc{Type: "notch", Enabled: &enabled, Parameters: params{
			"frequency": s.Freq,
			"q_factor":  s.Q,
		}}, nil
	case *filter.WaveletDenoise:
		return stageDoc{Type: "wavelet_denoise", Enabled: &enabled, Parameters: params{
			"family": s.Family,
			"level":  float64(s.Level),
			"mode":   thresholdModeName(s.Mode),
		}}, nil
	default:
		return stageDoc{}, fmt.Errorf("pipeline: encode filter: %w: %T", ErrUnknownStage, f)
	}
}

func filterFromDoc(sd stageDoc) (filter.Spec, error) {
	enabled := sd.Enabled == nil || *sd.Enabled
	p := sd.Parameters
	switch sd.Type {
	case "bandpass":
		return &filter.Bandpass{
			Low:     p.num("low_cutoff", 0),
			High:    p.num("high_cutoff", 0),
			Order:   int(p.num("order", 4)),
			Enabled: enabled,
		}, nil
	case "highpass":
		return &filter.Highpass{
			Cutoff:  p.num("cutoff", 0),
			Order:   int(p.num("order", 4)),
			Enabled: enabled,
		}, nil
	case "lowpass":
		return &filter.Lowpass{
			Cutoff:  p.num("cutoff", 0),
			Order:   int(p.num("order", 4)),
			Enabled: enabled,
		}, nil
	case "notch":
		return &filter.Notch{
			Freq:    p.num("frequency", 0),
			Q:       p.num("q_factor", 30),
			Enabled: enabled,
		}, nil
	case "wavelet_denoise":
		mode, err := thresholdModeFromName(p.str("mode", "soft"))
		if err != nil {
			return nil, err
		}
		return &filter.WaveletDenoise{
			Family:  p.str("family", "db4"),
			Level:   int(p.num("level", 1)),
			Mode:    mode,
			Enabled: enabled,
		}, nil
	default:
		return nil, fmt.Errorf("pipeline: decode filter: %w: %q", ErrUnknownStage, sd.Type)
	}
}

func normalizationDoc(s *normalize.Spec) *stageDoc {
	p := params{}
	switch s.Method {
	case normalize.MinMax:
		p["min"] = s.Min
		p["max"] = s.Max
	case normalize.Quantile:
		p["n_quantiles"] = float64(s.NQuantiles)
	}
	doc := &stageDoc{Method: s.Method.String()}
	if len(p) > 0 {
		doc.Parameters = p
	}
	return doc
}

func normalizationFromDoc(sd stageDoc) (*normalize.Spec, error) {
	method, err := normalize.MethodFromString(sd.Method)
	if err != nil {
		return nil, err
	}
	p := sd.Parameters
	return &normalize.Spec{
		Method:     method,
		Min:        p.num("min", 0),
		Max:        p.num("max", 0),
		NQuantiles: int(p.num("n_quantiles", 0)),
	}, nil
}

func segmentationDoc(s segment.Spec) (*stageDoc, error) {
	switch v := s.(type) {
	case *segment.FixedWindow:
		return &stageDoc{Type: "fixed_window", Parameters: params{
			"window_size": float64(v.WindowSize),
		}}, nil
	case *segment.OverlapWindow:
		return &stageDoc{Type: "overlap_window", Parameters: params{
			"window_size": float64(v.WindowSize),
			"overlap":     v.Overlap,
		}}, nil
	case *segment.EventBased:
		events := make([]any, len(v.Events))
		for i, e := range v.Events {
			events[i] = e
		}
		return &stageDoc{Type: "event_based", Parameters: params{
			"events":     events,
			"pre_event":  float64(v.PreEvent),
			"post_event": float64(v.PostEvent),
		}}, nil
	default:
		return nil, fmt.Errorf("pipeline: encode segmentation: %w: %T", ErrUnknownStage, s)
	}
}

func segmentationFromDoc(sd stageDoc) (segment.Spec, error) {
	p := sd.Parameters
	switch sd.Type {
	case "fixed_window":
		return &segment.FixedWindow{
			WindowSize: int(p.num("window_size", 0)),
		}, nil
	case "overlap_window":
		return &segment.OverlapWindow{
			WindowSize: int(p.num("window_size", 0)),
			Overlap:    p.num("overlap", 0),
		}, nil
	case "event_based":
		return &segment.EventBased{
			Events:    p.ints("events"),
			PreEvent:  int(p.num("pre_event", 0)),
			PostEvent: int(p.num("post_event", 0)),
		}, nil
	default:
		return nil, fmt.Errorf("pipeline: decode segmentation: %w: %q", ErrUnknownStage, sd.Type)
	}
}

func thresholdModeName(m wavelet.ThresholdMode) string {
	if m == wavelet.Hard {
		return "hard"
	}
	return "soft"
}

func thresholdModeFromName(name string) (wavelet.ThresholdMode, error) {
	switch name {
	case "soft":
		return wavelet.Soft, nil
	case "hard":
		return wavelet.Hard, nil
	default:
		return 0, fmt.Errorf("pipeline: decode filter: %w: threshold mode %q", ErrUnknownStage, name)
	}
}
