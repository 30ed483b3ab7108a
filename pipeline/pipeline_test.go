package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-biosig/filter"
	"github.com/cwbudde/algo-biosig/internal/testutil"
	"github.com/cwbudde/algo-biosig/normalize"
	"github.com/cwbudde/algo-biosig/segment"
)

func fullConfig() *Config {
	return &Config{
		Filters: []filter.Spec{
			&filter.Bandpass{Low: 20, High: 450, Order: 4, Enabled: true},
			&filter.Notch{Freq: 50, Q: 30, Enabled: false},
			&filter.WaveletDenoise{Family: "db4", Level: 3, Enabled: true},
		},
		Normalization: &normalize.Spec{Method: normalize.MinMax, Min: -1, Max: 1},
		Segmentation:  &segment.OverlapWindow{WindowSize: 500, Overlap: 0.25},
	}
}

func TestApply_RunsAllStages(t *testing.T) {
	cfg := &Config{
		Filters: []filter.Spec{
			&filter.Bandpass{Low: 20, High: 200, Order: 4, Enabled: true},
		},
		Normalization: &normalize.Spec{Method: normalize.ZScore},
		Segmentation:  &segment.FixedWindow{WindowSize: 500},
	}
	sig := testutil.NoiseSignal(t, 42, 1000, 1.0, 2000)

	res, err := cfg.Apply(sig)
	require.NoError(t, err)
	require.Len(t, res.Segments, 4)
	assert.Equal(t, 2000, res.Signal.Len())
	assert.InDelta(t, 0, testutil.Mean(res.Signal.Channel(0)), 1e-9)
	assert.InDelta(t, 1, testutil.Std(res.Signal.Channel(0)), 1e-9)
}

func TestApply_SkipsDisabledFilters(t *testing.T) {
	cfg := &Config{
		Filters: []filter.Spec{
			&filter.Lowpass{Cutoff: 5, Order: 8, Enabled: false},
		},
	}
	sig := testutil.SineSignal(t, 100, 1000, 1.0, 1000)
	res, err := cfg.Apply(sig)
	require.NoError(t, err)
	assert.Equal(t, sig.Channel(0), res.Signal.Channel(0))
}

func TestApply_EmptyConfigPassesThrough(t *testing.T) {
	sig := testutil.NoiseSignal(t, 1, 1000, 1.0, 800)
	res, err := (&Config{}).Apply(sig)
	require.NoError(t, err)
	assert.Equal(t, sig.Channel(0), res.Signal.Channel(0))
	assert.Nil(t, res.Segments)
}

func TestApply_FilterErrorPropagates(t *testing.T) {
	cfg := &Config{
		Filters: []filter.Spec{
			&filter.Lowpass{Cutoff: 900, Order: 4, Enabled: true}, // above Nyquist
		},
	}
	sig := testutil.NoiseSignal(t, 2, 1000, 1.0, 500)
	_, err := cfg.Apply(sig)
	require.Error(t, err)
}

func TestJSON_RoundTrip(t *testing.T) {
	cfg := fullConfig()
	data, err := cfg.JSON()
	require.NoError(t, err)

	loaded, err := FromJSON(data)
	require.NoError(t, err)

	require.Len(t, loaded.Filters, 3)
	bp, ok := loaded.Filters[0].(*filter.Bandpass)
	require.True(t, ok)
	assert.Equal(t, 20.0, bp.Low)
	assert.Equal(t, 450.0, bp.High)
	assert.Equal(t, 4, bp.Order)
	assert.True(t, bp.Enabled)

	notch, ok := loaded.Filters[1].(*filter.Notch)
	require.True(t, ok)
	assert.False(t, notch.Enabled)

	require.NotNil(t, loaded.Normalization)
	assert.Equal(t, normalize.MinMax, loaded.Normalization.Method)
	assert.Equal(t, -1.0, loaded.Normalization.Min)

	ow, ok := loaded.Segmentation.(*segment.OverlapWindow)
	require.True(t, ok)
	assert.Equal(t, 500, ow.WindowSize)
	assert.Equal(t, 0.25, ow.Overlap)
}

func TestJSON_SerializeIdempotent(t *testing.T) {
	first, err := fullConfig().JSON()
	require.NoError(t, err)

	loaded, err := FromJSON(first)
	require.NoError(t, err)

	second, err := loaded.JSON()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestYAML_SerializeIdempotent(t *testing.T) {
	first, err := fullConfig().YAML()
	require.NoError(t, err)

	loaded, err := FromYAML(first)
	require.NoError(t, err)

	second, err := loaded.YAML()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestFromJSON_IgnoresUnknownKeys(t *testing.T) {
	data := []byte(`{
		"filters": [
			{
				"type": "lowpass",
				"parameters": {"cutoff": 100, "order": 2, "ripple": 0.5}
			}
		],
		"future_section": {"anything": true}
	}`)
	cfg, err := FromJSON(data)
	require.NoError(t, err)
	require.Len(t, cfg.Filters, 1)
	lp, ok := cfg.Filters[0].(*filter.Lowpass)
	require.True(t, ok)
	assert.Equal(t, 100.0, lp.Cutoff)
	assert.Equal(t, 2, lp.Order)
	assert.True(t, lp.Enabled, "absent enabled flag defaults to true")
}

func TestFromJSON_MissingSectionsStayNil(t *testing.T) {
	cfg, err := FromJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Filters)
	assert.Nil(t, cfg.Normalization)
	assert.Nil(t, cfg.Segmentation)
}

func TestFromJSON_UnknownStageType(t *testing.T) {
	data := []byte(`{"filters": [{"type": "comb"}]}`)
	_, err := FromJSON(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStage))
}

func TestFromYAML_EventBased(t *testing.T) {
	data := []byte(`
segmentation:
  type: event_based
  parameters:
    events: [100, 250, 600]
    pre_event: 50
    post_event: 100
`)
	cfg, err := FromYAML(data)
	require.NoError(t, err)
	eb, ok := cfg.Segmentation.(*segment.EventBased)
	require.True(t, ok)
	assert.Equal(t, []int{100, 250, 600}, eb.Events)
	assert.Equal(t, 50, eb.PreEvent)
	assert.Equal(t, 100, eb.PostEvent)
}

func TestDefaults_AppliedOnLoad(t *testing.T) {
	data := []byte(`{
		"filters": [
			{"type": "bandpass", "parameters": {"low_cutoff": 20, "high_cutoff": 450}},
			{"type": "notch", "parameters": {"frequency": 60}},
			{"type": "wavelet_denoise"}
		]
	}`)
	cfg, err := FromJSON(data)
	require.NoError(t, err)

	bp := cfg.Filters[0].(*filter.Bandpass)
	assert.Equal(t, 4, bp.Order)

	notch := cfg.Filters[1].(*filter.Notch)
	assert.Equal(t, 30.0, notch.Q)

	wd := cfg.Filters[2].(*filter.WaveletDenoise)
	assert.Equal(t, "db4", wd.Family)
	assert.Equal(t, 1, wd.Level)
}
