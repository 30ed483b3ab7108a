// Package segment windows Signals into Segments. Segments are read-only
// views; overlapping windows share their underlying samples.
package segment

import (
	"github.com/cwbudde/algo-biosig/core"
)

// Spec is a closed set of segmentation specifications.
type Spec interface {
	// Apply windows every channel of the signal. Segments are ordered by
	// channel, then by start offset.
	Apply(sig *core.Signal) ([]core.Segment, error)

	segmentSpec()
}

// FixedWindow produces non-overlapping windows of WindowSize samples.
// A trailing partial window is dropped.
type FixedWindow struct {
	WindowSize int
}

// OverlapWindow produces windows of WindowSize samples advancing by
// WindowSize*(1-Overlap) samples. Overlap is a fraction in [0, 1).
type OverlapWindow struct {
	WindowSize int
	Overlap    float64
}

// EventBased produces one window per event spanning
// [event-PreEvent, event+PostEvent) samples. Events whose window would
// cross a signal boundary are skipped silently: boundary events are
// expected in upstream data and are not an error.
type EventBased struct {
	Events    []int
	PreEvent  int
	PostEvent int
}

func (*FixedWindow) segmentSpec()   {}
func (*OverlapWindow) segmentSpec() {}
func (*EventBased) segmentSpec()    {}

func validWindowSize(size, limit int) error {
	if size <= 0 || size > limit {
		return &core.InvalidParameterError{
			Field:  "window_size",
			Value:  float64(size),
			Reason: "window size must be positive and no longer than the signal",
		}
	}
	return nil
}

// Apply windows the signal into non-overlapping segments.
func (s *FixedWindow) Apply(sig *core.Signal) ([]core.Segment, error) {
	if err := validWindowSize(s.WindowSize, sig.Len()); err != nil {
		return nil, err
	}

	count := sig.Len() / s.WindowSize
	segs := make([]core.Segment, 0, count*sig.NumChannels())
	for ch := 0; ch < sig.NumChannels(); ch++ {
		data := sig.Channel(ch)
		for i := 0; i < count; i++ {
			start := i * s.WindowSize
			segs = append(segs, core.NewSegment(
				data[start:start+s.WindowSize], start, ch, sig.SampleRate()))
		}
	}
	return segs, nil
}

// Apply windows the signal into overlapping segments.
func (s *OverlapWindow) Apply(sig *core.Signal) ([]core.Segment, error) {
	if err := validWindowSize(s.WindowSize, sig.Len()); err != nil {
		return nil, err
	}
	if s.Overlap < 0 || s.Overlap >= 1 {
		return nil, &core.InvalidParameterError{
			Field:  "overlap",
			Value:  s.Overlap,
			Reason: "overlap must be a fraction in [0, 1)",
		}
	}

	step := int(float64(s.WindowSize) * (1 - s.Overlap))
	if step < 1 {
		step = 1
	}

	count := (sig.Len()-s.WindowSize)/step + 1
	segs := make([]core.Segment, 0, count*sig.NumChannels())
	for ch := 0; ch < sig.NumChannels(); ch++ {
		data := sig.Channel(ch)
		for i := 0; i < count; i++ {
			start := i * step
			segs = append(segs, core.NewSegment(
				data[start:start+s.WindowSize], start, ch, sig.SampleRate()))
		}
	}
	return segs, nil
}

// Apply windows the signal around each event.
func (s *EventBased) Apply(sig *core.Signal) ([]core.Segment, error) {
	if s.PreEvent < 0 || s.PostEvent < 0 || s.PreEvent+s.PostEvent == 0 {
		return nil, &core.InvalidParameterError{
			Field:  "pre_event",
			Value:  float64(s.PreEvent),
			Reason: "event window must have non-negative extent and positive total length",
		}
	}

	segs := make([]core.Segment, 0, len(s.Events)*sig.NumChannels())
	for ch := 0; ch < sig.NumChannels(); ch++ {
		data := sig.Channel(ch)
		for _, ev := range s.Events {
			start := ev - s.PreEvent
			end := ev + s.PostEvent
			if start < 0 || end > sig.Len() {
				continue
			}
			segs = append(segs, core.NewSegment(
				data[start:end], start, ch, sig.SampleRate()))
		}
	}
	return segs, nil
}
