package pipeline

import "math"

// params holds the untyped parameter mapping of one serialized stage.
// JSON decodes numbers as float64, YAML as int or float64; the accessors
// absorb both.
type params map[string]any

// num extracts a numeric parameter, returning def if missing or invalid.
func (p params) num(key string, def float64) float64 {
	raw, ok := p[key]
	if !ok {
		return def
	}
	var v float64
	switch x := raw.(type) {
	case float64:
		v = x
	case int:
		v = float64(x)
	default:
		return def
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// str extracts a string parameter, returning def if missing.
func (p params) str(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// ints extracts an integer list parameter, tolerating the float64 and int
// element types the decoders produce.
func (p params) ints(key string) []int {
	raw, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, e := range raw {
		switch x := e.(type) {
		case float64:
			out = append(out, int(x))
		case int:
			out = append(out, x)
		}
	}
	return out
}
