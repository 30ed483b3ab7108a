package core

import (
	"fmt"
	"math"
)

// ValidationError reports a synthesis or processing parameter outside its
// allowed range. The stage that returns it has performed no partial work.
type ValidationError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s must be in [%g, %g]: %g", e.Field, e.Min, e.Max, e.Value)
}

// InvalidParameterError reports a parameter that is incompatible with the
// properties of the signal it is applied to, such as a filter cutoff at or
// above the Nyquist frequency.
type InvalidParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s = %g: %s", e.Field, e.Value, e.Reason)
}

// OutOfRangeError reports a time window extending past the end of a signal.
type OutOfRangeError struct {
	Start    float64
	Duration float64
	Limit    float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("window [%g, %g] exceeds signal duration %g",
		e.Start, e.Start+e.Duration, e.Limit)
}

// DegenerateInputError reports input on which the requested statistic is
// undefined, such as z-score normalization of a constant signal.
type DegenerateInputError struct {
	Operation string
	Reason    string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s: degenerate input: %s", e.Operation, e.Reason)
}

// InsufficientDataError reports a segment too short for the requested
// estimator given its parameters.
type InsufficientDataError struct {
	Operation string
	Length    int
	Required  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: segment length %d, need at least %d",
		e.Operation, e.Length, e.Required)
}

// ValidateRange returns a ValidationError if value lies outside [min, max].
func ValidateRange(field string, value, min, max float64) error {
	if value < min || value > max {
		return &ValidationError{Field: field, Value: value, Min: min, Max: max}
	}
	return nil
}

// ValidatePositive returns a ValidationError if value is not strictly positive.
func ValidatePositive(field string, value float64) error {
	if value <= 0 {
		return &ValidationError{Field: field, Value: value, Min: 0, Max: math.Inf(1)}
	}
	return nil
}
