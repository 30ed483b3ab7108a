// Package core provides the shared data model for the biosignal pipeline:
// the immutable Signal and Segment types, the structured error taxonomy used
// by every processing stage, and small numeric helpers.
//
// All pipeline stages are pure functions over these types: a stage receives a
// Signal, allocates a fresh output, and never mutates its input. Segments are
// read-only views into a Signal's sample storage and may share samples when
// produced by overlapping windows.
package core
