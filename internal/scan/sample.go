package scan

import (
	"context"
	"errors"
)

// Sample is a single timestamped face observation produced by the detector.
// Embedding is nil when the frame contained zero faces or more than one face,
// so the sample still occupies a slot in the window but carries no identity.
type Sample struct {
	Timestamp float64 // seconds from the start of the media
	Embedding []float32
}

// Valid reports whether the sample carries a face embedding.
func (s Sample) Valid() bool {
	return s.Embedding != nil
}

// SampleSource is the pull interface the session drains. Implementations must
// yield samples in non-decreasing timestamp order and return ErrEndOfStream
// once the media is exhausted. Any other error is treated as an unreadable
// source and aborts the session.
type SampleSource interface {
	Next(ctx context.Context) (Sample, error)
}

// SampleSourceFunc adapts a function to the SampleSource interface.
type SampleSourceFunc func(ctx context.Context) (Sample, error)

// Next calls f.
func (f SampleSourceFunc) Next(ctx context.Context) (Sample, error) {
	return f(ctx)
}

var (
	// ErrEndOfStream signals that the sample source has no more frames.
	ErrEndOfStream = errors.New("end of sample stream")

	// ErrOutOfOrder is returned when a sample arrives with a timestamp lower
	// than the previous one. The window algorithm depends on ordering, so this
	// is a contract violation by the source and aborts the session.
	ErrOutOfOrder = errors.New("sample timestamp out of order")

	// ErrSourceUnreadable wraps failures to open or read the frame source.
	ErrSourceUnreadable = errors.New("sample source unreadable")

	// ErrInvalidDecision is returned by decision providers when the response
	// could not be interpreted. The session re-requests the decision instead
	// of defaulting to accept.
	ErrInvalidDecision = errors.New("invalid decision response")
)
