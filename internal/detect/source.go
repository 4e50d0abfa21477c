package detect

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/kozaktomas/clip-finder/internal/scan"
)

// Frame is a single decoded video frame handed to the detector.
type Frame struct {
	Timestamp float64
	JPEG      []byte
}

// FrameSource yields frames in timestamp order and io.EOF at end of stream.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
}

// FaceDetector is the subset of Client the sample source needs.
type FaceDetector interface {
	DetectFaces(ctx context.Context, imageData []byte) ([]Face, error)
}

// SampleSource adapts a frame source plus a face detector into the sample
// stream the scan session consumes. A sample carries an embedding only when
// the detector reports exactly one face in the frame; zero or multiple faces
// produce an invalid sample, never an error.
type SampleSource struct {
	frames   FrameSource
	detector FaceDetector
	dim      int
	logger   zerolog.Logger
}

// NewSampleSource wires a frame source to a detector. dim is the expected
// embedding dimensionality; embeddings of any other length are treated as
// missing, with a warning.
func NewSampleSource(frames FrameSource, detector FaceDetector, dim int, logger zerolog.Logger) *SampleSource {
	return &SampleSource{
		frames:   frames,
		detector: detector,
		dim:      dim,
		logger:   logger.With().Str("component", "sample_source").Logger(),
	}
}

// Next implements scan.SampleSource.
func (s *SampleSource) Next(ctx context.Context) (scan.Sample, error) {
	frame, err := s.frames.Next(ctx)
	if errors.Is(err, io.EOF) {
		return scan.Sample{}, scan.ErrEndOfStream
	}
	if err != nil {
		return scan.Sample{}, fmt.Errorf("read frame: %w", err)
	}

	faces, err := s.detector.DetectFaces(ctx, frame.JPEG)
	if err != nil {
		return scan.Sample{}, fmt.Errorf("detect faces at %.3fs: %w", frame.Timestamp, err)
	}

	sample := scan.Sample{Timestamp: frame.Timestamp}
	if len(faces) == 1 {
		emb := faces[0].Embedding
		if len(emb) == s.dim {
			sample.Embedding = emb
		} else {
			s.logger.Warn().
				Float64("timestamp", frame.Timestamp).
				Int("len", len(emb)).
				Int("want", s.dim).
				Msg("detector embedding has unexpected dimension, treating frame as invalid")
		}
	}
	return sample, nil
}
