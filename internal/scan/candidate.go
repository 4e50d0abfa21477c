package scan

import (
	"sort"
	"time"
)

// Candidate describes a qualifying window surfaced for matching or review.
// End - Start always equals the configured target duration.
type Candidate struct {
	Start          float64       `json:"start"`
	End            float64       `json:"end"`
	Duration       float64       `json:"duration"`
	Representative []float32     `json:"speaker_encoding,omitempty"`
	FramesAnalyzed int           `json:"frames_analyzed"`
	Elapsed        time.Duration `json:"-"`
}

// newCandidate snapshots the current window. The representative embedding is
// the per-dimension median of the window's valid embeddings, which is more
// robust to a few noisy frames than a mean.
func newCandidate(w *Window, duration float64, frames int, elapsed time.Duration) Candidate {
	start := w.Start()
	return Candidate{
		Start:          start,
		End:            start + duration,
		Duration:       duration,
		Representative: medianEmbedding(w.ValidEmbeddings()),
		FramesAnalyzed: frames,
		Elapsed:        elapsed,
	}
}

// medianEmbedding computes the per-dimension median of a set of equal-length
// vectors. Returns nil for empty input.
func medianEmbedding(embs [][]float32) []float32 {
	if len(embs) == 0 {
		return nil
	}

	dim := len(embs[0])
	out := make([]float32, dim)
	column := make([]float32, len(embs))

	for d := 0; d < dim; d++ {
		for i, e := range embs {
			column[i] = e[d]
		}
		sort.Slice(column, func(i, j int) bool { return column[i] < column[j] })
		mid := len(column) / 2
		if len(column)%2 == 0 {
			out[d] = (column[mid-1] + column[mid]) / 2
		} else {
			out[d] = column[mid]
		}
	}
	return out
}
