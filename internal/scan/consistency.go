package scan

import "math"

// Evaluator decides whether a window represents one continuously visible
// identity.
//
// The check compares every valid embedding against the pivot (the first valid
// embedding in the window) rather than a centroid. That keeps the check O(n)
// per window and works well when embeddings of the same face cluster tightly,
// at the cost of letting a noisy pivot admit a window that a centroid check
// would reject.
type Evaluator struct {
	// MinSize is the sample count of a full window (ceil(duration * rate)).
	// Windows below this size never qualify, so a qualifying window always
	// spans the whole target duration.
	MinSize int

	// MinValidRatio is the minimum fraction of window samples that must carry
	// an embedding.
	MinValidRatio float64

	// Tolerance is the maximum Euclidean distance from the pivot for an
	// embedding to count as the same identity.
	Tolerance float64
}

// NewEvaluator derives the full-window size from the target duration and
// sample rate.
func NewEvaluator(duration, sampleRate, minValidRatio, tolerance float64) Evaluator {
	return Evaluator{
		MinSize:       int(math.Ceil(duration * sampleRate)),
		MinValidRatio: minValidRatio,
		Tolerance:     tolerance,
	}
}

// Qualifies reports whether the window is full, sufficiently valid, and
// identity-consistent. Frames with zero or multiple faces are never fatal on
// their own; they only drag the validity ratio down.
func (e Evaluator) Qualifies(w *Window) bool {
	size := w.Size()
	if size < e.MinSize || size == 0 {
		return false
	}
	if float64(w.ValidCount())/float64(size) < e.MinValidRatio {
		return false
	}

	pivot := w.Pivot()
	if pivot == nil {
		return false
	}
	for _, emb := range w.ValidEmbeddings() {
		if EuclideanDistance(emb, pivot) > e.Tolerance {
			return false
		}
	}
	return true
}
