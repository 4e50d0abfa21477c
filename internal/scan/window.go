package scan

// Window maintains the sliding deque of samples covering at most the target
// duration. Appending a new sample evicts every sample older than
// newest.Timestamp - duration, so the span never exceeds the duration and
// trimming is idempotent.
type Window struct {
	duration   float64
	samples    []Sample
	head       int // index of the oldest retained sample
	validCount int
}

// NewWindow creates an empty window bounded by the given duration in seconds.
func NewWindow(duration float64) *Window {
	return &Window{duration: duration}
}

// Append adds a sample and trims the front of the window. Timestamps must be
// non-decreasing; an older timestamp returns ErrOutOfOrder and leaves the
// window unchanged.
func (w *Window) Append(s Sample) error {
	if w.Size() > 0 && s.Timestamp < w.samples[len(w.samples)-1].Timestamp {
		return ErrOutOfOrder
	}

	w.samples = append(w.samples, s)
	if s.Valid() {
		w.validCount++
	}

	// Evict samples that fell out of the duration-bounded span.
	for w.head < len(w.samples) && s.Timestamp-w.samples[w.head].Timestamp > w.duration {
		if w.samples[w.head].Valid() {
			w.validCount--
		}
		w.head++
	}

	// Compact once the dead prefix dominates, keeping appends O(1) amortized.
	if w.head > len(w.samples)/2 && w.head > 32 {
		n := copy(w.samples, w.samples[w.head:])
		w.samples = w.samples[:n]
		w.head = 0
	}

	return nil
}

// Size returns the number of samples currently in the window.
func (w *Window) Size() int {
	return len(w.samples) - w.head
}

// ValidCount returns the number of samples carrying an embedding.
func (w *Window) ValidCount() int {
	return w.validCount
}

// Span returns the time covered by the window in seconds.
func (w *Window) Span() float64 {
	if w.Size() < 2 {
		return 0
	}
	return w.samples[len(w.samples)-1].Timestamp - w.samples[w.head].Timestamp
}

// Start returns the timestamp of the oldest sample, or 0 for an empty window.
func (w *Window) Start() float64 {
	if w.Size() == 0 {
		return 0
	}
	return w.samples[w.head].Timestamp
}

// Pivot returns the embedding of the first valid sample, or nil if the window
// holds no valid samples.
func (w *Window) Pivot() []float32 {
	for i := w.head; i < len(w.samples); i++ {
		if w.samples[i].Valid() {
			return w.samples[i].Embedding
		}
	}
	return nil
}

// ValidEmbeddings returns the embeddings of all valid samples in time order.
func (w *Window) ValidEmbeddings() [][]float32 {
	out := make([][]float32, 0, w.validCount)
	for i := w.head; i < len(w.samples); i++ {
		if w.samples[i].Valid() {
			out = append(out, w.samples[i].Embedding)
		}
	}
	return out
}

// Reset discards all retained samples. Used when the session resumes scanning
// past a rejected candidate so the same window cannot be re-derived.
func (w *Window) Reset() {
	w.samples = w.samples[:0]
	w.head = 0
	w.validCount = 0
}
