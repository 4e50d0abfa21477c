package scan

import "testing"

// fillWindow appends count samples at the given rate starting at t=0, using
// build to produce each embedding (nil = invalid frame).
func fillWindow(t *testing.T, w *Window, count int, rate float64, build func(i int) []float32) {
	t.Helper()
	for i := 0; i < count; i++ {
		s := Sample{Timestamp: float64(i) / rate, Embedding: build(i)}
		if err := w.Append(s); err != nil {
			t.Fatalf("Append failed at %d: %v", i, err)
		}
	}
}

func TestEvaluatorMinSize(t *testing.T) {
	tests := []struct {
		name       string
		duration   float64
		sampleRate float64
		expected   int
	}{
		{name: "8s at 5Hz", duration: 8, sampleRate: 5, expected: 40},
		{name: "8s at 3Hz", duration: 8, sampleRate: 3, expected: 24},
		{name: "fractional rounds up", duration: 5, sampleRate: 2.5, expected: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(tt.duration, tt.sampleRate, 0.9, 0.45)
			if e.MinSize != tt.expected {
				t.Errorf("MinSize = %d, want %d", e.MinSize, tt.expected)
			}
		})
	}
}

func TestEvaluatorQualifies(t *testing.T) {
	e := NewEvaluator(8, 5, 0.9, 0.45)

	t.Run("full consistent window qualifies", func(t *testing.T) {
		w := NewWindow(8)
		fillWindow(t, w, 40, 5, func(int) []float32 { return emb(1) })
		if !e.Qualifies(w) {
			t.Error("full consistent window should qualify")
		}
	})

	t.Run("window below full size never qualifies", func(t *testing.T) {
		w := NewWindow(8)
		fillWindow(t, w, 39, 5, func(int) []float32 { return emb(1) })
		if e.Qualifies(w) {
			t.Error("39 of 40 samples should not qualify")
		}
	})

	t.Run("empty window never qualifies", func(t *testing.T) {
		if e.Qualifies(NewWindow(8)) {
			t.Error("empty window should not qualify")
		}
	})

	t.Run("low valid ratio disqualifies", func(t *testing.T) {
		w := NewWindow(8)
		// 34 valid of 40 = 0.85, below the 0.9 floor.
		fillWindow(t, w, 40, 5, func(i int) []float32 {
			if i < 6 {
				return nil
			}
			return emb(1)
		})
		if e.Qualifies(w) {
			t.Error("window with 85% valid frames should not qualify")
		}
	})

	t.Run("ratio exactly at floor qualifies", func(t *testing.T) {
		w := NewWindow(8)
		// 36 valid of 40 = exactly 0.9.
		fillWindow(t, w, 40, 5, func(i int) []float32 {
			if i < 4 {
				return nil
			}
			return emb(1)
		})
		if !e.Qualifies(w) {
			t.Error("window with exactly 90% valid frames should qualify")
		}
	})

	t.Run("distant embedding disqualifies", func(t *testing.T) {
		w := NewWindow(8)
		fillWindow(t, w, 40, 5, func(i int) []float32 {
			if i == 20 {
				return emb(2) // distance 1 from pivot, above tolerance
			}
			return emb(1)
		})
		if e.Qualifies(w) {
			t.Error("window with an off-identity frame should not qualify")
		}
	})

	t.Run("distance exactly at tolerance qualifies", func(t *testing.T) {
		exact := NewEvaluator(8, 5, 0.9, 0.25)
		w := NewWindow(8)
		fillWindow(t, w, 40, 5, func(i int) []float32 {
			if i == 20 {
				return emb(1.25) // distance exactly 0.25 from the pivot
			}
			return emb(1)
		})
		if !exact.Qualifies(w) {
			t.Error("embedding at exactly tolerance distance should qualify")
		}
	})
}

func TestEvaluatorComparesAgainstPivot(t *testing.T) {
	// Pairwise drift: consecutive embeddings are close, but the last one is far
	// from the first. The pivot check must catch this.
	e := NewEvaluator(8, 5, 0.9, 0.45)
	w := NewWindow(8)
	fillWindow(t, w, 40, 5, func(i int) []float32 {
		return emb(float32(i) * 0.05) // neighbors differ by 0.05, ends differ by 1.95
	})
	if e.Qualifies(w) {
		t.Error("drifting window should not qualify against the pivot")
	}
}
