package identity

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetMinDistance(t *testing.T) {
	s := NewSet(4)
	if err := s.Add([]float32{1, 0, 0, 0}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add([]float32{5, 0, 0, 0}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	tests := []struct {
		name     string
		query    []float32
		expected float64
	}{
		{name: "exact member", query: []float32{1, 0, 0, 0}, expected: 0},
		{name: "closer to first", query: []float32{1.5, 0, 0, 0}, expected: 0.5},
		{name: "closer to second", query: []float32{4, 0, 0, 0}, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.MinDistance(tt.query)
			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("MinDistance(%v) = %v, want %v", tt.query, got, tt.expected)
			}
		})
	}
}

func TestSetEmptyMinDistanceIsInf(t *testing.T) {
	s := NewSet(4)
	if got := s.MinDistance([]float32{1, 0, 0, 0}); !math.IsInf(got, 1) {
		t.Errorf("MinDistance on empty set = %v, want +Inf", got)
	}
}

func TestSetRejectsWrongDimension(t *testing.T) {
	s := NewSet(4)
	if err := s.Add([]float32{1, 2}); err == nil {
		t.Error("Add with wrong dimension should fail")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after rejected Add, want 0", s.Len())
	}

	_ = s.Add([]float32{1, 0, 0, 0})
	if got := s.MinDistance([]float32{1, 0}); !math.IsInf(got, 1) {
		t.Errorf("MinDistance with wrong query dimension = %v, want +Inf", got)
	}
}

func TestNewSetFromVectorsDropsMismatched(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0, 0},
		{1, 2}, // wrong dimension, dropped
		{2, 0, 0, 0},
	}
	s := NewSetFromVectors(4, vectors, zerolog.Nop())
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestSetVectorsReturnsCopy(t *testing.T) {
	s := NewSet(2)
	_ = s.Add([]float32{1, 2})
	_ = s.Add([]float32{3, 4})

	vecs := s.Vectors()
	if len(vecs) != 2 {
		t.Fatalf("len(Vectors()) = %d, want 2", len(vecs))
	}
	vecs[0] = nil
	if got := s.Vectors()[0]; got == nil {
		t.Error("mutating the returned slice affected the set")
	}
}

func TestSetDim(t *testing.T) {
	if got := NewSet(128).Dim(); got != 128 {
		t.Errorf("Dim() = %d, want 128", got)
	}
}
