package scan

import (
	"math"
	"testing"
)

func TestEuclideanDistance(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{
			name:     "identical vectors",
			a:        []float32{1, 2, 3},
			b:        []float32{1, 2, 3},
			expected: 0,
		},
		{
			name:     "unit distance",
			a:        []float32{0, 0, 0},
			b:        []float32{1, 0, 0},
			expected: 1,
		},
		{
			name:     "pythagorean",
			a:        []float32{0, 0},
			b:        []float32{3, 4},
			expected: 5,
		},
		{
			name:     "negative components",
			a:        []float32{-1, -1},
			b:        []float32{1, 1},
			expected: 2 * math.Sqrt2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EuclideanDistance(tt.a, tt.b)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("EuclideanDistance(%v, %v) = %v, want %v", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestEuclideanDistanceInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
	}{
		{name: "mismatched lengths", a: []float32{1, 2}, b: []float32{1, 2, 3}},
		{name: "both empty", a: []float32{}, b: []float32{}},
		{name: "nil vectors", a: nil, b: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := EuclideanDistance(tt.a, tt.b); !math.IsInf(result, 1) {
				t.Errorf("EuclideanDistance(%v, %v) = %v, want +Inf", tt.a, tt.b, result)
			}
		})
	}
}
