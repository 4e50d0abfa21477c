package media

import (
	"math"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		rate     string
		expected float64
	}{
		{"25/1", 25},
		{"30000/1001", 29.97002997},
		{"60", 60},
		{"0/0", 0},
		{"", 0},
		{"abc", 0},
		{"30/0", 0},
		{"30/abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			got := parseFrameRate(tt.rate)
			if math.Abs(got-tt.expected) > 1e-6 {
				t.Errorf("parseFrameRate(%q) = %v, want %v", tt.rate, got, tt.expected)
			}
		})
	}
}
