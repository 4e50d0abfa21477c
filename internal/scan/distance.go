package scan

import "math"

// EuclideanDistance computes the L2 distance between two embedding vectors.
// Returns +Inf for empty or mismatched-length input so that callers comparing
// against a tolerance always treat invalid pairs as non-matching.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
