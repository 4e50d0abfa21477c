package identity

import (
	"fmt"
	"math"
	"sync"

	"github.com/coder/hnsw"
	"github.com/rs/zerolog"

	"github.com/kozaktomas/clip-finder/internal/scan"
)

// Set is a dimension-checked collection of identity embeddings backed by an
// HNSW graph for nearest-neighbor distance queries. It implements
// scan.VectorSet and scan.MutableVectorSet.
type Set struct {
	dim     int
	vectors [][]float32
	graph   *hnsw.Graph[int]
	mu      sync.RWMutex
}

const hnswMaxNeighbors = 16

// NewSet creates an empty set accepting vectors of the given dimensionality.
func NewSet(dim int) *Set {
	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	return &Set{dim: dim, graph: g}
}

// NewSetFromVectors builds a set, dropping vectors whose length does not
// match dim with a warning. A mismatched stored vector is a configuration
// problem but never aborts a scan.
func NewSetFromVectors(dim int, vectors [][]float32, logger zerolog.Logger) *Set {
	s := NewSet(dim)
	for i, v := range vectors {
		if err := s.Add(v); err != nil {
			logger.Warn().
				Int("index", i).
				Int("len", len(v)).
				Int("want", dim).
				Msg("dropping identity vector with mismatched dimension")
		}
	}
	return s
}

// Add inserts a vector. Vectors of the wrong dimensionality are refused.
func (s *Set) Add(v []float32) error {
	if len(v) != s.dim {
		return fmt.Errorf("vector dimension %d does not match set dimension %d", len(v), s.dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.Add(hnsw.MakeNode(len(s.vectors), v))
	s.vectors = append(s.vectors, v)
	return nil
}

// Len returns the number of vectors in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

// Dim returns the expected vector dimensionality.
func (s *Set) Dim() int {
	return s.dim
}

// MinDistance returns the smallest Euclidean distance between v and any
// vector in the set, or +Inf when the set is empty or v has the wrong
// dimensionality.
func (s *Set) MinDistance(v []float32) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.vectors) == 0 || len(v) != s.dim {
		return math.Inf(1)
	}

	neighbors := s.graph.Search(v, 1)
	if len(neighbors) == 0 {
		return math.Inf(1)
	}
	return scan.EuclideanDistance(v, neighbors[0].Value)
}

// Vectors returns a copy of the stored vectors in insertion order.
func (s *Set) Vectors() [][]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]float32, len(s.vectors))
	copy(out, s.vectors)
	return out
}
