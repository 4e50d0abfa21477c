package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no identity exists under the requested slug.
// It is distinct from a stored identity with zero vectors.
var ErrNotFound = errors.New("identity not found")

// Store persists identity vector sets keyed by slug.
type Store interface {
	// Save stores the vectors under the slug, replacing any previous set.
	Save(ctx context.Context, slug string, dim int, vectors [][]float32) error
	// Load returns the stored vectors. A known slug with no vectors returns
	// an empty slice; an unknown slug returns ErrNotFound.
	Load(ctx context.Context, slug string) ([][]float32, error)
	// List returns all stored slugs in lexical order.
	List(ctx context.Context) ([]string, error)
	// Delete removes the identity. Deleting an unknown slug returns
	// ErrNotFound.
	Delete(ctx context.Context, slug string) error
}
