package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/clip-finder/internal/identity"
)

// IdentityStore provides PostgreSQL-backed identity vector storage using
// pgvector. It implements identity.Store.
type IdentityStore struct {
	pool *Pool
}

// NewIdentityStore creates a new PostgreSQL identity store.
func NewIdentityStore(pool *Pool) *IdentityStore {
	return &IdentityStore{pool: pool}
}

// Save stores the vectors under the slug, replacing any previous set.
func (s *IdentityStore) Save(ctx context.Context, slug string, dim int, vectors [][]float32) error {
	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO identities (slug, dim)
		VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET dim = EXCLUDED.dim, updated_at = NOW()
	`, slug, dim)
	if err != nil {
		return fmt.Errorf("upsert identity %q: %w", slug, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM identity_vectors WHERE slug = $1", slug); err != nil {
		return fmt.Errorf("clear identity vectors %q: %w", slug, err)
	}

	for i, v := range vectors {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO identity_vectors (slug, position, embedding)
			VALUES ($1, $2, $3)
		`, slug, i, pgvector.NewVector(v))
		if err != nil {
			return fmt.Errorf("insert identity vector %q[%d]: %w", slug, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit identity %q: %w", slug, err)
	}
	return nil
}

// Load returns the stored vectors, or identity.ErrNotFound for an unknown
// slug. A known slug with no vectors returns an empty slice.
func (s *IdentityStore) Load(ctx context.Context, slug string) ([][]float32, error) {
	var dim int
	err := s.pool.QueryRow(ctx, "SELECT dim FROM identities WHERE slug = $1", slug).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, identity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query identity %q: %w", slug, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT embedding
		FROM identity_vectors
		WHERE slug = $1
		ORDER BY position
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("query identity vectors %q: %w", slug, err)
	}
	defer rows.Close()

	vectors := [][]float32{}
	for rows.Next() {
		var vec pgvector.Vector
		if err := rows.Scan(&vec); err != nil {
			return nil, fmt.Errorf("scan identity vector %q: %w", slug, err)
		}
		vectors = append(vectors, vec.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identity vectors %q: %w", slug, err)
	}
	return vectors, nil
}

// List returns all stored slugs in lexical order.
func (s *IdentityStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT slug FROM identities ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan identity slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return slugs, nil
}

// Delete removes the identity and its vectors, returning identity.ErrNotFound
// for an unknown slug.
func (s *IdentityStore) Delete(ctx context.Context, slug string) error {
	res, err := s.pool.Exec(ctx, "DELETE FROM identities WHERE slug = $1", slug)
	if err != nil {
		return fmt.Errorf("delete identity %q: %w", slug, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete identity %q: %w", slug, err)
	}
	if affected == 0 {
		return identity.ErrNotFound
	}
	return nil
}
