package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileStore keeps each identity as a JSON file <dir>/<slug>.json. It is the
// zero-dependency backend used when no database is configured, mirroring the
// per-person reference cache directory of earlier tooling.
type FileStore struct {
	dir string
}

type fileRecord struct {
	Slug      string      `json:"slug"`
	Dim       int         `json:"dim"`
	Vectors   [][]float32 `json:"vectors"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("identity store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create identity store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(slug string) string {
	return filepath.Join(f.dir, slug+".json")
}

// Save stores the vectors under the slug, replacing any previous set.
func (f *FileStore) Save(ctx context.Context, slug string, dim int, vectors [][]float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := fileRecord{
		Slug:      slug,
		Dim:       dim,
		Vectors:   vectors,
		UpdatedAt: time.Now().UTC(),
	}
	if rec.Vectors == nil {
		rec.Vectors = [][]float32{}
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity %q: %w", slug, err)
	}

	tmp := f.path(slug) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write identity %q: %w", slug, err)
	}
	if err := os.Rename(tmp, f.path(slug)); err != nil {
		return fmt.Errorf("write identity %q: %w", slug, err)
	}
	return nil
}

// Load returns the stored vectors, or ErrNotFound for an unknown slug.
func (f *FileStore) Load(ctx context.Context, slug string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(slug))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read identity %q: %w", slug, err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode identity %q: %w", slug, err)
	}
	if rec.Vectors == nil {
		rec.Vectors = [][]float32{}
	}
	return rec.Vectors, nil
}

// List returns all stored slugs in lexical order.
func (f *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read identity store directory: %w", err)
	}

	var slugs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(slugs)
	return slugs, nil
}

// Delete removes the identity, returning ErrNotFound for an unknown slug.
func (f *FileStore) Delete(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(f.path(slug))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete identity %q: %w", slug, err)
	}
	return nil
}
