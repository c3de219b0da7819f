package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FSStore stores blobs as files under a root directory, sharded by the
// first two hex digits of the reference so a single directory never holds
// the whole corpus.
type FSStore struct {
	root string
}

// NewFSStore creates the root directory if needed and returns the store.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root %s: %w", root, err)
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) path(ref string) string {
	return filepath.Join(s.root, ref[:2], ref)
}

func (s *FSStore) Put(_ context.Context, r io.Reader) (string, error) {
	data, ref, err := readAll(r)
	if err != nil {
		return "", err
	}

	path := s.path(ref)
	if _, err := os.Stat(path); err == nil {
		// Content-addressed: identical bytes are already present.
		return ref, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create shard dir: %w", err)
	}

	// Write to a temp file and rename so readers never see partial content.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("finalize blob: %w", err)
	}

	return ref, nil
}

func (s *FSStore) Get(_ context.Context, ref string) (io.ReadCloser, error) {
	if !ValidRef(ref) {
		return nil, ErrInvalidRef
	}

	f, err := os.Open(s.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob %s: %w", ref, err)
	}
	return f, nil
}

func (s *FSStore) Has(_ context.Context, ref string) (bool, error) {
	if !ValidRef(ref) {
		return false, ErrInvalidRef
	}

	_, err := os.Stat(s.path(ref))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat blob %s: %w", ref, err)
}
