package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStore keeps blobs in a local LevelDB database keyed by content
// reference. It is the default durable backend for single-node
// deployments: one directory, crash-safe writes, no external daemon.
type LevelDBStore struct {
	db *leveldb.DB
}

// OpenLevelDBStore opens (or creates) the database at path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

// Close releases the underlying database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

func (s *LevelDBStore) Put(_ context.Context, r io.Reader) (string, error) {
	data, ref, err := readAll(r)
	if err != nil {
		return "", err
	}

	has, err := s.db.Has([]byte(ref), nil)
	if err != nil {
		return "", fmt.Errorf("check blob %s: %w", ref, err)
	}
	if has {
		return ref, nil
	}

	if err := s.db.Put([]byte(ref), data, nil); err != nil {
		return "", fmt.Errorf("write blob %s: %w", ref, err)
	}
	return ref, nil
}

func (s *LevelDBStore) Get(_ context.Context, ref string) (io.ReadCloser, error) {
	if !ValidRef(ref) {
		return nil, ErrInvalidRef
	}

	data, err := s.db.Get([]byte(ref), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read blob %s: %w", ref, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *LevelDBStore) Has(_ context.Context, ref string) (bool, error) {
	if !ValidRef(ref) {
		return false, ErrInvalidRef
	}

	has, err := s.db.Has([]byte(ref), nil)
	if err != nil {
		return false, fmt.Errorf("check blob %s: %w", ref, err)
	}
	return has, nil
}
