// Package blobstore provides content-addressed storage for medical record
// files. A stored blob is identified by the lowercase hex SHA-256 of its
// bytes; the same content always yields the same reference, so Put is
// idempotent and a reference recorded on the ledger can always be checked
// against the bytes it names. The package defines the Store interface, an
// in-memory implementation for tests and development, a filesystem
// implementation, and a LevelDB implementation for single-node durability.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidRef = errors.New("invalid content reference")
	ErrTooLarge   = errors.New("blob exceeds maximum allowed size")
)

// MaxBlobSize is the maximum allowed blob size in bytes (100 MB).
const MaxBlobSize = 100 * 1024 * 1024

// refHexLen is the length of a hex-encoded SHA-256 digest.
const refHexLen = 64

// Store is the content-addressed storage collaborator. Put returns the
// content reference for the written bytes; Get resolves a reference back
// to the original bytes.
type Store interface {
	Put(ctx context.Context, r io.Reader) (string, error)
	Get(ctx context.Context, ref string) (io.ReadCloser, error)
	Has(ctx context.Context, ref string) (bool, error)
}

// ValidRef reports whether ref is a well-formed content reference.
func ValidRef(ref string) bool {
	if len(ref) != refHexLen {
		return false
	}
	_, err := hex.DecodeString(ref)
	return err == nil
}

// readAll reads at most MaxBlobSize bytes and computes the content
// reference. Shared by all implementations.
func readAll(r io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBlobSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > MaxBlobSize {
		return nil, "", ErrTooLarge
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}

// MemoryStore is a thread-safe, in-memory Store for testing and development.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns a ready-to-use MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, r io.Reader) (string, error) {
	data, ref, err := readAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.blobs[ref] = data
	s.mu.Unlock()
	return ref, nil
}

func (s *MemoryStore) Get(_ context.Context, ref string) (io.ReadCloser, error) {
	if !ValidRef(ref) {
		return nil, ErrInvalidRef
	}

	s.mu.RLock()
	data, ok := s.blobs[ref]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) Has(_ context.Context, ref string) (bool, error) {
	if !ValidRef(ref) {
		return false, ErrInvalidRef
	}

	s.mu.RLock()
	_, ok := s.blobs[ref]
	s.mu.RUnlock()
	return ok, nil
}
