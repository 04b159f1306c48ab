// Package storage defines the blob-store contract the pipeline reads its
// input documents from and persists its tables to. Implementations live in
// sub-packages: supastore talks to Supabase Storage over REST, memstore keeps
// blobs in memory for tests and local runs.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound reports that the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Object describes one stored blob.
type Object struct {
	// Name is the object's name relative to the listed prefix.
	Name string
	// Size is the blob size in bytes, when the backend reports it.
	Size int64
}

// Store is the narrow contract the jobs consume. Failures surface as wrapped
// errors; retry policy belongs to the caller, never to the conversion core.
type Store interface {
	// Download fetches the blob at path. Missing objects return ErrNotFound.
	Download(ctx context.Context, path string) ([]byte, error)
	// Upload writes data at path, replacing any existing object.
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	// List returns the objects directly under prefix, sorted by name.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Remove deletes the given object paths in one batch.
	Remove(ctx context.Context, paths []string) error
}
