// Package media stores user and club images in object storage.
package media

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Backend defines the object operations shared by storage providers.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Store wraps a Backend with image-key conventions.
type Store struct {
	backend Backend
}

// NewStore constructs a Store over the provided backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// NewKey builds a fresh object key for an image. Keys are namespaced
// by entity ("user" or "club") and carry a random suffix so a
// re-upload never overwrites an object a concurrent reader may still
// be streaming.
func NewKey(entity string, entityID int, label string) string {
	return fmt.Sprintf("%s/%d/%s/%s", entity, entityID, label, uuid.NewString())
}

// EnsureBucket ensures the configured bucket exists.
func (s *Store) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads an image object.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Open streams an image object.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes an image object.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}
