package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no blob exists under the requested key.
var ErrNotFound = errors.New("object not found")

// Store persists segment blobs. The worker treats a missing blob as a
// tolerable gap, so implementations must report absence as ErrNotFound rather
// than a generic failure.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
}
