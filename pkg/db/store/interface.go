package store

import (
	"context"
	"errors"
)

// ErrStoreClosed is returned by operations on a closed store
var ErrStoreClosed = errors.New("store is closed")

// KeyValueStore persists opaque values under string keys. Values are
// replaced as a whole; there is no partial update.
type KeyValueStore interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Entry operations
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
