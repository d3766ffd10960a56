package interfaces

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KVStore.Get when the key is absent
var ErrKeyNotFound = errors.New("key not found")

// KVStore is a durable string keyed byte store. Values are opaque to the backend.
type KVStore interface {
	// Get returns ErrKeyNotFound when key is absent
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete succeeds when the key is already absent
	Delete(ctx context.Context, key string) error
	Close() error
}
