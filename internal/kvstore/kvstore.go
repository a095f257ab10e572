package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the durable key-value capability injected into the engine.
// Production adapters are Postgres and Redis; tests use the in-memory
// implementation. Values are opaque strings (usually JSON).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// List returns all key/value pairs whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string]string, error)
}
