// Package storage persists preferences and per-city forecast caches in a
// small key-value store.
package storage

import "context"

// KV is a durable string-keyed blob store.
type KV interface {
	// Get reports ok=false for a missing key; that is not an error.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
