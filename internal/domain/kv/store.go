// Package kv defines the durable key-value store the khata persists into.
package kv

import "context"

// Store is a string-keyed store of JSON documents. Each call is atomic for its own key
// only; nothing is transactional across keys.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
