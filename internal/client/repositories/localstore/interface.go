package localstore

import "context"

// Repository is a durable string key/value store with browser localStorage
// semantics: reading an absent key is not an error.
type Repository interface {
	// GetItem returns the value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem inserts or overwrites key.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing an absent key succeeds.
	RemoveItem(ctx context.Context, key string) error

	// Keys lists the stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)

	// Clear removes every key.
	Clear(ctx context.Context) error
}
