package metadata

import "context"

// Repository is a small persisted key/value store for sync bookkeeping, e.g.
// the per-user "lastSync_<uid>" low-water mark. Values survive process
// restarts.
type Repository interface {
	// Get returns the value for key, or "" when the key has never been set.
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key string, value string) error

	Delete(ctx context.Context, key string) error
}
