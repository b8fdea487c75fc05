package state

import "context"

// Store is a durable key/value facade for small bridge state: the last
// applied direction per base symbol and decision audit entries.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
