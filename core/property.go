package core

import "context"

type PropertyStore interface {
	// Get loads the value stored under key and returns its version.
	// An absent key leaves value untouched and returns version zero.
	Get(ctx context.Context, key string, value any) (uint64, error)
	// Set writes value only if the stored version still matches; it
	// returns ErrOptimisticLock when a concurrent writer got there first.
	// Version zero asserts the key does not exist yet.
	Set(ctx context.Context, key string, value any, version uint64) error
}
