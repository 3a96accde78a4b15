// Package store holds grouping state that outgrows memory.
package store

import "context"

// Store persists encoded group aggregates keyed by group key. Groups are
// returned in the order their key was first stored.
type Store interface {
	GetGroup(ctx context.Context, key string) ([]byte, error)
	PutGroup(ctx context.Context, key string, data []byte) error
	EachGroup(ctx context.Context, fn func(key string, data []byte) error) error
	CountGroups(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
