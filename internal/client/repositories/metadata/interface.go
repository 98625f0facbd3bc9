// Package metadata stores small key/value items in the local database:
// preferences, the device id and the encrypted sync configuration.
package metadata

import (
	"context"
	"time"
)

// Entry is a stored item with its modification time.
type Entry struct {
	Key          string
	Value        []byte
	LastModified time.Time
}

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value and stamps it with the current time.
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for an absent key.
	Delete(ctx context.Context, key string) error

	// GetEntry returns (nil, nil) when key is absent.
	GetEntry(ctx context.Context, key string) (*Entry, error)
	// SetEntry stores e keeping its LastModified.
	SetEntry(ctx context.Context, e Entry) error
	// ListPrefix returns entries whose key starts with prefix, ordered by key.
	ListPrefix(ctx context.Context, prefix string) ([]Entry, error)
}
