package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrNotFound is returned by KV.Get when the key is absent
	ErrNotFound = goerr.New("key not found")
)

// KV is a small key-value store scoped to a single user
type KV interface {
	// Get returns the value stored under key, or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
