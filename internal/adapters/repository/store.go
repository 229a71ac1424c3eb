// Package repository defines the persisted key/value store used for game
// state that must survive restarts, and its implementations.
package repository

import "context"

// Well-known keys for persisted game state.
const (
	KeyRotationPool        = "rotationPool"
	KeyDailyChallengeState = "dailyChallengeState"
)

// Store provides read/write access to named persisted values. Values are
// opaque bytes; a Get after a Set returns exactly the bytes written.
type Store interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if nothing was stored.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the underlying resources. Further calls fail with ErrStoreClosed.
	Close() error
}
