// Package staging holds uploaded files for the duration of a single pipeline run.
//
// Every entry carries a bounded TTL. Entries are removed explicitly once the run
// finishes and expire on their own if that removal never happens.
package staging

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a key is absent or already expired.
	ErrNotFound = errors.New("staged file not found")
	// ErrInvalidTTL is returned for a non-positive TTL.
	ErrInvalidTTL = errors.New("staging ttl must be positive")
)

// DefaultTTL bounds how long an upload may sit in the staging area.
const DefaultTTL = time.Hour

// Cache is the transient key-value store for staged uploads.
type Cache interface {
	// Put stores data under key, replacing any prior value, and expires it after ttl.
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Get returns the staged payload or ErrNotFound.
	Get(ctx context.Context, key string) (Payload, error)
	// Delete removes key immediately. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Key derives the staging key for one submission by userID at the given instant.
func Key(userID string, submittedAt time.Time) string {
	return fmt.Sprintf("file:%s:%d", userID, submittedAt.UnixMilli())
}
