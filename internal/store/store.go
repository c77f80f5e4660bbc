// Package store is the opaque key-value persistence collaborator. Sessions
// are written fire-and-forget after every mutation and read back once at
// rehydration; a failing store must never stall gameplay.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session record not found")

// SessionTTLHours is how long an unpinned room survives without writes.
const SessionTTLHours = 24

// Store persists one opaque record per room id.
type Store interface {
	// Save writes the record. Pinned records never expire; everything else
	// carries the session TTL, refreshed on every write.
	Save(ctx context.Context, roomID string, data []byte, pinned bool) error
	// Load returns the record or ErrNotFound.
	Load(ctx context.Context, roomID string) ([]byte, error)
	Delete(ctx context.Context, roomID string) error
	// Keys lists the room ids with a persisted record.
	Keys(ctx context.Context) ([]string, error)
}
