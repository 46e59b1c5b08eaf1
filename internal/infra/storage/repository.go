// Package storage provides the persistence boundary for the shop engine.
// The engine only sees the StateRepository interface; the SQLite implementation
// lives beside it in this package.
package storage

import (
	"context"

	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
)

// DefaultSlot is the save key used by a single-shop deployment.
const DefaultSlot = "default"

// StateRepository persists full game-state snapshots under a single key.
// Implementations must tolerate a missing save: Load returns (nil, nil) when
// no snapshot exists. A non-nil error means the stored payload could not be
// read back; callers are expected to fall back to defaults rather than crash.
type StateRepository interface {
	// Save durably stores a snapshot, replacing any previous one.
	Save(ctx context.Context, state *game.State) error

	// Load retrieves the last saved snapshot, or (nil, nil) if none exists.
	Load(ctx context.Context) (*game.State, error)

	// Clear removes the saved snapshot, if any.
	Clear(ctx context.Context) error
}
