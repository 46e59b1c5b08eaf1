package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
)

// SQLiteStateRepository implements StateRepository on a local SQLite file.
// The snapshot is stored as one JSON payload per slot: the station map
// serializes as a plain field->value object and every nested list (ingredient
// sets, the customer queue, the sale history, the perk list) as an ordered
// JSON array, so older payloads stay readable across schema-free changes.
type SQLiteStateRepository struct {
	db   *sql.DB
	slot string
}

// NewSQLiteStateRepository creates a repository bound to one save slot.
func NewSQLiteStateRepository(db *sql.DB, slot string) *SQLiteStateRepository {
	if slot == "" {
		slot = DefaultSlot
	}
	return &SQLiteStateRepository{db: db, slot: slot}
}

// Save upserts the snapshot for this repository's slot.
func (r *SQLiteStateRepository) Save(ctx context.Context, state *game.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	query := `
		INSERT INTO save_slots (slot, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			payload=excluded.payload,
			updated_at=excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query, r.slot, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

// Load reads the snapshot back, reconstructing the keyed station map and
// normalizing the result. Returns (nil, nil) when the slot has no save.
func (r *SQLiteStateRepository) Load(ctx context.Context) (*game.State, error) {
	query := `SELECT payload FROM save_slots WHERE slot = ?`
	var payload string
	err := r.db.QueryRowContext(ctx, query, r.slot).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}

	var state game.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("corrupt save payload: %w", err)
	}
	state.Normalize()
	return &state, nil
}

// Clear deletes the slot's save, if present.
func (r *SQLiteStateRepository) Clear(ctx context.Context) error {
	query := `DELETE FROM save_slots WHERE slot = ?`
	if _, err := r.db.ExecContext(ctx, query, r.slot); err != nil {
		return fmt.Errorf("failed to clear game state: %w", err)
	}
	return nil
}
