package engine

import (
	"time"

	"github.com/bagelworks/bageltycoon/server/internal/domain/game"
	"github.com/bagelworks/bageltycoon/server/internal/infra/storage"
	"github.com/bagelworks/bageltycoon/server/internal/platform/logger"
)

// Config holds the tunable parameters and dependencies of a shop engine.
type Config struct {
	// TickInterval is the scheduler period. The active order's countdown is
	// decremented by this amount on every tick.
	TickInterval time.Duration

	// SpawnInitialDelay is the wait between EnableSpawning and the first
	// customer arrival.
	SpawnInitialDelay time.Duration

	// SpawnInterval is the minimum gap between spawn attempts after the first.
	SpawnInterval time.Duration

	// AutosaveInterval is the minimum gap between autosaves during ticking.
	AutosaveInterval time.Duration

	// Repo persists state. Nil disables persistence entirely.
	Repo storage.StateRepository

	// Logger receives diagnostics. Nil gets a default logger.
	Logger *logger.Logger

	// Initial, when non-nil, is normalized over defaults and used instead of
	// loading from Repo.
	Initial *game.State

	// Seed fixes the RNG for deterministic runs. Zero seeds from the clock.
	Seed int64

	// DisableScheduler skips the background tick loop; the host then drives
	// ticks explicitly via Tick. Intended for tests and turn-based harnesses.
	DisableScheduler bool
}

// DefaultConfig returns the standard simulation pacing.
func DefaultConfig() Config {
	return Config{
		TickInterval:      100 * time.Millisecond,
		SpawnInitialDelay: 4 * time.Second,
		SpawnInterval:     9 * time.Second,
		AutosaveInterval:  30 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.SpawnInitialDelay <= 0 {
		c.SpawnInitialDelay = def.SpawnInitialDelay
	}
	if c.SpawnInterval <= 0 {
		c.SpawnInterval = def.SpawnInterval
	}
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = def.AutosaveInterval
	}
	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}
}
