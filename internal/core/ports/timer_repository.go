package ports

import (
	"context"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
)

// TimerRepository defines the persistence contract for cronometer rows.
// Timers are keyed by (owner type, owner ref, phase); Upsert implements the
// idempotent re-start semantics.
type TimerRepository interface {
	// Upsert inserts or overwrites the timer row for its owner and phase.
	Upsert(ctx context.Context, aggregate *timer.Timer) error

	// Update persists changes to an existing timer row.
	Update(ctx context.Context, aggregate *timer.Timer) error

	// Get retrieves the timer for an owner and phase.
	Get(ctx context.Context, ownerType timer.OwnerType, ownerRef string, phase timer.Phase) (*timer.Timer, error)

	// GetActiveByPhase retrieves every active timer of a phase, locking the
	// rows so concurrent lazy sweeps serialize. Must run inside an open
	// transaction.
	GetActiveByPhase(ctx context.Context, phase timer.Phase) ([]*timer.Timer, error)

	// DeleteByOwner removes every timer row of one owner, across phases.
	// Used when the owner leaves its timed lifecycle (box teardown, TIC
	// entering assembly).
	DeleteByOwner(ctx context.Context, ownerType timer.OwnerType, ownerRef string) error
}

// TimerConfigRepository defines the persistence contract for timer
// configuration rows.
type TimerConfigRepository interface {
	// Add persists a configuration row.
	Add(ctx context.Context, aggregate *timer.Config) error

	// FindCandidates retrieves every row that could apply to the given
	// models, directly or through their capacity classes, at any scope.
	// The reuse policy resolves precedence.
	FindCandidates(ctx context.Context, modeloIDs []kernel.UUID, litrajes []string) ([]*timer.Config, error)
}
