package ports

import (
	"context"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/kernel"
)

// CajaRepository defines the persistence contract for box aggregates,
// including their membership rows and order associations.
type CajaRepository interface {
	// Add persists a newly composed box with its full membership.
	Add(ctx context.Context, aggregate *caja.Caja) error

	// Update rewrites the box's membership and order associations.
	Update(ctx context.Context, aggregate *caja.Caja) error

	// Get retrieves a box by id.
	Get(ctx context.Context, id kernel.UUID) (*caja.Caja, error)

	// GetForUpdate retrieves a box by id taking a row lock on it, so that
	// two concurrent completions of the same box serialize. Must run inside
	// an open transaction.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*caja.Caja, error)

	// GetByLote retrieves a box by its lot code.
	GetByLote(ctx context.Context, lote string) (*caja.Caja, error)

	// GetByMember retrieves the box an item belongs to, if any.
	// Returns ObjectNotFound when the item is loose.
	GetByMember(ctx context.Context, itemID kernel.UUID) (*caja.Caja, error)

	// Delete removes the box, its membership rows and order associations.
	Delete(ctx context.Context, id kernel.UUID) error
}
