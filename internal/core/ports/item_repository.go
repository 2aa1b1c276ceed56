package ports

import (
	"context"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
)

// ItemRepository defines the persistence contract for inventory unit
// aggregates. Lookups by tag code are the norm: operators address units by
// scanning, never by identifier.
type ItemRepository interface {
	// Add persists a new unit registered at intake.
	Add(ctx context.Context, aggregate *item.Item) error

	// Update persists changes to an existing unit.
	Update(ctx context.Context, aggregate *item.Item) error

	// GetByRfid retrieves one unit by tag code.
	GetByRfid(ctx context.Context, rfid kernel.Rfid) (*item.Item, error)

	// FindByRfids retrieves the units whose tag codes exist. Codes with no
	// matching unit are simply absent from the result; callers decide
	// whether absence is an error.
	FindByRfids(ctx context.Context, rfids []kernel.Rfid) ([]*item.Item, error)

	// GetByLote retrieves every unit tagged with a batch/box lote.
	GetByLote(ctx context.Context, lote string) ([]*item.Item, error)

	// GetByCaja retrieves every member unit of a box.
	GetByCaja(ctx context.Context, cajaID kernel.UUID) ([]*item.Item, error)
}
