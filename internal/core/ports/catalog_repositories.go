package ports

import (
	"context"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/novedad"
	"coldchain/internal/core/domain/model/orden"
)

// ModeloRepository reads the item model catalog. The engine never writes it.
type ModeloRepository interface {
	// Get retrieves one catalog entry by id.
	Get(ctx context.Context, id kernel.UUID) (*modelo.Modelo, error)
}

// OrdenRepository accesses the order registry the engine tags boxes with.
type OrdenRepository interface {
	// Get retrieves one order by id.
	Get(ctx context.Context, id kernel.UUID) (*orden.Orden, error)

	// Update persists changes to an order (the engine only disables them).
	Update(ctx context.Context, aggregate *orden.Orden) error
}

// NovedadRepository persists incident records.
type NovedadRepository interface {
	// Add persists a new incident record.
	Add(ctx context.Context, aggregate *novedad.Novedad) error
}
