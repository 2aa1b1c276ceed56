package queries

import (
	"errors"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
)

var ErrListItemsQueryIsNotConstructed = errors.New(
	"ListItemsQuery must be created via NewListItemsQuery constructor",
)

// ListItemsQuery retrieves units filtered by estado, sub-estado and/or lote.
// All filters are optional; an empty query lists everything in the tenant.
type ListItemsQuery struct {
	estado    *item.Estado
	subEstado *item.SubEstado
	lote      *string

	guard kernel.ConstructorGuard
}

// NewListItemsQuery creates a unit listing query.
func NewListItemsQuery(estado *item.Estado, subEstado *item.SubEstado, lote *string) (ListItemsQuery, error) {
	if estado != nil {
		if err := estado.Validate(); err != nil {
			return ListItemsQuery{}, err
		}
	}
	if subEstado != nil {
		if err := subEstado.Validate(); err != nil {
			return ListItemsQuery{}, err
		}
	}

	return ListItemsQuery{
		estado:    estado,
		subEstado: subEstado,
		lote:      lote,
		guard:     kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListItemsQuery) Validate() error {
	return q.guard.Validate(ErrListItemsQueryIsNotConstructed)
}

// Estado returns the macro-state filter, or nil.
func (q ListItemsQuery) Estado() *item.Estado { return q.estado }

// SubEstado returns the sub-state filter, or nil.
func (q ListItemsQuery) SubEstado() *item.SubEstado { return q.subEstado }

// Lote returns the batch filter, or nil.
func (q ListItemsQuery) Lote() *string { return q.lote }

// ListItemsQueryResponse is one unit's listing row.
type ListItemsQueryResponse struct {
	ID          kernel.UUID
	Rfid        string
	ModeloID    kernel.UUID
	Kind        string
	Litraje     string
	Estado      string
	SubEstado   string
	Activo      bool
	SedeID      *kernel.UUID
	CajaID      *kernel.UUID
	Lote        *string
	NumeroOrden *string
}
