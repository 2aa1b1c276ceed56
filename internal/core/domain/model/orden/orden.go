// Package orden holds the order registry entry the engine tags boxes with.
// Order administration is outside this service; the engine only needs to
// validate existence/enablement on attach and to close orders when their box
// is torn down after inspection.
package orden

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// ErrOrdenIsNotConstructed is returned when an Orden instance was not created
// through NewOrden or RestoreOrden.
var ErrOrdenIsNotConstructed = errors.New("Orden must be created via NewOrden constructor")

// Orden is one order registry row.
type Orden struct {
	id     kernel.UUID
	numero string
	activo bool

	guard kernel.ConstructorGuard
}

// NewOrden creates an enabled order entry.
func NewOrden(id kernel.UUID, numero string) (*Orden, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if numero == "" {
		return nil, errs.NewValueIsRequiredError("numero")
	}
	return &Orden{
		id:     id,
		numero: numero,
		activo: true,
		guard:  kernel.NewConstructorGuard(),
	}, nil
}

// RestoreOrden rehydrates an order entry from persistence.
func RestoreOrden(id kernel.UUID, numero string, activo bool) (*Orden, error) {
	o, err := NewOrden(id, numero)
	if err != nil {
		return nil, err
	}
	o.activo = activo
	return o, nil
}

// Validate ensures the Orden was created through a constructor.
func (o *Orden) Validate() error {
	if o == nil {
		return ErrOrdenIsNotConstructed
	}
	return o.guard.Validate(ErrOrdenIsNotConstructed)
}

// ID returns the order identity.
func (o *Orden) ID() kernel.UUID { return o.id }

// Numero returns the operator-facing order number.
func (o *Orden) Numero() string { return o.numero }

// Activo reports whether the order accepts new box associations.
func (o *Orden) Activo() bool { return o.activo }

// Deshabilitar closes the order; it no longer accepts box associations.
func (o *Orden) Deshabilitar() {
	o.activo = false
}
