package commands

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

var ErrCompleteInspeccionCommandIsNotConstructed = errors.New(
	"CompleteInspeccionCommand must be created via NewCompleteInspeccionCommand constructor",
)

// InspeccionConfirmation is one TIC's inspection sign-off: the operator
// confirms the unit and its three checks.
type InspeccionConfirmation struct {
	Rfid         kernel.Rfid
	Limpieza     bool
	Fugas        bool
	Desinfeccion bool
}

// CompleteInspeccionCommand represents the close of a box's inspection.
// Completion takes the full current TIC set, never a subset.
type CompleteInspeccionCommand struct { //nolint:recvcheck //using for validation
	cajaID        kernel.UUID
	confirmations []InspeccionConfirmation

	guard kernel.ConstructorGuard
}

// NewCompleteInspeccionCommand creates an inspection completion command.
func NewCompleteInspeccionCommand(
	cajaID kernel.UUID,
	confirmations []InspeccionConfirmation,
) (CompleteInspeccionCommand, error) {
	if err := cajaID.Validate(); err != nil {
		return CompleteInspeccionCommand{}, err
	}
	if len(confirmations) == 0 {
		return CompleteInspeccionCommand{}, errs.NewValueIsRequiredError("confirmations")
	}
	for _, conf := range confirmations {
		if err := conf.Rfid.Validate(); err != nil {
			return CompleteInspeccionCommand{}, err
		}
	}

	return CompleteInspeccionCommand{
		cajaID:        cajaID,
		confirmations: confirmations,
		guard:         kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteInspeccionCommand) Validate() error {
	return c.guard.Validate(ErrCompleteInspeccionCommandIsNotConstructed)
}

// CajaID returns the box whose inspection is closing.
func (c CompleteInspeccionCommand) CajaID() kernel.UUID {
	return c.cajaID
}

// Confirmations returns the per-TIC sign-offs.
func (c CompleteInspeccionCommand) Confirmations() []InspeccionConfirmation {
	return c.confirmations
}
