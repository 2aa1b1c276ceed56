package commands

import (
	"errors"
	"fmt"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

var ErrCreateCajaCommandIsNotConstructed = errors.New(
	"CreateCajaCommand must be created via NewCreateCajaCommand constructor",
)

// CreateCajaCommand represents a request to compose a box from exactly eight
// scanned unit codes, optionally attaching shipping orders.
type CreateCajaCommand struct { //nolint:recvcheck //using for validation
	codes    []string
	ordenIDs []kernel.UUID

	guard kernel.ConstructorGuard
}

// NewCreateCajaCommand creates a box composition command. The code count is
// checked here; role, state and capacity-class rules belong to the
// composition engine.
func NewCreateCajaCommand(codes []string, ordenIDs []kernel.UUID) (CreateCajaCommand, error) {
	cmd := CreateCajaCommand{
		guard: kernel.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCodes(codes),
		cmd.setOrdenIDs(ordenIDs),
	); err != nil {
		return CreateCajaCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateCajaCommand) Validate() error {
	return c.guard.Validate(ErrCreateCajaCommandIsNotConstructed)
}

// Codes returns the eight scanned tag codes.
func (c CreateCajaCommand) Codes() []string {
	return c.codes
}

// OrdenIDs returns the shipping orders to attach, possibly empty.
func (c CreateCajaCommand) OrdenIDs() []kernel.UUID {
	return c.ordenIDs
}

func (c *CreateCajaCommand) setCodes(codes []string) error {
	if len(codes) != caja.RequiredTotal {
		return errs.NewValueIsInvalidErrorWithCause("codes",
			fmt.Errorf("a box takes exactly %d units, got %d", caja.RequiredTotal, len(codes)))
	}

	c.codes = codes
	return nil
}

func (c *CreateCajaCommand) setOrdenIDs(ordenIDs []kernel.UUID) error {
	for _, id := range ordenIDs {
		if err := id.Validate(); err != nil {
			return err
		}
	}

	c.ordenIDs = ordenIDs
	return nil
}
