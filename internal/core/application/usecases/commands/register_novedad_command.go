package commands

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

var ErrRegisterNovedadCommandIsNotConstructed = errors.New(
	"RegisterNovedadCommand must be created via NewRegisterNovedadCommand constructor",
)

// RegisterNovedadCommand represents an incident report against one unit.
// Registering a novedad permanently disables the unit.
type RegisterNovedadCommand struct { //nolint:recvcheck //using for validation
	rfid   kernel.Rfid
	motivo string

	guard kernel.ConstructorGuard
}

// NewRegisterNovedadCommand creates an incident command.
func NewRegisterNovedadCommand(rfid kernel.Rfid, motivo string) (RegisterNovedadCommand, error) {
	if err := rfid.Validate(); err != nil {
		return RegisterNovedadCommand{}, err
	}
	if motivo == "" {
		return RegisterNovedadCommand{}, errs.NewValueIsRequiredError("motivo")
	}

	return RegisterNovedadCommand{
		rfid:   rfid,
		motivo: motivo,
		guard:  kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterNovedadCommand) Validate() error {
	return c.guard.Validate(ErrRegisterNovedadCommandIsNotConstructed)
}

// Rfid returns the affected unit's tag code.
func (c RegisterNovedadCommand) Rfid() kernel.Rfid {
	return c.rfid
}

// Motivo returns the incident reason.
func (c RegisterNovedadCommand) Motivo() string {
	return c.motivo
}
