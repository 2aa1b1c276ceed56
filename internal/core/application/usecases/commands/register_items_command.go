package commands

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
)

var (
	ErrRegisterItemsCommandIsNotConstructed = errors.New(
		"RegisterItemsCommand must be created via NewRegisterItemsCommand constructor",
	)
	ErrRfidsAreRequired = errors.New("at least one rfid is required")
)

// RegisterItemsCommand represents an intake request: a batch of freshly
// tagged units of a single model entering the warehouse.
type RegisterItemsCommand struct { //nolint:recvcheck //using for validation
	rfids     []string
	modeloID  kernel.UUID
	sedeID    *kernel.UUID
	zonaID    *kernel.UUID
	seccionID *kernel.UUID

	guard kernel.ConstructorGuard
}

// NewRegisterItemsCommand creates a command to register a batch of units.
// The sede is optional: unpinned units can be claimed by any sede later.
// Zona and seccion record where in the warehouse the units were shelved.
func NewRegisterItemsCommand(
	rfids []string,
	modeloID kernel.UUID,
	sedeID, zonaID, seccionID *kernel.UUID,
) (RegisterItemsCommand, error) {
	cmd := RegisterItemsCommand{
		guard: kernel.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setRfids(rfids),
		cmd.setModeloID(modeloID),
		cmd.setRef(&cmd.sedeID, sedeID),
		cmd.setRef(&cmd.zonaID, zonaID),
		cmd.setRef(&cmd.seccionID, seccionID),
	); err != nil {
		return RegisterItemsCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterItemsCommand) Validate() error {
	return c.guard.Validate(ErrRegisterItemsCommandIsNotConstructed)
}

// Rfids returns the batch of tag codes to register.
func (c RegisterItemsCommand) Rfids() []string {
	return c.rfids
}

// ModeloID returns the catalog model the units belong to.
func (c RegisterItemsCommand) ModeloID() kernel.UUID {
	return c.modeloID
}

// SedeID returns the sede the units are pinned to, or nil.
func (c RegisterItemsCommand) SedeID() *kernel.UUID {
	return c.sedeID
}

// ZonaID returns the storage zone, or nil.
func (c RegisterItemsCommand) ZonaID() *kernel.UUID {
	return c.zonaID
}

// SeccionID returns the storage section, or nil.
func (c RegisterItemsCommand) SeccionID() *kernel.UUID {
	return c.seccionID
}

func (c *RegisterItemsCommand) setRfids(rfids []string) error {
	if len(rfids) == 0 {
		return ErrRfidsAreRequired
	}

	c.rfids = rfids
	return nil
}

func (c *RegisterItemsCommand) setModeloID(modeloID kernel.UUID) error {
	if err := modeloID.Validate(); err != nil {
		return err
	}

	c.modeloID = modeloID
	return nil
}

func (c *RegisterItemsCommand) setRef(dst **kernel.UUID, ref *kernel.UUID) error {
	if ref != nil {
		if err := ref.Validate(); err != nil {
			return err
		}
	}

	*dst = ref
	return nil
}
