package commands

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
)

var (
	ErrStartTrasladoCommandIsNotConstructed = errors.New(
		"StartTrasladoCommand must be created via NewStartTrasladoCommand constructor",
	)
	ErrReceiveTrasladoCommandIsNotConstructed = errors.New(
		"ReceiveTrasladoCommand must be created via NewReceiveTrasladoCommand constructor",
	)
)

// StartTrasladoCommand puts resting units in transit towards another sede.
type StartTrasladoCommand struct { //nolint:recvcheck //using for validation
	codes       []string
	sedeDestino kernel.UUID

	guard kernel.ConstructorGuard
}

// NewStartTrasladoCommand creates a relocation start command.
func NewStartTrasladoCommand(codes []string, sedeDestino kernel.UUID) (StartTrasladoCommand, error) {
	if len(codes) == 0 {
		return StartTrasladoCommand{}, ErrCodesAreRequired
	}
	if err := sedeDestino.Validate(); err != nil {
		return StartTrasladoCommand{}, err
	}

	return StartTrasladoCommand{
		codes:       codes,
		sedeDestino: sedeDestino,
		guard:       kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c StartTrasladoCommand) Validate() error {
	return c.guard.Validate(ErrStartTrasladoCommandIsNotConstructed)
}

// Codes returns the scanned tag codes leaving the warehouse.
func (c StartTrasladoCommand) Codes() []string {
	return c.codes
}

// SedeDestino returns the destination warehouse.
func (c StartTrasladoCommand) SedeDestino() kernel.UUID {
	return c.sedeDestino
}

// ReceiveTrasladoCommand lands in-transit units at the caller's sede.
type ReceiveTrasladoCommand struct { //nolint:recvcheck //using for validation
	codes []string

	guard kernel.ConstructorGuard
}

// NewReceiveTrasladoCommand creates a relocation receive command.
func NewReceiveTrasladoCommand(codes []string) (ReceiveTrasladoCommand, error) {
	if len(codes) == 0 {
		return ReceiveTrasladoCommand{}, ErrCodesAreRequired
	}

	return ReceiveTrasladoCommand{
		codes: codes,
		guard: kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReceiveTrasladoCommand) Validate() error {
	return c.guard.Validate(ErrReceiveTrasladoCommandIsNotConstructed)
}

// Codes returns the scanned tag codes arriving at the warehouse.
func (c ReceiveTrasladoCommand) Codes() []string {
	return c.codes
}
