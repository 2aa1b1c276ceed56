package commands

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

var ErrProcessDevolutionCommandIsNotConstructed = errors.New(
	"ProcessDevolutionCommand must be created via NewProcessDevolutionCommand constructor",
)

// ProcessDevolutionCommand represents a returning box's devolution: the reuse
// policy decides between immediate reuse and pending inspection, and the
// decision is applied.
type ProcessDevolutionCommand struct { //nolint:recvcheck //using for validation
	cajaID       kernel.UUID
	requestedSec *int64

	guard kernel.ConstructorGuard
}

// NewProcessDevolutionCommand creates a devolution command for one box.
// A requested threshold may only extend the configured wait, never shorten
// it; the policy rejects anything lower.
func NewProcessDevolutionCommand(cajaID kernel.UUID, requestedSec *int64) (ProcessDevolutionCommand, error) {
	if err := cajaID.Validate(); err != nil {
		return ProcessDevolutionCommand{}, err
	}
	if requestedSec != nil && *requestedSec <= 0 {
		return ProcessDevolutionCommand{}, errs.NewValueIsOutOfRangeError(
			"reuse_threshold_sec", *requestedSec, 1, int64(1<<31))
	}

	return ProcessDevolutionCommand{
		cajaID:       cajaID,
		requestedSec: requestedSec,
		guard:        kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ProcessDevolutionCommand) Validate() error {
	return c.guard.Validate(ErrProcessDevolutionCommandIsNotConstructed)
}

// CajaID returns the returning box.
func (c ProcessDevolutionCommand) CajaID() kernel.UUID {
	return c.cajaID
}

// RequestedSec returns the caller's reuse threshold, or nil.
func (c ProcessDevolutionCommand) RequestedSec() *int64 {
	return c.requestedSec
}
