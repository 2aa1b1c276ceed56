package commands

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
)

var ErrSweepExpiredTimersCommandIsNotConstructed = errors.New(
	"SweepExpiredTimersCommand must be created via NewSweepExpiredTimersCommand constructor",
)

// SweepExpiredTimersCommand requests lazy completion of every expired
// cronometer of one phase. List endpoints for timed phases run this before
// reading, which is the only clock this system has.
type SweepExpiredTimersCommand struct { //nolint:recvcheck //using for validation
	phase timer.Phase

	guard kernel.ConstructorGuard
}

// NewSweepExpiredTimersCommand creates a sweep command for one phase.
func NewSweepExpiredTimersCommand(phase timer.Phase) (SweepExpiredTimersCommand, error) {
	if err := phase.Validate(); err != nil {
		return SweepExpiredTimersCommand{}, err
	}

	return SweepExpiredTimersCommand{
		phase: phase,
		guard: kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SweepExpiredTimersCommand) Validate() error {
	return c.guard.Validate(ErrSweepExpiredTimersCommandIsNotConstructed)
}

// Phase returns the phase being swept.
func (c SweepExpiredTimersCommand) Phase() timer.Phase {
	return c.phase
}
