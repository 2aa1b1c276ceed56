package commands

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/pkg/errs"
)

var (
	ErrStartTimerCommandIsNotConstructed = errors.New(
		"StartTimerCommand must be created via NewStartTimerCommand constructor",
	)
	ErrStopTimerCommandIsNotConstructed = errors.New(
		"StopTimerCommand must be created via NewStopTimerCommand constructor",
	)
)

// StartTimerCommand arms (or idempotently re-arms) a cronometer for an owner
// and phase.
type StartTimerCommand struct { //nolint:recvcheck //using for validation
	ownerType   timer.OwnerType
	ownerRef    string
	phase       timer.Phase
	durationSec int64
	lote        *string

	guard kernel.ConstructorGuard
}

// NewStartTimerCommand creates a command to arm a cronometer.
func NewStartTimerCommand(
	ownerType timer.OwnerType,
	ownerRef string,
	phase timer.Phase,
	durationSec int64,
	lote *string,
) (StartTimerCommand, error) {
	cmd := StartTimerCommand{
		lote:  lote,
		guard: kernel.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOwner(ownerType, ownerRef),
		cmd.setPhase(phase),
		cmd.setDuration(durationSec),
	); err != nil {
		return StartTimerCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c StartTimerCommand) Validate() error {
	return c.guard.Validate(ErrStartTimerCommandIsNotConstructed)
}

// OwnerType returns the kind of owner the cronometer is keyed by.
func (c StartTimerCommand) OwnerType() timer.OwnerType { return c.ownerType }

// OwnerRef returns the owner key (tag code, caja id or section id).
func (c StartTimerCommand) OwnerRef() string { return c.ownerRef }

// Phase returns the timed phase.
func (c StartTimerCommand) Phase() timer.Phase { return c.phase }

// DurationSec returns the cronometer duration.
func (c StartTimerCommand) DurationSec() int64 { return c.durationSec }

// Lote returns the batch tag covered by a section cronometer, or nil.
func (c StartTimerCommand) Lote() *string { return c.lote }

func (c *StartTimerCommand) setOwner(ownerType timer.OwnerType, ownerRef string) error {
	if err := ownerType.Validate(); err != nil {
		return err
	}
	if ownerRef == "" {
		return errs.NewValueIsRequiredError("owner ref")
	}

	c.ownerType = ownerType
	c.ownerRef = ownerRef
	return nil
}

func (c *StartTimerCommand) setPhase(phase timer.Phase) error {
	if err := phase.Validate(); err != nil {
		return err
	}

	c.phase = phase
	return nil
}

func (c *StartTimerCommand) setDuration(durationSec int64) error {
	if durationSec <= 0 {
		return errs.NewValueIsOutOfRangeError("duration_sec", durationSec, 1, int64(1<<31))
	}

	c.durationSec = durationSec
	return nil
}

// StopTimerCommand clears or explicitly completes a cronometer. Clearing
// deactivates without touching item state; completing applies the phase's
// done transition to the owning unit(s).
type StopTimerCommand struct { //nolint:recvcheck //using for validation
	ownerType timer.OwnerType
	ownerRef  string
	phase     timer.Phase

	guard kernel.ConstructorGuard
}

// NewStopTimerCommand creates a command addressing an existing cronometer.
func NewStopTimerCommand(
	ownerType timer.OwnerType,
	ownerRef string,
	phase timer.Phase,
) (StopTimerCommand, error) {
	cmd := StopTimerCommand{
		guard: kernel.NewConstructorGuard(),
	}

	if err := ownerType.Validate(); err != nil {
		return StopTimerCommand{}, err
	}
	if ownerRef == "" {
		return StopTimerCommand{}, errs.NewValueIsRequiredError("owner ref")
	}
	if err := phase.Validate(); err != nil {
		return StopTimerCommand{}, err
	}

	cmd.ownerType = ownerType
	cmd.ownerRef = ownerRef
	cmd.phase = phase
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c StopTimerCommand) Validate() error {
	return c.guard.Validate(ErrStopTimerCommandIsNotConstructed)
}

// OwnerType returns the kind of owner the cronometer is keyed by.
func (c StopTimerCommand) OwnerType() timer.OwnerType { return c.ownerType }

// OwnerRef returns the owner key.
func (c StopTimerCommand) OwnerRef() string { return c.ownerRef }

// Phase returns the timed phase.
func (c StopTimerCommand) Phase() timer.Phase { return c.phase }
