package commands

import (
	"context"
	"errors"
	"time"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/pkg/errs"
)

// StartTimerCommandHandler arms cronometers. Re-arming an active cronometer
// overwrites its start time and duration, which is the intended idempotent
// upsert behaviour.
type StartTimerCommandHandler struct {
	uowFactory PhaseUoWFactory
	clock      func() time.Time
}

// NewStartTimerCommandHandler creates a handler for cronometer starts.
func NewStartTimerCommandHandler(uowFactory PhaseUoWFactory) StartTimerCommandHandler {
	return StartTimerCommandHandler{
		uowFactory: uowFactory,
		clock:      time.Now,
	}
}

// Handle arms the cronometer, inserting the row when it does not exist yet.
func (h *StartTimerCommandHandler) Handle(ctx context.Context, cmd StartTimerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	timerRepo := uow.TimerRepository()
	t, err := timerRepo.Get(ctx, cmd.OwnerType(), cmd.OwnerRef(), cmd.Phase())
	if err != nil {
		if !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}
		t, err = timer.NewTimer(kernel.NewUUID(), cmd.OwnerType(), cmd.OwnerRef(), cmd.Phase(), cmd.Lote())
		if err != nil {
			return err
		}
	}

	if err = t.Start(h.clock(), cmd.DurationSec()); err != nil {
		return err
	}
	if err = timerRepo.Upsert(ctx, t); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// ClearTimerCommandHandler deactivates a cronometer without side effects on
// item state, allowing phase re-entry.
type ClearTimerCommandHandler struct {
	uowFactory PhaseUoWFactory
}

// NewClearTimerCommandHandler creates a handler for cronometer clears.
func NewClearTimerCommandHandler(uowFactory PhaseUoWFactory) ClearTimerCommandHandler {
	return ClearTimerCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle clears the cronometer. Clearing an already-inactive cronometer is a
// no-op, not an error.
func (h *ClearTimerCommandHandler) Handle(ctx context.Context, cmd StopTimerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	timerRepo := uow.TimerRepository()
	t, err := timerRepo.Get(ctx, cmd.OwnerType(), cmd.OwnerRef(), cmd.Phase())
	if err != nil {
		return err
	}

	if t.Active() {
		t.Clear()
		if err = timerRepo.Update(ctx, t); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}

// CompleteTimerCommandHandler explicitly completes a cronometer: the timer
// deactivates with a completion timestamp and the owning unit(s) take the
// phase's done transition.
type CompleteTimerCommandHandler struct {
	uowFactory PhaseUoWFactory
	clock      func() time.Time
}

// NewCompleteTimerCommandHandler creates a handler for explicit completions.
func NewCompleteTimerCommandHandler(uowFactory PhaseUoWFactory) CompleteTimerCommandHandler {
	return CompleteTimerCommandHandler{
		uowFactory: uowFactory,
		clock:      time.Now,
	}
}

// Handle completes the cronometer and transitions its owners.
func (h *CompleteTimerCommandHandler) Handle(ctx context.Context, cmd StopTimerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	timerRepo := uow.TimerRepository()
	t, err := timerRepo.Get(ctx, cmd.OwnerType(), cmd.OwnerRef(), cmd.Phase())
	if err != nil {
		return err
	}

	if err = t.Complete(h.clock()); err != nil {
		return err
	}
	if err = timerRepo.Update(ctx, t); err != nil {
		return err
	}
	if err = applyPhaseDone(ctx, uow, t); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// applyPhaseDone moves a completed cronometer's owning unit(s) into the
// phase's done sub-state. Units that already moved on are skipped: the
// transition guard makes completion idempotent under concurrent sweeps.
func applyPhaseDone(ctx context.Context, uow PhaseUoW, t *timer.Timer) error {
	done := phaseDoneTransition(t.Phase())
	if done == nil {
		return nil
	}

	owners, err := timerOwners(ctx, uow, t)
	if err != nil {
		return err
	}

	itemRepo := uow.ItemRepository()
	for _, unit := range owners {
		if err = done(unit); err != nil {
			var conflict *errs.StateConflictError
			if errors.As(err, &conflict) {
				continue
			}
			return err
		}
		if err = itemRepo.Update(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

func phaseDoneTransition(phase timer.Phase) func(*item.Item) error {
	switch phase {
	case timer.PhaseCongelamiento:
		return (*item.Item).MarkCongelado
	case timer.PhaseAtemperamiento:
		return (*item.Item).MarkAtemperado
	case timer.PhaseEnsamblaje:
		return (*item.Item).MarkEnsamblado
	case timer.PhasePendienteInspeccion:
		return (*item.Item).EnterInspeccion
	default:
		// Transit and inspection expiries alert but do not move units;
		// dispatch return and inspection completion are operator actions.
		return nil
	}
}

func timerOwners(ctx context.Context, uow PhaseUoW, t *timer.Timer) ([]*item.Item, error) {
	itemRepo := uow.ItemRepository()

	switch t.OwnerType() {
	case timer.OwnerItem:
		rfid, err := kernel.NewRfid(t.OwnerRef())
		if err != nil {
			return nil, err
		}
		unit, err := itemRepo.GetByRfid(ctx, rfid)
		if err != nil {
			if errors.Is(err, errs.ErrObjectNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []*item.Item{unit}, nil

	case timer.OwnerSeccion:
		if t.Lote() == nil {
			return nil, nil
		}
		return itemRepo.GetByLote(ctx, *t.Lote())

	case timer.OwnerCaja:
		cajaID, err := kernel.UUIDFromString(t.OwnerRef())
		if err != nil {
			return nil, err
		}
		return itemRepo.GetByCaja(ctx, cajaID)

	default:
		return nil, nil
	}
}
