package commands

import (
	"context"
	"log/slog"
	"time"

	"coldchain/internal/core/domain/model/timer"
)

// SweepExpiredTimersCommandHandler performs lazy cronometer completion.
// Active timers for the phase are loaded under row locks, expired ones flip
// inactive with the completion stamped at the expiry instant (not the read
// time), and the owning units take the phase's done transition. Safe to run
// unconditionally and concurrently on every read path.
type SweepExpiredTimersCommandHandler struct {
	uowFactory PhaseUoWFactory
	logger     *slog.Logger
	clock      func() time.Time
}

// NewSweepExpiredTimersCommandHandler creates a sweep handler.
func NewSweepExpiredTimersCommandHandler(
	uowFactory PhaseUoWFactory,
	logger *slog.Logger,
) SweepExpiredTimersCommandHandler {
	return SweepExpiredTimersCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "timer-sweep"),
		clock:      time.Now,
	}
}

// Handle completes every expired cronometer of the phase in one transaction.
// Section sweeps cover whole batches, so the alert aggregates per lote
// instead of firing once per unit.
func (h *SweepExpiredTimersCommandHandler) Handle(ctx context.Context, cmd SweepExpiredTimersCommand) error {
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
	active, err := timerRepo.GetActiveByPhase(ctx, cmd.Phase())
	if err != nil {
		return err
	}

	now := h.clock()
	completedByLote := make(map[string]int)

	for _, t := range active {
		if !t.IsExpired(now) {
			continue
		}

		if err = t.Complete(now); err != nil {
			return err
		}
		if err = timerRepo.Update(ctx, t); err != nil {
			return err
		}
		if err = applyPhaseDone(ctx, uow, t); err != nil {
			return err
		}

		if t.OwnerType() == timer.OwnerSeccion && t.Lote() != nil {
			completedByLote[*t.Lote()]++
		} else {
			h.logger.InfoContext(ctx, "timer expired",
				"phase", cmd.Phase().String(),
				"owner_type", t.OwnerType().String(),
				"owner_ref", t.OwnerRef(),
			)
		}
	}

	for lote, count := range completedByLote {
		h.logger.InfoContext(ctx, "batch timers expired",
			"phase", cmd.Phase().String(),
			"lote", lote,
			"timers", count,
		)
	}

	return uow.Commit(ctx)
}
