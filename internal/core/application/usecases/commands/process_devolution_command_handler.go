package commands

import (
	"context"
	"errors"
	"time"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/core/domain/services"
	"coldchain/internal/pkg/errs"
)

// Devolution actions, as reported to the caller.
const (
	ActionReuse      = "reuse"
	ActionInspeccion = "inspeccion"
)

// DevolutionResult carries the action taken and the full policy evaluation
// that justified it.
type DevolutionResult struct {
	Action     string
	Evaluation services.ReuseEvaluation
}

// ProcessDevolutionCommandHandler receives a returning box. The reuse policy
// evaluates the transit timer against the model thresholds; a reusable box
// goes straight back into assembly, anything else waits for inspection. The
// box row is locked so two concurrent devolutions of the same box serialize.
type ProcessDevolutionCommandHandler struct {
	uowFactory CajaUoWFactory
	policy     services.ReusePolicy
	clock      func() time.Time
}

// NewProcessDevolutionCommandHandler creates a devolution handler.
func NewProcessDevolutionCommandHandler(uowFactory CajaUoWFactory) ProcessDevolutionCommandHandler {
	return ProcessDevolutionCommandHandler{
		uowFactory: uowFactory,
		policy:     services.NewReusePolicy(),
		clock:      time.Now,
	}
}

// Handle evaluates and applies the devolution decision in one transaction.
func (h *ProcessDevolutionCommandHandler) Handle(
	ctx context.Context,
	cmd ProcessDevolutionCommand,
) (DevolutionResult, error) {
	var result DevolutionResult

	if err := cmd.Validate(); err != nil {
		return result, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return result, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	box, err := uow.CajaRepository().GetForUpdate(ctx, cmd.CajaID())
	if err != nil {
		return result, err
	}

	members, err := uow.ItemRepository().GetByCaja(ctx, box.ID())
	if err != nil {
		return result, err
	}
	if len(members) == 0 {
		return result, errs.NewStateConflictError("CAJA_EMPTY", "la caja no tiene unidades")
	}

	if err = guardSede(ctx, members); err != nil {
		return result, err
	}

	transito, err := h.transitTimer(ctx, uow, box.ID())
	if err != nil {
		return result, err
	}

	eval, err := h.evaluate(ctx, uow, members, transito, cmd.RequestedSec())
	if err != nil {
		return result, err
	}
	result.Evaluation = eval

	now := h.clock()
	itemRepo := uow.ItemRepository()
	timerRepo := uow.TimerRepository()

	if eval.Reusable {
		result.Action = ActionReuse
		for _, unit := range members {
			if err = unit.ReuseIntoEnsamblaje(); err != nil {
				return result, err
			}
			if err = itemRepo.Update(ctx, unit); err != nil {
				return result, err
			}
		}
		if transito != nil && transito.Active() {
			transito.Clear()
			if err = timerRepo.Update(ctx, transito); err != nil {
				return result, err
			}
		}
		if err = h.restartEnsamblajeTimer(ctx, uow, box.ID(), box.Lote(), now, eval.EffectiveSec); err != nil {
			return result, err
		}
	} else {
		result.Action = ActionInspeccion
		for _, unit := range members {
			if err = unit.SendToPendienteInspeccion(); err != nil {
				return result, err
			}
			if err = itemRepo.Update(ctx, unit); err != nil {
				return result, err
			}
		}
		if transito != nil && transito.Active() {
			transito.Clear()
			if err = timerRepo.Update(ctx, transito); err != nil {
				return result, err
			}
		}
		// The wait before inspection runs as long as the reuse threshold the
		// box failed to meet.
		if err = h.armTimer(ctx, uow, box.ID(), box.Lote(), timer.PhasePendienteInspeccion, now, eval.EffectiveSec); err != nil {
			return result, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return result, err
	}

	return result, nil
}

func (h *ProcessDevolutionCommandHandler) transitTimer(
	ctx context.Context,
	uow CajaUoW,
	cajaID kernel.UUID,
) (*timer.Timer, error) {
	t, err := uow.TimerRepository().Get(ctx, timer.OwnerCaja, cajaID.String(), timer.PhaseTransito)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (h *ProcessDevolutionCommandHandler) evaluate(
	ctx context.Context,
	uow CajaUoW,
	members []*item.Item,
	transito *timer.Timer,
	requestedSec *int64,
) (services.ReuseEvaluation, error) {
	modelSeen := make(map[string]bool)
	litrajeSeen := make(map[string]bool)
	var refs []services.ModelRef
	var modelIDs []kernel.UUID
	var litrajes []string

	for _, unit := range members {
		key := unit.ModelID().String()
		if !modelSeen[key] {
			modelSeen[key] = true
			modelIDs = append(modelIDs, unit.ModelID())
			refs = append(refs, services.ModelRef{ModeloID: unit.ModelID(), Litraje: unit.Litraje()})
		}
		if !litrajeSeen[unit.Litraje().String()] {
			litrajeSeen[unit.Litraje().String()] = true
			litrajes = append(litrajes, unit.Litraje().String())
		}
	}

	configs, err := uow.TimerConfigRepository().FindCandidates(ctx, modelIDs, litrajes)
	if err != nil {
		return services.ReuseEvaluation{}, err
	}

	return h.policy.Evaluate(refs, configs, sedeFromScope(ctx), requestedSec, transito, h.clock()), nil
}

func (h *ProcessDevolutionCommandHandler) restartEnsamblajeTimer(
	ctx context.Context,
	uow CajaUoW,
	cajaID kernel.UUID,
	lote string,
	now time.Time,
	durationSec int64,
) error {
	return h.armTimer(ctx, uow, cajaID, lote, timer.PhaseEnsamblaje, now, durationSec)
}

func (h *ProcessDevolutionCommandHandler) armTimer(
	ctx context.Context,
	uow CajaUoW,
	cajaID kernel.UUID,
	lote string,
	phase timer.Phase,
	now time.Time,
	durationSec int64,
) error {
	if durationSec <= 0 {
		return nil
	}

	timerRepo := uow.TimerRepository()
	t, err := timerRepo.Get(ctx, timer.OwnerCaja, cajaID.String(), phase)
	if err != nil {
		if !errors.Is(err, errs.ErrObjectNotFound) {
			return err
		}
		t, err = timer.NewTimer(kernel.NewUUID(), timer.OwnerCaja, cajaID.String(), phase, &lote)
		if err != nil {
			return err
		}
	}
	if err = t.Start(now, durationSec); err != nil {
		return err
	}
	return timerRepo.Upsert(ctx, t)
}
