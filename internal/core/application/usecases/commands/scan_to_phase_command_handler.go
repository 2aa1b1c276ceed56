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

// ScanResult reports which scanned codes moved and which were rejected, with
// per-code reasons so the operator can fix and re-scan.
type ScanResult struct {
	Accepted []string
	Rejected []RejectedItem
}

// ScanToPhaseCommandHandler moves scanned units between phases. The cross-sede
// guard runs over all scanned units before any transition; state conflicts are
// per-code rejections, never wholesale failures.
type ScanToPhaseCommandHandler struct {
	uowFactory PhaseUoWFactory
	clock      func() time.Time
}

// NewScanToPhaseCommandHandler creates a handler for scan-to-phase operations.
func NewScanToPhaseCommandHandler(uowFactory PhaseUoWFactory) ScanToPhaseCommandHandler {
	return ScanToPhaseCommandHandler{
		uowFactory: uowFactory,
		clock:      time.Now,
	}
}

// Handle processes one scan batch inside a single transaction. Accepted and
// rejected codes commit together: rejection is an answer, not an abort.
func (h *ScanToPhaseCommandHandler) Handle(ctx context.Context, cmd ScanToPhaseCommand) (ScanResult, error) {
	var result ScanResult

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

	ordered, err := loadByCodes(ctx, uow.ItemRepository().FindByRfids, cmd.Codes(), &result)
	if err != nil {
		return result, err
	}

	if err = guardSede(ctx, ordered); err != nil {
		return result, err
	}

	accepted := make([]*item.Item, 0, len(ordered))
	for _, unit := range ordered {
		if transErr := h.transition(cmd, unit); transErr != nil {
			var conflict *errs.StateConflictError
			if errors.As(transErr, &conflict) {
				result.Rejected = append(result.Rejected, RejectedItem{
					Rfid:   unit.Rfid().String(),
					Reason: conflict.Reason,
				})
				continue
			}
			return result, transErr
		}
		accepted = append(accepted, unit)
	}

	extra, err := h.spreadBatch(ctx, uow, cmd, accepted)
	if err != nil {
		return result, err
	}
	accepted = append(accepted, extra...)

	itemRepo := uow.ItemRepository()
	for _, unit := range accepted {
		if err = itemRepo.Update(ctx, unit); err != nil {
			return result, err
		}
		result.Accepted = append(result.Accepted, unit.Rfid().String())
	}

	if err = h.adjustTimers(ctx, uow, cmd, accepted); err != nil {
		return result, err
	}

	if err = uow.Commit(ctx); err != nil {
		return result, err
	}

	return result, nil
}

func (h *ScanToPhaseCommandHandler) transition(cmd ScanToPhaseCommand, unit *item.Item) error {
	switch cmd.Target() {
	case TargetCongelamiento:
		lote := ""
		if cmd.Lote() != nil {
			lote = *cmd.Lote()
		}
		return unit.StartCongelamiento(lote)
	case TargetAtemperamiento:
		return unit.StartAtemperamiento()
	case TargetAtemperado:
		return unit.MarkAtemperado()
	case TargetListaDespacho:
		return unit.MarkListaParaDespacho()
	case TargetDespacho:
		return unit.Despachar(cmd.TempSalidaC(), cmd.SensorID())
	case TargetRetorno:
		return unit.MarkRetorno(cmd.TempLlegadaC())
	default:
		return cmd.Target().Validate()
	}
}

// spreadBatch widens an atemperamiento scan to the whole lote. The scanned
// unit is the trigger and had to be strictly Congelado, which transition
// already enforced; lote-mates still freezing are left alone.
func (h *ScanToPhaseCommandHandler) spreadBatch(
	ctx context.Context,
	uow PhaseUoW,
	cmd ScanToPhaseCommand,
	accepted []*item.Item,
) ([]*item.Item, error) {
	if cmd.Target() != TargetAtemperamiento || cmd.Lote() == nil || len(accepted) == 0 {
		return nil, nil
	}

	mates, err := uow.ItemRepository().GetByLote(ctx, *cmd.Lote())
	if err != nil {
		return nil, err
	}

	moved := make(map[string]bool, len(accepted))
	for _, unit := range accepted {
		moved[unit.Rfid().String()] = true
	}

	var extra []*item.Item
	for _, mate := range mates {
		if moved[mate.Rfid().String()] {
			continue
		}
		if mate.SubEstado() != item.Congelado {
			continue
		}
		if err = mate.StartAtemperamiento(); err != nil {
			return nil, err
		}
		extra = append(extra, mate)
	}
	return extra, nil
}

// adjustTimers arms, completes or clears the cronometers tied to the target
// phase for every accepted unit.
func (h *ScanToPhaseCommandHandler) adjustTimers(
	ctx context.Context,
	uow PhaseUoW,
	cmd ScanToPhaseCommand,
	accepted []*item.Item,
) error {
	if len(accepted) == 0 {
		return nil
	}

	now := h.clock()

	switch cmd.Target() {
	case TargetCongelamiento:
		return h.armItemTimers(ctx, uow, accepted, timer.PhaseCongelamiento, cmd,
			func(cfg *timer.Config) int64 { return cfg.PreCongelamientoMinSec() })
	case TargetAtemperamiento:
		return h.armItemTimers(ctx, uow, accepted, timer.PhaseAtemperamiento, cmd,
			func(cfg *timer.Config) int64 { return cfg.AtemperamientoSec() })
	case TargetAtemperado:
		return h.settleItemTimers(ctx, uow, accepted, timer.PhaseAtemperamiento, now)
	case TargetDespacho:
		return h.startTransitTimers(ctx, uow, cmd, accepted, now)
	case TargetListaDespacho, TargetRetorno:
		return nil
	default:
		return nil
	}
}

func (h *ScanToPhaseCommandHandler) armItemTimers(
	ctx context.Context,
	uow PhaseUoW,
	accepted []*item.Item,
	phase timer.Phase,
	cmd ScanToPhaseCommand,
	field func(*timer.Config) int64,
) error {
	configs, err := h.configsFor(ctx, uow, accepted)
	if err != nil {
		return err
	}

	now := h.clock()
	sedeID := sedeFromScope(ctx)
	timerRepo := uow.TimerRepository()

	for _, unit := range accepted {
		duration, ok := int64(0), false
		if cmd.DurationSec() != nil {
			duration, ok = *cmd.DurationSec(), true
		} else {
			duration, ok = resolveDuration(configs, sedeID, unit.ModelID(), unit.Litraje(), field)
		}
		if !ok {
			continue
		}

		t, timerErr := timer.NewTimer(kernel.NewUUID(), timer.OwnerItem, unit.Rfid().String(), phase, unit.Lote())
		if timerErr != nil {
			return timerErr
		}
		if timerErr = t.Start(now, duration); timerErr != nil {
			return timerErr
		}
		if timerErr = timerRepo.Upsert(ctx, t); timerErr != nil {
			return timerErr
		}
	}
	return nil
}

// settleItemTimers deactivates the phase timer of units that just left it.
func (h *ScanToPhaseCommandHandler) settleItemTimers(
	ctx context.Context,
	uow PhaseUoW,
	accepted []*item.Item,
	phase timer.Phase,
	now time.Time,
) error {
	timerRepo := uow.TimerRepository()
	for _, unit := range accepted {
		t, err := timerRepo.Get(ctx, timer.OwnerItem, unit.Rfid().String(), phase)
		if err != nil {
			if errors.Is(err, errs.ErrObjectNotFound) {
				continue
			}
			return err
		}
		if !t.Active() {
			continue
		}
		if err = t.Complete(now); err != nil {
			return err
		}
		if err = timerRepo.Update(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// startTransitTimers arms one Transito timer per caja being dispatched and
// retires its Ensamblaje timer.
func (h *ScanToPhaseCommandHandler) startTransitTimers(
	ctx context.Context,
	uow PhaseUoW,
	cmd ScanToPhaseCommand,
	accepted []*item.Item,
	now time.Time,
) error {
	byCaja := make(map[string][]*item.Item)
	for _, unit := range accepted {
		if unit.CajaID() == nil {
			continue
		}
		key := unit.CajaID().String()
		byCaja[key] = append(byCaja[key], unit)
	}

	configs, err := h.configsFor(ctx, uow, accepted)
	if err != nil {
		return err
	}

	sedeID := sedeFromScope(ctx)
	timerRepo := uow.TimerRepository()

	for cajaRef, members := range byCaja {
		duration := int64(0)
		found := false
		if cmd.DurationSec() != nil {
			duration, found = *cmd.DurationSec(), true
		} else {
			// The box's transit life is bounded by its most demanding member.
			for _, member := range members {
				if d, ok := resolveDuration(configs, sedeID, member.ModelID(), member.Litraje(),
					func(cfg *timer.Config) int64 { return cfg.VidaUtilCajaSec() }); ok && d > duration {
					duration, found = d, true
				}
			}
		}

		if ensErr := h.retireEnsamblajeTimer(ctx, uow, cajaRef); ensErr != nil {
			return ensErr
		}

		if !found {
			continue
		}

		t, timerErr := timer.NewTimer(kernel.NewUUID(), timer.OwnerCaja, cajaRef, timer.PhaseTransito, members[0].Lote())
		if timerErr != nil {
			return timerErr
		}
		if timerErr = t.Start(now, duration); timerErr != nil {
			return timerErr
		}
		if timerErr = timerRepo.Upsert(ctx, t); timerErr != nil {
			return timerErr
		}
	}
	return nil
}

func (h *ScanToPhaseCommandHandler) retireEnsamblajeTimer(ctx context.Context, uow PhaseUoW, cajaRef string) error {
	timerRepo := uow.TimerRepository()
	t, err := timerRepo.Get(ctx, timer.OwnerCaja, cajaRef, timer.PhaseEnsamblaje)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil
		}
		return err
	}
	if !t.Active() {
		return nil
	}
	t.Clear()
	return timerRepo.Update(ctx, t)
}

func (h *ScanToPhaseCommandHandler) configsFor(
	ctx context.Context,
	uow PhaseUoW,
	units []*item.Item,
) ([]*timer.Config, error) {
	modelSeen := make(map[string]bool)
	litrajeSeen := make(map[string]bool)
	var modelIDs []kernel.UUID
	var litrajes []string

	for _, unit := range units {
		if !modelSeen[unit.ModelID().String()] {
			modelSeen[unit.ModelID().String()] = true
			modelIDs = append(modelIDs, unit.ModelID())
		}
		if !litrajeSeen[unit.Litraje().String()] {
			litrajeSeen[unit.Litraje().String()] = true
			litrajes = append(litrajes, unit.Litraje().String())
		}
	}

	return uow.TimerConfigRepository().FindCandidates(ctx, modelIDs, litrajes)
}
