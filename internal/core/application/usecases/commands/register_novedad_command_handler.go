package commands

import (
	"context"
	"time"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/novedad"
	"coldchain/internal/core/domain/model/timer"
)

// RegisterNovedadCommandHandler disables a unit over an incident. Disabling
// cascades: the unit leaves its box, its timer rows are purged, and a box
// whose inspection loses its last unit is torn down. Sibling VIP/CUBE units
// of a box whose TICs all got disabled stay in inspection for manual review
// rather than auto-returning to the warehouse.
type RegisterNovedadCommandHandler struct {
	uowFactory NovedadUoWFactory
	clock      func() time.Time
}

// NewRegisterNovedadCommandHandler creates an incident handler.
func NewRegisterNovedadCommandHandler(uowFactory NovedadUoWFactory) RegisterNovedadCommandHandler {
	return RegisterNovedadCommandHandler{
		uowFactory: uowFactory,
		clock:      time.Now,
	}
}

// Handle records the incident and applies the disable cascade atomically.
func (h *RegisterNovedadCommandHandler) Handle(ctx context.Context, cmd RegisterNovedadCommand) error {
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

	unit, err := uow.ItemRepository().GetByRfid(ctx, cmd.Rfid())
	if err != nil {
		return err
	}

	if err = guardSede(ctx, []*item.Item{unit}); err != nil {
		return err
	}

	record, err := novedad.NewNovedad(kernel.NewUUID(), unit.ID(), unit.Rfid(), cmd.Motivo(), h.clock())
	if err != nil {
		return err
	}
	if err = uow.NovedadRepository().Add(ctx, record); err != nil {
		return err
	}

	cajaID := unit.CajaID()
	wasInspeccion := unit.Estado() == item.Inspeccion

	if err = unit.Inhabilitar(); err != nil {
		return err
	}
	if err = uow.ItemRepository().Update(ctx, unit); err != nil {
		return err
	}
	if err = uow.TimerRepository().DeleteByOwner(ctx, timer.OwnerItem, unit.Rfid().String()); err != nil {
		return err
	}

	if cajaID == nil {
		return uow.Commit(ctx)
	}

	if err = h.shrinkCaja(ctx, uow, *cajaID, unit, wasInspeccion); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// shrinkCaja removes the disabled unit from its box and tears the box down
// when nothing is left to inspect.
func (h *RegisterNovedadCommandHandler) shrinkCaja(
	ctx context.Context,
	uow NovedadUoW,
	cajaID kernel.UUID,
	disabled *item.Item,
	wasInspeccion bool,
) error {
	cajaRepo := uow.CajaRepository()
	box, err := cajaRepo.GetForUpdate(ctx, cajaID)
	if err != nil {
		return err
	}

	empty, err := box.RemoveMember(disabled.ID())
	if err != nil {
		return err
	}

	if empty {
		return h.teardown(ctx, uow, box)
	}

	if err = cajaRepo.Update(ctx, box); err != nil {
		return err
	}

	if !wasInspeccion {
		return nil
	}

	// Inspection ends for the box once no member is left under inspection.
	// Remaining siblings in other states keep the box alive.
	remaining, err := uow.ItemRepository().GetByCaja(ctx, box.ID())
	if err != nil {
		return err
	}
	for _, member := range remaining {
		if member.Estado() == item.Inspeccion {
			return nil
		}
	}

	for _, member := range remaining {
		member.DetachFromCaja()
		if err = uow.ItemRepository().Update(ctx, member); err != nil {
			return err
		}
	}
	return h.teardown(ctx, uow, box)
}

func (h *RegisterNovedadCommandHandler) teardown(ctx context.Context, uow NovedadUoW, box *caja.Caja) error {
	if err := uow.TimerRepository().DeleteByOwner(ctx, timer.OwnerCaja, box.ID().String()); err != nil {
		return err
	}
	return uow.CajaRepository().Delete(ctx, box.ID())
}
