package commands

import (
	"context"
	"errors"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// StartTrasladoCommandHandler sends resting units into transit towards
// another sede. The cross-sede guard still applies at the origin: a caller
// cannot ship out units that belong to a different warehouse.
type StartTrasladoCommandHandler struct {
	uowFactory ItemUoWFactory
}

// NewStartTrasladoCommandHandler creates a relocation start handler.
func NewStartTrasladoCommandHandler(uowFactory ItemUoWFactory) StartTrasladoCommandHandler {
	return StartTrasladoCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle moves each scanned unit to En traslado. Per-code rejections are
// reported; the rest of the batch proceeds.
func (h *StartTrasladoCommandHandler) Handle(ctx context.Context, cmd StartTrasladoCommand) (ScanResult, error) {
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

	units, err := loadByCodes(ctx, uow.ItemRepository().FindByRfids, cmd.Codes(), &result)
	if err != nil {
		return result, err
	}

	if err = guardSede(ctx, units); err != nil {
		return result, err
	}

	itemRepo := uow.ItemRepository()
	for _, unit := range units {
		if unit.SedeID() != nil && unit.SedeID().IsEqual(cmd.SedeDestino()) {
			result.Rejected = append(result.Rejected, RejectedItem{
				Rfid:   unit.Rfid().String(),
				Reason: "la unidad ya está en la sede destino",
			})
			continue
		}

		if transErr := unit.StartTraslado(); transErr != nil {
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

		if err = itemRepo.Update(ctx, unit); err != nil {
			return result, err
		}
		result.Accepted = append(result.Accepted, unit.Rfid().String())
	}

	if err = uow.Commit(ctx); err != nil {
		return result, err
	}

	return result, nil
}

// ReceiveTrasladoCommandHandler lands in-transit units at the caller's sede.
// The traslado itself is the transfer authorization, so the cross-sede guard
// does not apply here; an En traslado unit is expected to arrive from
// elsewhere.
type ReceiveTrasladoCommandHandler struct {
	uowFactory ItemUoWFactory
}

// NewReceiveTrasladoCommandHandler creates a relocation receive handler.
func NewReceiveTrasladoCommandHandler(uowFactory ItemUoWFactory) ReceiveTrasladoCommandHandler {
	return ReceiveTrasladoCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle receives each scanned unit at the caller's sede. The caller must be
// pinned to a sede: an unpinned session has no destination to land units at.
func (h *ReceiveTrasladoCommandHandler) Handle(ctx context.Context, cmd ReceiveTrasladoCommand) (ScanResult, error) {
	var result ScanResult

	if err := cmd.Validate(); err != nil {
		return result, err
	}

	destino := sedeFromScope(ctx)
	if destino == nil {
		return result, errs.NewValueIsRequiredError("sede del receptor")
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return result, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	units, err := loadByCodes(ctx, uow.ItemRepository().FindByRfids, cmd.Codes(), &result)
	if err != nil {
		return result, err
	}

	itemRepo := uow.ItemRepository()
	for _, unit := range units {
		if transErr := unit.ReceiveTraslado(*destino); transErr != nil {
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

		if err = itemRepo.Update(ctx, unit); err != nil {
			return result, err
		}
		result.Accepted = append(result.Accepted, unit.Rfid().String())
	}

	if err = uow.Commit(ctx); err != nil {
		return result, err
	}

	return result, nil
}

// loadByCodes resolves scanned codes to units, turning malformed and unknown
// codes into per-code rejections.
func loadByCodes(
	ctx context.Context,
	find func(context.Context, []kernel.Rfid) ([]*item.Item, error),
	codes []string,
	result *ScanResult,
) ([]*item.Item, error) {
	lookup := make([]kernel.Rfid, 0, len(codes))
	for _, code := range codes {
		rfid, err := kernel.NewRfid(code)
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedItem{Rfid: code, Reason: err.Error()})
			continue
		}
		lookup = append(lookup, rfid)
	}

	found, err := find(ctx, lookup)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]*item.Item, len(found))
	for _, unit := range found {
		byCode[unit.Rfid().String()] = unit
	}

	units := make([]*item.Item, 0, len(found))
	for _, rfid := range lookup {
		unit, ok := byCode[rfid.String()]
		if !ok {
			result.Rejected = append(result.Rejected, RejectedItem{Rfid: rfid.String(), Reason: "rfid desconocido"})
			continue
		}
		units = append(units, unit)
	}
	return units, nil
}
