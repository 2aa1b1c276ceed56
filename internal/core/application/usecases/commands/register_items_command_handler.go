package commands

import (
	"context"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
)

// RegisteredItem describes a unit created by an intake batch.
type RegisteredItem struct {
	ID   kernel.UUID
	Rfid string
}

// RejectedItem describes a tag the intake batch could not register.
type RejectedItem struct {
	Rfid   string
	Reason string
}

// RegisterItemsResult reports the outcome of an intake batch. A batch is
// never failed wholesale by a bad tag: good tags register, bad tags are
// reported back with the reason.
type RegisterItemsResult struct {
	Registered []RegisteredItem
	Rejected   []RejectedItem
}

// RegisterItemsCommandHandler handles unit intake. Each tag in the batch is
// validated, checked for duplicates and registered En bodega.
type RegisterItemsCommandHandler struct {
	uowFactory ItemUoWFactory
}

// NewRegisterItemsCommandHandler creates a handler for intake operations.
func NewRegisterItemsCommandHandler(uowFactory ItemUoWFactory) RegisterItemsCommandHandler {
	return RegisterItemsCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the intake command. The whole batch commits in a single
// transaction; rejections are per-tag and do not abort the batch.
func (h *RegisterItemsCommandHandler) Handle(
	ctx context.Context,
	cmd RegisterItemsCommand,
) (RegisterItemsResult, error) {
	var result RegisterItemsResult

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

	m, err := uow.ModeloRepository().Get(ctx, cmd.ModeloID())
	if err != nil {
		return result, err
	}

	itemRepo := uow.ItemRepository()

	parsed := make(map[string]kernel.Rfid, len(cmd.Rfids()))
	lookup := make([]kernel.Rfid, 0, len(cmd.Rfids()))
	for _, code := range cmd.Rfids() {
		rfid, rfidErr := kernel.NewRfid(code)
		if rfidErr != nil {
			result.Rejected = append(result.Rejected, RejectedItem{Rfid: code, Reason: rfidErr.Error()})
			continue
		}
		parsed[code] = rfid
		lookup = append(lookup, rfid)
	}

	existing, err := itemRepo.FindByRfids(ctx, lookup)
	if err != nil {
		return result, err
	}

	taken := make(map[string]bool, len(existing))
	for _, unit := range existing {
		taken[unit.Rfid().String()] = true
	}

	seen := make(map[string]bool, len(cmd.Rfids()))
	for _, code := range cmd.Rfids() {
		rfid, ok := parsed[code]
		if !ok {
			continue
		}

		if seen[code] {
			result.Rejected = append(result.Rejected, RejectedItem{Rfid: code, Reason: "duplicated in batch"})
			continue
		}
		seen[code] = true

		if taken[code] {
			result.Rejected = append(result.Rejected, RejectedItem{Rfid: code, Reason: "rfid already registered"})
			continue
		}

		unit, itemErr := item.NewItem(kernel.NewUUID(), rfid, m, cmd.SedeID(), cmd.ZonaID(), cmd.SeccionID())
		if itemErr != nil {
			return result, itemErr
		}

		if err = itemRepo.Add(ctx, unit); err != nil {
			return result, err
		}

		result.Registered = append(result.Registered, RegisteredItem{ID: unit.ID(), Rfid: code})
	}

	if err = uow.Commit(ctx); err != nil {
		return result, err
	}

	return result, nil
}
