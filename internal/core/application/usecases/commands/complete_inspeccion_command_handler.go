package commands

import (
	"context"
	"errors"
	"fmt"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/pkg/errs"
)

// CompleteInspeccionCommandHandler closes a box's inspection. The full
// current TIC set must be confirmed (partial completion is rejected), after
// which every member under inspection returns to bodega, the box and all of
// its timer rows are deleted, and orders still tied to the box are closed.
type CompleteInspeccionCommandHandler struct {
	uowFactory CajaUoWFactory
}

// NewCompleteInspeccionCommandHandler creates an inspection completion handler.
func NewCompleteInspeccionCommandHandler(uowFactory CajaUoWFactory) CompleteInspeccionCommandHandler {
	return CompleteInspeccionCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle closes the inspection in one transaction, locking the box row so a
// concurrent novedad or completion on the same box serializes.
func (h *CompleteInspeccionCommandHandler) Handle(ctx context.Context, cmd CompleteInspeccionCommand) error {
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

	box, err := uow.CajaRepository().GetForUpdate(ctx, cmd.CajaID())
	if err != nil {
		return err
	}

	members, err := uow.ItemRepository().GetByCaja(ctx, box.ID())
	if err != nil {
		return err
	}

	if err = guardSede(ctx, members); err != nil {
		return err
	}

	confirmed := make(map[string]InspeccionConfirmation, len(cmd.Confirmations()))
	for _, conf := range cmd.Confirmations() {
		confirmed[conf.Rfid.String()] = conf
	}

	if err = h.checkFullTicSet(members, confirmed); err != nil {
		return err
	}

	itemRepo := uow.ItemRepository()
	for _, member := range members {
		if member.Estado() != item.Inspeccion {
			continue
		}

		if conf, ok := confirmed[member.Rfid().String()]; ok && member.Kind() == modelo.KindTIC {
			if err = member.SetValidaciones(conf.Limpieza, conf.Fugas, conf.Desinfeccion); err != nil {
				return err
			}
		}
		if err = member.FinishInspeccion(); err != nil {
			return err
		}
		if err = itemRepo.Update(ctx, member); err != nil {
			return err
		}
	}

	if err = h.closeOrdenes(ctx, uow, box.OrdenIDs()); err != nil {
		return err
	}

	if err = uow.TimerRepository().DeleteByOwner(ctx, timer.OwnerCaja, box.ID().String()); err != nil {
		return err
	}
	if err = uow.CajaRepository().Delete(ctx, box.ID()); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// checkFullTicSet rejects partial confirmation: every TIC currently under
// inspection must be signed off, and nothing else may be.
func (h *CompleteInspeccionCommandHandler) checkFullTicSet(
	members []*item.Item,
	confirmed map[string]InspeccionConfirmation,
) error {
	current := make(map[string]bool)
	for _, member := range members {
		if member.Kind() == modelo.KindTIC && member.Estado() == item.Inspeccion {
			current[member.Rfid().String()] = true
		}
	}

	if len(current) == 0 {
		return errs.NewStateConflictError("NO_TICS_IN_INSPECCION",
			"la caja no tiene TICs en Inspección")
	}

	for rfid := range current {
		if _, ok := confirmed[rfid]; !ok {
			return errs.NewStateConflictError("INSPECCION_INCOMPLETA",
				fmt.Sprintf("falta confirmar la unidad %s", rfid))
		}
	}
	for rfid := range confirmed {
		if !current[rfid] {
			return errs.NewStateConflictError("INSPECCION_INVALIDA",
				fmt.Sprintf("la unidad %s no es un TIC en Inspección de esta caja", rfid))
		}
	}
	return nil
}

// closeOrdenes disables every order still tied to the torn-down box.
func (h *CompleteInspeccionCommandHandler) closeOrdenes(
	ctx context.Context,
	uow CajaUoW,
	ordenIDs []kernel.UUID,
) error {
	ordenRepo := uow.OrdenRepository()
	for _, id := range ordenIDs {
		o, err := ordenRepo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, errs.ErrObjectNotFound) {
				continue
			}
			return err
		}
		if !o.Activo() {
			continue
		}
		o.Deshabilitar()
		if err = ordenRepo.Update(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
