package commands

import (
	"context"
	"time"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/core/domain/services"
	"coldchain/internal/pkg/errs"
)

// CreateCajaResult reports the composed box.
type CreateCajaResult struct {
	CajaID   kernel.UUID
	Lote     string
	OrdenIDs []kernel.UUID
}

// CreateCajaCommandHandler composes a box: validates the scanned set through
// the composition engine, creates the caja with a fresh lot code, moves all
// eight units into assembly, attaches orders and purges the TICs'
// pre-conditioning timer rows. All of it commits atomically or not at all.
type CreateCajaCommandHandler struct {
	uowFactory  CajaUoWFactory
	composition services.CompositionEngine
	clock       func() time.Time
}

// NewCreateCajaCommandHandler creates a handler for box composition.
func NewCreateCajaCommandHandler(uowFactory CajaUoWFactory) CreateCajaCommandHandler {
	return CreateCajaCommandHandler{
		uowFactory:  uowFactory,
		composition: services.NewCompositionEngine(),
		clock:       time.Now,
	}
}

// Handle processes the composition command. Unlike scans, composition is
// all-or-nothing: the first offending code fails the whole request.
func (h *CreateCajaCommandHandler) Handle(ctx context.Context, cmd CreateCajaCommand) (CreateCajaResult, error) {
	var result CreateCajaResult

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

	units, err := h.loadUnits(ctx, uow, cmd.Codes())
	if err != nil {
		return result, err
	}

	ordered := make([]*item.Item, 0, len(units))
	for _, code := range cmd.Codes() {
		if unit, ok := units[code]; ok {
			ordered = append(ordered, unit)
		}
	}
	if err = guardSede(ctx, ordered); err != nil {
		return result, err
	}

	composition := h.composition.Validate(cmd.Codes(), units)
	if !composition.IsValid() {
		first, _ := composition.FirstInvalid()
		return result, errs.NewStateConflictError("COMPOSITION_INVALID",
			first.Rfid+": "+first.Reason)
	}

	members := make([]caja.Member, 0, len(composition.Valid))
	for _, valid := range composition.Valid {
		unit := units[valid.Rfid]
		members = append(members, caja.Member{
			ItemID: unit.ID(),
			Rfid:   unit.Rfid(),
			Rol:    valid.Rol,
		})
	}

	lote := caja.GenerateLote(*composition.Litraje)
	box, err := caja.NewCaja(kernel.NewUUID(), lote, *composition.Litraje, members, h.clock())
	if err != nil {
		return result, err
	}

	ordenes, err := h.attachOrdenes(ctx, uow, box, cmd.OrdenIDs())
	if err != nil {
		return result, err
	}

	if err = uow.CajaRepository().Add(ctx, box); err != nil {
		return result, err
	}

	itemRepo := uow.ItemRepository()
	timerRepo := uow.TimerRepository()
	for _, code := range cmd.Codes() {
		unit := units[code]
		if err = unit.EnterEnsamblaje(box.ID(), lote); err != nil {
			return result, err
		}
		if len(ordenes) > 0 {
			if err = unit.AttachOrden(ordenes[0].Numero()); err != nil {
				return result, err
			}
		}
		if err = itemRepo.Update(ctx, unit); err != nil {
			return result, err
		}

		// A boxed TIC is done pre-conditioning. Its timer rows are history
		// nobody will read again.
		if err = timerRepo.DeleteByOwner(ctx, timer.OwnerItem, unit.Rfid().String()); err != nil {
			return result, err
		}
	}

	if err = h.armEnsamblajeTimer(ctx, uow, box, ordered); err != nil {
		return result, err
	}

	if err = uow.Commit(ctx); err != nil {
		return result, err
	}

	result.CajaID = box.ID()
	result.Lote = lote
	result.OrdenIDs = box.OrdenIDs()
	return result, nil
}

func (h *CreateCajaCommandHandler) loadUnits(
	ctx context.Context,
	uow CajaUoW,
	codes []string,
) (map[string]*item.Item, error) {
	lookup := make([]kernel.Rfid, 0, len(codes))
	for _, code := range codes {
		rfid, err := kernel.NewRfid(code)
		if err != nil {
			return nil, err
		}
		lookup = append(lookup, rfid)
	}

	found, err := uow.ItemRepository().FindByRfids(ctx, lookup)
	if err != nil {
		return nil, err
	}

	units := make(map[string]*item.Item, len(found))
	for _, unit := range found {
		units[unit.Rfid().String()] = unit
	}
	return units, nil
}

func (h *CreateCajaCommandHandler) attachOrdenes(
	ctx context.Context,
	uow CajaUoW,
	box *caja.Caja,
	ordenIDs []kernel.UUID,
) ([]ordenInfo, error) {
	var attached []ordenInfo
	ordenRepo := uow.OrdenRepository()
	for _, id := range ordenIDs {
		o, err := ordenRepo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !o.Activo() {
			return nil, errs.NewStateConflictError("ORDEN_DISABLED",
				"order "+o.Numero()+" is disabled")
		}
		if err = box.AttachOrden(id); err != nil {
			return nil, err
		}
		attached = append(attached, ordenInfo{id: id, numero: o.Numero()})
	}
	return attached, nil
}

type ordenInfo struct {
	id     kernel.UUID
	numero string
}

func (o ordenInfo) Numero() string { return o.numero }

// armEnsamblajeTimer starts the box's assembly cronometer when a configured
// duration exists for any member model.
func (h *CreateCajaCommandHandler) armEnsamblajeTimer(
	ctx context.Context,
	uow CajaUoW,
	box *caja.Caja,
	members []*item.Item,
) error {
	modelSeen := make(map[string]bool)
	litrajeSeen := make(map[string]bool)
	var modelIDs []kernel.UUID
	var litrajes []string
	for _, unit := range members {
		if !modelSeen[unit.ModelID().String()] {
			modelSeen[unit.ModelID().String()] = true
			modelIDs = append(modelIDs, unit.ModelID())
		}
		if !litrajeSeen[unit.Litraje().String()] {
			litrajeSeen[unit.Litraje().String()] = true
			litrajes = append(litrajes, unit.Litraje().String())
		}
	}

	configs, err := uow.TimerConfigRepository().FindCandidates(ctx, modelIDs, litrajes)
	if err != nil {
		return err
	}

	sedeID := sedeFromScope(ctx)
	var duration int64
	found := false
	for _, unit := range members {
		if d, ok := resolveDuration(configs, sedeID, unit.ModelID(), unit.Litraje(),
			func(cfg *timer.Config) int64 { return cfg.MaxSobreAtemperadoSec() }); ok && d > duration {
			duration, found = d, true
		}
	}
	if !found {
		return nil
	}

	lote := box.Lote()
	t, err := timer.NewTimer(kernel.NewUUID(), timer.OwnerCaja, box.ID().String(), timer.PhaseEnsamblaje, &lote)
	if err != nil {
		return err
	}
	if err = t.Start(h.clock(), duration); err != nil {
		return err
	}
	return uow.TimerRepository().Upsert(ctx, t)
}
