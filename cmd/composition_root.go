package cmd

import (
	"log/slog"

	"gorm.io/gorm"

	httpin "coldchain/internal/adapters/in/http"
	"coldchain/internal/adapters/out/postgres"
	"coldchain/internal/core/application/usecases/commands"
	"coldchain/internal/core/application/usecases/queries"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	logger     *slog.Logger
}

func NewCompositionRoot(_ Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
	}
}

// Handlers assembles every use case behind the HTTP server.
func (c *CompositionRoot) Handlers() httpin.Handlers {
	return httpin.Handlers{
		RegisterItems:      c.CreateRegisterItemsCommandHandler(),
		ScanToPhase:        c.CreateScanToPhaseCommandHandler(),
		CreateCaja:         c.CreateCreateCajaCommandHandler(),
		StartTimer:         c.CreateStartTimerCommandHandler(),
		ClearTimer:         c.CreateClearTimerCommandHandler(),
		CompleteTimer:      c.CreateCompleteTimerCommandHandler(),
		SweepTimers:        c.CreateSweepExpiredTimersCommandHandler(),
		ProcessDevolution:  c.CreateProcessDevolutionCommandHandler(),
		CompleteInspeccion: c.CreateCompleteInspeccionCommandHandler(),
		RegisterNovedad:    c.CreateRegisterNovedadCommandHandler(),
		StartTraslado:      c.CreateStartTrasladoCommandHandler(),
		ReceiveTraslado:    c.CreateReceiveTrasladoCommandHandler(),

		ListItems:          c.CreateListItemsQueryHandler(),
		GetCaja:            c.CreateGetCajaQueryHandler(),
		ValidateCaja:       c.CreateValidateCajaQueryHandler(),
		EvaluateDevolucion: c.CreateEvaluateDevolucionQueryHandler(),
	}
}

func (c *CompositionRoot) itemUoWFactory() commands.ItemUoWFactory {
	return FuncItemUoWFactory(func() commands.ItemUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) phaseUoWFactory() commands.PhaseUoWFactory {
	return FuncPhaseUoWFactory(func() commands.PhaseUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) cajaUoWFactory() commands.CajaUoWFactory {
	return FuncCajaUoWFactory(func() commands.CajaUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) novedadUoWFactory() commands.NovedadUoWFactory {
	return FuncNovedadUoWFactory(func() commands.NovedadUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateRegisterItemsCommandHandler() commands.RegisterItemsCommandHandler {
	return commands.NewRegisterItemsCommandHandler(c.itemUoWFactory())
}

func (c *CompositionRoot) CreateScanToPhaseCommandHandler() commands.ScanToPhaseCommandHandler {
	return commands.NewScanToPhaseCommandHandler(c.phaseUoWFactory())
}

func (c *CompositionRoot) CreateCreateCajaCommandHandler() commands.CreateCajaCommandHandler {
	return commands.NewCreateCajaCommandHandler(c.cajaUoWFactory())
}

func (c *CompositionRoot) CreateStartTimerCommandHandler() commands.StartTimerCommandHandler {
	return commands.NewStartTimerCommandHandler(c.phaseUoWFactory())
}

func (c *CompositionRoot) CreateClearTimerCommandHandler() commands.ClearTimerCommandHandler {
	return commands.NewClearTimerCommandHandler(c.phaseUoWFactory())
}

func (c *CompositionRoot) CreateCompleteTimerCommandHandler() commands.CompleteTimerCommandHandler {
	return commands.NewCompleteTimerCommandHandler(c.phaseUoWFactory())
}

func (c *CompositionRoot) CreateSweepExpiredTimersCommandHandler() commands.SweepExpiredTimersCommandHandler {
	return commands.NewSweepExpiredTimersCommandHandler(c.phaseUoWFactory(), c.logger)
}

func (c *CompositionRoot) CreateProcessDevolutionCommandHandler() commands.ProcessDevolutionCommandHandler {
	return commands.NewProcessDevolutionCommandHandler(c.cajaUoWFactory())
}

func (c *CompositionRoot) CreateCompleteInspeccionCommandHandler() commands.CompleteInspeccionCommandHandler {
	return commands.NewCompleteInspeccionCommandHandler(c.cajaUoWFactory())
}

func (c *CompositionRoot) CreateRegisterNovedadCommandHandler() commands.RegisterNovedadCommandHandler {
	return commands.NewRegisterNovedadCommandHandler(c.novedadUoWFactory())
}

func (c *CompositionRoot) CreateStartTrasladoCommandHandler() commands.StartTrasladoCommandHandler {
	return commands.NewStartTrasladoCommandHandler(c.itemUoWFactory())
}

func (c *CompositionRoot) CreateReceiveTrasladoCommandHandler() commands.ReceiveTrasladoCommandHandler {
	return commands.NewReceiveTrasladoCommandHandler(c.itemUoWFactory())
}

func (c *CompositionRoot) CreateListItemsQueryHandler() queries.ListItemsQueryHandler {
	return queries.NewListItemsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCajaQueryHandler() queries.GetCajaQueryHandler {
	return queries.NewGetCajaQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateValidateCajaQueryHandler() queries.ValidateCajaQueryHandler {
	return queries.NewValidateCajaQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateEvaluateDevolucionQueryHandler() queries.EvaluateDevolucionQueryHandler {
	return queries.NewEvaluateDevolucionQueryHandler(c.gormDB)
}

type FuncItemUoWFactory func() commands.ItemUoW

func (f FuncItemUoWFactory) Create() commands.ItemUoW {
	return f()
}

type FuncPhaseUoWFactory func() commands.PhaseUoW

func (f FuncPhaseUoWFactory) Create() commands.PhaseUoW {
	return f()
}

type FuncCajaUoWFactory func() commands.CajaUoW

func (f FuncCajaUoWFactory) Create() commands.CajaUoW {
	return f()
}

type FuncNovedadUoWFactory func() commands.NovedadUoW

func (f FuncNovedadUoWFactory) Create() commands.NovedadUoW {
	return f()
}
