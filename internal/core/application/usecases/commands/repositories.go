// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"coldchain/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
// Begin pins the transaction to the tenant schema carried on the context.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// ItemRepoFactory provides access to the item repository within a transaction.
	ItemRepoFactory interface {
		ItemRepository() ports.ItemRepository
	}

	// CajaRepoFactory provides access to the caja repository within a transaction.
	CajaRepoFactory interface {
		CajaRepository() ports.CajaRepository
	}

	// TimerRepoFactory provides access to the timer repository within a transaction.
	TimerRepoFactory interface {
		TimerRepository() ports.TimerRepository
	}

	// TimerConfigRepoFactory provides access to timer configuration within a transaction.
	TimerConfigRepoFactory interface {
		TimerConfigRepository() ports.TimerConfigRepository
	}

	// ModeloRepoFactory provides access to the modelo catalog within a transaction.
	ModeloRepoFactory interface {
		ModeloRepository() ports.ModeloRepository
	}

	// OrdenRepoFactory provides access to the orden repository within a transaction.
	OrdenRepoFactory interface {
		OrdenRepository() ports.OrdenRepository
	}

	// NovedadRepoFactory provides access to the novedad repository within a transaction.
	NovedadRepoFactory interface {
		NovedadRepository() ports.NovedadRepository
	}

	// ItemUoW manages transactions for item-only operations such as intake
	// and traslados.
	ItemUoW interface {
		TxManager
		ItemRepoFactory
		ModeloRepoFactory
	}

	// ItemUoWFactory creates new item unit of work instances.
	ItemUoWFactory interface {
		Create() ItemUoW
	}

	// PhaseUoW manages transactions for phase scans. Scans touch items,
	// their cajas on despacho and retorno, and the timers those phases arm.
	PhaseUoW interface {
		TxManager
		ItemRepoFactory
		CajaRepoFactory
		TimerRepoFactory
		TimerConfigRepoFactory
	}

	// PhaseUoWFactory creates new phase unit of work instances.
	PhaseUoWFactory interface {
		Create() PhaseUoW
	}

	// CajaUoW manages transactions for caja assembly and teardown.
	CajaUoW interface {
		TxManager
		ItemRepoFactory
		CajaRepoFactory
		TimerRepoFactory
		TimerConfigRepoFactory
		OrdenRepoFactory
	}

	// CajaUoWFactory creates new caja unit of work instances.
	CajaUoWFactory interface {
		Create() CajaUoW
	}

	// NovedadUoW manages transactions for novedad registration, which can
	// disable items, shrink caja membership and tear down timers.
	NovedadUoW interface {
		TxManager
		ItemRepoFactory
		CajaRepoFactory
		TimerRepoFactory
		NovedadRepoFactory
	}

	// NovedadUoWFactory creates new novedad unit of work instances.
	NovedadUoWFactory interface {
		Create() NovedadUoW
	}
)
