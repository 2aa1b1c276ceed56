package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary pinned to one tenant
// schema. It provides transaction control and tracks aggregate changes.
// Client code must explicitly manage the transaction lifecycle.
//
// Begin reads the caller Scope from the context and pins the transaction to
// the tenant's schema before any repository call runs; every multi-row
// mutation of one logical operation (state transition, timer update, box
// teardown, order flag update) commits or rolls back as a whole.
type UnitOfWork interface {
	// Begin starts a new database transaction scoped to the caller's tenant.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// ItemRepository returns an ItemRepository bound to the current transaction.
	ItemRepository() ItemRepository

	// CajaRepository returns a CajaRepository bound to the current transaction.
	CajaRepository() CajaRepository

	// TimerRepository returns a TimerRepository bound to the current transaction.
	TimerRepository() TimerRepository

	// TimerConfigRepository returns a TimerConfigRepository bound to the current transaction.
	TimerConfigRepository() TimerConfigRepository

	// ModeloRepository returns a ModeloRepository bound to the current transaction.
	ModeloRepository() ModeloRepository

	// OrdenRepository returns an OrdenRepository bound to the current transaction.
	OrdenRepository() OrdenRepository

	// NovedadRepository returns a NovedadRepository bound to the current transaction.
	NovedadRepository() NovedadRepository
}
