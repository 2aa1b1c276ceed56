// Package postgres provides the GORM-based persistence layer: a Unit of Work
// coordinating transactional writes across repositories, plus the schema
// migration bootstrap.
//
// Tenant isolation is schema-per-tenant: Begin reads the caller's scope from
// the context and pins the transaction with SET LOCAL search_path, so every
// statement inside the unit of work hits the tenant's schema only and the
// pooled connection comes back clean after commit or rollback. Cross-tenant
// operations never share a transaction.
//
// Basic usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	if err := uow.ItemRepository().Update(ctx, unit); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"coldchain/internal/adapters/out/postgres/cajarepo"
	"coldchain/internal/adapters/out/postgres/itemrepo"
	"coldchain/internal/adapters/out/postgres/modelorepo"
	"coldchain/internal/adapters/out/postgres/novedadrepo"
	"coldchain/internal/adapters/out/postgres/ordenrepo"
	"coldchain/internal/adapters/out/postgres/timerrepo"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/ports"
)

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate interface{}
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one GORM
// connection pool. Each business operation gets a fresh instance with its own
// transaction state.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory bound to a database connection.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork ready for one business transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one tenant-pinned database transaction and
// tracks the aggregates modified inside it.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction and pins it to the caller's tenant schema.
// Fails when the context carries no scope: no write happens outside a tenant.
// Calling Begin on an already-open unit of work is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	scope, err := kernel.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// The schema identifier was validated at scope construction; SET LOCAL
	// dies with the transaction.
	setSchema := fmt.Sprintf("SET LOCAL search_path TO %s, public", scope.TenantSchema())
	if err = tx.Exec(setSchema).Error; err != nil {
		_ = tx.Rollback().Error
		return err
	}

	uow.tx = tx
	return nil
}

// Commit finalizes the transaction. After commit the unit of work is spent.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. Rolling back after a successful commit
// returns gorm.ErrInvalidTransaction, which deferred rollbacks ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// ItemRepository provides unit persistence within the transaction.
func (uow *GormUnitOfWork) ItemRepository() ports.ItemRepository {
	return itemrepo.NewGormItemRepository(uow.conn(), uow)
}

// CajaRepository provides box persistence within the transaction.
func (uow *GormUnitOfWork) CajaRepository() ports.CajaRepository {
	return cajarepo.NewGormCajaRepository(uow.conn(), uow)
}

// TimerRepository provides cronometer persistence within the transaction.
func (uow *GormUnitOfWork) TimerRepository() ports.TimerRepository {
	return timerrepo.NewGormTimerRepository(uow.conn(), uow)
}

// TimerConfigRepository provides timer configuration reads within the transaction.
func (uow *GormUnitOfWork) TimerConfigRepository() ports.TimerConfigRepository {
	return timerrepo.NewGormTimerConfigRepository(uow.conn(), uow)
}

// ModeloRepository provides catalog reads within the transaction.
func (uow *GormUnitOfWork) ModeloRepository() ports.ModeloRepository {
	return modelorepo.NewGormModeloRepository(uow.conn())
}

// OrdenRepository provides order persistence within the transaction.
func (uow *GormUnitOfWork) OrdenRepository() ports.OrdenRepository {
	return ordenrepo.NewGormOrdenRepository(uow.conn(), uow)
}

// NovedadRepository provides incident persistence within the transaction.
func (uow *GormUnitOfWork) NovedadRepository() ports.NovedadRepository {
	return novedadrepo.NewGormNovedadRepository(uow.conn(), uow)
}

// TrackAggregate registers an aggregate as modified within this unit of work.
// Repositories call it on every Add/Update so post-commit processing can see
// what changed.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}
