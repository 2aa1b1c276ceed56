// Package ordenrepo persists the order registry rows the engine tags boxes
// with. The engine only reads orders and disables them at inspection close.
package ordenrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/orden"
	"coldchain/internal/pkg/errs"
)

// OrdenDTO represents the database structure for persisting orders.
type OrdenDTO struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Numero string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Activo bool      `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "ordenes".
func (OrdenDTO) TableName() string {
	return "ordenes"
}

// GormOrdenRepository implements OrdenRepository using GORM.
type GormOrdenRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrdenRepository creates a new GORM order repository.
func NewGormOrdenRepository(db *gorm.DB, tracker aggregateTracker) *GormOrdenRepository {
	return &GormOrdenRepository{
		db:      db,
		tracker: tracker,
	}
}

// Get retrieves an order by ID.
func (r *GormOrdenRepository) Get(ctx context.Context, id kernel.UUID) (*orden.Orden, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrdenDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("orden", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Update saves an existing order to the database.
func (r *GormOrdenRepository) Update(ctx context.Context, aggregate *orden.Orden) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrdenDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func fromDomain(o *orden.Orden) OrdenDTO {
	return OrdenDTO{
		ID:     o.ID().Bytes(),
		Numero: o.Numero(),
		Activo: o.Activo(),
	}
}

func toDomain(dto OrdenDTO) (*orden.Orden, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return orden.RestoreOrden(id, dto.Numero, dto.Activo)
}
