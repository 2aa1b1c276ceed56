// Package novedadrepo persists incident records. Novedades are append-only:
// the engine writes one row per reported incident and never edits it.
package novedadrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/novedad"
)

// NovedadDTO represents the database structure for persisting incidents.
type NovedadDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Rfid      string    `gorm:"type:varchar(24);index;not null"`
	Motivo    string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "novedades".
func (NovedadDTO) TableName() string {
	return "novedades"
}

// GormNovedadRepository implements NovedadRepository using GORM.
type GormNovedadRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormNovedadRepository creates a new GORM incident repository.
func NewGormNovedadRepository(db *gorm.DB, tracker aggregateTracker) *GormNovedadRepository {
	return &GormNovedadRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new incident record to the database.
func (r *GormNovedadRepository) Add(ctx context.Context, aggregate *novedad.Novedad) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := NovedadDTO{
		ID:        aggregate.ID().Bytes(),
		ItemID:    aggregate.ItemID().Bytes(),
		Rfid:      aggregate.Rfid().String(),
		Motivo:    aggregate.Motivo(),
		CreatedAt: aggregate.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}
