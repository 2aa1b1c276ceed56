// Package modelorepo reads the item model catalog. The workflow engine never
// writes the catalog, so this repository is read-only and untracked.
package modelorepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/pkg/errs"
)

// ModeloDTO represents the database structure of one catalog entry.
type ModeloDTO struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre  string    `gorm:"type:varchar(128);not null"`
	Kind    int       `gorm:"not null"`
	Litraje string    `gorm:"type:varchar(16);index;not null"`
}

// TableName overrides GORM's default naming to use "modelos".
func (ModeloDTO) TableName() string {
	return "modelos"
}

// GormModeloRepository implements ModeloRepository using GORM.
type GormModeloRepository struct {
	db *gorm.DB
}

// NewGormModeloRepository creates a new GORM catalog repository.
func NewGormModeloRepository(db *gorm.DB) *GormModeloRepository {
	return &GormModeloRepository{db: db}
}

// Get retrieves one catalog entry by ID.
func (r *GormModeloRepository) Get(ctx context.Context, id kernel.UUID) (*modelo.Modelo, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ModeloDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("modelo", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func toDomain(dto ModeloDTO) (*modelo.Modelo, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	litraje, err := modelo.NewLitraje(dto.Litraje)
	if err != nil {
		return nil, err
	}

	return modelo.RestoreModelo(id, dto.Nombre, modelo.Kind(dto.Kind), litraje)
}
