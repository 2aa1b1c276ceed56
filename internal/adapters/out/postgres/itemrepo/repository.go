package itemrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// GormItemRepository implements ItemRepository using GORM.
type GormItemRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormItemRepository creates a new GORM unit repository.
func NewGormItemRepository(db *gorm.DB, tracker aggregateTracker) *GormItemRepository {
	return &GormItemRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new unit to the database.
func (r *GormItemRepository) Add(ctx context.Context, aggregate *item.Item) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewIntegrityConflictErrorWithCause(aggregate.Rfid().String(), err)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing unit to the database. Select("*") forces the full
// row so cleared optional fields (lote, order number, temperatures) and
// activo=false actually reach the database.
func (r *GormItemRepository) Update(ctx context.Context, aggregate *item.Item) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&ItemDTO{}).
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

// GetByRfid retrieves one unit by tag code.
func (r *GormItemRepository) GetByRfid(ctx context.Context, rfid kernel.Rfid) (*item.Item, error) {
	if err := rfid.Validate(); err != nil {
		return nil, err
	}

	var dto ItemDTO
	if err := r.withMembership(ctx).First(&dto, "items.rfid = ?", rfid.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("item", rfid.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FindByRfids retrieves the units whose tag codes exist. Missing codes are
// absent from the result rather than an error.
func (r *GormItemRepository) FindByRfids(ctx context.Context, rfids []kernel.Rfid) ([]*item.Item, error) {
	codes := make([]string, 0, len(rfids))
	for _, rfid := range rfids {
		if err := rfid.Validate(); err != nil {
			return nil, err
		}
		codes = append(codes, rfid.String())
	}

	var dtos []ItemDTO
	if err := r.withMembership(ctx).Find(&dtos, "items.rfid IN ?", codes).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetByLote retrieves every unit tagged with a batch/box lote.
func (r *GormItemRepository) GetByLote(ctx context.Context, lote string) ([]*item.Item, error) {
	if lote == "" {
		return nil, errs.NewValueIsRequiredError("lote")
	}

	var dtos []ItemDTO
	if err := r.withMembership(ctx).Find(&dtos, "items.lote = ?", lote).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetByCaja retrieves every member unit of a box.
func (r *GormItemRepository) GetByCaja(ctx context.Context, cajaID kernel.UUID) ([]*item.Item, error) {
	if err := cajaID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ItemDTO
	if err := r.withMembership(ctx).Find(&dtos, "ci.caja_id = ?", cajaID.Bytes()).Error; err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// withMembership joins caja_items so every read carries the unit's box
// reference without a second query.
func (r *GormItemRepository) withMembership(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&ItemDTO{}).
		Select("items.*, ci.caja_id AS caja_id").
		Joins("LEFT JOIN caja_items ci ON ci.item_id = items.id")
}

func toDomainSlice(dtos []ItemDTO) ([]*item.Item, error) {
	units := make([]*item.Item, 0, len(dtos))
	for _, dto := range dtos {
		unit, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	return units, nil
}
