package cajarepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// GormCajaRepository implements CajaRepository using GORM.
type GormCajaRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormCajaRepository creates a new GORM box repository.
func NewGormCajaRepository(db *gorm.DB, tracker aggregateTracker) *GormCajaRepository {
	return &GormCajaRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a newly composed box with its membership and order rows.
func (r *GormCajaRepository) Add(ctx context.Context, aggregate *caja.Caja) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, members, ordenes := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	if err := db.Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewIntegrityConflictErrorWithCause(aggregate.Lote(), err)
		}
		return err
	}
	if len(members) > 0 {
		if err := db.Create(&members).Error; err != nil {
			// The unique index on item_id fires when a unit is already a
			// member of another box.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.NewIntegrityConflictErrorWithCause(aggregate.Lote(), err)
			}
			return err
		}
	}
	if len(ordenes) > 0 {
		if err := db.Create(&ordenes).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update rewrites the box's membership and order rows. Rewriting instead of
// diffing keeps caja_items authoritative after member removals.
func (r *GormCajaRepository) Update(ctx context.Context, aggregate *caja.Caja) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, members, ordenes := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&CajaDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := db.Where("caja_id = ?", dto.ID).Delete(&CajaItemDTO{}).Error; err != nil {
		return err
	}
	if len(members) > 0 {
		if err := db.Create(&members).Error; err != nil {
			return err
		}
	}

	if err := db.Where("caja_id = ?", dto.ID).Delete(&CajaOrdenDTO{}).Error; err != nil {
		return err
	}
	if len(ordenes) > 0 {
		if err := db.Create(&ordenes).Error; err != nil {
			return err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a box by ID.
func (r *GormCajaRepository) Get(ctx context.Context, id kernel.UUID) (*caja.Caja, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate retrieves a box by ID taking a row lock on it, so concurrent
// completions of the same box serialize. Must run inside an open transaction.
func (r *GormCajaRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*caja.Caja, error) {
	return r.get(ctx, id, true)
}

func (r *GormCajaRepository) get(ctx context.Context, id kernel.UUID, forUpdate bool) (*caja.Caja, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto CajaDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("caja", id.String())
		}
		return nil, err
	}

	return r.load(ctx, dto)
}

// GetByLote retrieves a box by its lot code.
func (r *GormCajaRepository) GetByLote(ctx context.Context, lote string) (*caja.Caja, error) {
	if lote == "" {
		return nil, errs.NewValueIsRequiredError("lote")
	}

	var dto CajaDTO
	if err := r.db.WithContext(ctx).First(&dto, "lote = ?", lote).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("caja", lote)
		}
		return nil, err
	}

	return r.load(ctx, dto)
}

// GetByMember retrieves the box an item belongs to, if any.
func (r *GormCajaRepository) GetByMember(ctx context.Context, itemID kernel.UUID) (*caja.Caja, error) {
	if err := itemID.Validate(); err != nil {
		return nil, err
	}

	var membership CajaItemDTO
	if err := r.db.WithContext(ctx).First(&membership, "item_id = ?", itemID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("caja of item", itemID.String())
		}
		return nil, err
	}

	var dto CajaDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", membership.CajaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("caja", membership.CajaID.String())
		}
		return nil, err
	}

	return r.load(ctx, dto)
}

// Delete removes the box with its membership and order rows.
func (r *GormCajaRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("caja_id = ?", id.Bytes()).Delete(&CajaItemDTO{}).Error; err != nil {
		return err
	}
	if err := db.Where("caja_id = ?", id.Bytes()).Delete(&CajaOrdenDTO{}).Error; err != nil {
		return err
	}

	return db.Where("id = ?", id.Bytes()).Delete(&CajaDTO{}).Error
}

func (r *GormCajaRepository) load(ctx context.Context, dto CajaDTO) (*caja.Caja, error) {
	db := r.db.WithContext(ctx)

	var members []CajaItemDTO
	if err := db.Order("rfid").Find(&members, "caja_id = ?", dto.ID).Error; err != nil {
		return nil, err
	}

	var ordenes []CajaOrdenDTO
	if err := db.Order("created_at").Find(&ordenes, "caja_id = ?", dto.ID).Error; err != nil {
		return nil, err
	}

	return toDomain(dto, members, ordenes)
}
