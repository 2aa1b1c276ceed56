package timerrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/pkg/errs"
)

// GormTimerRepository implements TimerRepository using GORM.
type GormTimerRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormTimerRepository creates a new GORM timer repository.
func NewGormTimerRepository(db *gorm.DB, tracker aggregateTracker) *GormTimerRepository {
	return &GormTimerRepository{
		db:      db,
		tracker: tracker,
	}
}

// Upsert inserts the timer row, or overwrites the countdown of an existing
// row with the same owner and phase. The original row keeps its id.
func (r *GormTimerRepository) Upsert(ctx context.Context, aggregate *timer.Timer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_type"}, {Name: "owner_ref"}, {Name: "phase"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"lote", "started_at", "duration_sec", "active", "completed_at",
		}),
	}).Create(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing timer row to the database.
func (r *GormTimerRepository) Update(ctx context.Context, aggregate *timer.Timer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&TimerDTO{}).
		Where("owner_type = ? AND owner_ref = ? AND phase = ?", dto.OwnerType, dto.OwnerRef, dto.Phase).
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

// Get retrieves the timer for an owner and phase.
func (r *GormTimerRepository) Get(ctx context.Context, ownerType timer.OwnerType, ownerRef string, phase timer.Phase) (*timer.Timer, error) {
	if err := errors.Join(ownerType.Validate(), phase.Validate()); err != nil {
		return nil, err
	}
	if ownerRef == "" {
		return nil, errs.NewValueIsRequiredError("owner_ref")
	}

	var dto TimerDTO
	err := r.db.WithContext(ctx).
		First(&dto, "owner_type = ? AND owner_ref = ? AND phase = ?", int(ownerType), ownerRef, int(phase)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("timer",
				fmt.Sprintf("%s/%s/%s", ownerType.String(), ownerRef, phase.String()))
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetActiveByPhase retrieves every active timer of a phase, locking the rows
// so concurrent sweeps serialize. Must run inside an open transaction.
func (r *GormTimerRepository) GetActiveByPhase(ctx context.Context, phase timer.Phase) ([]*timer.Timer, error) {
	if err := phase.Validate(); err != nil {
		return nil, err
	}

	var dtos []TimerDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&dtos, "phase = ? AND active = ?", int(phase), true).Error
	if err != nil {
		return nil, err
	}

	timers := make([]*timer.Timer, 0, len(dtos))
	for _, dto := range dtos {
		t, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		timers = append(timers, t)
	}

	return timers, nil
}

// DeleteByOwner removes every timer row of one owner, across phases.
func (r *GormTimerRepository) DeleteByOwner(ctx context.Context, ownerType timer.OwnerType, ownerRef string) error {
	if err := ownerType.Validate(); err != nil {
		return err
	}
	if ownerRef == "" {
		return errs.NewValueIsRequiredError("owner_ref")
	}

	return r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_ref = ?", int(ownerType), ownerRef).
		Delete(&TimerDTO{}).Error
}

// GormTimerConfigRepository implements TimerConfigRepository using GORM.
type GormTimerConfigRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// NewGormTimerConfigRepository creates a new GORM timer config repository.
func NewGormTimerConfigRepository(db *gorm.DB, tracker aggregateTracker) *GormTimerConfigRepository {
	return &GormTimerConfigRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a configuration row to the database.
func (r *GormTimerConfigRepository) Add(ctx context.Context, aggregate *timer.Config) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := configFromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// FindCandidates retrieves every row that could apply to the given models,
// directly or through their capacity classes, at any scope. Callers resolve
// precedence among the candidates.
func (r *GormTimerConfigRepository) FindCandidates(ctx context.Context, modeloIDs []kernel.UUID, litrajes []string) ([]*timer.Config, error) {
	ids := make([]interface{}, 0, len(modeloIDs))
	for _, id := range modeloIDs {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		ids = append(ids, id.Bytes())
	}

	var dtos []TimerConfigDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "modelo_id IN ? OR (modelo_id IS NULL AND litraje IN ?)", ids, litrajes).Error
	if err != nil {
		return nil, err
	}

	configs := make([]*timer.Config, 0, len(dtos))
	for _, dto := range dtos {
		c, err := configToDomain(dto)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}

	return configs, nil
}
