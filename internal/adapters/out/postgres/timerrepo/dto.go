// Package timerrepo persists cronometer rows and their configuration. A
// timer row is keyed by (owner_type, owner_ref, phase); re-arming the same
// key overwrites the previous countdown.
package timerrepo

import (
	"time"

	"github.com/google/uuid"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/timer"
)

// TimerDTO represents the database structure for persisting timers.
type TimerDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerType int       `gorm:"uniqueIndex:idx_timer_owner_phase;not null"`
	OwnerRef  string    `gorm:"type:varchar(64);uniqueIndex:idx_timer_owner_phase;not null"`
	Phase     int       `gorm:"uniqueIndex:idx_timer_owner_phase;index;not null"`
	Lote      *string   `gorm:"type:varchar(64);index"`

	StartedAt   *time.Time
	DurationSec *int64
	Active      bool `gorm:"index;not null"`
	CompletedAt *time.Time
}

// TableName overrides GORM's default naming to use "timers".
func (TimerDTO) TableName() string {
	return "timers"
}

// TimerConfigDTO represents the database structure for duration
// configuration. sede_id and modelo_id are both nullable: a row may apply
// globally, per facility, per model or per capacity class.
type TimerConfigDTO struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SedeID   *uuid.UUID `gorm:"type:uuid;index"`
	ModeloID *uuid.UUID `gorm:"type:uuid;index"`
	Litraje  string     `gorm:"type:varchar(16);index;not null"`

	PreCongelamientoMinSec int64 `gorm:"not null"`
	AtemperamientoSec      int64 `gorm:"not null"`
	MaxSobreAtemperadoSec  int64 `gorm:"not null"`
	VidaUtilCajaSec        int64 `gorm:"not null"`
	MinReusoSec            int64 `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "timer_configs".
func (TimerConfigDTO) TableName() string {
	return "timer_configs"
}

func fromDomain(t *timer.Timer) TimerDTO {
	return TimerDTO{
		ID:          t.ID().Bytes(),
		OwnerType:   int(t.OwnerType()),
		OwnerRef:    t.OwnerRef(),
		Phase:       int(t.Phase()),
		Lote:        t.Lote(),
		StartedAt:   t.StartedAt(),
		DurationSec: t.DurationSec(),
		Active:      t.Active(),
		CompletedAt: t.CompletedAt(),
	}
}

func toDomain(dto TimerDTO) (*timer.Timer, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return timer.RestoreTimer(
		id,
		timer.OwnerType(dto.OwnerType), dto.OwnerRef, timer.Phase(dto.Phase),
		dto.Lote,
		dto.StartedAt, dto.DurationSec, dto.Active, dto.CompletedAt,
	)
}

func configFromDomain(c *timer.Config) TimerConfigDTO {
	return TimerConfigDTO{
		ID:                     c.ID().Bytes(),
		SedeID:                 optionalBytes(c.SedeID()),
		ModeloID:               optionalBytes(c.ModeloID()),
		Litraje:                c.Litraje().String(),
		PreCongelamientoMinSec: c.PreCongelamientoMinSec(),
		AtemperamientoSec:      c.AtemperamientoSec(),
		MaxSobreAtemperadoSec:  c.MaxSobreAtemperadoSec(),
		VidaUtilCajaSec:        c.VidaUtilCajaSec(),
		MinReusoSec:            c.MinReusoSec(),
	}
}

func configToDomain(dto TimerConfigDTO) (*timer.Config, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	litraje, err := modelo.NewLitraje(dto.Litraje)
	if err != nil {
		return nil, err
	}
	sedeID, err := optionalUUID(dto.SedeID)
	if err != nil {
		return nil, err
	}
	modeloID, err := optionalUUID(dto.ModeloID)
	if err != nil {
		return nil, err
	}

	return timer.NewConfig(
		id, sedeID, modeloID, litraje,
		dto.PreCongelamientoMinSec,
		dto.AtemperamientoSec,
		dto.MaxSobreAtemperadoSec,
		dto.VidaUtilCajaSec,
		dto.MinReusoSec,
	)
}

func optionalBytes(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func optionalUUID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	converted, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return &converted, nil
}
