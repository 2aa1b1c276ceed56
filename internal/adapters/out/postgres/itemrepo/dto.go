// Package itemrepo persists inventory unit aggregates. Box membership is not
// stored here: caja_items is the single authority on membership, and reads
// fill the unit's caja reference through a join.
package itemrepo

import (
	"github.com/google/uuid"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
)

// ItemDTO represents the database structure for persisting unit aggregates.
// Kind and litraje are denormalized from the catalog at intake so scans never
// re-join the modelo table on the hot path.
type ItemDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Rfid        string     `gorm:"type:varchar(24);uniqueIndex;not null"`
	ModeloID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	Kind        int        `gorm:"not null"`
	Litraje     string     `gorm:"type:varchar(16);index;not null"`
	Estado      int        `gorm:"index;not null"`
	SubEstado   int        `gorm:"index;not null"`
	Activo      bool       `gorm:"not null"`
	SedeID      *uuid.UUID `gorm:"type:uuid;index"`
	Lote        *string    `gorm:"type:varchar(64);index"`
	NumeroOrden *string    `gorm:"type:varchar(64)"`
	ZonaID      *uuid.UUID `gorm:"type:uuid"`
	SeccionID   *uuid.UUID `gorm:"type:uuid"`

	TempSalidaC  *string `gorm:"type:varchar(16)"`
	TempLlegadaC *string `gorm:"type:varchar(16)"`
	SensorID     *string `gorm:"type:varchar(64)"`

	ValidacionLimpieza     bool `gorm:"not null;default:false"`
	ValidacionFugas        bool `gorm:"not null;default:false"`
	ValidacionDesinfeccion bool `gorm:"not null;default:false"`

	// Filled by the caja_items join on reads, never written from here.
	CajaID *uuid.UUID `gorm:"->;-:migration"`
}

// TableName overrides GORM's default naming to use "items".
func (ItemDTO) TableName() string {
	return "items"
}

// fromDomain converts a unit aggregate to its database representation.
func fromDomain(unit *item.Item) ItemDTO {
	return ItemDTO{
		ID:                     unit.ID().Bytes(),
		Rfid:                   unit.Rfid().String(),
		ModeloID:               unit.ModelID().Bytes(),
		Kind:                   int(unit.Kind()),
		Litraje:                unit.Litraje().String(),
		Estado:                 int(unit.Estado()),
		SubEstado:              int(unit.SubEstado()),
		Activo:                 unit.Activo(),
		SedeID:                 optionalBytes(unit.SedeID()),
		Lote:                   unit.Lote(),
		NumeroOrden:            unit.NumeroOrden(),
		ZonaID:                 optionalBytes(unit.ZonaID()),
		SeccionID:              optionalBytes(unit.SeccionID()),
		TempSalidaC:            unit.TempSalidaC(),
		TempLlegadaC:           unit.TempLlegadaC(),
		SensorID:               unit.SensorID(),
		ValidacionLimpieza:     unit.ValidacionLimpieza(),
		ValidacionFugas:        unit.ValidacionFugas(),
		ValidacionDesinfeccion: unit.ValidacionDesinfeccion(),
	}
}

// toDomain converts a database DTO to a unit aggregate.
func toDomain(dto ItemDTO) (*item.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	modeloID, err := kernel.UUIDFromBytes(dto.ModeloID[:])
	if err != nil {
		return nil, err
	}
	rfid, err := kernel.NewRfid(dto.Rfid)
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
	cajaID, err := optionalUUID(dto.CajaID)
	if err != nil {
		return nil, err
	}
	zonaID, err := optionalUUID(dto.ZonaID)
	if err != nil {
		return nil, err
	}
	seccionID, err := optionalUUID(dto.SeccionID)
	if err != nil {
		return nil, err
	}

	return item.RestoreItem(
		id, rfid, modeloID,
		modelo.Kind(dto.Kind), litraje,
		item.Estado(dto.Estado), item.SubEstado(dto.SubEstado),
		dto.Activo,
		sedeID, cajaID,
		dto.Lote, dto.NumeroOrden,
		zonaID, seccionID,
		dto.TempSalidaC, dto.TempLlegadaC, dto.SensorID,
		dto.ValidacionLimpieza, dto.ValidacionFugas, dto.ValidacionDesinfeccion,
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
