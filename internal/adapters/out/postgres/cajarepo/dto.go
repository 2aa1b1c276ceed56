// Package cajarepo persists box aggregates across three tables: the box row
// itself, the membership rows in caja_items (the single authority on which
// unit belongs to which box) and the order associations in caja_ordenes.
package cajarepo

import (
	"time"

	"github.com/google/uuid"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
)

// CajaDTO represents the database structure for persisting box aggregates.
type CajaDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Lote      string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Litraje   string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "cajas".
func (CajaDTO) TableName() string {
	return "cajas"
}

// CajaItemDTO is one membership row. The unique index on item_id enforces
// that a unit belongs to at most one box.
type CajaItemDTO struct {
	CajaID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	ItemID uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex"`
	Rfid   string    `gorm:"type:varchar(24);not null"`
	Rol    int       `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "caja_items".
func (CajaItemDTO) TableName() string {
	return "caja_items"
}

// CajaOrdenDTO is one box/order association row. CreatedAt keeps the
// attachment order so the first associated order stays the primary one.
type CajaOrdenDTO struct {
	CajaID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	OrdenID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides GORM's default naming to use "caja_ordenes".
func (CajaOrdenDTO) TableName() string {
	return "caja_ordenes"
}

func fromDomain(box *caja.Caja) (CajaDTO, []CajaItemDTO, []CajaOrdenDTO) {
	dto := CajaDTO{
		ID:        box.ID().Bytes(),
		Lote:      box.Lote(),
		Litraje:   box.Litraje().String(),
		CreatedAt: box.CreatedAt(),
	}

	members := make([]CajaItemDTO, 0, len(box.Members()))
	for _, m := range box.Members() {
		members = append(members, CajaItemDTO{
			CajaID: dto.ID,
			ItemID: m.ItemID.Bytes(),
			Rfid:   m.Rfid.String(),
			Rol:    int(m.Rol),
		})
	}

	// Timestamps are staggered so re-reading ORDER BY created_at reproduces
	// the attachment order, keeping the first order the primary one.
	ordenes := make([]CajaOrdenDTO, 0, len(box.OrdenIDs()))
	for i, ordenID := range box.OrdenIDs() {
		ordenes = append(ordenes, CajaOrdenDTO{
			CajaID:    dto.ID,
			OrdenID:   ordenID.Bytes(),
			CreatedAt: dto.CreatedAt.Add(time.Duration(i) * time.Microsecond),
		})
	}

	return dto, members, ordenes
}

func toDomain(dto CajaDTO, members []CajaItemDTO, ordenes []CajaOrdenDTO) (*caja.Caja, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	litraje, err := modelo.NewLitraje(dto.Litraje)
	if err != nil {
		return nil, err
	}

	domainMembers := make([]caja.Member, 0, len(members))
	for _, m := range members {
		itemID, err := kernel.UUIDFromBytes(m.ItemID[:])
		if err != nil {
			return nil, err
		}
		rfid, err := kernel.NewRfid(m.Rfid)
		if err != nil {
			return nil, err
		}
		domainMembers = append(domainMembers, caja.Member{
			ItemID: itemID,
			Rfid:   rfid,
			Rol:    caja.Rol(m.Rol),
		})
	}

	ordenIDs := make([]kernel.UUID, 0, len(ordenes))
	for _, o := range ordenes {
		ordenID, err := kernel.UUIDFromBytes(o.OrdenID[:])
		if err != nil {
			return nil, err
		}
		ordenIDs = append(ordenIDs, ordenID)
	}

	return caja.RestoreCaja(id, dto.Lote, litraje, domainMembers, ordenIDs, dto.CreatedAt)
}
