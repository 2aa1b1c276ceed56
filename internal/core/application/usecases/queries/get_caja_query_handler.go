package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/pkg/errs"
)

// GetCajaQueryHandler reads one box with members, order associations and
// cronometer rows, including inactive timer rows kept as history.
type GetCajaQueryHandler struct {
	db *gorm.DB
}

// NewGetCajaQueryHandler creates a handler for box detail queries.
func NewGetCajaQueryHandler(db *gorm.DB) GetCajaQueryHandler {
	return GetCajaQueryHandler{db: db}
}

// Handle reads the box inside one tenant-pinned transaction.
func (h GetCajaQueryHandler) Handle(ctx context.Context, query GetCajaQuery) (GetCajaQueryResponse, error) {
	var resp GetCajaQueryResponse

	if err := query.Validate(); err != nil {
		return resp, err
	}

	err := withTenantTx(ctx, h.db, func(tx *gorm.DB) error {
		if err := h.readCaja(tx, query.CajaID(), &resp); err != nil {
			return err
		}
		if err := h.readMembers(tx, query.CajaID(), &resp); err != nil {
			return err
		}
		if err := h.readOrdenes(tx, query.CajaID(), &resp); err != nil {
			return err
		}
		return h.readTimers(tx, query.CajaID(), &resp)
	})
	if err != nil {
		return GetCajaQueryResponse{}, err
	}

	return resp, nil
}

func (h GetCajaQueryHandler) readCaja(tx *gorm.DB, cajaID kernel.UUID, resp *GetCajaQueryResponse) error {
	row := tx.Raw(`
		SELECT id, lote, litraje, created_at
		FROM cajas
		WHERE id = ?
	`, cajaID.String()).Row()

	var id uuid.UUID
	if err := row.Scan(&id, &resp.Lote, &resp.Litraje, &resp.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NewObjectNotFoundError("caja", cajaID.String())
		}
		return err
	}

	converted, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return err
	}
	resp.ID = converted
	return nil
}

func (h GetCajaQueryHandler) readMembers(tx *gorm.DB, cajaID kernel.UUID, resp *GetCajaQueryResponse) error {
	rows, err := tx.Raw(`
		SELECT ci.item_id, ci.rfid, ci.rol, i.estado, i.sub_estado, i.activo
		FROM caja_items ci
		JOIN items i ON i.id = ci.item_id
		WHERE ci.caja_id = ?
		ORDER BY ci.rol, ci.rfid
	`, cajaID.String()).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			member           CajaMemberResponse
			itemID           uuid.UUID
			rol, est, subEst int
		)
		if err = rows.Scan(&itemID, &member.Rfid, &rol, &est, &subEst, &member.Activo); err != nil {
			return err
		}
		if member.ItemID, err = kernel.UUIDFromBytes(itemID[:]); err != nil {
			return err
		}
		member.Rol = caja.Rol(rol).String()
		member.Estado = item.Estado(est).String()
		member.SubEstado = item.SubEstado(subEst).String()
		resp.Members = append(resp.Members, member)
	}
	return rows.Err()
}

func (h GetCajaQueryHandler) readOrdenes(tx *gorm.DB, cajaID kernel.UUID, resp *GetCajaQueryResponse) error {
	rows, err := tx.Raw(`
		SELECT orden_id
		FROM caja_ordenes
		WHERE caja_id = ?
		ORDER BY created_at
	`, cajaID.String()).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ordenID uuid.UUID
		if err = rows.Scan(&ordenID); err != nil {
			return err
		}
		converted, convErr := kernel.UUIDFromBytes(ordenID[:])
		if convErr != nil {
			return convErr
		}
		resp.OrdenIDs = append(resp.OrdenIDs, converted)
	}
	return rows.Err()
}

func (h GetCajaQueryHandler) readTimers(tx *gorm.DB, cajaID kernel.UUID, resp *GetCajaQueryResponse) error {
	rows, err := tx.Raw(`
		SELECT phase, active, started_at, duration_sec, completed_at
		FROM timers
		WHERE owner_type = ? AND owner_ref = ?
		ORDER BY phase
	`, int(timer.OwnerCaja), cajaID.String()).Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t     CajaTimerResponse
			phase int
		)
		if err = rows.Scan(&phase, &t.Active, &t.StartedAt, &t.DurationSec, &t.CompletedAt); err != nil {
			return err
		}
		t.Phase = timer.Phase(phase).String()
		resp.Timers = append(resp.Timers, t)
	}
	return rows.Err()
}
