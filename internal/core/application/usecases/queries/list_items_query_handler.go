package queries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
)

// ListItemsQueryHandler lists units straight from the store. Timed-phase
// listings are preceded by a timer sweep at the transport layer, so rows read
// here already reflect lazily completed phases.
type ListItemsQueryHandler struct {
	db *gorm.DB
}

// NewListItemsQueryHandler creates a handler for unit listings.
func NewListItemsQueryHandler(db *gorm.DB) ListItemsQueryHandler {
	return ListItemsQueryHandler{db: db}
}

// Handle executes the listing inside a tenant-pinned transaction. Results are
// ordered by tag code for stable scanning workflows.
func (h ListItemsQueryHandler) Handle(
	ctx context.Context,
	query ListItemsQuery,
) ([]ListItemsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	items := make([]ListItemsQueryResponse, 0)

	err := withTenantTx(ctx, h.db, func(tx *gorm.DB) error {
		sql := `
			SELECT
				i.id,
				i.rfid,
				i.modelo_id,
				i.kind,
				i.litraje,
				i.estado,
				i.sub_estado,
				i.activo,
				i.sede_id,
				ci.caja_id,
				i.lote,
				i.numero_orden
			FROM items i
			LEFT JOIN caja_items ci ON ci.item_id = i.id
			WHERE 1=1
		`
		var args []any
		if query.Estado() != nil {
			sql += " AND i.estado = ?"
			args = append(args, int(*query.Estado()))
		}
		if query.SubEstado() != nil {
			sql += " AND i.sub_estado = ?"
			args = append(args, int(*query.SubEstado()))
		}
		if query.Lote() != nil {
			sql += " AND i.lote = ?"
			args = append(args, *query.Lote())
		}
		sql += " ORDER BY i.rfid"

		rows, err := tx.Raw(sql, args...).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				resp           ListItemsQueryResponse
				id, modeloID   uuid.UUID
				sedeID, cajaID *uuid.UUID
				kind           int
				estado         int
				subEstado      int
			)

			if err = rows.Scan(
				&id,
				&resp.Rfid,
				&modeloID,
				&kind,
				&resp.Litraje,
				&estado,
				&subEstado,
				&resp.Activo,
				&sedeID,
				&cajaID,
				&resp.Lote,
				&resp.NumeroOrden,
			); err != nil {
				return err
			}

			if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
				return err
			}
			if resp.ModeloID, err = kernel.UUIDFromBytes(modeloID[:]); err != nil {
				return err
			}
			if resp.SedeID, err = optionalUUID(sedeID); err != nil {
				return err
			}
			if resp.CajaID, err = optionalUUID(cajaID); err != nil {
				return err
			}

			resp.Kind = modelo.Kind(kind).String()
			resp.Estado = item.Estado(estado).String()
			resp.SubEstado = item.SubEstado(subEstado).String()
			items = append(items, resp)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return items, nil
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
