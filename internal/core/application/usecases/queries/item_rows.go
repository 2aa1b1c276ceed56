package queries

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
)

const itemColumns = `
	i.id, i.rfid, i.modelo_id, i.kind, i.litraje, i.estado, i.sub_estado,
	i.activo, i.sede_id, ci.caja_id, i.lote, i.numero_orden, i.zona_id,
	i.seccion_id, i.temp_salida_c, i.temp_llegada_c, i.sensor_id,
	i.validacion_limpieza, i.validacion_fugas, i.validacion_desinfeccion`

// loadItems rehydrates full unit aggregates for the domain services that
// read queries delegate to (composition pre-check, reuse evaluation).
func loadItems(tx *gorm.DB, where string, args ...any) ([]*item.Item, error) {
	rows, err := tx.Raw(`
		SELECT `+itemColumns+`
		FROM items i
		LEFT JOIN caja_items ci ON ci.item_id = i.id
		WHERE `+where, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*item.Item
	for rows.Next() {
		var (
			id, modeloID           uuid.UUID
			sedeID, cajaID         *uuid.UUID
			zonaID, seccionID      *uuid.UUID
			rfid, litraje          string
			kind, estado, subEst   int
			activo                 bool
			lote, numeroOrden      *string
			tempSalida, tempLleg   *string
			sensorID               *string
			limpieza, fugas, desin bool
		)

		if err = rows.Scan(
			&id, &rfid, &modeloID, &kind, &litraje, &estado, &subEst,
			&activo, &sedeID, &cajaID, &lote, &numeroOrden, &zonaID,
			&seccionID, &tempSalida, &tempLleg, &sensorID,
			&limpieza, &fugas, &desin,
		); err != nil {
			return nil, err
		}

		unit, restoreErr := restoreItemRow(itemRow{
			id: id, modeloID: modeloID, sedeID: sedeID, cajaID: cajaID,
			zonaID: zonaID, seccionID: seccionID, rfid: rfid, litraje: litraje,
			kind: kind, estado: estado, subEstado: subEst, activo: activo,
			lote: lote, numeroOrden: numeroOrden, tempSalidaC: tempSalida,
			tempLlegadaC: tempLleg, sensorID: sensorID,
			limpiezaOK: limpieza, fugasOK: fugas, desinfeccionOK: desin,
		})
		if restoreErr != nil {
			return nil, restoreErr
		}
		units = append(units, unit)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return units, nil
}

type itemRow struct {
	id, modeloID              uuid.UUID
	sedeID, cajaID            *uuid.UUID
	zonaID, seccionID         *uuid.UUID
	rfid, litraje             string
	kind, estado, subEstado   int
	activo                    bool
	lote, numeroOrden         *string
	tempSalidaC, tempLlegadaC *string
	sensorID                  *string
	limpiezaOK, fugasOK       bool
	desinfeccionOK            bool
}

func restoreItemRow(row itemRow) (*item.Item, error) {
	id, err := kernel.UUIDFromBytes(row.id[:])
	if err != nil {
		return nil, err
	}
	modeloID, err := kernel.UUIDFromBytes(row.modeloID[:])
	if err != nil {
		return nil, err
	}
	rfid, err := kernel.NewRfid(row.rfid)
	if err != nil {
		return nil, err
	}
	litraje, err := modelo.NewLitraje(row.litraje)
	if err != nil {
		return nil, err
	}

	sedeID, err := optionalUUID(row.sedeID)
	if err != nil {
		return nil, err
	}
	cajaID, err := optionalUUID(row.cajaID)
	if err != nil {
		return nil, err
	}
	zonaID, err := optionalUUID(row.zonaID)
	if err != nil {
		return nil, err
	}
	seccionID, err := optionalUUID(row.seccionID)
	if err != nil {
		return nil, err
	}

	return item.RestoreItem(
		id, rfid, modeloID,
		modelo.Kind(row.kind), litraje,
		item.Estado(row.estado), item.SubEstado(row.subEstado),
		row.activo,
		sedeID, cajaID,
		row.lote, row.numeroOrden,
		zonaID, seccionID,
		row.tempSalidaC, row.tempLlegadaC, row.sensorID,
		row.limpiezaOK, row.fugasOK, row.desinfeccionOK,
	)
}
