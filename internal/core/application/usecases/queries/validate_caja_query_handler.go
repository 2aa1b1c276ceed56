package queries

import (
	"context"

	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/services"
)

// ValidateCajaQueryHandler runs the composition engine over the current state
// of the scanned units without composing anything.
type ValidateCajaQueryHandler struct {
	db          *gorm.DB
	composition services.CompositionEngine
}

// NewValidateCajaQueryHandler creates a handler for composition pre-checks.
func NewValidateCajaQueryHandler(db *gorm.DB) ValidateCajaQueryHandler {
	return ValidateCajaQueryHandler{
		db:          db,
		composition: services.NewCompositionEngine(),
	}
}

// Handle loads the scanned units and validates the proposed composition.
func (h ValidateCajaQueryHandler) Handle(
	ctx context.Context,
	query ValidateCajaQuery,
) (ValidateCajaQueryResponse, error) {
	var resp ValidateCajaQueryResponse

	if err := query.Validate(); err != nil {
		return resp, err
	}

	var units []*item.Item
	err := withTenantTx(ctx, h.db, func(tx *gorm.DB) error {
		var loadErr error
		units, loadErr = loadItems(tx, "i.rfid IN ?", query.Codes())
		return loadErr
	})
	if err != nil {
		return resp, err
	}

	byCode := make(map[string]*item.Item, len(units))
	for _, unit := range units {
		byCode[unit.Rfid().String()] = unit
	}

	result := h.composition.Validate(query.Codes(), byCode)

	resp.Cubes = result.Counts.Cubes
	resp.Vips = result.Counts.Vips
	resp.Tics = result.Counts.Tics
	resp.IsValid = result.IsValid()
	for _, valid := range result.Valid {
		resp.Valid = append(resp.Valid, ValidUnitResponse{
			Rfid:    valid.Rfid,
			Rol:     valid.Rol.String(),
			Litraje: valid.Litraje,
		})
	}
	for _, invalid := range result.Invalid {
		resp.Invalid = append(resp.Invalid, InvalidUnitResponse{
			Rfid:   invalid.Rfid,
			Reason: invalid.Reason,
		})
	}

	return resp, nil
}
