package services

import (
	"errors"
	"fmt"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/pkg/errs"
)

// ValidUnit is one accepted unit in a proposed composition.
type ValidUnit struct {
	Rfid    string
	Rol     caja.Rol
	Litraje string
}

// InvalidUnit is one rejected unit with its operator-readable reason.
type InvalidUnit struct {
	Rfid   string
	Reason string
}

// CompositionCounts tallies the proposed composition by role.
type CompositionCounts struct {
	Cubes int
	Vips  int
	Tics  int
}

// CompositionResult is the outcome of validating a proposed member set.
// Callers get a reason per offending code rather than an all-or-nothing
// failure, so a rejected scan tells the operator exactly what to re-scan.
type CompositionResult struct {
	Counts  CompositionCounts
	Valid   []ValidUnit
	Invalid []InvalidUnit
	Litraje *modelo.Litraje // reference capacity class, nil when undeterminable
}

// IsValid reports whether the proposed set forms a usable box.
func (r CompositionResult) IsValid() bool {
	return len(r.Invalid) == 0 &&
		r.Counts.Cubes == caja.RequiredCubes &&
		r.Counts.Vips == caja.RequiredVips &&
		r.Counts.Tics == caja.RequiredTics
}

// FirstInvalid returns the first rejected unit, if any.
func (r CompositionResult) FirstInvalid() (InvalidUnit, bool) {
	if len(r.Invalid) == 0 {
		return InvalidUnit{}, false
	}
	return r.Invalid[0], true
}

// CompositionEngine validates proposed box compositions. The engine is the
// single authority on assembly intake: exactly 1 CUBE and 1 VIP currently En
// bodega, exactly 6 TIC currently Atemperado, all eight sharing one capacity
// class, none disabled, none already boxed. Role and capacity class come from
// the explicit catalog fields on each unit; nothing is inferred from names.
type CompositionEngine struct{}

// NewCompositionEngine creates a CompositionEngine instance.
func NewCompositionEngine() CompositionEngine {
	return CompositionEngine{}
}

// Validate checks a proposed set of scanned units. scanned lists every code
// the operator presented, in scan order; units maps the codes that exist to
// their loaded aggregates; codes absent from the map are rejected as unknown.
//
// Validation is side-effect-free and idempotent: it can run as a pre-check
// before creation and again inside the creating transaction.
func (CompositionEngine) Validate(scanned []string, units map[string]*item.Item) CompositionResult {
	var result CompositionResult

	seen := make(map[string]struct{}, len(scanned))
	members := make([]*item.Item, 0, len(scanned))
	for _, code := range scanned {
		if _, dup := seen[code]; dup {
			result.Invalid = append(result.Invalid, InvalidUnit{Rfid: code, Reason: "código repetido en el escaneo"})
			continue
		}
		seen[code] = struct{}{}

		unit, ok := units[code]
		if !ok {
			result.Invalid = append(result.Invalid, InvalidUnit{Rfid: code, Reason: "unidad no encontrada"})
			continue
		}
		members = append(members, unit)
	}

	if len(scanned) != caja.RequiredTotal {
		result.Invalid = append(result.Invalid, InvalidUnit{
			Rfid:   "",
			Reason: fmt.Sprintf("se escanearon %d códigos, se requieren %d", len(scanned), caja.RequiredTotal),
		})
	}

	// The CUBE fixes the reference capacity class for the whole box.
	for _, unit := range members {
		if unit.Kind() == modelo.KindCUBE && unit.Activo() {
			litraje := unit.Litraje()
			result.Litraje = &litraje
			break
		}
	}

	for _, unit := range members {
		code := unit.Rfid().String()

		if err := unit.ValidateEnsamblaje(); err != nil {
			result.Invalid = append(result.Invalid, InvalidUnit{Rfid: code, Reason: reasonOf(err)})
			continue
		}
		if result.Litraje != nil && !unit.Litraje().IsEqual(*result.Litraje) {
			result.Invalid = append(result.Invalid, InvalidUnit{
				Rfid:   code,
				Reason: fmt.Sprintf("litraje %s no coincide con el litraje %s de la caja", unit.Litraje(), *result.Litraje),
			})
			continue
		}

		rol := caja.RolForKind(unit.Kind())
		switch rol {
		case caja.RolCube:
			result.Counts.Cubes++
		case caja.RolVip:
			result.Counts.Vips++
		case caja.RolTic:
			result.Counts.Tics++
		default:
			result.Invalid = append(result.Invalid, InvalidUnit{Rfid: code, Reason: "modelo sin rol definido"})
			continue
		}

		result.Valid = append(result.Valid, ValidUnit{
			Rfid:    code,
			Rol:     rol,
			Litraje: unit.Litraje().String(),
		})
	}

	if len(result.Invalid) == 0 && !result.IsValid() {
		result.Invalid = append(result.Invalid, InvalidUnit{
			Rfid: "",
			Reason: fmt.Sprintf("composición %d CUBE + %d VIP + %d TIC, se requiere %d+%d+%d",
				result.Counts.Cubes, result.Counts.Vips, result.Counts.Tics,
				caja.RequiredCubes, caja.RequiredVips, caja.RequiredTics),
		})
	}

	return result
}

// reasonOf extracts the operator-readable part of a state conflict.
func reasonOf(err error) string {
	var sc *errs.StateConflictError
	if errors.As(err, &sc) {
		return sc.Reason
	}
	return err.Error()
}
