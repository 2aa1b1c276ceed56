package queries

import (
	"errors"
	"fmt"

	"coldchain/internal/core/domain/model/caja"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

var ErrValidateCajaQueryIsNotConstructed = errors.New(
	"ValidateCajaQuery must be created via NewValidateCajaQuery constructor",
)

// ValidateCajaQuery pre-checks a proposed box composition without composing
// it. Side-effect free: operators re-scan until the set validates, then call
// the composition command.
type ValidateCajaQuery struct {
	codes []string

	guard kernel.ConstructorGuard
}

// NewValidateCajaQuery creates a composition pre-check for eight codes.
func NewValidateCajaQuery(codes []string) (ValidateCajaQuery, error) {
	if len(codes) != caja.RequiredTotal {
		return ValidateCajaQuery{}, errs.NewValueIsInvalidErrorWithCause("codes",
			fmt.Errorf("a box takes exactly %d units, got %d", caja.RequiredTotal, len(codes)))
	}

	return ValidateCajaQuery{
		codes: codes,
		guard: kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ValidateCajaQuery) Validate() error {
	return q.guard.Validate(ErrValidateCajaQueryIsNotConstructed)
}

// Codes returns the scanned tag codes.
func (q ValidateCajaQuery) Codes() []string {
	return q.codes
}

// ValidUnitResponse is one accepted unit with its assigned role.
type ValidUnitResponse struct {
	Rfid    string
	Rol     string
	Litraje string
}

// InvalidUnitResponse is one rejected unit with the reason.
type InvalidUnitResponse struct {
	Rfid   string
	Reason string
}

// ValidateCajaQueryResponse is the composition pre-check outcome.
type ValidateCajaQueryResponse struct {
	Cubes   int
	Vips    int
	Tics    int
	Valid   []ValidUnitResponse
	Invalid []InvalidUnitResponse
	IsValid bool
}
