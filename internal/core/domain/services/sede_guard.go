package services

import (
	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// TransferDecision is the ephemeral outcome of the cross-sede guard for one
// request. It is never persisted.
type TransferDecision struct {
	TargetSede kernel.UUID
	Authorized bool

	// Mismatched lists units whose sede differs from the target.
	Mismatched []*item.Item

	// UnknownSede lists units with no sede assigned.
	UnknownSede []*item.Item
}

// RequiresTransfer reports whether any affected unit would cross warehouses.
func (d TransferDecision) RequiresTransfer() bool {
	return len(d.Mismatched) > 0 || len(d.UnknownSede) > 0
}

// SedeGuard intercepts any mutation that would move units to or through a
// warehouse other than their current one. It must run before every other side
// effect of the mutating transaction, so that a blocked transfer leaves all
// state untouched.
type SedeGuard struct{}

// NewSedeGuard creates a SedeGuard instance.
func NewSedeGuard() SedeGuard {
	return SedeGuard{}
}

// Check compares each affected unit's sede against the target. Without
// explicit authorization a mismatch (or an unknown sede) blocks the mutation
// with a SedeMismatchError naming origins, destination and affected codes.
// With authorization the decision comes back Authorized and Apply moves the
// units.
func (SedeGuard) Check(target kernel.UUID, units []*item.Item, allowTransfer bool) (TransferDecision, error) {
	decision := TransferDecision{TargetSede: target}
	if err := target.Validate(); err != nil {
		return decision, err
	}

	for _, unit := range units {
		switch {
		case unit.SedeID() == nil:
			decision.UnknownSede = append(decision.UnknownSede, unit)
		case !unit.SedeID().IsEqual(target):
			decision.Mismatched = append(decision.Mismatched, unit)
		}
	}

	if !decision.RequiresTransfer() {
		return decision, nil
	}

	if !allowTransfer {
		var origins []string
		seen := make(map[string]struct{})
		var rfids []string
		for _, unit := range decision.Mismatched {
			origin := unit.SedeID().String()
			if _, ok := seen[origin]; !ok {
				seen[origin] = struct{}{}
				origins = append(origins, origin)
			}
			rfids = append(rfids, unit.Rfid().String())
		}
		for _, unit := range decision.UnknownSede {
			rfids = append(rfids, unit.Rfid().String())
		}
		return decision, errs.NewSedeMismatchError(origins, target.String(), rfids)
	}

	decision.Authorized = true
	return decision, nil
}

// Apply re-pins every mismatched or unassigned unit to the target sede.
// Only meaningful on an authorized decision.
func (SedeGuard) Apply(decision TransferDecision) error {
	if !decision.Authorized {
		return errs.NewValueIsInvalidError("transfer decision is not authorized")
	}
	for _, unit := range append(decision.Mismatched, decision.UnknownSede...) {
		if err := unit.AssignSede(decision.TargetSede); err != nil {
			return err
		}
	}
	return nil
}
