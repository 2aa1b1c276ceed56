package queries

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

var ErrEvaluateDevolucionQueryIsNotConstructed = errors.New(
	"EvaluateDevolucionQuery must be created via NewEvaluateDevolucionQuery constructor",
)

// EvaluateDevolucionQuery runs the reuse policy for a returning box without
// applying any decision. Operators preview whether the box would be reused
// before processing the devolution.
type EvaluateDevolucionQuery struct {
	cajaID       kernel.UUID
	requestedSec *int64

	guard kernel.ConstructorGuard
}

// NewEvaluateDevolucionQuery creates a reuse evaluation query.
func NewEvaluateDevolucionQuery(cajaID kernel.UUID, requestedSec *int64) (EvaluateDevolucionQuery, error) {
	if err := cajaID.Validate(); err != nil {
		return EvaluateDevolucionQuery{}, err
	}
	if requestedSec != nil && *requestedSec <= 0 {
		return EvaluateDevolucionQuery{}, errs.NewValueIsOutOfRangeError(
			"reuse_threshold_sec", *requestedSec, 1, int64(1<<31))
	}

	return EvaluateDevolucionQuery{
		cajaID:       cajaID,
		requestedSec: requestedSec,
		guard:        kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q EvaluateDevolucionQuery) Validate() error {
	return q.guard.Validate(ErrEvaluateDevolucionQueryIsNotConstructed)
}

// CajaID returns the returning box.
func (q EvaluateDevolucionQuery) CajaID() kernel.UUID {
	return q.cajaID
}

// RequestedSec returns the caller's reuse threshold, or nil.
func (q EvaluateDevolucionQuery) RequestedSec() *int64 {
	return q.requestedSec
}

// ModelRequirementResponse is one model's resolved reuse requirement.
type ModelRequirementResponse struct {
	ModeloID    kernel.UUID
	Litraje     string
	RequiredSec int64
	Origin      string
}

// EvaluateDevolucionQueryResponse is the full policy evaluation.
type EvaluateDevolucionQueryResponse struct {
	Reusable      bool
	RemainingSec  int64
	EffectiveSec  int64
	RequestedSec  *int64
	Blocked       bool
	BlockedReason string
	TimerStatus   string
	PerModel      []ModelRequirementResponse
}
