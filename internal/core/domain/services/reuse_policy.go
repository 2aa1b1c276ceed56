package services

import (
	"fmt"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/timer"
)

// ConfigOrigin says where a per-model reuse requirement was resolved from.
type ConfigOrigin string

const (
	// OriginDirect: a config row for the model itself (sede-specific wins
	// over global).
	OriginDirect ConfigOrigin = "direct"

	// OriginShared: a config row sharing the model's capacity class.
	OriginShared ConfigOrigin = "shared"

	// OriginFallback: the hard-coded 12-hour constant.
	OriginFallback ConfigOrigin = "fallback"
)

// ModelRequirement is one model's resolved minimum-reuse duration.
type ModelRequirement struct {
	ModeloID    kernel.UUID
	Litraje     string
	RequiredSec int64
	Origin      ConfigOrigin
}

// TimerStatus describes the returning box's transit timer for the evaluation.
type TimerStatus string

const (
	// TimerRunning: an active transit countdown with time remaining.
	TimerRunning TimerStatus = "running"

	// TimerExpired: the transit countdown ran out.
	TimerExpired TimerStatus = "expired"

	// TimerMissing: the box has no active transit timer. Never reusable.
	TimerMissing TimerStatus = "missing"
)

// ReuseEvaluation is the full outcome of the reuse policy for one box.
type ReuseEvaluation struct {
	EffectiveSec  int64
	RequestedSec  *int64
	Blocked       bool
	BlockedReason string
	PerModel      []ModelRequirement
	RemainingSec  int64
	TimerStatus   TimerStatus
	Reusable      bool
}

// ModelRef identifies one distinct model present in a returning box.
type ModelRef struct {
	ModeloID kernel.UUID
	Litraje  modelo.Litraje
}

// ReusePolicy computes whether a returning box may skip inspection. For each
// distinct model in the box it resolves a minimum-reuse duration in priority
// order: sede-specific row for the model, global row for the model, a row
// sharing the model's capacity class (sede before global), and finally the
// hard 12-hour fallback. The effective threshold for the box is the maximum
// over its models, so a box is never reused faster than its strictest member.
type ReusePolicy struct{}

// NewReusePolicy creates a ReusePolicy instance.
func NewReusePolicy() ReusePolicy {
	return ReusePolicy{}
}

// Resolve computes the per-model requirements and the effective threshold.
// configs holds every candidate row the repository found for the models and
// capacity classes involved; sedeID is the requesting warehouse. A caller
// requested threshold lower than the effective maximum force-blocks reuse; a
// higher one extends the wait.
func (ReusePolicy) Resolve(
	models []ModelRef,
	configs []*timer.Config,
	sedeID *kernel.UUID,
	requestedSec *int64,
) ReuseEvaluation {
	eval := ReuseEvaluation{RequestedSec: requestedSec}

	for _, ref := range models {
		req := resolveModel(ref, configs, sedeID)
		eval.PerModel = append(eval.PerModel, req)
		if req.RequiredSec > eval.EffectiveSec {
			eval.EffectiveSec = req.RequiredSec
		}
	}

	if requestedSec != nil {
		if *requestedSec < eval.EffectiveSec {
			eval.Blocked = true
			eval.BlockedReason = fmt.Sprintf(
				"el umbral solicitado de %d s es menor que el mínimo requerido de %d s",
				*requestedSec, eval.EffectiveSec)
		} else {
			// The caller may only extend the wait, never shorten it.
			eval.EffectiveSec = *requestedSec
		}
	}

	return eval
}

// Evaluate finishes the evaluation against the box's transit timer. A box
// with no active transit timer is never reusable.
func (p ReusePolicy) Evaluate(
	models []ModelRef,
	configs []*timer.Config,
	sedeID *kernel.UUID,
	requestedSec *int64,
	transito *timer.Timer,
	now time.Time,
) ReuseEvaluation {
	eval := p.Resolve(models, configs, sedeID, requestedSec)

	if transito == nil || !transito.Active() {
		eval.TimerStatus = TimerMissing
		eval.Reusable = false
		return eval
	}

	remaining, ok := transito.RemainingSec(now)
	if !ok {
		eval.TimerStatus = TimerMissing
		eval.Reusable = false
		return eval
	}

	eval.RemainingSec = remaining
	if remaining == 0 {
		eval.TimerStatus = TimerExpired
	} else {
		eval.TimerStatus = TimerRunning
	}
	eval.Reusable = !eval.Blocked && remaining >= eval.EffectiveSec
	return eval
}

func resolveModel(ref ModelRef, configs []*timer.Config, sedeID *kernel.UUID) ModelRequirement {
	req := ModelRequirement{
		ModeloID: ref.ModeloID,
		Litraje:  ref.Litraje.String(),
	}

	var direct, directGlobal, shared, sharedGlobal *timer.Config
	for _, cfg := range configs {
		matchesModel := cfg.ModeloID() != nil && cfg.ModeloID().IsEqual(ref.ModeloID)
		matchesLitraje := cfg.Litraje().IsEqual(ref.Litraje)
		atSede := sedeID != nil && cfg.AppliesToSede(*sedeID)

		switch {
		case matchesModel && atSede && direct == nil:
			direct = cfg
		case matchesModel && cfg.IsGlobal() && directGlobal == nil:
			directGlobal = cfg
		case !matchesModel && matchesLitraje && atSede && shared == nil:
			shared = cfg
		case !matchesModel && matchesLitraje && cfg.IsGlobal() && sharedGlobal == nil:
			sharedGlobal = cfg
		}
	}

	switch {
	case direct != nil:
		req.RequiredSec = direct.MinReusoSec()
		req.Origin = OriginDirect
	case directGlobal != nil:
		req.RequiredSec = directGlobal.MinReusoSec()
		req.Origin = OriginDirect
	case shared != nil:
		req.RequiredSec = shared.MinReusoSec()
		req.Origin = OriginShared
	case sharedGlobal != nil:
		req.RequiredSec = sharedGlobal.MinReusoSec()
		req.Origin = OriginShared
	default:
		req.RequiredSec = timer.FallbackMinReuseSec
		req.Origin = OriginFallback
	}

	return req
}
