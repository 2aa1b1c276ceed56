// Package timer implements the cronometer subsystem: duration-bounded
// countdowns attached to an item, a box or a pre-conditioning section. One
// generic entity covers all six timed phases; each instance keeps an
// independent lifecycle. Expiry never deletes a timer row: it deactivates it
// and records the completion instant, leaving the row as history until the
// owner leaves the phase.
package timer

import (
	"errors"
	"fmt"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// ErrTimerIsNotConstructed is returned when a Timer instance was not created
// through NewTimer or RestoreTimer.
var ErrTimerIsNotConstructed = errors.New("Timer must be created via NewTimer constructor")

// OwnerType says what kind of key a timer hangs off.
type OwnerType int

const (
	// OwnerUnknown represents an invalid or undefined owner type.
	OwnerUnknown OwnerType = iota

	// OwnerItem keys the timer by a unit's tag code.
	OwnerItem

	// OwnerCaja keys the timer by a box id.
	OwnerCaja

	// OwnerSeccion keys the timer by a pre-conditioning section, covering a
	// whole freezing/tempering batch (lote) at once.
	OwnerSeccion
)

func ownerTypeStrings() map[OwnerType]string {
	return map[OwnerType]string{
		OwnerUnknown: "unknown",
		OwnerItem:    "item",
		OwnerCaja:    "caja",
		OwnerSeccion: "seccion",
	}
}

// Validate checks that the OwnerType is defined.
func (o OwnerType) Validate() error {
	if o != OwnerItem && o != OwnerCaja && o != OwnerSeccion {
		return errs.NewValueIsInvalidErrorWithCause("owner_type",
			fmt.Errorf("%d is not a valid owner type", o))
	}
	return nil
}

// String returns the wire label of the owner type.
func (o OwnerType) String() string {
	if s, ok := ownerTypeStrings()[o]; ok {
		return s
	}
	return "unknown"
}

// ParseOwnerType resolves a wire label back into an OwnerType.
func ParseOwnerType(s string) (OwnerType, error) {
	for o, label := range ownerTypeStrings() {
		if o != OwnerUnknown && label == s {
			return o, nil
		}
	}
	return OwnerUnknown, errs.NewValueIsInvalidErrorWithCause("owner_type",
		fmt.Errorf("%q is not a known owner type", s))
}

// Phase names the timed phase a timer drives.
type Phase int

const (
	// PhaseUnknown represents an invalid or undefined phase.
	PhaseUnknown Phase = iota

	// PhaseCongelamiento times the TIC freezing phase (item or section owned).
	PhaseCongelamiento

	// PhaseAtemperamiento times the TIC tempering phase (item or section owned).
	PhaseAtemperamiento

	// PhaseEnsamblaje times box assembly (caja owned).
	PhaseEnsamblaje

	// PhaseTransito times the dispatched box's shelf life (caja owned).
	PhaseTransito

	// PhasePendienteInspeccion times the wait before inspection (caja owned).
	PhasePendienteInspeccion

	// PhaseInspeccion times the inspection itself (caja owned).
	PhaseInspeccion
)

func phaseStrings() map[Phase]string {
	return map[Phase]string{
		PhaseUnknown:             "unknown",
		PhaseCongelamiento:       "congelamiento",
		PhaseAtemperamiento:      "atemperamiento",
		PhaseEnsamblaje:          "ensamblaje",
		PhaseTransito:            "transito",
		PhasePendienteInspeccion: "pendiente_inspeccion",
		PhaseInspeccion:          "inspeccion",
	}
}

// Validate checks that the Phase is one of the six timed phases.
func (p Phase) Validate() error {
	if p <= PhaseUnknown || p > PhaseInspeccion {
		return errs.NewValueIsInvalidErrorWithCause("phase",
			fmt.Errorf("%d is not a valid phase", p))
	}
	return nil
}

// String returns the wire label of the phase.
func (p Phase) String() string {
	if s, ok := phaseStrings()[p]; ok {
		return s
	}
	return "unknown"
}

// ParsePhase resolves a wire label back into a Phase.
func ParsePhase(s string) (Phase, error) {
	for p, label := range phaseStrings() {
		if p != PhaseUnknown && label == s {
			return p, nil
		}
	}
	return PhaseUnknown, errs.NewValueIsInvalidErrorWithCause("phase",
		fmt.Errorf("%q is not a known phase", s))
}

// Timer is one independent countdown instance.
//
// Invariant: active=true requires both startedAt and durationSec to be set.
// The active flag only moves true→false through Clear or completion, never
// spontaneously.
type Timer struct {
	id        kernel.UUID
	ownerType OwnerType
	ownerRef  string
	phase     Phase
	lote      *string

	startedAt   *time.Time
	durationSec *int64
	active      bool
	completedAt *time.Time

	isConstructed bool
}

// NewTimer creates an inactive timer row for an owner and phase. lote is only
// meaningful for pre-conditioning (item/section) timers.
func NewTimer(id kernel.UUID, ownerType OwnerType, ownerRef string, phase Phase, lote *string) (*Timer, error) {
	if err := errors.Join(id.Validate(), ownerType.Validate(), phase.Validate()); err != nil {
		return nil, err
	}
	if ownerRef == "" {
		return nil, errs.NewValueIsRequiredError("owner_ref")
	}

	return &Timer{
		id:            id,
		ownerType:     ownerType,
		ownerRef:      ownerRef,
		phase:         phase,
		lote:          lote,
		isConstructed: true,
	}, nil
}

// RestoreTimer rehydrates a timer from persistence, re-checking the
// active-implies-started invariant.
func RestoreTimer(
	id kernel.UUID,
	ownerType OwnerType,
	ownerRef string,
	phase Phase,
	lote *string,
	startedAt *time.Time,
	durationSec *int64,
	active bool,
	completedAt *time.Time,
) (*Timer, error) {
	t, err := NewTimer(id, ownerType, ownerRef, phase, lote)
	if err != nil {
		return nil, err
	}
	if active && (startedAt == nil || durationSec == nil) {
		return nil, errs.NewValueIsInvalidError("active timer requires started_at and duration_sec")
	}
	t.startedAt = startedAt
	t.durationSec = durationSec
	t.active = active
	t.completedAt = completedAt
	return t, nil
}

// Validate ensures the Timer was created through a constructor.
func (t *Timer) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTimerIsNotConstructed
	}
	return nil
}

// ID returns the timer row identity.
func (t *Timer) ID() kernel.UUID { return t.id }

// OwnerType returns what kind of owner the timer hangs off.
func (t *Timer) OwnerType() OwnerType { return t.ownerType }

// OwnerRef returns the owner key: a tag code, a box id or a section id.
func (t *Timer) OwnerRef() string { return t.ownerRef }

// Phase returns the timed phase.
func (t *Timer) Phase() Phase { return t.phase }

// Lote returns the associated batch tag (pre-conditioning timers only).
func (t *Timer) Lote() *string { return t.lote }

// StartedAt returns the countdown start, nil when never started.
func (t *Timer) StartedAt() *time.Time { return t.startedAt }

// DurationSec returns the countdown length, nil when never started.
func (t *Timer) DurationSec() *int64 { return t.durationSec }

// Active reports whether the countdown is running.
func (t *Timer) Active() bool { return t.active }

// CompletedAt returns the completion instant recorded by Complete.
func (t *Timer) CompletedAt() *time.Time { return t.completedAt }

// Start (re)arms the countdown. Re-starting an already-armed timer overwrites
// the start instant and duration and reactivates it; the operation is an
// idempotent upsert at the storage layer.
func (t *Timer) Start(now time.Time, durationSec int64) error {
	if durationSec <= 0 {
		return errs.NewValueIsOutOfRangeError("duration_sec", durationSec, 1, int64(1<<62))
	}
	started := now
	t.startedAt = &started
	t.durationSec = &durationSec
	t.active = true
	t.completedAt = nil
	return nil
}

// Clear deactivates the countdown without any side effect on the owner's
// state, allowing phase re-entry.
func (t *Timer) Clear() {
	t.active = false
}

// ExpiresAt returns the expiry instant, or false when the timer never started.
func (t *Timer) ExpiresAt() (time.Time, bool) {
	if t.startedAt == nil || t.durationSec == nil {
		return time.Time{}, false
	}
	return t.startedAt.Add(time.Duration(*t.durationSec) * time.Second), true
}

// IsExpired reports whether an active countdown has run out.
func (t *Timer) IsExpired(now time.Time) bool {
	if !t.active {
		return false
	}
	expiry, ok := t.ExpiresAt()
	if !ok {
		return false
	}
	return !now.Before(expiry)
}

// RemainingSec returns the seconds left on an active countdown, zero once
// expired. Returns false when no countdown is running.
func (t *Timer) RemainingSec(now time.Time) (int64, bool) {
	if !t.active {
		return 0, false
	}
	expiry, ok := t.ExpiresAt()
	if !ok {
		return 0, false
	}
	remaining := int64(expiry.Sub(now).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Complete deactivates the countdown and records when it finished. A lazy
// completion detected after expiry records the theoretical expiry instant,
// not the read time; an explicit early completion records now. Completing an
// inactive timer is a conflict, which keeps concurrent lazy sweeps from
// double-completing.
func (t *Timer) Complete(now time.Time) error {
	if !t.active {
		return errs.NewStateConflictError(t.ownerRef, "el cronómetro no está activo")
	}
	completed := now
	if expiry, ok := t.ExpiresAt(); ok && now.After(expiry) {
		completed = expiry
	}
	t.active = false
	t.completedAt = &completed
	return nil
}
