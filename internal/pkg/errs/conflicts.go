package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the domain conflict taxonomy. A StateConflict is an
// illegal lifecycle transition or composition, a SedeMismatch is a blocked
// cross-warehouse movement, and an IntegrityConflict is a storage constraint
// violation surfaced with a domain message.
var (
	ErrStateConflict     = errors.New("state conflict")
	ErrSedeMismatch      = errors.New("sede mismatch")
	ErrIntegrityConflict = errors.New("integrity conflict")
)

// StateConflictError indicates that a unit or box cannot perform the requested
// transition from its current state. Code identifies the offending unit (or
// box) so callers can surface a per-code reason.
type StateConflictError struct {
	Code   string
	Reason string
	Cause  error
}

// NewStateConflictError creates a StateConflictError for one offending code.
func NewStateConflictError(code, reason string) *StateConflictError {
	return &StateConflictError{Code: code, Reason: reason}
}

// NewStateConflictErrorWithCause creates a StateConflictError wrapping an underlying cause.
func NewStateConflictErrorWithCause(code, reason string, cause error) *StateConflictError {
	return &StateConflictError{Code: code, Reason: reason, Cause: cause}
}

func (e *StateConflictError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s: %s (cause: %s)", ErrStateConflict, e.Code, e.Reason, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s: %s", ErrStateConflict, e.Code, e.Reason))
}

func (e *StateConflictError) Unwrap() error {
	return ErrStateConflict
}

// SedeMismatchError indicates that a mutation would move units across
// warehouses without explicit authorization. It carries enough context for the
// caller to re-issue the request with the cross-transfer flag set.
type SedeMismatchError struct {
	SedesOrigen []string
	SedeDestino string
	Rfids       []string
}

// NewSedeMismatchError creates a SedeMismatchError naming the origin sedes,
// the destination sede and the affected unit codes.
func NewSedeMismatchError(sedesOrigen []string, sedeDestino string, rfids []string) *SedeMismatchError {
	return &SedeMismatchError{SedesOrigen: sedesOrigen, SedeDestino: sedeDestino, Rfids: rfids}
}

func (e *SedeMismatchError) Error() string {
	return sanitize(fmt.Sprintf("%s: units %s belong to sede(s) %s, destination is %s",
		ErrSedeMismatch,
		strings.Join(e.Rfids, ", "),
		strings.Join(e.SedesOrigen, ", "),
		e.SedeDestino))
}

func (e *SedeMismatchError) Unwrap() error {
	return ErrSedeMismatch
}

// IntegrityConflictError indicates a uniqueness or referential constraint
// violation, translated from the store into a domain-specific message.
type IntegrityConflictError struct {
	ParamName string
	Cause     error
}

// NewIntegrityConflictError creates an IntegrityConflictError without an underlying cause.
func NewIntegrityConflictError(paramName string) *IntegrityConflictError {
	return &IntegrityConflictError{ParamName: paramName}
}

// NewIntegrityConflictErrorWithCause creates an IntegrityConflictError wrapping an underlying cause.
func NewIntegrityConflictErrorWithCause(paramName string, cause error) *IntegrityConflictError {
	return &IntegrityConflictError{ParamName: paramName, Cause: cause}
}

func (e *IntegrityConflictError) Error() string {
	if e.Cause != nil {
		return sanitize(fmt.Sprintf("%s: %s (cause: %s)", ErrIntegrityConflict, e.ParamName, e.Cause))
	}
	return sanitize(fmt.Sprintf("%s: %s", ErrIntegrityConflict, e.ParamName))
}

func (e *IntegrityConflictError) Unwrap() error {
	return ErrIntegrityConflict
}
