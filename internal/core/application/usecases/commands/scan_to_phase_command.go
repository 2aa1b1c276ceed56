package commands

import (
	"errors"
	"fmt"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

var (
	ErrScanToPhaseCommandIsNotConstructed = errors.New(
		"ScanToPhaseCommand must be created via NewScanToPhaseCommand constructor",
	)
	ErrCodesAreRequired = errors.New("at least one code is required")
)

// ScanTarget identifies the phase an operator is scanning units into.
type ScanTarget int

const (
	TargetCongelamiento ScanTarget = iota + 1
	TargetAtemperamiento
	TargetAtemperado
	TargetListaDespacho
	TargetDespacho
	TargetRetorno
)

func scanTargetStrings() map[ScanTarget]string {
	return map[ScanTarget]string{
		TargetCongelamiento:  "congelamiento",
		TargetAtemperamiento: "atemperamiento",
		TargetAtemperado:     "atemperado",
		TargetListaDespacho:  "lista-despacho",
		TargetDespacho:       "despacho",
		TargetRetorno:        "retorno",
	}
}

// Validate checks the target is one of the scan destinations.
func (t ScanTarget) Validate() error {
	if _, ok := scanTargetStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("scan target", fmt.Errorf("unknown target %d", int(t)))
	}
	return nil
}

// String returns the wire name of the target.
func (t ScanTarget) String() string {
	return scanTargetStrings()[t]
}

// ParseScanTarget maps a wire name to a ScanTarget.
func ParseScanTarget(s string) (ScanTarget, error) {
	for target, name := range scanTargetStrings() {
		if name == s {
			return target, nil
		}
	}
	return 0, errs.NewValueIsInvalidErrorWithCause("scan target", fmt.Errorf("unknown target %q", s))
}

// ScanToPhaseCommand represents a batch of scanned tag codes to move into a
// phase. Lote batches the atemperamiento move and tags units entering
// congelamiento; duration overrides the configured phase duration; the
// temperature/sensor fields are operator-entered transit metadata captured on
// despacho and retorno.
type ScanToPhaseCommand struct { //nolint:recvcheck //using for validation
	target       ScanTarget
	codes        []string
	lote         *string
	durationSec  *int64
	tempSalidaC  *string
	tempLlegadaC *string
	sensorID     *string

	guard kernel.ConstructorGuard
}

// NewScanToPhaseCommand creates a scan command for a batch of codes.
func NewScanToPhaseCommand(
	target ScanTarget,
	codes []string,
	lote *string,
	durationSec *int64,
	tempSalidaC, tempLlegadaC, sensorID *string,
) (ScanToPhaseCommand, error) {
	cmd := ScanToPhaseCommand{
		lote:         lote,
		durationSec:  durationSec,
		tempSalidaC:  tempSalidaC,
		tempLlegadaC: tempLlegadaC,
		sensorID:     sensorID,
		guard:        kernel.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setTarget(target),
		cmd.setCodes(codes),
	); err != nil {
		return ScanToPhaseCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ScanToPhaseCommand) Validate() error {
	return c.guard.Validate(ErrScanToPhaseCommandIsNotConstructed)
}

// Target returns the destination phase.
func (c ScanToPhaseCommand) Target() ScanTarget {
	return c.target
}

// Codes returns the scanned tag codes.
func (c ScanToPhaseCommand) Codes() []string {
	return c.codes
}

// Lote returns the batch tag, or nil.
func (c ScanToPhaseCommand) Lote() *string {
	return c.lote
}

// DurationSec returns the caller-provided phase duration override, or nil.
func (c ScanToPhaseCommand) DurationSec() *int64 {
	return c.durationSec
}

// TempSalidaC returns the operator-entered departure temperature, or nil.
func (c ScanToPhaseCommand) TempSalidaC() *string {
	return c.tempSalidaC
}

// TempLlegadaC returns the operator-entered arrival temperature, or nil.
func (c ScanToPhaseCommand) TempLlegadaC() *string {
	return c.tempLlegadaC
}

// SensorID returns the operator-entered sensor reference, or nil.
func (c ScanToPhaseCommand) SensorID() *string {
	return c.sensorID
}

func (c *ScanToPhaseCommand) setTarget(target ScanTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}

	c.target = target
	return nil
}

func (c *ScanToPhaseCommand) setCodes(codes []string) error {
	if len(codes) == 0 {
		return ErrCodesAreRequired
	}

	c.codes = codes
	return nil
}
