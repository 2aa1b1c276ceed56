package item

import (
	"fmt"

	"coldchain/internal/pkg/errs"
)

// Estado represents the macro lifecycle state of an inventory unit.
//
// State transitions (TIC-only branch in parentheses):
//
//	En bodega ──(Pre Acondicionamiento: Congelamiento → Congelado →
//	             Atemperamiento → Atemperado)──> Acondicionamiento
//	          (Ensamblaje → Ensamblado → Lista para Despacho)
//	          ──> Operación (Transito → Retorno | Completado)
//	          ──> reuse (back to Acondicionamiento/Ensamblaje)
//	            | En bodega/Pendiente a Inspección → Inspección → En bodega
//
// Two orthogonal states exist: Inhabilitado (terminal, reachable from any
// state via a novedad) and En traslado (cross-sede relocation, En bodega at
// both ends).
type Estado int

const (
	// EstadoUnknown represents an invalid or undefined estado.
	EstadoUnknown Estado = iota

	// EnBodega is the resting state: the unit sits in a warehouse zone,
	// available for pre-conditioning (TIC) or assembly (VIP/CUBE).
	EnBodega

	// PreAcondicionamiento covers the TIC-only freezing/tempering branch.
	PreAcondicionamiento

	// Acondicionamiento covers box assembly up to dispatch readiness.
	Acondicionamiento

	// Operacion covers the dispatched box: transit, return or completion.
	Operacion

	// Inspeccion is the post-return review of a box that did not qualify
	// for direct reuse.
	Inspeccion

	// EnTraslado is the in-flight state of a cross-sede relocation.
	EnTraslado

	// Inhabilitado is the terminal soft-disabled state.
	Inhabilitado
)

func estadoStrings() map[Estado]string {
	return map[Estado]string{
		EstadoUnknown:        "Unknown",
		EnBodega:             "En bodega",
		PreAcondicionamiento: "Pre Acondicionamiento",
		Acondicionamiento:    "Acondicionamiento",
		Operacion:            "Operación",
		Inspeccion:           "Inspección",
		EnTraslado:           "En traslado",
		Inhabilitado:         "Inhabilitado",
	}
}

// Validate checks that the Estado is one of the defined lifecycle states.
func (e Estado) Validate() error {
	if e <= EstadoUnknown || e > Inhabilitado {
		return errs.NewValueIsInvalidErrorWithCause("estado",
			fmt.Errorf("%d is not a valid estado", e))
	}
	return nil
}

// String returns the operator-facing Spanish label of the estado.
func (e Estado) String() string {
	if s, ok := estadoStrings()[e]; ok {
		return s
	}
	return "Unknown"
}

// ParseEstado maps the Spanish label back to an Estado.
func ParseEstado(s string) (Estado, error) {
	for e, label := range estadoStrings() {
		if e != EstadoUnknown && label == s {
			return e, nil
		}
	}
	return EstadoUnknown, errs.NewValueIsInvalidErrorWithCause("estado",
		fmt.Errorf("%q is not a valid estado", s))
}

// SubEstado represents the phase-specific sub-state within a macro estado.
// SubNone (0) models the nullable column: resting states carry no sub-state.
type SubEstado int

const (
	// SubNone means the unit has no phase-specific sub-state.
	SubNone SubEstado = iota

	// Congelamiento: TIC freezing in progress (timed).
	Congelamiento

	// Congelado: TIC fully frozen, waiting for tempering.
	Congelado

	// Atemperamiento: TIC tempering in progress (timed).
	Atemperamiento

	// Atemperado: TIC tempered, eligible for assembly.
	Atemperado

	// Ensamblaje: unit is part of a box being assembled (timed at box level).
	Ensamblaje

	// Ensamblado: box assembly confirmed.
	Ensamblado

	// ListaParaDespacho: box ready to leave the warehouse.
	ListaParaDespacho

	// Transito: box dispatched, shelf-life timer running.
	Transito

	// Retorno: box returned, pending the reuse decision.
	Retorno

	// Completado: box processed out without return handling.
	Completado

	// PendienteInspeccion: returned unit parked in bodega awaiting inspection.
	PendienteInspeccion
)

func subEstadoStrings() map[SubEstado]string {
	return map[SubEstado]string{
		SubNone:             "",
		Congelamiento:       "Congelamiento",
		Congelado:           "Congelado",
		Atemperamiento:      "Atemperamiento",
		Atemperado:          "Atemperado",
		Ensamblaje:          "Ensamblaje",
		Ensamblado:          "Ensamblado",
		ListaParaDespacho:   "Lista para Despacho",
		Transito:            "Transito",
		Retorno:             "Retorno",
		Completado:          "Completado",
		PendienteInspeccion: "Pendiente a Inspección",
	}
}

// Validate checks that the SubEstado is defined. SubNone is valid.
func (s SubEstado) Validate() error {
	if s < SubNone || s > PendienteInspeccion {
		return errs.NewValueIsInvalidErrorWithCause("sub_estado",
			fmt.Errorf("%d is not a valid sub_estado", s))
	}
	return nil
}

// String returns the operator-facing Spanish label, empty for SubNone.
func (s SubEstado) String() string {
	if str, ok := subEstadoStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ParseSubEstado maps the Spanish label back to a SubEstado.
func ParseSubEstado(s string) (SubEstado, error) {
	for sub, label := range subEstadoStrings() {
		if sub != SubNone && label == s {
			return sub, nil
		}
	}
	return SubNone, errs.NewValueIsInvalidErrorWithCause("sub_estado",
		fmt.Errorf("%q is not a valid sub_estado", s))
}

// legalPairs maps each estado to the sub-estados a unit may legally hold in it.
func legalPairs() map[Estado][]SubEstado {
	return map[Estado][]SubEstado{
		EnBodega:             {SubNone, PendienteInspeccion},
		PreAcondicionamiento: {Congelamiento, Congelado, Atemperamiento, Atemperado},
		Acondicionamiento:    {Ensamblaje, Ensamblado, ListaParaDespacho},
		Operacion:            {Transito, Retorno, Completado},
		Inspeccion:           {SubNone},
		EnTraslado:           {SubNone},
		Inhabilitado:         {SubNone},
	}
}

// ValidatePair checks that the (estado, sub_estado) combination is legal.
func ValidatePair(e Estado, s SubEstado) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	for _, allowed := range legalPairs()[e] {
		if allowed == s {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("sub_estado",
		fmt.Errorf("%q is not a valid sub_estado for estado %q", s.String(), e.String()))
}
