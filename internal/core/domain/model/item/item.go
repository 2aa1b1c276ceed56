// Package item implements the inventory unit aggregate and its lifecycle
// state machine. Every mutation of a physical unit goes through a transition
// method on Item; illegal transitions come back as StateConflict errors
// carrying the offending tag code and an operator-readable reason.
package item

import (
	"errors"
	"fmt"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/pkg/errs"
)

// ErrItemIsNotConstructed is returned when an Item instance was not created
// through NewItem or RestoreItem.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// Item is the aggregate root for one physical reusable packaging unit.
//
// Invariants:
//   - rfid is the unit's identity and never changes
//   - estado/subEstado always form a legal pair (see ValidatePair)
//   - activo=false implies estado=Inhabilitado and no box membership
//   - a unit belongs to at most one caja at a time
//   - only TICs enter Pre Acondicionamiento and carry validation flags
type Item struct {
	id      kernel.UUID
	rfid    kernel.Rfid
	modelID kernel.UUID
	kind    modelo.Kind
	litraje modelo.Litraje

	estado    Estado
	subEstado SubEstado
	activo    bool

	sedeID    *kernel.UUID
	cajaID    *kernel.UUID
	lote      *string
	numOrden  *string
	zonaID    *kernel.UUID
	seccionID *kernel.UUID

	tempSalidaC  *string
	tempLlegadaC *string
	sensorID     *string

	// TIC-only inspection validation flags.
	limpiezaOK     bool
	fugasOK        bool
	desinfeccionOK bool

	isConstructed bool
}

// NewItem registers a new unit at intake: active, En bodega, unassigned to any
// box, optionally placed in a storage zone/section and pinned to a sede.
func NewItem(
	id kernel.UUID,
	rfid kernel.Rfid,
	m *modelo.Modelo,
	sedeID, zonaID, seccionID *kernel.UUID,
) (*Item, error) {
	if err := errors.Join(id.Validate(), rfid.Validate(), m.Validate()); err != nil {
		return nil, err
	}
	for _, ref := range []*kernel.UUID{sedeID, zonaID, seccionID} {
		if ref != nil {
			if err := ref.Validate(); err != nil {
				return nil, err
			}
		}
	}

	return &Item{
		id:            id,
		rfid:          rfid,
		modelID:       m.ID(),
		kind:          m.Kind(),
		litraje:       m.Litraje(),
		estado:        EnBodega,
		subEstado:     SubNone,
		activo:        true,
		sedeID:        sedeID,
		zonaID:        zonaID,
		seccionID:     seccionID,
		isConstructed: true,
	}, nil
}

// RestoreItem rehydrates a unit from persistence without re-running intake
// rules, but still rejecting illegal estado/sub_estado pairs.
func RestoreItem(
	id kernel.UUID,
	rfid kernel.Rfid,
	modelID kernel.UUID,
	kind modelo.Kind,
	litraje modelo.Litraje,
	estado Estado,
	subEstado SubEstado,
	activo bool,
	sedeID, cajaID *kernel.UUID,
	lote, numOrden *string,
	zonaID, seccionID *kernel.UUID,
	tempSalidaC, tempLlegadaC, sensorID *string,
	limpiezaOK, fugasOK, desinfeccionOK bool,
) (*Item, error) {
	if err := errors.Join(
		id.Validate(),
		rfid.Validate(),
		modelID.Validate(),
		kind.Validate(),
		litraje.Validate(),
		ValidatePair(estado, subEstado),
	); err != nil {
		return nil, err
	}

	return &Item{
		id:             id,
		rfid:           rfid,
		modelID:        modelID,
		kind:           kind,
		litraje:        litraje,
		estado:         estado,
		subEstado:      subEstado,
		activo:         activo,
		sedeID:         sedeID,
		cajaID:         cajaID,
		lote:           lote,
		numOrden:       numOrden,
		zonaID:         zonaID,
		seccionID:      seccionID,
		tempSalidaC:    tempSalidaC,
		tempLlegadaC:   tempLlegadaC,
		sensorID:       sensorID,
		limpiezaOK:     limpiezaOK,
		fugasOK:        fugasOK,
		desinfeccionOK: desinfeccionOK,
		isConstructed:  true,
	}, nil
}

// Validate ensures the Item was created through a constructor.
func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

// IsEqual compares two items by identity.
func (i *Item) IsEqual(other *Item) bool {
	return other != nil && i.id.IsEqual(other.id)
}

// ID returns the storage identity of the unit.
func (i *Item) ID() kernel.UUID { return i.id }

// Rfid returns the unit's tag code.
func (i *Item) Rfid() kernel.Rfid { return i.rfid }

// ModelID returns the catalog model reference.
func (i *Item) ModelID() kernel.UUID { return i.modelID }

// Kind returns the physical role of the unit (TIC/VIP/CUBE).
func (i *Item) Kind() modelo.Kind { return i.kind }

// Litraje returns the unit's capacity class.
func (i *Item) Litraje() modelo.Litraje { return i.litraje }

// Estado returns the macro lifecycle state.
func (i *Item) Estado() Estado { return i.estado }

// SubEstado returns the phase-specific sub-state (SubNone when resting).
func (i *Item) SubEstado() SubEstado { return i.subEstado }

// Activo reports whether the unit is enabled. false is terminal.
func (i *Item) Activo() bool { return i.activo }

// SedeID returns the unit's current warehouse, nil meaning unassigned.
func (i *Item) SedeID() *kernel.UUID { return i.sedeID }

// CajaID returns the unit's current box membership, nil when loose.
func (i *Item) CajaID() *kernel.UUID { return i.cajaID }

// Lote returns the current batch/box tag.
func (i *Item) Lote() *string { return i.lote }

// NumeroOrden returns the associated order reference.
func (i *Item) NumeroOrden() *string { return i.numOrden }

// ZonaID returns the storage zone.
func (i *Item) ZonaID() *kernel.UUID { return i.zonaID }

// SeccionID returns the storage section.
func (i *Item) SeccionID() *kernel.UUID { return i.seccionID }

// TempSalidaC returns the operator-entered outbound temperature.
func (i *Item) TempSalidaC() *string { return i.tempSalidaC }

// TempLlegadaC returns the operator-entered inbound temperature.
func (i *Item) TempLlegadaC() *string { return i.tempLlegadaC }

// SensorID returns the operator-entered sensor reference.
func (i *Item) SensorID() *string { return i.sensorID }

// ValidacionLimpieza reports the TIC cleaning check.
func (i *Item) ValidacionLimpieza() bool { return i.limpiezaOK }

// ValidacionFugas reports the TIC leak check.
func (i *Item) ValidacionFugas() bool { return i.fugasOK }

// ValidacionDesinfeccion reports the TIC disinfection check.
func (i *Item) ValidacionDesinfeccion() bool { return i.desinfeccionOK }

// InCaja reports whether the unit currently belongs to a box.
func (i *Item) InCaja() bool { return i.cajaID != nil }

func (i *Item) conflict(reason string) error {
	return errs.NewStateConflictError(i.rfid.String(), reason)
}

func (i *Item) requireActivo() error {
	if !i.activo {
		return i.conflict("la unidad está inhabilitada")
	}
	return nil
}

func (i *Item) at(e Estado, s SubEstado) bool {
	return i.estado == e && i.subEstado == s
}

// StartCongelamiento moves a loose TIC from En bodega into the freezing phase,
// tagging it with the freezing batch lote.
func (i *Item) StartCongelamiento(lote string) error {
	if err := i.requireActivo(); err != nil {
		return err
	}
	if i.kind != modelo.KindTIC {
		return i.conflict("solo unidades TIC entran a Congelamiento")
	}
	if i.InCaja() {
		return i.conflict("la unidad pertenece a una caja")
	}
	if !i.at(EnBodega, SubNone) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Congelamiento", i.describeState()))
	}
	if lote == "" {
		return errs.NewValueIsRequiredError("lote")
	}

	i.estado = PreAcondicionamiento
	i.subEstado = Congelamiento
	i.lote = &lote
	return nil
}

// MarkCongelado completes the freezing phase. Invoked by explicit action or by
// lazy timer completion; calling it when already Congelado is a conflict, which
// is what makes concurrent lazy sweeps idempotent at the domain level.
func (i *Item) MarkCongelado() error {
	if !i.at(PreAcondicionamiento, Congelamiento) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Congelado", i.describeState()))
	}
	i.subEstado = Congelado
	return nil
}

// StartAtemperamiento moves a frozen TIC into the tempering phase.
// Batch semantics (whole lote moved when the triggering unit is strictly
// Congelado) live in the command handler; the aggregate rule is per unit.
func (i *Item) StartAtemperamiento() error {
	if err := i.requireActivo(); err != nil {
		return err
	}
	if !i.at(PreAcondicionamiento, Congelado) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Atemperamiento", i.describeState()))
	}
	i.subEstado = Atemperamiento
	return nil
}

// MarkAtemperado completes the tempering phase.
func (i *Item) MarkAtemperado() error {
	if !i.at(PreAcondicionamiento, Atemperamiento) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Atemperado", i.describeState()))
	}
	i.subEstado = Atemperado
	return nil
}

// canEnterEnsamblaje is the item-level assembly intake rule: not disabled, not
// already boxed, and in the state assembly expects for the unit's kind.
// Composition counts and capacity-class checks belong to the composition
// engine, not here.
func (i *Item) canEnterEnsamblaje() error {
	if err := i.requireActivo(); err != nil {
		return err
	}
	if i.InCaja() {
		return i.conflict("la unidad ya pertenece a una caja")
	}
	switch i.kind {
	case modelo.KindTIC:
		if !i.at(PreAcondicionamiento, Atemperado) {
			return i.conflict("la unidad TIC debe estar Atemperado")
		}
	case modelo.KindVIP, modelo.KindCUBE:
		if !i.at(EnBodega, SubNone) {
			return i.conflict(fmt.Sprintf("la unidad %s debe estar En bodega", i.kind))
		}
	default:
		return i.conflict("modelo sin rol definido")
	}
	return nil
}

// ValidateEnsamblaje checks assembly intake without performing the transition.
func (i *Item) ValidateEnsamblaje() error {
	return i.canEnterEnsamblaje()
}

// EnterEnsamblaje attaches the unit to a newly composed caja and moves it to
// Acondicionamiento/Ensamblaje. The caja's lot code becomes the unit's lote.
func (i *Item) EnterEnsamblaje(cajaID kernel.UUID, lote string) error {
	if err := i.canEnterEnsamblaje(); err != nil {
		return err
	}
	if err := cajaID.Validate(); err != nil {
		return err
	}
	if lote == "" {
		return errs.NewValueIsRequiredError("lote")
	}

	i.estado = Acondicionamiento
	i.subEstado = Ensamblaje
	i.cajaID = &cajaID
	i.lote = &lote
	return nil
}

// ReuseIntoEnsamblaje sends a returned unit straight back to assembly,
// skipping inspection. The box membership is preserved.
func (i *Item) ReuseIntoEnsamblaje() error {
	if err := i.requireActivo(); err != nil {
		return err
	}
	if !i.at(Operacion, Retorno) && !i.at(Operacion, Transito) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite reuso", i.describeState()))
	}
	i.estado = Acondicionamiento
	i.subEstado = Ensamblaje
	return nil
}

// MarkEnsamblado confirms assembly of the unit's box.
func (i *Item) MarkEnsamblado() error {
	if !i.at(Acondicionamiento, Ensamblaje) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Ensamblado", i.describeState()))
	}
	i.subEstado = Ensamblado
	return nil
}

// MarkListaParaDespacho flags the unit's box ready to leave the warehouse.
func (i *Item) MarkListaParaDespacho() error {
	if !i.at(Acondicionamiento, Ensamblado) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Lista para Despacho", i.describeState()))
	}
	i.subEstado = ListaParaDespacho
	return nil
}

// Despachar moves the unit into transit, recording the operator-entered
// outbound temperature and sensor reference when given.
func (i *Item) Despachar(tempSalidaC, sensorID *string) error {
	if !i.at(Acondicionamiento, ListaParaDespacho) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite despacho", i.describeState()))
	}
	i.estado = Operacion
	i.subEstado = Transito
	if tempSalidaC != nil {
		i.tempSalidaC = tempSalidaC
	}
	if sensorID != nil {
		i.sensorID = sensorID
	}
	return nil
}

// MarkRetorno records the box's return from transit, with the inbound
// temperature when given.
func (i *Item) MarkRetorno(tempLlegadaC *string) error {
	if !i.at(Operacion, Transito) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Retorno", i.describeState()))
	}
	i.subEstado = Retorno
	if tempLlegadaC != nil {
		i.tempLlegadaC = tempLlegadaC
	}
	return nil
}

// MarkCompletado closes out a unit whose box finished its operation without
// return handling.
func (i *Item) MarkCompletado() error {
	if !i.at(Operacion, Transito) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Completado", i.describeState()))
	}
	i.subEstado = Completado
	return nil
}

// SendToPendienteInspeccion parks a returned unit in bodega awaiting
// inspection. Box membership is preserved for the inspection workflow.
func (i *Item) SendToPendienteInspeccion() error {
	if !i.at(Operacion, Retorno) && !i.at(Operacion, Transito) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Pendiente a Inspección", i.describeState()))
	}
	i.estado = EnBodega
	i.subEstado = PendienteInspeccion
	return nil
}

// EnterInspeccion starts the inspection of the unit and resets the TIC
// validation flags so every check must be redone for this pass.
func (i *Item) EnterInspeccion() error {
	if err := i.requireActivo(); err != nil {
		return err
	}
	if !i.at(EnBodega, PendienteInspeccion) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite Inspección", i.describeState()))
	}
	i.estado = Inspeccion
	i.subEstado = SubNone
	i.limpiezaOK = false
	i.fugasOK = false
	i.desinfeccionOK = false
	return nil
}

// SetValidaciones records the TIC inspection checks. Only TICs under
// inspection accept them.
func (i *Item) SetValidaciones(limpieza, fugas, desinfeccion bool) error {
	if i.kind != modelo.KindTIC {
		return i.conflict("solo unidades TIC llevan validaciones")
	}
	if i.estado != Inspeccion {
		return i.conflict("la unidad no está en Inspección")
	}
	i.limpiezaOK = limpieza
	i.fugasOK = fugas
	i.desinfeccionOK = desinfeccion
	return nil
}

// FinishInspeccion returns an inspected unit to bodega as a loose unit. For
// TICs all three validation checks must have passed. Box membership, lote,
// order reference and transit metadata are cleared.
func (i *Item) FinishInspeccion() error {
	if i.estado != Inspeccion {
		return i.conflict("la unidad no está en Inspección")
	}
	if i.kind == modelo.KindTIC && !(i.limpiezaOK && i.fugasOK && i.desinfeccionOK) {
		return i.conflict("validaciones de limpieza, fugas y desinfección incompletas")
	}
	i.estado = EnBodega
	i.subEstado = SubNone
	i.detach()
	return nil
}

// Inhabilitar applies a novedad: the unit is soft-disabled, terminally. Any
// box membership is released so the disabled unit holds none.
func (i *Item) Inhabilitar() error {
	if i.estado == Inhabilitado {
		return i.conflict("la unidad ya está inhabilitada")
	}
	i.estado = Inhabilitado
	i.subEstado = SubNone
	i.activo = false
	i.detach()
	return nil
}

// StartTraslado puts a resting unit in transit between sedes.
func (i *Item) StartTraslado() error {
	if err := i.requireActivo(); err != nil {
		return err
	}
	if !i.at(EnBodega, SubNone) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite traslado", i.describeState()))
	}
	i.estado = EnTraslado
	i.subEstado = SubNone
	return nil
}

// ReceiveTraslado completes a relocation: the unit rests in bodega at the
// destination sede.
func (i *Item) ReceiveTraslado(sedeID kernel.UUID) error {
	if err := sedeID.Validate(); err != nil {
		return err
	}
	if !i.at(EnTraslado, SubNone) {
		return i.conflict(fmt.Sprintf("estado actual %s no permite recepción de traslado", i.describeState()))
	}
	i.estado = EnBodega
	i.subEstado = SubNone
	i.sedeID = &sedeID
	return nil
}

// AssignSede re-pins the unit to a warehouse. Only the cross-sede guard calls
// this, after explicit operator authorization.
func (i *Item) AssignSede(sedeID kernel.UUID) error {
	if err := sedeID.Validate(); err != nil {
		return err
	}
	i.sedeID = &sedeID
	return nil
}

// AttachOrden tags the unit with an order reference.
func (i *Item) AttachOrden(numero string) error {
	if numero == "" {
		return errs.NewValueIsRequiredError("numero_orden")
	}
	i.numOrden = &numero
	return nil
}

// DetachFromCaja releases the unit's box membership without touching its
// lifecycle state. Used by the orphan-maintenance path when a box loses
// members outside the normal inspection teardown.
func (i *Item) DetachFromCaja() {
	i.cajaID = nil
	i.lote = nil
}

// detach clears membership, batch tag, order and transit metadata.
func (i *Item) detach() {
	i.cajaID = nil
	i.lote = nil
	i.numOrden = nil
	i.tempSalidaC = nil
	i.tempLlegadaC = nil
	i.sensorID = nil
}

func (i *Item) describeState() string {
	if i.subEstado == SubNone {
		return fmt.Sprintf("%q", i.estado.String())
	}
	return fmt.Sprintf("%q/%q", i.estado.String(), i.subEstado.String())
}
