// Package modelo holds the item model catalog entry consumed by the workflow
// engine. A model determines what a physical unit is (thermal insert, vacuum
// panel or outer shell) and which capacity class it belongs to. Kind and
// capacity class are explicit catalog fields resolved once at lookup time;
// nothing in the engine re-derives them from the model name.
package modelo

import (
	"errors"
	"fmt"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// ErrModeloIsNotConstructed is returned when a Modelo instance was not created
// through NewModelo or RestoreModelo.
var ErrModeloIsNotConstructed = errors.New("Modelo must be created via NewModelo constructor")

// Kind classifies a unit model into one of the three physical roles that make
// up a box.
type Kind int

const (
	// KindUnknown represents an invalid or undefined kind.
	KindUnknown Kind = iota

	// KindTIC is a thermal insert. TICs are the only units that go through
	// pre-conditioning (freezing and tempering).
	KindTIC

	// KindVIP is a vacuum insulated panel.
	KindVIP

	// KindCUBE is the outer shell of a box.
	KindCUBE
)

func kindStrings() map[Kind]string {
	return map[Kind]string{
		KindUnknown: "Unknown",
		KindTIC:     "TIC",
		KindVIP:     "VIP",
		KindCUBE:    "CUBE",
	}
}

// Validate checks that the Kind is one of TIC, VIP or CUBE.
func (k Kind) Validate() error {
	if k != KindTIC && k != KindVIP && k != KindCUBE {
		return errs.NewValueIsInvalidErrorWithCause("kind",
			fmt.Errorf("%d is not a valid unit kind", k))
	}
	return nil
}

// String returns the catalog label for the kind.
func (k Kind) String() string {
	if s, ok := kindStrings()[k]; ok {
		return s
	}
	return "Unknown"
}

// Litraje is the capacity class of a model (e.g. "5L"). All members of a box
// must share one Litraje.
type Litraje struct {
	value string
}

// NewLitraje validates and wraps a capacity class label.
func NewLitraje(value string) (Litraje, error) {
	if value == "" {
		return Litraje{}, errs.NewValueIsRequiredError("litraje")
	}
	return Litraje{value: value}, nil
}

// String returns the capacity class label.
func (l Litraje) String() string {
	return l.value
}

// IsEqual compares two capacity classes.
func (l Litraje) IsEqual(other Litraje) bool {
	return l.value == other.value
}

// Validate checks that the Litraje was constructed through NewLitraje.
func (l Litraje) Validate() error {
	if l.value == "" {
		return errs.NewValueIsRequiredError("litraje must be created via NewLitraje")
	}
	return nil
}

// Modelo is a catalog entry describing one unit model. The workflow engine
// consumes it read-only; catalog administration is outside this service.
type Modelo struct {
	id      kernel.UUID
	nombre  string
	kind    Kind
	litraje Litraje

	guard kernel.ConstructorGuard
}

// NewModelo creates a catalog entry with validation.
func NewModelo(id kernel.UUID, nombre string, kind Kind, litraje Litraje) (*Modelo, error) {
	if err := errors.Join(
		id.Validate(),
		kind.Validate(),
		litraje.Validate(),
	); err != nil {
		return nil, err
	}
	if nombre == "" {
		return nil, errs.NewValueIsRequiredError("nombre")
	}

	return &Modelo{
		id:      id,
		nombre:  nombre,
		kind:    kind,
		litraje: litraje,
		guard:   kernel.NewConstructorGuard(),
	}, nil
}

// RestoreModelo rehydrates a catalog entry from persistence.
func RestoreModelo(id kernel.UUID, nombre string, kind Kind, litraje Litraje) (*Modelo, error) {
	return NewModelo(id, nombre, kind, litraje)
}

// Validate ensures the Modelo was created through a constructor.
func (m *Modelo) Validate() error {
	if m == nil {
		return ErrModeloIsNotConstructed
	}
	return m.guard.Validate(ErrModeloIsNotConstructed)
}

// ID returns the catalog identifier.
func (m *Modelo) ID() kernel.UUID {
	return m.id
}

// Nombre returns the catalog display name.
func (m *Modelo) Nombre() string {
	return m.nombre
}

// Kind returns the physical role of units of this model.
func (m *Modelo) Kind() Kind {
	return m.kind
}

// Litraje returns the capacity class of the model.
func (m *Modelo) Litraje() Litraje {
	return m.litraje
}
