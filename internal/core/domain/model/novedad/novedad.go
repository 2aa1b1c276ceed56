// Package novedad implements the incident record that permanently disables an
// inventory unit. The listing views over these records are outside this
// service; writing them is not.
package novedad

import (
	"errors"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/pkg/errs"
)

// ErrNovedadIsNotConstructed is returned when a Novedad instance was not
// created through NewNovedad.
var ErrNovedadIsNotConstructed = errors.New("Novedad must be created via NewNovedad constructor")

// Novedad is one incident record against a unit.
type Novedad struct {
	id        kernel.UUID
	itemID    kernel.UUID
	rfid      kernel.Rfid
	motivo    string
	createdAt time.Time

	guard kernel.ConstructorGuard
}

// NewNovedad creates an incident record.
func NewNovedad(id, itemID kernel.UUID, rfid kernel.Rfid, motivo string, createdAt time.Time) (*Novedad, error) {
	if err := errors.Join(id.Validate(), itemID.Validate(), rfid.Validate()); err != nil {
		return nil, err
	}
	if motivo == "" {
		return nil, errs.NewValueIsRequiredError("motivo")
	}
	return &Novedad{
		id:        id,
		itemID:    itemID,
		rfid:      rfid,
		motivo:    motivo,
		createdAt: createdAt,
		guard:     kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Novedad was created through NewNovedad.
func (n *Novedad) Validate() error {
	if n == nil {
		return ErrNovedadIsNotConstructed
	}
	return n.guard.Validate(ErrNovedadIsNotConstructed)
}

// ID returns the record identity.
func (n *Novedad) ID() kernel.UUID { return n.id }

// ItemID returns the disabled unit's storage identity.
func (n *Novedad) ItemID() kernel.UUID { return n.itemID }

// Rfid returns the disabled unit's tag code.
func (n *Novedad) Rfid() kernel.Rfid { return n.rfid }

// Motivo returns the operator-entered reason.
func (n *Novedad) Motivo() string { return n.motivo }

// CreatedAt returns when the incident was registered.
func (n *Novedad) CreatedAt() time.Time { return n.createdAt }
