// Package caja implements the box aggregate: the 1 CUBE + 1 VIP + 6 TIC
// grouping identified by a generated lot code. A caja is a derived grouping
// that exists only while member items reference it, but it is the locking
// anchor for every box-level operation.
package caja

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrCajaIsNotConstructed is returned when a Caja instance was not created
// through NewCaja or RestoreCaja.
var ErrCajaIsNotConstructed = errors.New("Caja must be created via NewCaja constructor")

// Composition constants: a usable box is exactly one outer shell, one vacuum
// panel and six thermal inserts of one capacity class.
const (
	RequiredCubes = 1
	RequiredVips  = 1
	RequiredTics  = 6
	RequiredTotal = RequiredCubes + RequiredVips + RequiredTics
)

// Rol is the role a member unit plays inside the box.
type Rol int

const (
	// RolUnknown represents an invalid or undefined role.
	RolUnknown Rol = iota

	// RolCube marks the outer shell member.
	RolCube

	// RolVip marks the vacuum panel member.
	RolVip

	// RolTic marks a thermal insert member.
	RolTic
)

func rolStrings() map[Rol]string {
	return map[Rol]string{
		RolUnknown: "unknown",
		RolCube:    "cube",
		RolVip:     "vip",
		RolTic:     "tic",
	}
}

// Validate checks that the Rol is one of cube, vip or tic.
func (r Rol) Validate() error {
	if r != RolCube && r != RolVip && r != RolTic {
		return errs.NewValueIsInvalidErrorWithCause("rol",
			fmt.Errorf("%d is not a valid rol", r))
	}
	return nil
}

// String returns the wire label of the role.
func (r Rol) String() string {
	if s, ok := rolStrings()[r]; ok {
		return s
	}
	return "unknown"
}

// RolForKind maps a catalog kind onto the box role it plays.
func RolForKind(k modelo.Kind) Rol {
	switch k {
	case modelo.KindCUBE:
		return RolCube
	case modelo.KindVIP:
		return RolVip
	case modelo.KindTIC:
		return RolTic
	default:
		return RolUnknown
	}
}

// Member is one (caja, item, rol) membership row.
type Member struct {
	ItemID kernel.UUID
	Rfid   kernel.Rfid
	Rol    Rol
}

// Caja is the box aggregate root.
type Caja struct {
	id        kernel.UUID
	lote      string
	litraje   modelo.Litraje
	createdAt time.Time
	members   []Member
	ordenIDs  []kernel.UUID // first is the primary order

	isConstructed bool
}

// GenerateLote produces a fresh unique lot code for a box of the given
// capacity class, e.g. "CAJA-5L-9F3A27B1". Uniqueness is ultimately enforced
// by the storage index; the random suffix makes collisions negligible.
func GenerateLote(litraje modelo.Litraje) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CAJA-%s-%s", litraje.String(), suffix)
}

// NewCaja creates a box from a full member set. The composition must already
// be exactly 1 CUBE + 1 VIP + 6 TIC; the composition engine produces member
// sets that satisfy it, and this constructor re-checks the invariant.
func NewCaja(
	id kernel.UUID,
	lote string,
	litraje modelo.Litraje,
	members []Member,
	createdAt time.Time,
) (*Caja, error) {
	if err := errors.Join(id.Validate(), litraje.Validate()); err != nil {
		return nil, err
	}
	if lote == "" {
		return nil, errs.NewValueIsRequiredError("lote")
	}
	if err := validateComposition(members); err != nil {
		return nil, err
	}

	return &Caja{
		id:            id,
		lote:          lote,
		litraje:       litraje,
		createdAt:     createdAt,
		members:       append([]Member(nil), members...),
		isConstructed: true,
	}, nil
}

// RestoreCaja rehydrates a box from persistence. Membership may be partial
// here: novedades remove members over the box's life, so the 1+1+6 invariant
// only binds at creation.
func RestoreCaja(
	id kernel.UUID,
	lote string,
	litraje modelo.Litraje,
	members []Member,
	ordenIDs []kernel.UUID,
	createdAt time.Time,
) (*Caja, error) {
	if err := errors.Join(id.Validate(), litraje.Validate()); err != nil {
		return nil, err
	}
	if lote == "" {
		return nil, errs.NewValueIsRequiredError("lote")
	}
	for _, m := range members {
		if err := errors.Join(m.ItemID.Validate(), m.Rfid.Validate(), m.Rol.Validate()); err != nil {
			return nil, err
		}
	}

	return &Caja{
		id:            id,
		lote:          lote,
		litraje:       litraje,
		createdAt:     createdAt,
		members:       append([]Member(nil), members...),
		ordenIDs:      append([]kernel.UUID(nil), ordenIDs...),
		isConstructed: true,
	}, nil
}

func validateComposition(members []Member) error {
	var cubes, vips, tics int
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if err := errors.Join(m.ItemID.Validate(), m.Rfid.Validate(), m.Rol.Validate()); err != nil {
			return err
		}
		if _, dup := seen[m.Rfid.String()]; dup {
			return errs.NewStateConflictError(m.Rfid.String(), "código repetido en la composición")
		}
		seen[m.Rfid.String()] = struct{}{}
		switch m.Rol {
		case RolCube:
			cubes++
		case RolVip:
			vips++
		case RolTic:
			tics++
		}
	}
	if cubes != RequiredCubes || vips != RequiredVips || tics != RequiredTics {
		return errs.NewValueIsInvalidErrorWithCause("composition",
			fmt.Errorf("composición %d CUBE + %d VIP + %d TIC, se requiere %d+%d+%d",
				cubes, vips, tics, RequiredCubes, RequiredVips, RequiredTics))
	}
	return nil
}

// Validate ensures the Caja was created through a constructor.
func (c *Caja) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCajaIsNotConstructed
	}
	return nil
}

// ID returns the box identity.
func (c *Caja) ID() kernel.UUID { return c.id }

// Lote returns the generated lot code.
func (c *Caja) Lote() string { return c.lote }

// Litraje returns the box's capacity class.
func (c *Caja) Litraje() modelo.Litraje { return c.litraje }

// CreatedAt returns the box creation time.
func (c *Caja) CreatedAt() time.Time { return c.createdAt }

// Members returns the current membership rows.
func (c *Caja) Members() []Member {
	return append([]Member(nil), c.members...)
}

// TicMembers returns only the thermal insert members.
func (c *Caja) TicMembers() []Member {
	tics := make([]Member, 0, RequiredTics)
	for _, m := range c.members {
		if m.Rol == RolTic {
			tics = append(tics, m)
		}
	}
	return tics
}

// OrdenIDs returns the associated orders, primary first.
func (c *Caja) OrdenIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), c.ordenIDs...)
}

// AttachOrden associates an order with the box. The first attached order is
// the primary one. Duplicates are rejected.
func (c *Caja) AttachOrden(ordenID kernel.UUID) error {
	if err := ordenID.Validate(); err != nil {
		return err
	}
	for _, existing := range c.ordenIDs {
		if existing.IsEqual(ordenID) {
			return errs.NewValueIsInvalidErrorWithCause("orden",
				fmt.Errorf("orden %s ya está asociada a la caja", ordenID))
		}
	}
	c.ordenIDs = append(c.ordenIDs, ordenID)
	return nil
}

// RemoveMember drops one membership row by item identity. Returns true when
// the box is left empty and should be deleted by the caller.
func (c *Caja) RemoveMember(itemID kernel.UUID) (empty bool, err error) {
	for idx, m := range c.members {
		if m.ItemID.IsEqual(itemID) {
			c.members = append(c.members[:idx], c.members[idx+1:]...)
			return len(c.members) == 0, nil
		}
	}
	return false, errs.NewObjectNotFoundError("member", itemID.String())
}

// HasMember reports whether the item belongs to this box.
func (c *Caja) HasMember(itemID kernel.UUID) bool {
	for _, m := range c.members {
		if m.ItemID.IsEqual(itemID) {
			return true
		}
	}
	return false
}
