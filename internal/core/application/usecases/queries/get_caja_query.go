package queries

import (
	"errors"
	"time"

	"coldchain/internal/core/domain/model/kernel"
)

var ErrGetCajaQueryIsNotConstructed = errors.New(
	"GetCajaQuery must be created via NewGetCajaQuery constructor",
)

// GetCajaQuery retrieves one box with its members, orders and cronometers.
type GetCajaQuery struct {
	cajaID kernel.UUID

	guard kernel.ConstructorGuard
}

// NewGetCajaQuery creates a box detail query.
func NewGetCajaQuery(cajaID kernel.UUID) (GetCajaQuery, error) {
	if err := cajaID.Validate(); err != nil {
		return GetCajaQuery{}, err
	}

	return GetCajaQuery{
		cajaID: cajaID,
		guard:  kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCajaQuery) Validate() error {
	return q.guard.Validate(ErrGetCajaQueryIsNotConstructed)
}

// CajaID returns the requested box.
func (q GetCajaQuery) CajaID() kernel.UUID {
	return q.cajaID
}

// CajaMemberResponse is one member unit of the box.
type CajaMemberResponse struct {
	ItemID    kernel.UUID
	Rfid      string
	Rol       string
	Estado    string
	SubEstado string
	Activo    bool
}

// CajaTimerResponse is one cronometer row owned by the box.
type CajaTimerResponse struct {
	Phase       string
	Active      bool
	StartedAt   *time.Time
	DurationSec *int64
	CompletedAt *time.Time
}

// GetCajaQueryResponse is the full box read model.
type GetCajaQueryResponse struct {
	ID        kernel.UUID
	Lote      string
	Litraje   string
	CreatedAt time.Time
	Members   []CajaMemberResponse
	OrdenIDs  []kernel.UUID
	Timers    []CajaTimerResponse
}
