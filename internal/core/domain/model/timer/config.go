package timer

import (
	"errors"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/pkg/errs"
)

// FallbackMinReuseSec is the hard-coded minimum-reuse duration (12 hours)
// applied when no configuration row covers a model, directly or through its
// capacity class.
const FallbackMinReuseSec int64 = 12 * 60 * 60

// ErrConfigIsNotConstructed is returned when a Config instance was not created
// through NewConfig.
var ErrConfigIsNotConstructed = errors.New("Config must be created via NewConfig constructor")

// Config is one timer configuration row: per (sede, model), per model
// globally, or consulted through its capacity class. It seeds new timers and
// feeds the reuse policy.
type Config struct {
	id       kernel.UUID
	sedeID   *kernel.UUID // nil = global row
	modeloID *kernel.UUID // nil = capacity-class level row
	litraje  modelo.Litraje

	preCongelamientoMinSec int64 // minimum freezing time
	atemperamientoSec      int64 // tempering duration
	maxSobreAtemperadoSec  int64 // maximum time over-tempered before re-freeze
	vidaUtilCajaSec        int64 // dispatched box shelf life
	minReusoSec            int64 // minimum remaining transit time to skip inspection

	guard kernel.ConstructorGuard
}

// NewConfig creates a configuration row. sedeID nil means the row applies
// tenant-wide; modeloID nil means the row binds by capacity class only.
func NewConfig(
	id kernel.UUID,
	sedeID, modeloID *kernel.UUID,
	litraje modelo.Litraje,
	preCongelamientoMinSec, atemperamientoSec, maxSobreAtemperadoSec, vidaUtilCajaSec, minReusoSec int64,
) (*Config, error) {
	if err := errors.Join(id.Validate(), litraje.Validate()); err != nil {
		return nil, err
	}
	for _, ref := range []*kernel.UUID{sedeID, modeloID} {
		if ref != nil {
			if err := ref.Validate(); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range []int64{preCongelamientoMinSec, atemperamientoSec, maxSobreAtemperadoSec, vidaUtilCajaSec, minReusoSec} {
		if d <= 0 {
			return nil, errs.NewValueIsOutOfRangeError("duration", d, 1, int64(1<<62))
		}
	}

	return &Config{
		id:                     id,
		sedeID:                 sedeID,
		modeloID:               modeloID,
		litraje:                litraje,
		preCongelamientoMinSec: preCongelamientoMinSec,
		atemperamientoSec:      atemperamientoSec,
		maxSobreAtemperadoSec:  maxSobreAtemperadoSec,
		vidaUtilCajaSec:        vidaUtilCajaSec,
		minReusoSec:            minReusoSec,
		guard:                  kernel.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Config was created through NewConfig.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigIsNotConstructed
	}
	return c.guard.Validate(ErrConfigIsNotConstructed)
}

// ID returns the row identity.
func (c *Config) ID() kernel.UUID { return c.id }

// SedeID returns the warehouse the row applies to, nil for global rows.
func (c *Config) SedeID() *kernel.UUID { return c.sedeID }

// ModeloID returns the model the row applies to, nil for capacity-class rows.
func (c *Config) ModeloID() *kernel.UUID { return c.modeloID }

// Litraje returns the capacity class of the row.
func (c *Config) Litraje() modelo.Litraje { return c.litraje }

// PreCongelamientoMinSec returns the minimum freezing duration.
func (c *Config) PreCongelamientoMinSec() int64 { return c.preCongelamientoMinSec }

// AtemperamientoSec returns the tempering duration.
func (c *Config) AtemperamientoSec() int64 { return c.atemperamientoSec }

// MaxSobreAtemperadoSec returns the maximum over-temper duration.
func (c *Config) MaxSobreAtemperadoSec() int64 { return c.maxSobreAtemperadoSec }

// VidaUtilCajaSec returns the dispatched box shelf life.
func (c *Config) VidaUtilCajaSec() int64 { return c.vidaUtilCajaSec }

// MinReusoSec returns the minimum remaining transit time required for reuse.
func (c *Config) MinReusoSec() int64 { return c.minReusoSec }

// AppliesToSede reports whether the row is scoped to the given sede.
func (c *Config) AppliesToSede(sedeID kernel.UUID) bool {
	return c.sedeID != nil && c.sedeID.IsEqual(sedeID)
}

// IsGlobal reports whether the row applies tenant-wide.
func (c *Config) IsGlobal() bool {
	return c.sedeID == nil
}
