package commands

import (
	"context"

	"coldchain/internal/core/domain/model/item"
	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/core/domain/services"
)

// guardSede runs the cross-sede transfer guard over the units a mutation is
// about to touch. It must be the first effect of every mutating handler: a
// blocked transfer aborts before anything else changed. Units re-pinned by an
// authorized transfer are mutated in place; the caller persists them.
// Callers without a sede in scope are not location-restricted.
func guardSede(ctx context.Context, units []*item.Item) error {
	scope, err := kernel.ScopeFromContext(ctx)
	if err != nil {
		return err
	}
	if scope.SedeID() == nil {
		return nil
	}

	guard := services.NewSedeGuard()
	decision, err := guard.Check(*scope.SedeID(), units, scope.AllowSedeTransfer())
	if err != nil {
		return err
	}
	if decision.RequiresTransfer() {
		return guard.Apply(decision)
	}
	return nil
}

// sedeFromScope returns the caller's sede, or nil when the caller is not
// pinned to one.
func sedeFromScope(ctx context.Context) *kernel.UUID {
	scope, err := kernel.ScopeFromContext(ctx)
	if err != nil {
		return nil
	}
	return scope.SedeID()
}

// resolveDuration picks the configured duration for one model, preferring
// sede-specific model rows over global model rows over capacity-class rows.
// Returns false when no candidate applies.
func resolveDuration(
	configs []*timer.Config,
	sedeID *kernel.UUID,
	modeloID kernel.UUID,
	litraje modelo.Litraje,
	field func(*timer.Config) int64,
) (int64, bool) {
	var sharedSede, sharedGlobal, global *timer.Config

	for _, cfg := range configs {
		switch {
		case cfg.ModeloID() != nil && cfg.ModeloID().IsEqual(modeloID):
			if sedeID != nil && cfg.AppliesToSede(*sedeID) {
				return field(cfg), true
			}
			if cfg.IsGlobal() {
				global = cfg
			}
		case cfg.ModeloID() == nil && cfg.Litraje().IsEqual(litraje):
			if sedeID != nil && cfg.AppliesToSede(*sedeID) {
				sharedSede = cfg
			} else if cfg.IsGlobal() {
				sharedGlobal = cfg
			}
		}
	}

	for _, cfg := range []*timer.Config{global, sharedSede, sharedGlobal} {
		if cfg != nil {
			return field(cfg), true
		}
	}
	return 0, false
}
