// Package queries contains read-only operations returning read models.
// Implements the Query side of CQRS: direct SQL against the store, no
// aggregate rehydration unless a domain service needs it.
package queries

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"coldchain/internal/core/domain/model/kernel"
)

// withTenantTx runs fn inside a transaction pinned to the caller's tenant
// schema. SET LOCAL scopes the search_path to this transaction only, so the
// pooled connection comes back clean. The schema identifier was validated at
// scope construction.
func withTenantTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	scope, err := kernel.ScopeFromContext(ctx)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		setSchema := fmt.Sprintf("SET LOCAL search_path TO %s, public", scope.TenantSchema())
		if err := tx.Exec(setSchema).Error; err != nil {
			return err
		}
		return fn(tx)
	})
}
