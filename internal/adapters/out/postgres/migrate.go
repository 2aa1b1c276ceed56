package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"coldchain/internal/adapters/out/postgres/cajarepo"
	"coldchain/internal/adapters/out/postgres/itemrepo"
	"coldchain/internal/adapters/out/postgres/modelorepo"
	"coldchain/internal/adapters/out/postgres/novedadrepo"
	"coldchain/internal/adapters/out/postgres/ordenrepo"
	"coldchain/internal/adapters/out/postgres/timerrepo"
)

// Migrate creates every tenant schema and migrates the full table set inside
// each one. Each tenant carries its own copy of the tables; cross-tenant
// reads are impossible by construction.
func Migrate(db *gorm.DB, tenantSchemas []string) error {
	for _, schema := range tenantSchemas {
		if err := migrateSchema(db, schema); err != nil {
			return fmt.Errorf("migrate schema %s: %w", schema, err)
		}
	}
	return nil
}

func migrateSchema(db *gorm.DB, schema string) error {
	if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", schema)).Error; err != nil {
		return err
	}

	// AutoMigrate resolves unqualified table names through search_path.
	// Connection pins one pooled connection so the SET holds for the whole
	// migration and does not leak into unrelated sessions.
	return db.Connection(func(conn *gorm.DB) error {
		if err := conn.Exec(fmt.Sprintf("SET search_path TO %q, public", schema)).Error; err != nil {
			return err
		}

		return conn.AutoMigrate(
			&modelorepo.ModeloDTO{},
			&itemrepo.ItemDTO{},
			&cajarepo.CajaDTO{},
			&cajarepo.CajaItemDTO{},
			&cajarepo.CajaOrdenDTO{},
			&timerrepo.TimerDTO{},
			&timerrepo.TimerConfigDTO{},
			&ordenrepo.OrdenDTO{},
			&novedadrepo.NovedadDTO{},
		)
	})
}
