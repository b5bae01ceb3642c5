package app

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/fhaberland/wgstats/internal/logger"
	"github.com/fhaberland/wgstats/migrations"
)

// MigrateDB applies all pending schema migrations embedded in the binary.
//
// Both execution modes call this on startup, so a fresh database needs no
// manual setup step. Goose tracks applied versions in its own table, making
// repeated calls no-ops.
func MigrateDB(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.L().Info().Int64("schema_version", version).Msg("migrations applied")
	return nil
}
