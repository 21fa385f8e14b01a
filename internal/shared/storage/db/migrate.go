package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/pressly/goose/v3"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration commands accepted by Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// RunMigrations applies all pending migrations. A nil database is a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, MigrateUp)
}

// Migrate runs a goose command against the embedded migrations.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	if database == nil {
		return nil
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	switch command {
	case MigrateUp:
		return goose.UpContext(ctx, database, migrationsDir)
	case MigrateDown:
		return goose.DownContext(ctx, database, migrationsDir)
	case MigrateStatus:
		return goose.StatusContext(ctx, database, migrationsDir)
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// MigrationNames lists the embedded migration files in apply order.
func MigrationNames() ([]string, error) {
	names, err := fs.Glob(migrationFiles, migrationsDir+"/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
