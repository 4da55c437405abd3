package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migration directions
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// Migrate applies the embedded schema migrations in the given direction.
// Running up on a current schema is not an error.
func (d *DB) Migrate(direction string) error {
	var (
		driver migratedb.Driver
		err    error
	)

	switch d.config.Driver {
	case DriverPostgres:
		driver, err = postgres.WithInstance(d.db.DB, &postgres.Config{})
	case DriverSQLite:
		driver, err = sqlite.WithInstance(d.db.DB, &sqlite.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", d.config.Driver)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", d.config.Driver, err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+d.config.Driver)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.config.Driver, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	switch direction {
	case MigrateUp:
		err = m.Up()
	case MigrateDown:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations %s: %w", direction, err)
	}

	return nil
}
