package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/crucial707/user-api/internal/config"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations for one driver.
type Migrator struct {
	m   *migrate.Migrate
	src source.Driver
	// closeAll is false when m wraps a caller-owned *sql.DB, which m.Close would close.
	closeAll bool
}

// NewMigrator prepares migrations for cfg.DBDriver. Postgres migrations run over their own
// connection built from cfg; SQLite migrations run on database, which must have been opened
// with OpenSQLite (an in-memory database is only visible through that handle).
func NewMigrator(cfg config.Config, database *sql.DB) (*Migrator, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("migrate source: %w", err)
	}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		m, err := migrate.NewWithSourceInstance("iofs", src, cfg.PostgresURL())
		if err != nil {
			return nil, fmt.Errorf("migrate new: %w", err)
		}
		return &Migrator{m: m, src: src, closeAll: true}, nil
	case config.DriverSQLite:
		driver, err := sqlite3.WithInstance(database, &sqlite3.Config{})
		if err != nil {
			return nil, fmt.Errorf("migrate driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, config.DriverSQLite, driver)
		if err != nil {
			return nil, fmt.Errorf("migrate new: %w", err)
		}
		return &Migrator{m: m, src: src}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

// Up applies all pending migrations. Being at the latest version already is not an error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back the most recently applied migration.
func (mg *Migrator) Down() error {
	if err := mg.m.Steps(-1); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version reports the current schema version; version 0 means nothing is applied.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases what the migrator owns. A caller-provided SQLite handle stays open;
// only the migration source is closed.
func (mg *Migrator) Close() error {
	if !mg.closeAll {
		return mg.src.Close()
	}
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Run applies all pending migrations (Up) for cfg.DBDriver.
func Run(cfg config.Config, database *sql.DB) error {
	mg, err := NewMigrator(cfg, database)
	if err != nil {
		return err
	}
	defer mg.Close()
	return mg.Up()
}
