package sqlitedb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

const (
	driverName         = "sqlite"
	migrationSourceDir = "migration"
)

//go:embed migration/*.sql
var migrations embed.FS

// OpenDb opens the sqlite database at dbPath, ":memory:" included, and
// migrates it to the latest schema.
func OpenDb(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	// a single connection keeps in-memory databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := migrateDb(db); err != nil {
		// nolint:all
		db.Close()
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return db, nil
}

func migrateDb(db *sql.DB) error {
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return err
	}
	source, err := iofs.New(migrations, migrationSourceDir)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
