package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const migrationsDir = "migrations"

// RunMigrations applies the pending up migrations under migrations/ in fsys
// and returns the schema version the database ends up at.
func RunMigrations(db *sql.DB, fsys fs.FS) (uint, error) {
	src, err := migrationSource(fsys)
	if err != nil {
		return 0, err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, fmt.Errorf("could not create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("could not run up migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("could not read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

// migrationSource opens fsys and fails early when it holds no migrations,
// which usually means the embed pattern missed the files.
func migrationSource(fsys fs.FS) (source.Driver, error) {
	src, err := iofs.New(fsys, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("could not create iofs source: %w", err)
	}
	if _, err := src.First(); err != nil {
		src.Close()
		return nil, fmt.Errorf("no migrations found in %s: %w", migrationsDir, err)
	}
	return src, nil
}
