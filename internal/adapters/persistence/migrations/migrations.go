// Package migrations holds the versioned schema for MySQL and Postgres and
// applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed mysql/*.sql postgres/*.sql
var files embed.FS

// New returns a migrator for driver ("mysql" or "postgres") over an open connection
func New(driver string, db *sql.DB) (*migrate.Migrate, error) {
	var (
		instance database.Driver
		err      error
	)
	switch driver {
	case "mysql":
		instance, err = mysql.WithInstance(db, &mysql.Config{})
	case "postgres":
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("start %s migration driver: %w", driver, err)
	}

	source, err := iofs.New(files, driver)
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	return migrate.NewWithInstance("iofs", source, driver, instance)
}

// Apply runs direction ("up" or "down") or steps migrations when steps != 0.
// An already current schema is not an error.
func Apply(m *migrate.Migrate, direction string, steps int) error {
	var err error
	switch {
	case steps != 0:
		err = m.Steps(steps)
	case direction == "up":
		err = m.Up()
	case direction == "down":
		err = m.Down()
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
