package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// MigrationStatus describes the schema version after a migration run.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

// Migrate applies every pending "up" migration found at sourceURL
// (for example "file://migrations") to the database at databaseURL.
func Migrate(databaseURL, sourceURL string, logger *slog.Logger) (MigrationStatus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var status MigrationStatus

	// a short-lived database/sql handle on the pgx stdlib driver
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return status, fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := db.Ping(); err != nil {
		return status, fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return status, fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
	if err != nil {
		return status, fmt.Errorf("could not create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return status, fmt.Errorf("failed to apply migrations: %w", upErr)
	}
	status.Applied = upErr == nil

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return status, fmt.Errorf("failed to read migration version: %w", err)
	}
	status.Version, status.Dirty = version, dirty

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return status, fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return status, fmt.Errorf("migration database error: %w", dbErr)
	}

	if status.Applied {
		logger.Info("Database migrations applied", slog.Uint64("version", uint64(version)))
	} else {
		logger.Info("No new migrations to apply", slog.Uint64("version", uint64(version)))
	}
	return status, nil
}
