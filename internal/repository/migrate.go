package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"

	"github.com/hearthealth/hearthealth/migrations"
)

// Migrate applies every pending up migration from the embedded set.
// golang-migrate records the current version in schema_migrations and holds
// an advisory lock while it runs. Cancelling ctx stops after the migration
// in flight.
func (r *Repository) Migrate(ctx context.Context, logger *slog.Logger) error {
	m, err := migrations.NewMigrator(r.pool.Config().ConnConfig, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrations.Close(m)
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", version)
	}
	if logger != nil {
		logger.Info("schema up to date", "version", version)
	}

	return nil
}
