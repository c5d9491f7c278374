package store

import (
	"context"
	"embed"
	"io/fs"
	"path"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate brings the schema up to date.  It probes for the users table: on
// a fresh database every migration is applied; otherwise only versions
// missing from goose's history table are applied, in order.  Calling it
// again once everything is applied is a no-op.
func (s *SQLStore) Migrate(ctx context.Context) error {
	s.logger.Info("checking for pending migrations")

	initialized, err := s.schemaInitialized(ctx)
	if err != nil {
		s.logger.Error("failed to probe schema", "error", err)
		return &MigrationError{Err: err}
	}

	provider, err := s.migrationProvider()
	if err != nil {
		return &MigrationError{Err: err}
	}

	if !initialized {
		s.logger.Info("database is not initialized, running initial setup migrations")
		if err := s.applyMigrations(ctx, provider); err != nil {
			return err
		}
		s.logger.Info("initial setup migrations complete")
		return nil
	}

	pending, err := pendingVersions(ctx, provider)
	if err != nil {
		s.logger.Error("failed to check for pending migrations", "error", err)
		return &MigrationError{Err: err}
	}
	if len(pending) == 0 {
		s.logger.Info("no pending migrations found")
		return nil
	}

	s.logger.Info("running pending migrations", "versions", pending)
	if err := s.applyMigrations(ctx, provider); err != nil {
		return err
	}
	s.logger.Info("migrations complete")
	return nil
}

// schemaInitialized checks out a connection just for the probe and gives it
// back before goose needs the pool.
func (s *SQLStore) schemaInitialized(ctx context.Context) (bool, error) {
	conn, err := s.conn(ctx, "migrate")
	if err != nil {
		return false, err
	}
	defer conn.Close()

	var exists bool
	if err := conn.QueryRowxContext(ctx, s.dialect.tableProbe).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "probing users table")
	}
	return exists, nil
}

func (s *SQLStore) migrationProvider() (*goose.Provider, error) {
	fsys, err := fs.Sub(migrationsFS, s.dialect.migrationsDir)
	if err != nil {
		return nil, errors.Wrap(err, "loading embedded migrations")
	}
	provider, err := goose.NewProvider(s.dialect.goose, s.db.DB, fsys)
	if err != nil {
		return nil, errors.Wrap(err, "creating migration provider")
	}
	return provider, nil
}

func (s *SQLStore) applyMigrations(ctx context.Context, provider *goose.Provider) error {
	results, err := provider.Up(ctx)
	if err != nil {
		s.logger.Error("failed to run migrations", "error", err)
		return &MigrationError{Err: errors.Wrap(err, "applying migrations")}
	}
	for _, r := range results {
		s.logger.Info("applied migration",
			"version", r.Source.Version, "file", path.Base(r.Source.Path), "duration", r.Duration)
	}
	return nil
}

func pendingVersions(ctx context.Context, provider *goose.Provider) ([]int64, error) {
	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading migration status")
	}
	var pending []int64
	for _, st := range statuses {
		if st.State == goose.StatePending {
			pending = append(pending, st.Source.Version)
		}
	}
	return pending, nil
}
