package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/serrors"
)

var ErrMigrationFailed = serrors.NewError("MIGRATION_FAILED", "schema migration failed", "")

// MigrationManager applies module schema files in registration order and
// records them in schema_migrations so each file runs once.
type MigrationManager interface {
	RegisterSchema(fsys *embed.FS)
	Run(ctx context.Context, logger *logrus.Logger) error
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []*embed.FS
}

func (m *migrationManager) RegisterSchema(fsys *embed.FS) {
	m.schemas = append(m.schemas, fsys)
}

func (m *migrationManager) Run(ctx context.Context, logger *logrus.Logger) error {
	if _, err := m.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	filename varchar(255) PRIMARY KEY,
	applied_at timestamptz NOT NULL DEFAULT now()
)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	for _, fsys := range m.schemas {
		files, err := sqlFiles(fsys)
		if err != nil {
			return err
		}
		for _, file := range files {
			applied, err := m.isApplied(ctx, file)
			if err != nil {
				return err
			}
			if applied {
				continue
			}
			if err := m.apply(ctx, fsys, file); err != nil {
				logger.WithError(err).Errorf("migration %s failed", file)
				return fmt.Errorf("%w: %s: %v", ErrMigrationFailed, file, err)
			}
			logger.Infof("applied migration %s", file)
		}
	}
	return nil
}

func (m *migrationManager) isApplied(ctx context.Context, file string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename=$1)`, file,
	).Scan(&exists)
	return exists, err
}

func (m *migrationManager) apply(ctx context.Context, fsys *embed.FS, file string) error {
	contents, err := fsys.ReadFile(file)
	if err != nil {
		return err
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(contents)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (filename) VALUES ($1)`, file,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func sqlFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading schema files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
