package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Execer is the subset of pgx used to apply migrations.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Migrate applies every embedded migration in file-name order. The scripts are
// idempotent, so running them against an up-to-date schema is a no-op.
func Migrate(ctx context.Context, db Execer) error {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(script), pgx.QueryExecModeSimpleProtocol); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
		slog.Info("applied migration", "file", name)
	}
	return nil
}

// Schema returns the embedded migration scripts concatenated, for test setups
// that create throwaway databases.
func Schema() (string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return "", err
	}
	sort.Strings(names)
	var out string
	for _, name := range names {
		script, err := migrationFiles.ReadFile(name)
		if err != nil {
			return "", err
		}
		out += string(script) + "\n"
	}
	return out, nil
}
