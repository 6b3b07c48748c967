package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/andalize/proptic/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

// Files returns the embedded migration names in apply order.
func Files() ([]string, error) {
	names, err := fs.Glob(files, "sql/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Statements splits a migration file on ";" and drops empty and comment-only
// chunks.
func Statements(content string) []string {
	var out []string
	for _, stmt := range strings.Split(content, ";") {
		lines := strings.Split(strings.TrimSpace(stmt), "\n")
		kept := lines[:0]
		for _, l := range lines {
			if strings.HasPrefix(strings.TrimSpace(l), "--") {
				continue
			}
			kept = append(kept, l)
		}
		stmt = strings.TrimSpace(strings.Join(kept, "\n"))
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}

// Apply runs every embedded migration that is not yet recorded in
// schema_migrations. Each file runs in its own transaction.
func Apply(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	names, err := Files()
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}

	for _, name := range names {
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check migration %s: %w", name, err)
		}
		if exists {
			logger.Debug("Migration already applied", zap.String("name", name))
			continue
		}

		content, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", name, err)
		}
		for i, stmt := range Statements(string(content)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %s statement %d failed: %w", name, i+1, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", name, err)
		}
		logger.Info("Migration applied", zap.String("name", name))
	}
	return nil
}

// SeedRoles inserts the default role catalog. Existing names are left alone.
// It returns the number of roles created.
func SeedRoles(ctx context.Context, db *sql.DB) (int, error) {
	created := 0
	for _, r := range domain.SeedRoles {
		res, err := db.ExecContext(ctx,
			`INSERT INTO roles (id, name, display_name) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), r.Name, r.DisplayName,
		)
		if err != nil {
			return created, fmt.Errorf("failed to seed role %s: %w", r.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	return created, nil
}
