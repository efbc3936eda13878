package store

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	migrationSuffix = ".up.sql"
	rollbackSuffix  = ".down.sql"
)

// PendingMigrations lists the *.up.sql files in migrations, sorted by name,
// that are not in applied.
func PendingMigrations(migrations fs.FS, applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var pending []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), migrationSuffix) {
			continue
		}
		version := strings.TrimSuffix(e.Name(), migrationSuffix)
		if !applied[version] {
			pending = append(pending, version)
		}
	}
	sort.Strings(pending)
	return pending, nil
}

// Migrate applies pending migrations in order, each in its own transaction,
// and returns the versions it applied.
func Migrate(ctx context.Context, db *pgxpool.Pool, migrations fs.FS) ([]string, error) {
	if _, err := db.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return nil, err
	}

	pending, err := PendingMigrations(migrations, applied)
	if err != nil {
		return nil, err
	}

	var done []string
	for _, version := range pending {
		sql, err := fs.ReadFile(migrations, version+migrationSuffix)
		if err != nil {
			return done, fmt.Errorf("read migration %s: %w", version, err)
		}

		err = pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(sql)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version)
			return err
		})
		if err != nil {
			return done, fmt.Errorf("apply migration %s: %w", version, err)
		}
		done = append(done, version)
	}
	return done, nil
}

// LatestMigration returns the highest applied version, or "" when none are.
func LatestMigration(applied map[string]bool) string {
	var latest string
	for v, ok := range applied {
		if ok && v > latest {
			latest = v
		}
	}
	return latest
}

// Rollback reverts the most recently applied migration with its *.down.sql
// file and returns its version, or "" when nothing is applied.
func Rollback(ctx context.Context, db *pgxpool.Pool, migrations fs.FS) (string, error) {
	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return "", err
	}

	version := LatestMigration(applied)
	if version == "" {
		return "", nil
	}

	sql, err := fs.ReadFile(migrations, version+rollbackSuffix)
	if err != nil {
		return "", fmt.Errorf("read rollback %s: %w", version, err)
	}

	err = pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, version)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("roll back migration %s: %w", version, err)
	}
	return version, nil
}

func appliedMigrations(ctx context.Context, db *pgxpool.Pool) (map[string]bool, error) {
	rows, err := db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
