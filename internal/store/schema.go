package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"
)

//go:embed schema.sql
var schemaSQL string

//go:embed migrations/*.sql
var migrationFS embed.FS

// schemaVersion is the base layout in schema.sql. Additive changes ship as
// numbered files under migrations/; anything else bumps this and requires a
// fresh database.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created for another base
// schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// SchemaInfo describes the layout of an open database.
type SchemaInfo struct {
	Version    int
	Migrations []string
}

type migration struct {
	seq  int
	name string
	sql  string
}

// loadMigrations reads migrations/NNNN_description.sql in sequence order.
func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	var out []migration
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".sql")
		prefix, _, _ := strings.Cut(name, "_")
		seq, err := strconv.Atoi(prefix)
		if err != nil || seq <= 0 {
			return nil, fmt.Errorf("migration %s: name must start with a positive sequence number", entry.Name())
		}
		data, err := migrationFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		out = append(out, migration{seq: seq, name: name, sql: string(data)})
	}
	slices.SortFunc(out, func(a, b migration) int { return a.seq - b.seq })
	for i := 1; i < len(out); i++ {
		if out[i].seq == out[i-1].seq {
			return nil, fmt.Errorf("migrations %s and %s share sequence %d", out[i-1].name, out[i].name, out[i].seq)
		}
	}
	return out, nil
}

// prepareSchema creates the base schema on an empty database, rejects a
// foreign base version, and applies pending migrations, all in one
// transaction.
func (s *Store) prepareSchema(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	return s.WithTx(ctx, func(q *Queries) error {
		var tables int
		if err := q.q.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
		).Scan(&tables); err != nil {
			return fmt.Errorf("inspect schema: %w", err)
		}

		if tables == 0 {
			if _, err := q.q.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			if _, err := q.q.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
				return fmt.Errorf("record schema version: %w", err)
			}
		} else {
			var version int
			if err := q.q.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			if version != schemaVersion {
				return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
					ErrSchemaMismatch, version, schemaVersion, s.path)
			}
		}

		if _, err := q.q.ExecContext(ctx,
			"CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TEXT NOT NULL)",
		); err != nil {
			return fmt.Errorf("ensure schema_migrations: %w", err)
		}
		applied, err := q.appliedMigrations(ctx)
		if err != nil {
			return err
		}
		now := formatTime(time.Now())
		for _, m := range migrations {
			if slices.Contains(applied, m.name) {
				continue
			}
			if _, err := q.q.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("apply migration %s: %w", m.name, err)
			}
			if _, err := q.q.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)", m.name, now,
			); err != nil {
				return fmt.Errorf("record migration %s: %w", m.name, err)
			}
		}
		return nil
	})
}

func (q *Queries) appliedMigrations(ctx context.Context) ([]string, error) {
	rows, err := q.q.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Schema reports the base version and applied migrations.
func (s *Store) Schema(ctx context.Context) (SchemaInfo, error) {
	ctx = ensureContext(ctx)
	info := SchemaInfo{}
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&info.Version); err != nil {
		return info, fmt.Errorf("read schema version: %w", err)
	}
	names, err := s.Queries.appliedMigrations(ctx)
	if err != nil {
		return info, err
	}
	info.Migrations = names
	return info, nil
}
