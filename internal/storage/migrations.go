package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationFilePattern is the required shape of a migration unit filename:
// a numeric prefix, an underscore, a name, and a .sql suffix.
var migrationFilePattern = regexp.MustCompile(`^(\d+)_[A-Za-z0-9_-]+\.sql$`)

// Migration is a single schema migration unit discovered from the embedded
// filesystem. Version numbers are strictly increasing integers.
type Migration struct {
	Version int64
	Name    string
	SQL     string
}

// DiscoverMigrations loads every embedded migration unit, sorted ascending
// by numeric prefix. A filename that does not match the required pattern is
// a configuration error, not a runtime condition.
func DiscoverMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[int64]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		m := migrationFilePattern.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("malformed migration filename %q: expected <version>_<name>.sql", name)
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed migration version in %q: %w", name, err)
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %d: %q and %q", version, prev, name)
		}
		seen[version] = name

		raw, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %q: %w", name, err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(raw)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// SchemaVersion reads the applied schema version from engine metadata.
func SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	var version int64
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// ApplyMigrations applies every pending migration in ascending order. Each
// unit runs in its own transaction with the version bump, so a failed
// migration leaves the schema at the last fully applied version.
// Re-invoking with nothing pending is a no-op.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	migrations, err := DiscoverMigrations()
	if err != nil {
		return err
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", migration.Name, err)
		}
		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", migration.Name, err)
		}
		// PRAGMA does not support bind parameters; the version is a parsed integer.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", migration.Name, err)
		}
		current = migration.Version
	}

	return nil
}

// ResetSchema drops the knowledge table and its full-text index, rewinds
// the schema version to 0, and re-applies all migrations. Intended for
// test and development use only.
func ResetSchema(ctx context.Context, db *sql.DB) error {
	drops := []string{
		"DROP TRIGGER IF EXISTS knowledge_au",
		"DROP TRIGGER IF EXISTS knowledge_ad",
		"DROP TRIGGER IF EXISTS knowledge_ai",
		"DROP TABLE IF EXISTS knowledge_fts",
		"DROP TABLE IF EXISTS knowledge",
		"PRAGMA user_version = 0",
	}
	for _, stmt := range drops {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset schema: %w", err)
		}
	}
	return ApplyMigrations(ctx, db)
}
