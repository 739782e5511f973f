package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/jeanscarter/clinidesk/internal/model"
)

// Migration names one entry of the fixed, ordered catalog. The version token
// is the script name; catalog order is authoritative, the tokens are never
// compared to decide ordering.
type Migration struct {
	Version     string
	Description string
}

var catalog = []Migration{
	{Version: "V1__initial_schema", Description: "create base tables"},
	{Version: "V2__add_indexes", Description: "add lookup indexes"},
	{Version: "V3__add_appointments", Description: "add appointment book"},
}

// Catalog returns the ordered list of known migrations.
func Catalog() []Migration {
	out := make([]Migration, len(catalog))
	copy(out, catalog)
	return out
}

// ScriptSource loads a migration's SQL text by version token.
type ScriptSource interface {
	Script(version string) (string, error)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

type embeddedScripts struct{}

// EmbeddedScripts returns the source backed by the scripts compiled into the
// binary.
func EmbeddedScripts() ScriptSource {
	return embeddedScripts{}
}

func (embeddedScripts) Script(version string) (string, error) {
	data, err := migrationFS.ReadFile("migrations/" + version + ".sql")
	if err != nil {
		return "", fmt.Errorf("load migration script %s: %w", version, err)
	}
	return string(data), nil
}

// VersionTracker persists which migrations ran and whether they succeeded.
// The ledger is append-only in the sense that a success row is never retried
// or overwritten; a failure row may be replaced by a later retry.
type VersionTracker struct {
	db *sql.DB
}

func NewVersionTracker(db *sql.DB) *VersionTracker {
	return &VersionTracker{db: db}
}

func (t *VersionTracker) EnsureTable() error {
	_, err := t.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version TEXT PRIMARY KEY,
		description TEXT,
		executed_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
		success INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return fmt.Errorf("ensure schema_version table: %w", err)
	}
	return nil
}

// RecordedVersions returns the set of versions whose last recorded outcome
// was success.
func (t *VersionTracker) RecordedVersions() (map[string]bool, error) {
	rows, err := t.db.Query(`SELECT version FROM schema_version WHERE success = 1`)
	if err != nil {
		return nil, fmt.Errorf("read recorded versions: %w", err)
	}
	defer rows.Close()

	recorded := map[string]bool{}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan recorded version: %w", err)
		}
		recorded[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recorded versions: %w", err)
	}
	return recorded, nil
}

func (t *VersionTracker) Append(version, description string, success bool) error {
	flag := 0
	if success {
		flag = 1
	}
	_, err := t.db.Exec(
		`INSERT OR REPLACE INTO schema_version(version, description, executed_at, success) VALUES(?, ?, ?, ?)`,
		version, description, fmtTime(nowUTC()), flag,
	)
	if err != nil {
		return fmt.Errorf("append schema_version row %s: %w", version, err)
	}
	return nil
}

// LedgerEntry is one row of the migration ledger, for display.
type LedgerEntry struct {
	Version     string
	Description string
	ExecutedAt  string
	Success     bool
}

func (t *VersionTracker) Entries() ([]LedgerEntry, error) {
	rows, err := t.db.Query(`SELECT version, description, executed_at, success FROM schema_version ORDER BY executed_at, version`)
	if err != nil {
		return nil, fmt.Errorf("read schema_version entries: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var (
			entry       LedgerEntry
			description sql.NullString
			success     int
		)
		if err := rows.Scan(&entry.Version, &description, &entry.ExecutedAt, &success); err != nil {
			return nil, fmt.Errorf("scan schema_version entry: %w", err)
		}
		entry.Description = description.String
		entry.Success = success == 1
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema_version entries: %w", err)
	}
	return entries, nil
}

// RunMigrations applies every pending catalog entry in order, each inside one
// all-or-nothing transaction that also carries its success ledger row. The
// first failing statement rolls that migration back, records the failure, and
// aborts the run; later pending migrations are not attempted. A restart
// re-discovers the failed migration as pending and retries it from its first
// statement, so scripts must be safe to repeat.
func RunMigrations(db *sql.DB, migrations []Migration, source ScriptSource) error {
	if db == nil {
		return fmt.Errorf("run migrations: db is nil")
	}
	if source == nil {
		return fmt.Errorf("run migrations: script source is nil")
	}

	tracker := NewVersionTracker(db)
	if err := tracker.EnsureTable(); err != nil {
		return err
	}

	recorded, err := tracker.RecordedVersions()
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if recorded[migration.Version] {
			continue
		}
		if err := applyMigration(db, tracker, migration, source); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, tracker *VersionTracker, migration Migration, source ScriptSource) error {
	script, err := source.Script(migration.Version)
	if err != nil {
		return model.NewMigration(migration.Version, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return model.NewMigration(migration.Version, fmt.Errorf("begin: %w", err))
	}

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			if recordErr := tracker.Append(migration.Version, migration.Description, false); recordErr != nil {
				return model.NewMigration(migration.Version, fmt.Errorf("%v (record failure: %v)", err, recordErr))
			}
			return model.NewMigration(migration.Version, err)
		}
	}

	// The success row commits atomically with the migration's effects, so the
	// ledger can never claim success for a migration that did not fully apply.
	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO schema_version(version, description, executed_at, success) VALUES(?, ?, ?, 1)`,
		migration.Version, migration.Description, fmtTime(nowUTC()),
	); err != nil {
		_ = tx.Rollback()
		return model.NewMigration(migration.Version, fmt.Errorf("record success: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return model.NewMigration(migration.Version, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// splitStatements breaks a script into executable statements: line comments
// are dropped, then the text is split on the ';' terminator, and blank pieces
// are discarded.
func splitStatements(script string) []string {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	var statements []string
	for _, piece := range strings.Split(strings.Join(kept, "\n"), ";") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		statements = append(statements, piece)
	}
	return statements
}
