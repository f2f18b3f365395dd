package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_skips_table",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_allows_heavy_waste_to_skips",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_skips_postcode_index",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "create_audit_log_table",
		Up:      migrationV4,
	},
	{
		Version: 5,
		Name:    "index_audit_log_by_entity_type",
		Up:      migrationV5,
	},
}

func createVersionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations
func RunMigrations(db *sql.DB) error {
	if err := createVersionTable(db); err != nil {
		return err
	}

	var currentVersion int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the skip catalog table
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS skips (
			id INTEGER PRIMARY KEY,
			size INTEGER NOT NULL,
			hire_period_days INTEGER NOT NULL,
			transport_cost REAL,
			per_tonne_cost REAL,
			price_before_vat REAL NOT NULL CHECK (price_before_vat >= 0),
			vat REAL NOT NULL CHECK (vat >= 0),
			postcode TEXT NOT NULL,
			area TEXT NOT NULL DEFAULT '',
			forbidden INTEGER NOT NULL DEFAULT 0,
			allowed_on_road INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT ''
		)
	`)
	return err
}

// migrationV2 records whether a skip accepts heavy waste
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE skips ADD COLUMN allows_heavy_waste INTEGER NOT NULL DEFAULT 0`)
	return err
}

// migrationV3 indexes the catalog by postcode for area lookups
func migrationV3(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_skips_postcode ON skips(postcode)`)
	return err
}

// migrationV4 persists the audit trail
func migrationV4(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			actor TEXT,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL CHECK (action IN ('create', 'update', 'delete')),
			field_name TEXT,
			old_value TEXT,
			new_value TEXT
		)
	`); err != nil {
		return err
	}
	_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_id)`)
	return err
}

// migrationV5 keys the audit index on (entity_type, entity_id) so the
// session and booking trails of one ID are looked up separately
func migrationV5(tx *sql.Tx) error {
	if _, err := tx.Exec(`DROP INDEX IF EXISTS idx_audit_log_entity`); err != nil {
		return err
	}
	_, err := tx.Exec(`CREATE INDEX idx_audit_log_entity ON audit_log(entity_type, entity_id)`)
	return err
}
