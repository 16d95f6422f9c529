package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bluecall/callsim_backend/internal/logging"
)

// Migration represents a database migration
type Migration struct {
	ID   int
	Name string
	SQL  string
}

// MigrationRecord represents a record of a migration that has been applied
type MigrationRecord struct {
	ID        int
	Name      string
	AppliedAt time.Time
}

// builtinMigrations is the ordered schema history. New schema changes append
// a new entry; existing entries are never edited.
var builtinMigrations = []Migration{
	{
		ID:   1,
		Name: "create_simulations",
		SQL: `
		CREATE TABLE IF NOT EXISTS simulations (
			id TEXT PRIMARY KEY,
			caller_type TEXT NOT NULL,
			end_reason TEXT NOT NULL,
			total_turns INTEGER NOT NULL,
			defender_score INTEGER NOT NULL,
			caller_score INTEGER NOT NULL,
			defender_success INTEGER NOT NULL,
			time_wasted_seconds REAL NOT NULL,
			scenario_relationship TEXT,
			scenario_caller_name TEXT,
			scenario_call_reason TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		`,
	},
	{
		ID:   2,
		Name: "create_turns",
		SQL: `
		CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			simulation_id TEXT NOT NULL,
			turn INTEGER NOT NULL,
			caller_message TEXT NOT NULL,
			senior_message TEXT NOT NULL,
			tactic TEXT,
			persuasion_level REAL,
			patience REAL,
			scam_confidence REAL,
			classification TEXT,
			FOREIGN KEY (simulation_id) REFERENCES simulations(id)
		);
		CREATE INDEX IF NOT EXISTS idx_turns_simulation ON turns(simulation_id);
		`,
	},
}

// MigrationManager handles database migrations
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{
		db: db,
	}
}

// Initialize creates the migrations table if it doesn't exist
func (m *MigrationManager) Initialize() error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := m.db.Exec(query)
	return err
}

// GetAppliedMigrations returns a list of migrations that have been applied
func (m *MigrationManager) GetAppliedMigrations() ([]MigrationRecord, error) {
	rows, err := m.db.Query("SELECT id, name, applied_at FROM migrations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %v", err)
	}
	defer rows.Close()

	var migrations []MigrationRecord
	for rows.Next() {
		var migration MigrationRecord
		err := rows.Scan(&migration.ID, &migration.Name, &migration.AppliedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %v", err)
		}
		migrations = append(migrations, migration)
	}

	return migrations, nil
}

// ApplyMigration applies a single migration
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	// Apply the migration
	_, err = tx.Exec(migration.SQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to apply migration %d_%s: %v", migration.ID, migration.Name, err)
	}

	// Record the migration
	_, err = tx.Exec("INSERT INTO migrations (id, name) VALUES (?, ?)", migration.ID, migration.Name)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d_%s: %v", migration.ID, migration.Name, err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// MigrateUp applies all pending builtin migrations
func (m *MigrationManager) MigrateUp() error {
	err := m.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize migrations table: %v", err)
	}

	appliedMigrations, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	// Create a map of applied migration IDs for quick lookup
	appliedMap := make(map[int]bool)
	for _, migration := range appliedMigrations {
		appliedMap[migration.ID] = true
	}

	// Apply pending migrations
	for _, migration := range builtinMigrations {
		if appliedMap[migration.ID] {
			continue
		}
		logging.LogDatabaseEvent("apply_migration", "migrations", map[string]interface{}{
			"id":   migration.ID,
			"name": migration.Name,
		})
		if err := m.ApplyMigration(migration); err != nil {
			return err
		}
	}

	return nil
}
