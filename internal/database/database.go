package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bluecall/callsim_backend/internal/evaluation"
	"github.com/bluecall/callsim_backend/internal/logging"
	"github.com/bluecall/callsim_backend/internal/simulation"
)

type Database struct {
	db *sql.DB
}

// SimulationRecord is the persisted summary of one finished simulation.
type SimulationRecord struct {
	ID                string  `json:"id"`
	CallerType        string  `json:"caller_type"`
	EndReason         string  `json:"end_reason"`
	TotalTurns        int     `json:"total_turns"`
	DefenderScore     int     `json:"defender_score"`
	CallerScore       int     `json:"caller_score"`
	DefenderSuccess   bool    `json:"defender_success"`
	TimeWastedSeconds float64 `json:"time_wasted_seconds"`

	ScenarioRelationship string `json:"scenario_relationship,omitempty"`
	ScenarioCallerName   string `json:"scenario_caller_name,omitempty"`
	ScenarioCallReason   string `json:"scenario_call_reason,omitempty"`

	CreatedAt string `json:"created_at"`

	Turns []TurnRow `json:"turns,omitempty"`
}

// TurnRow is one persisted exchange.
type TurnRow struct {
	Turn            int     `json:"turn"`
	CallerMessage   string  `json:"caller_message"`
	SeniorMessage   string  `json:"senior_message"`
	Tactic          string  `json:"tactic"`
	PersuasionLevel float64 `json:"persuasion_level"`
	Patience        float64 `json:"patience"`
	ScamConfidence  float64 `json:"scam_confidence"`
	Classification  string  `json:"classification"`
}

// New creates a new database connection and runs pending migrations
func New(dataDir string) (*Database, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "calls.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := NewMigrationManager(db).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// RunMigrations applies any pending migrations
func (d *Database) RunMigrations() error {
	return NewMigrationManager(d.db).MigrateUp()
}

// SaveSimulation persists a finished simulation, its evaluation, and all
// turn records in one transaction.
func (d *Database) SaveSimulation(result *simulation.Result, report evaluation.Report, scenario ScenarioInfo) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	_, err = tx.Exec(`
		INSERT INTO simulations (
			id, caller_type, end_reason, total_turns,
			defender_score, caller_score, defender_success, time_wasted_seconds,
			scenario_relationship, scenario_caller_name, scenario_call_reason
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, string(result.CallerType), string(result.EndReason), result.TotalTurns,
		report.DefenderScore, report.CallerScore, report.DefenderSuccess, result.TimeWastedSeconds,
		scenario.Relationship, scenario.CallerName, scenario.CallReason,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to save simulation: %v", err)
	}

	for _, turn := range result.Turns {
		_, err = tx.Exec(`
			INSERT INTO turns (
				simulation_id, turn, caller_message, senior_message,
				tactic, persuasion_level, patience, scam_confidence, classification
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.ID, turn.Turn, turn.CallerMessage, turn.SeniorMessage,
			string(turn.SeniorState.CurrentTactic), turn.CallerState.PersuasionLevel,
			turn.CallerState.Patience, turn.SeniorState.ScamConfidence,
			string(turn.SeniorState.Classification),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save turn %d: %v", turn.Turn, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	logging.LogDatabaseEvent("save_simulation", "simulations", map[string]interface{}{
		"simulation_id": result.ID,
		"total_turns":   result.TotalTurns,
	})
	return nil
}

// ScenarioInfo carries the family scenario columns; zero value for scammer
// simulations.
type ScenarioInfo struct {
	Relationship string
	CallerName   string
	CallReason   string
}

// GetSimulation retrieves one simulation with its turns
func (d *Database) GetSimulation(id string) (*SimulationRecord, error) {
	var rec SimulationRecord
	err := d.db.QueryRow(`
		SELECT id, caller_type, end_reason, total_turns,
			   defender_score, caller_score, defender_success, time_wasted_seconds,
			   COALESCE(scenario_relationship, ''), COALESCE(scenario_caller_name, ''),
			   COALESCE(scenario_call_reason, ''), created_at
		FROM simulations WHERE id = ?`, id).Scan(
		&rec.ID, &rec.CallerType, &rec.EndReason, &rec.TotalTurns,
		&rec.DefenderScore, &rec.CallerScore, &rec.DefenderSuccess, &rec.TimeWastedSeconds,
		&rec.ScenarioRelationship, &rec.ScenarioCallerName, &rec.ScenarioCallReason,
		&rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("simulation not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to get simulation: %v", err)
	}

	rows, err := d.db.Query(`
		SELECT turn, caller_message, senior_message,
			   COALESCE(tactic, ''), COALESCE(persuasion_level, 0), COALESCE(patience, 0),
			   COALESCE(scam_confidence, 0), COALESCE(classification, '')
		FROM turns WHERE simulation_id = ? ORDER BY turn`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var turn TurnRow
		err := rows.Scan(
			&turn.Turn, &turn.CallerMessage, &turn.SeniorMessage,
			&turn.Tactic, &turn.PersuasionLevel, &turn.Patience,
			&turn.ScamConfidence, &turn.Classification,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan turn: %v", err)
		}
		rec.Turns = append(rec.Turns, turn)
	}

	return &rec, nil
}

// ListSimulations retrieves recent simulation summaries, newest first
func (d *Database) ListSimulations(limit int) ([]*SimulationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	rows, err := d.db.Query(`
		SELECT id, caller_type, end_reason, total_turns,
			   defender_score, caller_score, defender_success, time_wasted_seconds,
			   COALESCE(scenario_relationship, ''), COALESCE(scenario_caller_name, ''),
			   COALESCE(scenario_call_reason, ''), created_at
		FROM simulations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query simulations: %v", err)
	}
	defer rows.Close()

	var records []*SimulationRecord
	for rows.Next() {
		var rec SimulationRecord
		err := rows.Scan(
			&rec.ID, &rec.CallerType, &rec.EndReason, &rec.TotalTurns,
			&rec.DefenderScore, &rec.CallerScore, &rec.DefenderSuccess, &rec.TimeWastedSeconds,
			&rec.ScenarioRelationship, &rec.ScenarioCallerName, &rec.ScenarioCallReason,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan simulation: %v", err)
		}
		records = append(records, &rec)
	}

	return records, nil
}
