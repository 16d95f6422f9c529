package database

import (
	"github.com/bluecall/callsim_backend/internal/evaluation"
	"github.com/bluecall/callsim_backend/internal/simulation"
)

// Store defines the interface for simulation persistence
type Store interface {
	Close() error

	SaveSimulation(result *simulation.Result, report evaluation.Report, scenario ScenarioInfo) error
	GetSimulation(id string) (*SimulationRecord, error)
	ListSimulations(limit int) ([]*SimulationRecord, error)

	// Migration runner
	RunMigrations() error
}

// Ensure Database implements Store
var _ Store = (*Database)(nil)
