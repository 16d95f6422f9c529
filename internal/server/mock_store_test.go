package server

import (
	"fmt"
	"sync"

	"github.com/bluecall/callsim_backend/internal/database"
	"github.com/bluecall/callsim_backend/internal/evaluation"
	"github.com/bluecall/callsim_backend/internal/simulation"
)

// mockStore is an in-memory database.Store for handler and manager tests.
type mockStore struct {
	mu      sync.Mutex
	saved   []*simulation.Result
	reports []evaluation.Report
}

func newMockStore() *mockStore {
	return &mockStore{}
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) RunMigrations() error { return nil }

func (m *mockStore) SaveSimulation(result *simulation.Result, report evaluation.Report, _ database.ScenarioInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, result)
	m.reports = append(m.reports, report)
	return nil
}

func (m *mockStore) GetSimulation(id string) (*database.SimulationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, result := range m.saved {
		if result.ID == id {
			return &database.SimulationRecord{
				ID:            result.ID,
				CallerType:    string(result.CallerType),
				EndReason:     string(result.EndReason),
				TotalTurns:    result.TotalTurns,
				DefenderScore: m.reports[i].DefenderScore,
				CallerScore:   m.reports[i].CallerScore,
			}, nil
		}
	}
	return nil, fmt.Errorf("simulation not found")
}

func (m *mockStore) ListSimulations(_ int) ([]*database.SimulationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]*database.SimulationRecord, 0, len(m.saved))
	for _, result := range m.saved {
		records = append(records, &database.SimulationRecord{
			ID:         result.ID,
			CallerType: string(result.CallerType),
			EndReason:  string(result.EndReason),
			TotalTurns: result.TotalTurns,
		})
	}
	return records, nil
}

func (m *mockStore) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

var _ database.Store = (*mockStore)(nil)
