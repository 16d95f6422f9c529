package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bluecall/callsim_backend/internal/database"
	"github.com/bluecall/callsim_backend/internal/evaluation"
	"github.com/bluecall/callsim_backend/internal/llm"
	"github.com/bluecall/callsim_backend/internal/logging"
	"github.com/bluecall/callsim_backend/internal/persona"
	"github.com/bluecall/callsim_backend/internal/simulation"
	"github.com/bluecall/callsim_backend/internal/types"
)

// Finished sessions stay queryable for this long before the next start
// sweeps them out of the manager.
const sessionRetention = time.Hour

// Session lifecycle states.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusStopped  = "stopped"
	StatusFailed   = "failed"
)

// Session tracks one live or finished simulation.
type Session struct {
	ID         string
	CallerType types.CallerType
	Scenario   persona.FamilyScenario

	cancel context.CancelFunc

	mu       sync.RWMutex
	status   string
	result   *simulation.Result
	report   *evaluation.Report
	errMsg   string
	finished time.Time
}

// Status returns the session's lifecycle state.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Report returns the evaluation report; nil until the simulation finishes.
func (s *Session) Report() *evaluation.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Result returns the simulation result; nil until the simulation finishes.
func (s *Session) Result() *simulation.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// ErrMsg returns the failure message for failed sessions.
func (s *Session) ErrMsg() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *Session) set(status string, result *simulation.Result, report *evaluation.Report, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.result = result
	s.report = report
	s.errMsg = errMsg
	if status != StatusRunning {
		s.finished = time.Now()
	}
}

// finishedBefore reports whether the session reached a terminal state before
// the given time. Always false while running.
func (s *Session) finishedBefore(t time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.finished.IsZero() && s.finished.Before(t)
}

// SimulationManager handles the creation, tracking, and cleanup of
// simulation sessions. One goroutine runs per active session.
type SimulationManager struct {
	db            database.Store
	gen           llm.Generator
	sessions      map[string]*Session
	sessionsMutex sync.RWMutex
}

// NewSimulationManager creates a new simulation manager
func NewSimulationManager(db database.Store, gen llm.Generator) *SimulationManager {
	return &SimulationManager{
		db:       db,
		gen:      gen,
		sessions: make(map[string]*Session),
	}
}

// StartSimulation builds an orchestrator for the config, registers a session
// for it, and runs the turn loop in a goroutine. Events stream to the sink;
// onDone (optional) fires after the session reaches a terminal state.
func (m *SimulationManager) StartSimulation(cfg simulation.Config, sink simulation.EventSink, onDone func(*Session)) (*Session, error) {
	orch := simulation.New(m.gen, cfg, sink)

	session := &Session{
		ID:         orch.ID(),
		CallerType: cfg.CallerType,
		Scenario:   orch.Scenario(),
		status:     StatusRunning,
	}
	if !session.CallerType.IsValid() {
		session.CallerType = types.CallerScammer
	}

	ctx, cancel := context.WithCancel(context.Background())
	session.cancel = cancel

	m.sessionsMutex.Lock()
	m.sessions[session.ID] = session
	m.sessionsMutex.Unlock()

	go m.pruneSessions()

	logging.LogSimulationEvent("session_created", session.ID, map[string]interface{}{
		"caller_type": session.CallerType,
	})

	go func() {
		defer cancel()
		// Panic recovery so a crashed turn loop can't take the server down
		// or leave the session stuck in "running".
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Panic in simulation loop", map[string]interface{}{
					"simulation_id": session.ID,
					"panic":         r,
				})
				session.set(StatusFailed, nil, nil, fmt.Sprintf("internal error: %v", r))
				if onDone != nil {
					onDone(session)
				}
			}
		}()

		result, err := orch.Run(ctx)
		if err != nil {
			logging.Error("Simulation aborted", map[string]interface{}{
				"simulation_id": session.ID,
				"error":         err.Error(),
			})
			session.set(StatusFailed, nil, nil, err.Error())
			if onDone != nil {
				onDone(session)
			}
			return
		}

		report := evaluation.Evaluate(result)
		status := StatusFinished
		if result.EndReason == types.EndStopped {
			status = StatusStopped
		}
		session.set(status, result, &report, "")

		if saveErr := m.db.SaveSimulation(result, report, database.ScenarioInfo{
			Relationship: session.Scenario.Relationship,
			CallerName:   session.Scenario.CallerName,
			CallReason:   session.Scenario.CallReason,
		}); saveErr != nil {
			logging.Error("Failed to persist simulation", map[string]interface{}{
				"simulation_id": session.ID,
				"error":         saveErr.Error(),
			})
		}

		logging.LogEvaluationEvent("simulation_scored", session.ID, map[string]interface{}{
			"defender_score":   report.DefenderScore,
			"caller_score":     report.CallerScore,
			"defender_success": report.DefenderSuccess,
		})

		if onDone != nil {
			onDone(session)
		}
	}()

	return session, nil
}

// pruneSessions drops terminal sessions older than the retention window so
// a long-lived server doesn't accumulate one entry per finished run.
// Running sessions are never touched.
func (m *SimulationManager) pruneSessions() {
	threshold := time.Now().Add(-sessionRetention)
	m.sessionsMutex.Lock()
	defer m.sessionsMutex.Unlock()
	for id, session := range m.sessions {
		if session.finishedBefore(threshold) {
			delete(m.sessions, id)
		}
	}
}

// GetSession retrieves a session by ID
func (m *SimulationManager) GetSession(id string) (*Session, bool) {
	m.sessionsMutex.RLock()
	defer m.sessionsMutex.RUnlock()
	session, exists := m.sessions[id]
	return session, exists
}

// ListSessions returns all tracked sessions
func (m *SimulationManager) ListSessions() []*Session {
	m.sessionsMutex.RLock()
	defer m.sessionsMutex.RUnlock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// StopSimulation requests cooperative cancellation of a running session.
// The turn loop notices between turns and finishes with reason "stopped".
func (m *SimulationManager) StopSimulation(id string) bool {
	session, exists := m.GetSession(id)
	if !exists {
		return false
	}
	if session.Status() != StatusRunning {
		return false
	}
	session.cancel()
	logging.LogSimulationEvent("stop_requested", id, nil)
	return true
}

// WaitForSession blocks until the session leaves the running state or the
// timeout expires. Test helper for the async session lifecycle.
func (m *SimulationManager) WaitForSession(id string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		session, exists := m.GetSession(id)
		if !exists {
			return false
		}
		if session.Status() != StatusRunning {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
