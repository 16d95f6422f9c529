package simulation

import (
	"time"

	"github.com/bluecall/callsim_backend/internal/agent"
	"github.com/bluecall/callsim_backend/internal/types"
)

// EventType identifies one entry in the ordered streaming event feed.
type EventType string

const (
	EventSimulationStarted EventType = "simulation_started"
	EventTurnStart         EventType = "turn_start"
	EventCallerMessage     EventType = "caller_message"
	EventSeniorMessage     EventType = "senior_message"
	EventScammerGaveUp     EventType = "scammer_gave_up"
	EventSimulationEnd     EventType = "simulation_end"
)

// Event is a single turn-level event pushed to the transport layer. Each
// event carries enough state that a consumer can reconstruct TurnRecords
// without re-invoking the agents.
type Event struct {
	Type         EventType              `json:"type"`
	SimulationID string                 `json:"simulation_id"`
	Turn         int                    `json:"turn,omitempty"`
	Message      string                 `json:"message,omitempty"`
	CallerState  *agent.CallerSnapshot  `json:"caller_state,omitempty"`
	SeniorState  *agent.DefenderSnapshot `json:"senior_state,omitempty"`
	EndReason    types.EndReason        `json:"end_reason,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

// EventSink receives simulation events in order. Implementations must not
// block for long; the turn loop publishes synchronously.
type EventSink interface {
	Publish(event Event)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(event Event)

// Publish calls the wrapped function.
func (f SinkFunc) Publish(event Event) {
	f(event)
}

type nopSink struct{}

func (nopSink) Publish(Event) {}
