package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bluecall/callsim_backend/internal/agent"
	"github.com/bluecall/callsim_backend/internal/llm"
	"github.com/bluecall/callsim_backend/internal/logging"
	"github.com/bluecall/callsim_backend/internal/persona"
	"github.com/bluecall/callsim_backend/internal/types"
)

const (
	defaultMaxTurns            = 20
	defaultPersuasionThreshold = 0.9

	// Rough real-time cost of one exchange on a phone call.
	secondsPerTurn = 30.0
)

// Sentinel defender messages recorded on caller-side terminations, where the
// defender never got to speak in the final turn.
const (
	noteScamSucceeded = "(scam succeeded)"
	noteInfoExtracted = "(info extracted)"
	noteScammerHungUp = "(scammer hung up)"
)

// Config holds the knobs for a single simulation run.
type Config struct {
	CallerType          types.CallerType
	MaxTurns            int
	PersuasionThreshold float64
	// Scenario pins the family caller's identity; nil picks a random preset.
	Scenario *persona.FamilyScenario
	// TurnDelay paces the loop for live viewing; zero runs flat out.
	TurnDelay time.Duration
}

func (c *Config) normalize() {
	if !c.CallerType.IsValid() {
		c.CallerType = types.CallerScammer
	}
	if c.MaxTurns <= 0 {
		c.MaxTurns = defaultMaxTurns
	}
	if c.PersuasionThreshold <= 0 || c.PersuasionThreshold > 1 {
		c.PersuasionThreshold = defaultPersuasionThreshold
	}
}

// TurnRecord captures one completed exchange with both agents' post-turn
// snapshots.
type TurnRecord struct {
	Turn          int                    `json:"turn"`
	CallerMessage string                 `json:"caller_message"`
	SeniorMessage string                 `json:"senior_message"`
	CallerState   agent.CallerSnapshot   `json:"caller_state"`
	SeniorState   agent.DefenderSnapshot `json:"senior_state"`
}

// Result is the immutable outcome of a finished simulation.
type Result struct {
	ID         string          `json:"id"`
	CallerType types.CallerType `json:"caller_type"`
	EndReason  types.EndReason `json:"end_reason"`
	Turns      []TurnRecord    `json:"turns"`
	TotalTurns int             `json:"total_turns"`

	FinalCallerState agent.CallerSnapshot   `json:"final_caller_state"`
	FinalSeniorState agent.DefenderSnapshot `json:"final_senior_state"`

	SensitiveInfoLeaked bool `json:"sensitive_info_leaked"`
	InfoExtracted       bool `json:"info_extracted"`
	PersuasionSucceeded bool `json:"persuasion_succeeded"`
	ScammerGaveUp       bool `json:"scammer_gave_up"`
	HandoffSucceeded    bool `json:"handoff_succeeded"`

	TimeWastedSeconds float64   `json:"time_wasted_seconds"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
}

// giveUpSpeaker is implemented by callers that can produce a final frustrated
// line before hanging up.
type giveUpSpeaker interface {
	GiveUpLine(ctx context.Context) (string, error)
}

// Orchestrator owns both agents and drives the strictly sequential turn loop.
// It is single-use: one Run per Orchestrator.
type Orchestrator struct {
	id       string
	cfg      Config
	scenario persona.FamilyScenario
	caller   agent.Caller
	senior   *agent.SeniorAgent
	sink     EventSink
}

// New builds an orchestrator for one simulation. A nil sink discards events;
// an empty id gets a fresh UUID.
func New(gen llm.Generator, cfg Config, sink EventSink) *Orchestrator {
	cfg.normalize()
	if sink == nil {
		sink = nopSink{}
	}

	o := &Orchestrator{
		id:     uuid.New().String(),
		cfg:    cfg,
		senior: agent.NewSeniorAgent(gen),
		sink:   sink,
	}

	if cfg.CallerType == types.CallerFamily {
		if cfg.Scenario != nil {
			o.scenario = *cfg.Scenario
		} else {
			o.scenario = persona.RandomScenario(nil)
		}
		o.caller = agent.NewFamilyAgent(gen, o.scenario)
	} else {
		o.caller = agent.NewScammerAgent(gen)
	}

	return o
}

// ID returns the simulation identifier.
func (o *Orchestrator) ID() string {
	return o.id
}

// Scenario returns the family scenario in use; zero value for scammer runs.
func (o *Orchestrator) Scenario() persona.FamilyScenario {
	return o.scenario
}

func (o *Orchestrator) publish(event Event) {
	event.SimulationID = o.id
	event.Timestamp = time.Now().UTC()
	o.sink.Publish(event)
}

// Run executes the turn loop to completion. A generation failure is fatal
// and aborts the conversation; context cancellation is cooperative, checked
// between turns, and yields a normal result with end reason "stopped".
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	started := time.Now().UTC()
	isScammer := o.cfg.CallerType == types.CallerScammer

	logging.LogSimulationEvent("simulation_started", o.id, map[string]interface{}{
		"caller_type": o.cfg.CallerType,
		"max_turns":   o.cfg.MaxTurns,
	})
	o.publish(Event{Type: EventSimulationStarted})

	var (
		turns        []TurnRecord
		endReason    types.EndReason
		defenderLast string
	)

loop:
	for turn := 1; turn <= o.cfg.MaxTurns; turn++ {
		select {
		case <-ctx.Done():
			endReason = types.EndStopped
			break loop
		default:
		}

		o.publish(Event{Type: EventTurnStart, Turn: turn})

		callerMsg, err := o.caller.Step(ctx, defenderLast)
		if err != nil {
			if ctx.Err() != nil {
				endReason = types.EndStopped
				break loop
			}
			return nil, fmt.Errorf("turn %d caller step: %w", turn, err)
		}
		callerSnap := o.caller.Snapshot()
		o.publish(Event{
			Type:        EventCallerMessage,
			Turn:        turn,
			Message:     callerMsg,
			CallerState: &callerSnap,
		})

		if isScammer {
			if callerSnap.PersuasionLevel >= o.cfg.PersuasionThreshold {
				turns = append(turns, o.record(turn, callerMsg, noteScamSucceeded))
				endReason = types.EndPersuasionSucceeded
				break loop
			}
			if callerSnap.ExtractedSensitive {
				turns = append(turns, o.record(turn, callerMsg, noteInfoExtracted))
				endReason = types.EndSensitiveExtracted
				break loop
			}
			if callerSnap.GaveUp {
				if speaker, ok := o.caller.(giveUpSpeaker); ok {
					line, lineErr := speaker.GiveUpLine(ctx)
					if lineErr != nil {
						return nil, fmt.Errorf("turn %d give-up line: %w", turn, lineErr)
					}
					o.publish(Event{Type: EventScammerGaveUp, Turn: turn, Message: line})
				}
				turns = append(turns, o.record(turn, callerMsg, noteScammerHungUp))
				endReason = types.EndScammerGaveUp
				break loop
			}
		}

		seniorMsg, err := o.senior.Step(ctx, callerMsg)
		if err != nil {
			if ctx.Err() != nil {
				endReason = types.EndStopped
				break loop
			}
			return nil, fmt.Errorf("turn %d senior step: %w", turn, err)
		}
		seniorSnap := o.senior.Snapshot()
		o.publish(Event{
			Type:        EventSeniorMessage,
			Turn:        turn,
			Message:     seniorMsg,
			SeniorState: &seniorSnap,
		})

		if seniorMsg == agent.HandoffSentinel {
			turns = append(turns, o.record(turn, callerMsg, seniorMsg))
			endReason = types.EndHandoffToSenior
			break loop
		}
		if isScammer && seniorSnap.LeakedSensitiveInfo {
			turns = append(turns, o.record(turn, callerMsg, seniorMsg))
			endReason = types.EndSensitiveLeaked
			break loop
		}

		turns = append(turns, o.record(turn, callerMsg, seniorMsg))
		defenderLast = seniorMsg

		if o.cfg.TurnDelay > 0 {
			select {
			case <-ctx.Done():
				endReason = types.EndStopped
				break loop
			case <-time.After(o.cfg.TurnDelay):
			}
		}
	}

	if endReason == "" {
		endReason = types.EndMaxTurnsReached
	}

	callerFinal := o.caller.Snapshot()
	seniorFinal := o.senior.Snapshot()

	result := &Result{
		ID:               o.id,
		CallerType:       o.cfg.CallerType,
		EndReason:        endReason,
		Turns:            turns,
		TotalTurns:       len(turns),
		FinalCallerState: callerFinal,
		FinalSeniorState: seniorFinal,

		SensitiveInfoLeaked: seniorFinal.LeakedSensitiveInfo,
		InfoExtracted:       callerFinal.ExtractedSensitive,
		PersuasionSucceeded: endReason == types.EndPersuasionSucceeded,
		ScammerGaveUp:       callerFinal.GaveUp,
		HandoffSucceeded:    endReason == types.EndHandoffToSenior,

		TimeWastedSeconds: float64(len(turns)) * secondsPerTurn,
		StartedAt:         started,
		FinishedAt:        time.Now().UTC(),
	}

	o.publish(Event{
		Type:        EventSimulationEnd,
		Turn:        result.TotalTurns,
		EndReason:   endReason,
		CallerState: &callerFinal,
		SeniorState: &seniorFinal,
	})
	logging.LogSimulationEvent("simulation_end", o.id, map[string]interface{}{
		"end_reason":  endReason,
		"total_turns": result.TotalTurns,
	})

	return result, nil
}

func (o *Orchestrator) record(turn int, callerMsg, seniorMsg string) TurnRecord {
	return TurnRecord{
		Turn:          turn,
		CallerMessage: callerMsg,
		SeniorMessage: seniorMsg,
		CallerState:   o.caller.Snapshot(),
		SeniorState:   o.senior.Snapshot(),
	}
}
