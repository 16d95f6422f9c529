package agent

import (
	"context"

	"github.com/bluecall/callsim_backend/internal/types"
)

// HandoffSentinel is the defender utterance that signals the call should be
// connected to the real senior. It is never spoken text.
const HandoffSentinel = "__HANDOFF__"

// Caller is the calling side of a simulated phone conversation. A Step
// consumes the defender's last utterance (empty on the cold open) and returns
// the caller's next line. State mutation is committed atomically per step: a
// failed step leaves the previous state untouched.
type Caller interface {
	Step(ctx context.Context, defenderLast string) (string, error)
	Snapshot() CallerSnapshot
	Type() types.CallerType
}

// CallerSnapshot is an immutable view of a caller's state, carried on stream
// events and turn records so a transcript can be reconstructed without
// re-invoking the agent.
type CallerSnapshot struct {
	CallerType types.CallerType `json:"caller_type"`
	Turn       int              `json:"turn"`

	// Scammer fields
	PersuasionStage    types.PersuasionStage `json:"persuasion_stage,omitempty"`
	PersuasionLevel    float64               `json:"persuasion_level"`
	Patience           float64               `json:"patience"`
	FrustrationTurns   int                   `json:"frustration_turns"`
	ExtractedSensitive bool                  `json:"extracted_sensitive"`
	GaveUp             bool                  `json:"gave_up"`

	// Family fields
	Recognized   bool   `json:"recognized,omitempty"`
	HandedOff    bool   `json:"handed_off,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	CallerName   string `json:"caller_name,omitempty"`
	CallReason   string `json:"call_reason,omitempty"`
}

// DefenderSnapshot is the defender-side counterpart of CallerSnapshot.
type DefenderSnapshot struct {
	Turn                int                   `json:"turn"`
	ScamConfidence      float64               `json:"scam_confidence"`
	Classification      types.Classification  `json:"caller_classification"`
	HandoffDecision     types.HandoffDecision `json:"handoff_decision"`
	DelayStrategyLevel  int                   `json:"delay_strategy_level"`
	CurrentTactic       types.Tactic          `json:"current_tactic"`
	LeakedSensitiveInfo bool                  `json:"leaked_sensitive_info"`
}
