package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/bluecall/callsim_backend/internal/llm"
	"github.com/bluecall/callsim_backend/internal/logging"
	"github.com/bluecall/callsim_backend/internal/persona"
	"github.com/bluecall/callsim_backend/internal/types"
)

// Deterministic reflection keyword sets. These are the scoring ground truth;
// reflection deliberately does not depend on generated text.
var (
	stallingKeywords = []string{
		"what", "repeat", "can't hear", "speak up", "hold on", "wait",
		"bathroom", "doorbell", "cat", "let me", "confused", "don't understand",
		"my glasses", "hearing aid", "static",
	}

	complianceKeywords = []string{
		"okay", "yes", "sure", "understand", "i'll", "my social",
	}

	extractionKeywords = []string{
		"social security", "ssn", "account number", "routing",
	}
)

// Patience/persuasion deltas applied by the deterministic reflect step.
// Evaluation order: stalling, then compliance, then extraction; a later
// match overrides the earlier deltas.
const (
	baseDecay       = -0.15
	stallingDecay   = -0.25
	complianceDecay = -0.05

	compliancePersuasionGain = 0.1
	extractionPersuasionGain = 0.15

	initialPatience = 0.8

	// The scammer hangs up below this patience, or after three consecutive
	// stalling turns.
	giveUpPatienceFloor  = 0.25
	giveUpFrustrationCap = 3
)

type scammerState struct {
	turn        int
	mem         conversationMemory
	stage       types.PersuasionStage
	persuasion  float64
	patience    float64
	frustration int
	extracted   bool
	gaveUp      bool
	analysis    string
}

// ScammerAgent plays the adversarial caller. Each step runs three generation
// calls (analyze, escalate, respond) followed by a deterministic reflect that
// updates persuasion, patience, and the give-up decision.
type ScammerAgent struct {
	gen   llm.Generator
	state scammerState
}

// NewScammerAgent creates a scammer in its initial state.
func NewScammerAgent(gen llm.Generator) *ScammerAgent {
	return &ScammerAgent{
		gen: gen,
		state: scammerState{
			stage:    types.StageBuildingTrust,
			patience: initialPatience,
		},
	}
}

// Type reports the caller variant.
func (s *ScammerAgent) Type() types.CallerType {
	return types.CallerScammer
}

// Step runs one full scammer turn. victimMessage is empty on the cold open.
func (s *ScammerAgent) Step(ctx context.Context, victimMessage string) (string, error) {
	st := s.state
	st.mem = s.state.mem.clone()

	// Analyze: free-text read of the victim, kept for downstream prompts.
	analysis, err := s.gen.Generate(ctx, persona.ScammerSystemPrompt,
		persona.ScammerAnalyzePrompt(st.mem.window(), victimMessage))
	if err != nil {
		return "", fmt.Errorf("scammer analyze: %w", err)
	}
	st.analysis = analysis

	// Escalate: one-word stage decision, parsed by substring with STAY as
	// the default. The stage never moves more than one position per turn.
	decision, err := s.gen.Generate(ctx, persona.ScammerSystemPrompt,
		persona.ScammerEscalatePrompt(st.stage, st.persuasion, st.analysis))
	if err != nil {
		return "", fmt.Errorf("scammer escalate: %w", err)
	}
	st.stage = nextStage(st.stage, decision)

	// Respond: the spoken line.
	response, err := s.gen.Generate(ctx, persona.ScammerSystemPrompt,
		persona.ScammerRespondPrompt(st.stage, st.patience, st.mem.window(), victimMessage, st.analysis))
	if err != nil {
		return "", fmt.Errorf("scammer respond: %w", err)
	}
	response = strings.TrimSpace(response)

	if victimMessage != "" {
		st.mem.add("Victim", victimMessage)
	}
	st.mem.add("Scammer", response)

	// Reflect: deterministic scoring of the victim's last line.
	reflectScammer(&st, victimMessage)

	s.state = st

	logging.LogAgentEvent("scammer_step", "scammer", "", map[string]interface{}{
		"turn":       s.state.turn,
		"stage":      s.state.stage,
		"persuasion": s.state.persuasion,
		"patience":   s.state.patience,
	})

	return response, nil
}

// nextStage applies an escalation decision to the current stage. ADVANCE wins
// when both keywords appear; anything unrecognized means STAY.
func nextStage(stage types.PersuasionStage, decision string) types.PersuasionStage {
	upper := strings.ToUpper(decision)
	if strings.Contains(upper, "ADVANCE") {
		return stage.Advance()
	}
	if strings.Contains(upper, "RETREAT") {
		return stage.Retreat()
	}
	return stage
}

// reflectScammer updates persuasion, patience, frustration, and the give-up
// flag from the victim's last utterance. The give-up threshold is checked
// before the frustration decrement, so a counter sitting at the cap still
// triggers on a non-stalling turn.
func reflectScammer(st *scammerState, victimMessage string) {
	msg := strings.ToLower(victimMessage)

	patienceDelta := baseDecay
	persuasionDelta := 0.0
	stalling := false

	if containsAny(msg, stallingKeywords) {
		patienceDelta = stallingDecay
		stalling = true
	}
	if containsAny(msg, complianceKeywords) {
		patienceDelta = complianceDecay
		persuasionDelta = compliancePersuasionGain
	}
	if containsAny(msg, extractionKeywords) {
		st.extracted = true
		patienceDelta = 0
		persuasionDelta = extractionPersuasionGain
	}

	st.persuasion = clamp01(st.persuasion + persuasionDelta)
	st.patience = clamp01(st.patience + patienceDelta)

	if stalling {
		st.frustration++
	}
	if st.patience < giveUpPatienceFloor || st.frustration >= giveUpFrustrationCap {
		st.gaveUp = true
	}
	if !stalling && st.frustration > 0 {
		st.frustration--
	}

	st.turn++
}

// GiveUpLine generates the scammer's final frustrated line before hanging up.
func (s *ScammerAgent) GiveUpLine(ctx context.Context) (string, error) {
	line, err := s.gen.Generate(ctx, persona.ScammerSystemPrompt,
		persona.ScammerGiveUpPrompt(s.state.mem.window()))
	if err != nil {
		return "", fmt.Errorf("scammer give-up: %w", err)
	}
	line = strings.TrimSpace(line)

	st := s.state
	st.mem = s.state.mem.clone()
	st.mem.add("Scammer", line)
	s.state = st

	return line, nil
}

// Snapshot returns an immutable view of the scammer's state.
func (s *ScammerAgent) Snapshot() CallerSnapshot {
	return CallerSnapshot{
		CallerType:         types.CallerScammer,
		Turn:               s.state.turn,
		PersuasionStage:    s.state.stage,
		PersuasionLevel:    s.state.persuasion,
		Patience:           s.state.patience,
		FrustrationTurns:   s.state.frustration,
		ExtractedSensitive: s.state.extracted,
		GaveUp:             s.state.gaveUp,
	}
}

// History returns the full dialogue the scammer has observed.
func (s *ScammerAgent) History() []string {
	return s.state.mem.all()
}
