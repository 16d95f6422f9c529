package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bluecall/callsim_backend/internal/llm"
	"github.com/bluecall/callsim_backend/internal/logging"
	"github.com/bluecall/callsim_backend/internal/persona"
	"github.com/bluecall/callsim_backend/internal/types"
)

var confidencePattern = regexp.MustCompile(`CONFIDENCE[:\s]*([\d.]+)`)

type seniorState struct {
	turn           int
	mem            conversationMemory
	confidence     float64
	classification types.Classification
	decision       types.HandoffDecision
	delayLevel     int
	tactic         types.Tactic
	leaked         bool
	analysis       string
}

// SeniorAgent plays the defending call recipient. Each turn it analyzes the
// caller, classifies them, and either hands the call off (legitimate caller)
// or picks a delay tactic, responds, and checks itself for leaks.
type SeniorAgent struct {
	gen   llm.Generator
	state seniorState
}

// NewSeniorAgent creates a defender in its initial state: classification
// UNCERTAIN, zero scam confidence.
func NewSeniorAgent(gen llm.Generator) *SeniorAgent {
	return &SeniorAgent{
		gen: gen,
		state: seniorState{
			classification: types.ClassificationUncertain,
			decision:       types.DecisionGatherInfo,
			delayLevel:     1,
		},
	}
}

// Step runs one full defender turn. It returns either the spoken reply or
// the HandoffSentinel when the caller is believed legitimate.
func (s *SeniorAgent) Step(ctx context.Context, callerMessage string) (string, error) {
	st := s.state
	st.mem = s.state.mem.clone()

	// Analyze: neutral assessment, no scam assumption.
	analysis, err := s.gen.Generate(ctx, persona.SeniorSystemPrompt,
		persona.SeniorAnalyzePrompt(st.mem.window(), callerMessage))
	if err != nil {
		return "", fmt.Errorf("senior analyze: %w", err)
	}
	st.analysis = analysis

	// Classify: label parsing with the prior belief as the fallback.
	classifyOut, err := s.gen.Generate(ctx, persona.SeniorSystemPrompt,
		persona.SeniorClassifyPrompt(st.mem.window(), callerMessage, st.analysis))
	if err != nil {
		return "", fmt.Errorf("senior classify: %w", err)
	}
	st.classification = parseClassification(classifyOut, st.classification)
	st.confidence = parseConfidence(classifyOut, st.confidence)
	st.decision = st.classification.Decision()

	// Route: a legitimate caller short-circuits to the handoff sub-state
	// with no strategy or respond calls.
	if st.decision == types.DecisionHandoff {
		st.tactic = types.TacticHandoff
		s.state = st
		logging.LogAgentEvent("senior_handoff", "senior", "", map[string]interface{}{
			"turn":       s.state.turn,
			"confidence": s.state.confidence,
		})
		return HandoffSentinel, nil
	}

	// Strategy: delay level is deterministic; the tactic name is requested
	// from the generator and repaired through the fallback ladder.
	st.delayLevel = delayLevel(st.classification, st.confidence)
	strategyOut, err := s.gen.Generate(ctx, persona.SeniorSystemPrompt,
		persona.SeniorStrategyPrompt(st.classification, st.confidence, st.delayLevel, st.analysis))
	if err != nil {
		return "", fmt.Errorf("senior strategy: %w", err)
	}
	st.tactic = parseTactic(strategyOut, st.classification, st.confidence, st.delayLevel)

	// Respond with the chosen tactic's guidelines.
	response, err := s.gen.Generate(ctx, persona.SeniorSystemPrompt,
		persona.SeniorRespondPrompt(callerMessage, st.tactic, st.analysis, st.mem.window()))
	if err != nil {
		return "", fmt.Errorf("senior respond: %w", err)
	}
	response = strings.TrimSpace(response)

	st.mem.add("Caller", callerMessage)
	st.mem.add("Senior", response)

	// Reflect: leak detection. The flag is monotonic; a missing marker
	// never clears it.
	reflectOut, err := s.gen.Generate(ctx, persona.SeniorSystemPrompt,
		persona.SeniorReflectPrompt(response, callerMessage))
	if err != nil {
		return "", fmt.Errorf("senior reflect: %w", err)
	}
	if strings.Contains(strings.ToLower(reflectOut), "leaked_sensitive: true") {
		st.leaked = true
	}
	st.turn++

	s.state = st

	logging.LogAgentEvent("senior_step", "senior", "", map[string]interface{}{
		"turn":           s.state.turn,
		"classification": s.state.classification,
		"confidence":     s.state.confidence,
		"tactic":         s.state.tactic,
	})

	return response, nil
}

// parseClassification extracts the classification label; an unmatched label
// leaves the prior belief unchanged.
func parseClassification(text string, prior types.Classification) types.Classification {
	upper := strings.ToUpper(text)
	for _, c := range []types.Classification{
		types.ClassificationScam,
		types.ClassificationLegitimate,
		types.ClassificationUncertain,
	} {
		if strings.Contains(upper, "CLASSIFICATION: "+string(c)) ||
			strings.Contains(upper, "CLASSIFICATION:"+string(c)) {
			return c
		}
	}
	return prior
}

// parseConfidence extracts and clamps the confidence value; an unmatched or
// unparseable value leaves the prior unchanged.
func parseConfidence(text string, prior float64) float64 {
	m := confidencePattern.FindStringSubmatch(strings.ToUpper(text))
	if m == nil {
		return prior
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return prior
	}
	return clamp01(v)
}

// delayLevel maps classification and confidence to the 0-5 delay ladder.
func delayLevel(classification types.Classification, confidence float64) int {
	switch classification {
	case types.ClassificationLegitimate:
		return 0
	case types.ClassificationUncertain:
		if confidence < 0.4 {
			return 0
		}
		return 1
	default: // SCAM
		switch {
		case confidence < 0.5:
			return 2
		case confidence < 0.7:
			return 3
		case confidence < 0.85:
			return 4
		default:
			return 5
		}
	}
}

// parseTactic turns generated text into a valid delay tactic: exact match
// first, then substring search, then the deterministic default for the
// classification and delay level. The result is always a known tag.
func parseTactic(text string, classification types.Classification, confidence float64, level int) types.Tactic {
	candidate := strings.ToUpper(strings.TrimSpace(text))
	if t, ok := types.ParseDelayTactic(candidate); ok {
		return t
	}
	for _, t := range types.AllDelayTactics {
		if strings.Contains(candidate, string(t)) {
			return t
		}
	}
	return defaultTactic(classification, confidence, level)
}

func defaultTactic(classification types.Classification, confidence float64, level int) types.Tactic {
	if classification == types.ClassificationLegitimate ||
		(classification == types.ClassificationUncertain && confidence < 0.4) {
		return types.TacticFriendlyChat
	}
	switch {
	case level <= 1:
		return types.TacticVerifyIdentity
	case level == 2:
		return types.TacticStoryTime
	case level == 3:
		return types.TacticBadConnection
	case level == 4:
		return types.TacticBathroomBreak
	default:
		return types.TacticForgotAgain
	}
}

// Snapshot returns an immutable view of the defender's state.
func (s *SeniorAgent) Snapshot() DefenderSnapshot {
	return DefenderSnapshot{
		Turn:                s.state.turn,
		ScamConfidence:      s.state.confidence,
		Classification:      s.state.classification,
		HandoffDecision:     s.state.decision,
		DelayStrategyLevel:  s.state.delayLevel,
		CurrentTactic:       s.state.tactic,
		LeakedSensitiveInfo: s.state.leaked,
	}
}

// History returns the full dialogue the defender has observed.
func (s *SeniorAgent) History() []string {
	return s.state.mem.all()
}
