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

type familyState struct {
	turn       int
	mem        conversationMemory
	recognized bool
	handedOff  bool
}

// FamilyAgent plays a benign relative calling the senior. It is used to
// measure the defender's false-positive behavior: the desired outcome is a
// handoff, not a stall.
type FamilyAgent struct {
	gen      llm.Generator
	scenario persona.FamilyScenario
	state    familyState
}

// NewFamilyAgent creates a family caller for the given scenario.
func NewFamilyAgent(gen llm.Generator, scenario persona.FamilyScenario) *FamilyAgent {
	return &FamilyAgent{gen: gen, scenario: scenario}
}

// Type reports the caller variant.
func (f *FamilyAgent) Type() types.CallerType {
	return types.CallerFamily
}

// Step runs one family turn: respond, then a reflect call whose output is
// scanned for recognition/handoff markers. The flags are monotonic; a reflect
// that fails to find a marker never clears a previously set flag.
func (f *FamilyAgent) Step(ctx context.Context, seniorMessage string) (string, error) {
	st := f.state
	st.mem = f.state.mem.clone()

	system := persona.FamilySystemPrompt(f.scenario)

	response, err := f.gen.Generate(ctx, system,
		persona.FamilyRespondPrompt(f.scenario, st.recognized, st.mem.window(), seniorMessage))
	if err != nil {
		return "", fmt.Errorf("family respond: %w", err)
	}
	response = strings.TrimSpace(response)

	if seniorMessage != "" {
		st.mem.add("Senior", seniorMessage)
	}
	st.mem.add("Family", response)

	reflectOut, err := f.gen.Generate(ctx, system,
		persona.FamilyReflectPrompt(response, seniorMessage, st.recognized))
	if err != nil {
		return "", fmt.Errorf("family reflect: %w", err)
	}

	lower := strings.ToLower(reflectOut)
	if strings.Contains(lower, "recognized: true") {
		st.recognized = true
	}
	if strings.Contains(lower, "handoff_ready: true") {
		st.handedOff = true
	}
	st.turn++

	f.state = st

	logging.LogAgentEvent("family_step", f.scenario.CallerName, "", map[string]interface{}{
		"turn":       f.state.turn,
		"recognized": f.state.recognized,
		"handed_off": f.state.handedOff,
	})

	return response, nil
}

// Snapshot returns an immutable view of the family caller's state.
func (f *FamilyAgent) Snapshot() CallerSnapshot {
	return CallerSnapshot{
		CallerType:   types.CallerFamily,
		Turn:         f.state.turn,
		Recognized:   f.state.recognized,
		HandedOff:    f.state.handedOff,
		Relationship: f.scenario.Relationship,
		CallerName:   f.scenario.CallerName,
		CallReason:   f.scenario.CallReason,
	}
}

// History returns the full dialogue the family caller has observed.
func (f *FamilyAgent) History() []string {
	return f.state.mem.all()
}
