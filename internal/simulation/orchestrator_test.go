package simulation

import (
	"context"
	"testing"

	"github.com/bluecall/callsim_backend/internal/agent"
	"github.com/bluecall/callsim_backend/internal/persona"
	"github.com/bluecall/callsim_backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queueGenerator returns responses in order, repeating the last one once the
// queue is exhausted.
type queueGenerator struct {
	responses []string
	calls     int
}

func (g *queueGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	idx := g.calls
	if idx >= len(g.responses) {
		idx = len(g.responses) - 1
	}
	g.calls++
	return g.responses[idx], nil
}

// cycleGenerator repeats a fixed per-turn script forever.
type cycleGenerator struct {
	script []string
	calls  int
}

func (g *cycleGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	r := g.script[g.calls%len(g.script)]
	g.calls++
	return r, nil
}

// One scammer-mode turn is eight generation calls: analyze/escalate/respond
// for the scammer, analyze/classify/strategy/respond/reflect for the senior.
func scammerTurnScript(seniorReply string) []string {
	return []string{
		"victim seems hesitant",
		"STAY",
		"You need to act now, ma'am.",
		"urgent pressure, classic pattern",
		"CLASSIFICATION: SCAM\nCONFIDENCE: 0.8",
		"BATHROOM_BREAK",
		seniorReply,
		"leaked_sensitive: false",
	}
}

func TestRunReachesMaxTurns(t *testing.T) {
	gen := &cycleGenerator{script: scammerTurnScript("Sure, okay, tell me more dear.")}
	o := New(gen, Config{CallerType: types.CallerScammer, MaxTurns: 3}, nil)

	result, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.EndMaxTurnsReached, result.EndReason)
	assert.Equal(t, 3, result.TotalTurns)
	require.Len(t, result.Turns, 3)
	assert.InDelta(t, 90.0, result.TimeWastedSeconds, 1e-9)
	assert.False(t, result.ScammerGaveUp)
	assert.False(t, result.PersuasionSucceeded)
	assert.False(t, result.SensitiveInfoLeaked)
	assert.NotEmpty(t, result.ID)

	// Turn records are 1-indexed and carry both snapshots.
	assert.Equal(t, 1, result.Turns[0].Turn)
	assert.Equal(t, 3, result.Turns[2].Turn)
	assert.Equal(t, types.ClassificationScam, result.Turns[0].SeniorState.Classification)
}

func TestRunHandoffTermination(t *testing.T) {
	scenario := &persona.FamilyScenario{
		Relationship: "grandson",
		CallerName:   "Tommy",
		CallReason:   "weekend visit plans",
	}
	gen := &queueGenerator{responses: []string{
		// turn 1: family respond+reflect, senior full turn
		"Hi Grandpa, it's me!",
		"recognized: false\nhandoff_ready: false",
		"could be anyone at this point",
		"CLASSIFICATION: UNCERTAIN\nCONFIDENCE: 0.3",
		"VERIFY_IDENTITY",
		"Now who did you say was calling?",
		"leaked_sensitive: false",
		// turn 2: family again, senior classifies legitimate and hands off
		"It's Tommy, your grandson! We talked about the visit.",
		"recognized: true\nhandoff_ready: true",
		"knows personal details, sounds genuine",
		"CLASSIFICATION: LEGITIMATE\nCONFIDENCE: 0.9",
	}}

	var eventTypes []EventType
	sink := SinkFunc(func(e Event) { eventTypes = append(eventTypes, e.Type) })

	o := New(gen, Config{CallerType: types.CallerFamily, Scenario: scenario}, sink)
	result, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.EndHandoffToSenior, result.EndReason)
	assert.True(t, result.HandoffSucceeded)
	assert.Equal(t, 2, result.TotalTurns)
	assert.Equal(t, agent.HandoffSentinel, result.Turns[1].SeniorMessage)
	assert.Equal(t, types.TacticHandoff, result.FinalSeniorState.CurrentTactic)
	assert.True(t, result.FinalCallerState.Recognized)

	require.NotEmpty(t, eventTypes)
	assert.Equal(t, EventSimulationStarted, eventTypes[0])
	assert.Equal(t, EventSimulationEnd, eventTypes[len(eventTypes)-1])
}

func TestRunScammerGaveUp(t *testing.T) {
	// Two stalling replies in a row drive patience to 0.15, under the
	// give-up floor on the third caller step.
	gen := &queueGenerator{responses: []string{
		"analysis", "STAY", "This is the IRS calling.",
		"analysis", "CLASSIFICATION: SCAM\nCONFIDENCE: 0.75", "BATHROOM_BREAK",
		"Hold on, what? Can you repeat that?", "leaked_sensitive: false",

		"analysis", "STAY", "Pay immediately or face arrest!",
		"analysis", "CLASSIFICATION: SCAM\nCONFIDENCE: 0.8", "BATHROOM_BREAK",
		"Wait, speak up sonny, I can't hear", "leaked_sensitive: false",

		"analysis", "STAY", "This is your final warning.",
		"Forget it, you old fool! *click*",
	}}

	var gaveUpLine string
	sink := SinkFunc(func(e Event) {
		if e.Type == EventScammerGaveUp {
			gaveUpLine = e.Message
		}
	})

	o := New(gen, Config{CallerType: types.CallerScammer}, sink)
	result, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.EndScammerGaveUp, result.EndReason)
	assert.True(t, result.ScammerGaveUp)
	assert.Equal(t, 3, result.TotalTurns)
	assert.Equal(t, noteScammerHungUp, result.Turns[2].SeniorMessage)
	assert.Equal(t, "Forget it, you old fool! *click*", gaveUpLine)
}

func TestRunSensitiveInfoExtracted(t *testing.T) {
	// The senior recites a real SSN but its own leak reflect misses it;
	// the scammer's deterministic reflect catches it on the next step.
	gen := &queueGenerator{responses: []string{
		"analysis", "STAY", "I need to verify your identity, ma'am.",
		"analysis", "CLASSIFICATION: UNCERTAIN\nCONFIDENCE: 0.5", "VERIFY_IDENTITY",
		"My social security number is 123-45-6789.", "leaked_sensitive: false",

		"analysis", "ADVANCE", "Perfect, let me just confirm that...",
	}}

	o := New(gen, Config{CallerType: types.CallerScammer}, nil)
	result, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.EndSensitiveExtracted, result.EndReason)
	assert.True(t, result.InfoExtracted)
	assert.Equal(t, 2, result.TotalTurns)
	assert.Equal(t, noteInfoExtracted, result.Turns[1].SeniorMessage)
	assert.True(t, result.FinalCallerState.ExtractedSensitive)
}

func TestRunSensitiveInfoLeaked(t *testing.T) {
	gen := &queueGenerator{responses: []string{
		"analysis", "STAY", "Read me the number on your card.",
		"analysis", "CLASSIFICATION: SCAM\nCONFIDENCE: 0.9", "FORGOT_AGAIN",
		"Well, the card says 4111...", "leaked_sensitive: true",
	}}

	o := New(gen, Config{CallerType: types.CallerScammer}, nil)
	result, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.EndSensitiveLeaked, result.EndReason)
	assert.True(t, result.SensitiveInfoLeaked)
	assert.Equal(t, 1, result.TotalTurns)
}

func TestRunPersuasionSucceeded(t *testing.T) {
	gen := &cycleGenerator{script: scammerTurnScript("Okay, yes, whatever you say.")}
	o := New(gen, Config{
		CallerType:          types.CallerScammer,
		PersuasionThreshold: 0.1,
	}, nil)

	result, err := o.Run(context.Background())
	require.NoError(t, err)

	// Turn 1 reflects the cold open (no delta); turn 2 reflects the
	// compliant reply, crossing the 0.1 threshold.
	assert.Equal(t, types.EndPersuasionSucceeded, result.EndReason)
	assert.True(t, result.PersuasionSucceeded)
	assert.Equal(t, 2, result.TotalTurns)
	assert.Equal(t, noteScamSucceeded, result.Turns[1].SeniorMessage)
}

func TestRunStoppedBeforeFirstTurn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &cycleGenerator{script: scammerTurnScript("Sure, okay.")}
	o := New(gen, Config{CallerType: types.CallerScammer}, nil)

	result, err := o.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.EndStopped, result.EndReason)
	assert.Zero(t, result.TotalTurns)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.normalize()
	assert.Equal(t, types.CallerScammer, cfg.CallerType)
	assert.Equal(t, 20, cfg.MaxTurns)
	assert.InDelta(t, 0.9, cfg.PersuasionThreshold, 1e-9)
}
