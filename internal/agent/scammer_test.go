package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/bluecall/callsim_backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator returns canned responses in order, repeating the last one
// once the script is exhausted.
type scriptedGenerator struct {
	responses []string
	calls     int
}

func (g *scriptedGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	idx := g.calls
	if idx >= len(g.responses) {
		idx = len(g.responses) - 1
	}
	g.calls++
	return g.responses[idx], nil
}

type failingGenerator struct{}

func (failingGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestScammerColdOpen(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"The call just started.",
		"STAY",
		"  Hello, this is the IRS Tax Resolution Department.  ",
	}}
	s := NewScammerAgent(gen)

	response, err := s.Step(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Hello, this is the IRS Tax Resolution Department.", response)

	// No phantom victim line on the cold open
	history := s.History()
	require.Len(t, history, 1)
	assert.Contains(t, history[0], "Scammer:")

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Turn)
	assert.Equal(t, types.StageBuildingTrust, snap.PersuasionStage)
	assert.InDelta(t, 0.65, snap.Patience, 1e-9) // base decay from 0.8
	assert.False(t, snap.GaveUp)
}

func TestScammerStepRecordsVictimLine(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"analysis", "STAY", "Ma'am, listen to me."}}
	s := NewScammerAgent(gen)

	_, err := s.Step(context.Background(), "Hello? Who is this?")
	require.NoError(t, err)

	history := s.History()
	require.Len(t, history, 2)
	assert.Equal(t, "Victim: Hello? Who is this?", history[0])
}

func TestScammerGenerationFailureLeavesStateUntouched(t *testing.T) {
	s := NewScammerAgent(failingGenerator{})
	before := s.Snapshot()

	_, err := s.Step(context.Background(), "Hello?")
	require.Error(t, err)
	assert.Equal(t, before, s.Snapshot())
	assert.Empty(t, s.History())
}

func TestNextStage(t *testing.T) {
	assert.Equal(t, types.StageFakeProblem, nextStage(types.StageBuildingTrust, "ADVANCE"))
	assert.Equal(t, types.StageFakeProblem, nextStage(types.StageBuildingTrust, "I think we should advance now."))
	assert.Equal(t, types.StageBuildingTrust, nextStage(types.StageBuildingTrust, "RETREAT"))
	assert.Equal(t, types.StageDemandPayment, nextStage(types.StageDemandPayment, "ADVANCE"))
	assert.Equal(t, types.StagePressure, nextStage(types.StageStealingInfo, "RETREAT"))
	assert.Equal(t, types.StagePressure, nextStage(types.StagePressure, "hold steady"))
	// ADVANCE takes priority when both keywords appear
	assert.Equal(t, types.StagePressure, nextStage(types.StageFakeProblem, "ADVANCE, do not RETREAT"))
}

func TestReflectStalling(t *testing.T) {
	st := scammerState{patience: 0.8}
	reflectScammer(&st, "Can you repeat that, I can't hear")

	assert.InDelta(t, 0.55, st.patience, 1e-9)
	assert.Equal(t, 0.0, st.persuasion)
	assert.Equal(t, 1, st.frustration)
	assert.False(t, st.gaveUp)
	assert.Equal(t, 1, st.turn)
}

func TestReflectExtractionPrecedence(t *testing.T) {
	// Both compliance and extraction keywords match; extraction wins.
	st := scammerState{patience: 0.8, persuasion: 0.2}
	reflectScammer(&st, "Okay, yes I understand, my social security number is...")

	assert.True(t, st.extracted)
	assert.InDelta(t, 0.8, st.patience, 1e-9)  // zero decay
	assert.InDelta(t, 0.35, st.persuasion, 1e-9)
}

func TestReflectCompliance(t *testing.T) {
	st := scammerState{patience: 0.8}
	reflectScammer(&st, "Sure, I'll go find my checkbook")

	assert.InDelta(t, 0.75, st.patience, 1e-9)
	assert.InDelta(t, 0.1, st.persuasion, 1e-9)
	assert.False(t, st.extracted)
}

func TestReflectBaseDecay(t *testing.T) {
	st := scammerState{patience: 0.8}
	reflectScammer(&st, "The weather has been lovely lately")

	assert.InDelta(t, 0.65, st.patience, 1e-9)
	assert.Equal(t, 0.0, st.persuasion)
	assert.Equal(t, 0, st.frustration)
}

func TestExtractedFlagIsMonotonic(t *testing.T) {
	st := scammerState{patience: 0.9}
	reflectScammer(&st, "my social security number is 12345")
	require.True(t, st.extracted)

	reflectScammer(&st, "lovely day outside")
	reflectScammer(&st, "the garden needs water")
	assert.True(t, st.extracted)
}

func TestGiveUpPatienceBoundary(t *testing.T) {
	// Landing exactly on the floor does not trigger; strictly below does.
	st := scammerState{patience: 0.5}
	reflectScammer(&st, "hold on a moment") // stalling: -0.25 -> 0.25
	assert.InDelta(t, 0.25, st.patience, 1e-9)
	assert.False(t, st.gaveUp)

	st = scammerState{patience: 0.49999}
	reflectScammer(&st, "hold on a moment") // -> 0.24999
	assert.True(t, st.gaveUp)
}

func TestGiveUpFrustrationThresholdBeforeDecrement(t *testing.T) {
	// A counter sitting at the cap triggers on a non-stalling turn, then
	// decrements for the next turn.
	st := scammerState{patience: 0.9, frustration: 3}
	reflectScammer(&st, "alright then")

	assert.True(t, st.gaveUp)
	assert.Equal(t, 2, st.frustration)
}

func TestGiveUpAfterConsecutiveStalling(t *testing.T) {
	st := scammerState{patience: 1.0}
	reflectScammer(&st, "what was that?")
	reflectScammer(&st, "speak up please")
	assert.False(t, st.gaveUp)
	reflectScammer(&st, "hold on, doorbell")
	assert.True(t, st.gaveUp)
	assert.Equal(t, 3, st.frustration)
}

func TestReflectClamping(t *testing.T) {
	st := scammerState{patience: 0.05, persuasion: 0.95}
	for i := 0; i < 5; i++ {
		reflectScammer(&st, "okay sure, I'll do that")
	}
	assert.GreaterOrEqual(t, st.patience, 0.0)
	assert.LessOrEqual(t, st.persuasion, 1.0)
}

func TestGiveUpLineAppendsToHistory(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Forget it! You're wasting my time. *click*"}}
	s := NewScammerAgent(gen)

	line, err := s.GiveUpLine(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, line)
	require.Len(t, s.History(), 1)
	assert.Contains(t, s.History()[0], line)
}
