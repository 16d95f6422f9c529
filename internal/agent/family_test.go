package agent

import (
	"context"
	"testing"

	"github.com/bluecall/callsim_backend/internal/persona"
	"github.com/bluecall/callsim_backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScenario() persona.FamilyScenario {
	return persona.FamilyScenario{
		Relationship: "grandson",
		CallerName:   "Tommy",
		CallReason:   "checking in after grandpa's doctor appointment",
	}
}

func TestFamilyColdOpen(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"  Hi Grandpa, it's Tommy! How did the appointment go?  ",
		"recognized: false\nhandoff_ready: false",
	}}
	f := NewFamilyAgent(gen, testScenario())

	response, err := f.Step(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Hi Grandpa, it's Tommy! How did the appointment go?", response)

	history := f.History()
	require.Len(t, history, 1)
	assert.Contains(t, history[0], "Family:")

	snap := f.Snapshot()
	assert.Equal(t, types.CallerFamily, snap.CallerType)
	assert.Equal(t, 1, snap.Turn)
	assert.False(t, snap.Recognized)
	assert.False(t, snap.HandedOff)
	assert.Equal(t, "Tommy", snap.CallerName)
	assert.Equal(t, "grandson", snap.Relationship)
}

func TestFamilyMarkersSetFlags(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"It's me, Tommy! Your grandson!",
		"recognized: true\nhandoff_ready: false",
		"Great, so you know it's me. Can we talk about the appointment?",
		"recognized: true\nhandoff_ready: true",
	}}
	f := NewFamilyAgent(gen, testScenario())

	_, err := f.Step(context.Background(), "Now who is this calling?")
	require.NoError(t, err)
	snap := f.Snapshot()
	assert.True(t, snap.Recognized)
	assert.False(t, snap.HandedOff)

	_, err = f.Step(context.Background(), "Oh Tommy! Of course it's you.")
	require.NoError(t, err)
	snap = f.Snapshot()
	assert.True(t, snap.Recognized)
	assert.True(t, snap.HandedOff)
}

func TestFamilyFlagsAreMonotonic(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"It's Tommy, Grandpa!",
		"recognized: true\nhandoff_ready: true",
		"Yes, still me!",
		"I couldn't tell whether he recognized the caller.",
	}}
	f := NewFamilyAgent(gen, testScenario())

	_, err := f.Step(context.Background(), "Who's there?")
	require.NoError(t, err)
	_, err = f.Step(context.Background(), "Who did you say you were?")
	require.NoError(t, err)

	// A reflect without markers never clears the flags.
	snap := f.Snapshot()
	assert.True(t, snap.Recognized)
	assert.True(t, snap.HandedOff)
}

func TestFamilyGenerationFailureLeavesStateUntouched(t *testing.T) {
	f := NewFamilyAgent(failingGenerator{}, testScenario())
	before := f.Snapshot()

	_, err := f.Step(context.Background(), "Hello?")
	require.Error(t, err)
	assert.Equal(t, before, f.Snapshot())
	assert.Empty(t, f.History())
}
