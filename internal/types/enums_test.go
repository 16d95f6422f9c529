package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageOrderArithmetic(t *testing.T) {
	assert.Equal(t, StageFakeProblem, StageBuildingTrust.Advance())
	assert.Equal(t, StageBuildingTrust, StageBuildingTrust.Retreat())
	assert.Equal(t, StageDemandPayment, StageDemandPayment.Advance())
	assert.Equal(t, StageStealingInfo, StageDemandPayment.Retreat())

	// Walking the whole ladder never leaves it
	s := StageBuildingTrust
	for i := 0; i < 10; i++ {
		s = s.Advance()
		assert.True(t, s.IsValid())
	}
	assert.Equal(t, StageDemandPayment, s)
}

func TestStageIndex(t *testing.T) {
	for i, s := range StageOrder {
		assert.Equal(t, i, s.Index())
	}
	assert.Equal(t, -1, PersuasionStage("bogus").Index())
}

func TestClassificationDecision(t *testing.T) {
	assert.Equal(t, DecisionStall, ClassificationScam.Decision())
	assert.Equal(t, DecisionHandoff, ClassificationLegitimate.Decision())
	assert.Equal(t, DecisionGatherInfo, ClassificationUncertain.Decision())
}

func TestDelayTacticVocabulary(t *testing.T) {
	assert.Len(t, AllDelayTactics, 17)
	for _, tactic := range AllDelayTactics {
		parsed, ok := ParseDelayTactic(string(tactic))
		assert.True(t, ok)
		assert.Equal(t, tactic, parsed)
	}

	// HANDOFF is a terminal marker, not a delay tactic
	assert.False(t, TacticHandoff.IsDelayTactic())
	_, ok := ParseDelayTactic("LOUD_MUSIC")
	assert.False(t, ok)
}

func TestParseCallerType(t *testing.T) {
	ct, err := ParseCallerType("scammer")
	assert.NoError(t, err)
	assert.Equal(t, CallerScammer, ct)

	ct, err = ParseCallerType("family")
	assert.NoError(t, err)
	assert.Equal(t, CallerFamily, ct)

	_, err = ParseCallerType("telemarketer")
	assert.ErrorIs(t, err, ErrInvalidCallerType)
}

func TestParseVoice(t *testing.T) {
	v, err := ParseVoice("onyx")
	assert.NoError(t, err)
	assert.Equal(t, VoiceOnyx, v)

	_, err = ParseVoice("baritone")
	assert.ErrorIs(t, err, ErrInvalidVoice)
}
