package types

import (
	"fmt"
)

// CallerType selects which persona initiates the call
type CallerType string

const (
	// CallerScammer - an adversarial IRS-impersonation scam persona
	CallerScammer CallerType = "scammer"

	// CallerFamily - a benign family member, used to measure false positives
	CallerFamily CallerType = "family"
)

// PersuasionStage represents the scammer's position in the scam script
type PersuasionStage string

const (
	StageBuildingTrust PersuasionStage = "building_trust"
	StageFakeProblem   PersuasionStage = "fake_problem"
	StagePressure      PersuasionStage = "pressure"
	StageStealingInfo  PersuasionStage = "stealing_info"
	StageDemandPayment PersuasionStage = "demand_payment"
)

// StageOrder is the fixed escalation ladder. Stage transitions move at most
// one position per turn and never leave this list.
var StageOrder = []PersuasionStage{
	StageBuildingTrust,
	StageFakeProblem,
	StagePressure,
	StageStealingInfo,
	StageDemandPayment,
}

// Classification is the defender's current belief about the caller
type Classification string

const (
	ClassificationScam       Classification = "SCAM"
	ClassificationLegitimate Classification = "LEGITIMATE"
	ClassificationUncertain  Classification = "UNCERTAIN"
)

// HandoffDecision is derived from the classification, never set directly
type HandoffDecision string

const (
	DecisionStall      HandoffDecision = "STALL"
	DecisionHandoff    HandoffDecision = "HANDOFF"
	DecisionGatherInfo HandoffDecision = "GATHER_INFO"
)

// Tactic is one tag from the defender's fixed delay-tactic vocabulary
type Tactic string

const (
	// Friendly tactics for legitimate or low-suspicion callers
	TacticFriendlyChat   Tactic = "FRIENDLY_CHAT"
	TacticVerifyIdentity Tactic = "VERIFY_IDENTITY"
	TacticHappyToTalk    Tactic = "HAPPY_TO_TALK"

	// Neutral tactics while gathering information
	TacticRepeatPlease Tactic = "REPEAT_PLEASE"
	TacticConfused     Tactic = "CONFUSED"
	TacticThinking     Tactic = "THINKING"

	// Delay tactics for suspicious callers
	TacticStoryTime  Tactic = "STORY_TIME"
	TacticCantHear   Tactic = "CANT_HEAR"
	TacticHoldPlease Tactic = "HOLD_PLEASE"

	// Strong delay tactics for confirmed scams
	TacticBadConnection Tactic = "BAD_CONNECTION"
	TacticWrongInfo     Tactic = "WRONG_INFO"
	TacticManyQuestions Tactic = "MANY_QUESTIONS"
	TacticBathroomBreak Tactic = "BATHROOM_BREAK"
	TacticSomeoneAtDoor Tactic = "SOMEONE_AT_DOOR"
	TacticPhoneButtons  Tactic = "PHONE_BUTTONS"
	TacticForgotAgain   Tactic = "FORGOT_AGAIN"
	TacticPretendHelp   Tactic = "PRETEND_HELP"

	// TacticHandoff marks the terminal handoff sub-state, not a delay tactic
	TacticHandoff Tactic = "HANDOFF"
)

// EndReason tags why a simulation terminated. Exactly one is set per run.
type EndReason string

const (
	EndPersuasionSucceeded EndReason = "persuasion_succeeded"
	EndSensitiveExtracted  EndReason = "sensitive_info_extracted"
	EndScammerGaveUp       EndReason = "scammer_gave_up"
	EndHandoffToSenior     EndReason = "handoff_to_senior"
	EndSensitiveLeaked     EndReason = "sensitive_info_leaked"
	EndMaxTurnsReached     EndReason = "max_turns_reached"
	EndStopped             EndReason = "stopped"
)

// Voice represents available TTS voices
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

var (
	// AllDelayTactics contains the 17-tag delay-tactic vocabulary
	AllDelayTactics = []Tactic{
		TacticFriendlyChat,
		TacticVerifyIdentity,
		TacticHappyToTalk,
		TacticRepeatPlease,
		TacticConfused,
		TacticThinking,
		TacticStoryTime,
		TacticCantHear,
		TacticHoldPlease,
		TacticBadConnection,
		TacticWrongInfo,
		TacticManyQuestions,
		TacticBathroomBreak,
		TacticSomeoneAtDoor,
		TacticPhoneButtons,
		TacticForgotAgain,
		TacticPretendHelp,
	}

	// AllVoices contains all valid voices
	AllVoices = []Voice{
		VoiceAlloy,
		VoiceEcho,
		VoiceFable,
		VoiceOnyx,
		VoiceNova,
		VoiceShimmer,
	}

	callerTypeMap = map[string]CallerType{
		string(CallerScammer): CallerScammer,
		string(CallerFamily):  CallerFamily,
	}

	classificationMap = map[string]Classification{
		string(ClassificationScam):       ClassificationScam,
		string(ClassificationLegitimate): ClassificationLegitimate,
		string(ClassificationUncertain):  ClassificationUncertain,
	}

	stageIndexMap = func() map[PersuasionStage]int {
		m := make(map[PersuasionStage]int, len(StageOrder))
		for i, s := range StageOrder {
			m[s] = i
		}
		return m
	}()

	delayTacticMap = func() map[string]Tactic {
		m := make(map[string]Tactic, len(AllDelayTactics))
		for _, t := range AllDelayTactics {
			m[string(t)] = t
		}
		return m
	}()

	voiceMap = map[string]Voice{
		string(VoiceAlloy):   VoiceAlloy,
		string(VoiceEcho):    VoiceEcho,
		string(VoiceFable):   VoiceFable,
		string(VoiceOnyx):    VoiceOnyx,
		string(VoiceNova):    VoiceNova,
		string(VoiceShimmer): VoiceShimmer,
	}
)

// Error types for invalid values
var (
	ErrInvalidCallerType = fmt.Errorf("invalid caller type")
	ErrInvalidVoice      = fmt.Errorf("invalid voice")
)

// IsValid checks if the CallerType is valid
func (c CallerType) IsValid() bool {
	_, ok := callerTypeMap[string(c)]
	return ok
}

// String converts the enum to string
func (c CallerType) String() string {
	return string(c)
}

// ParseCallerType parses a string into a CallerType
func ParseCallerType(s string) (CallerType, error) {
	if ct, ok := callerTypeMap[s]; ok {
		return ct, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidCallerType, s)
}

// Index returns the stage's position in the escalation ladder, or -1 if the
// stage is not a member of StageOrder.
func (s PersuasionStage) Index() int {
	if idx, ok := stageIndexMap[s]; ok {
		return idx
	}
	return -1
}

// IsValid checks if the PersuasionStage is a member of the ladder
func (s PersuasionStage) IsValid() bool {
	_, ok := stageIndexMap[s]
	return ok
}

// String converts the enum to string
func (s PersuasionStage) String() string {
	return string(s)
}

// Advance returns the next stage, or the same stage if already at the top.
func (s PersuasionStage) Advance() PersuasionStage {
	idx := s.Index()
	if idx < 0 || idx >= len(StageOrder)-1 {
		return s
	}
	return StageOrder[idx+1]
}

// Retreat returns the previous stage, or the same stage if already at the bottom.
func (s PersuasionStage) Retreat() PersuasionStage {
	idx := s.Index()
	if idx <= 0 {
		return s
	}
	return StageOrder[idx-1]
}

// IsValid checks if the Classification is valid
func (c Classification) IsValid() bool {
	_, ok := classificationMap[string(c)]
	return ok
}

// String converts the enum to string
func (c Classification) String() string {
	return string(c)
}

// Decision maps a classification to its handoff decision. The mapping is
// fixed: SCAM stalls, LEGITIMATE hands off, UNCERTAIN gathers more info.
func (c Classification) Decision() HandoffDecision {
	switch c {
	case ClassificationScam:
		return DecisionStall
	case ClassificationLegitimate:
		return DecisionHandoff
	default:
		return DecisionGatherInfo
	}
}

// IsDelayTactic checks if the Tactic is a member of the 17-tag vocabulary
func (t Tactic) IsDelayTactic() bool {
	_, ok := delayTacticMap[string(t)]
	return ok
}

// String converts the enum to string
func (t Tactic) String() string {
	return string(t)
}

// ParseDelayTactic parses a string into a delay Tactic
func ParseDelayTactic(s string) (Tactic, bool) {
	t, ok := delayTacticMap[s]
	return t, ok
}

// String converts the enum to string
func (r EndReason) String() string {
	return string(r)
}

// IsValid checks if the Voice is valid
func (v Voice) IsValid() bool {
	_, ok := voiceMap[string(v)]
	return ok
}

// String converts the enum to string
func (v Voice) String() string {
	return string(v)
}

// ParseVoice parses a string into a Voice
func ParseVoice(s string) (Voice, error) {
	if voice, ok := voiceMap[s]; ok {
		return voice, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidVoice, s)
}

// Description returns a human-readable description of the voice
func (v Voice) Description() string {
	switch v {
	case VoiceAlloy:
		return "A versatile, neutral voice that maintains clarity and engagement"
	case VoiceEcho:
		return "A baritone voice with depth and warmth, good for an elderly persona"
	case VoiceFable:
		return "A youthful voice with a bright and optimistic tone"
	case VoiceOnyx:
		return "A deep and authoritative male voice with gravitas"
	case VoiceNova:
		return "A feminine voice with a professional and welcoming tone"
	case VoiceShimmer:
		return "A clear, energetic voice with a friendly character"
	default:
		return "Unknown voice"
	}
}
