// Package evaluation scores finished simulations. Evaluate is a pure
// function: given the same result it always produces the same report, and it
// never touches the agents or the generator.
package evaluation

import (
	"fmt"
	"strings"

	"github.com/bluecall/callsim_backend/internal/simulation"
	"github.com/bluecall/callsim_backend/internal/types"
)

// Point rubric constants. Fractional components truncate toward zero, so a
// re-run over the same result is bit-identical.
const (
	maxScore = 100

	// Defender rubric, scammer mode.
	defenderTurnPoints    = 2
	defenderTurnCap       = 30
	defenderNoLeakBonus   = 20
	defenderResistWeight  = 15
	defenderDetectWeight  = 15
	defenderClassifyBonus = 10
	defenderGiveUpBonus   = 10

	// Defender rubric, family mode.
	defenderHandoffPoints   = 50
	defenderCalmWeight      = 30
	defenderRecognizedBonus = 20

	// Caller rubrics.
	scammerPersuasionWeight = 40
	scammerStagePoints      = 10
	scammerSuccessBonus     = 20
	familyRecognizedPoints  = 50
	familyHandoffPoints     = 50
)

// Report is the scored summary of one finished simulation.
type Report struct {
	SimulationID string           `json:"simulation_id"`
	CallerType   types.CallerType `json:"caller_type"`
	EndReason    types.EndReason  `json:"end_reason"`

	DefenderScore   int  `json:"defender_score"`
	CallerScore     int  `json:"caller_score"`
	DefenderSuccess bool `json:"defender_success"`

	TotalTurns        int                     `json:"total_turns"`
	TimeWastedSeconds float64                 `json:"time_wasted_seconds"`
	StagesReached     []types.PersuasionStage `json:"stages_reached,omitempty"`
	TacticsUsed       map[types.Tactic]int    `json:"tactics_used,omitempty"`
	MostUsedTactic    types.Tactic            `json:"most_used_tactic,omitempty"`
}

// turnSummary aggregates the single walk over the turn records shared by the
// caller score and the report summary fields.
type turnSummary struct {
	stagesReached []types.PersuasionStage
	maxStageIndex int
	tacticsUsed   map[types.Tactic]int
}

// summarizeTurns walks the transcript once. The peak stage is the maximum
// over all recorded turns, not the stage at hang-up: the escalate step can
// retreat, and retreating must not erase progress already made. Zero-turn
// runs fall back to the final snapshot.
func summarizeTurns(result *simulation.Result) turnSummary {
	summary := turnSummary{
		maxStageIndex: -1,
		tacticsUsed:   make(map[types.Tactic]int),
	}
	seen := make(map[types.PersuasionStage]bool)
	for _, turn := range result.Turns {
		stage := turn.CallerState.PersuasionStage
		if idx := stage.Index(); idx >= 0 {
			if !seen[stage] {
				seen[stage] = true
				summary.stagesReached = append(summary.stagesReached, stage)
			}
			if idx > summary.maxStageIndex {
				summary.maxStageIndex = idx
			}
		}
		tactic := turn.SeniorState.CurrentTactic
		if tactic.IsDelayTactic() {
			summary.tacticsUsed[tactic]++
		}
	}
	if summary.maxStageIndex < 0 {
		if idx := result.FinalCallerState.PersuasionStage.Index(); idx >= 0 {
			summary.maxStageIndex = idx
			summary.stagesReached = append(summary.stagesReached, result.FinalCallerState.PersuasionStage)
		}
	}
	return summary
}

// Evaluate scores both sides of a finished conversation.
func Evaluate(result *simulation.Result) Report {
	summary := summarizeTurns(result)
	report := Report{
		SimulationID:      result.ID,
		CallerType:        result.CallerType,
		EndReason:         result.EndReason,
		TotalTurns:        result.TotalTurns,
		TimeWastedSeconds: result.TimeWastedSeconds,
		StagesReached:     summary.stagesReached,
		TacticsUsed:       summary.tacticsUsed,
		MostUsedTactic:    mostUsedTactic(result.Turns),
	}

	if result.CallerType == types.CallerFamily {
		report.DefenderScore = familyDefenderScore(result)
		report.CallerScore = familyCallerScore(result)
		report.DefenderSuccess = result.HandoffSucceeded
		return report
	}

	report.DefenderScore = scammerDefenderScore(result)
	report.CallerScore = scammerCallerScore(result, summary.maxStageIndex)
	report.DefenderSuccess = !result.SensitiveInfoLeaked &&
		!result.PersuasionSucceeded && !result.InfoExtracted
	return report
}

// scammerDefenderScore rewards time wasted, holding information back, and
// accurate scam detection.
func scammerDefenderScore(result *simulation.Result) int {
	score := result.TotalTurns * defenderTurnPoints
	if score > defenderTurnCap {
		score = defenderTurnCap
	}
	if !result.SensitiveInfoLeaked {
		score += defenderNoLeakBonus
	}
	score += int((1 - result.FinalCallerState.PersuasionLevel) * defenderResistWeight)
	score += int(result.FinalSeniorState.ScamConfidence * defenderDetectWeight)
	if result.FinalSeniorState.Classification == types.ClassificationScam {
		score += defenderClassifyBonus
	}
	if result.ScammerGaveUp {
		score += defenderGiveUpBonus
	}
	return capScore(score)
}

// scammerCallerScore rewards persuasion progress, the deepest stage reached,
// and an outright win (leak, extraction, or full persuasion).
func scammerCallerScore(result *simulation.Result, maxStageIndex int) int {
	score := int(result.FinalCallerState.PersuasionLevel * scammerPersuasionWeight)
	if maxStageIndex > 0 {
		score += maxStageIndex * scammerStagePoints
	}
	if result.SensitiveInfoLeaked || result.InfoExtracted || result.PersuasionSucceeded {
		score += scammerSuccessBonus
	}
	return capScore(score)
}

// familyDefenderScore rewards handing a legitimate caller off quickly with
// low residual scam suspicion.
func familyDefenderScore(result *simulation.Result) int {
	score := 0
	if result.HandoffSucceeded {
		score += defenderHandoffPoints
	}
	score += int((1 - result.FinalSeniorState.ScamConfidence) * defenderCalmWeight)
	if result.FinalSeniorState.Classification == types.ClassificationLegitimate {
		score += defenderRecognizedBonus
	}
	return capScore(score)
}

// familyCallerScore rewards getting recognized and reaching the handoff.
func familyCallerScore(result *simulation.Result) int {
	score := 0
	if result.FinalCallerState.Recognized {
		score += familyRecognizedPoints
	}
	if result.HandoffSucceeded {
		score += familyHandoffPoints
	}
	return capScore(score)
}

func capScore(score int) int {
	if score > maxScore {
		return maxScore
	}
	if score < 0 {
		return 0
	}
	return score
}

// mostUsedTactic returns the delay tactic appearing most often across the
// turn records. Ties break toward the tactic that reached the winning count
// first in turn order.
func mostUsedTactic(turns []simulation.TurnRecord) types.Tactic {
	counts := make(map[types.Tactic]int)
	var best types.Tactic
	bestCount := 0
	for _, turn := range turns {
		tactic := turn.SeniorState.CurrentTactic
		if !tactic.IsDelayTactic() {
			continue
		}
		counts[tactic]++
		if counts[tactic] > bestCount {
			best = tactic
			bestCount = counts[tactic]
		}
	}
	return best
}

// FormatReport renders a human-readable summary for the CLI.
func FormatReport(report Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Simulation %s (%s caller)\n", report.SimulationID, report.CallerType)
	fmt.Fprintf(&b, "  End reason:       %s\n", report.EndReason)
	fmt.Fprintf(&b, "  Total turns:      %d\n", report.TotalTurns)
	fmt.Fprintf(&b, "  Time wasted:      %.0fs\n", report.TimeWastedSeconds)
	if len(report.StagesReached) > 0 {
		stages := make([]string, len(report.StagesReached))
		for i, stage := range report.StagesReached {
			stages[i] = stage.String()
		}
		fmt.Fprintf(&b, "  Stages reached:   %s\n", strings.Join(stages, ", "))
	}
	if report.MostUsedTactic != "" {
		fmt.Fprintf(&b, "  Top delay tactic: %s\n", report.MostUsedTactic)
	}
	if len(report.TacticsUsed) > 0 {
		b.WriteString("  Tactics used:\n")
		// Fixed vocabulary order keeps the rendering deterministic.
		for _, tactic := range types.AllDelayTactics {
			if count, ok := report.TacticsUsed[tactic]; ok {
				fmt.Fprintf(&b, "    %s: %d\n", tactic, count)
			}
		}
	}
	fmt.Fprintf(&b, "  Defender score:   %d/100\n", report.DefenderScore)
	fmt.Fprintf(&b, "  Caller score:     %d/100\n", report.CallerScore)
	outcome := "defender lost"
	if report.DefenderSuccess {
		outcome = "defender won"
	}
	fmt.Fprintf(&b, "  Outcome:          %s\n", outcome)
	return b.String()
}
