package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bluecall/callsim_backend/internal/evaluation"
	"github.com/bluecall/callsim_backend/internal/llm"
	"github.com/bluecall/callsim_backend/internal/persona"
	"github.com/bluecall/callsim_backend/internal/simulation"
	"github.com/bluecall/callsim_backend/internal/types"
)

var (
	simTurns        int
	simThreshold    float64
	simFamily       bool
	simQuiet        bool
	simScenarioFile string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a single simulated call in the terminal",
	Long: `Run one complete simulation against the configured OpenAI model and
print the transcript and evaluation report. The exit code reflects the
defender's outcome: 0 when the senior won, 1 when the caller won.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := os.Getenv("OPENAI_API_KEY")
		client, err := llm.NewClient(apiKey, os.Getenv("OPENAI_MODEL"))
		if err != nil {
			return err
		}

		cfg := simulation.Config{
			CallerType:          types.CallerScammer,
			MaxTurns:            simTurns,
			PersuasionThreshold: simThreshold,
		}
		if simFamily {
			cfg.CallerType = types.CallerFamily
			scenario, err := pickScenario(simScenarioFile)
			if err != nil {
				return err
			}
			cfg.Scenario = &scenario
		}

		var sink simulation.EventSink
		if !simQuiet {
			sink = simulation.SinkFunc(printEvent)
		}

		// Ctrl-C stops the call cooperatively between turns.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		orch := simulation.New(client, cfg, sink)
		result, err := orch.Run(ctx)
		if err != nil {
			return fmt.Errorf("simulation failed: %v", err)
		}

		report := evaluation.Evaluate(result)
		fmt.Println()
		fmt.Print(evaluation.FormatReport(report))

		if !report.DefenderSuccess {
			os.Exit(1)
		}
		return nil
	},
}

func pickScenario(path string) (persona.FamilyScenario, error) {
	if path == "" {
		return persona.RandomScenario(nil), nil
	}
	scenarios, err := persona.LoadScenarios(path)
	if err != nil {
		return persona.FamilyScenario{}, fmt.Errorf("failed to load scenarios: %v", err)
	}
	return persona.RandomScenario(scenarios), nil
}

func printEvent(event simulation.Event) {
	switch event.Type {
	case simulation.EventTurnStart:
		fmt.Printf("\n--- Turn %d ---\n", event.Turn)
	case simulation.EventCallerMessage:
		fmt.Printf("Caller: %s\n", event.Message)
	case simulation.EventSeniorMessage:
		fmt.Printf("Senior: %s\n", event.Message)
	case simulation.EventScammerGaveUp:
		fmt.Printf("Caller: %s\n", event.Message)
	case simulation.EventSimulationEnd:
		fmt.Printf("\nCall ended: %s\n", event.EndReason)
	}
}

func init() {
	simulateCmd.Flags().IntVar(&simTurns, "turns", 20, "maximum number of turns")
	simulateCmd.Flags().Float64Var(&simThreshold, "threshold", 0.9, "persuasion level at which the scam succeeds")
	simulateCmd.Flags().BoolVar(&simFamily, "family", false, "simulate a benign family caller instead of a scammer")
	simulateCmd.Flags().BoolVarP(&simQuiet, "quiet", "q", false, "suppress the live transcript")
	simulateCmd.Flags().StringVar(&simScenarioFile, "scenario-file", "", "YAML file with family scenarios (random preset when unset)")
	rootCmd.AddCommand(simulateCmd)
}
