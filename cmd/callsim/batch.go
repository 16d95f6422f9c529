package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bluecall/callsim_backend/internal/evaluation"
	"github.com/bluecall/callsim_backend/internal/llm"
	"github.com/bluecall/callsim_backend/internal/simulation"
	"github.com/bluecall/callsim_backend/internal/types"
)

var (
	batchCount       int
	batchConcurrency int
	batchTurns       int
	batchFamily      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many simulations and print aggregate statistics",
	Long: `Run a batch of independent simulations, fanned out across a bounded
number of workers, and report win rates and average scores. Each simulation
owns its own agent state; only the OpenAI client is shared.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey := os.Getenv("OPENAI_API_KEY")
		client, err := llm.NewClient(apiKey, os.Getenv("OPENAI_MODEL"))
		if err != nil {
			return err
		}

		callerType := types.CallerScammer
		if batchFamily {
			callerType = types.CallerFamily
		}

		var (
			mu      sync.Mutex
			reports []evaluation.Report
		)

		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(batchConcurrency)

		for i := 0; i < batchCount; i++ {
			g.Go(func() error {
				orch := simulation.New(client, simulation.Config{
					CallerType: callerType,
					MaxTurns:   batchTurns,
				}, nil)

				result, err := orch.Run(ctx)
				if err != nil {
					return err
				}

				report := evaluation.Evaluate(result)
				mu.Lock()
				reports = append(reports, report)
				mu.Unlock()
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return fmt.Errorf("batch failed: %v", err)
		}

		printBatchSummary(reports)
		return nil
	},
}

func printBatchSummary(reports []evaluation.Report) {
	if len(reports) == 0 {
		fmt.Println("No simulations completed.")
		return
	}

	wins := 0
	defenderTotal, callerTotal := 0, 0
	turnsTotal := 0
	reasons := make(map[types.EndReason]int)

	for _, r := range reports {
		if r.DefenderSuccess {
			wins++
		}
		defenderTotal += r.DefenderScore
		callerTotal += r.CallerScore
		turnsTotal += r.TotalTurns
		reasons[r.EndReason]++
	}

	n := len(reports)
	fmt.Printf("Simulations:        %d\n", n)
	fmt.Printf("Defender win rate:  %.0f%%\n", float64(wins)/float64(n)*100)
	fmt.Printf("Avg defender score: %.1f\n", float64(defenderTotal)/float64(n))
	fmt.Printf("Avg caller score:   %.1f\n", float64(callerTotal)/float64(n))
	fmt.Printf("Avg turns:          %.1f\n", float64(turnsTotal)/float64(n))
	fmt.Println("End reasons:")
	for reason, count := range reasons {
		fmt.Printf("  %-26s %d\n", reason, count)
	}
}

func init() {
	batchCmd.Flags().IntVarP(&batchCount, "count", "n", 10, "number of simulations to run")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 3, "simulations running at once")
	batchCmd.Flags().IntVar(&batchTurns, "turns", 20, "maximum number of turns per simulation")
	batchCmd.Flags().BoolVar(&batchFamily, "family", false, "simulate family callers instead of scammers")
	rootCmd.AddCommand(batchCmd)
}
