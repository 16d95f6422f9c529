package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "callsim",
	Short: "CallSim - scam call simulation platform",
	Long: `CallSim runs adversarial phone call simulations between an AI scammer
(or a benign family caller) and an AI senior who stalls, misdirects, and
wastes the caller's time. Finished calls are scored for both sides.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
