package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bluecall/callsim_backend/internal/database"
	"github.com/bluecall/callsim_backend/internal/llm"
	"github.com/bluecall/callsim_backend/internal/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CallSim server",
	Long: `Start the CallSim WebSocket and REST server. Clients open a WebSocket
to drive live simulations; finished calls are evaluated and persisted.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(".env"); os.IsNotExist(err) {
			fmt.Println("Warning: .env file not found. Make sure OPENAI_API_KEY is set")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := server.ConfigFromEnv()
		if servePort != "" {
			cfg.Port = servePort
		}

		client, err := llm.NewClient(cfg.OpenAIKey, cfg.Model)
		if err != nil {
			return err
		}

		db, err := database.New(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
		defer db.Close()

		srv := server.NewServer(cfg, db, client)
		return srv.Run()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}
