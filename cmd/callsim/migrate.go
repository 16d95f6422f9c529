package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bluecall/callsim_backend/internal/database"
)

var migrateDataDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dir := os.Getenv("DATA_DIR"); dir != "" && !cmd.Flags().Changed("data-dir") {
			migrateDataDir = dir
		}

		db, err := database.New(migrateDataDir)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %v", err)
		}
		defer db.Close()

		fmt.Println("Database migrations completed successfully")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDataDir, "data-dir", "./data", "directory holding calls.db")
	rootCmd.AddCommand(migrateCmd)
}
