package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/bluecall/callsim_backend/internal/logging"
)

func main() {
	// Load environment variables before anything reads them. A missing
	// .env is fine when the environment is set directly.
	envErr := godotenv.Load()

	if err := logging.InitDefaultLogger(logging.Config{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Prefix:  "callsim",
		Colored: true,
	}); err != nil {
		os.Exit(1)
	}

	if envErr != nil {
		logging.Debug("No .env file loaded", map[string]interface{}{
			"error": envErr.Error(),
		})
	}

	Execute()
}
