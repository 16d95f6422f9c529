package server

import (
	"os"
	"strconv"
	"time"

	"github.com/bluecall/callsim_backend/internal/types"
)

// Config holds server configuration
type Config struct {
	Port        string
	OpenAIKey   string
	Model       string
	DataDir     string
	EnableVoice bool
	CallerVoice types.Voice
	SeniorVoice types.Voice
	TurnDelay   time.Duration
}

// ConfigFromEnv builds a Config from environment variables, applying
// defaults for everything except the API key.
func ConfigFromEnv() Config {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		CallerVoice: types.VoiceOnyx,
		SeniorVoice: types.VoiceFable,
	}

	if v, err := strconv.ParseBool(getEnv("ENABLE_VOICE", "false")); err == nil {
		cfg.EnableVoice = v
	}
	if v, err := types.ParseVoice(os.Getenv("CALLER_VOICE")); err == nil {
		cfg.CallerVoice = v
	}
	if v, err := types.ParseVoice(os.Getenv("SENIOR_VOICE")); err == nil {
		cfg.SeniorVoice = v
	}
	if ms, err := strconv.Atoi(getEnv("TURN_DELAY_MS", "0")); err == nil && ms > 0 {
		cfg.TurnDelay = time.Duration(ms) * time.Millisecond
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
