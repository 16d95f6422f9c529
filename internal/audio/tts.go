package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bluecall/callsim_backend/internal/logging"
	"github.com/bluecall/callsim_backend/internal/types"
)

// Rough speaking rate used to pace playback on the client.
const wordsPerSecond = 2.8

// TTSService converts simulation messages to speech. It is entirely
// decoupled from simulation correctness; the turn loop works identically
// when the service is absent.
type TTSService struct {
	client *openai.Client
}

// NewTTSService creates a TTS service backed by the OpenAI speech API.
func NewTTSService(apiKey string) *TTSService {
	return &TTSService{client: openai.NewClient(apiKey)}
}

// GenerateAudio renders text as MP3 bytes in the given voice.
func (t *TTSService) GenerateAudio(ctx context.Context, text string, voice types.Voice) ([]byte, error) {
	if !voice.IsValid() {
		voice = types.VoiceAlloy
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	resp, err := t.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech: %v", err)
	}
	defer resp.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp); err != nil {
		return nil, fmt.Errorf("failed to read speech response: %v", err)
	}

	logging.LogTTSEvent("audio_generated", string(voice), map[string]interface{}{
		"text_length": len(text),
		"audio_bytes": buf.Len(),
	})

	return buf.Bytes(), nil
}

// EstimateSpokenDuration estimates how long the text takes to say out loud,
// in seconds, clamped to a sane playback window.
func EstimateSpokenDuration(text string) float64 {
	words := len(strings.Fields(text))
	seconds := float64(words) / wordsPerSecond
	if seconds < 0.8 {
		return 0.8
	}
	if seconds > 12 {
		return 12
	}
	return seconds
}
