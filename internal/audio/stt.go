package audio

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// STTService transcribes caller audio with Whisper. It exists for the voice
// input path only; text-mode simulations never touch it.
type STTService struct {
	client *openai.Client
}

func NewSTTService(apiKey string) *STTService {
	return &STTService{client: openai.NewClient(apiKey)}
}

// RecognizeSpeech transcribes the audio file at the given path.
func (s *STTService) RecognizeSpeech(ctx context.Context, audioFilePath string) (string, error) {
	req := openai.AudioRequest{
		Model:    "whisper-1",
		FilePath: audioFilePath,
	}

	resp, err := s.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to recognize speech: %v", err)
	}

	return resp.Text, nil
}
