package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Generator is the text-generation boundary. Output is untrusted free text:
// callers must parse it defensively and fall back to deterministic defaults.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GenerationError wraps a failure at the generation boundary. It is fatal to
// the step that issued the call; the core never retries.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed during %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Client is an OpenAI-backed Generator. It is constructed once at process
// start and injected into the agents; there is no hidden global instance.
type Client struct {
	model llms.Model
}

var _ Generator = (*Client)(nil)

const defaultModel = "gpt-4o-mini"

// NewClient creates a generation client for the given API key. An empty model
// name selects the default.
func NewClient(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("configuration error: API key is required")
	}
	if model == "" {
		model = defaultModel
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %v", err)
	}

	return &Client{model: llm}, nil
}

// Generate produces a completion for a (system instruction, user instruction)
// pair and returns the raw text with surrounding whitespace stripped.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", &GenerationError{Op: "completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Op: "completion", Err: fmt.Errorf("empty response")}
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
