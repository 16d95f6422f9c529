package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestGenerationErrorWraps(t *testing.T) {
	cause := errors.New("rate limited")
	err := &GenerationError{Op: "completion", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "completion")
	assert.Contains(t, err.Error(), "rate limited")
}
