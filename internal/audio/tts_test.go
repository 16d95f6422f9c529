package audio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateSpokenDuration(t *testing.T) {
	// Seven words at 2.8 words/sec = 2.5s
	assert.InDelta(t, 2.5, EstimateSpokenDuration("now who did you say was calling"), 1e-9)

	// Short fragments clamp to the floor
	assert.InDelta(t, 0.8, EstimateSpokenDuration("hello"), 1e-9)
	assert.InDelta(t, 0.8, EstimateSpokenDuration(""), 1e-9)

	// Long rambles clamp to the ceiling
	long := strings.Repeat("well back in my day ", 50)
	assert.InDelta(t, 12.0, EstimateSpokenDuration(long), 1e-9)
}
