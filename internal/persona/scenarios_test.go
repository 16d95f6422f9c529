package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenarios(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")

	content := `
- relationship: granddaughter
  caller_name: Maya
  call_reason: sharing news about her new job
- relationship: son
  caller_name: Robert
  call_reason: arranging a doctor visit
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenarios, err := LoadScenarios(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "Maya", scenarios[0].CallerName)
	assert.Equal(t, "arranging a doctor visit", scenarios[1].CallReason)
}

func TestLoadScenariosIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenarios.yaml")

	content := `
- relationship: cousin
  caller_name: ""
  call_reason: asking about the reunion
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadScenarios(path)
	assert.Error(t, err)
}

func TestLoadScenariosMissingFile(t *testing.T) {
	_, err := LoadScenarios(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestRandomScenarioFallsBackToPresets(t *testing.T) {
	s := RandomScenario(nil)
	assert.NotEmpty(t, s.Relationship)
	assert.NotEmpty(t, s.CallerName)
	assert.NotEmpty(t, s.CallReason)
}
