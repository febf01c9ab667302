package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: counter_passes
graph:
  nodes:
    - id: 1
      config: {type: value, value: 0}
  script:
    - set:
        - {node: 1, value: 4}
assertions:
  - type: node_value
    node: 1
    value: 4
  - type: no_errors
`

const failingScenario = `name: counter_fails
graph:
  nodes:
    - id: 1
      config: {type: value, value: 0}
assertions:
  - type: node_value
    node: 1
    value: 7
`

func executeTest(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func scenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "counter_passes.yaml"), passingScenario)
	writeFile(t, filepath.Join(dir, "nested", "counter_fails.yml"), failingScenario)
	writeFile(t, filepath.Join(dir, "README.md"), "not a scenario")
	return dir
}

func TestTestCommandReportsFailures(t *testing.T) {
	out, err := executeTest(t, "text", scenarioDir(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 scenario(s) failed")

	assert.Contains(t, out, "✓ counter_passes (")
	assert.Contains(t, out, "✗ counter_fails")
	assert.Contains(t, out, "Assertion failed: node_value")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := executeTest(t, "text", scenarioDir(t), "--filter", "*passes")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
	assert.NotContains(t, out, "counter_fails")
}

func TestTestCommandJSON(t *testing.T) {
	out, err := executeTest(t, "json", scenarioDir(t))
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.False(t, resp.Data.Scenarios[1].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[1].Errors)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out, err := executeTest(t, "text", "../harness/testdata/scenarios")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ opacity_fade_in (2 frames)")
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := executeTest(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandMissingDir(t *testing.T) {
	_, err := executeTest(t, "text", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}
