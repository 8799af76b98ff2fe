package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: simple_measure
steps:
  - measure:
      context: "abc"
      observer: naive
      target_precision: 1e-30
      complexity: 1
      accessibility: 0.8
    expect:
      converged: false
assertions:
  - type: history_len
    value: 1
`

const failingScenario = `name: wrong_expectation
steps:
  - measure:
      context: "abc"
      observer: naive
      target_precision: 1e-30
      complexity: 1
      accessibility: 0.8
    expect:
      converged: true
`

func TestTestCommand_Builtin(t *testing.T) {
	stdout, _, err := execute(t, "test")
	require.NoError(t, err)

	assert.Contains(t, stdout, "✓ measurement_basics")
	assert.Contains(t, stdout, "✓ alignment_cache")
	assert.Contains(t, stdout, "Test Summary: 6 passed, 0 failed, 6 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommand_BuiltinFilter(t *testing.T) {
	stdout, _, err := execute(t, "test", "--filter", "measurement_*", "--format", "json")
	require.NoError(t, err)

	resp, data := decodeResponse(t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["passed"])

	scenarios := data["scenarios"].([]any)
	require.Len(t, scenarios, 1)
	first := scenarios[0].(map[string]any)
	assert.Equal(t, "measurement_basics", first["name"])
	assert.Len(t, first["trace_hash"], 64)
}

func TestTestCommand_InvalidFilter(t *testing.T) {
	_, _, err := execute(t, "test", "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_UpdateRequiresDir(t *testing.T) {
	_, _, err := execute(t, "test", "--update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--update requires a scenarios directory")
}

func TestTestCommand_MissingDir(t *testing.T) {
	_, _, err := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommand_EmptyDir(t *testing.T) {
	stdout, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found.")
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "simple_measure.yaml", passingScenario)

	stdout, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ simple_measure (golden updated)")

	golden := filepath.Join(dir, "golden", "simple_measure.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"history_len":1`)

	stdout, _, err = execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ simple_measure\n")
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "simple_measure.yaml", passingScenario)
	writeFile(t, dir, "golden/simple_measure.golden", `{"stale":true}`)

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "trace does not match golden file")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "simple_measure.yaml", passingScenario)
	writeFile(t, dir, "wrong_expectation.yml", failingScenario)

	stdout, _, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, data := decodeResponse(t, stdout)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(1), data["passed"])
	assert.Equal(t, float64(1), data["failed"])
}

func TestTestCommand_UnloadableScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nsteps: [\n")

	stdout, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "simple_measure.yaml", passingScenario)
	writeFile(t, dir, "wrong_expectation.yaml", failingScenario)

	stdout, _, err := execute(t, "test", dir, "--filter", "simple_*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
}
