package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardDocument = `{
  "chains": [
    {"name": "vcc", "elements": ["U1", "U2", "C1", "R1"]},
    {"name": "gnd", "elements": ["U1", "U2", "C1", "C2"]},
    {"name": "clk", "elements": ["U1", "X1", "C3"]},
    {"name": "led", "elements": ["U2", "R3", "D1"]}
  ]
}`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte(boardDocument), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	root := newApp(&out, &logs).root()
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

type runOutput struct {
	RunID            string
	Outcome          string
	BestByGeneration []int
	FinalBest        int
	Distribution     map[string]int
}

func TestRunCommandJSON(t *testing.T) {
	out, err := execute(t, "run", "--schema", writeSchema(t), "--generations", "6", "--population", "6", "--nodes", "3", "--json")
	require.NoError(t, err)

	var summary runOutput
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "completed", summary.Outcome)
	assert.Len(t, summary.BestByGeneration, 6)
	assert.Len(t, summary.Distribution, 9)
	for _, node := range summary.Distribution {
		assert.GreaterOrEqual(t, node, 1)
		assert.LessOrEqual(t, node, 3)
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("CADLAYOUT_GENERATIONS", "4")
	t.Setenv("CADLAYOUT_POPULATION", "4")

	out, err := execute(t, "run", "--schema", writeSchema(t), "--json")
	require.NoError(t, err)
	var summary runOutput
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(out), &summary))
	assert.Len(t, summary.BestByGeneration, 4)

	out, err = execute(t, "run", "--schema", writeSchema(t), "--generations", "2", "--json")
	require.NoError(t, err)
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(out), &summary))
	assert.Len(t, summary.BestByGeneration, 2)
}

func TestConfigFileSetsStore(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.bbolt")
	config := filepath.Join(dir, "cadlayout.yaml")
	require.NoError(t, os.WriteFile(config, []byte("store: bbolt\ndb: "+db+"\ngenerations: 3\npopulation: 4\n"), 0o644))

	_, err := execute(t, "--config", config, "run", "--schema", writeSchema(t))
	require.NoError(t, err)
	_, err = os.Stat(db)
	require.NoError(t, err)

	out, err := execute(t, "--config", config, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "board")
	assert.Contains(t, out, "panmixia/elitism")

	out, err = execute(t, "--config", config, "history", "--latest")
	require.NoError(t, err)
	assert.Contains(t, out, "Generation")

	out, err = execute(t, "--config", config, "best", "--latest", "--accept", writeSchema(t))
	require.NoError(t, err)
	assert.Contains(t, out, "accepted:")
	assert.Contains(t, out, "U1")
}

func TestMissingConfigFileFails(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	require.Error(t, err)
}

func TestBenchmarkCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--benchmarks-dir", dir, "benchmark", "--schema", writeSchema(t),
		"--generations", "3", "--population", "4", "--repeats", "2", "--parent", "panmixia,inbreeding", "--report", "smoke")
	require.NoError(t, err)
	assert.Contains(t, out, "panmixia/elitism")
	assert.Contains(t, out, "inbreeding/tournament")
	assert.Contains(t, out, "best combination:")
	assert.FileExists(t, filepath.Join(dir, "smoke", "benchmark_report.json"))
}

func TestCommandErrors(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)

	_, err = execute(t, "run", "--schema", writeSchema(t), "--parent", "roulette")
	require.Error(t, err)

	_, err = execute(t, "--loglevel", "loud", "version")
	require.Error(t, err)

	_, err = execute(t, "--store", "redis", "runs")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cadlayoutctl dev\n", out)
}
