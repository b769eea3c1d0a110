package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shutter/internal/scenario"
)

// seedJournal runs a scenario into a fresh journal database and returns
// the database path and run ID.
func seedJournal(t *testing.T) (string, string) {
	t.Helper()

	s, err := scenario.ParseScenario([]byte(`
name: panel-toggle
description: Open the tool panel.
test_name: TestPanelToggle
page:
  - selector: tools-button
    kind: button
steps:
  - do: open_tool_panel
assertions:
  - type: artifact_count
    count: 1
`))
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "journal.db")
	result, err := scenario.RunWith(s, scenario.Options{JournalPath: dbPath})
	require.NoError(t, err)
	require.True(t, result.Pass)

	return dbPath, result.RunID
}

func TestTraceListsRuns(t *testing.T) {
	dbPath, runID := seedJournal(t)

	out, err := execCommand("trace", "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, runID)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "TestPanelToggle")
	assert.Contains(t, out, "(panel-toggle)")
}

func TestTraceShowsTimeline(t *testing.T) {
	dbPath, runID := seedJournal(t)

	out, err := execCommand("trace", "--db", dbPath, "--run", runID)
	require.NoError(t, err)

	assert.Contains(t, out, "[1] START open_tool_panel")
	assert.Contains(t, out, "fixed_delay, satisfied")
	assert.Contains(t, out, "TestPanelToggle_open_tool_panel.png")
	assert.Contains(t, out, "[4] END   open_tool_panel (ok)")
	assert.Contains(t, out, "Total Events: 4")
}

func TestTraceActionFilter(t *testing.T) {
	dbPath, runID := seedJournal(t)

	out, err := execCommand("trace", "--db", dbPath, "--run", runID, "--action", "no_such_action")
	require.NoError(t, err)
	assert.Contains(t, out, "(no events)")
}

func TestTraceJSONOutput(t *testing.T) {
	dbPath, runID := seedJournal(t)

	out, err := execCommand("trace", "--db", dbPath, "--run", runID, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	timeline, ok := data["timeline"].([]interface{})
	require.True(t, ok)
	assert.Len(t, timeline, 4)
}

func TestTraceUnknownRun(t *testing.T) {
	dbPath, _ := seedJournal(t)

	_, err := execCommand("trace", "--db", dbPath, "--run", "no-such-run")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceMissingDatabase(t *testing.T) {
	_, err := execCommand("trace", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
