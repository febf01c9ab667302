package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/engine"
	"github.com/roach88/animgraph/internal/store"
)

// executeRun runs the run command with a fixed run id. stdout and stderr
// are returned separately.
func executeRun(t *testing.T, format string, args ...string) (string, string, error) {
	t.Helper()
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: format},
		IDGenerator: engine.NewFixedGenerator("run-1"),
	})
	cmd.SetOut(out)
	cmd.SetErr(logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), logs.String(), err
}

func TestRunDocument(t *testing.T) {
	out, logs, err := executeRun(t, "text", "testdata/fade.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "Run run-1 (fade)")
	assert.Contains(t, out, "frames:  3 (64ms simulated)")
	assert.Contains(t, out, `view 11: {"opacity":0.5}`)
	assert.NotContains(t, out, "Recorded to")
	assert.Contains(t, logs, "playback finished")
}

func TestRunDocumentJSON(t *testing.T) {
	out, _, err := executeRun(t, "json", "testdata/fade.yaml", "--frames", "2", "--step", "10ms")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.Data.RunID)
	assert.Equal(t, 3, resp.Data.Frames)
	assert.Equal(t, 60.0, resp.Data.ElapsedMS)
	assert.Equal(t, map[string]int{"view": 3}, resp.Data.Effects)
	assert.Len(t, resp.Data.Digest, 64)
	assert.Equal(t, 0.5, resp.Data.Views[11]["opacity"])
}

func TestRunRecordsTrace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "trace.db")

	out, _, err := executeRun(t, "text", "testdata/fade.yaml", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded to "+dbPath)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	trace, err := st.ReadTrace(t.Context(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "fade", trace.Run.Name)
	assert.Equal(t, "testdata/fade.yaml", trace.Run.Source)
	assert.Len(t, trace.Run.Digest, 64)
	assert.Len(t, trace.Frames, 3)
	assert.Len(t, trace.Effects, 3)
}

func TestRunFailedFrames(t *testing.T) {
	out, _, err := executeRun(t, "text", "testdata/failing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 frame(s) failed")
	assert.Contains(t, out, "EVENT_PATH")
}

func TestRunInvalidDocument(t *testing.T) {
	out, _, err := executeRun(t, "text", "testdata/invalid.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "document is invalid")
}

func TestRunNegativeFrames(t *testing.T) {
	_, _, err := executeRun(t, "text", "testdata/fade.yaml", "--frames", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
