package cli

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animgraph/internal/engine"
	"github.com/roach88/animgraph/internal/store"
)

func TestServeRecordsFrames(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "serve.db")

	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewServeCommand(&RootOptions{Format: "text"})
	cmd.SetOut(out)
	cmd.SetErr(logs)
	cmd.SetArgs([]string{"testdata/fade.yaml", "--duration", "150ms", "--interval", "5ms", "--db", dbPath})
	require.NoError(t, cmd.Execute(), logs.String())

	assert.Contains(t, out.String(), "Serving fade")
	assert.Contains(t, out.String(), "Stopped after")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.LatestRun(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "fade", run.Name)

	trace, err := st.ReadTrace(t.Context(), run.ID)
	require.NoError(t, err)
	require.NotEmpty(t, trace.Frames)
	assert.Equal(t, int64(1), trace.Frames[0].Seq)
	require.NotEmpty(t, trace.Effects)
	assert.Equal(t, `{"opacity":1}`, trace.Effects[0].Payload)
}

func TestServeMissingDocument(t *testing.T) {
	cmd := NewServeCommand(&RootOptions{Format: "text"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestServeMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	engine.NewMetrics(reg)

	srv, err := serveMetrics("127.0.0.1:0", reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer srv.Close()

	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
	assert.Contains(t, string(body), "animgraph_scheduler_frames_total 0")
}
