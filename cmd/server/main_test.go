package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fpl-points-lab/internal/domain"
	"fpl-points-lab/internal/logging"
	"fpl-points-lab/internal/orchestrator"
	"fpl-points-lab/internal/storage/memory"
)

type fakeRunner struct {
	err   error
	calls int
}

func (f *fakeRunner) Run(_ context.Context, season string) (*orchestrator.RunResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &orchestrator.RunResult{RunID: "run-" + season, Season: season}, nil
}

func newTestServer(runner Runner) (*Server, *memory.RunStore) {
	runs := memory.NewRunStore()
	s := NewServer("2024-25", time.Hour, runner, runs, logging.Discard())
	s.now = func() time.Time { return time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC) }
	return s, runs
}

func getStatus(t *testing.T, s *Server) StatusResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(&fakeRunner{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_StatusAfterSuccess(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(runner)

	s.runPipeline(context.Background())

	resp := getStatus(t, s)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "2024-25", resp.Season)
	assert.Equal(t, "run-2024-25", resp.LastRunID)
	assert.Equal(t, domain.RunStatusSucceeded, resp.LastStatus)
	assert.Equal(t, 1, resp.Runs)
	assert.Zero(t, resp.Failures)
	assert.NotNil(t, resp.LastRunAt)
	assert.Equal(t, "1h0m0s", resp.Interval)
}

func TestServer_StatusAfterFailure(t *testing.T) {
	s, _ := newTestServer(&fakeRunner{err: errors.New("schema error")})

	s.runPipeline(context.Background())

	resp := getStatus(t, s)
	assert.Equal(t, domain.RunStatusFailed, resp.LastStatus)
	assert.Equal(t, "schema error", resp.LastError)
	assert.Equal(t, 1, resp.Failures)
	assert.Empty(t, resp.LastRunID)
}

func TestServer_SkipsWhileRunning(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(runner)
	s.running = true

	s.runPipeline(context.Background())

	assert.Zero(t, runner.calls)
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	runner := &fakeRunner{}
	s, _ := newTestServer(runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	// The initial run happens before the ticker loop observes cancellation.
	assert.Equal(t, 1, runner.calls)
}

func TestServer_Runs(t *testing.T) {
	s, runs := newTestServer(&fakeRunner{})
	require.NoError(t, runs.Insert(context.Background(), &domain.RunManifest{
		RunID:        "abc",
		Season:       "2024-25",
		Models:       []string{domain.ModelForm},
		PanelRows:    96,
		Splits:       7,
		OutputDir:    "out/2024-25/abc",
		Status:       domain.RunStatusSucceeded,
		StartedAtMs:  1000,
		FinishedAtMs: 2000,
	}))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out []RunSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "abc", out[0].RunID)
	assert.Equal(t, 7, out[0].Splits)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs?season=2023-24", nil))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Empty(t, out)
}
