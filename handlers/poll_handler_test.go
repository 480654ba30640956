package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportsync/matchday/broadcast"
)

func pollRequest(t *testing.T, h *PollHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("tournamentID", "1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h.Updates(rec, req)
	return rec
}

func TestPollHandler_UsesConfiguredWait(t *testing.T) {
	hub := broadcast.NewHub(broadcast.HubConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	hub.Publish(context.Background(), 1, broadcast.TopicResults, "result_finalized", nil)

	h := NewPollHandler(hub, 30*time.Millisecond)

	// The client is caught up, so the poll holds until the configured wait
	// elapses and answers with a heartbeat, not the 25s default.
	start := time.Now()
	rec := pollRequest(t, h, "/tournaments/1/updates?topic=results&since=1")
	elapsed := time.Since(start)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)

	var result broadcast.PollResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Heartbeat)
	assert.Equal(t, uint64(1), result.Sequence)
}

func TestPollHandler_WaitParamCappedByConfiguredMax(t *testing.T) {
	hub := broadcast.NewHub(broadcast.HubConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	hub.Publish(context.Background(), 1, broadcast.TopicResults, "result_finalized", nil)

	h := NewPollHandler(hub, 30*time.Millisecond)

	start := time.Now()
	rec := pollRequest(t, h, "/tournaments/1/updates?topic=results&since=1&wait=10")
	elapsed := time.Since(start)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, elapsed, 2*time.Second)
}
