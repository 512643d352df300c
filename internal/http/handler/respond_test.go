package handler

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain/internal/apperr"
)

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	respondJSON(w, 201, map[string]string{"title": "Notes"})

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	out := decode(t, w.Body.Bytes())
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Notes", out["data"].(map[string]any)["title"])
}

func TestRespondErrorMapsKind(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, apperr.NotFound("content not found"))

	assert.Equal(t, 404, w.Code)
	out := decode(t, w.Body.Bytes())
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "content not found", out["message"])
}

func TestRespondErrorUpstreamIs500(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, apperr.Upstream("summary generation failed", errors.New("rpc: deadline exceeded")))

	assert.Equal(t, 500, w.Code)
	out := decode(t, w.Body.Bytes())
	assert.Equal(t, "summary generation failed", out["message"])
	assert.NotContains(t, out["message"], "rpc")
}

func TestRespondErrorHidesInternals(t *testing.T) {
	w := httptest.NewRecorder()
	respondError(w, errors.New("pq: connection refused at 10.0.0.5"))

	assert.Equal(t, 500, w.Code)
	out := decode(t, w.Body.Bytes())
	assert.NotContains(t, out["message"], "10.0.0.5")
}
