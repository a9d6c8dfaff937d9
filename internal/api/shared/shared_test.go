package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-flashgen/internal/platform/logger"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		data         any
		expectedBody string
	}{
		{"object", http.StatusOK, map[string]any{"message": "success", "data": 123}, `{"message":"success","data":123}`},
		{"empty object", http.StatusOK, map[string]any{}, `{}`},
		{"nil", http.StatusOK, nil, `null`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			RespondWithJSON(w, httptest.NewRequest(http.MethodGet, "/", nil), tc.status, tc.data)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewTestLogger(t)

	ctx := logger.WithLogger(WithTraceID(context.Background(), "trace-123"), log)
	req := httptest.NewRequest(http.MethodPost, "/flashcard", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	cause := errors.New("upstream said: api_key=sk-ant-REDACTED")
	RespondWithErrorAndLog(w, req, http.StatusBadGateway, "Flashcard generation failed", cause)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Error: "Flashcard generation failed", TraceID: "trace-123"}, body)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(http.StatusBadGateway), entry["status_code"])
	assert.NotContains(t, entry["error"], "abcdefghijklmnop")
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	RespondWithError(w, req, http.StatusBadRequest, "bad")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad"}`, w.Body.String())
}

func TestTraceAndRunIDs(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	_, err := uuid.Parse(GetTraceID(ctx))
	assert.NoError(t, err)
	assert.Empty(t, GetTraceID(context.Background()))

	_, ok := GetRunID(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetRunID(WithRunID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestFormBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{"", false, false},
		{"true", true, false},
		{"1", true, false},
		{"On", true, false},
		{"yes", true, false},
		{"false", false, false},
		{"no", false, false},
		{"maybe", false, true},
	}

	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			t.Parallel()

			form := url.Values{"with_images": {tc.value}}
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			got, err := FormBool(req, "with_images")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
