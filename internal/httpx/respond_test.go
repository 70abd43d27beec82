package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mynd-backend/internal/apperr"
)

func TestErrorMapping(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	log := zap.New(core)

	cases := []struct {
		err    error
		status int
	}{
		{apperr.Invalid("title", "is required"), http.StatusBadRequest},
		{fmt.Errorf("complete: %w", apperr.Invalid("status", "nope")), http.StatusBadRequest},
		{apperr.ErrUnauthorized, http.StatusUnauthorized},
		{apperr.NotFoundf("task %s", "x"), http.StatusNotFound},
		{fmt.Errorf("email taken: %w", apperr.ErrConflict), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		Error(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil), log, c.err)
		assert.Equal(t, c.status, rec.Code, c.err.Error())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}

	require.Equal(t, 1, logs.Len(), "only unexpected errors are logged")
	assert.Equal(t, "/api/x", logs.All()[0].ContextMap()["path"])
}

func TestValidationBodyNamesField(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodPost, "/", nil), zap.NewNop(), apperr.Invalid("deadline", "is required"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "deadline", body["field"])
	assert.Equal(t, "deadline: is required", body["error"])
}

func TestInternalErrorTextIsHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), zap.NewNop(), errors.New("pq: password authentication failed"))
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestDecode(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a": 3}`)), &v))
	assert.Equal(t, 3, v.A)

	require.NoError(t, Decode(httptest.NewRequest(http.MethodPost, "/", nil), &v))

	err := Decode(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a": `)), &v)
	assert.True(t, apperr.IsValidation(err))
}
