// Package httpx holds the JSON helpers every handler package shares.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"mynd-backend/internal/apperr"
)

const maxBody = 1 << 20

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]any{"success": true})
}

// Decode reads a JSON body into v. An empty body leaves v untouched.
func Decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Invalid("", "invalid json")
}

// Error maps err onto a status code. Unexpected errors are logged and their
// text is not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		JSON(w, http.StatusBadRequest, map[string]any{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, apperr.ErrUnauthorized):
		JSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
	case errors.Is(err, apperr.ErrNotFound):
		JSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		JSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
	default:
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		JSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
	}
}
