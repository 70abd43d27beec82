package settings

import (
	"net/http"

	"go.uber.org/zap"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/auth"
	"mynd-backend/internal/httpx"
	"mynd-backend/internal/models"
)

// GetHandler returns the user's settings, creating the defaults on first read.
func GetHandler(repo Repository, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}
		s, err := repo.GetSettings(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, s)
	}
}

func UpdateHandler(repo Repository, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}

		var patch models.SettingsPatch
		if err := httpx.Decode(r, &patch); err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		if err := Validate(patch); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		s, err := repo.UpsertSettings(r.Context(), uid, patch)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, s)
	}
}
