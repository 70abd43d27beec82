package learning

import (
	"net/http"

	"go.uber.org/zap"

	"mynd-backend/internal/analytics"
	"mynd-backend/internal/apperr"
	"mynd-backend/internal/auth"
	"mynd-backend/internal/httpx"
	"mynd-backend/internal/models"
)

func ListHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}
		list, err := svc.List(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, list)
	}
}

// UpsertHandler handles PUT /api/learning/{category}.
func UpsertHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}

		var patch models.LearningPatch
		if err := httpx.Decode(r, &patch); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		d, err := svc.Upsert(r.Context(), uid, models.Category(r.PathValue("category")), patch)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, d)
	}
}

func ResetHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}

		n, err := svc.Reset(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		rec.Track(r, "learning_reset", map[string]any{"categories": n})
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
	}
}
