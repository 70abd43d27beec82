// Package profile serves the user's personal details. Every field is
// optional and a PUT only touches the keys present in the body.
package profile

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/auth"
	"mynd-backend/internal/httpx"
	"mynd-backend/internal/models"
)

type Repository interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	UpsertProfile(ctx context.Context, userID string, p models.ProfilePatch) (models.Profile, error)
}

const maxFieldLen = 2000

func GetHandler(repo Repository, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}
		p, err := repo.GetProfile(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, p)
	}
}

func UpsertHandler(repo Repository, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}

		var patch models.ProfilePatch
		if err := httpx.Decode(r, &patch); err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		if err := normalize(&patch); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		p, err := repo.UpsertProfile(r.Context(), uid, patch)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, p)
	}
}

// normalize trims every set field and turns blank strings into null.
func normalize(p *models.ProfilePatch) error {
	fields := map[string]*models.Field[*string]{
		"first_name":    &p.FirstName,
		"last_name":     &p.LastName,
		"avatar_url":    &p.AvatarURL,
		"bio":           &p.Bio,
		"constraints":   &p.Constraints,
		"university":    &p.University,
		"major":         &p.Major,
		"year_of_study": &p.YearOfStudy,
	}
	for name, f := range fields {
		if !f.Set || f.Value == nil {
			continue
		}
		v := strings.TrimSpace(*f.Value)
		if len(v) > maxFieldLen {
			return apperr.Invalid(name, "is too long")
		}
		if v == "" {
			f.Value = nil
			continue
		}
		f.Value = &v
	}
	return nil
}
