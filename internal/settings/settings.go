// Package settings serves the user's working-day window.
package settings

import (
	"context"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/models"
)

type Repository interface {
	GetSettings(ctx context.Context, userID string) (models.UserSettings, error)
	UpsertSettings(ctx context.Context, userID string, p models.SettingsPatch) (models.UserSettings, error)
}

// Validate checks the fields a patch sets. Start before end is not
// enforced; an inverted window just leaves nothing to plan.
func Validate(p models.SettingsPatch) error {
	hours := []struct {
		name string
		f    models.Field[int]
	}{
		{"work_start_hour", p.WorkStartHour},
		{"work_end_hour", p.WorkEndHour},
		{"lunch_start_hour", p.LunchStartHour},
	}
	for _, h := range hours {
		if h.f.Set && (h.f.Value < 0 || h.f.Value > 23) {
			return apperr.Invalid(h.name, "must be between 0 and 23")
		}
	}
	if d := p.LunchDurationMinutes; d.Set && (d.Value < 0 || d.Value > 24*60) {
		return apperr.Invalid("lunch_duration_minutes", "must be between 0 and 1440")
	}
	return nil
}
