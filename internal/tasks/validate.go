package tasks

import (
	"strings"
	"time"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/models"
)

func validateNewTask(in *models.NewTask) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Invalid("title", "is required")
	}
	if in.Category == "" {
		return apperr.Invalid("category", "is required")
	}
	if !in.Category.Valid() {
		return apperr.Invalid("category", "unknown category %q", in.Category)
	}
	if in.EstimatedMinutes <= 0 {
		return apperr.Invalid("estimated_minutes", "must be a positive number of minutes")
	}
	if err := validateDeadline(in.Deadline); err != nil {
		return err
	}
	if in.EnergyLevel == "" {
		return apperr.Invalid("energy_level", "is required")
	}
	if !in.EnergyLevel.Valid() {
		return apperr.Invalid("energy_level", "unknown energy level %q", in.EnergyLevel)
	}
	return nil
}

func validateDeadline(d string) error {
	if d == "" {
		return apperr.Invalid("deadline", "is required")
	}
	if _, err := time.Parse(models.DateLayout, d); err != nil {
		return apperr.Invalid("deadline", "must be a date in YYYY-MM-DD form")
	}
	return nil
}

// validateEdit checks a user edit. Status and outcome fields change only
// through the lifecycle operations.
func validateEdit(p *models.TaskPatch) error {
	if p.EditsLifecycle() {
		return apperr.Invalid("status", "use complete, postpone, reschedule or archive to change task status")
	}
	if p.Title.Set {
		p.Title.Value = strings.TrimSpace(p.Title.Value)
		if p.Title.Value == "" {
			return apperr.Invalid("title", "must not be empty")
		}
	}
	if p.Category.Set && !p.Category.Value.Valid() {
		return apperr.Invalid("category", "unknown category %q", p.Category.Value)
	}
	if p.EstimatedMinutes.Set && p.EstimatedMinutes.Value <= 0 {
		return apperr.Invalid("estimated_minutes", "must be a positive number of minutes")
	}
	if p.Deadline.Set {
		if err := validateDeadline(p.Deadline.Value); err != nil {
			return err
		}
	}
	if p.EnergyLevel.Set && !p.EnergyLevel.Value.Valid() {
		return apperr.Invalid("energy_level", "unknown energy level %q", p.EnergyLevel.Value)
	}
	return nil
}
