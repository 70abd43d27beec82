package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mynd-backend/internal/models"
)

// GetSettings returns the user's settings, storing the defaults on first
// access.
func (s *Store) GetSettings(ctx context.Context, userID string) (models.UserSettings, error) {
	var st models.UserSettings
	err := s.queryRow(ctx, `
		SELECT work_start_hour, work_end_hour, lunch_start_hour, lunch_duration_minutes
		FROM user_settings
		WHERE user_id = ?
	`, userID).Scan(&st.WorkStartHour, &st.WorkEndHour, &st.LunchStartHour, &st.LunchDurationMinutes)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.UserSettings{}, fmt.Errorf("get settings: %w", err)
	}

	st = models.DefaultSettings()
	_, err = s.exec(ctx, `
		INSERT INTO user_settings (user_id, work_start_hour, work_end_hour, lunch_start_hour, lunch_duration_minutes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, st.WorkStartHour, st.WorkEndHour, st.LunchStartHour, st.LunchDurationMinutes)
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("create default settings: %w", err)
	}
	return st, nil
}

func (s *Store) UpsertSettings(ctx context.Context, userID string, p models.SettingsPatch) (models.UserSettings, error) {
	var out models.UserSettings
	err := s.InTx(ctx, func(tx *Store) error {
		st, err := tx.GetSettings(ctx, userID)
		if err != nil {
			return err
		}
		p.ApplyTo(&st)

		_, err = tx.exec(ctx, `
			UPDATE user_settings
			SET work_start_hour = ?, work_end_hour = ?, lunch_start_hour = ?, lunch_duration_minutes = ?
			WHERE user_id = ?
		`, st.WorkStartHour, st.WorkEndHour, st.LunchStartHour, st.LunchDurationMinutes, userID)
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		out = st
		return nil
	})
	return out, err
}
