package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/models"
)

const learningColumns = `category, total_estimated, total_actual, completed_count,
	accuracy, adjustment_factor, updated_at`

func scanLearning(row rowScanner, userID string) (models.LearningData, error) {
	d := models.LearningData{UserID: userID}
	var updatedAt string
	err := row.Scan(&d.Category, &d.TotalEstimated, &d.TotalActual, &d.CompletedCount,
		&d.Accuracy, &d.AdjustmentFactor, &updatedAt)
	if err != nil {
		return models.LearningData{}, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.LearningData{}, fmt.Errorf("learning %s updated_at: %w", d.Category, err)
	}
	return d, nil
}

func (s *Store) ListLearning(ctx context.Context, userID string) ([]models.LearningData, error) {
	rows, err := s.query(ctx, `
		SELECT `+learningColumns+`
		FROM learning_data
		WHERE user_id = ?
		ORDER BY category
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list learning: %w", err)
	}
	defer rows.Close()

	out := []models.LearningData{}
	for rows.Next() {
		d, err := scanLearning(rows, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) GetLearning(ctx context.Context, userID string, category models.Category) (models.LearningData, error) {
	row := s.queryRow(ctx, `
		SELECT `+learningColumns+`
		FROM learning_data
		WHERE user_id = ? AND category = ?
	`, userID, category)

	d, err := scanLearning(row, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LearningData{}, apperr.NotFoundf("learning %s", category)
	}
	if err != nil {
		return models.LearningData{}, fmt.Errorf("get learning %s: %w", category, err)
	}
	return d, nil
}

// UpsertLearning applies p to the category record, creating it first with
// zero totals and a factor of 1 when it does not exist.
func (s *Store) UpsertLearning(ctx context.Context, userID string, category models.Category, p models.LearningPatch) (models.LearningData, error) {
	var out models.LearningData
	err := s.InTx(ctx, func(tx *Store) error {
		d, err := tx.GetLearning(ctx, userID, category)
		if errors.Is(err, apperr.ErrNotFound) {
			d = models.LearningData{UserID: userID, Category: category, AdjustmentFactor: 1}
		} else if err != nil {
			return err
		}
		p.ApplyTo(&d)
		d.UpdatedAt = tx.now().UTC()

		_, err = tx.exec(ctx, `
			INSERT INTO learning_data (user_id, `+learningColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, category) DO UPDATE SET
				total_estimated = excluded.total_estimated,
				total_actual = excluded.total_actual,
				completed_count = excluded.completed_count,
				accuracy = excluded.accuracy,
				adjustment_factor = excluded.adjustment_factor,
				updated_at = excluded.updated_at
		`, userID, d.Category, d.TotalEstimated, d.TotalActual, d.CompletedCount,
			d.Accuracy, d.AdjustmentFactor, formatTime(d.UpdatedAt))
		if err != nil {
			return fmt.Errorf("upsert learning %s: %w", category, err)
		}
		out = d
		return nil
	})
	return out, err
}

// ResetLearning deletes every category record of the user.
func (s *Store) ResetLearning(ctx context.Context, userID string) (int64, error) {
	res, err := s.exec(ctx, `DELETE FROM learning_data WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("reset learning: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
