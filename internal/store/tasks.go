package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/models"
)

const taskColumns = `id, user_id, title, category, estimated_minutes, actual_minutes,
	deadline, energy_level, status, created_at, completed_at,
	postpone_count, postpone_reasons`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t           models.Task
		actual      sql.NullInt64
		createdAt   string
		completedAt sql.NullString
		reasons     string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Category, &t.EstimatedMinutes, &actual,
		&t.Deadline, &t.EnergyLevel, &t.Status, &createdAt, &completedAt,
		&t.PostponeCount, &reasons,
	)
	if err != nil {
		return models.Task{}, err
	}

	if actual.Valid {
		v := int(actual.Int64)
		t.ActualMinutes = &v
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, fmt.Errorf("task %s created_at: %w", t.ID, err)
	}
	if completedAt.Valid {
		ts, err := parseTime(completedAt.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("task %s completed_at: %w", t.ID, err)
		}
		t.CompletedAt = &ts
	}
	t.PostponeReasons = []models.PostponeReason{}
	if reasons != "" {
		if err := json.Unmarshal([]byte(reasons), &t.PostponeReasons); err != nil {
			return models.Task{}, fmt.Errorf("task %s postpone_reasons: %w", t.ID, err)
		}
	}
	return t, nil
}

// ListTasks returns the user's tasks, newest first.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := s.query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, userID, id string) (models.Task, error) {
	row := s.queryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ? AND user_id = ?
	`, id, userID)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, apperr.NotFoundf("task %s", id)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// CreateTask inserts t, assigning an id and creation time when missing.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now().UTC()
	}
	if t.PostponeReasons == nil {
		t.PostponeReasons = []models.PostponeReason{}
	}
	reasons, err := json.Marshal(t.PostponeReasons)
	if err != nil {
		return models.Task{}, err
	}

	_, err = s.exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID, t.UserID, t.Title, t.Category, t.EstimatedMinutes, nullInt(t.ActualMinutes),
		t.Deadline, t.EnergyLevel, t.Status, formatTime(t.CreatedAt), nullTime(t.CompletedAt),
		t.PostponeCount, string(reasons),
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// UpdateTask applies p to the stored task and writes it back.
func (s *Store) UpdateTask(ctx context.Context, userID, id string, p models.TaskPatch) (models.Task, error) {
	var out models.Task
	err := s.InTx(ctx, func(tx *Store) error {
		t, err := tx.GetTask(ctx, userID, id)
		if err != nil {
			return err
		}
		p.ApplyTo(&t)
		if t.PostponeReasons == nil {
			t.PostponeReasons = []models.PostponeReason{}
		}
		reasons, err := json.Marshal(t.PostponeReasons)
		if err != nil {
			return err
		}

		res, err := tx.exec(ctx, `
			UPDATE tasks
			SET title = ?, category = ?, estimated_minutes = ?, actual_minutes = ?,
				deadline = ?, energy_level = ?, status = ?, completed_at = ?,
				postpone_count = ?, postpone_reasons = ?
			WHERE id = ? AND user_id = ?
		`,
			t.Title, t.Category, t.EstimatedMinutes, nullInt(t.ActualMinutes),
			t.Deadline, t.EnergyLevel, t.Status, nullTime(t.CompletedAt),
			t.PostponeCount, string(reasons),
			id, userID,
		)
		if err != nil {
			return fmt.Errorf("update task %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFoundf("task %s", id)
		}
		out = t
		return nil
	})
	return out, err
}

func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.exec(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFoundf("task %s", id)
	}
	return nil
}
