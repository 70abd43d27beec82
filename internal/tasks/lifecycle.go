// Package tasks owns the task lifecycle: creation, the status transitions
// that feed the learning records, and the HTTP surface for both.
package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/learning"
	"mynd-backend/internal/models"
	"mynd-backend/internal/planner"
	"mynd-backend/internal/store"
)

// Repository is what the lifecycle needs from storage.
type Repository interface {
	learning.Repository

	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, userID, id string) (models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, userID, id string, p models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
	GetSettings(ctx context.Context, userID string) (models.UserSettings, error)
}

// TxFunc runs fn inside one storage transaction.
type TxFunc func(ctx context.Context, fn func(Repository) error) error

type Service struct {
	repo Repository
	inTx TxFunc
	now  func() time.Time
	log  *zap.Logger
}

func NewService(st *store.Store, log *zap.Logger, now func() time.Time) *Service {
	return New(st, func(ctx context.Context, fn func(Repository) error) error {
		return st.InTx(ctx, func(tx *store.Store) error { return fn(tx) })
	}, log, now)
}

func New(repo Repository, inTx TxFunc, log *zap.Logger, now func() time.Time) *Service {
	if now == nil {
		now = planner.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, inTx: inTx, now: now, log: log}
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Task, error) {
	return s.repo.ListTasks(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (models.Task, error) {
	return s.repo.GetTask(ctx, userID, id)
}

// Create stores a new scheduled task. The estimate is run through the
// category's learned adjustment first.
func (s *Service) Create(ctx context.Context, userID string, in models.NewTask) (models.Task, error) {
	if err := validateNewTask(&in); err != nil {
		return models.Task{}, err
	}

	var created models.Task
	err := s.inTx(ctx, func(tx Repository) error {
		est, err := learning.Estimate(ctx, tx, userID, in.Category, in.EstimatedMinutes)
		if err != nil {
			return err
		}
		created, err = tx.CreateTask(ctx, models.Task{
			UserID:           userID,
			Title:            in.Title,
			Category:         in.Category,
			EstimatedMinutes: est,
			Deadline:         in.Deadline,
			EnergyLevel:      in.EnergyLevel,
			Status:           models.StatusScheduled,
			CreatedAt:        s.now().UTC(),
			PostponeReasons:  []models.PostponeReason{},
		})
		return err
	})
	if err != nil {
		return models.Task{}, err
	}

	s.log.Debug("task created",
		zap.String("user_id", userID),
		zap.String("task_id", created.ID),
		zap.Int("raw_estimate", in.EstimatedMinutes),
		zap.Int("estimate", created.EstimatedMinutes))
	return created, nil
}

// Update edits the descriptive fields of a task.
func (s *Service) Update(ctx context.Context, userID, id string, p models.TaskPatch) (models.Task, error) {
	if err := validateEdit(&p); err != nil {
		return models.Task{}, err
	}
	return s.repo.UpdateTask(ctx, userID, id, p)
}

// Complete closes a pending task with its actual duration and folds the
// outcome into the category's learning record, atomically.
func (s *Service) Complete(ctx context.Context, userID, id string, actualMinutes int) (models.Task, models.LearningData, error) {
	if actualMinutes <= 0 {
		return models.Task{}, models.LearningData{}, apperr.Invalid("actual_minutes", "must be a positive number of minutes")
	}

	var (
		done models.Task
		ld   models.LearningData
	)
	err := s.inTx(ctx, func(tx Repository) error {
		t, err := tx.GetTask(ctx, userID, id)
		if err != nil {
			return err
		}
		if !t.Status.Pending() {
			return apperr.Invalid("status", "cannot complete a %s task", t.Status)
		}

		now := s.now().UTC()
		done, err = tx.UpdateTask(ctx, userID, id, models.TaskPatch{
			Status:        models.Some(models.StatusCompleted),
			ActualMinutes: models.Some(&actualMinutes),
			CompletedAt:   models.Some(&now),
		})
		if err != nil {
			return err
		}

		ld, err = learning.RecordCompletion(ctx, tx, userID, t.Category, t.EstimatedMinutes, actualMinutes)
		return err
	})
	if err != nil {
		return models.Task{}, models.LearningData{}, err
	}

	s.log.Debug("task completed",
		zap.String("task_id", id),
		zap.String("category", string(done.Category)),
		zap.Int("estimated", done.EstimatedMinutes),
		zap.Int("actual", actualMinutes),
		zap.Float64("adjustment_factor", ld.AdjustmentFactor))
	return done, ld, nil
}

// Postpone pushes a pending task back with a reason. A "took_longer" reason
// also inflates the category's adjustment factor.
func (s *Service) Postpone(ctx context.Context, userID, id string, reason models.PostponeReason) (models.Task, error) {
	if reason == "" {
		return models.Task{}, apperr.Invalid("reason", "is required")
	}
	if !reason.Valid() {
		return models.Task{}, apperr.Invalid("reason", "unknown postpone reason %q", reason)
	}

	var out models.Task
	err := s.inTx(ctx, func(tx Repository) error {
		t, err := tx.GetTask(ctx, userID, id)
		if err != nil {
			return err
		}
		if !t.Status.Pending() {
			return apperr.Invalid("status", "cannot postpone a %s task", t.Status)
		}

		reasons := append(append([]models.PostponeReason{}, t.PostponeReasons...), reason)
		out, err = tx.UpdateTask(ctx, userID, id, models.TaskPatch{
			Status:          models.Some(models.StatusPostponed),
			PostponeCount:   models.Some(t.PostponeCount + 1),
			PostponeReasons: models.Some(reasons),
		})
		if err != nil {
			return err
		}

		if reason == models.ReasonTookLonger {
			if _, _, err := learning.RecordTookLongerPostponement(ctx, tx, userID, t.Category); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return out, nil
}

// Reschedule puts a pending task back into the plan. The deadline is left
// as is, so an overdue task stays overdue until its deadline is edited.
func (s *Service) Reschedule(ctx context.Context, userID, id string) (models.Task, error) {
	return s.transition(ctx, userID, id, models.StatusScheduled, func(st models.Status) bool {
		return st.Pending()
	})
}

// Archive removes a task from planning for good.
func (s *Service) Archive(ctx context.Context, userID, id string) (models.Task, error) {
	return s.transition(ctx, userID, id, models.StatusArchived, func(st models.Status) bool {
		return !st.Terminal()
	})
}

func (s *Service) transition(ctx context.Context, userID, id string, to models.Status, allowed func(models.Status) bool) (models.Task, error) {
	var out models.Task
	err := s.inTx(ctx, func(tx Repository) error {
		t, err := tx.GetTask(ctx, userID, id)
		if err != nil {
			return err
		}
		if !allowed(t.Status) {
			return apperr.Invalid("status", "cannot move a %s task to %s", t.Status, to)
		}
		out, err = tx.UpdateTask(ctx, userID, id, models.TaskPatch{Status: models.Some(to)})
		return err
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("%s task: %w", to, err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteTask(ctx, userID, id)
}
