package tasks

import (
	"context"

	"golang.org/x/sync/errgroup"

	"mynd-backend/internal/models"
	"mynd-backend/internal/planner"
)

// snapshot is the state a plan is derived from, fetched fresh per call.
type snapshot struct {
	tasks    []models.Task
	settings models.UserSettings
	learning []models.LearningData
}

func (s *Service) load(ctx context.Context, userID string, withLearning bool) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.tasks, err = s.repo.ListTasks(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.settings, err = s.repo.GetSettings(gctx, userID)
		return err
	})
	if withLearning {
		g.Go(func() error {
			var err error
			snap.learning, err = s.repo.ListLearning(gctx, userID)
			return err
		})
	}
	return snap, g.Wait()
}

// Plan derives today's plan from the current task set and settings.
func (s *Service) Plan(ctx context.Context, userID string) (models.DailyPlan, error) {
	snap, err := s.load(ctx, userID, false)
	if err != nil {
		return models.DailyPlan{}, err
	}
	return planner.Plan(snap.tasks, snap.settings, s.now()), nil
}

// Next returns the first task of today's plan, if any.
func (s *Service) Next(ctx context.Context, userID string) (models.PlannedTask, bool, error) {
	p, err := s.Plan(ctx, userID)
	if err != nil {
		return models.PlannedTask{}, false, err
	}
	t, ok := planner.NextTask(p)
	return t, ok, nil
}

func (s *Service) Overdue(ctx context.Context, userID string) ([]models.Task, error) {
	all, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return planner.Overdue(all, s.now()), nil
}

func (s *Service) CompletedToday(ctx context.Context, userID string) ([]models.Task, error) {
	all, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return planner.CompletedToday(all, s.now()), nil
}

func (s *Service) Insights(ctx context.Context, userID string) (planner.Insights, error) {
	snap, err := s.load(ctx, userID, true)
	if err != nil {
		return planner.Insights{}, err
	}
	return planner.Summarize(snap.tasks, snap.learning, s.now()), nil
}
