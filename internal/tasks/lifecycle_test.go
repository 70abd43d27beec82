package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/models"
	"mynd-backend/internal/store"
	"mynd-backend/internal/store/storetest"
)

var clock = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return clock }

func newService(t *testing.T) (*Service, *store.Store) {
	st := storetest.New(t).WithClock(fixedNow)
	return NewService(st, zaptest.NewLogger(t), fixedNow), st
}

func newTask(category models.Category, est int, deadline string) models.NewTask {
	return models.NewTask{
		Title:            "  Draft intro  ",
		Category:         category,
		EstimatedMinutes: est,
		Deadline:         deadline,
		EnergyLevel:      models.EnergyHigh,
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve), "want validation error, got %v", err)
	return ve.Field
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryEssay, 60, "2025-03-12"))
	require.NoError(t, err)
	assert.Equal(t, "Draft intro", tk.Title)
	assert.Equal(t, models.StatusScheduled, tk.Status)
	assert.Equal(t, 60, tk.EstimatedMinutes)
	assert.Zero(t, tk.PostponeCount)
	assert.Empty(t, tk.PostponeReasons)
	assert.Nil(t, tk.ActualMinutes)
	assert.Equal(t, clock, tk.CreatedAt)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	cases := []struct {
		name  string
		mut   func(*models.NewTask)
		field string
	}{
		{"blank title", func(n *models.NewTask) { n.Title = "  " }, "title"},
		{"missing category", func(n *models.NewTask) { n.Category = "" }, "category"},
		{"unknown category", func(n *models.NewTask) { n.Category = "poetry" }, "category"},
		{"zero estimate", func(n *models.NewTask) { n.EstimatedMinutes = 0 }, "estimated_minutes"},
		{"bad deadline", func(n *models.NewTask) { n.Deadline = "12/03/2025" }, "deadline"},
		{"missing energy", func(n *models.NewTask) { n.EnergyLevel = "" }, "energy_level"},
		{"unknown energy", func(n *models.NewTask) { n.EnergyLevel = "extreme" }, "energy_level"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := newTask(models.CategoryEssay, 60, "2025-03-12")
			c.mut(&in)
			_, err := svc.Create(ctx, "u1", in)
			assert.Equal(t, c.field, fieldOf(t, err))
		})
	}

	list, err := st.ListTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateAppliesLearnedFactor(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	_, err := st.UpsertLearning(ctx, "u1", models.CategoryEssay, models.LearningPatch{
		CompletedCount:   models.Some(5),
		TotalEstimated:   models.Some(300),
		TotalActual:      models.Some(450),
		AdjustmentFactor: models.Some(1.5),
	})
	require.NoError(t, err)

	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryEssay, 60, "2025-03-12"))
	require.NoError(t, err)
	assert.Equal(t, 90, tk.EstimatedMinutes)

	// another user's history does not leak
	tk, err = svc.Create(ctx, "u2", newTask(models.CategoryEssay, 60, "2025-03-12"))
	require.NoError(t, err)
	assert.Equal(t, 60, tk.EstimatedMinutes)
}

func TestCompleteFeedsLearning(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryEssay, 60, "2025-03-12"))
	require.NoError(t, err)

	done, ld, err := svc.Complete(ctx, "u1", tk.ID, 90)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.ActualMinutes)
	assert.Equal(t, 90, *done.ActualMinutes)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, clock.Equal(*done.CompletedAt))

	assert.Equal(t, 60, ld.TotalEstimated)
	assert.Equal(t, 90, ld.TotalActual)
	assert.Equal(t, 1, ld.CompletedCount)
	assert.InDelta(t, 0.667, ld.Accuracy, 0.001)
	assert.InDelta(t, 1.5, ld.AdjustmentFactor, 1e-9)

	stored, err := st.GetLearning(ctx, "u1", models.CategoryEssay)
	require.NoError(t, err)
	assert.Equal(t, ld.TotalActual, stored.TotalActual)

	_, _, err = svc.Complete(ctx, "u1", tk.ID, 30)
	assert.Equal(t, "status", fieldOf(t, err))

	stored, err = st.GetLearning(ctx, "u1", models.CategoryEssay)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CompletedCount, "a rejected completion must not count")
}

func TestCompleteRequiresPositiveActual(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryLab, 60, "2025-03-12"))
	require.NoError(t, err)

	_, _, err = svc.Complete(ctx, "u1", tk.ID, 0)
	assert.Equal(t, "actual_minutes", fieldOf(t, err))
}

func TestPostpone(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	_, err := st.UpsertLearning(ctx, "u1", models.CategoryProject, models.LearningPatch{})
	require.NoError(t, err)
	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryProject, 60, "2025-03-12"))
	require.NoError(t, err)

	tk, err = svc.Postpone(ctx, "u1", tk.ID, models.ReasonTookLonger)
	require.NoError(t, err)
	tk, err = svc.Postpone(ctx, "u1", tk.ID, models.ReasonTookLonger)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPostponed, tk.Status)
	assert.Equal(t, 2, tk.PostponeCount)
	assert.Equal(t, []models.PostponeReason{models.ReasonTookLonger, models.ReasonTookLonger}, tk.PostponeReasons)

	ld, err := st.GetLearning(ctx, "u1", models.CategoryProject)
	require.NoError(t, err)
	assert.InDelta(t, 1.69, ld.AdjustmentFactor, 1e-9)

	tk, err = svc.Postpone(ctx, "u1", tk.ID, models.ReasonInterrupted)
	require.NoError(t, err)
	assert.Equal(t, 3, tk.PostponeCount)
	ld, err = st.GetLearning(ctx, "u1", models.CategoryProject)
	require.NoError(t, err)
	assert.InDelta(t, 1.69, ld.AdjustmentFactor, 1e-9, "only took_longer moves the factor")
}

func TestPostponeValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryStudy, 30, "2025-03-12"))
	require.NoError(t, err)

	_, err = svc.Postpone(ctx, "u1", tk.ID, "")
	assert.Equal(t, "reason", fieldOf(t, err))
	_, err = svc.Postpone(ctx, "u1", tk.ID, "bored")
	assert.Equal(t, "reason", fieldOf(t, err))

	_, err = svc.Archive(ctx, "u1", tk.ID)
	require.NoError(t, err)
	_, err = svc.Postpone(ctx, "u1", tk.ID, models.ReasonForgot)
	assert.Equal(t, "status", fieldOf(t, err))
}

func TestRescheduleKeepsDeadline(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryReading, 30, "2025-03-08"))
	require.NoError(t, err)
	_, err = svc.Postpone(ctx, "u1", tk.ID, models.ReasonNotInMood)
	require.NoError(t, err)

	tk, err = svc.Reschedule(ctx, "u1", tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, tk.Status)
	assert.Equal(t, "2025-03-08", tk.Deadline)

	overdue, err := svc.Overdue(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, tk.ID, overdue[0].ID)
}

func TestTerminalStates(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, err := svc.Create(ctx, "u1", newTask(models.CategoryLecture, 30, "2025-03-12"))
	require.NoError(t, err)
	_, _, err = svc.Complete(ctx, "u1", a.ID, 25)
	require.NoError(t, err)

	for name, op := range map[string]func() error{
		"archive":    func() error { _, err := svc.Archive(ctx, "u1", a.ID); return err },
		"reschedule": func() error { _, err := svc.Reschedule(ctx, "u1", a.ID); return err },
		"postpone":   func() error { _, err := svc.Postpone(ctx, "u1", a.ID, models.ReasonOther); return err },
	} {
		assert.Equal(t, "status", fieldOf(t, op()), name)
	}

	b, err := svc.Create(ctx, "u1", newTask(models.CategoryLecture, 30, "2025-03-12"))
	require.NoError(t, err)
	b, err = svc.Archive(ctx, "u1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, b.Status)
	_, err = svc.Archive(ctx, "u1", b.ID)
	assert.Equal(t, "status", fieldOf(t, err))
}

func TestUpdateRejectsLifecycleFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryStudy, 30, "2025-03-12"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "u1", tk.ID, models.TaskPatch{Status: models.Some(models.StatusCompleted)})
	assert.Equal(t, "status", fieldOf(t, err))

	_, err = svc.Update(ctx, "u1", tk.ID, models.TaskPatch{EstimatedMinutes: models.Some(-5)})
	assert.Equal(t, "estimated_minutes", fieldOf(t, err))

	tk, err = svc.Update(ctx, "u1", tk.ID, models.TaskPatch{
		Title:    models.Some("Revise notes"),
		Deadline: models.Some("2025-03-20"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Revise notes", tk.Title)
	assert.Equal(t, "2025-03-20", tk.Deadline)
	assert.Equal(t, models.StatusScheduled, tk.Status)
}

func TestNotFoundAcrossUsers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryStudy, 30, "2025-03-12"))
	require.NoError(t, err)

	_, _, err = svc.Complete(ctx, "u2", tk.ID, 10)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Postpone(ctx, "u2", tk.ID, models.ReasonForgot)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Archive(ctx, "u2", tk.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "u2", tk.ID), apperr.ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", tk.ID))
}

// failingLearning lets task writes through but rejects learning writes.
type failingLearning struct {
	*store.Store
}

var errLearningDown = errors.New("learning store down")

func (f failingLearning) UpsertLearning(context.Context, string, models.Category, models.LearningPatch) (models.LearningData, error) {
	return models.LearningData{}, errLearningDown
}

func TestCompleteIsAtomic(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t).WithClock(fixedNow)
	svc := New(st, func(ctx context.Context, fn func(Repository) error) error {
		return st.InTx(ctx, func(tx *store.Store) error { return fn(failingLearning{tx}) })
	}, zaptest.NewLogger(t), fixedNow)

	tk, err := svc.Create(ctx, "u1", newTask(models.CategoryEssay, 60, "2025-03-12"))
	require.NoError(t, err)

	_, _, err = svc.Complete(ctx, "u1", tk.ID, 90)
	require.ErrorIs(t, err, errLearningDown)

	got, err := st.GetTask(ctx, "u1", tk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, got.Status)
	assert.Nil(t, got.ActualMinutes)
	assert.Nil(t, got.CompletedAt)
}

func TestPlanViews(t *testing.T) {
	ctx := context.Background()
	svc, st := newService(t)

	_, err := st.UpsertSettings(ctx, "u1", models.SettingsPatch{WorkEndHour: models.Some(10), LunchDurationMinutes: models.Some(0)})
	require.NoError(t, err)

	today, err := svc.Create(ctx, "u1", newTask(models.CategoryEssay, 60, "2025-03-10"))
	require.NoError(t, err)
	later, err := svc.Create(ctx, "u1", newTask(models.CategoryEssay, 60, "2025-03-15"))
	require.NoError(t, err)
	late, err := svc.Create(ctx, "u1", newTask(models.CategoryEssay, 30, "2025-03-09"))
	require.NoError(t, err)

	p, err := svc.Plan(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 120, p.AvailableMinutes)
	require.Len(t, p.ScheduledTasks, 1)
	assert.Equal(t, today.ID, p.ScheduledTasks[0].ID)
	require.Len(t, p.OverflowTasks, 1)
	assert.Equal(t, later.ID, p.OverflowTasks[0].ID)

	next, ok, err := svc.Next(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, today.ID, next.ID)

	overdue, err := svc.Overdue(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, late.ID, overdue[0].ID)

	_, _, err = svc.Complete(ctx, "u1", today.ID, 50)
	require.NoError(t, err)

	done, err := svc.CompletedToday(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, done, 1)

	in, err := svc.Insights(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, in.CompletedToday)
	assert.Equal(t, 1, in.OverdueCount)
	assert.Equal(t, 1.0, in.OverallAccuracy)
	require.Len(t, in.Categories, 1)
}

func TestDefaultClockIsUTC(t *testing.T) {
	svc := New(nil, nil, nil, nil)
	assert.Equal(t, time.UTC, svc.now().Location())
}
