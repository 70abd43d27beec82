package planner

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"mynd-backend/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPlanSingleTask(t *testing.T) {
	p := Plan([]models.Task{task("a", "2025-03-10", 60, models.EnergyHigh)}, models.DefaultSettings(), now)

	assert.Equal(t, "2025-03-10", p.Date)
	assert.Equal(t, 780, p.AvailableMinutes)
	require.Len(t, p.ScheduledTasks, 1)
	assert.Empty(t, p.OverflowTasks)
	assert.Equal(t, "08:00", p.ScheduledTasks[0].ScheduledTime)
	assert.Equal(t, 70, p.TotalScheduledMinutes)
	assert.Greater(t, p.ScheduledTasks[0].Score, 0.0)
}

func TestPlanExcludesOverdueAndNonPending(t *testing.T) {
	late := task("late", "2025-03-09", 30, models.EnergyHigh)
	done := task("done", "2025-03-12", 30, models.EnergyHigh)
	done.Status = models.StatusCompleted
	archived := task("archived", "2025-03-12", 30, models.EnergyHigh)
	archived.Status = models.StatusArchived
	created := task("created", "2025-03-12", 30, models.EnergyHigh)
	created.Status = models.StatusCreated
	postponed := task("postponed", "2025-03-12", 30, models.EnergyHigh)
	postponed.Status = models.StatusPostponed

	all := []models.Task{late, done, archived, created, postponed}
	p := Plan(all, models.DefaultSettings(), now)

	require.Len(t, p.ScheduledTasks, 1)
	assert.Equal(t, "postponed", p.ScheduledTasks[0].ID)
	assert.Empty(t, p.OverflowTasks)

	overdue := Overdue(all, now)
	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].ID)
}

func TestPlanEmpty(t *testing.T) {
	p := Plan(nil, models.DefaultSettings(), now)
	assert.NotNil(t, p.ScheduledTasks)
	assert.NotNil(t, p.OverflowTasks)
	assert.Zero(t, p.TotalScheduledMinutes)

	_, ok := NextTask(p)
	assert.False(t, ok)
}

func TestPlanLunchBump(t *testing.T) {
	// equal scores keep input order; each slot consumes 240 minutes
	tasks := []models.Task{
		task("a", "2025-03-11", 230, models.EnergyMedium),
		task("b", "2025-03-11", 230, models.EnergyMedium),
		task("c", "2025-03-11", 230, models.EnergyMedium),
		task("d", "2025-03-11", 230, models.EnergyMedium),
	}
	p := Plan(tasks, models.DefaultSettings(), now)

	var slots []string
	for _, pt := range p.ScheduledTasks {
		slots = append(slots, pt.ID+"@"+pt.ScheduledTime)
	}
	assert.Equal(t, []string{"a@08:00", "b@13:00", "c@16:00"}, slots)
	require.Len(t, p.OverflowTasks, 1)
	assert.Equal(t, "d", p.OverflowTasks[0].ID)
	assert.Equal(t, 720, p.TotalScheduledMinutes)
}

func TestPlanLunchBumpKeepsMinutes(t *testing.T) {
	tasks := []models.Task{
		task("a", "2025-03-11", 255, models.EnergyMedium),
		task("b", "2025-03-11", 30, models.EnergyMedium),
	}
	p := Plan(tasks, models.DefaultSettings(), now)
	require.Len(t, p.ScheduledTasks, 2)
	assert.Equal(t, "13:25", p.ScheduledTasks[1].ScheduledTime)
}

func TestPlanBufferCountsAgainstCapacity(t *testing.T) {
	s := models.UserSettings{WorkStartHour: 9, WorkEndHour: 10, LunchStartHour: 12}
	p := Plan([]models.Task{task("a", "2025-03-10", 60, models.EnergyHigh)}, s, now)
	assert.Empty(t, p.ScheduledTasks)
	require.Len(t, p.OverflowTasks, 1)
	assert.Empty(t, p.OverflowTasks[0].ScheduledTime)

	p = Plan([]models.Task{task("a", "2025-03-10", 50, models.EnergyHigh)}, s, now)
	require.Len(t, p.ScheduledTasks, 1)
	assert.Equal(t, 60, p.TotalScheduledMinutes)
}

func TestPlanInvertedWindowOverflowsEverything(t *testing.T) {
	s := models.UserSettings{WorkStartHour: 18, WorkEndHour: 9, LunchStartHour: 12, LunchDurationMinutes: 60}
	p := Plan([]models.Task{
		task("a", "2025-03-10", 5, models.EnergyHigh),
		task("b", "2025-03-11", 5, models.EnergyLow),
	}, s, now)
	assert.Negative(t, p.AvailableMinutes)
	assert.Empty(t, p.ScheduledTasks)
	assert.Len(t, p.OverflowTasks, 2)
}

func randomTasks(r *rand.Rand, n int) []models.Task {
	energies := []models.EnergyLevel{models.EnergyHigh, models.EnergyMedium, models.EnergyLow}
	statuses := []models.Status{models.StatusScheduled, models.StatusPostponed, models.StatusCompleted}
	out := make([]models.Task, n)
	for i := range out {
		t := task(fmt.Sprintf("t%02d", i),
			now.AddDate(0, 0, r.Intn(15)-2).Format(models.DateLayout),
			5+r.Intn(180),
			energies[r.Intn(len(energies))])
		t.Status = statuses[r.Intn(len(statuses))]
		out[i] = t
	}
	return out
}

func TestPlanInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		tasks := randomTasks(r, 25)
		s := models.DefaultSettings()
		p := Plan(tasks, s, now)

		used := 0
		for _, pt := range p.ScheduledTasks {
			used += pt.EstimatedMinutes + BufferMinutes
		}
		assert.Equal(t, used, p.TotalScheduledMinutes)
		assert.LessOrEqual(t, p.TotalScheduledMinutes, p.AvailableMinutes)
		assert.Equal(t, len(Candidates(tasks, now)), len(p.ScheduledTasks)+len(p.OverflowTasks))

		for i := 1; i < len(p.ScheduledTasks); i++ {
			assert.GreaterOrEqual(t, p.ScheduledTasks[i-1].Score, p.ScheduledTasks[i].Score)
		}
		for _, pt := range p.OverflowTasks {
			assert.Greater(t, p.TotalScheduledMinutes+pt.EstimatedMinutes+BufferMinutes, p.AvailableMinutes)
		}
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	tasks := randomTasks(rand.New(rand.NewSource(11)), 30)
	a := Plan(tasks, models.DefaultSettings(), now)
	b := Plan(tasks, models.DefaultSettings(), now)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("plan changed between calls (-first +second):\n%s", diff)
	}
}

func TestPlanConcurrent(t *testing.T) {
	tasks := randomTasks(rand.New(rand.NewSource(3)), 40)
	want := Plan(tasks, models.DefaultSettings(), now)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			got := Plan(tasks, models.DefaultSettings(), now)
			if diff := cmp.Diff(want, got); diff != "" {
				return fmt.Errorf("concurrent plan differs:\n%s", diff)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestCompletedTodayAndAccuracy(t *testing.T) {
	at := func(d time.Time) *time.Time { return &d }
	a := task("a", "2025-03-10", 30, models.EnergyHigh)
	a.Status, a.CompletedAt = models.StatusCompleted, at(now.Add(-time.Hour))
	b := task("b", "2025-03-10", 30, models.EnergyHigh)
	b.Status, b.CompletedAt = models.StatusCompleted, at(now.Add(-48*time.Hour))

	done := CompletedToday([]models.Task{a, b}, now)
	require.Len(t, done, 1)
	assert.Equal(t, "a", done[0].ID)

	assert.Equal(t, 0.0, OverallAccuracy(nil))
	assert.InDelta(t, 0.75, OverallAccuracy([]models.LearningData{
		{TotalEstimated: 60, TotalActual: 90},
		{TotalEstimated: 90, TotalActual: 110},
	}), 1e-9)
	assert.Equal(t, 1.0, OverallAccuracy([]models.LearningData{{TotalEstimated: 100, TotalActual: 50}}))

	in := Summarize([]models.Task{a, b}, nil, now)
	assert.Equal(t, 1, in.CompletedToday)
	assert.NotNil(t, in.Categories)
}
