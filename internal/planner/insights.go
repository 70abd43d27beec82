package planner

import (
	"math"
	"time"

	"mynd-backend/internal/models"
)

// Overdue returns pending tasks whose deadline is before today. These never
// appear in a plan.
func Overdue(tasks []models.Task, now time.Time) []models.Task {
	today := Today(now)
	out := []models.Task{}
	for _, t := range tasks {
		if t.Status.Pending() && t.Deadline < today {
			out = append(out, t)
		}
	}
	return out
}

func CompletedToday(tasks []models.Task, now time.Time) []models.Task {
	today := Today(now)
	out := []models.Task{}
	for _, t := range tasks {
		if t.Status != models.StatusCompleted || t.CompletedAt == nil {
			continue
		}
		if t.CompletedAt.In(now.Location()).Format(models.DateLayout) == today {
			out = append(out, t)
		}
	}
	return out
}

// OverallAccuracy pools every category's totals. With no history it is 0.
func OverallAccuracy(entries []models.LearningData) float64 {
	var est, act int
	for _, l := range entries {
		est += l.TotalEstimated
		act += l.TotalActual
	}
	if act == 0 {
		return 0
	}
	return math.Min(float64(est)/float64(act), 1)
}

type Insights struct {
	OverallAccuracy float64               `json:"overall_accuracy"`
	CompletedToday  int                   `json:"completed_today"`
	OverdueCount    int                   `json:"overdue_count"`
	Categories      []models.LearningData `json:"categories"`
}

func Summarize(tasks []models.Task, entries []models.LearningData, now time.Time) Insights {
	if entries == nil {
		entries = []models.LearningData{}
	}
	return Insights{
		OverallAccuracy: OverallAccuracy(entries),
		CompletedToday:  len(CompletedToday(tasks, now)),
		OverdueCount:    len(Overdue(tasks, now)),
		Categories:      entries,
	}
}
