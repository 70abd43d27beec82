package models

// PlannedTask is a task annotated by the planner. Score and ScheduledTime
// are recomputed on every planning call and never written back.
type PlannedTask struct {
	Task
	Score         float64 `json:"score"`
	ScheduledTime string  `json:"scheduled_time,omitempty"`
}

type DailyPlan struct {
	Date                  string        `json:"date"`
	ScheduledTasks        []PlannedTask `json:"scheduled_tasks"`
	OverflowTasks         []PlannedTask `json:"overflow_tasks"`
	TotalScheduledMinutes int           `json:"total_scheduled_minutes"`
	AvailableMinutes      int           `json:"available_minutes"`
}
