// Package planner turns a user's pending tasks into a plan for today.
// Everything here is a pure function of its inputs, so plans can be
// recomputed on every request and from many goroutines at once.
package planner

import (
	"fmt"
	"sort"
	"time"

	"mynd-backend/internal/models"
)

// Now is the default clock. Calendar dates are read in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// Today returns the calendar date of now in now's location.
func Today(now time.Time) string {
	return now.Format(models.DateLayout)
}

// Candidates returns the tasks eligible for today's plan: pending and not
// yet past their deadline.
func Candidates(tasks []models.Task, now time.Time) []models.Task {
	today := Today(now)
	var out []models.Task
	for _, t := range tasks {
		if t.Status.Pending() && t.Deadline >= today {
			out = append(out, t)
		}
	}
	return out
}

// Plan scores every candidate as if evaluated at the start of the work
// window, then packs them greedily in score order.
func Plan(tasks []models.Task, s models.UserSettings, now time.Time) models.DailyPlan {
	available := s.AvailableMinutes()
	candidates := Candidates(tasks, now)

	scored := make([]models.PlannedTask, len(candidates))
	for i, t := range candidates {
		scored[i] = models.PlannedTask{
			Task:  t,
			Score: Score(t, available, s.WorkStartHour, now),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	plan := models.DailyPlan{
		Date:             Today(now),
		ScheduledTasks:   []models.PlannedTask{},
		OverflowTasks:    []models.PlannedTask{},
		AvailableMinutes: available,
	}

	used := 0
	for _, pt := range scored {
		if used+pt.EstimatedMinutes+BufferMinutes > available {
			plan.OverflowTasks = append(plan.OverflowTasks, pt)
			continue
		}
		pt.ScheduledTime = slotTime(s, used)
		plan.ScheduledTasks = append(plan.ScheduledTasks, pt)
		used += pt.EstimatedMinutes + BufferMinutes
	}
	plan.TotalScheduledMinutes = used

	return plan
}

// slotTime formats the start of a slot as HH:MM. A slot starting inside the
// lunch hour moves to the hour after lunch; later slots are not shifted.
func slotTime(s models.UserSettings, used int) string {
	fromMidnight := s.WorkStartHour*60 + used
	hour, minute := fromMidnight/60, fromMidnight%60
	if hour >= s.LunchStartHour && hour < s.LunchStartHour+1 {
		hour = s.LunchStartHour + 1
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// NextTask is the first scheduled task of the plan.
func NextTask(p models.DailyPlan) (models.PlannedTask, bool) {
	if len(p.ScheduledTasks) == 0 {
		return models.PlannedTask{}, false
	}
	return p.ScheduledTasks[0], true
}
