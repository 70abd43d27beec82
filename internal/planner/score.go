package planner

import (
	"math"
	"time"

	"mynd-backend/internal/models"
)

// BufferMinutes is the gap left after every scheduled task.
const BufferMinutes = 10

type hourWindow struct{ from, to int }

func (w hourWindow) contains(hour int) bool {
	return hour >= w.from && hour < w.to
}

var energyWindows = map[models.EnergyLevel]struct{ optimal, acceptable hourWindow }{
	models.EnergyHigh:   {optimal: hourWindow{8, 14}, acceptable: hourWindow{14, 17}},
	models.EnergyMedium: {optimal: hourWindow{12, 18}, acceptable: hourWindow{8, 12}},
	models.EnergyLow:    {optimal: hourWindow{17, 22}, acceptable: hourWindow{12, 17}},
}

// Urgency is 100 on (or past) the deadline and drops by 10 per remaining day.
func Urgency(deadline, now time.Time) float64 {
	days := math.Max(0, deadline.Sub(now).Hours()/24)
	return math.Max(0, 100-days*10)
}

func PriorityWeight(e models.EnergyLevel) float64 {
	switch e {
	case models.EnergyHigh:
		return 30
	case models.EnergyMedium:
		return 20
	default:
		return 10
	}
}

// TimeFit rewards tasks that use a larger share of the remaining capacity.
// A task that cannot fit at all scores 0.
func TimeFit(estimated, available int) float64 {
	if estimated > available {
		return 0
	}
	return math.Floor(60 * float64(estimated) / float64(max(available, 1)))
}

func EnergyMatch(e models.EnergyLevel, hour int) float64 {
	w, ok := energyWindows[e]
	switch {
	case !ok:
		return 5
	case w.optimal.contains(hour):
		return 30
	case w.acceptable.contains(hour):
		return 15
	default:
		return 5
	}
}

// Score computes the planning priority of one task.
//
// The deadline is read as midnight in now's location. A malformed deadline
// counts as due now; tasks are validated on the way in so this only guards
// against rows written by hand.
func Score(t models.Task, availableMinutes, currentHour int, now time.Time) float64 {
	deadline, err := t.DeadlineIn(now.Location())
	if err != nil {
		deadline = now
	}
	return Urgency(deadline, now)*0.4 +
		PriorityWeight(t.EnergyLevel)*0.3 +
		TimeFit(t.EstimatedMinutes, availableMinutes)*0.2 +
		EnergyMatch(t.EnergyLevel, currentHour)*0.1
}
