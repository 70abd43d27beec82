package models

import "time"

// DateLayout is the wire and storage format of a deadline.
const DateLayout = "2006-01-02"

type Category string

const (
	CategoryEssay      Category = "essay"
	CategoryProblemSet Category = "problem_set"
	CategoryReading    Category = "reading"
	CategoryProject    Category = "project"
	CategoryLecture    Category = "lecture"
	CategoryLab        Category = "lab"
	CategoryStudy      Category = "study"
	CategoryOther      Category = "other"
)

var Categories = []Category{
	CategoryEssay, CategoryProblemSet, CategoryReading, CategoryProject,
	CategoryLecture, CategoryLab, CategoryStudy, CategoryOther,
}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "high"
	EnergyMedium EnergyLevel = "medium"
	EnergyLow    EnergyLevel = "low"
)

func (e EnergyLevel) Valid() bool {
	switch e {
	case EnergyHigh, EnergyMedium, EnergyLow:
		return true
	}
	return false
}

type Status string

const (
	StatusCreated    Status = "created"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPostponed  Status = "postponed"
	StatusArchived   Status = "archived"
)

// Pending reports whether a task in this status is still waiting to be done
// and is therefore a planning (or overdue) candidate.
func (s Status) Pending() bool {
	return s == StatusScheduled || s == StatusPostponed
}

// Terminal statuses allow no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusArchived
}

type PostponeReason string

const (
	ReasonTookLonger  PostponeReason = "took_longer"
	ReasonInterrupted PostponeReason = "interrupted"
	ReasonNotInMood   PostponeReason = "not_in_mood"
	ReasonForgot      PostponeReason = "forgot"
	ReasonOther       PostponeReason = "other"
)

func (r PostponeReason) Valid() bool {
	switch r {
	case ReasonTookLonger, ReasonInterrupted, ReasonNotInMood, ReasonForgot, ReasonOther:
		return true
	}
	return false
}

// Task is the persisted unit of work. Planner output (slot, score) is kept
// off this type; see PlannedTask.
type Task struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Title            string           `json:"title"`
	Category         Category         `json:"category"`
	EstimatedMinutes int              `json:"estimated_minutes"`
	ActualMinutes    *int             `json:"actual_minutes"`
	Deadline         string           `json:"deadline"`
	EnergyLevel      EnergyLevel      `json:"energy_level"`
	Status           Status           `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	CompletedAt      *time.Time       `json:"completed_at"`
	PostponeCount    int              `json:"postpone_count"`
	PostponeReasons  []PostponeReason `json:"postpone_reasons"`
}

// DeadlineIn parses the deadline as midnight in loc.
func (t Task) DeadlineIn(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, t.Deadline, loc)
}

// NewTask is the user-supplied input for creating a task.
type NewTask struct {
	Title            string      `json:"title"`
	Category         Category    `json:"category"`
	EstimatedMinutes int         `json:"estimated_minutes"`
	Deadline         string      `json:"deadline"`
	EnergyLevel      EnergyLevel `json:"energy_level"`
}

// TaskPatch carries a partial task update. Lifecycle code is the only
// writer of Status, ActualMinutes, CompletedAt and the postpone fields.
type TaskPatch struct {
	Title            Field[string]           `json:"title"`
	Category         Field[Category]         `json:"category"`
	EstimatedMinutes Field[int]              `json:"estimated_minutes"`
	ActualMinutes    Field[*int]             `json:"actual_minutes"`
	Deadline         Field[string]           `json:"deadline"`
	EnergyLevel      Field[EnergyLevel]      `json:"energy_level"`
	Status           Field[Status]           `json:"status"`
	CompletedAt      Field[*time.Time]       `json:"completed_at"`
	PostponeCount    Field[int]              `json:"postpone_count"`
	PostponeReasons  Field[[]PostponeReason] `json:"postpone_reasons"`
}

// ApplyTo merges the set fields of p into t.
func (p TaskPatch) ApplyTo(t *Task) {
	p.Title.Apply(&t.Title)
	p.Category.Apply(&t.Category)
	p.EstimatedMinutes.Apply(&t.EstimatedMinutes)
	p.ActualMinutes.Apply(&t.ActualMinutes)
	p.Deadline.Apply(&t.Deadline)
	p.EnergyLevel.Apply(&t.EnergyLevel)
	p.Status.Apply(&t.Status)
	p.CompletedAt.Apply(&t.CompletedAt)
	p.PostponeCount.Apply(&t.PostponeCount)
	p.PostponeReasons.Apply(&t.PostponeReasons)
}

// EditsLifecycle reports whether the patch touches fields owned by the
// lifecycle transitions.
func (p TaskPatch) EditsLifecycle() bool {
	return p.Status.Set || p.ActualMinutes.Set || p.CompletedAt.Set ||
		p.PostponeCount.Set || p.PostponeReasons.Set
}
