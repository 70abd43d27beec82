package models

type UserSettings struct {
	WorkStartHour        int `json:"work_start_hour"`
	WorkEndHour          int `json:"work_end_hour"`
	LunchStartHour       int `json:"lunch_start_hour"`
	LunchDurationMinutes int `json:"lunch_duration_minutes"`
}

// DefaultSettings are used when a user has never saved settings.
func DefaultSettings() UserSettings {
	return UserSettings{
		WorkStartHour:        8,
		WorkEndHour:          22,
		LunchStartHour:       12,
		LunchDurationMinutes: 60,
	}
}

// AvailableMinutes is the working window minus lunch. It is not clamped:
// a misconfigured window yields a negative value and everything overflows.
func (s UserSettings) AvailableMinutes() int {
	return (s.WorkEndHour-s.WorkStartHour)*60 - s.LunchDurationMinutes
}

type SettingsPatch struct {
	WorkStartHour        Field[int] `json:"work_start_hour"`
	WorkEndHour          Field[int] `json:"work_end_hour"`
	LunchStartHour       Field[int] `json:"lunch_start_hour"`
	LunchDurationMinutes Field[int] `json:"lunch_duration_minutes"`
}

func (p SettingsPatch) ApplyTo(s *UserSettings) {
	p.WorkStartHour.Apply(&s.WorkStartHour)
	p.WorkEndHour.Apply(&s.WorkEndHour)
	p.LunchStartHour.Apply(&s.LunchStartHour)
	p.LunchDurationMinutes.Apply(&s.LunchDurationMinutes)
}
