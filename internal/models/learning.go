package models

import "time"

// LearningData is the rolling estimate-vs-actual aggregate for one
// (user, category) pair.
type LearningData struct {
	UserID           string    `json:"-"`
	Category         Category  `json:"category"`
	TotalEstimated   int       `json:"total_estimated"`
	TotalActual      int       `json:"total_actual"`
	CompletedCount   int       `json:"completed_count"`
	Accuracy         float64   `json:"accuracy"`
	AdjustmentFactor float64   `json:"adjustment_factor"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type LearningPatch struct {
	TotalEstimated   Field[int]     `json:"total_estimated"`
	TotalActual      Field[int]     `json:"total_actual"`
	CompletedCount   Field[int]     `json:"completed_count"`
	Accuracy         Field[float64] `json:"accuracy"`
	AdjustmentFactor Field[float64] `json:"adjustment_factor"`
}

func (p LearningPatch) ApplyTo(d *LearningData) {
	p.TotalEstimated.Apply(&d.TotalEstimated)
	p.TotalActual.Apply(&d.TotalActual)
	p.CompletedCount.Apply(&d.CompletedCount)
	p.Accuracy.Apply(&d.Accuracy)
	p.AdjustmentFactor.Apply(&d.AdjustmentFactor)
}
