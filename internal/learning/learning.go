// Package learning keeps the per-category estimate statistics and turns
// them into an adjustment factor for new estimates.
package learning

import (
	"context"
	"errors"
	"fmt"
	"math"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/models"
)

const (
	// MinSamples completions are needed before a factor is trusted.
	MinSamples = 5
	// TookLongerMultiplier inflates the factor on every "took_longer"
	// postponement. It compounds and is not capped.
	TookLongerMultiplier = 1.3
)

// Repository is the slice of the store this package needs.
type Repository interface {
	GetLearning(ctx context.Context, userID string, category models.Category) (models.LearningData, error)
	ListLearning(ctx context.Context, userID string) ([]models.LearningData, error)
	UpsertLearning(ctx context.Context, userID string, category models.Category, p models.LearningPatch) (models.LearningData, error)
	ResetLearning(ctx context.Context, userID string) (int64, error)
}

func Accuracy(totalEstimated, totalActual int) float64 {
	return math.Min(float64(totalEstimated)/float64(max(totalActual, 1)), 1)
}

func Factor(totalEstimated, totalActual int) float64 {
	return float64(totalActual) / float64(max(totalEstimated, 1))
}

// AdjustedEstimate applies the category factor once enough samples exist.
// A nil entry means the category has no history.
func AdjustedEstimate(d *models.LearningData, raw int) int {
	if d == nil || d.CompletedCount < MinSamples {
		return raw
	}
	return int(math.Round(float64(raw) * d.AdjustmentFactor))
}

// RecordCompletion folds one completed task into the category totals.
// Accuracy and factor are re-derived from the cumulative sums. Not
// idempotent: call exactly once per completion.
func RecordCompletion(ctx context.Context, repo Repository, userID string, category models.Category, estimated, actual int) (models.LearningData, error) {
	cur, err := repo.GetLearning(ctx, userID, category)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		cur = models.LearningData{Category: category}
	case err != nil:
		return models.LearningData{}, fmt.Errorf("load learning %s: %w", category, err)
	}

	est := cur.TotalEstimated + estimated
	act := cur.TotalActual + actual
	return repo.UpsertLearning(ctx, userID, category, models.LearningPatch{
		TotalEstimated:   models.Some(est),
		TotalActual:      models.Some(act),
		CompletedCount:   models.Some(cur.CompletedCount + 1),
		Accuracy:         models.Some(Accuracy(est, act)),
		AdjustmentFactor: models.Some(Factor(est, act)),
	})
}

// RecordTookLongerPostponement multiplies an existing factor in place.
// Categories without history are left alone; ok reports whether a record
// was updated.
func RecordTookLongerPostponement(ctx context.Context, repo Repository, userID string, category models.Category) (d models.LearningData, ok bool, err error) {
	cur, err := repo.GetLearning(ctx, userID, category)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.LearningData{}, false, nil
	}
	if err != nil {
		return models.LearningData{}, false, fmt.Errorf("load learning %s: %w", category, err)
	}
	d, err = repo.UpsertLearning(ctx, userID, category, models.LearningPatch{
		AdjustmentFactor: models.Some(cur.AdjustmentFactor * TookLongerMultiplier),
	})
	if err != nil {
		return models.LearningData{}, false, err
	}
	return d, true, nil
}

// Service exposes the learning records outside of a task transition.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string) ([]models.LearningData, error) {
	return s.repo.ListLearning(ctx, userID)
}

// Upsert writes a raw patch for a category. Used by clients that import or
// correct their own statistics.
func (s *Service) Upsert(ctx context.Context, userID string, category models.Category, p models.LearningPatch) (models.LearningData, error) {
	if !category.Valid() {
		return models.LearningData{}, apperr.Invalid("category", "unknown category %q", category)
	}
	if p.AdjustmentFactor.Set && p.AdjustmentFactor.Value <= 0 {
		return models.LearningData{}, apperr.Invalid("adjustment_factor", "must be positive")
	}
	return s.repo.UpsertLearning(ctx, userID, category, p)
}

// Reset drops every category for the user.
func (s *Service) Reset(ctx context.Context, userID string) (int64, error) {
	return s.repo.ResetLearning(ctx, userID)
}

// Estimate returns the estimate a new task in category should be stored with.
func (s *Service) Estimate(ctx context.Context, userID string, category models.Category, raw int) (int, error) {
	return Estimate(ctx, s.repo, userID, category, raw)
}

func Estimate(ctx context.Context, repo Repository, userID string, category models.Category, raw int) (int, error) {
	d, err := repo.GetLearning(ctx, userID, category)
	if errors.Is(err, apperr.ErrNotFound) {
		return raw, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load learning %s: %w", category, err)
	}
	return AdjustedEstimate(&d, raw), nil
}
