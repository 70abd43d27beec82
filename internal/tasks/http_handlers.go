package tasks

import (
	"net/http"

	"go.uber.org/zap"

	"mynd-backend/internal/analytics"
	"mynd-backend/internal/apperr"
	"mynd-backend/internal/auth"
	"mynd-backend/internal/httpx"
	"mynd-backend/internal/models"
)

func requireUser(w http.ResponseWriter, r *http.Request, log *zap.Logger) (string, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.Error(w, r, log, apperr.ErrUnauthorized)
	}
	return uid, ok
}

func taskProps(t models.Task) map[string]any {
	return map[string]any{
		"task_id":           t.ID,
		"category":          t.Category,
		"estimated_minutes": t.EstimatedMinutes,
		"energy_level":      t.EnergyLevel,
	}
}

func ListHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, list)
	}
}

func GetHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		t, err := svc.Get(r.Context(), uid, r.PathValue("id"))
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, t)
	}
}

func CreateHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}

		var body models.NewTask
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		t, err := svc.Create(r.Context(), uid, body)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		props := taskProps(t)
		props["raw_estimated_minutes"] = body.EstimatedMinutes
		rec.Track(r, "task_created", props)

		httpx.JSON(w, http.StatusCreated, t)
	}
}

func UpdateHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}

		var patch models.TaskPatch
		if err := httpx.Decode(r, &patch); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		t, err := svc.Update(r.Context(), uid, r.PathValue("id"), patch)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, t)
	}
}

func DeleteHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}

		id := r.PathValue("id")
		if err := svc.Delete(r.Context(), uid, id); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		rec.Track(r, "task_deleted", map[string]any{"task_id": id})
		httpx.OK(w)
	}
}

func CompleteHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}

		var body struct {
			ActualMinutes int `json:"actual_minutes"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		t, ld, err := svc.Complete(r.Context(), uid, r.PathValue("id"), body.ActualMinutes)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		props := taskProps(t)
		props["actual_minutes"] = body.ActualMinutes
		props["adjustment_factor"] = ld.AdjustmentFactor
		rec.Track(r, "task_completed", props)

		httpx.JSON(w, http.StatusOK, map[string]any{
			"task":     t,
			"learning": ld,
		})
	}
}

func PostponeHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}

		var body struct {
			Reason models.PostponeReason `json:"reason"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		t, err := svc.Postpone(r.Context(), uid, r.PathValue("id"), body.Reason)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		props := taskProps(t)
		props["reason"] = body.Reason
		props["postpone_count"] = t.PostponeCount
		rec.Track(r, "task_postponed", props)

		httpx.JSON(w, http.StatusOK, t)
	}
}

func RescheduleHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		t, err := svc.Reschedule(r.Context(), uid, r.PathValue("id"))
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		rec.Track(r, "task_rescheduled", taskProps(t))
		httpx.JSON(w, http.StatusOK, t)
	}
}

func ArchiveHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		t, err := svc.Archive(r.Context(), uid, r.PathValue("id"))
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		rec.Track(r, "task_archived", taskProps(t))
		httpx.JSON(w, http.StatusOK, t)
	}
}

// ---- plan views ----

func PlanTodayHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		p, err := svc.Plan(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		rec.Track(r, "plan_viewed", map[string]any{
			"scheduled":         len(p.ScheduledTasks),
			"overflow":          len(p.OverflowTasks),
			"scheduled_minutes": p.TotalScheduledMinutes,
		})
		httpx.JSON(w, http.StatusOK, p)
	}
}

// NextTaskHandler answers with {"task": null} when nothing fits today.
func NextTaskHandler(svc *Service, rec *analytics.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		t, found, err := svc.Next(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		if !found {
			httpx.JSON(w, http.StatusOK, map[string]any{"task": nil})
			return
		}
		rec.Track(r, "next_task_shown", map[string]any{
			"task_id":        t.ID,
			"score":          t.Score,
			"scheduled_time": t.ScheduledTime,
		})
		httpx.JSON(w, http.StatusOK, map[string]any{"task": t})
	}
}

func OverdueHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		list, err := svc.Overdue(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, list)
	}
}

func CompletedTodayHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		list, err := svc.CompletedToday(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, list)
	}
}

func InsightsHandler(svc *Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := requireUser(w, r, log)
		if !ok {
			return
		}
		in, err := svc.Insights(r.Context(), uid)
		if err != nil {
			httpx.Error(w, r, log, err)
			return
		}
		httpx.JSON(w, http.StatusOK, in)
	}
}
