// Package server assembles the HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"mynd-backend/internal/analytics"
	"mynd-backend/internal/auth"
	"mynd-backend/internal/db"
	"mynd-backend/internal/httpx"
	"mynd-backend/internal/learning"
	"mynd-backend/internal/planner"
	"mynd-backend/internal/profile"
	"mynd-backend/internal/settings"
	"mynd-backend/internal/store"
	"mynd-backend/internal/tasks"
)

type Deps struct {
	DB          *db.DB
	Log         *zap.Logger
	JWTSecret   []byte
	TokenTTL    time.Duration
	CORSOrigins []string
	Now         func() time.Time
}

// Handler builds the routed, CORS-wrapped API handler.
func Handler(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = planner.Now
	}
	log := d.Log
	st := store.New(d.DB).WithClock(d.Now)
	rec := analytics.NewRecorder(d.DB, log, d.Now)
	taskSvc := tasks.NewService(st, log, d.Now)
	learnSvc := learning.NewService(st)
	tokens := auth.Tokens{Secret: d.JWTSecret, TTL: d.TokenTTL, Now: d.Now}
	mw := auth.New(d.JWTSecret, d.Now)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.PingContext(r.Context()); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "db unavailable"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	// auth
	mux.HandleFunc("POST /api/auth/register", auth.RegisterHandler(st, tokens, log))
	mux.HandleFunc("POST /api/auth/login", auth.LoginHandler(st, tokens, log))
	mux.HandleFunc("GET /api/auth/me", mw.Wrap(auth.MeHandler(st, log)))
	mux.HandleFunc("POST /api/auth/logout", mw.Wrap(auth.LogoutHandler()))
	mux.HandleFunc("DELETE /api/account", mw.Wrap(auth.DeleteAccountHandler(st, log)))

	// profile & settings
	mux.HandleFunc("GET /api/profile", mw.Wrap(profile.GetHandler(st, log)))
	mux.HandleFunc("PUT /api/profile", mw.Wrap(profile.UpsertHandler(st, log)))
	mux.HandleFunc("GET /api/settings", mw.Wrap(settings.GetHandler(st, log)))
	mux.HandleFunc("PUT /api/settings", mw.Wrap(settings.UpdateHandler(st, log)))

	// tasks
	mux.HandleFunc("GET /api/tasks", mw.Wrap(tasks.ListHandler(taskSvc, log)))
	mux.HandleFunc("POST /api/tasks", mw.Wrap(tasks.CreateHandler(taskSvc, rec, log)))
	mux.HandleFunc("GET /api/tasks/overdue", mw.Wrap(tasks.OverdueHandler(taskSvc, log)))
	mux.HandleFunc("GET /api/tasks/completed-today", mw.Wrap(tasks.CompletedTodayHandler(taskSvc, log)))
	mux.HandleFunc("GET /api/tasks/{id}", mw.Wrap(tasks.GetHandler(taskSvc, log)))
	mux.HandleFunc("PATCH /api/tasks/{id}", mw.Wrap(tasks.UpdateHandler(taskSvc, log)))
	mux.HandleFunc("DELETE /api/tasks/{id}", mw.Wrap(tasks.DeleteHandler(taskSvc, rec, log)))
	mux.HandleFunc("POST /api/tasks/{id}/complete", mw.Wrap(tasks.CompleteHandler(taskSvc, rec, log)))
	mux.HandleFunc("POST /api/tasks/{id}/postpone", mw.Wrap(tasks.PostponeHandler(taskSvc, rec, log)))
	mux.HandleFunc("POST /api/tasks/{id}/reschedule", mw.Wrap(tasks.RescheduleHandler(taskSvc, rec, log)))
	mux.HandleFunc("POST /api/tasks/{id}/archive", mw.Wrap(tasks.ArchiveHandler(taskSvc, rec, log)))

	// plan
	mux.HandleFunc("GET /api/plan/today", mw.Wrap(tasks.PlanTodayHandler(taskSvc, rec, log)))
	mux.HandleFunc("GET /api/plan/next", mw.Wrap(tasks.NextTaskHandler(taskSvc, rec, log)))
	mux.HandleFunc("GET /api/insights", mw.Wrap(tasks.InsightsHandler(taskSvc, log)))

	// learning
	mux.HandleFunc("GET /api/learning", mw.Wrap(learning.ListHandler(learnSvc, log)))
	mux.HandleFunc("PUT /api/learning/{category}", mw.Wrap(learning.UpsertHandler(learnSvc, log)))
	mux.HandleFunc("DELETE /api/learning", mw.Wrap(learning.ResetHandler(learnSvc, rec, log)))

	// analytics
	mux.HandleFunc("POST /api/analytics/app-opened", mw.Wrap(analytics.AppOpenedHandler(rec)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Platform", "X-App-Version", "X-Session-Id", "X-Device-Locale", "Idempotency-Key"},
		AllowCredentials: true,
	})

	return c.Handler(requestLog(log, mux))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func requestLog(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}
