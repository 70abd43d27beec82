package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mynd-backend/internal/db"
)

type CtxKey string

const (
	ctxUserIDKey CtxKey = "analytics_user_id"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID       string
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(ctxUserIDKey).(string)
	return uid, ok && uid != ""
}

// SourceEventKeyFromRequest returns the client's idempotency key, if any.
// A repeated key is stored once.
func SourceEventKeyFromRequest(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Recorder writes analytics events. Failures are logged and swallowed so
// they never break the request that produced the event.
type Recorder struct {
	db  *db.DB
	log *zap.Logger
	now func() time.Time
}

// NewRecorder stamps events with now, or the wall clock when now is nil.
func NewRecorder(d *db.DB, log *zap.Logger, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{db: d, log: log, now: now}
}

// Track records eventName for the request's user. Never pass raw user text
// in props.
func (rec *Recorder) Track(r *http.Request, eventName string, props map[string]any) {
	if rec == nil {
		return
	}
	env := FromRequest(r)
	if uid, ok := UserIDFromContext(r.Context()); ok {
		env.UserID = uid
	}
	rec.Log(r.Context(), env, eventName, props, SourceEventKeyFromRequest(r))
}

// Log inserts one analytics event.
func (rec *Recorder) Log(ctx context.Context, env Envelope, eventName string, props any, sourceEventKey string) {
	if eventName == "" || env.UserID == "" {
		return
	}

	b, err := json.Marshal(props)
	if err != nil {
		rec.log.Warn("analytics props not encodable", zap.String("event", eventName), zap.Error(err))
		return
	}

	query := `
		INSERT INTO analytics_events (
			id, event_name, event_time,
			user_id, session_id,
			platform, app_version, device_locale,
			source_event_key, properties
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if sourceEventKey != "" {
		query += `
		ON CONFLICT (source_event_key) DO NOTHING`
	}

	_, err = rec.db.ExecContext(ctx, db.Rebind(rec.db.Driver, query),
		uuid.NewString(), eventName, rec.now().UTC().Format(db.TimeLayout),
		env.UserID, nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
		nullIfEmpty(sourceEventKey), string(b),
	)
	if err != nil {
		rec.log.Warn("analytics insert failed", zap.String("event", eventName), zap.Error(err))
	}
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
