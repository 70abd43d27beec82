package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"mynd-backend/internal/analytics"
	"mynd-backend/internal/httpx"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

type Middleware struct {
	secret []byte
	now    func() time.Time
}

// New returns a middleware that checks token expiry against now. A nil now
// means the wall clock.
func New(secret []byte, now func() time.Time) Middleware {
	return Middleware{secret: secret, now: now}
}

func (m Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			httpx.JSON(w, http.StatusUnauthorized, map[string]any{"error": "missing or invalid authorization header"})
			return
		}

		userID, err := ParseToken(m.secret, strings.TrimPrefix(h, "Bearer "), m.now)
		if err != nil {
			httpx.JSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid or expired token"})
			return
		}

		ctx := WithUserID(r.Context(), userID)
		// analytics reads the user from its own key
		ctx = analytics.WithUserID(ctx, userID)

		next(w, r.WithContext(ctx))
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}
