package auth

import (
	"net/http"

	"go.uber.org/zap"

	"mynd-backend/internal/apperr"
	"mynd-backend/internal/httpx"
)

// LogoutHandler exists for client symmetry. Tokens are stateless, so the
// client just drops its token.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// DeleteAccountHandler removes the user with all tasks, learning records,
// settings, profile and analytics events in one transaction.
func DeleteAccountHandler(st Accounts, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, log, apperr.ErrUnauthorized)
			return
		}

		if err := st.DeleteAccount(r.Context(), uid); err != nil {
			httpx.Error(w, r, log, err)
			return
		}

		log.Info("account deleted", zap.String("user_id", uid))
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
