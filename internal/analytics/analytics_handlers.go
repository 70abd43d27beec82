package analytics

import (
	"net/http"
	"strings"

	"mynd-backend/internal/httpx"
)

var openSources = map[string]bool{"push": true, "deeplink": true, "icon": true, "widget": true}

// AppOpenedHandler records an "app_opened" event. Unknown sources are
// stored as "unknown" so the property stays low-cardinality.
func AppOpenedHandler(rec *Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			httpx.JSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
			return
		}

		var body struct {
			ColdStart bool   `json:"cold_start"`
			From      string `json:"from"`
		}
		if err := httpx.Decode(r, &body); err != nil {
			httpx.JSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
			return
		}

		from := strings.ToLower(strings.TrimSpace(body.From))
		if !openSources[from] {
			from = "unknown"
		}

		rec.Track(r, "app_opened", map[string]any{
			"cold_start": body.ColdStart,
			"from":       from,
		})
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
