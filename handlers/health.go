package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

func Index(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "zennote backend running"})
}

// Healthz reports 503 when the database does not answer within two seconds.
func Healthz(db Pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.WarnContext(ctx, "health check failed", "error", err)
			WriteJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "error": "database unavailable"})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
