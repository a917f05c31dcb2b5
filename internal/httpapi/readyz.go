package httpapi

import (
	"context"
	"net/http"
	"time"

	"todo-api/internal/observability/jsonlog"
)

// DBPinger is satisfied by every store backend.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

func ReadyzHandler(db DBPinger, logger *jsonlog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Warn("store_not_ready", map[string]any{
				"rid": RequestIDFromContext(r.Context()),
				"err": err,
			})
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
