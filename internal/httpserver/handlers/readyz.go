package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports ready once the storage backbone answers. Without a
// Redis client (tests, memory backbone) it is always ready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.RedisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := d.RedisClient.Ping(ctx).Err(); err != nil {
				d.Logger.Warn("readiness check failed", logger.Error(err))
				respondJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
				return
			}
		}

		respondJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
