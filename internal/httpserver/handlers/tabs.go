package handlers

import (
	"net/http"

	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

// TabStats summarizes open tabs for the popup: total count, tabs idle
// past the stats threshold, and the average inactive time.
func TabStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Host == nil {
			respondError(w, http.StatusServiceUnavailable, "no browser connection")
			return
		}

		open, err := d.Host.List(r.Context())
		if err != nil {
			d.Logger.Error("failed to list tabs", logger.Error(err))
			respondError(w, http.StatusBadGateway, "failed to list tabs")
			return
		}

		respondJSON(w, http.StatusOK, d.Tracker.Stats(open))
	}
}
