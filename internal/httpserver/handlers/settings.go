package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

type autoCloseRequest struct {
	Enabled bool `json:"enabled"`
}

type autoCloseResponse struct {
	Enabled bool `json:"enabled"`
}

// SetAutoClose flips the auto-close setting.
func SetAutoClose(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req autoCloseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid body")
			return
		}

		// Toggling through the scanner persists the flag and resets the
		// scan cadence in one step. Without a scanner (no browser
		// attached) the flag still round-trips through the backbone.
		var err error
		if d.Scanner != nil {
			err = d.Scanner.Toggle(r.Context(), req.Enabled)
		} else {
			err = d.Backbone.SetAutoCloseEnabled(r.Context(), req.Enabled)
		}
		if err != nil {
			d.Logger.Error("failed to store auto-close setting", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to store setting")
			return
		}

		respondJSON(w, http.StatusOK, autoCloseResponse{Enabled: req.Enabled})
	}
}

// GetAutoClose reports the current auto-close setting.
func GetAutoClose(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		enabled, err := d.Backbone.AutoCloseEnabled(r.Context())
		if err != nil {
			d.Logger.Error("failed to load auto-close setting", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to load setting")
			return
		}
		respondJSON(w, http.StatusOK, autoCloseResponse{Enabled: enabled})
	}
}
