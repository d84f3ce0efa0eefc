package handlers

import (
	"net/http"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Session       *domain.Session `json:"session,omitempty"`
}

// Session returns the current auth state, the way the popup reads it:
// from the watcher's converged view when one is running, otherwise
// straight from the backbone.
func Session(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sess *domain.Session
		if d.Watcher != nil {
			cur := d.Watcher.Current()
			sess = &cur
		} else {
			var err error
			sess, err = d.Backbone.GetSession(r.Context())
			if err != nil {
				d.Logger.Error("failed to load session", logger.Error(err))
				respondError(w, http.StatusInternalServerError, "failed to load session")
				return
			}
		}

		resp := sessionResponse{Authenticated: sess.Authenticated()}
		if resp.Authenticated {
			resp.Session = sess
		}
		respondJSON(w, http.StatusOK, resp)
	}
}
