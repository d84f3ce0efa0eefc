package handlers

import (
	"io"
	"net/http"

	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/logger"
	"github.com/tabkeep/tabkeepd/internal/relay"
)

const maxRelayBody = 1 << 20 // 1 MiB

// RelayIngress accepts window messages from web pages. The Origin
// header stands in for the posting window's origin; foreign origins and
// malformed payloads get 204 with no body, exactly like a dropped
// message.
func RelayIngress(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxRelayBody))
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read body")
			return
		}

		reply, err := d.Relay.HandleWindowMessage(r.Context(), r.Header.Get("Origin"), raw)
		if err != nil {
			d.Logger.Error("relay failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "relay failed")
			return
		}

		if reply == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		body, err := relay.Encode(reply)
		if err != nil {
			d.Logger.Error("failed to encode reply", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "encode failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

// Logout clears the stored session and broadcasts the change.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Relay.Logout(r.Context()); err != nil {
			d.Logger.Error("logout failed", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "logout failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
