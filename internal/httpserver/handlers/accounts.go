package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeepd/internal/account"
	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

type createAccountRequest struct {
	Email string `json:"email"`
}

type accountResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	SyncToken string `json:"syncToken"`
}

type syncTokenResponse struct {
	SyncToken string `json:"syncToken"`
}

// CreateAccount registers a sync account and mints its token.
func CreateAccount(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if req.Email == "" {
			respondError(w, http.StatusBadRequest, "email is required")
			return
		}

		acc, err := d.Accounts.Create(r.Context(), req.Email)
		if errors.Is(err, account.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		if err != nil {
			d.Logger.Error("failed to create account", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to create account")
			return
		}

		respondJSON(w, http.StatusCreated, accountResponse{
			ID:        acc.ID,
			Email:     acc.Email,
			SyncToken: acc.SyncToken,
		})
	}
}

// SyncToken returns the account's sync token, minting a replacement
// only when the stored one is invalid.
func SyncToken(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		tok, err := d.Accounts.EnsureSyncToken(r.Context(), id)
		if errors.Is(err, account.ErrNotFound) {
			respondError(w, http.StatusNotFound, "account not found")
			return
		}
		if err != nil {
			d.Logger.Error("failed to ensure sync token", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to ensure sync token")
			return
		}

		respondJSON(w, http.StatusOK, syncTokenResponse{SyncToken: tok})
	}
}
