package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/httpserver/handlers"
)

func init() { Register(registerAccounts) }

func registerAccounts(r chi.Router, d deps.Deps) {
	// The account store is optional: without it the sync service side
	// of the daemon is simply absent.
	if d.Accounts == nil {
		return
	}
	r.Post("/api/accounts", handlers.CreateAccount(d))
	r.Get("/api/accounts/{id}/sync-token", handlers.SyncToken(d))
}
