package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/httpserver/handlers"
)

func init() { Register(registerRelay) }

func registerRelay(r chi.Router, d deps.Deps) {
	r.Post("/api/relay", handlers.RelayIngress(d))
	r.Post("/api/logout", handlers.Logout(d))
}
