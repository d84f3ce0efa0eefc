package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/httpserver/handlers"
)

func init() { Register(registerTabs) }

func registerTabs(r chi.Router, d deps.Deps) {
	r.Get("/api/tabs/stats", handlers.TabStats(d))
}
