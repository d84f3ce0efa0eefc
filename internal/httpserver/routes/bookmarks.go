package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/httpserver/handlers"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Get("/api/bookmarks", handlers.ListBookmarks(d))
	r.Post("/api/bookmarks", handlers.SaveBookmark(d))
	r.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
}
