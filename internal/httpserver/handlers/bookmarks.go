package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabkeep/tabkeepd/internal/domain"
	"github.com/tabkeep/tabkeepd/internal/httpserver/deps"
	"github.com/tabkeep/tabkeepd/internal/logger"
)

type bookmarkRequest struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	FavIconURL string `json:"favIconUrl"`
}

// ListBookmarks returns all saved bookmarks in insertion order.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := d.Bookmarks.List(r.Context())
		if err != nil {
			d.Logger.Error("failed to list bookmarks", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to list bookmarks")
			return
		}
		if entries == nil {
			entries = []*domain.BookmarkEntry{}
		}
		respondJSON(w, http.StatusOK, entries)
	}
}

// SaveBookmark snapshots a tab as a bookmark.
func SaveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid body")
			return
		}
		if req.URL == "" {
			respondError(w, http.StatusBadRequest, "url is required")
			return
		}

		entry, err := d.Bookmarks.Add(r.Context(), domain.Tab{
			Title:      req.Title,
			URL:        req.URL,
			FavIconURL: req.FavIconURL,
		})
		if err != nil {
			d.Logger.Error("failed to save bookmark", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to save bookmark")
			return
		}

		respondJSON(w, http.StatusCreated, entry)
	}
}

// DeleteBookmark removes a bookmark by id.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		found, err := d.Bookmarks.Remove(r.Context(), id)
		if err != nil {
			d.Logger.Error("failed to remove bookmark", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to remove bookmark")
			return
		}
		if !found {
			respondError(w, http.StatusNotFound, "bookmark not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
