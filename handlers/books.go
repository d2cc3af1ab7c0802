package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shelfmark/server/middleware"
	"github.com/shelfmark/server/models"
	"github.com/shelfmark/server/search"
	"github.com/shelfmark/server/store"
)

type BooksHandler struct {
	Store  store.Store
	Search *search.Client
}

type SaveBookRequest struct {
	BookID      string   `json:"bookId" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
	Authors     []string `json:"authors"`
}

type SearchResponse struct {
	Items []models.SavedBook `json:"items"`
}

// Save appends a book to the caller's list. Saving a book that is already on
// the list changes nothing; the response is the list as stored either way.
func (h *BooksHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req SaveBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	authors := req.Authors
	if len(authors) == 0 {
		authors = []string{models.PlaceholderAuthor}
	}

	user, err := h.Store.AddSavedBook(r.Context(), userID, models.SavedBook{
		BookID:      req.BookID,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Link:        req.Link,
		Authors:     authors,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save book")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// Remove deletes a book from the caller's list by its catalog ID. Removing a
// book that isn't on the list is a no-op.
func (h *BooksHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	bookID := chi.URLParam(r, "bookId")
	if bookID == "" {
		writeError(w, http.StatusBadRequest, "bookId is required")
		return
	}

	user, err := h.Store.RemoveSavedBook(r.Context(), userID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove book")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}

// SearchCatalog proxies the external catalog. Catalog downtime is the
// caller's cue to retry, not a server fault, hence 502 over 500.
func (h *BooksHandler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	books, err := h.Search.Search(r.Context(), term)
	if errors.Is(err, search.ErrUnavailable) {
		writeError(w, http.StatusBadGateway, "book catalog is unavailable")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: books})
}
