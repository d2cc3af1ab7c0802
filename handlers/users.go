package handlers

import (
	"net/http"

	"github.com/shelfmark/server/middleware"
	"github.com/shelfmark/server/store"
)

type UsersHandler struct {
	Store store.Store
}

// Me returns the authenticated user with their saved books and bookCount.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.Store.UserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(user))
}
