package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shelfmark/server/models"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// UserResponse is the wire shape for a user: the stored fields plus the
// derived bookCount, which is computed here and never persisted.
type UserResponse struct {
	ID         string             `json:"id"`
	Username   string             `json:"username"`
	Email      string             `json:"email"`
	SavedBooks []models.SavedBook `json:"savedBooks"`
	BookCount  int                `json:"bookCount"`
}

func userToResponse(u *models.User) UserResponse {
	books := u.SavedBooks
	if books == nil {
		books = []models.SavedBook{}
	}
	return UserResponse{
		ID:         u.ID.Hex(),
		Username:   u.Username,
		Email:      u.Email,
		SavedBooks: books,
		BookCount:  u.BookCount(),
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
