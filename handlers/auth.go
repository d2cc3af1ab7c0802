package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shelfmark/server/auth"
	"github.com/shelfmark/server/models"
	"github.com/shelfmark/server/store"
)

type AuthHandler struct {
	Store  store.Store
	Tokens *auth.TokenService
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// Register creates a user and logs them straight in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	user := &models.User{
		Username:   req.Username,
		Email:      req.Email,
		SavedBooks: []models.SavedBook{},
		CreatedAt:  time.Now(),
	}
	if err := user.SetPassword(req.Password); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	id, err := h.Store.CreateUser(r.Context(), user)
	if errors.Is(err, store.ErrDuplicateKey) {
		writeError(w, http.StatusConflict, "username or email already in use")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	user.ID = id

	token, err := h.Tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: userToResponse(user)})
}

// Login verifies credentials against the stored hash. An unknown identifier
// and a wrong password produce the exact same response, so the caller cannot
// tell which was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.Store.UserByIdentifier(r.Context(), strings.TrimSpace(req.Identifier))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || !user.CheckPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.Tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: userToResponse(user)})
}
