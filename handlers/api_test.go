package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shelfmark/server/auth"
	"github.com/shelfmark/server/middleware"
	"github.com/shelfmark/server/search"
	"github.com/shelfmark/server/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires the API the same way main does, against the in-memory
// store and an optional fake catalog.
func newTestRouter(t *testing.T, catalogURL string) http.Handler {
	t.Helper()
	db := store.NewMemoryStore()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := search.NewClient(catalogURL, 2*time.Second, logger)

	authHandler := &AuthHandler{Store: db, Tokens: tokens}
	usersHandler := &UsersHandler{Store: db}
	booksHandler := &BooksHandler{Store: db, Search: catalog}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/users", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/books/search", booksHandler.SearchCatalog)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))
			r.Get("/me", usersHandler.Me)
			r.Put("/me/books", booksHandler.Save)
			r.Delete("/me/books/{bookId}", booksHandler.Remove)
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestRegisterLoginSaveRemoveScenario(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	// Register ada.
	w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterRequest{
		Username: "ada", Email: "ada@x.com", Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decode[AuthResponse](t, w)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "ada", registered.User.Username)
	assert.Equal(t, 0, registered.User.BookCount)

	// Login returns a fresh token.
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Identifier: "ada", Password: "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[AuthResponse](t, w).Token
	require.NotEmpty(t, token)

	// Save B1.
	w = doJSON(t, router, http.MethodPut, "/api/me/books", token, SaveBookRequest{
		BookID: "B1", Title: "Dune", Authors: []string{"Frank Herbert"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// me shows exactly [B1].
	w = doJSON(t, router, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[UserResponse](t, w)
	require.Len(t, me.SavedBooks, 1)
	assert.Equal(t, "B1", me.SavedBooks[0].BookID)
	assert.Equal(t, 1, me.BookCount)

	// Remove B1, then me shows an empty list again.
	w = doJSON(t, router, http.MethodDelete, "/api/me/books/B1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me = decode[UserResponse](t, w)
	assert.Empty(t, me.SavedBooks)
	assert.Equal(t, 0, me.BookCount)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterRequest{
		Username: "ada", Email: "ada@x.com", Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/users", "", RegisterRequest{
		Username: "other", Email: "ada@x.com", Password: "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The failed registration left nothing behind; the username is still free
	// and cannot be logged in with.
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Identifier: "other", Password: "secret123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Email: "a@x.com", Password: "secret123"}},
		{"bad email shape", RegisterRequest{Username: "ada", Email: "not-an-email", Password: "secret123"}},
		{"short password", RegisterRequest{Username: "ada", Email: "a@x.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/users", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, w).Error)
		})
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterRequest{
		Username: "ada", Email: "ada@x.com", Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	unknown := doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Identifier: "nobody", Password: "secret123",
	})
	wrongPass := doJSON(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Identifier: "ada", Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	// Same status AND same body: the response must not reveal which part was wrong.
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

func TestSaveIsIdempotentOverHTTP(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	w := doJSON(t, router, http.MethodPost, "/api/users", "", RegisterRequest{
		Username: "ada", Email: "ada@x.com", Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode[AuthResponse](t, w).Token

	save := SaveBookRequest{BookID: "B1", Title: "Dune"}
	for i := 0; i < 2; i++ {
		w = doJSON(t, router, http.MethodPut, "/api/me/books", token, save)
		require.Equal(t, http.StatusOK, w.Code)
	}
	me := decode[UserResponse](t, w)
	require.Len(t, me.SavedBooks, 1)
	assert.Equal(t, 1, me.BookCount)
	// A save without authors gets the placeholder entry.
	assert.Equal(t, []string{"No author to display"}, me.SavedBooks[0].Authors)
}

func TestMutationsRequireToken(t *testing.T) {
	router := newTestRouter(t, "http://unused.invalid")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"me", http.MethodGet, "/api/me", nil},
		{"save", http.MethodPut, "/api/me/books", SaveBookRequest{BookID: "B1", Title: "Dune"}},
		{"remove", http.MethodDelete, "/api/me/books/B1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, tt.method, tt.path, "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestSearchEndpoint(t *testing.T) {
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[
			{"id":"dune-1","volumeInfo":{"title":"Dune","authors":["Frank Herbert"]}},
			{"id":"dune-2","volumeInfo":{"title":"Dune Encyclopedia"}}
		]}`))
	}))
	defer catalog.Close()
	router := newTestRouter(t, catalog.URL)

	w := doJSON(t, router, http.MethodGet, "/api/books/search?q=dune", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[SearchResponse](t, w)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, []string{"Frank Herbert"}, resp.Items[0].Authors)
	assert.Equal(t, []string{"No author to display"}, resp.Items[1].Authors)

	w = doJSON(t, router, http.MethodGet, "/api/books/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpointCatalogDown(t *testing.T) {
	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer catalog.Close()
	router := newTestRouter(t, catalog.URL)

	w := doJSON(t, router, http.MethodGet, "/api/books/search?q=dune", "", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
