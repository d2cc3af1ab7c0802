package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shelfmark/server/auth"
	"github.com/shelfmark/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"valid", "Bearer abc123", "abc123", true},
		{"missing header", "", "", false},
		{"wrong scheme", "Basic abc123", "", false},
		{"no credential", "Bearer ", "", false},
		{"scheme only", "Bearer", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(r)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour)
	user := &models.User{ID: primitive.NewObjectID(), Username: "ada", Email: "ada@x.com"}
	token, err := tokens.Issue(user)
	require.NoError(t, err)

	var gotID primitive.ObjectID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
		w.WriteHeader(http.StatusOK)
	})
	protected := Auth(tokens)(next)

	t.Run("valid token reaches handler", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, user.ID, gotID)
	})

	t.Run("missing token rejected before handler", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := auth.NewTokenService("test-secret", -time.Minute)
		stale, err := expired.Issue(user)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+stale)
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, r)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMetricsHandlerPassesThrough(t *testing.T) {
	m := NewMetrics()
	wrapped := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, r)
	assert.Equal(t, http.StatusTeapot, w.Code)
}
