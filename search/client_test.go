package search

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shelfmark/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoItemFixture = `{
	"items": [
		{
			"id": "dune-1",
			"volumeInfo": {
				"title": "Dune",
				"authors": ["Frank Herbert"],
				"description": "Desert planet.",
				"imageLinks": {"thumbnail": "http://img/dune.jpg"},
				"infoLink": "http://catalog/dune"
			}
		},
		{
			"id": "dune-2",
			"volumeInfo": {
				"title": "Dune Encyclopedia"
			}
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(server.URL, 2*time.Second, logger)
}

func TestSearchMapsItems(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(twoItemFixture))
	})

	books, err := client.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, "dune", gotQuery)
	require.Len(t, books, 2)

	assert.Equal(t, models.SavedBook{
		BookID:      "dune-1",
		Title:       "Dune",
		Description: "Desert planet.",
		Image:       "http://img/dune.jpg",
		Link:        "http://catalog/dune",
		Authors:     []string{"Frank Herbert"},
	}, books[0])

	// Missing author list becomes a single placeholder entry.
	assert.Equal(t, []string{models.PlaceholderAuthor}, books[1].Authors)
	assert.Empty(t, books[1].Description)
	assert.Empty(t, books[1].Image)
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	books, err := client.Search(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestSearchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"items": [`))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Search(context.Background(), "dune")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestSearchTimesOutInsteadOfHanging(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})
	client.http.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := client.Search(context.Background(), "dune")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}
