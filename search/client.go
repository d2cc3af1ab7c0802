// Package search adapts the external book catalog into the internal saved-book
// shape. The catalog is an opaque HTTP JSON source; everything it gets wrong
// (missing fields, downtime, slowness) is absorbed here.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shelfmark/server/models"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned for any catalog failure: non-2xx status,
// malformed response, network error, or timeout.
var ErrUnavailable = errors.New("search: catalog unavailable")

// volumesResponse is the shape of GET <base>?q=<term>.
type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title       string   `json:"title"`
			Authors     []string `json:"authors"`
			Description string   `json:"description"`
			ImageLinks  struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
			InfoLink string `json:"infoLink"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Client queries the external catalog with a bounded timeout and a polite
// rate limit.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		// 1 request per second, burst of 5; the catalog throttles hard.
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logger,
	}
}

// Search returns the catalog matches for term mapped into saved-book shape.
// An empty result list is a valid, non-error outcome.
func (c *Client) Search(ctx context.Context, term string) ([]models.SavedBook, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", term)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("catalog search", "term", term)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed", "error", err)
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("catalog returned non-2xx", "status", resp.StatusCode)
		return nil, ErrUnavailable
	}

	var data volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Warn("catalog response malformed", "error", err)
		return nil, ErrUnavailable
	}

	books := make([]models.SavedBook, 0, len(data.Items))
	for _, item := range data.Items {
		vi := item.VolumeInfo
		authors := vi.Authors
		if len(authors) == 0 {
			authors = []string{models.PlaceholderAuthor}
		}
		books = append(books, models.SavedBook{
			BookID:      item.ID,
			Title:       vi.Title,
			Description: vi.Description,
			Image:       vi.ImageLinks.Thumbnail,
			Link:        vi.InfoLink,
			Authors:     authors,
		})
	}
	return books, nil
}
