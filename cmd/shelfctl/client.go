package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shelfmark/server/handlers"
	"github.com/shelfmark/server/models"
)

// apiClient talks to the shelfmark server's HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr handlers.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s", apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) register(ctx context.Context, username, email, password string) (*handlers.AuthResponse, error) {
	var out handlers.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/users", handlers.RegisterRequest{
		Username: username, Email: email, Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) login(ctx context.Context, identifier, password string) (*handlers.AuthResponse, error) {
	var out handlers.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", handlers.LoginRequest{
		Identifier: identifier, Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) me(ctx context.Context) (*handlers.UserResponse, error) {
	var out handlers.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) search(ctx context.Context, term string) ([]models.SavedBook, error) {
	var out handlers.SearchResponse
	path := "/api/books/search?q=" + url.QueryEscape(term)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *apiClient) save(ctx context.Context, book models.SavedBook) (*handlers.UserResponse, error) {
	var out handlers.UserResponse
	err := c.do(ctx, http.MethodPut, "/api/me/books", handlers.SaveBookRequest{
		BookID:      book.BookID,
		Title:       book.Title,
		Description: book.Description,
		Image:       book.Image,
		Link:        book.Link,
		Authors:     book.Authors,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) remove(ctx context.Context, bookID string) (*handlers.UserResponse, error) {
	var out handlers.UserResponse
	if err := c.do(ctx, http.MethodDelete, "/api/me/books/"+bookID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
