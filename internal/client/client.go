// Package client talks to the data room HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
)

// Client is an API client. Token is sent as a bearer token when set;
// share link reads need no token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the API at baseURL
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response decoded from its problem details body
type APIError struct {
	Status int
	Title  string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Title)
}

// Unwrap maps status codes back to domain sentinels for errors.Is
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest:
		return domain.ErrValidation
	}
	return nil
}

// DefaultDataroom returns the caller's default room with its nodes
func (c *Client) DefaultDataroom(ctx context.Context) (*models.DataroomWithNodes, error) {
	var room models.DataroomWithNodes
	if err := c.get(ctx, "/api/datarooms/default", nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListDatarooms returns the caller's rooms
func (c *Client) ListDatarooms(ctx context.Context) ([]models.Dataroom, error) {
	var rooms []models.Dataroom
	if err := c.get(ctx, "/api/datarooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetDataroom returns one room with its nodes
func (c *Client) GetDataroom(ctx context.Context, id string) (*models.DataroomWithNodes, error) {
	var room models.DataroomWithNodes
	if err := c.get(ctx, "/api/datarooms/"+url.PathEscape(id), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// Shared returns what a share link exposes, navigated to path
func (c *Client) Shared(ctx context.Context, token, path string) (*models.SharedView, error) {
	var query url.Values
	if path != "" {
		query = url.Values{"path": {path}}
	}
	var view models.SharedView
	if err := c.get(ctx, "/api/share/"+url.PathEscape(token), query, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &problem); err == nil {
		if problem.Title != "" {
			apiErr.Title = problem.Title
		}
		apiErr.Detail = problem.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(body))
	}
	return apiErr
}
