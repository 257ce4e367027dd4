// Package client is a small HTTP client for the task API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/taskflow/core/internal/domain/entities"
)

// APIError is a non-2xx response from the API
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("api error: %s", http.StatusText(e.Status))
	}
	return strings.Join(e.Messages, " ")
}

// NotFound reports whether the API answered 404
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// NewTask is the body of a create request
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
}

// TaskChanges is the body of an update request; empty fields are left alone
type TaskChanges struct {
	Status      string `json:"status,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	Description string `json:"description,omitempty"`
}

// Client talks to /api/tasks
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:8080
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// List returns every task
func (c *Client) List(ctx context.Context) ([]entities.Task, error) {
	tasks := []entities.Task{}
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get returns one task
func (c *Client) Get(ctx context.Context, id int64) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create stores a new task and returns it with its id
func (c *Client) Create(ctx context.Context, t NewTask) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", t, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies changes and returns the updated task
func (c *Client) Update(ctx context.Context, id int64, changes TaskChanges) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPatch, taskPath(id), changes, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return fmt.Sprintf("/api/tasks/%d", id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		switch {
		case len(body.Errors) > 0:
			apiErr.Messages = body.Errors
		case body.Error != "":
			apiErr.Messages = []string{body.Error}
		}
	}

	return apiErr
}
