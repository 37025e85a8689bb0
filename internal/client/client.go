// File: internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"

	"github.com/google/uuid"
)

// Task is the record shape returned by the API.
type Task = task.TaskResponse

// APIError is a decoded error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// TokenSource supplies the bearer token for each request.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken always returns token.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// Client talks to the task API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c := &Client{baseURL: u, httpClient: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type successEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta common.PageMeta `json:"meta"`
}

type errorEnvelope struct {
	Status  int             `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// ListTasks fetches one listing page.
func (c *Client) ListTasks(ctx context.Context, p ListParams) (*Page, error) {
	p = p.withDefaults()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("perPage", strconv.Itoa(p.PerPage))
	q.Set("sortBy", p.SortBy)
	q.Set("sortOrder", p.SortOrder)
	for _, f := range p.filters() {
		q.Set(f[0], f[1])
	}

	env, err := c.do(ctx, http.MethodGet, TasksPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	page := &Page{Meta: env.Meta}
	if err := json.Unmarshal(env.Data, &page.Tasks); err != nil {
		return nil, fmt.Errorf("decode task page: %w", err)
	}
	return page, nil
}

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return c.record(ctx, http.MethodGet, TaskKey(id), nil)
}

func (c *Client) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*Task, error) {
	return c.record(ctx, http.MethodPost, TasksPath, req)
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, req task.UpdateTaskRequest) (*Task, error) {
	return c.record(ctx, http.MethodPut, TaskKey(id), req)
}

// DeleteTask removes a task and returns the record as it was.
func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	return c.record(ctx, http.MethodDelete, TaskKey(id), nil)
}

func (c *Client) record(ctx context.Context, method, path string, body interface{}) (*Task, error) {
	env, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	var t Task
	if err := json.Unmarshal(env.Data, &t); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &t, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*successEnvelope, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("obtain token: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeader, common.AuthorizationTypeBearer+" "+token)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		var e errorEnvelope
		if err := json.Unmarshal(raw, &e); err != nil || e.Code == "" {
			return nil, &APIError{Status: res.StatusCode, Code: common.DefaultErrorCode, Message: http.StatusText(res.StatusCode)}
		}
		return nil, &APIError{Status: res.StatusCode, Code: e.Code, Message: e.Message, Details: e.Details}
	}

	var env successEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}
