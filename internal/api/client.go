package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"taskdesk/internal/guard"
	"taskdesk/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "TASKDESK_HTTP_TIMEOUT"
	userEnvKey         = "TASKDESK_USER"
	passwordEnvKey     = "TASKDESK_PASSWORD"
	adminTokenEnvKey   = "TASKDESK_ADMIN_TOKEN"
	requestIDHeader    = "X-Request-ID"
)

// Client is a simple HTTP client for the taskdesk API.
type Client struct {
	baseURL    string
	http       *http.Client
	username   string
	password   string
	adminToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: httpTimeoutFromEnv()},
		username:   strings.TrimSpace(os.Getenv(userEnvKey)),
		password:   os.Getenv(passwordEnvKey),
		adminToken: strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
	}
}

// WithUser sets the username used for basic auth when the environment does not name one.
func (c *Client) WithUser(username string) *Client {
	if c.username == "" {
		c.username = strings.TrimSpace(username)
	}
	return c
}

// Username returns the acting username, if known.
func (c *Client) Username() string {
	return c.username
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) Info(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

// Me resolves the acting user. Without server auth the configured username is used.
func (c *Client) Me(ctx context.Context) (MeResponse, error) {
	var resp MeResponse
	query := url.Values{}
	if c.username != "" {
		query.Set("username", c.username)
	}
	err := c.do(ctx, http.MethodGet, "/v1/me", query, nil, &resp)
	return resp, err
}

func (c *Client) ListTasks(ctx context.Context, query TaskListQuery) ([]models.Task, error) {
	var resp []models.Task
	err := c.do(ctx, http.MethodGet, "/v1/tasks", query.Values(), nil, &resp)
	return resp, err
}

func (c *Client) CreateTask(ctx context.Context, req TaskCreateRequest) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPost, "/v1/tasks", nil, req, &resp)
	return resp, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, req TaskUpdateRequest) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPatch, "/v1/tasks/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) MarkTasksComplete(ctx context.Context, taskIDs []string, completedBy string) (models.BulkResult, error) {
	return c.Transition(ctx, guard.Complete, taskIDs, completedBy)
}

func (c *Client) FirstVerifyTasks(ctx context.Context, taskIDs []string, verifiedBy string) (models.BulkResult, error) {
	return c.Transition(ctx, guard.FirstVerify, taskIDs, verifiedBy)
}

func (c *Client) SecondVerifyTasks(ctx context.Context, taskIDs []string, verifiedBy string) (models.BulkResult, error) {
	return c.Transition(ctx, guard.SecondVerify, taskIDs, verifiedBy)
}

// Transition sends one bulk transition request for all ids.
func (c *Client) Transition(ctx context.Context, kind guard.Transition, taskIDs []string, actorID string) (models.BulkResult, error) {
	return c.SendTransition(ctx, kind, NewTransitionRequest(kind, taskIDs, actorID))
}

// SendTransition posts a prepared body to the endpoint for kind.
func (c *Client) SendTransition(ctx context.Context, kind guard.Transition, req TransitionRequest) (models.BulkResult, error) {
	var resp models.BulkResult
	err := c.do(ctx, http.MethodPost, TransitionPath(kind), nil, req, &resp)
	return resp, err
}

func (c *Client) CreateProject(ctx context.Context, req ProjectCreateRequest) (models.Project, error) {
	var resp models.Project
	err := c.do(ctx, http.MethodPost, "/v1/projects", nil, req, &resp)
	return resp, err
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var resp []models.Project
	err := c.do(ctx, http.MethodGet, "/v1/projects", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateUser(ctx context.Context, req UserCreateRequest) (UserResponse, error) {
	var resp UserResponse
	err := c.do(ctx, http.MethodPost, "/v1/admin/users", nil, req, &resp)
	return resp, err
}

func (c *Client) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var resp []UserResponse
	err := c.do(ctx, http.MethodGet, "/v1/admin/users", nil, nil, &resp)
	return resp, err
}

func (c *Client) UpsertRole(ctx context.Context, req RoleRequest) (models.Role, error) {
	var resp models.Role
	err := c.do(ctx, http.MethodPost, "/v1/admin/roles", nil, req, &resp)
	return resp, err
}

// Import provisions a workspace from a flattened fixture.
func (c *Client) Import(ctx context.Context, req ImportRequest) (ImportResponse, error) {
	var resp ImportResponse
	err := c.do(ctx, http.MethodPost, "/v1/admin/import", nil, req, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)
	if strings.HasPrefix(path, "/v1/admin/") {
		c.setAdminHeader(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("api error: %s", resp.Status)
	if id := resp.Header.Get(requestIDHeader); id != "" {
		apiErr.Message += " (request " + id + ")"
	}
	return apiErr
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.username == "" || c.password == "" || req == nil {
		return
	}
	req.SetBasicAuth(c.username, c.password)
}

func (c *Client) setAdminHeader(req *http.Request) {
	if c.adminToken == "" || req == nil {
		return
	}
	req.Header.Set("X-Admin-Token", c.adminToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
