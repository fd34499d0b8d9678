package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heavenboards/user-service/pkg/metrics"
)

// DefaultTimeout bounds a single Project service call.
const DefaultTimeout = 5 * time.Second

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 << 10

// ErrProjectNotFound is returned when the Project service does not know the project.
var ErrProjectNotFound = errors.New("projects: project not found")

// StatusError reports an unexpected HTTP status from the Project service.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("projects: %s: unexpected status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("projects: %s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Member is a project participant as exchanged with the Project service.
type Member struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Project is the subset of the Project service representation this service reads and writes.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Users       []Member `json:"users,omitempty"`
}

// HasMember reports whether userID is already part of the project.
func (p *Project) HasMember(userID string) bool {
	if p == nil {
		return false
	}
	for _, member := range p.Users {
		if member.ID == userID {
			return true
		}
	}
	return false
}

// AddMember appends m unless a member with the same id is present. It reports
// whether the member set changed.
func (p *Project) AddMember(m Member) bool {
	if p == nil || m.ID == "" || p.HasMember(m.ID) {
		return false
	}
	p.Users = append(p.Users, m)
	return true
}

// Config configures the Project service client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// ServiceToken is sent when the request context carries no caller token.
	ServiceToken string
	HTTPClient   *http.Client
}

// Client talks to the Project service REST API.
type Client struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("projects: base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("projects: invalid base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:      base,
		serviceToken: strings.TrimSpace(cfg.ServiceToken),
		httpClient:   httpClient,
	}, nil
}

// FindProjectByID fetches the project. An unknown project yields ErrProjectNotFound.
func (c *Client) FindProjectByID(ctx context.Context, id string) (*Project, error) {
	const op = "find project"

	var project Project
	err := c.do(ctx, op, http.MethodGet, "/api/v1/project/"+url.PathEscape(id), nil, &project)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject replaces the project representation held by the Project service.
func (c *Client) UpdateProject(ctx context.Context, project *Project) error {
	const op = "update project"

	if project == nil || project.ID == "" {
		return errors.New("projects: update project: id is required")
	}
	return c.do(ctx, op, http.MethodPut, "/api/v1/project", project, nil)
}

// Probe checks that the Project service answers HTTP at its base URL. Any
// response below 500 counts as reachable.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("projects: probe: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("projects: probe: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return &StatusError{Operation: "probe", StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ProjectClientLatency.WithLabelValues(op, outcome(err)).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if payload != nil {
		encoded, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return fmt.Errorf("projects: %s: encode request: %w", op, marshalErr)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("projects: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokenFor(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("projects: %s: send request: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrProjectNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Operation: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("projects: %s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token := BearerTokenFrom(ctx); token != "" {
		return token
	}
	return c.serviceToken
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrProjectNotFound):
		return "not_found"
	default:
		return "error"
	}
}
