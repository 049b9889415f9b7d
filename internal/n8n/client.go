package n8n

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	apiBasePath    = "/api/v1"
	defaultTimeout = 30 * time.Second
)

// Client talks to the n8n public API of a single instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client for the instance at baseURL. A nil httpClient
// selects a default with a 30 second timeout.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// BaseURL returns the instance URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Workflow is the subset of the n8n workflow resource the client consumes.
type Workflow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// APIError describes a non-2xx response from the n8n API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("n8n API returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("n8n API returned status %d", e.StatusCode)
}

// CreateWorkflow posts a workflow definition and returns the created resource.
func (c *Client) CreateWorkflow(ctx context.Context, payload json.RawMessage) (*Workflow, error) {
	url := c.baseURL + apiBasePath + "/workflows"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var created Workflow
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decoding create response: %w", err)
	}

	return &created, nil
}

// ActivateWorkflow activates a previously created workflow by ID.
func (c *Client) ActivateWorkflow(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s%s/workflows/%s/activate", c.baseURL, apiBasePath, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return nil
}

// Ready probes the instance health endpoint. It returns nil once the instance
// answers with a 2xx status.
func (c *Client) Ready(ctx context.Context) error {
	return c.ReadyAt(ctx, "/healthz")
}

// ReadyAt probes the given path instead of the default health endpoint.
func (c *Client) ReadyAt(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode}
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-N8N-API-KEY", c.apiKey)
	}
}
