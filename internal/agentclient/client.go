// Package agentclient lets a cracking agent talk to the dashboard API.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// ErrNotRegistered is returned by calls that need an agent id before Register ran
var ErrNotRegistered = errors.New("agent is not registered")

// StatusError is a non-success API response
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Client reports agent state, task progress and cracked hashes
type Client struct {
	baseURL    string
	apiToken   string
	hostname   string
	agentID    string
	httpClient *http.Client
}

// New creates a client for the dashboard at baseURL
func New(baseURL, apiToken string) *Client {
	hostname, _ := os.Hostname()

	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		hostname: hostname,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient replaces the default HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// AgentID returns the id assigned at registration
func (c *Client) AgentID() string {
	return c.agentID
}

// Register announces the agent. The returned agent carries its API key,
// which the dashboard never shows again.
func (c *Client) Register(ctx context.Context, name string) (*domain.Agent, error) {
	body := domain.CreateAgentRequest{
		Name:     name,
		Hostname: c.hostname,
	}

	var agent domain.Agent
	if err := c.send(ctx, http.MethodPost, "/api/v1/agents", body, http.StatusCreated, &agent); err != nil {
		return nil, fmt.Errorf("failed to register agent: %w", err)
	}

	c.agentID = agent.ID

	return &agent, nil
}

// Heartbeat reports the agent status and the task it works on
func (c *Client) Heartbeat(ctx context.Context, status domain.AgentStatus, currentTaskID *uuid.UUID) error {
	if c.agentID == "" {
		return ErrNotRegistered
	}

	body := domain.AgentHeartbeat{
		AgentID:       c.agentID,
		Hostname:      c.hostname,
		Status:        status,
		CurrentTaskID: currentTaskID,
	}

	if err := c.send(ctx, http.MethodPost, "/api/v1/agents/heartbeat", body, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to send heartbeat: %w", err)
	}

	return nil
}

// ReportProgress updates a task's progress, speed and optionally its status
func (c *Client) ReportProgress(ctx context.Context, taskID uuid.UUID, update domain.TaskProgressUpdate) error {
	path := fmt.Sprintf("/api/v1/tasks/%s/progress", taskID)

	if err := c.send(ctx, http.MethodPatch, path, update, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("failed to report progress: %w", err)
	}

	return nil
}

// SubmitResults uploads cracked hashes and returns how many were stored
func (c *Client) SubmitResults(ctx context.Context, taskID uuid.UUID, cracked []domain.CrackedHash) (int, error) {
	batch := domain.ResultBatch{
		TaskID:  taskID,
		Results: cracked,
	}
	if c.agentID != "" {
		id := c.agentID
		batch.AgentID = &id
	}

	var out struct {
		Stored int `json:"stored"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/v1/results", batch, http.StatusCreated, &out); err != nil {
		return 0, fmt.Errorf("failed to submit results: %w", err)
	}

	return out.Stored, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any, want int, out any) error {
	var bodyReader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return parseError(resp)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var apiErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return &StatusError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	}

	return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Message}
}
