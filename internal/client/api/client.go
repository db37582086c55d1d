// Package api is a thin HTTP client for the JobTracker server, used by the CLI.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/JobTracker/internal/models"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Session is the server's reply to register and login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Client calls the server at BaseURL, authenticating with Token when set.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

// New returns a Client for baseURL. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: httpClient}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func credentials(username, password string) map[string]string {
	return map[string]string{"username": username, "password": password}
}

// Register creates an account and stores the returned token on c.
func (c *Client) Register(ctx context.Context, username, password string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/register", credentials(username, password), &s); err != nil {
		return nil, err
	}
	c.Token = s.Token
	return &s, nil
}

// Login authenticates and stores the returned token on c.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var s Session
	if err := c.do(ctx, http.MethodPost, "/login", credentials(username, password), &s); err != nil {
		return nil, err
	}
	c.Token = s.Token
	return &s, nil
}

// ChangePassword replaces the caller's password.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "/password", body, nil)
}

// Meta returns the caller's quota.
func (c *Client) Meta(ctx context.Context) (*models.Meta, error) {
	var m models.Meta
	if err := c.do(ctx, http.MethodGet, "/meta", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListApplications returns the caller's applications, optionally narrowed by
// status and a free-text query.
func (c *Client) ListApplications(ctx context.Context, status, query string) ([]models.Application, error) {
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	if query != "" {
		v.Set("q", query)
	}
	path := "/applications"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}
	var apps []models.Application
	if err := c.do(ctx, http.MethodGet, path, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// GetApplication fetches one application.
func (c *Client) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	var a models.Application
	if err := c.do(ctx, http.MethodGet, "/applications/"+url.PathEscape(id), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication adds an application.
func (c *Client) CreateApplication(ctx context.Context, in models.ApplicationInput) (*models.Application, error) {
	var a models.Application
	if err := c.do(ctx, http.MethodPost, "/applications", in, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateApplication applies a partial update.
func (c *Client) UpdateApplication(ctx context.Context, id string, patch models.ApplicationPatch) (*models.Application, error) {
	var a models.Application
	if err := c.do(ctx, http.MethodPatch, "/applications/"+url.PathEscape(id), patch, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteApplication removes an application and everything attached to it.
func (c *Client) DeleteApplication(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/applications/"+url.PathEscape(id), nil, nil)
}

// ListDeliverables returns the deliverables of an application.
func (c *Client) ListDeliverables(ctx context.Context, applicationID string) ([]models.Deliverable, error) {
	var items []models.Deliverable
	path := "/deliverables?" + url.Values{"application_id": {applicationID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateDeliverable adds a deliverable to an application.
func (c *Client) CreateDeliverable(ctx context.Context, in models.DeliverableInput) (*models.Deliverable, error) {
	var d models.Deliverable
	if err := c.do(ctx, http.MethodPost, "/deliverables", in, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDeliverable applies a partial update to a deliverable.
func (c *Client) UpdateDeliverable(ctx context.Context, id string, patch models.DeliverablePatch) (*models.Deliverable, error) {
	var d models.Deliverable
	if err := c.do(ctx, http.MethodPatch, "/deliverables/"+url.PathEscape(id), patch, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListWritingNotes returns the writing notes of an application. A non-empty
// query matches title, tags and content.
func (c *Client) ListWritingNotes(ctx context.Context, applicationID, query string) ([]models.WritingNote, error) {
	var notes []models.WritingNote
	v := url.Values{"application_id": {applicationID}}
	if query != "" {
		v.Set("q", query)
	}
	path := "/writing?" + v.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateWritingNote adds a writing note to an application.
func (c *Client) CreateWritingNote(ctx context.Context, in models.WritingNoteInput) (*models.WritingNote, error) {
	var n models.WritingNote
	if err := c.do(ctx, http.MethodPost, "/writing", in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Ask sends a message to the assistant in the context of one application.
func (c *Client) Ask(ctx context.Context, applicationID, message string, history []models.ChatTurn) (string, error) {
	body := map[string]any{
		"application_id": applicationID,
		"message":        message,
		"history":        history,
	}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := c.do(ctx, http.MethodPost, "/assistant", body, &out); err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Analytics returns the caller's dashboard summary.
func (c *Client) Analytics(ctx context.Context) (*models.Summary, error) {
	var s models.Summary
	if err := c.do(ctx, http.MethodGet, "/analytics", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
