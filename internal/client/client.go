// Package client is the Go client for the SnipStash HTTP API plus the
// Session type that keeps a local view-model in sync with it.
package client

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

	"github.com/rajnsunny/SnipStash/internal/apperror"
	"github.com/rajnsunny/SnipStash/internal/model"
)

// Client talks to a SnipStash server. It is safe for sequential use;
// calls require a context and return apperror-tagged errors so callers
// can use errors.Is to distinguish 400/401/403/404/409.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the server at baseURL (e.g.
// "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token sent on subsequent requests.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token, if any.
func (c *Client) Token() string { return c.token }

// SnippetPayload is the body of create and update calls.
type SnippetPayload struct {
	Title       string         `json:"title"`
	Code        string         `json:"code"`
	Language    model.Language `json:"programmingLanguage"`
	Description string         `json:"description,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// AuthResult is the server's response to register and login.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// errorPayload mirrors the server's ErrorResponse shape.
type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends a request and decodes the JSON response into out (which may
// be nil for 204s). Non-2xx responses become apperror-tagged errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("client: decoding response: %w", err)
		}
	}
	return nil
}

// decodeError turns a non-2xx response into an error carrying the
// matching apperror sentinel, so the CLI can react to the kind rather
// than parse status codes.
func decodeError(resp *http.Response) error {
	var payload errorPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Message == "" {
		return fmt.Errorf("client: server returned %s", resp.Status)
	}

	kind := map[string]error{
		"validation_error": apperror.ErrValidation,
		"unauthorized":     apperror.ErrUnauthorized,
		"forbidden":        apperror.ErrForbidden,
		"not_found":        apperror.ErrNotFound,
		"conflict":         apperror.ErrConflict,
	}[payload.Error]
	if kind == nil {
		return fmt.Errorf("client: server returned %s: %s", resp.Status, payload.Message)
	}

	return &apperror.AppError{Err: kind, Message: payload.Message}
}

// Register creates an account and returns the issued token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Login verifies credentials and returns the issued token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns the profile behind the current token.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// List fetches the full collection, newest first.
func (c *Client) List(ctx context.Context) ([]model.Snippet, error) {
	var snippets []model.Snippet
	if err := c.do(ctx, http.MethodGet, "/api/snippets", nil, &snippets); err != nil {
		return nil, err
	}
	return snippets, nil
}

// Search runs the server-side filter pipeline. Zero-value criteria
// return the full collection.
func (c *Client) Search(ctx context.Context, criteria model.Criteria) ([]model.Snippet, error) {
	q := url.Values{}
	if criteria.Text != "" {
		q.Set("query", criteria.Text)
	}
	if criteria.Language != "" {
		q.Set("programmingLanguage", string(criteria.Language))
	}
	if criteria.Tag != "" {
		q.Set("tag", criteria.Tag)
	}

	path := "/api/snippets/search"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var snippets []model.Snippet
	if err := c.do(ctx, http.MethodGet, path, nil, &snippets); err != nil {
		return nil, err
	}
	return snippets, nil
}

// Get fetches one snippet by ID.
func (c *Client) Get(ctx context.Context, id string) (*model.Snippet, error) {
	var snippet model.Snippet
	if err := c.do(ctx, http.MethodGet, "/api/snippets/"+url.PathEscape(id), nil, &snippet); err != nil {
		return nil, err
	}
	return &snippet, nil
}

// Create saves a new snippet and returns it with the server-assigned ID
// and tags.
func (c *Client) Create(ctx context.Context, payload SnippetPayload) (*model.Snippet, error) {
	var snippet model.Snippet
	if err := c.do(ctx, http.MethodPost, "/api/snippets", payload, &snippet); err != nil {
		return nil, err
	}
	return &snippet, nil
}

// Update replaces a snippet's fields and returns the stored result.
func (c *Client) Update(ctx context.Context, id string, payload SnippetPayload) (*model.Snippet, error) {
	var snippet model.Snippet
	if err := c.do(ctx, http.MethodPut, "/api/snippets/"+url.PathEscape(id), payload, &snippet); err != nil {
		return nil, err
	}
	return &snippet, nil
}

// Delete removes a snippet.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/snippets/"+url.PathEscape(id), nil, nil)
}
