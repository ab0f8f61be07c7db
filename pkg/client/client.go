package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// APIError is a non-2xx response decoded from the gateway's error envelope.
// Detail keeps the raw "detail" value: the backend returns either a plain
// string (business errors) or a list of {"msg": ...} objects (validation).
type UnregisteredEntry struct {
	ErrorType   string `json:"error_type"`
	CompanyName string `json:"company_name"`
	ProductName string `json:"product_name"`
	NFENumber   string `json:"nfe_number"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
}

type APIError struct {
	Status              int
	Detail              json.RawMessage
	UnregisteredEntries []UnregisteredEntry
}

func (e *APIError) Error() string {
	msg := e.DetailText()
	if msg == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return msg
}

// DetailText flattens the detail field to one string. Validation lists are
// joined with commas; anything else falls back to its JSON rendering.
func (e *APIError) DetailText() string {
	if len(e.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(e.Detail, &items); err == nil && len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				parts = append(parts, it.Msg)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return string(e.Detail)
}

// Client talks to the reporting gateway. A 401 from any authenticated call
// clears the session and fires the OnSessionExpired hook exactly once per
// login, so a burst of expired requests produces a single logout.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session

	expireMu         sync.Mutex
	onSessionExpired func()

	generateBusy atomic.Bool
	downloadBusy atomic.Bool
}

type Option func(*Client)

// WithHTTPClient overrides the underlying transport, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithSessionExpiredHook registers a callback fired when the gateway rejects
// the current token.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) { c.onSessionExpired = fn }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		session: &Session{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

// do performs one request, injecting the bearer token when present and
// translating non-2xx responses into *APIError. The caller owns the body of
// a successful response.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.handleUnauthorized()
		return nil, &APIError{Status: http.StatusUnauthorized, Detail: json.RawMessage(`"Sessão expirada. Faça login novamente."`)}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

// handleUnauthorized clears the session once. If the session was already
// empty the hook does not fire again.
func (c *Client) handleUnauthorized() {
	c.expireMu.Lock()
	defer c.expireMu.Unlock()
	if c.session.Clear() && c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var envelope struct {
		Detail              json.RawMessage     `json:"detail"`
		UnregisteredEntries []UnregisteredEntry `json:"unregistered_entries"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		apiErr.Detail, _ = json.Marshal(strings.TrimSpace(string(data)))
		return apiErr
	}
	apiErr.Detail = envelope.Detail
	apiErr.UnregisteredEntries = envelope.UnregisteredEntries
	return apiErr
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	resp, err := c.do(ctx, http.MethodPost, path, "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) patchJSON(ctx context.Context, path string, in, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPatch, path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, "", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Login authenticates, stores the token and caches the profile.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.postJSON(ctx, "/api/admin/auth/login", in, &out); err != nil {
		return err
	}
	c.session.Set(out.AccessToken, nil)
	profile, err := c.Me(ctx)
	if err != nil {
		return err
	}
	c.session.SetUser(profile)
	return nil
}

// Logout revokes the server-side session and clears the local one. Local
// state is wiped even when the revoke call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.postJSON(ctx, "/api/admin/auth/logout", nil, nil)
	c.session.Clear()
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusUnauthorized {
		return nil
	}
	return err
}

func (c *Client) Me(ctx context.Context) (*UserProfile, error) {
	var p UserProfile
	if err := c.getJSON(ctx, "/api/admin/me", &p); err != nil {
		return nil, err
	}
	return &p, nil
}
