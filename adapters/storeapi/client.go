// Package storeapi is the client for the storage service, the separate
// microservice that owns user records, authentication details, and the
// token blacklist. All durable state lives there; this service only
// reads and appends over its REST API.
package storeapi

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

	"github.com/tmoj/authd/core"
	"github.com/tmoj/authd/ports"
)

// Client implements ports.UserStore, ports.DetailStore, and
// ports.RevocationStore against the storage service. It performs no
// retries; any transport failure is terminal for the request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ ports.UserStore       = (*Client)(nil)
	_ ports.DetailStore     = (*Client)(nil)
	_ ports.RevocationStore = (*Client)(nil)
)

// NewClient creates a storage service client. Timeouts belong to the
// transport, so they are configured here and nowhere else.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetUser resolves a username to its user record, or nil when the
// storage service does not know it.
func (c *Client) GetUser(ctx context.Context, username string) (*core.User, error) {
	var user core.User
	status, err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(username), nil, &user)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &user, nil
}

// CreateUser registers a new user record.
func (c *Client) CreateUser(ctx context.Context, user *core.User) (*core.User, error) {
	var created core.User
	status, err := c.do(ctx, http.MethodPost, "/api/users", user, &created)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("user collection missing: %w", core.ErrUpstream)
	}
	return &created, nil
}

// UpdateUser patches an existing user record, returning nil when the
// user no longer exists.
func (c *Client) UpdateUser(ctx context.Context, user *core.User) (*core.User, error) {
	var updated core.User
	status, err := c.do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(user.Username), user, &updated)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &updated, nil
}

// GetDetail fetches the stored credential for a username and method, or
// nil when none is recorded.
func (c *Client) GetDetail(ctx context.Context, username string, method core.AuthenticationMethod) (*core.AuthenticationDetail, error) {
	var detail core.AuthenticationDetail
	path := "/api/auth/" + url.PathEscape(username) + "/" + url.PathEscape(string(method))
	status, err := c.do(ctx, http.MethodGet, path, nil, &detail)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &detail, nil
}

// CreateDetail stores a new credential for a username.
func (c *Client) CreateDetail(ctx context.Context, username string, detail *core.AuthenticationDetail) error {
	status, err := c.do(ctx, http.MethodPost, "/api/auth/"+url.PathEscape(username), detail, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("detail collection missing: %w", core.ErrUpstream)
	}
	return nil
}

// UpdateDetail replaces the stored credential for a username and method.
func (c *Client) UpdateDetail(ctx context.Context, username string, detail *core.AuthenticationDetail) error {
	path := "/api/auth/" + url.PathEscape(username) + "/" + url.PathEscape(string(detail.Method))
	status, err := c.do(ctx, http.MethodPatch, path, detail, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("detail for %q: %w", detail.Method, core.ErrNotFound)
	}
	return nil
}

// Record appends a revocation for a token identifier. Recording the
// same identifier twice is not an error: an existing record is checked
// first, since the storage service rejects duplicates.
func (c *Client) Record(ctx context.Context, revocation *core.Revocation) error {
	existing, err := c.Lookup(ctx, revocation.TokenID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	status, err := c.do(ctx, http.MethodPost, "/api/blacklisted-jwts", revocation, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("blacklist collection missing: %w", core.ErrUpstream)
	}
	return nil
}

// Lookup returns the revocation filed under a token identifier, or nil
// when the identifier has never been revoked.
func (c *Client) Lookup(ctx context.Context, tokenID string) (*core.Revocation, error) {
	var revocation core.Revocation
	status, err := c.do(ctx, http.MethodGet, "/api/blacklisted-jwts/"+url.PathEscape(tokenID), nil, &revocation)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &revocation, nil
}

// do performs one request and translates the storage service's status
// contract into the local error vocabulary: 400 is invalid input, 404
// is reported to the caller as absence, 5xx and transport failures are
// upstream errors.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("storage service unreachable: %w", core.ErrUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, nil
	case resp.StatusCode == http.StatusBadRequest:
		return resp.StatusCode, fmt.Errorf("storage service rejected request: %w", core.ErrInvalidInput)
	case resp.StatusCode >= http.StatusInternalServerError:
		return resp.StatusCode, fmt.Errorf("storage service returned %d: %w", resp.StatusCode, core.ErrUpstream)
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return resp.StatusCode, fmt.Errorf("decode storage service response: %w", core.ErrUpstream)
			}
		}
		return resp.StatusCode, nil
	default:
		return resp.StatusCode, fmt.Errorf("storage service returned unexpected %d: %w", resp.StatusCode, core.ErrUpstream)
	}
}
