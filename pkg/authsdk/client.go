package authsdk

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
)

// Client talks to the auth bridge service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// AdminSecret authenticates configuration writes. Leave empty for
	// read-only and verification use.
	AdminSecret string
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SignUp registers a new account and returns the user with a fresh session.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password, "name": name}

	var out AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signup", body, &out, http.StatusCreated, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignIn authenticates an existing account and returns a fresh session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}

	var out AuthResult
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/signin", body, &out, http.StatusOK, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// SocialCallback reports whether a socially authenticated email is linked to
// a pre-existing account.
func (c *Client) SocialCallback(ctx context.Context, email, name string) (bool, error) {
	body := map[string]string{"email": email, "name": name}

	var out struct {
		Linked bool `json:"linked"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/social", body, &out, http.StatusOK, false); err != nil {
		return false, err
	}
	return out.Linked, nil
}

// Verify resolves a bearer token. An invalid or expired token returns
// Valid=false with a nil error; only transport and server failures error.
func (c *Client) Verify(ctx context.Context, token string) (*VerifyResult, error) {
	body := map[string]string{"token": token}

	var out VerifyResult
	err := c.doJSON(ctx, http.MethodPost, "/verify", body, &out, http.StatusOK, false)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return &VerifyResult{}, nil
		}
		return nil, err
	}
	return &out, nil
}

// GetConfig fetches a single non-secret configuration entry.
func (c *Client) GetConfig(ctx context.Context, key string) (*ConfigEntry, error) {
	var out ConfigEntry
	if err := c.doJSON(ctx, http.MethodGet, "/v1/config/"+url.PathEscape(key), nil, &out, http.StatusOK, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListConfig fetches non-secret entries, optionally filtered by category.
func (c *Client) ListConfig(ctx context.Context, category string) ([]ConfigEntry, error) {
	path := "/v1/config"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}

	var out struct {
		Entries []ConfigEntry `json:"entries"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out, http.StatusOK, false); err != nil {
		return nil, err
	}
	return out.Entries, nil
}

// SetConfig upserts a configuration entry. Requires AdminSecret.
func (c *Client) SetConfig(ctx context.Context, key string, write ConfigWrite) (*ConfigEntry, error) {
	var out ConfigEntry
	if err := c.doJSON(ctx, http.MethodPut, "/v1/config/"+url.PathEscape(key), write, &out, http.StatusOK, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConfig removes a configuration entry. Requires AdminSecret.
func (c *Client) DeleteConfig(ctx context.Context, key string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/v1/config/"+url.PathEscape(key), nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, admin bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+c.AdminSecret)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, target any, expectedStatus int, admin bool) error {
	resp, err := c.do(ctx, method, path, body, admin)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, respBody)
	}

	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
