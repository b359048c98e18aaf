// Package legacy is the HTTP client for the pre-existing identity store.
// The legacy store remains the source of truth for which emails were
// registered before this service existed, so reconciliation consults it on
// every sign-up and sign-in.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
)

const secretHeader = "X-Service-Secret"

var (
	// ErrUnavailable covers transport failures, timeouts and 5xx answers.
	// Callers must never treat it as "user does not exist".
	ErrUnavailable = errors.New("legacy: store unavailable")

	// ErrUnauthorized is the legacy store rejecting a credential check.
	ErrUnauthorized = errors.New("legacy: invalid credentials")
)

// CreateError carries the legacy store's own failure detail when user
// creation is rejected, so sign-up can surface the cause.
type CreateError struct {
	Detail string
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("legacy: create user failed: %s", e.Detail)
}

// Client talks to the legacy store's account API. Existence checks and user
// creation require the shared secret; credential authorization does not.
type Client struct {
	BaseURL    string
	Secret     string
	HTTPClient *http.Client
}

// NewClient creates a legacy store client with a bounded request timeout.
// Every call this client makes sits on a sign-up or sign-in hot path, so it
// must never hang on a slow legacy store.
func NewClient(baseURL, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Secret:  secret,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type checkUserRequest struct {
	Email string `json:"email"`
}

type checkUserResponse struct {
	Exists bool               `json:"exists"`
	User   *domain.LegacyUser `json:"user,omitempty"`
}

// CheckUser asks the legacy store whether an account exists for the email.
// The snapshot is nil when the account does not exist.
func (c *Client) CheckUser(ctx context.Context, email string) (bool, *domain.LegacyUser, error) {
	var out checkUserResponse
	err := c.post(ctx, "/account/check-user", checkUserRequest{Email: email}, &out, true)
	if err != nil {
		return false, nil, err
	}
	return out.Exists, out.User, nil
}

type authorizeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authorizeResponse struct {
	Access struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	} `json:"access"`
	Refresh    string   `json:"refresh,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	ExternalID string   `json:"external_id,omitempty"`
}

// Authorize verifies a credential against the legacy store. The credential
// is pre-hashed by the caller's client; this service passes it through as an
// opaque string and never interprets its encoding.
func (c *Client) Authorize(ctx context.Context, username, credential string) (domain.LegacyAuthorization, error) {
	var out authorizeResponse
	err := c.post(ctx, "/account/authorize", authorizeRequest{
		Username: username,
		Password: credential,
	}, &out, false)
	if err != nil {
		return domain.LegacyAuthorization{}, err
	}

	return domain.LegacyAuthorization{
		AccessToken: out.Access.Token,
		ExpiresIn:   out.Access.ExpiresIn,
		ExternalID:  out.ExternalID,
		Roles:       out.Roles,
	}, nil
}

// CreateUserParams are the fields the legacy create-user operation takes.
type CreateUserParams struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Username  string `json:"username"`
}

type createUserResponse struct {
	Created bool               `json:"created"`
	Error   string             `json:"error,omitempty"`
	User    *domain.LegacyUser `json:"user,omitempty"`
}

// CreateUser provisions an account in the legacy store. A rejected creation
// comes back as a *CreateError carrying the legacy store's detail.
func (c *Client) CreateUser(ctx context.Context, params CreateUserParams) (*domain.LegacyUser, error) {
	var out createUserResponse
	if err := c.post(ctx, "/account/create-user", params, &out, true); err != nil {
		return nil, err
	}
	if !out.Created {
		detail := out.Error
		if detail == "" {
			detail = "creation rejected"
		}
		return nil, &CreateError{Detail: detail}
	}
	return out.User, nil
}

// post sends a JSON body and decodes a JSON answer. Transport errors and 5xx
// statuses map to ErrUnavailable; 4xx statuses map to ErrUnauthorized, which
// only the authorize operation legitimately produces.
func (c *Client) post(ctx context.Context, path string, in, out any, withSecret bool) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("legacy: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("legacy: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if withSecret {
		req.Header.Set(secretHeader, c.Secret)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("legacy: failed to decode response: %w", err)
	}
	return nil
}
