package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes the service returns in the {"error": ...} body.
const (
	ErrorCodeAlreadyExists      = "already_exists"
	ErrorCodeNotRegistered      = "not_registered"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeLegacyUnavailable  = "legacy_unavailable"
	ErrorCodeLegacyCreateFailed = "legacy_create_failed"
	ErrorCodeServerError        = "server_error"
	ErrorCodeUnauthorized       = "unauthorized"
	ErrorCodeNotFound           = "not_found"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service: %s (HTTP %d)", e.Code, e.StatusCode)
}

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var errResp APIError
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		errResp.StatusCode = resp.StatusCode
		return &errResp
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCodeServerError,
	}
}
