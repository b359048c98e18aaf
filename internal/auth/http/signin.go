package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Eatzy/auth-service/internal/auth/service"
	"github.com/Eatzy/auth-service/pkg/httpx"
	"github.com/Eatzy/auth-service/pkg/slogx"
)

// SignInHandler serves POST /v1/auth/signin.
type SignInHandler struct {
	Reconcile *service.ReconcileService
	Sessions  *service.SessionService
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.Reconcile.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotRegistered):
			httpx.WriteError(w, http.StatusNotFound, "not_registered")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials")
		case errors.Is(err, service.ErrLegacyUnavailable):
			httpx.WriteError(w, http.StatusServiceUnavailable, "legacy_unavailable")
		default:
			log.Error("sign-in failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	session, err := h.Sessions.Issue(ctx, result.Principal.ID)
	if err != nil {
		log.Error("session issuance failed after sign-in", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authResponse{
		User:    newUserPayload(result.Principal),
		Session: newSessionPayload(session),
	})
}
