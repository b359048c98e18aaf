package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Eatzy/auth-service/internal/auth/service"
	"github.com/Eatzy/auth-service/pkg/httpx"
	"github.com/Eatzy/auth-service/pkg/slogx"
)

// SignUpHandler serves POST /v1/auth/signup.
type SignUpHandler struct {
	Reconcile *service.ReconcileService
	Sessions  *service.SessionService
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *SignUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	result, err := h.Reconcile.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyExists):
			httpx.WriteError(w, http.StatusConflict, "already_exists")
		case errors.Is(err, service.ErrLegacyCreateFailed):
			httpx.WriteError(w, http.StatusBadGateway, "legacy_create_failed")
		case errors.Is(err, service.ErrLegacyUnavailable):
			httpx.WriteError(w, http.StatusServiceUnavailable, "legacy_unavailable")
		default:
			log.Error("sign-up failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		}
		return
	}

	session, err := h.Sessions.Issue(ctx, result.Principal.ID)
	if err != nil {
		log.Error("session issuance failed after sign-up", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authResponse{
		User:    newUserPayload(result.Principal),
		Session: newSessionPayload(session),
	})
}
