package http

import (
	"encoding/json"
	"net/http"

	"github.com/Eatzy/auth-service/internal/auth/service"
	"github.com/Eatzy/auth-service/pkg/httpx"
	"github.com/Eatzy/auth-service/pkg/slogx"
)

// VerifyHandler serves POST /verify, the synchronous token check every
// downstream service performs per request.
type VerifyHandler struct {
	Verify *service.VerifyService
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Valid   bool                      `json:"valid"`
	User    service.VerifiedPrincipal `json:"user"`
	Session service.VerifiedSession   `json:"session"`
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "token is required")
		return
	}
	if req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "token is required")
		return
	}

	result, err := h.Verify.Verify(ctx, req.Token)
	if err != nil {
		log.Error("token verification failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !result.Valid {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, verifyResponse{
		Valid:   true,
		User:    result.Principal,
		Session: result.Session,
	})
}
