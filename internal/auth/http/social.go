package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Eatzy/auth-service/internal/auth/service"
	"github.com/Eatzy/auth-service/pkg/httpx"
	"github.com/Eatzy/auth-service/pkg/slogx"
)

// SocialHandler serves POST /v1/auth/social, invoked after an OAuth provider
// has already authenticated the user.
type SocialHandler struct {
	Reconcile *service.ReconcileService
}

type socialRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type socialResponse struct {
	Linked bool `json:"linked"`
}

func (h *SocialHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req socialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	linked, err := h.Reconcile.SocialCallback(ctx, req.Email, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrLegacyUnavailable) {
			httpx.WriteError(w, http.StatusServiceUnavailable, "legacy_unavailable")
			return
		}
		log.Error("social callback failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, socialResponse{Linked: linked})
}
