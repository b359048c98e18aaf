package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Eatzy/auth-service/internal/auth/domain"
	"github.com/Eatzy/auth-service/internal/auth/service"
	"github.com/Eatzy/auth-service/internal/auth/store"
	"github.com/Eatzy/auth-service/pkg/httpx"
	"github.com/Eatzy/auth-service/pkg/slogx"
)

// ConfigHandler serves the configuration endpoints. Reads are public but
// secret entries never cross this boundary; writes sit behind the admin
// secret middleware.
type ConfigHandler struct {
	Config *service.ConfigService
}

type configEntryPayload struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newConfigEntryPayload(e domain.ConfigEntry) configEntryPayload {
	return configEntryPayload{
		Key:         e.Key,
		Value:       e.Value,
		Description: e.Description,
		Category:    e.Category,
		UpdatedAt:   e.UpdatedAt,
	}
}

// HandleGet serves GET /v1/config/{key}. Secret entries are reported as
// missing so their existence cannot be probed.
func (h *ConfigHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	entry, err := h.Config.GetEntry(r.Context(), key)
	if errors.Is(err, service.ErrConfigNotFound) || (err == nil && entry.IsSecret) {
		httpx.WriteError(w, http.StatusNotFound, "not_found")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newConfigEntryPayload(entry))
}

// HandleList serves GET /v1/config with an optional category filter.
func (h *ConfigHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	entries := h.Config.ListEntries(r.Context(), category)
	out := make([]configEntryPayload, 0, len(entries))
	for _, e := range entries {
		if e.IsSecret {
			continue
		}
		out = append(out, newConfigEntryPayload(e))
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"entries": out})
}

type configPutRequest struct {
	Value       string `json:"value"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsSecret    bool   `json:"isSecret"`
}

// HandlePut serves PUT /v1/config/{key}.
func (h *ConfigHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	key := r.PathValue("key")

	var req configPutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Value == "" {
		httpx.WriteError(w, http.StatusBadRequest, "value is required")
		return
	}

	if err := h.Config.Set(ctx, key, req.Value, req.Description, req.Category, req.IsSecret); err != nil {
		log.Error("config write failed", "key", key, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	entry, err := h.Config.GetEntry(ctx, key)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newConfigEntryPayload(entry))
}

// HandleDelete serves DELETE /v1/config/{key}.
func (h *ConfigHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	key := r.PathValue("key")

	if err := h.Config.Delete(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found")
			return
		}
		log.Error("config delete failed", "key", key, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
