package handlers

import (
	"encoding/json"
	"net/http"

	"paygate/internal/middleware"
	"paygate/internal/services"

	"github.com/go-chi/chi/v5"
)

type issueKeyRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) IssueAPIKey(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req issueKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	issued, err := h.keys.Issue(r.Context(), merchantID, req.Name, req.Permissions)
	if err != nil {
		if err == services.ErrNoPermissions {
			respondError(w, http.StatusBadRequest, "permissions_required")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	// The secret appears in this response and nowhere else.
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":          issued.Key.ID,
		"key_number":  issued.Key.KeyNumber,
		"name":        issued.Key.Name,
		"public_key":  issued.Key.PublicKey,
		"secret_key":  issued.SecretKey,
		"permissions": issued.Key.Permissions,
		"status":      issued.Key.Status,
		"created_at":  issued.Key.CreatedAt,
	})
}

func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	keys, err := h.apiKeys.ListByMerchant(r.Context(), merchantID, parseListFilter(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load api keys")
		return
	}
	respondJSON(w, http.StatusOK, keys)
}

func (h *Handler) DisableAPIKey(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.keys.Disable(r.Context(), merchantID, chi.URLParam(r, "id")); err != nil {
		if err == services.ErrKeyNotFound {
			respondError(w, http.StatusNotFound, "api key not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "disable_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
}
