package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"paygate/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
)

var errAlreadyReviewed = errors.New("document already reviewed")

func (h *Handler) AdminListMerchants(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)
	merchants, err := h.merchants.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load merchants")
		return
	}
	normalized := make([]map[string]any, 0, len(merchants))
	for _, merchant := range merchants {
		normalized = append(normalized, map[string]any{
			"id":            merchant.ID,
			"business_name": merchant.BusinessName,
			"email":         merchant.Email,
			"kyc_status":    merchant.KYCStatus,
			"created_at":    merchant.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)
	transactions, err := h.transactions.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, transaction := range transactions {
		payload := transactionJSON(transaction)
		payload["merchant_id"] = transaction.MerchantID
		normalized = append(normalized, payload)
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) AdminListPendingKYC(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)
	documents, err := h.kyc.ListPending(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load documents")
		return
	}
	respondJSON(w, http.StatusOK, documents)
}

type reviewKYCRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// AdminReviewKYC settles a pending document. A verified document flips the
// merchant's KYC status to verified; a rejection flips it to rejected.
func (h *Handler) AdminReviewKYC(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req reviewKYCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Status != "verified" && req.Status != "rejected" {
		respondError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	if req.Status == "rejected" && req.Reason == "" {
		respondError(w, http.StatusBadRequest, "reason_required")
		return
	}
	documentID := chi.URLParam(r, "id")
	document, err := h.kyc.GetByID(r.Context(), documentID)
	if err != nil {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		reviewed, err := h.kyc.Review(r.Context(), tx, documentID, req.Status, req.Reason)
		if err != nil {
			return err
		}
		if reviewed == 0 {
			return errAlreadyReviewed
		}
		if err := h.merchants.UpdateKYCStatus(r.Context(), tx, document.MerchantID, req.Status); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"document_number": document.DocumentNumber,
			"status":          req.Status,
			"reason":          req.Reason,
		})
		return h.audit.Log(r.Context(), tx, reviewerID, "kyc.review", "kyc_document", documentID, string(data))
	})
	if err != nil {
		if err == errAlreadyReviewed {
			respondError(w, http.StatusConflict, "document_already_reviewed")
			return
		}
		respondError(w, http.StatusInternalServerError, "review_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

type promoteRequest struct {
	MerchantID string `json:"merchant_id"`
}

func (h *Handler) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, isSuper, err := h.admin.IsAdmin(r.Context(), actorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify admin")
		return
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_admin_required")
		return
	}
	var req promoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MerchantID == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if _, err := h.merchants.GetByID(r.Context(), req.MerchantID); err != nil {
		respondError(w, http.StatusNotFound, "merchant not found")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.CreateAdmin(r.Context(), tx, req.MerchantID, false, &actorID); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"target_merchant_id": req.MerchantID})
		return h.audit.Log(r.Context(), tx, actorID, "promote_admin", "admin", req.MerchantID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to promote admin")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "promoted"})
}

type grantRoleRequest struct {
	MerchantID string `json:"merchant_id"`
	Role       string `json:"role"`
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, isSuper, err := h.admin.IsAdmin(r.Context(), actorID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify admin")
		return
	}
	if !isSuper {
		respondError(w, http.StatusForbidden, "super_admin_required")
		return
	}
	var req grantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MerchantID == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	isAdmin, targetSuper, err := h.admin.IsAdmin(r.Context(), req.MerchantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to verify target admin")
		return
	}
	if !isAdmin {
		respondError(w, http.StatusBadRequest, "target is not an admin")
		return
	}
	if targetSuper {
		respondError(w, http.StatusBadRequest, "cannot assign roles to super admin")
		return
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.admin.GrantRole(r.Context(), tx, req.MerchantID, req.Role); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"merchant_id": req.MerchantID,
			"role":        req.Role,
		})
		return h.audit.Log(r.Context(), tx, actorID, "grant_role", "admin_role", req.MerchantID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to grant role")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"status": "role_granted"})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r)
	rows, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
