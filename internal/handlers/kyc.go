package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"paygate/internal/ident"
	"paygate/internal/middleware"
	"paygate/internal/models"

	"github.com/jmoiron/sqlx"
)

var kycDocumentTypes = map[string]bool{
	"business_registration": true,
	"tax_certificate":       true,
	"bank_statement":        true,
	"identity_proof":        true,
}

type submitKYCRequest struct {
	Type     string `json:"type"`
	FileName string `json:"file_name"`
}

func (h *Handler) SubmitKYCDocument(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req submitKYCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !kycDocumentTypes[req.Type] {
		respondError(w, http.StatusBadRequest, "invalid_document_type")
		return
	}
	if req.FileName == "" {
		respondError(w, http.StatusBadRequest, "file_name_required")
		return
	}
	document := models.KYCDocument{
		ID:         h.gen.EntityID(),
		MerchantID: merchantID,
		Type:       req.Type,
		FileName:   req.FileName,
		Status:     "pending",
		CreatedAt:  time.Now().UTC(),
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		sequence, err := h.sequences.Next(r.Context(), tx, merchantID, "kyc_document")
		if err != nil {
			return err
		}
		document.DocumentNumber = ident.DocumentNumber(ident.PrefixDocument, sequence)
		if err := h.kyc.Create(r.Context(), tx, document); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"document_number": document.DocumentNumber,
			"type":            document.Type,
		})
		return h.audit.Log(r.Context(), tx, merchantID, "kyc.submit", "kyc_document", document.ID, string(data))
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "kyc_submit_failed")
		return
	}
	respondJSON(w, http.StatusCreated, document)
}

func (h *Handler) ListKYCDocuments(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	documents, err := h.kyc.ListByMerchant(r.Context(), merchantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load documents")
		return
	}
	respondJSON(w, http.StatusOK, documents)
}
