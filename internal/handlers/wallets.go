package handlers

import (
	"net/http"

	"paygate/internal/middleware"
	"paygate/internal/money"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListWallets(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallets, err := h.wallets.ListByMerchant(r.Context(), merchantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load wallets")
		return
	}
	normalized := make([]map[string]any, 0, len(wallets))
	for _, wallet := range wallets {
		normalized = append(normalized, map[string]any{
			"id":         wallet.ID,
			"type":       wallet.Type,
			"address":    wallet.Address,
			"currency":   wallet.Currency,
			"balance":    money.FormatMinor(wallet.CalculatedBalance, wallet.Currency),
			"display":    money.Display(wallet.CalculatedBalance, wallet.Currency),
			"is_active":  wallet.IsActive,
			"created_at": wallet.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	walletID := chi.URLParam(r, "id")
	wallet, err := h.wallets.GetByID(r.Context(), walletID)
	if err != nil {
		respondError(w, http.StatusNotFound, "wallet not found")
		return
	}
	if wallet.MerchantID == nil || *wallet.MerchantID != merchantID {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}
	// The ledger is the source of truth; the stored column is a cache of it.
	balanceMinor, err := h.ledger.SumByWallet(r.Context(), walletID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load balance")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"wallet_id": walletID,
		"currency":  wallet.Currency,
		"balance":   displayAmount(balanceMinor, wallet.Currency),
	})
}

// SelfCheck reconciles each wallet's stored balance against the sum of its
// ledger entries. A nonzero difference means the books are off.
func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallets, err := h.wallets.ListByMerchant(r.Context(), merchantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to self_check")
		return
	}
	response := make([]map[string]any, 0, len(wallets))
	for _, wallet := range wallets {
		response = append(response, map[string]any{
			"wallet_id":      wallet.ID,
			"currency":       wallet.Currency,
			"wallet_balance": money.FormatMinor(wallet.StoredBalance, wallet.Currency),
			"ledger_sum":     money.FormatMinor(wallet.CalculatedBalance, wallet.Currency),
			"difference":     money.FormatMinor(wallet.Difference, wallet.Currency),
		})
	}
	respondJSON(w, http.StatusOK, response)
}
