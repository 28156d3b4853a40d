package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paygate/internal/export"
	"paygate/internal/middleware"
	"paygate/internal/models"
	"paygate/internal/money"
	"paygate/internal/services"
)

const summaryCacheTTL = 30 * time.Second

type createPaymentRequest struct {
	WalletID  string `json:"wallet_id"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if !money.IsSupported(req.Currency) {
		respondError(w, http.StatusBadRequest, "unsupported_currency")
		return
	}
	amountMinor, err := parseAmountMinor(req.Amount, req.Currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	transaction, err := h.payments.CreatePayment(r.Context(), services.CreatePaymentRequest{
		MerchantID:  merchantID,
		WalletID:    req.WalletID,
		AmountMinor: amountMinor,
		Currency:    req.Currency,
		Reference:   req.Reference,
	})
	if err != nil {
		switch err {
		case services.ErrWalletNotFound:
			respondError(w, http.StatusNotFound, "wallet_not_found")
		case services.ErrUnauthorizedWallet:
			respondError(w, http.StatusForbidden, "wallet_access_denied")
		case services.ErrWalletInactive:
			respondError(w, http.StatusBadRequest, "wallet_inactive")
		case services.ErrCurrencyMismatch:
			respondError(w, http.StatusBadRequest, "currency_mismatch")
		case services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		default:
			respondError(w, http.StatusInternalServerError, "payment_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, transactionJSON(transaction))
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	transactions, err := h.transactions.ListByMerchant(r.Context(), merchantID, parseListFilter(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	normalized := make([]map[string]any, 0, len(transactions))
	for _, transaction := range transactions {
		normalized = append(normalized, transactionJSON(transaction))
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter := parseListFilter(r)
	search := filter.Search
	filter.Search = ""
	filter.Limit = 500
	filter.Offset = 0
	transactions, err := h.transactions.ListByMerchant(r.Context(), merchantID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load transactions")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=transactions-%s.csv", time.Now().UTC().Format("2006-01-02")))
	if err := export.TransactionsCSV(w, transactions, search); err != nil {
		respondError(w, http.StatusInternalServerError, "export_failed")
	}
}

// DashboardSummary reports completed volume per currency. Amounts in
// different currencies are never summed together. The aggregate is cached
// briefly in Redis.
func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	cacheKey := h.cache.Key("dashboard_summary", merchantID)
	if cached, err := h.cache.Get(r.Context(), cacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(cached))
		return
	}
	volumes, err := h.transactions.VolumeByCurrency(r.Context(), merchantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load summary")
		return
	}
	normalized := make([]map[string]any, 0, len(volumes))
	for _, volume := range volumes {
		normalized = append(normalized, map[string]any{
			"currency":     volume.Currency,
			"total":        money.FormatMinor(volume.TotalMinor, volume.Currency),
			"display":      money.Display(volume.TotalMinor, volume.Currency),
			"fees":         money.FormatMinor(volume.FeeMinor, volume.Currency),
			"transactions": volume.Count,
		})
	}
	payload := map[string]any{"volumes": normalized}
	if encoded, err := json.Marshal(payload); err == nil {
		_ = h.cache.Set(r.Context(), cacheKey, string(encoded), summaryCacheTTL)
	}
	respondJSON(w, http.StatusOK, payload)
}

func transactionJSON(transaction models.Transaction) map[string]any {
	payload := map[string]any{
		"id":         transaction.ID,
		"wallet_id":  transaction.WalletID,
		"reference":  transaction.Reference,
		"amount":     money.FormatMinor(transaction.AmountMinor, transaction.Currency),
		"display":    money.Display(transaction.AmountMinor, transaction.Currency),
		"fee":        money.FormatMinor(transaction.FeeMinor, transaction.Currency),
		"currency":   transaction.Currency,
		"status":     transaction.Status,
		"created_at": transaction.CreatedAt,
	}
	if transaction.LinkID != nil {
		payload["link_id"] = *transaction.LinkID
	}
	if transaction.Hash != nil {
		payload["hash"] = *transaction.Hash
	}
	if transaction.CompletedAt != nil {
		payload["completed_at"] = *transaction.CompletedAt
	}
	return payload
}
