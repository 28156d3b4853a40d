package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"paygate/internal/middleware"
	"paygate/internal/models"
	"paygate/internal/money"
	"paygate/internal/services"

	"github.com/go-chi/chi/v5"
)

type createLinkRequest struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	ExpiresDays int    `json:"expires_days"`
}

const defaultLinkExpiryDays = 30

func (h *Handler) CreatePaymentLink(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createLinkRequest
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
	expiresDays := req.ExpiresDays
	if expiresDays <= 0 {
		expiresDays = defaultLinkExpiryDays
	}
	link, err := h.payments.CreateLink(r.Context(), services.CreateLinkRequest{
		MerchantID:  merchantID,
		Title:       req.Title,
		AmountMinor: amountMinor,
		Currency:    req.Currency,
		Method:      req.Method,
		ExpiresIn:   time.Duration(expiresDays) * 24 * time.Hour,
	})
	if err != nil {
		switch err {
		case services.ErrEmptyTitle:
			respondError(w, http.StatusBadRequest, "title_required")
		case services.ErrInvalidMethod:
			respondError(w, http.StatusBadRequest, "invalid_method")
		case services.ErrMethodMismatch:
			respondError(w, http.StatusBadRequest, "method_currency_mismatch")
		case services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, "invalid_amount")
		case services.ErrUnsupportedCurrency:
			respondError(w, http.StatusBadRequest, "unsupported_currency")
		default:
			respondError(w, http.StatusInternalServerError, "link_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, h.linkJSON(link, time.Now()))
}

func (h *Handler) ListPaymentLinks(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	links, err := h.links.ListByMerchant(r.Context(), merchantID, parseListFilter(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load payment links")
		return
	}
	now := time.Now()
	status := r.URL.Query().Get("status")
	normalized := make([]map[string]any, 0, len(links))
	for _, link := range links {
		payload := h.linkJSON(link, now)
		// Status is derived from the clock, so status filtering happens here
		// rather than in SQL.
		if status != "" && status != "all" && payload["status"] != status {
			continue
		}
		normalized = append(normalized, payload)
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) GetPaymentLink(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	link, err := h.links.GetByID(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "payment link not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load payment link")
		return
	}
	respondJSON(w, http.StatusOK, h.linkJSON(link, time.Now()))
}

// ShowPaymentLink is the public checkout payload behind a link URL. It
// exposes only what a payer needs to see.
func (h *Handler) ShowPaymentLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "payment link not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load payment link")
		return
	}
	merchant, err := h.merchants.GetByID(r.Context(), link.MerchantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load merchant")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"business_name": merchant.BusinessName,
		"title":         link.Title,
		"amount":        money.FormatMinor(link.AmountMinor, link.Currency),
		"display":       money.Display(link.AmountMinor, link.Currency),
		"currency":      link.Currency,
		"method":        link.Method,
		"status":        services.LinkStatus(link, time.Now()),
		"expires_at":    link.ExpiresAt,
	})
}

type redeemLinkRequest struct {
	Reference string `json:"reference"`
}

func (h *Handler) RedeemPaymentLink(w http.ResponseWriter, r *http.Request) {
	var req redeemLinkRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	transaction, err := h.payments.RedeemLink(r.Context(), services.RedeemLinkRequest{
		Slug:      chi.URLParam(r, "slug"),
		Reference: req.Reference,
	})
	if err != nil {
		switch err {
		case services.ErrLinkNotFound:
			respondError(w, http.StatusNotFound, "payment link not found")
		case services.ErrLinkExpired:
			respondError(w, http.StatusGone, "link_expired")
		case services.ErrLinkUsed:
			respondError(w, http.StatusConflict, "link_already_used")
		default:
			respondError(w, http.StatusInternalServerError, "redeem_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, transactionJSON(transaction))
}

func (h *Handler) linkJSON(link models.PaymentLink, now time.Time) map[string]any {
	return map[string]any{
		"id":          link.ID,
		"link_number": link.LinkNumber,
		"title":       link.Title,
		"amount":      money.FormatMinor(link.AmountMinor, link.Currency),
		"display":     money.Display(link.AmountMinor, link.Currency),
		"currency":    link.Currency,
		"method":      link.Method,
		"slug":        link.Slug,
		"url":         link.URL,
		"status":      services.LinkStatus(link, now),
		"created_at":  link.CreatedAt,
		"expires_at":  link.ExpiresAt,
	}
}
