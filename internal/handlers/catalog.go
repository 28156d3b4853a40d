package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"paygate/internal/middleware"
	"paygate/internal/models"
	"paygate/internal/money"
	"paygate/internal/validator"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer := models.Customer{
		ID:         h.gen.EntityID(),
		MerchantID: merchantID,
		Name:       req.Name,
		Email:      req.Email,
		CreatedAt:  time.Now().UTC(),
	}
	err := h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.customers.Create(r.Context(), tx, customer); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, merchantID, "customer.create", "customer", customer.ID, "{}")
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "customer already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "customer_failed")
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	customers, err := h.customers.ListByMerchant(r.Context(), merchantID, parseListFilter(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load customers")
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

type createProductRequest struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	TaxRate   string `json:"tax_rate"`
	Currency  string `json:"currency"`
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateName(req.Name); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !money.IsSupported(req.Currency) {
		respondError(w, http.StatusBadRequest, "unsupported_currency")
		return
	}
	priceMinor, err := parseAmountMinor(req.UnitPrice, req.Currency)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_amount")
		return
	}
	taxRate := req.TaxRate
	if taxRate == "" {
		taxRate = "0"
	}
	rate, err := decimal.NewFromString(taxRate)
	if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		respondError(w, http.StatusBadRequest, "invalid_tax_rate")
		return
	}
	product := models.Product{
		ID:             h.gen.EntityID(),
		MerchantID:     merchantID,
		Name:           req.Name,
		UnitPriceMinor: priceMinor,
		TaxRate:        rate.String(),
		Currency:       req.Currency,
		CreatedAt:      time.Now().UTC(),
	}
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.products.Create(r.Context(), tx, product); err != nil {
			return err
		}
		return h.audit.Log(r.Context(), tx, merchantID, "product.create", "product", product.ID, "{}")
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "product_failed")
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	products, err := h.products.ListByMerchant(r.Context(), merchantID, parseListFilter(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}
