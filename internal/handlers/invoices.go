package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"paygate/internal/billing"
	"paygate/internal/middleware"
	"paygate/internal/models"
	"paygate/internal/money"
	"paygate/internal/pdf"
	"paygate/internal/services"

	"github.com/go-chi/chi/v5"
)

type invoiceItemPayload struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
}

type createInvoiceRequest struct {
	CustomerID string               `json:"customer_id"`
	Currency   string               `json:"currency"`
	Items      []invoiceItemPayload `json:"items"`
	Discount   string               `json:"discount"`
	IssueDate  string               `json:"issue_date"`
	DueDate    string               `json:"due_date"`
	Notes      string               `json:"notes"`
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	issueDate, err := parseDate(req.IssueDate, time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_issue_date")
		return
	}
	dueDate, err := parseDate(req.DueDate, issueDate.AddDate(0, 0, 14))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_due_date")
		return
	}
	items := make([]services.InvoiceItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, services.InvoiceItemRequest{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
		})
	}
	invoice, invoiceItems, err := h.invoicing.CreateInvoice(r.Context(), services.CreateInvoiceRequest{
		MerchantID: merchantID,
		CustomerID: req.CustomerID,
		Currency:   req.Currency,
		Items:      items,
		Discount:   req.Discount,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Notes:      req.Notes,
	})
	if err != nil {
		switch err {
		case services.ErrCustomerNotFound:
			respondError(w, http.StatusNotFound, "customer_not_found")
		case services.ErrProductNotFound:
			respondError(w, http.StatusNotFound, "product_not_found")
		case services.ErrUnsupportedCurrency:
			respondError(w, http.StatusBadRequest, "unsupported_currency")
		case services.ErrCurrencyMismatch:
			respondError(w, http.StatusBadRequest, "currency_mismatch")
		case services.ErrInvalidDueDate:
			respondError(w, http.StatusBadRequest, "invalid_due_date")
		case billing.ErrNoItems, billing.ErrEmptyName, billing.ErrInvalidQuantity,
			billing.ErrNegativePrice, billing.ErrInvalidTaxRate,
			billing.ErrDiscountTooLarge, billing.ErrNegativeDiscount:
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			if err == money.ErrInvalidAmount || err == money.ErrTooManyDecimals {
				respondError(w, http.StatusBadRequest, "invalid_amount")
				return
			}
			respondError(w, http.StatusInternalServerError, "invoice_failed")
		}
		return
	}
	respondJSON(w, http.StatusCreated, invoiceJSON(invoice, invoiceItems))
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	invoices, err := h.invoices.ListByMerchant(r.Context(), merchantID, parseListFilter(r))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load invoices")
		return
	}
	normalized := make([]map[string]any, 0, len(invoices))
	for _, invoice := range invoices {
		normalized = append(normalized, invoiceJSON(invoice, nil))
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	invoice, err := h.invoices.GetByID(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "invoice not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load invoice")
		return
	}
	items, err := h.invoices.GetItems(r.Context(), invoice.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load invoice items")
		return
	}
	respondJSON(w, http.StatusOK, invoiceJSON(invoice, items))
}

type invoiceStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req invoiceStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	invoice, err := h.invoicing.UpdateStatus(r.Context(), merchantID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		switch err {
		case services.ErrInvoiceNotFound:
			respondError(w, http.StatusNotFound, "invoice not found")
		case services.ErrInvalidTransition:
			respondError(w, http.StatusConflict, "invalid_status_transition")
		default:
			respondError(w, http.StatusInternalServerError, "status_update_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, invoiceJSON(invoice, nil))
}

func (h *Handler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := middleware.MerchantIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	invoice, err := h.invoices.GetByID(r.Context(), merchantID, chi.URLParam(r, "id"))
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "invoice not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load invoice")
		return
	}
	items, err := h.invoices.GetItems(r.Context(), invoice.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load invoice items")
		return
	}
	merchant, err := h.merchants.GetByID(r.Context(), merchantID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load merchant")
		return
	}
	customer, err := h.customers.GetByID(r.Context(), merchantID, invoice.CustomerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load customer")
		return
	}
	document, err := pdf.RenderInvoice(merchant, customer, invoice, items)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "pdf_failed")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", invoice.InvoiceNumber))
	_, _ = w.Write(document)
}

func (h *Handler) AdminMarkOverdue(w http.ResponseWriter, r *http.Request) {
	flipped, err := h.invoicing.MarkOverdue(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "mark_overdue_failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"marked_overdue": flipped})
}

func parseDate(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}

func invoiceJSON(invoice models.Invoice, items []models.InvoiceItem) map[string]any {
	payload := map[string]any{
		"id":             invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"customer_id":    invoice.CustomerID,
		"currency":       invoice.Currency,
		"subtotal":       money.FormatMinor(invoice.SubtotalMinor, invoice.Currency),
		"tax":            money.FormatMinor(invoice.TaxMinor, invoice.Currency),
		"discount":       money.FormatMinor(invoice.DiscountMinor, invoice.Currency),
		"total":          money.FormatMinor(invoice.TotalMinor, invoice.Currency),
		"display_total":  money.Display(invoice.TotalMinor, invoice.Currency),
		"status":         invoice.Status,
		"issue_date":     invoice.IssueDate.Format("2006-01-02"),
		"due_date":       invoice.DueDate.Format("2006-01-02"),
		"notes":          invoice.Notes,
		"created_at":     invoice.CreatedAt,
	}
	if invoice.PaidAt != nil {
		payload["paid_at"] = *invoice.PaidAt
	}
	if items != nil {
		normalized := make([]map[string]any, 0, len(items))
		for _, item := range items {
			normalized = append(normalized, map[string]any{
				"name":        item.Name,
				"description": item.Description,
				"quantity":    item.Quantity,
				"unit_price":  money.FormatMinor(item.UnitPriceMinor, invoice.Currency),
				"tax_rate":    item.TaxRate,
				"tax":         money.FormatMinor(item.TaxMinor, invoice.Currency),
				"total":       money.FormatMinor(item.TotalMinor, invoice.Currency),
				"position":    item.Position,
			})
		}
		payload["items"] = normalized
	}
	return payload
}
