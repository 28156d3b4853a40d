package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"paygate/internal/billing"
	"paygate/internal/db"
	"paygate/internal/ident"
	"paygate/internal/models"
	"paygate/internal/money"
	"paygate/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidDueDate    = errors.New("due date cannot be before issue date")
	ErrInvalidTransition = errors.New("invalid invoice status transition")
)

// Allowed invoice status transitions. A draft is editable until sent;
// paid and cancelled are terminal.
var invoiceTransitions = map[string][]string{
	"draft":   {"sent", "cancelled"},
	"sent":    {"paid", "overdue", "cancelled"},
	"overdue": {"paid", "cancelled"},
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range invoiceTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type InvoiceStore interface {
	Create(ctx context.Context, tx store.Execer, invoice models.Invoice) error
	InsertItems(ctx context.Context, tx store.Execer, items []models.InvoiceItem) error
	GetByID(ctx context.Context, merchantID, invoiceID string) (models.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error)
	UpdateStatus(ctx context.Context, tx store.Execer, invoiceID, fromStatus, toStatus string) (int64, error)
	MarkOverdue(ctx context.Context, tx store.Execer) (int64, error)
}

type CustomerStore interface {
	GetByID(ctx context.Context, merchantID, customerID string) (models.Customer, error)
}

type ProductStore interface {
	GetByID(ctx context.Context, merchantID, productID string) (models.Product, error)
}

type InvoiceService struct {
	txRunner  db.TxRunner
	invoices  InvoiceStore
	customers CustomerStore
	products  ProductStore
	sequences SequenceStore
	audit     AuditStore
	gen       *ident.Generator
}

func NewInvoiceService(txRunner db.TxRunner, invoices InvoiceStore, customers CustomerStore, products ProductStore, sequences SequenceStore, audit AuditStore, gen *ident.Generator) *InvoiceService {
	return &InvoiceService{
		txRunner:  txRunner,
		invoices:  invoices,
		customers: customers,
		products:  products,
		sequences: sequences,
		audit:     audit,
		gen:       gen,
	}
}

type InvoiceItemRequest struct {
	ProductID   string
	Name        string
	Description string
	Quantity    int64
	UnitPrice   string
	TaxRate     string
}

type CreateInvoiceRequest struct {
	MerchantID string
	CustomerID string
	Currency   string
	Items      []InvoiceItemRequest
	Discount   string
	IssueDate  time.Time
	DueDate    time.Time
	Notes      string
}

// CreateInvoice validates the request, derives all amounts server-side and
// persists the invoice with its items in one transaction. Client-supplied
// totals are never trusted.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (models.Invoice, []models.InvoiceItem, error) {
	currency, ok := money.Lookup(req.Currency)
	if !ok {
		return models.Invoice{}, nil, ErrUnsupportedCurrency
	}
	if _, err := s.customers.GetByID(ctx, req.MerchantID, req.CustomerID); err != nil {
		if err == sql.ErrNoRows {
			return models.Invoice{}, nil, ErrCustomerNotFound
		}
		return models.Invoice{}, nil, err
	}
	if req.DueDate.Before(req.IssueDate) {
		return models.Invoice{}, nil, ErrInvalidDueDate
	}

	lineItems := make([]billing.LineItem, 0, len(req.Items))
	productIDs := make([]*string, 0, len(req.Items))
	for _, item := range req.Items {
		line := billing.LineItem{
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
		}
		var productID *string
		if item.ProductID != "" {
			product, err := s.products.GetByID(ctx, req.MerchantID, item.ProductID)
			if err != nil {
				if err == sql.ErrNoRows {
					return models.Invoice{}, nil, ErrProductNotFound
				}
				return models.Invoice{}, nil, err
			}
			if product.Currency != currency.Code {
				return models.Invoice{}, nil, ErrCurrencyMismatch
			}
			if line.Name == "" {
				line.Name = product.Name
			}
			line.UnitPriceMinor = product.UnitPriceMinor
			rate, err := decimal.NewFromString(product.TaxRate)
			if err != nil {
				return models.Invoice{}, nil, billing.ErrInvalidTaxRate
			}
			line.TaxRate = rate
			id := product.ID
			productID = &id
		} else {
			priceMinor, err := money.ParseMinor(item.UnitPrice, currency.Code)
			if err != nil {
				return models.Invoice{}, nil, err
			}
			line.UnitPriceMinor = priceMinor
			rate, err := decimal.NewFromString(orZero(item.TaxRate))
			if err != nil {
				return models.Invoice{}, nil, billing.ErrInvalidTaxRate
			}
			line.TaxRate = rate
		}
		lineItems = append(lineItems, line)
		productIDs = append(productIDs, productID)
	}

	discountMinor := int64(0)
	if req.Discount != "" {
		parsed, err := money.ParseMinor(req.Discount, currency.Code)
		if err != nil {
			return models.Invoice{}, nil, err
		}
		discountMinor = parsed
	}
	totals, err := billing.Compute(lineItems, discountMinor)
	if err != nil {
		return models.Invoice{}, nil, err
	}

	invoice := models.Invoice{
		ID:            s.gen.EntityID(),
		MerchantID:    req.MerchantID,
		CustomerID:    req.CustomerID,
		Currency:      currency.Code,
		SubtotalMinor: totals.SubtotalMinor,
		TaxMinor:      totals.TaxMinor,
		DiscountMinor: totals.DiscountMinor,
		TotalMinor:    totals.GrandTotalMinor,
		Status:        "draft",
		IssueDate:     req.IssueDate,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	items := make([]models.InvoiceItem, 0, len(lineItems))
	for i, line := range lineItems {
		items = append(items, models.InvoiceItem{
			ID:             s.gen.EntityID(),
			InvoiceID:      invoice.ID,
			ProductID:      productIDs[i],
			Name:           line.Name,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitPriceMinor: line.UnitPriceMinor,
			TaxRate:        line.TaxRate.String(),
			TaxMinor:       totals.Lines[i].TaxMinor,
			TotalMinor:     totals.Lines[i].TotalMinor,
			Position:       i,
		})
	}

	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		sequence, err := s.sequences.Next(ctx, tx, req.MerchantID, "invoice")
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = ident.DocumentNumber(ident.PrefixInvoice, sequence)
		if err := s.invoices.Create(ctx, tx, invoice); err != nil {
			return err
		}
		if err := s.invoices.InsertItems(ctx, tx, items); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"invoice_number": invoice.InvoiceNumber,
			"total":          money.FormatMinor(invoice.TotalMinor, invoice.Currency),
			"currency":       invoice.Currency,
		})
		return s.audit.Log(ctx, tx, req.MerchantID, "invoice.create", "invoice", invoice.ID, string(data))
	})
	if err != nil {
		return models.Invoice{}, nil, err
	}
	return invoice, items, nil
}

// UpdateStatus moves an invoice along the allowed transition graph. The
// store predicate keeps concurrent updates from racing past the check.
func (s *InvoiceService) UpdateStatus(ctx context.Context, merchantID, invoiceID, toStatus string) (models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, merchantID, invoiceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Invoice{}, ErrInvoiceNotFound
		}
		return models.Invoice{}, err
	}
	if !transitionAllowed(invoice.Status, toStatus) {
		return models.Invoice{}, ErrInvalidTransition
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		updated, err := s.invoices.UpdateStatus(ctx, tx, invoiceID, invoice.Status, toStatus)
		if err != nil {
			return err
		}
		if updated == 0 {
			return ErrInvalidTransition
		}
		data, _ := json.Marshal(map[string]string{"from": invoice.Status, "to": toStatus})
		return s.audit.Log(ctx, tx, merchantID, "invoice.status", "invoice", invoiceID, string(data))
	})
	if err != nil {
		return models.Invoice{}, err
	}
	return s.invoices.GetByID(ctx, merchantID, invoiceID)
}

// MarkOverdue flips every sent invoice whose due date has passed. Meant to
// be run periodically.
func (s *InvoiceService) MarkOverdue(ctx context.Context) (int64, error) {
	var flipped int64
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		count, err := s.invoices.MarkOverdue(ctx, tx)
		if err != nil {
			return err
		}
		flipped = count
		return nil
	})
	return flipped, err
}

func orZero(rate string) string {
	if rate == "" {
		return "0"
	}
	return rate
}
