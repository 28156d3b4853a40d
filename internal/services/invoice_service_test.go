package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"paygate/internal/models"
	"paygate/internal/store"
)

type stubInvoiceStore struct {
	createFn       func(ctx context.Context, tx store.Execer, invoice models.Invoice) error
	insertItemsFn  func(ctx context.Context, tx store.Execer, items []models.InvoiceItem) error
	getByIDFn      func(ctx context.Context, merchantID, invoiceID string) (models.Invoice, error)
	updateStatusFn func(ctx context.Context, tx store.Execer, invoiceID, fromStatus, toStatus string) (int64, error)
	markOverdueFn  func(ctx context.Context, tx store.Execer) (int64, error)
}

func (s stubInvoiceStore) Create(ctx context.Context, tx store.Execer, invoice models.Invoice) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, invoice)
}

func (s stubInvoiceStore) InsertItems(ctx context.Context, tx store.Execer, items []models.InvoiceItem) error {
	if s.insertItemsFn == nil {
		return nil
	}
	return s.insertItemsFn(ctx, tx, items)
}

func (s stubInvoiceStore) GetByID(ctx context.Context, merchantID, invoiceID string) (models.Invoice, error) {
	if s.getByIDFn == nil {
		return models.Invoice{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, merchantID, invoiceID)
}

func (s stubInvoiceStore) GetItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error) {
	return nil, nil
}

func (s stubInvoiceStore) UpdateStatus(ctx context.Context, tx store.Execer, invoiceID, fromStatus, toStatus string) (int64, error) {
	if s.updateStatusFn == nil {
		return 1, nil
	}
	return s.updateStatusFn(ctx, tx, invoiceID, fromStatus, toStatus)
}

func (s stubInvoiceStore) MarkOverdue(ctx context.Context, tx store.Execer) (int64, error) {
	if s.markOverdueFn == nil {
		return 0, nil
	}
	return s.markOverdueFn(ctx, tx)
}

type stubCustomerStore struct {
	getByIDFn func(ctx context.Context, merchantID, customerID string) (models.Customer, error)
}

func (s stubCustomerStore) GetByID(ctx context.Context, merchantID, customerID string) (models.Customer, error) {
	if s.getByIDFn == nil {
		return models.Customer{ID: customerID, MerchantID: merchantID}, nil
	}
	return s.getByIDFn(ctx, merchantID, customerID)
}

type stubProductStore struct {
	getByIDFn func(ctx context.Context, merchantID, productID string) (models.Product, error)
}

func (s stubProductStore) GetByID(ctx context.Context, merchantID, productID string) (models.Product, error) {
	if s.getByIDFn == nil {
		return models.Product{}, sql.ErrNoRows
	}
	return s.getByIDFn(ctx, merchantID, productID)
}

func newInvoiceService(t *testing.T, invoices stubInvoiceStore, customers stubCustomerStore, products stubProductStore) *InvoiceService {
	t.Helper()
	return NewInvoiceService(fakeTxRunner{}, invoices, customers, products, stubSequenceStore{}, stubAuditStore{}, newTestGenerator(t))
}

func baseInvoiceRequest() CreateInvoiceRequest {
	issue := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return CreateInvoiceRequest{
		MerchantID: "m1",
		CustomerID: "c1",
		Currency:   "INR",
		IssueDate:  issue,
		DueDate:    issue.AddDate(0, 0, 14),
		Items: []InvoiceItemRequest{
			{Name: "Consulting", Quantity: 2, UnitPrice: "5.00", TaxRate: "18"},
		},
	}
}

func TestCreateInvoiceDerivesTotals(t *testing.T) {
	var persisted models.Invoice
	var persistedItems []models.InvoiceItem
	service := newInvoiceService(t, stubInvoiceStore{
		createFn: func(_ context.Context, _ store.Execer, invoice models.Invoice) error {
			persisted = invoice
			return nil
		},
		insertItemsFn: func(_ context.Context, _ store.Execer, items []models.InvoiceItem) error {
			persistedItems = items
			return nil
		},
	}, stubCustomerStore{}, stubProductStore{})

	invoice, items, err := service.CreateInvoice(context.Background(), baseInvoiceRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.SubtotalMinor != 1000 || invoice.TaxMinor != 180 || invoice.TotalMinor != 1180 {
		t.Fatalf("unexpected totals: %d/%d/%d", invoice.SubtotalMinor, invoice.TaxMinor, invoice.TotalMinor)
	}
	if invoice.Status != "draft" {
		t.Fatalf("new invoices must start as drafts, got %s", invoice.Status)
	}
	if invoice.InvoiceNumber != "INV-000001" {
		t.Fatalf("unexpected invoice number: %s", invoice.InvoiceNumber)
	}
	if len(items) != 1 || items[0].TotalMinor != 1180 || items[0].Position != 0 {
		t.Fatalf("unexpected items: %#v", items)
	}
	if persisted.ID != invoice.ID || len(persistedItems) != 1 {
		t.Fatalf("invoice was not persisted")
	}
}

func TestCreateInvoiceFillsItemFromProduct(t *testing.T) {
	service := newInvoiceService(t, stubInvoiceStore{}, stubCustomerStore{}, stubProductStore{
		getByIDFn: func(_ context.Context, _, productID string) (models.Product, error) {
			return models.Product{ID: productID, Name: "Starter plan", UnitPriceMinor: 250000, TaxRate: "18", Currency: "INR"}, nil
		},
	})

	req := baseInvoiceRequest()
	req.Items = []InvoiceItemRequest{{ProductID: "p1", Quantity: 1}}
	invoice, items, err := service.CreateInvoice(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Name != "Starter plan" || items[0].UnitPriceMinor != 250000 {
		t.Fatalf("item not filled from product: %#v", items[0])
	}
	if invoice.TotalMinor != 295000 {
		t.Fatalf("unexpected total: %d", invoice.TotalMinor)
	}
}

func TestCreateInvoiceRejectsForeignCustomer(t *testing.T) {
	service := newInvoiceService(t, stubInvoiceStore{}, stubCustomerStore{
		getByIDFn: func(context.Context, string, string) (models.Customer, error) {
			return models.Customer{}, sql.ErrNoRows
		},
	}, stubProductStore{})

	if _, _, err := service.CreateInvoice(context.Background(), baseInvoiceRequest()); err != ErrCustomerNotFound {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestCreateInvoiceRejectsDueBeforeIssue(t *testing.T) {
	service := newInvoiceService(t, stubInvoiceStore{}, stubCustomerStore{}, stubProductStore{})
	req := baseInvoiceRequest()
	req.DueDate = req.IssueDate.AddDate(0, 0, -1)
	if _, _, err := service.CreateInvoice(context.Background(), req); err != ErrInvalidDueDate {
		t.Fatalf("expected ErrInvalidDueDate, got %v", err)
	}
}

func TestCreateInvoiceRejectsProductCurrencyMismatch(t *testing.T) {
	service := newInvoiceService(t, stubInvoiceStore{}, stubCustomerStore{}, stubProductStore{
		getByIDFn: func(_ context.Context, _, productID string) (models.Product, error) {
			return models.Product{ID: productID, Name: "USD plan", UnitPriceMinor: 900, TaxRate: "0", Currency: "USD"}, nil
		},
	})
	req := baseInvoiceRequest()
	req.Items = []InvoiceItemRequest{{ProductID: "p1", Quantity: 1}}
	if _, _, err := service.CreateInvoice(context.Background(), req); err != ErrCurrencyMismatch {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		from string
		to   string
		ok   bool
	}{
		{"draft", "sent", true},
		{"draft", "cancelled", true},
		{"draft", "paid", false},
		{"sent", "paid", true},
		{"sent", "overdue", true},
		{"overdue", "paid", true},
		{"paid", "sent", false},
		{"paid", "cancelled", false},
		{"cancelled", "sent", false},
	}
	for _, tc := range cases {
		service := newInvoiceService(t, stubInvoiceStore{
			getByIDFn: func(_ context.Context, _, invoiceID string) (models.Invoice, error) {
				return models.Invoice{ID: invoiceID, Status: tc.from}, nil
			},
		}, stubCustomerStore{}, stubProductStore{})
		_, err := service.UpdateStatus(context.Background(), "m1", "i1", tc.to)
		if tc.ok && err != nil {
			t.Errorf("%s->%s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok && err != ErrInvalidTransition {
			t.Errorf("%s->%s: expected ErrInvalidTransition, got %v", tc.from, tc.to, err)
		}
	}
}

func TestUpdateStatusLosesRace(t *testing.T) {
	service := newInvoiceService(t, stubInvoiceStore{
		getByIDFn: func(_ context.Context, _, invoiceID string) (models.Invoice, error) {
			return models.Invoice{ID: invoiceID, Status: "sent"}, nil
		},
		updateStatusFn: func(context.Context, store.Execer, string, string, string) (int64, error) {
			return 0, nil
		},
	}, stubCustomerStore{}, stubProductStore{})

	if _, err := service.UpdateStatus(context.Background(), "m1", "i1", "paid"); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on concurrent update, got %v", err)
	}
}

func TestMarkOverdue(t *testing.T) {
	service := newInvoiceService(t, stubInvoiceStore{
		markOverdueFn: func(context.Context, store.Execer) (int64, error) {
			return 3, nil
		},
	}, stubCustomerStore{}, stubProductStore{})

	flipped, err := service.MarkOverdue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flipped != 3 {
		t.Fatalf("expected 3 invoices flipped, got %d", flipped)
	}
}
