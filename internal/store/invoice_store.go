package store

import (
	"context"

	"paygate/internal/models"
)

type InvoiceStore struct {
	db DB
}

func NewInvoiceStore(db DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

func (s *InvoiceStore) Create(ctx context.Context, tx Execer, invoice models.Invoice) error {
	query := `
		INSERT INTO invoices (id, merchant_id, customer_id, invoice_number, currency,
		                      subtotal_minor, tax_minor, discount_minor, total_minor,
		                      status, issue_date, due_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.ExecContext(ctx, query,
		invoice.ID, invoice.MerchantID, invoice.CustomerID, invoice.InvoiceNumber, invoice.Currency,
		invoice.SubtotalMinor, invoice.TaxMinor, invoice.DiscountMinor, invoice.TotalMinor,
		invoice.Status, invoice.IssueDate, invoice.DueDate, invoice.Notes,
	)
	return err
}

func (s *InvoiceStore) InsertItems(ctx context.Context, tx Execer, items []models.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, product_id, name, description, quantity,
		                           unit_price_minor, tax_rate, tax_minor, total_minor, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, query,
			item.ID, item.InvoiceID, item.ProductID, item.Name, item.Description, item.Quantity,
			item.UnitPriceMinor, item.TaxRate, item.TaxMinor, item.TotalMinor, item.Position,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *InvoiceStore) GetByID(ctx context.Context, merchantID, invoiceID string) (models.Invoice, error) {
	var row models.Invoice
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, customer_id, invoice_number, currency, subtotal_minor,
		       tax_minor, discount_minor, total_minor, status, issue_date, due_date,
		       notes, created_at, paid_at
		FROM invoices
		WHERE id = $1 AND merchant_id = $2
	`, invoiceID, merchantID)
	return row, err
}

func (s *InvoiceStore) GetItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error) {
	var rows []models.InvoiceItem
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, invoice_id, product_id, name, description, quantity, unit_price_minor,
		       tax_rate, tax_minor, total_minor, position
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position
	`, invoiceID)
	return rows, err
}

func (s *InvoiceStore) ListByMerchant(ctx context.Context, merchantID string, filter ListFilter) ([]models.Invoice, error) {
	query := `
		SELECT i.id, i.merchant_id, i.customer_id, i.invoice_number, i.currency,
		       i.subtotal_minor, i.tax_minor, i.discount_minor, i.total_minor, i.status,
		       i.issue_date, i.due_date, i.notes, i.created_at, i.paid_at
		FROM invoices i
		LEFT JOIN customers c ON c.id = i.customer_id
		WHERE i.merchant_id = $1
	`
	args := []any{merchantID}
	param := 2
	if filter.Status != "" && filter.Status != "all" {
		query += " AND i.status = $" + itoa(param)
		args = append(args, filter.Status)
		param++
	}
	if filter.Search != "" {
		query += " AND (i.invoice_number ILIKE $" + itoa(param) + " OR c.name ILIKE $" + itoa(param) + " OR c.email ILIKE $" + itoa(param) + ")"
		args = append(args, "%"+filter.Search+"%")
		param++
	}
	query += " ORDER BY i." + invoiceSortClause(filter.SortBy) + " LIMIT $" + itoa(param) + " OFFSET $" + itoa(param+1)
	args = append(args, filter.limit(), filter.offset())
	var rows []models.Invoice
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func invoiceSortClause(sortBy string) string {
	switch sortBy {
	case "amount":
		return "total_minor DESC, created_at DESC"
	case "status":
		return "status ASC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// UpdateStatus moves an invoice to a new status only from an expected one;
// the caller decides legality, the query guards against races.
func (s *InvoiceStore) UpdateStatus(ctx context.Context, tx Execer, invoiceID, fromStatus, toStatus string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE invoices
		SET status = $1, paid_at = CASE WHEN $1 = 'paid' THEN NOW() ELSE paid_at END
		WHERE id = $2 AND status = $3
	`, toStatus, invoiceID, fromStatus)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MarkOverdue flips sent invoices whose due date has passed. Returns the
// number of invoices moved.
func (s *InvoiceStore) MarkOverdue(ctx context.Context, tx Execer) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE invoices
		SET status = 'overdue'
		WHERE status = 'sent' AND due_date < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
