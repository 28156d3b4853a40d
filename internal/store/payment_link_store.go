package store

import (
	"context"

	"paygate/internal/models"
)

type PaymentLinkStore struct {
	db DB
}

func NewPaymentLinkStore(db DB) *PaymentLinkStore {
	return &PaymentLinkStore{db: db}
}

func (s *PaymentLinkStore) Create(ctx context.Context, tx Execer, link models.PaymentLink) error {
	query := `
		INSERT INTO payment_links (id, merchant_id, link_number, title, amount_minor,
		                           currency, method, slug, url, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := tx.ExecContext(ctx, query,
		link.ID, link.MerchantID, link.LinkNumber, link.Title, link.AmountMinor,
		link.Currency, link.Method, link.Slug, link.URL, link.CreatedAt, link.ExpiresAt,
	)
	return err
}

func (s *PaymentLinkStore) GetByID(ctx context.Context, merchantID, linkID string) (models.PaymentLink, error) {
	var row models.PaymentLink
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, link_number, title, amount_minor, currency, method,
		       slug, url, created_at, expires_at, used_at
		FROM payment_links
		WHERE id = $1 AND merchant_id = $2
	`, linkID, merchantID)
	return row, err
}

func (s *PaymentLinkStore) GetBySlug(ctx context.Context, slug string) (models.PaymentLink, error) {
	var row models.PaymentLink
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, link_number, title, amount_minor, currency, method,
		       slug, url, created_at, expires_at, used_at
		FROM payment_links
		WHERE slug = $1
	`, slug)
	return row, err
}

func (s *PaymentLinkStore) ListByMerchant(ctx context.Context, merchantID string, filter ListFilter) ([]models.PaymentLink, error) {
	query := `
		SELECT id, merchant_id, link_number, title, amount_minor, currency, method,
		       slug, url, created_at, expires_at, used_at
		FROM payment_links
		WHERE merchant_id = $1
	`
	args := []any{merchantID}
	param := 2
	if filter.Method != "" && filter.Method != "all" {
		query += " AND method = $" + itoa(param)
		args = append(args, filter.Method)
		param++
	}
	if filter.Search != "" {
		query += " AND (title ILIKE $" + itoa(param) + " OR link_number ILIKE $" + itoa(param) + ")"
		args = append(args, "%"+filter.Search+"%")
		param++
	}
	query += " ORDER BY " + linkSortClause(filter.SortBy) + " LIMIT $" + itoa(param) + " OFFSET $" + itoa(param+1)
	args = append(args, filter.limit(), filter.offset())
	var rows []models.PaymentLink
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

// Link status is derived, so only date and amount sorts apply here.
func linkSortClause(sortBy string) string {
	if sortBy == "amount" {
		return "amount_minor DESC, created_at DESC"
	}
	return "created_at DESC"
}

// MarkUsed consumes a link exactly once: the update lands only while the
// link is unused and unexpired. Returns rows affected.
func (s *PaymentLinkStore) MarkUsed(ctx context.Context, tx Execer, linkID string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE payment_links
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL AND expires_at > NOW()
	`, linkID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
