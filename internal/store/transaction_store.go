package store

import (
	"context"

	"paygate/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID          string
	MerchantID  string
	WalletID    string
	LinkID      *string
	Reference   string
	AmountMinor int64
	FeeMinor    int64
	Currency    string
	Status      string
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, merchant_id, wallet_id, link_id, reference,
		                          amount_minor, fee_minor, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.MerchantID, input.WalletID, input.LinkID, input.Reference,
		input.AmountMinor, input.FeeMinor, input.Currency, input.Status,
	)
	return err
}

// MarkCompleted settles a pending transaction, assigning its hash. Returns
// rows affected so a double confirmation is detectable.
func (s *TransactionStore) MarkCompleted(ctx context.Context, tx Execer, transactionID, hash string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'completed', hash = $1, completed_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`, hash, transactionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *TransactionStore) MarkFailed(ctx context.Context, tx Execer, transactionID string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'failed'
		WHERE id = $1 AND status = 'pending'
	`, transactionID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, wallet_id, link_id, reference, amount_minor, fee_minor,
		       currency, status, hash, created_at, completed_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	return row, err
}

func (s *TransactionStore) ListByMerchant(ctx context.Context, merchantID string, filter ListFilter) ([]models.Transaction, error) {
	query := `
		SELECT id, merchant_id, wallet_id, link_id, reference, amount_minor, fee_minor,
		       currency, status, hash, created_at, completed_at
		FROM transactions
		WHERE merchant_id = $1
	`
	args := []any{merchantID}
	param := 2
	if filter.Status != "" && filter.Status != "all" {
		query += " AND status = $" + itoa(param)
		args = append(args, filter.Status)
		param++
	}
	if filter.Search != "" {
		query += " AND (reference ILIKE $" + itoa(param) + " OR id ILIKE $" + itoa(param) + " OR currency ILIKE $" + itoa(param) + ")"
		args = append(args, "%"+filter.Search+"%")
		param++
	}
	query += " ORDER BY " + sortClause(filter.SortBy) + " LIMIT $" + itoa(param) + " OFFSET $" + itoa(param+1)
	args = append(args, filter.limit(), filter.offset())
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

func (s *TransactionStore) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, merchant_id, wallet_id, link_id, reference, amount_minor, fee_minor,
		       currency, status, hash, created_at, completed_at
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

// CurrencyVolume is one row of the dashboard summary. Volumes never cross
// currencies; each code aggregates separately.
type CurrencyVolume struct {
	Currency   string `db:"currency" json:"currency"`
	TotalMinor int64  `db:"total_minor" json:"total_minor"`
	FeeMinor   int64  `db:"fee_minor" json:"fee_minor"`
	Count      int64  `db:"count" json:"count"`
}

func (s *TransactionStore) VolumeByCurrency(ctx context.Context, merchantID string) ([]CurrencyVolume, error) {
	var rows []CurrencyVolume
	err := s.db.SelectContext(ctx, &rows, `
		SELECT currency,
		       COALESCE(SUM(amount_minor), 0) AS total_minor,
		       COALESCE(SUM(fee_minor), 0) AS fee_minor,
		       COUNT(1) AS count
		FROM transactions
		WHERE merchant_id = $1 AND status = 'completed'
		GROUP BY currency
		ORDER BY currency
	`, merchantID)
	return rows, err
}
