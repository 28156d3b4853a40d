package store

import (
	"context"

	"paygate/internal/models"
)

type WalletStore struct {
	db DB
}

// WalletBalanceSummary pairs the stored balance with the ledger-derived one
// so dashboards can show reconciliation drift.
type WalletBalanceSummary struct {
	ID                string  `db:"id"`
	MerchantID        *string `db:"merchant_id"`
	Type              string  `db:"type"`
	Address           string  `db:"address"`
	Currency          string  `db:"currency"`
	StoredBalance     int64   `db:"stored_balance"`
	CalculatedBalance int64   `db:"calculated_balance"`
	Difference        int64   `db:"difference"`
	IsActive          bool    `db:"is_active"`
	CreatedAt         any     `db:"created_at"`
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

func (s *WalletStore) Create(ctx context.Context, tx Execer, wallet models.Wallet) error {
	query := `
		INSERT INTO wallets (id, merchant_id, type, address, currency, balance_minor, is_active, is_system)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		wallet.ID, wallet.MerchantID, wallet.Type, wallet.Address, wallet.Currency,
		wallet.BalanceMinor, wallet.IsActive, wallet.IsSystem,
	)
	return err
}

func (s *WalletStore) GetByID(ctx context.Context, walletID string) (models.Wallet, error) {
	var row models.Wallet
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, type, address, currency, balance_minor, is_active, is_system, created_at
		FROM wallets
		WHERE id = $1
	`, walletID)
	return row, err
}

func (s *WalletStore) GetForUpdate(ctx context.Context, tx Getter, walletID string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT id, merchant_id, type, address, currency, balance_minor, is_active, is_system, created_at
		FROM wallets
		WHERE id = $1
		FOR UPDATE
	`, walletID)
	return row, err
}

func (s *WalletStore) GetHotByMerchantAndCurrency(ctx context.Context, tx Getter, merchantID, currency string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT id, merchant_id, type, address, currency, balance_minor, is_active, is_system, created_at
		FROM wallets
		WHERE merchant_id = $1 AND currency = $2 AND type = 'hot' AND is_active
	`, merchantID, currency)
	return row, err
}

func (s *WalletStore) GetSystemWallet(ctx context.Context, tx Getter, currency string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT id, merchant_id, type, address, currency, balance_minor, is_active, is_system, created_at
		FROM wallets
		WHERE is_system AND currency = $1
		FOR UPDATE
	`, currency)
	return row, err
}

func (s *WalletStore) UpdateBalance(ctx context.Context, tx Execer, walletID string, balanceMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance_minor = $1, updated_at = NOW()
		WHERE id = $2
	`, balanceMinor, walletID)
	return err
}

func (s *WalletStore) ListByMerchant(ctx context.Context, merchantID string) ([]WalletBalanceSummary, error) {
	var rows []WalletBalanceSummary
	err := s.db.SelectContext(ctx, &rows, `
		SELECT w.id,
		       w.merchant_id,
		       w.type,
		       w.address,
		       w.currency,
		       w.balance_minor AS stored_balance,
		       COALESCE(SUM(l.amount_minor), 0) AS calculated_balance,
		       (w.balance_minor - COALESCE(SUM(l.amount_minor), 0)) AS difference,
		       w.is_active,
		       w.created_at
		FROM wallets w
		LEFT JOIN ledger_entries l ON l.wallet_id = w.id
		WHERE w.merchant_id = $1
		GROUP BY w.id, w.merchant_id, w.type, w.address, w.currency, w.balance_minor, w.is_active, w.created_at
		ORDER BY w.currency, w.type
	`, merchantID)
	return rows, err
}
