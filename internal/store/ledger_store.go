package store

import "context"

type LedgerStore struct {
	db DB
}

func NewLedgerStore(db DB) *LedgerStore {
	return &LedgerStore{db: db}
}

type LedgerEntryInput struct {
	ID            string
	TransactionID string
	WalletID      string
	AmountMinor   int64
	Currency      string
	Description   string
}

func (s *LedgerStore) InsertEntries(ctx context.Context, tx Execer, entries []LedgerEntryInput) error {
	query := `
		INSERT INTO ledger_entries (id, transaction_id, wallet_id, amount_minor, currency, description)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, entry.ID, entry.TransactionID, entry.WalletID, entry.AmountMinor, entry.Currency, entry.Description); err != nil {
			return err
		}
	}
	return nil
}

func (s *LedgerStore) SumByWallet(ctx context.Context, walletID string) (int64, error) {
	var sum int64
	err := s.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount_minor), 0)
		FROM ledger_entries
		WHERE wallet_id = $1
	`, walletID)
	return sum, err
}
