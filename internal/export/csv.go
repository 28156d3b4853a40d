// Package export writes transaction listings as CSV. encoding/csv applies
// RFC 4180 quoting, so free-text fields containing commas or quotes survive
// a round trip.
package export

import (
	"encoding/csv"
	"io"
	"time"

	"paygate/internal/listing"
	"paygate/internal/models"
	"paygate/internal/money"
)

var transactionHeader = []string{
	"id", "reference", "wallet_id", "amount", "fee", "currency", "status", "hash", "created_at", "completed_at",
}

// TransactionsCSV writes a header plus one row per transaction. The search
// term refines the already-fetched page across reference, id and currency.
func TransactionsCSV(w io.Writer, transactions []models.Transaction, search string) error {
	filtered := listing.Filter(transactions, func(tx models.Transaction) bool {
		return listing.Matches(search, tx.ID, tx.Reference, tx.Currency)
	})
	ordered := listing.SortBy(filtered, listing.DateDesc(func(tx models.Transaction) int64 {
		return tx.CreatedAt.UnixNano()
	}))
	writer := csv.NewWriter(w)
	if err := writer.Write(transactionHeader); err != nil {
		return err
	}
	for _, tx := range ordered {
		hash := ""
		if tx.Hash != nil {
			hash = *tx.Hash
		}
		completedAt := ""
		if tx.CompletedAt != nil {
			completedAt = tx.CompletedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			tx.ID,
			tx.Reference,
			tx.WalletID,
			money.FormatMinor(tx.AmountMinor, tx.Currency),
			money.FormatMinor(tx.FeeMinor, tx.Currency),
			tx.Currency,
			tx.Status,
			hash,
			tx.CreatedAt.UTC().Format(time.RFC3339),
			completedAt,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
