package store

import "context"

// SequenceStore issues per-merchant monotonic counters for display document
// numbers (INV-, PL-, DOC-, KEY-). The counter is advanced inside the
// caller's transaction so a rolled-back create does not burn visible gaps
// into the sequence for no reason, and concurrent creates cannot collide.
type SequenceStore struct {
	db DB
}

func NewSequenceStore(db DB) *SequenceStore {
	return &SequenceStore{db: db}
}

func (s *SequenceStore) Next(ctx context.Context, tx Getter, merchantID, scope string) (int64, error) {
	var value int64
	err := tx.GetContext(ctx, &value, `
		INSERT INTO document_sequences (merchant_id, scope, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (merchant_id, scope)
		DO UPDATE SET value = document_sequences.value + 1
		RETURNING value
	`, merchantID, scope)
	return value, err
}
