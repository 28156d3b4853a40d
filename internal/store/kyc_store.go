package store

import (
	"context"

	"paygate/internal/models"
)

type KYCStore struct {
	db DB
}

func NewKYCStore(db DB) *KYCStore {
	return &KYCStore{db: db}
}

func (s *KYCStore) Create(ctx context.Context, tx Execer, document models.KYCDocument) error {
	query := `
		INSERT INTO kyc_documents (id, merchant_id, document_number, type, file_name, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
	`
	_, err := tx.ExecContext(ctx, query,
		document.ID, document.MerchantID, document.DocumentNumber, document.Type, document.FileName,
	)
	return err
}

func (s *KYCStore) GetByID(ctx context.Context, documentID string) (models.KYCDocument, error) {
	var row models.KYCDocument
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, document_number, type, file_name, status, reason, created_at, reviewed_at
		FROM kyc_documents
		WHERE id = $1
	`, documentID)
	return row, err
}

func (s *KYCStore) ListByMerchant(ctx context.Context, merchantID string) ([]models.KYCDocument, error) {
	var rows []models.KYCDocument
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, merchant_id, document_number, type, file_name, status, reason, created_at, reviewed_at
		FROM kyc_documents
		WHERE merchant_id = $1
		ORDER BY created_at DESC
	`, merchantID)
	return rows, err
}

func (s *KYCStore) ListPending(ctx context.Context, limit, offset int) ([]models.KYCDocument, error) {
	var rows []models.KYCDocument
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, merchant_id, document_number, type, file_name, status, reason, created_at, reviewed_at
		FROM kyc_documents
		WHERE status = 'pending'
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}

// Review settles a pending document. Returns rows affected so a concurrent
// second review is detected rather than silently overwritten.
func (s *KYCStore) Review(ctx context.Context, tx Execer, documentID, status, reason string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE kyc_documents
		SET status = $1, reason = $2, reviewed_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`, status, reason, documentID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
