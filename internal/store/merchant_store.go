package store

import (
	"context"

	"paygate/internal/models"
)

type MerchantStore struct {
	db DB
}

func NewMerchantStore(db DB) *MerchantStore {
	return &MerchantStore{db: db}
}

func (s *MerchantStore) Create(ctx context.Context, tx Execer, id, businessName, email, passwordHash string) error {
	query := `
		INSERT INTO merchants (id, business_name, email, password_hash, kyc_status)
		VALUES ($1, $2, $3, $4, 'pending')
	`
	_, err := tx.ExecContext(ctx, query, id, businessName, email, passwordHash)
	return err
}

func (s *MerchantStore) GetByEmail(ctx context.Context, email string) (models.Merchant, error) {
	var row models.Merchant
	err := s.db.GetContext(ctx, &row, `
		SELECT id, business_name, email, password_hash, kyc_status, created_at
		FROM merchants
		WHERE email = $1
	`, email)
	return row, err
}

func (s *MerchantStore) GetByID(ctx context.Context, merchantID string) (models.Merchant, error) {
	var row models.Merchant
	err := s.db.GetContext(ctx, &row, `
		SELECT id, business_name, email, password_hash, kyc_status, created_at
		FROM merchants
		WHERE id = $1
	`, merchantID)
	return row, err
}

func (s *MerchantStore) UpdateKYCStatus(ctx context.Context, tx Execer, merchantID, status string) error {
	_, err := tx.ExecContext(ctx, `UPDATE merchants SET kyc_status = $1 WHERE id = $2`, status, merchantID)
	return err
}

func (s *MerchantStore) ListAll(ctx context.Context, limit, offset int) ([]models.Merchant, error) {
	var rows []models.Merchant
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, business_name, email, password_hash, kyc_status, created_at
		FROM merchants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return rows, err
}
