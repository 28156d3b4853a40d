package store

import (
	"context"

	"paygate/internal/models"
)

type APIKeyStore struct {
	db DB
}

func NewAPIKeyStore(db DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

func (s *APIKeyStore) Create(ctx context.Context, tx Execer, key models.APIKey) error {
	query := `
		INSERT INTO api_keys (id, merchant_id, key_number, name, public_key, secret_digest, status, permissions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := tx.ExecContext(ctx, query,
		key.ID, key.MerchantID, key.KeyNumber, key.Name, key.PublicKey, key.SecretDigest, key.Status, key.Permissions,
	)
	return err
}

func (s *APIKeyStore) GetByPublicKey(ctx context.Context, publicKey string) (models.APIKey, error) {
	var row models.APIKey
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, key_number, name, public_key, secret_digest, status, permissions, created_at, disabled_at
		FROM api_keys
		WHERE public_key = $1
	`, publicKey)
	return row, err
}

func (s *APIKeyStore) ListByMerchant(ctx context.Context, merchantID string, filter ListFilter) ([]models.APIKey, error) {
	query := `
		SELECT id, merchant_id, key_number, name, public_key, secret_digest, status, permissions, created_at, disabled_at
		FROM api_keys
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
		query += " AND (name ILIKE $" + itoa(param) + " OR key_number ILIKE $" + itoa(param) + ")"
		args = append(args, "%"+filter.Search+"%")
		param++
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(param) + " OFFSET $" + itoa(param+1)
	args = append(args, filter.limit(), filter.offset())
	var rows []models.APIKey
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}

// Disable revokes a key; already-disabled keys are left untouched.
func (s *APIKeyStore) Disable(ctx context.Context, tx Execer, merchantID, keyID string) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE api_keys
		SET status = 'disabled', disabled_at = NOW()
		WHERE id = $1 AND merchant_id = $2 AND status = 'active'
	`, keyID, merchantID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
