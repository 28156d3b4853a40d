package store

import (
	"context"

	"paygate/internal/models"
)

type CustomerStore struct {
	db DB
}

func NewCustomerStore(db DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func (s *CustomerStore) Create(ctx context.Context, tx Execer, customer models.Customer) error {
	query := `
		INSERT INTO customers (id, merchant_id, name, email)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query, customer.ID, customer.MerchantID, customer.Name, customer.Email)
	return err
}

func (s *CustomerStore) GetByID(ctx context.Context, merchantID, customerID string) (models.Customer, error) {
	var row models.Customer
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, name, email, created_at
		FROM customers
		WHERE id = $1 AND merchant_id = $2
	`, customerID, merchantID)
	return row, err
}

func (s *CustomerStore) ListByMerchant(ctx context.Context, merchantID string, filter ListFilter) ([]models.Customer, error) {
	query := `
		SELECT id, merchant_id, name, email, created_at
		FROM customers
		WHERE merchant_id = $1
	`
	args := []any{merchantID}
	param := 2
	if filter.Search != "" {
		query += " AND (name ILIKE $2 OR email ILIKE $2)"
		args = append(args, "%"+filter.Search+"%")
		param = 3
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(param) + " OFFSET $" + itoa(param+1)
	args = append(args, filter.limit(), filter.offset())
	var rows []models.Customer
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}
