package store

import (
	"context"

	"paygate/internal/models"
)

type ProductStore struct {
	db DB
}

func NewProductStore(db DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Create(ctx context.Context, tx Execer, product models.Product) error {
	query := `
		INSERT INTO products (id, merchant_id, name, unit_price_minor, tax_rate, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		product.ID, product.MerchantID, product.Name, product.UnitPriceMinor, product.TaxRate, product.Currency,
	)
	return err
}

func (s *ProductStore) GetByID(ctx context.Context, merchantID, productID string) (models.Product, error) {
	var row models.Product
	err := s.db.GetContext(ctx, &row, `
		SELECT id, merchant_id, name, unit_price_minor, tax_rate, currency, created_at
		FROM products
		WHERE id = $1 AND merchant_id = $2
	`, productID, merchantID)
	return row, err
}

func (s *ProductStore) ListByMerchant(ctx context.Context, merchantID string, filter ListFilter) ([]models.Product, error) {
	query := `
		SELECT id, merchant_id, name, unit_price_minor, tax_rate, currency, created_at
		FROM products
		WHERE merchant_id = $1
	`
	args := []any{merchantID}
	param := 2
	if filter.Search != "" {
		query += " AND name ILIKE $2"
		args = append(args, "%"+filter.Search+"%")
		param = 3
	}
	query += " ORDER BY created_at DESC LIMIT $" + itoa(param) + " OFFSET $" + itoa(param+1)
	args = append(args, filter.limit(), filter.offset())
	var rows []models.Product
	err := s.db.SelectContext(ctx, &rows, query, args...)
	return rows, err
}
