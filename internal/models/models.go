package models

import "time"

type Merchant struct {
	ID           string    `db:"id" json:"id"`
	BusinessName string    `db:"business_name" json:"business_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	KYCStatus    string    `db:"kyc_status" json:"kyc_status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Customer struct {
	ID         string    `db:"id" json:"id"`
	MerchantID string    `db:"merchant_id" json:"merchant_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Product struct {
	ID             string    `db:"id" json:"id"`
	MerchantID     string    `db:"merchant_id" json:"merchant_id"`
	Name           string    `db:"name" json:"name"`
	UnitPriceMinor int64     `db:"unit_price_minor" json:"unit_price_minor"`
	TaxRate        string    `db:"tax_rate" json:"tax_rate"`
	Currency       string    `db:"currency" json:"currency"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Invoice statuses: draft, sent, paid, overdue, cancelled.
type Invoice struct {
	ID            string     `db:"id" json:"id"`
	MerchantID    string     `db:"merchant_id" json:"merchant_id"`
	CustomerID    string     `db:"customer_id" json:"customer_id"`
	InvoiceNumber string     `db:"invoice_number" json:"invoice_number"`
	Currency      string     `db:"currency" json:"currency"`
	SubtotalMinor int64      `db:"subtotal_minor" json:"subtotal_minor"`
	TaxMinor      int64      `db:"tax_minor" json:"tax_minor"`
	DiscountMinor int64      `db:"discount_minor" json:"discount_minor"`
	TotalMinor    int64      `db:"total_minor" json:"total_minor"`
	Status        string     `db:"status" json:"status"`
	IssueDate     time.Time  `db:"issue_date" json:"issue_date"`
	DueDate       time.Time  `db:"due_date" json:"due_date"`
	Notes         string     `db:"notes" json:"notes"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}

type InvoiceItem struct {
	ID             string  `db:"id" json:"id"`
	InvoiceID      string  `db:"invoice_id" json:"invoice_id"`
	ProductID      *string `db:"product_id" json:"product_id,omitempty"`
	Name           string  `db:"name" json:"name"`
	Description    string  `db:"description" json:"description"`
	Quantity       int64   `db:"quantity" json:"quantity"`
	UnitPriceMinor int64   `db:"unit_price_minor" json:"unit_price_minor"`
	TaxRate        string  `db:"tax_rate" json:"tax_rate"`
	TaxMinor       int64   `db:"tax_minor" json:"tax_minor"`
	TotalMinor     int64   `db:"total_minor" json:"total_minor"`
	Position       int     `db:"position" json:"position"`
}

// PaymentLink statuses: active, expired, used. "expired" is derived from the
// clock at read time; only "used" is stored explicitly.
type PaymentLink struct {
	ID          string     `db:"id" json:"id"`
	MerchantID  string     `db:"merchant_id" json:"merchant_id"`
	LinkNumber  string     `db:"link_number" json:"link_number"`
	Title       string     `db:"title" json:"title"`
	AmountMinor int64      `db:"amount_minor" json:"amount_minor"`
	Currency    string     `db:"currency" json:"currency"`
	Method      string     `db:"method" json:"method"`
	Slug        string     `db:"slug" json:"slug"`
	URL         string     `db:"url" json:"url"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time  `db:"expires_at" json:"expires_at"`
	UsedAt      *time.Time `db:"used_at" json:"used_at,omitempty"`
}

// Transaction statuses: pending, completed, failed. Hash is assigned only
// when the transaction completes.
type Transaction struct {
	ID          string     `db:"id" json:"id"`
	MerchantID  string     `db:"merchant_id" json:"merchant_id"`
	WalletID    string     `db:"wallet_id" json:"wallet_id"`
	LinkID      *string    `db:"link_id" json:"link_id,omitempty"`
	Reference   string     `db:"reference" json:"reference"`
	AmountMinor int64      `db:"amount_minor" json:"amount_minor"`
	FeeMinor    int64      `db:"fee_minor" json:"fee_minor"`
	Currency    string     `db:"currency" json:"currency"`
	Status      string     `db:"status" json:"status"`
	Hash        *string    `db:"hash" json:"hash,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

type Wallet struct {
	ID           string    `db:"id" json:"id"`
	MerchantID   *string   `db:"merchant_id" json:"merchant_id,omitempty"`
	Type         string    `db:"type" json:"type"`
	Address      string    `db:"address" json:"address"`
	Currency     string    `db:"currency" json:"currency"`
	BalanceMinor int64     `db:"balance_minor" json:"balance_minor"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	IsSystem     bool      `db:"is_system" json:"is_system"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type LedgerEntry struct {
	ID            string    `db:"id" json:"id"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	WalletID      string    `db:"wallet_id" json:"wallet_id"`
	AmountMinor   int64     `db:"amount_minor" json:"amount_minor"`
	Currency      string    `db:"currency" json:"currency"`
	Description   string    `db:"description" json:"description"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type APIKey struct {
	ID           string     `db:"id" json:"id"`
	MerchantID   string     `db:"merchant_id" json:"merchant_id"`
	KeyNumber    string     `db:"key_number" json:"key_number"`
	Name         string     `db:"name" json:"name"`
	PublicKey    string     `db:"public_key" json:"public_key"`
	SecretDigest string     `db:"secret_digest" json:"-"`
	Status       string     `db:"status" json:"status"`
	Permissions  string     `db:"permissions" json:"permissions"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	DisabledAt   *time.Time `db:"disabled_at" json:"disabled_at,omitempty"`
}

// KYCDocument statuses: pending, verified, rejected.
type KYCDocument struct {
	ID             string     `db:"id" json:"id"`
	MerchantID     string     `db:"merchant_id" json:"merchant_id"`
	DocumentNumber string     `db:"document_number" json:"document_number"`
	Type           string     `db:"type" json:"type"`
	FileName       string     `db:"file_name" json:"file_name"`
	Status         string     `db:"status" json:"status"`
	Reason         string     `db:"reason" json:"reason"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ReviewedAt     *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
}
