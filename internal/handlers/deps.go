package handlers

import (
	"context"

	"paygate/internal/models"
	"paygate/internal/services"
	"paygate/internal/store"
)

type MerchantStore interface {
	Create(ctx context.Context, tx store.Execer, id, businessName, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.Merchant, error)
	GetByID(ctx context.Context, merchantID string) (models.Merchant, error)
	UpdateKYCStatus(ctx context.Context, tx store.Execer, merchantID, status string) error
	ListAll(ctx context.Context, limit, offset int) ([]models.Merchant, error)
}

type WalletStore interface {
	Create(ctx context.Context, tx store.Execer, wallet models.Wallet) error
	GetByID(ctx context.Context, walletID string) (models.Wallet, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]store.WalletBalanceSummary, error)
}

type LedgerStore interface {
	SumByWallet(ctx context.Context, walletID string) (int64, error)
}

type TransactionStore interface {
	ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	VolumeByCurrency(ctx context.Context, merchantID string) ([]store.CurrencyVolume, error)
}

type PaymentLinkStore interface {
	GetByID(ctx context.Context, merchantID, linkID string) (models.PaymentLink, error)
	GetBySlug(ctx context.Context, slug string) (models.PaymentLink, error)
	ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.PaymentLink, error)
}

type InvoiceStore interface {
	GetByID(ctx context.Context, merchantID, invoiceID string) (models.Invoice, error)
	GetItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error)
	ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Invoice, error)
}

type CustomerStore interface {
	Create(ctx context.Context, tx store.Execer, customer models.Customer) error
	GetByID(ctx context.Context, merchantID, customerID string) (models.Customer, error)
	ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Customer, error)
}

type ProductStore interface {
	Create(ctx context.Context, tx store.Execer, product models.Product) error
	ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Product, error)
}

type APIKeyStore interface {
	ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.APIKey, error)
}

type KYCStore interface {
	Create(ctx context.Context, tx store.Execer, document models.KYCDocument) error
	GetByID(ctx context.Context, documentID string) (models.KYCDocument, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]models.KYCDocument, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.KYCDocument, error)
	Review(ctx context.Context, tx store.Execer, documentID, status, reason string) (int64, error)
}

type AdminStore interface {
	IsAdmin(ctx context.Context, merchantID string) (bool, bool, error)
	HasRole(ctx context.Context, merchantID, role string) (bool, error)
	CreateAdmin(ctx context.Context, tx store.Execer, merchantID string, isSuper bool, createdBy *string) error
	GrantRole(ctx context.Context, tx store.Execer, merchantID, role string) error
	HasAnyAdmin(ctx context.Context) (bool, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

type SequenceStore interface {
	Next(ctx context.Context, tx store.Getter, merchantID, scope string) (int64, error)
}

type PaymentService interface {
	CreateLink(ctx context.Context, req services.CreateLinkRequest) (models.PaymentLink, error)
	CreatePayment(ctx context.Context, req services.CreatePaymentRequest) (models.Transaction, error)
	RedeemLink(ctx context.Context, req services.RedeemLinkRequest) (models.Transaction, error)
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req services.CreateInvoiceRequest) (models.Invoice, []models.InvoiceItem, error)
	UpdateStatus(ctx context.Context, merchantID, invoiceID, toStatus string) (models.Invoice, error)
	MarkOverdue(ctx context.Context) (int64, error)
}

type APIKeyService interface {
	Issue(ctx context.Context, merchantID, name string, permissions []string) (services.IssuedKey, error)
	Authenticate(ctx context.Context, publicKey, secretKey, permission string) (models.APIKey, error)
	Disable(ctx context.Context, merchantID, keyID string) error
}
