package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"paygate/internal/auth"
	"paygate/internal/config"
	"paygate/internal/ident"
	"paygate/internal/middleware"
	"paygate/internal/models"
	"paygate/internal/services"
	"paygate/internal/store"
	"paygate/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubMerchantStore struct {
	createFn          func(ctx context.Context, tx store.Execer, id, businessName, email, passwordHash string) error
	getByEmailFn      func(ctx context.Context, email string) (models.Merchant, error)
	getByIDFn         func(ctx context.Context, merchantID string) (models.Merchant, error)
	updateKYCStatusFn func(ctx context.Context, tx store.Execer, merchantID, status string) error
	listAllFn         func(ctx context.Context, limit, offset int) ([]models.Merchant, error)
}

func (s stubMerchantStore) Create(ctx context.Context, tx store.Execer, id, businessName, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, businessName, email, passwordHash)
}

func (s stubMerchantStore) GetByEmail(ctx context.Context, email string) (models.Merchant, error) {
	if s.getByEmailFn == nil {
		return models.Merchant{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubMerchantStore) GetByID(ctx context.Context, merchantID string) (models.Merchant, error) {
	if s.getByIDFn == nil {
		return models.Merchant{ID: merchantID}, nil
	}
	return s.getByIDFn(ctx, merchantID)
}

func (s stubMerchantStore) UpdateKYCStatus(ctx context.Context, tx store.Execer, merchantID, status string) error {
	if s.updateKYCStatusFn == nil {
		return nil
	}
	return s.updateKYCStatusFn(ctx, tx, merchantID, status)
}

func (s stubMerchantStore) ListAll(ctx context.Context, limit, offset int) ([]models.Merchant, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

type stubWalletStore struct {
	createFn         func(ctx context.Context, tx store.Execer, wallet models.Wallet) error
	getByIDFn        func(ctx context.Context, walletID string) (models.Wallet, error)
	listByMerchantFn func(ctx context.Context, merchantID string) ([]store.WalletBalanceSummary, error)
}

func (s stubWalletStore) Create(ctx context.Context, tx store.Execer, wallet models.Wallet) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, wallet)
}

func (s stubWalletStore) GetByID(ctx context.Context, walletID string) (models.Wallet, error) {
	if s.getByIDFn == nil {
		return models.Wallet{}, nil
	}
	return s.getByIDFn(ctx, walletID)
}

func (s stubWalletStore) ListByMerchant(ctx context.Context, merchantID string) ([]store.WalletBalanceSummary, error) {
	if s.listByMerchantFn == nil {
		return nil, nil
	}
	return s.listByMerchantFn(ctx, merchantID)
}

type stubLedgerStore struct {
	sumByWalletFn func(ctx context.Context, walletID string) (int64, error)
}

func (s stubLedgerStore) SumByWallet(ctx context.Context, walletID string) (int64, error) {
	if s.sumByWalletFn == nil {
		return 0, nil
	}
	return s.sumByWalletFn(ctx, walletID)
}

type stubTransactionStore struct {
	listByMerchantFn   func(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Transaction, error)
	listAllFn          func(ctx context.Context, limit, offset int) ([]models.Transaction, error)
	volumeByCurrencyFn func(ctx context.Context, merchantID string) ([]store.CurrencyVolume, error)
}

func (s stubTransactionStore) ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Transaction, error) {
	if s.listByMerchantFn == nil {
		return nil, nil
	}
	return s.listByMerchantFn(ctx, merchantID, filter)
}

func (s stubTransactionStore) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

func (s stubTransactionStore) VolumeByCurrency(ctx context.Context, merchantID string) ([]store.CurrencyVolume, error) {
	if s.volumeByCurrencyFn == nil {
		return nil, nil
	}
	return s.volumeByCurrencyFn(ctx, merchantID)
}

type stubLinkStore struct {
	getByIDFn        func(ctx context.Context, merchantID, linkID string) (models.PaymentLink, error)
	getBySlugFn      func(ctx context.Context, slug string) (models.PaymentLink, error)
	listByMerchantFn func(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.PaymentLink, error)
}

func (s stubLinkStore) GetByID(ctx context.Context, merchantID, linkID string) (models.PaymentLink, error) {
	if s.getByIDFn == nil {
		return models.PaymentLink{}, nil
	}
	return s.getByIDFn(ctx, merchantID, linkID)
}

func (s stubLinkStore) GetBySlug(ctx context.Context, slug string) (models.PaymentLink, error) {
	if s.getBySlugFn == nil {
		return models.PaymentLink{}, nil
	}
	return s.getBySlugFn(ctx, slug)
}

func (s stubLinkStore) ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.PaymentLink, error) {
	if s.listByMerchantFn == nil {
		return nil, nil
	}
	return s.listByMerchantFn(ctx, merchantID, filter)
}

type stubInvoiceStore struct {
	getByIDFn        func(ctx context.Context, merchantID, invoiceID string) (models.Invoice, error)
	getItemsFn       func(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error)
	listByMerchantFn func(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Invoice, error)
}

func (s stubInvoiceStore) GetByID(ctx context.Context, merchantID, invoiceID string) (models.Invoice, error) {
	if s.getByIDFn == nil {
		return models.Invoice{}, nil
	}
	return s.getByIDFn(ctx, merchantID, invoiceID)
}

func (s stubInvoiceStore) GetItems(ctx context.Context, invoiceID string) ([]models.InvoiceItem, error) {
	if s.getItemsFn == nil {
		return nil, nil
	}
	return s.getItemsFn(ctx, invoiceID)
}

func (s stubInvoiceStore) ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Invoice, error) {
	if s.listByMerchantFn == nil {
		return nil, nil
	}
	return s.listByMerchantFn(ctx, merchantID, filter)
}

type stubCustomerStore struct {
	createFn         func(ctx context.Context, tx store.Execer, customer models.Customer) error
	getByIDFn        func(ctx context.Context, merchantID, customerID string) (models.Customer, error)
	listByMerchantFn func(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Customer, error)
}

func (s stubCustomerStore) Create(ctx context.Context, tx store.Execer, customer models.Customer) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, customer)
}

func (s stubCustomerStore) GetByID(ctx context.Context, merchantID, customerID string) (models.Customer, error) {
	if s.getByIDFn == nil {
		return models.Customer{ID: customerID, MerchantID: merchantID}, nil
	}
	return s.getByIDFn(ctx, merchantID, customerID)
}

func (s stubCustomerStore) ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Customer, error) {
	if s.listByMerchantFn == nil {
		return nil, nil
	}
	return s.listByMerchantFn(ctx, merchantID, filter)
}

type stubProductStore struct {
	createFn         func(ctx context.Context, tx store.Execer, product models.Product) error
	listByMerchantFn func(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Product, error)
}

func (s stubProductStore) Create(ctx context.Context, tx store.Execer, product models.Product) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, product)
}

func (s stubProductStore) ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.Product, error) {
	if s.listByMerchantFn == nil {
		return nil, nil
	}
	return s.listByMerchantFn(ctx, merchantID, filter)
}

type stubAPIKeyStore struct {
	listByMerchantFn func(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.APIKey, error)
}

func (s stubAPIKeyStore) ListByMerchant(ctx context.Context, merchantID string, filter store.ListFilter) ([]models.APIKey, error) {
	if s.listByMerchantFn == nil {
		return nil, nil
	}
	return s.listByMerchantFn(ctx, merchantID, filter)
}

type stubKYCStore struct {
	createFn      func(ctx context.Context, tx store.Execer, document models.KYCDocument) error
	getByIDFn     func(ctx context.Context, documentID string) (models.KYCDocument, error)
	listMineFn    func(ctx context.Context, merchantID string) ([]models.KYCDocument, error)
	listPendingFn func(ctx context.Context, limit, offset int) ([]models.KYCDocument, error)
	reviewFn      func(ctx context.Context, tx store.Execer, documentID, status, reason string) (int64, error)
}

func (s stubKYCStore) Create(ctx context.Context, tx store.Execer, document models.KYCDocument) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, document)
}

func (s stubKYCStore) GetByID(ctx context.Context, documentID string) (models.KYCDocument, error) {
	if s.getByIDFn == nil {
		return models.KYCDocument{ID: documentID}, nil
	}
	return s.getByIDFn(ctx, documentID)
}

func (s stubKYCStore) ListByMerchant(ctx context.Context, merchantID string) ([]models.KYCDocument, error) {
	if s.listMineFn == nil {
		return nil, nil
	}
	return s.listMineFn(ctx, merchantID)
}

func (s stubKYCStore) ListPending(ctx context.Context, limit, offset int) ([]models.KYCDocument, error) {
	if s.listPendingFn == nil {
		return nil, nil
	}
	return s.listPendingFn(ctx, limit, offset)
}

func (s stubKYCStore) Review(ctx context.Context, tx store.Execer, documentID, status, reason string) (int64, error) {
	if s.reviewFn == nil {
		return 1, nil
	}
	return s.reviewFn(ctx, tx, documentID, status, reason)
}

type stubAdminStore struct {
	isAdminFn     func(ctx context.Context, merchantID string) (bool, bool, error)
	hasRoleFn     func(ctx context.Context, merchantID, role string) (bool, error)
	createAdminFn func(ctx context.Context, tx store.Execer, merchantID string, isSuper bool, createdBy *string) error
	grantRoleFn   func(ctx context.Context, tx store.Execer, merchantID, role string) error
	hasAnyAdminFn func(ctx context.Context) (bool, error)
}

func (s stubAdminStore) IsAdmin(ctx context.Context, merchantID string) (bool, bool, error) {
	if s.isAdminFn == nil {
		return false, false, nil
	}
	return s.isAdminFn(ctx, merchantID)
}

func (s stubAdminStore) HasRole(ctx context.Context, merchantID, role string) (bool, error) {
	if s.hasRoleFn == nil {
		return false, nil
	}
	return s.hasRoleFn(ctx, merchantID, role)
}

func (s stubAdminStore) CreateAdmin(ctx context.Context, tx store.Execer, merchantID string, isSuper bool, createdBy *string) error {
	if s.createAdminFn == nil {
		return nil
	}
	return s.createAdminFn(ctx, tx, merchantID, isSuper, createdBy)
}

func (s stubAdminStore) GrantRole(ctx context.Context, tx store.Execer, merchantID, role string) error {
	if s.grantRoleFn == nil {
		return nil
	}
	return s.grantRoleFn(ctx, tx, merchantID, role)
}

func (s stubAdminStore) HasAnyAdmin(ctx context.Context) (bool, error) {
	if s.hasAnyAdminFn == nil {
		return false, nil
	}
	return s.hasAnyAdminFn(ctx)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

type stubSequenceStore struct {
	nextFn func(ctx context.Context, tx store.Getter, merchantID, scope string) (int64, error)
}

func (s stubSequenceStore) Next(ctx context.Context, tx store.Getter, merchantID, scope string) (int64, error) {
	if s.nextFn == nil {
		return 1, nil
	}
	return s.nextFn(ctx, tx, merchantID, scope)
}

type stubPaymentService struct {
	createLinkFn    func(ctx context.Context, req services.CreateLinkRequest) (models.PaymentLink, error)
	createPaymentFn func(ctx context.Context, req services.CreatePaymentRequest) (models.Transaction, error)
	redeemLinkFn    func(ctx context.Context, req services.RedeemLinkRequest) (models.Transaction, error)
}

func (s stubPaymentService) CreateLink(ctx context.Context, req services.CreateLinkRequest) (models.PaymentLink, error) {
	if s.createLinkFn == nil {
		return models.PaymentLink{}, nil
	}
	return s.createLinkFn(ctx, req)
}

func (s stubPaymentService) CreatePayment(ctx context.Context, req services.CreatePaymentRequest) (models.Transaction, error) {
	if s.createPaymentFn == nil {
		return models.Transaction{}, nil
	}
	return s.createPaymentFn(ctx, req)
}

func (s stubPaymentService) RedeemLink(ctx context.Context, req services.RedeemLinkRequest) (models.Transaction, error) {
	if s.redeemLinkFn == nil {
		return models.Transaction{}, nil
	}
	return s.redeemLinkFn(ctx, req)
}

type stubInvoiceService struct {
	createInvoiceFn func(ctx context.Context, req services.CreateInvoiceRequest) (models.Invoice, []models.InvoiceItem, error)
	updateStatusFn  func(ctx context.Context, merchantID, invoiceID, toStatus string) (models.Invoice, error)
	markOverdueFn   func(ctx context.Context) (int64, error)
}

func (s stubInvoiceService) CreateInvoice(ctx context.Context, req services.CreateInvoiceRequest) (models.Invoice, []models.InvoiceItem, error) {
	if s.createInvoiceFn == nil {
		return models.Invoice{}, nil, nil
	}
	return s.createInvoiceFn(ctx, req)
}

func (s stubInvoiceService) UpdateStatus(ctx context.Context, merchantID, invoiceID, toStatus string) (models.Invoice, error) {
	if s.updateStatusFn == nil {
		return models.Invoice{}, nil
	}
	return s.updateStatusFn(ctx, merchantID, invoiceID, toStatus)
}

func (s stubInvoiceService) MarkOverdue(ctx context.Context) (int64, error) {
	if s.markOverdueFn == nil {
		return 0, nil
	}
	return s.markOverdueFn(ctx)
}

type stubAPIKeyService struct {
	issueFn        func(ctx context.Context, merchantID, name string, permissions []string) (services.IssuedKey, error)
	authenticateFn func(ctx context.Context, publicKey, secretKey, permission string) (models.APIKey, error)
	disableFn      func(ctx context.Context, merchantID, keyID string) error
}

func (s stubAPIKeyService) Issue(ctx context.Context, merchantID, name string, permissions []string) (services.IssuedKey, error) {
	if s.issueFn == nil {
		return services.IssuedKey{}, nil
	}
	return s.issueFn(ctx, merchantID, name, permissions)
}

func (s stubAPIKeyService) Authenticate(ctx context.Context, publicKey, secretKey, permission string) (models.APIKey, error) {
	if s.authenticateFn == nil {
		return models.APIKey{}, nil
	}
	return s.authenticateFn(ctx, publicKey, secretKey, permission)
}

func (s stubAPIKeyService) Disable(ctx context.Context, merchantID, keyID string) error {
	if s.disableFn == nil {
		return nil
	}
	return s.disableFn(ctx, merchantID, keyID)
}

// memoryCache is an in-process stand-in for the Redis cache.
type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}}
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func (c *memoryCache) Key(scope, id string) string {
	return "test:" + scope + ":" + id
}

// testStubs bundles every dependency with a working default so each test
// overrides only what it cares about.
type testStubs struct {
	txRunner     fakeTxRunner
	merchants    stubMerchantStore
	wallets      stubWalletStore
	ledger       stubLedgerStore
	transactions stubTransactionStore
	links        stubLinkStore
	invoices     stubInvoiceStore
	customers    stubCustomerStore
	products     stubProductStore
	apiKeys      stubAPIKeyStore
	kyc          stubKYCStore
	admin        stubAdminStore
	audit        stubAuditStore
	sequences    stubSequenceStore
	payments     stubPaymentService
	invoicing    stubInvoiceService
	keys         stubAPIKeyService
}

func newTestHandler(t *testing.T, stubs testStubs) *Handler {
	t.Helper()
	cfg := config.Config{
		AppEnv:             "test",
		Port:               "0",
		JWTSecret:          "secret",
		TokenTTL:           time.Minute,
		AllowedOrigins:     "*",
		PaymentLinkBaseURL: "https://pay.example.com",
	}
	gen, err := ident.NewGenerator(1)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	return New(stubs.txRunner, cfg, stubs.merchants, stubs.wallets, stubs.ledger, stubs.transactions, stubs.links, stubs.invoices, stubs.customers, stubs.products, stubs.apiKeys, stubs.kyc, stubs.admin, stubs.audit, stubs.sequences, stubs.payments, stubs.invoicing, stubs.keys, newMemoryCache(), gen, websocket.NewHub())
}

func serveWithAuth(t *testing.T, handler http.HandlerFunc, merchantID string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", merchantID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}

func stringPtr(value string) *string {
	return &value
}
