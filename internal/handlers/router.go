package handlers

import (
	"net/http"

	"paygate/internal/cache"
	"paygate/internal/config"
	"paygate/internal/db"
	"paygate/internal/ident"
	"paygate/internal/middleware"
	"paygate/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	merchants    MerchantStore
	wallets      WalletStore
	ledger       LedgerStore
	transactions TransactionStore
	links        PaymentLinkStore
	invoices     InvoiceStore
	customers    CustomerStore
	products     ProductStore
	apiKeys      APIKeyStore
	kyc          KYCStore
	admin        AdminStore
	audit        AuditStore
	sequences    SequenceStore
	payments     PaymentService
	invoicing    InvoiceService
	keys         APIKeyService
	cache        cache.Cache
	gen          *ident.Generator
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, merchants MerchantStore, wallets WalletStore, ledger LedgerStore, transactions TransactionStore, links PaymentLinkStore, invoices InvoiceStore, customers CustomerStore, products ProductStore, apiKeys APIKeyStore, kyc KYCStore, admin AdminStore, audit AuditStore, sequences SequenceStore, payments PaymentService, invoicing InvoiceService, keys APIKeyService, cacheClient cache.Cache, gen *ident.Generator, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		merchants:    merchants,
		wallets:      wallets,
		ledger:       ledger,
		transactions: transactions,
		links:        links,
		invoices:     invoices,
		customers:    customers,
		products:     products,
		apiKeys:      apiKeys,
		kyc:          kyc,
		admin:        admin,
		audit:        audit,
		sequences:    sequences,
		payments:     payments,
		invoicing:    invoicing,
		keys:         keys,
		cache:        cacheClient,
		gen:          gen,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Key", "X-Api-Secret"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	authed := middleware.Auth(h.cfg.JWTSecret)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authed).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(authed)
		r.Get("/wallets", h.ListWallets)
		r.Get("/wallets/{id}/balance", h.GetBalance)
		r.Get("/wallets/self-check", h.SelfCheck)

		r.Get("/transactions", h.ListTransactions)
		r.Post("/transactions", h.CreatePayment)
		r.Get("/transactions/export", h.ExportTransactions)
		r.Get("/dashboard/summary", h.DashboardSummary)

		r.Post("/invoices", h.CreateInvoice)
		r.Get("/invoices", h.ListInvoices)
		r.Get("/invoices/{id}", h.GetInvoice)
		r.Post("/invoices/{id}/status", h.UpdateInvoiceStatus)
		r.Get("/invoices/{id}/pdf", h.InvoicePDF)

		r.Post("/customers", h.CreateCustomer)
		r.Get("/customers", h.ListCustomers)
		r.Post("/products", h.CreateProduct)
		r.Get("/products", h.ListProducts)

		r.Post("/payment-links", h.CreatePaymentLink)
		r.Get("/payment-links", h.ListPaymentLinks)
		r.Get("/payment-links/{id}", h.GetPaymentLink)

		r.Post("/api-keys", h.IssueAPIKey)
		r.Get("/api-keys", h.ListAPIKeys)
		r.Post("/api-keys/{id}/disable", h.DisableAPIKey)

		r.Post("/kyc/documents", h.SubmitKYCDocument)
		r.Get("/kyc/documents", h.ListKYCDocuments)
	})

	router.Get("/pay/{slug}", h.ShowPaymentLink)
	router.With(middleware.APIKeyAuth(h.keys, "links:redeem")).Post("/pay/{slug}", h.RedeemPaymentLink)

	router.Route("/admin", func(r chi.Router) {
		r.Use(authed)
		r.With(middleware.RequireAdmin(h.admin, "CanViewMerchants")).Get("/merchants", h.AdminListMerchants)
		r.With(middleware.RequireAdmin(h.admin, "CanViewTransactions")).Get("/transactions", h.AdminListTransactions)
		r.With(middleware.RequireAdmin(h.admin, "CanReviewKYC")).Get("/kyc/pending", h.AdminListPendingKYC)
		r.With(middleware.RequireAdmin(h.admin, "CanReviewKYC")).Post("/kyc/{id}/review", h.AdminReviewKYC)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/roles/grant", h.GrantRole)
		r.With(middleware.RequireAdmin(h.admin, "")).Post("/promote", h.PromoteAdmin)
		r.With(middleware.RequireAdmin(h.admin, "CanViewTransactions")).Get("/audit", h.ListAuditLogs)
		r.With(middleware.RequireAdmin(h.admin, "CanViewTransactions")).Post("/invoices/mark-overdue", h.AdminMarkOverdue)
	})

	router.Get("/ws/updates", h.WSUpdates)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
