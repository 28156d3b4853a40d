package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paygate/internal/cache"
	"paygate/internal/config"
	"paygate/internal/db"
	"paygate/internal/handlers"
	"paygate/internal/ident"
	"paygate/internal/services"
	"paygate/internal/store"
	"paygate/internal/websocket"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	gen, err := ident.NewGenerator(cfg.SnowflakeNode)
	if err != nil {
		log.Fatalf("failed to initialize id generator: %v", err)
	}
	feeRate, err := decimal.NewFromString(cfg.FeePercent)
	if err != nil {
		log.Fatalf("invalid FEE_PERCENT %q: %v", cfg.FeePercent, err)
	}

	merchants := store.NewMerchantStore(database)
	wallets := store.NewWalletStore(database)
	ledger := store.NewLedgerStore(database)
	transactions := store.NewTransactionStore(database)
	links := store.NewPaymentLinkStore(database)
	invoices := store.NewInvoiceStore(database)
	customers := store.NewCustomerStore(database)
	products := store.NewProductStore(database)
	apiKeys := store.NewAPIKeyStore(database)
	kyc := store.NewKYCStore(database)
	admin := store.NewAdminStore(database)
	audit := store.NewAuditStore(database)
	sequences := store.NewSequenceStore(database)
	txRunner := db.NewTxRunner(database)

	redisCache := cache.NewRedis(cfg.RedisAddr, "paygate")
	hub := websocket.NewHub()
	confirmer := services.NewConfirmer(cfg.ConfirmationDelay)
	payments := services.NewPaymentService(txRunner, wallets, ledger, transactions, links, sequences, audit, hub, gen, confirmer, feeRate, cfg.PaymentLinkBaseURL)
	invoicing := services.NewInvoiceService(txRunner, invoices, customers, products, sequences, audit, gen)
	keys := services.NewAPIKeyService(txRunner, apiKeys, sequences, audit, gen)

	handler := handlers.New(txRunner, cfg, merchants, wallets, ledger, transactions, links, invoices, customers, products, apiKeys, kyc, admin, audit, sequences, payments, invoicing, keys, redisCache, gen, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("payment gateway API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
	// Pending mock confirmations are cancelled rather than left running.
	confirmer.Stop()
}
