package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"paygate/internal/db"
	"paygate/internal/ident"
	"paygate/internal/models"
	"paygate/internal/money"
	"paygate/internal/store"
	"paygate/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrMethodMismatch      = errors.New("method does not match currency kind")
	ErrInvalidExpiry       = errors.New("expiry must be in the future")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrUnauthorizedWallet  = errors.New("wallet does not belong to merchant")
	ErrWalletInactive      = errors.New("wallet is inactive")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrLinkNotFound        = errors.New("payment link not found")
	ErrLinkExpired         = errors.New("payment link expired")
	ErrLinkUsed            = errors.New("payment link already used")
	ErrEmptyTitle          = errors.New("title is required")
)

type WalletStore interface {
	Create(ctx context.Context, tx store.Execer, wallet models.Wallet) error
	GetByID(ctx context.Context, walletID string) (models.Wallet, error)
	GetForUpdate(ctx context.Context, tx store.Getter, walletID string) (models.Wallet, error)
	GetHotByMerchantAndCurrency(ctx context.Context, tx store.Getter, merchantID, currency string) (models.Wallet, error)
	GetSystemWallet(ctx context.Context, tx store.Getter, currency string) (models.Wallet, error)
	UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balanceMinor int64) error
}

type LedgerStore interface {
	InsertEntries(ctx context.Context, tx store.Execer, entries []store.LedgerEntryInput) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	MarkCompleted(ctx context.Context, tx store.Execer, transactionID, hash string) (int64, error)
	MarkFailed(ctx context.Context, tx store.Execer, transactionID string) (int64, error)
	GetByID(ctx context.Context, transactionID string) (models.Transaction, error)
}

type PaymentLinkStore interface {
	Create(ctx context.Context, tx store.Execer, link models.PaymentLink) error
	GetBySlug(ctx context.Context, slug string) (models.PaymentLink, error)
	MarkUsed(ctx context.Context, tx store.Execer, linkID string) (int64, error)
}

type SequenceStore interface {
	Next(ctx context.Context, tx store.Getter, merchantID, scope string) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type TransactionHub interface {
	BroadcastTransaction(merchantID string, update websocket.TransactionUpdate)
}

// PaymentService owns payment links and the transaction lifecycle:
// pending on create, then a delayed confirmation settles the transaction
// against the merchant's wallet through balanced ledger entries.
type PaymentService struct {
	txRunner     db.TxRunner
	wallets      WalletStore
	ledger       LedgerStore
	transactions TransactionStore
	links        PaymentLinkStore
	sequences    SequenceStore
	audit        AuditStore
	hub          TransactionHub
	gen          *ident.Generator
	confirmer    *Confirmer
	feeRate      decimal.Decimal
	linkBaseURL  string
}

func NewPaymentService(txRunner db.TxRunner, wallets WalletStore, ledger LedgerStore, transactions TransactionStore, links PaymentLinkStore, sequences SequenceStore, audit AuditStore, hub TransactionHub, gen *ident.Generator, confirmer *Confirmer, feeRate decimal.Decimal, linkBaseURL string) *PaymentService {
	return &PaymentService{
		txRunner:     txRunner,
		wallets:      wallets,
		ledger:       ledger,
		transactions: transactions,
		links:        links,
		sequences:    sequences,
		audit:        audit,
		hub:          hub,
		gen:          gen,
		confirmer:    confirmer,
		feeRate:      feeRate,
		linkBaseURL:  linkBaseURL,
	}
}

type CreateLinkRequest struct {
	MerchantID  string
	Title       string
	AmountMinor int64
	Currency    string
	Method      string
	ExpiresIn   time.Duration
}

func (s *PaymentService) CreateLink(ctx context.Context, req CreateLinkRequest) (models.PaymentLink, error) {
	if req.Title == "" {
		return models.PaymentLink{}, ErrEmptyTitle
	}
	if req.AmountMinor <= 0 {
		return models.PaymentLink{}, ErrInvalidAmount
	}
	currency, ok := money.Lookup(req.Currency)
	if !ok {
		return models.PaymentLink{}, ErrUnsupportedCurrency
	}
	if req.Method != "fiat" && req.Method != "crypto" {
		return models.PaymentLink{}, ErrInvalidMethod
	}
	if (req.Method == "crypto") != currency.IsCrypto {
		return models.PaymentLink{}, ErrMethodMismatch
	}
	if req.ExpiresIn <= 0 {
		return models.PaymentLink{}, ErrInvalidExpiry
	}
	slug, err := ident.NewSlug()
	if err != nil {
		return models.PaymentLink{}, err
	}
	createdAt := time.Now().UTC()
	link := models.PaymentLink{
		ID:          s.gen.EntityID(),
		MerchantID:  req.MerchantID,
		Title:       req.Title,
		AmountMinor: req.AmountMinor,
		Currency:    currency.Code,
		Method:      req.Method,
		Slug:        slug,
		URL:         s.linkBaseURL + "/pay/" + slug,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(req.ExpiresIn),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		sequence, err := s.sequences.Next(ctx, tx, req.MerchantID, "payment_link")
		if err != nil {
			return err
		}
		link.LinkNumber = ident.DocumentNumber(ident.PrefixPaymentLink, sequence)
		if err := s.links.Create(ctx, tx, link); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"link_number": link.LinkNumber,
			"amount":      money.FormatMinor(link.AmountMinor, link.Currency),
			"currency":    link.Currency,
		})
		return s.audit.Log(ctx, tx, req.MerchantID, "payment_link.create", "payment_link", link.ID, string(data))
	})
	if err != nil {
		return models.PaymentLink{}, err
	}
	return link, nil
}

// LinkStatus derives the display status from stored state and the clock.
func LinkStatus(link models.PaymentLink, now time.Time) string {
	if link.UsedAt != nil {
		return "used"
	}
	if now.After(link.ExpiresAt) {
		return "expired"
	}
	return "active"
}

type CreatePaymentRequest struct {
	MerchantID  string
	WalletID    string
	AmountMinor int64
	Currency    string
	Reference   string
}

// CreatePayment records a pending transaction against one of the merchant's
// wallets and schedules its confirmation.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (models.Transaction, error) {
	if req.AmountMinor <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}
	if !money.IsSupported(req.Currency) {
		return models.Transaction{}, ErrUnsupportedCurrency
	}
	wallet, err := s.wallets.GetByID(ctx, req.WalletID)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Transaction{}, ErrWalletNotFound
		}
		return models.Transaction{}, err
	}
	if wallet.MerchantID == nil || *wallet.MerchantID != req.MerchantID {
		return models.Transaction{}, ErrUnauthorizedWallet
	}
	if !wallet.IsActive {
		return models.Transaction{}, ErrWalletInactive
	}
	if wallet.Currency != req.Currency {
		return models.Transaction{}, ErrCurrencyMismatch
	}
	transaction := models.Transaction{
		ID:          s.gen.EntityID(),
		MerchantID:  req.MerchantID,
		WalletID:    req.WalletID,
		Reference:   req.Reference,
		AmountMinor: req.AmountMinor,
		FeeMinor:    s.feeFor(req.AmountMinor),
		Currency:    req.Currency,
		Status:      "pending",
		CreatedAt:   time.Now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:          transaction.ID,
			MerchantID:  transaction.MerchantID,
			WalletID:    transaction.WalletID,
			Reference:   transaction.Reference,
			AmountMinor: transaction.AmountMinor,
			FeeMinor:    transaction.FeeMinor,
			Currency:    transaction.Currency,
			Status:      transaction.Status,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"amount":   money.FormatMinor(transaction.AmountMinor, transaction.Currency),
			"currency": transaction.Currency,
		})
		return s.audit.Log(ctx, tx, req.MerchantID, "transaction.create", "transaction", transaction.ID, string(data))
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.hub.BroadcastTransaction(req.MerchantID, websocket.TransactionUpdate{
		TransactionID: transaction.ID,
		Status:        "pending",
		WalletID:      transaction.WalletID,
		Currency:      transaction.Currency,
	})
	s.scheduleConfirmation(transaction.ID)
	return transaction, nil
}

type RedeemLinkRequest struct {
	Slug      string
	Reference string
}

// RedeemLink consumes an active payment link and opens the pending
// transaction that will credit the merchant's hot wallet on confirmation.
func (s *PaymentService) RedeemLink(ctx context.Context, req RedeemLinkRequest) (models.Transaction, error) {
	link, err := s.links.GetBySlug(ctx, req.Slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Transaction{}, ErrLinkNotFound
		}
		return models.Transaction{}, err
	}
	switch LinkStatus(link, time.Now()) {
	case "used":
		return models.Transaction{}, ErrLinkUsed
	case "expired":
		return models.Transaction{}, ErrLinkExpired
	}
	reference := req.Reference
	if reference == "" {
		reference = "payment link " + link.LinkNumber
	}
	transaction := models.Transaction{
		ID:          s.gen.EntityID(),
		MerchantID:  link.MerchantID,
		LinkID:      &link.ID,
		Reference:   reference,
		AmountMinor: link.AmountMinor,
		FeeMinor:    s.feeFor(link.AmountMinor),
		Currency:    link.Currency,
		Status:      "pending",
		CreatedAt:   time.Now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		consumed, err := s.links.MarkUsed(ctx, tx, link.ID)
		if err != nil {
			return err
		}
		if consumed == 0 {
			return ErrLinkUsed
		}
		wallet, err := s.ensureHotWallet(ctx, tx, link.MerchantID, link.Currency)
		if err != nil {
			return err
		}
		transaction.WalletID = wallet.ID
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:          transaction.ID,
			MerchantID:  transaction.MerchantID,
			WalletID:    transaction.WalletID,
			LinkID:      transaction.LinkID,
			Reference:   transaction.Reference,
			AmountMinor: transaction.AmountMinor,
			FeeMinor:    transaction.FeeMinor,
			Currency:    transaction.Currency,
			Status:      transaction.Status,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"link_number": link.LinkNumber,
			"amount":      money.FormatMinor(link.AmountMinor, link.Currency),
		})
		return s.audit.Log(ctx, tx, link.MerchantID, "payment_link.redeem", "payment_link", link.ID, string(data))
	})
	if err != nil {
		return models.Transaction{}, err
	}
	s.hub.BroadcastTransaction(link.MerchantID, websocket.TransactionUpdate{
		TransactionID: transaction.ID,
		Status:        "pending",
		WalletID:      transaction.WalletID,
		Currency:      transaction.Currency,
	})
	s.scheduleConfirmation(transaction.ID)
	return transaction, nil
}

func (s *PaymentService) ensureHotWallet(ctx context.Context, tx *sqlx.Tx, merchantID, currency string) (models.Wallet, error) {
	wallet, err := s.wallets.GetHotByMerchantAndCurrency(ctx, tx, merchantID, currency)
	if err == nil {
		return wallet, nil
	}
	if err != sql.ErrNoRows {
		return models.Wallet{}, err
	}
	address, err := ident.NewWalletAddress()
	if err != nil {
		return models.Wallet{}, err
	}
	wallet = models.Wallet{
		ID:         s.gen.EntityID(),
		MerchantID: &merchantID,
		Type:       "hot",
		Address:    address,
		Currency:   currency,
		IsActive:   true,
	}
	if err := s.wallets.Create(ctx, tx, wallet); err != nil {
		return models.Wallet{}, err
	}
	return wallet, nil
}

func (s *PaymentService) scheduleConfirmation(transactionID string) {
	s.confirmer.Schedule(func(ctx context.Context) {
		if err := s.Confirm(ctx, transactionID); err != nil {
			log.Printf("confirmation of %s failed: %v", transactionID, err)
			s.fail(ctx, transactionID)
		}
	})
}

// Confirm settles a pending transaction: assigns its hash, writes balanced
// ledger entries and moves the net amount into the merchant wallet.
func (s *PaymentService) Confirm(ctx context.Context, transactionID string) error {
	transaction, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if transaction.Status != "pending" {
		return nil
	}
	hash, err := ident.NewTransactionHash()
	if err != nil {
		return err
	}
	var (
		walletBalanceAfter int64
		settledNow         bool
	)
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		settledNow = false // reset on serialization retry
		settled, err := s.transactions.MarkCompleted(ctx, tx, transactionID, hash)
		if err != nil {
			return err
		}
		if settled == 0 {
			return nil
		}
		settledNow = true
		wallet, err := s.wallets.GetForUpdate(ctx, tx, transaction.WalletID)
		if err != nil {
			return err
		}
		system, err := s.wallets.GetSystemWallet(ctx, tx, transaction.Currency)
		if err != nil {
			return err
		}
		amount := transaction.AmountMinor
		fee := transaction.FeeMinor
		entries := []store.LedgerEntryInput{
			{
				ID:            uuid.NewString(),
				TransactionID: transactionID,
				WalletID:      system.ID,
				AmountMinor:   -amount,
				Currency:      transaction.Currency,
				Description:   "Payment clearing debit",
			},
			{
				ID:            uuid.NewString(),
				TransactionID: transactionID,
				WalletID:      wallet.ID,
				AmountMinor:   amount,
				Currency:      transaction.Currency,
				Description:   "Payment credit",
			},
			{
				ID:            uuid.NewString(),
				TransactionID: transactionID,
				WalletID:      wallet.ID,
				AmountMinor:   -fee,
				Currency:      transaction.Currency,
				Description:   "Processing fee",
			},
			{
				ID:            uuid.NewString(),
				TransactionID: transactionID,
				WalletID:      system.ID,
				AmountMinor:   fee,
				Currency:      transaction.Currency,
				Description:   "Processing fee income",
			},
		}
		if err := ensureBalanced(entries); err != nil {
			return err
		}
		if err := s.ledger.InsertEntries(ctx, tx, entries); err != nil {
			return err
		}
		walletBalanceAfter = wallet.BalanceMinor + amount - fee
		if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, walletBalanceAfter); err != nil {
			return err
		}
		if err := s.wallets.UpdateBalance(ctx, tx, system.ID, system.BalanceMinor-amount+fee); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"hash": hash})
		return s.audit.Log(ctx, tx, transaction.MerchantID, "transaction.confirm", "transaction", transactionID, string(data))
	})
	if err != nil {
		return err
	}
	if !settledNow {
		return nil
	}
	s.hub.BroadcastTransaction(transaction.MerchantID, websocket.TransactionUpdate{
		TransactionID: transactionID,
		Status:        "completed",
		Hash:          hash,
		WalletID:      transaction.WalletID,
		Balance:       money.FormatMinor(walletBalanceAfter, transaction.Currency),
		Currency:      transaction.Currency,
	})
	return nil
}

func (s *PaymentService) fail(ctx context.Context, transactionID string) {
	transaction, err := s.transactions.GetByID(ctx, transactionID)
	if err != nil {
		log.Printf("load of failed transaction %s: %v", transactionID, err)
		return
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.transactions.MarkFailed(ctx, tx, transactionID); err != nil {
			return err
		}
		return s.audit.Log(ctx, tx, transaction.MerchantID, "transaction.fail", "transaction", transactionID, "{}")
	})
	if err != nil {
		log.Printf("marking transaction %s failed: %v", transactionID, err)
		return
	}
	s.hub.BroadcastTransaction(transaction.MerchantID, websocket.TransactionUpdate{
		TransactionID: transactionID,
		Status:        "failed",
		WalletID:      transaction.WalletID,
		Currency:      transaction.Currency,
	})
}

func (s *PaymentService) feeFor(amountMinor int64) int64 {
	return decimal.NewFromInt(amountMinor).Mul(s.feeRate).Div(decimal.NewFromInt(100)).RoundBank(0).IntPart()
}

func ensureBalanced(entries []store.LedgerEntryInput) error {
	sums := map[string]int64{}
	for _, entry := range entries {
		sums[entry.Currency] += entry.AmountMinor
	}
	for _, sum := range sums {
		if sum != 0 {
			return errors.New("ledger entries are not balanced per currency")
		}
	}
	return nil
}
