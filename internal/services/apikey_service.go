package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"paygate/internal/db"
	"paygate/internal/ident"
	"paygate/internal/models"
	"paygate/internal/store"

	"github.com/jmoiron/sqlx"
)

var (
	ErrKeyNotFound       = errors.New("api key not found")
	ErrKeyDisabled       = errors.New("api key is disabled")
	ErrBadCredentials    = errors.New("invalid api credentials")
	ErrMissingPermission = errors.New("api key lacks required permission")
	ErrNoPermissions     = errors.New("at least one permission is required")
)

var knownPermissions = map[string]bool{
	"payments:read":  true,
	"payments:write": true,
	"links:redeem":   true,
}

type APIKeyStore interface {
	Create(ctx context.Context, tx store.Execer, key models.APIKey) error
	GetByPublicKey(ctx context.Context, publicKey string) (models.APIKey, error)
	Disable(ctx context.Context, tx store.Execer, merchantID, keyID string) (int64, error)
}

type APIKeyService struct {
	txRunner  db.TxRunner
	keys      APIKeyStore
	sequences SequenceStore
	audit     AuditStore
	gen       *ident.Generator
}

func NewAPIKeyService(txRunner db.TxRunner, keys APIKeyStore, sequences SequenceStore, audit AuditStore, gen *ident.Generator) *APIKeyService {
	return &APIKeyService{
		txRunner:  txRunner,
		keys:      keys,
		sequences: sequences,
		audit:     audit,
		gen:       gen,
	}
}

// IssuedKey carries the secret back to the caller exactly once. Only its
// digest is stored.
type IssuedKey struct {
	Key       models.APIKey
	SecretKey string
}

func (s *APIKeyService) Issue(ctx context.Context, merchantID, name string, permissions []string) (IssuedKey, error) {
	if len(permissions) == 0 {
		return IssuedKey{}, ErrNoPermissions
	}
	for _, permission := range permissions {
		if !knownPermissions[permission] {
			return IssuedKey{}, errors.New("unknown permission: " + permission)
		}
	}
	publicKey, secretKey, err := ident.NewKeyPair()
	if err != nil {
		return IssuedKey{}, err
	}
	key := models.APIKey{
		ID:           s.gen.EntityID(),
		MerchantID:   merchantID,
		Name:         name,
		PublicKey:    publicKey,
		SecretDigest: ident.HashSecret(secretKey),
		Status:       "active",
		Permissions:  strings.Join(permissions, ","),
		CreatedAt:    time.Now().UTC(),
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		sequence, err := s.sequences.Next(ctx, tx, merchantID, "api_key")
		if err != nil {
			return err
		}
		key.KeyNumber = ident.DocumentNumber(ident.PrefixAPIKey, sequence)
		if err := s.keys.Create(ctx, tx, key); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"key_number": key.KeyNumber,
			"public_key": key.PublicKey,
		})
		return s.audit.Log(ctx, tx, merchantID, "api_key.issue", "api_key", key.ID, string(data))
	})
	if err != nil {
		return IssuedKey{}, err
	}
	return IssuedKey{Key: key, SecretKey: secretKey}, nil
}

// Authenticate resolves an active key from its public/secret pair and checks
// the requested permission. The digest comparison is constant time.
func (s *APIKeyService) Authenticate(ctx context.Context, publicKey, secretKey, permission string) (models.APIKey, error) {
	key, err := s.keys.GetByPublicKey(ctx, publicKey)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.APIKey{}, ErrBadCredentials
		}
		return models.APIKey{}, err
	}
	digest := ident.HashSecret(secretKey)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(key.SecretDigest)) != 1 {
		return models.APIKey{}, ErrBadCredentials
	}
	if key.Status != "active" {
		return models.APIKey{}, ErrKeyDisabled
	}
	if !hasPermission(key.Permissions, permission) {
		return models.APIKey{}, ErrMissingPermission
	}
	return key, nil
}

func (s *APIKeyService) Disable(ctx context.Context, merchantID, keyID string) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		disabled, err := s.keys.Disable(ctx, tx, merchantID, keyID)
		if err != nil {
			return err
		}
		if disabled == 0 {
			return ErrKeyNotFound
		}
		return s.audit.Log(ctx, tx, merchantID, "api_key.disable", "api_key", keyID, "{}")
	})
}

func hasPermission(granted, wanted string) bool {
	for _, permission := range strings.Split(granted, ",") {
		if strings.TrimSpace(permission) == wanted {
			return true
		}
	}
	return false
}
