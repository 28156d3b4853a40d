package ident

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/bwmarrin/snowflake"
)

// Document number prefixes shown to merchants. The numeric part comes from a
// per-merchant database sequence, never from collection length or wall time.
const (
	PrefixInvoice     = "INV"
	PrefixPaymentLink = "PL"
	PrefixDocument    = "DOC"
	PrefixAPIKey      = "KEY"
)

const (
	publicKeyPrefix = "pk_live_"
	secretKeyPrefix = "sk_live_"
)

type Generator struct {
	node *snowflake.Node
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &Generator{node: node}, nil
}

// EntityID issues a time-ordered unique identifier.
func (g *Generator) EntityID() string {
	return g.node.Generate().String()
}

// DocumentNumber renders a sequence value as a display number, e.g.
// DocumentNumber("INV", 42) == "INV-000042".
func DocumentNumber(prefix string, sequence int64) string {
	return fmt.Sprintf("%s-%06d", prefix, sequence)
}

var base36Alphabet = []byte("0123456789abcdefghijklmnopqrstuvwxyz")

func randomBase36(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := range out {
		index, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = base36Alphabet[index.Int64()]
	}
	return string(out), nil
}

// NewKeyPair issues a publishable/secret API key pair from the system CSPRNG.
// The secret is returned exactly once; callers persist only its digest.
func NewKeyPair() (publicKey, secretKey string, err error) {
	publicPart, err := randomBase36(24)
	if err != nil {
		return "", "", err
	}
	secretPart, err := randomBase36(32)
	if err != nil {
		return "", "", err
	}
	return publicKeyPrefix + publicPart, secretKeyPrefix + secretPart, nil
}

// HashSecret is the stored form of a secret API key.
func HashSecret(secret string) string {
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:])
}

// NewSlug issues a URL path segment for payment links.
func NewSlug() (string, error) {
	return randomBase36(16)
}

// NewTransactionHash fabricates a settlement hash for a confirmed
// transaction. It is an opaque receipt token, not a chain anchor.
func NewTransactionHash() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// NewWalletAddress fabricates a wallet address for display.
func NewWalletAddress() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(raw), nil
}
