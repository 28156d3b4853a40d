package ident

import (
	"strings"
	"testing"
)

func TestDocumentNumber(t *testing.T) {
	cases := []struct {
		prefix   string
		sequence int64
		want     string
	}{
		{PrefixInvoice, 1, "INV-000001"},
		{PrefixPaymentLink, 45, "PL-000045"},
		{PrefixDocument, 7, "DOC-000007"},
		{PrefixAPIKey, 1234567, "KEY-1234567"},
	}
	for _, tc := range cases {
		if got := DocumentNumber(tc.prefix, tc.sequence); got != tc.want {
			t.Errorf("DocumentNumber(%q, %d) = %q, want %q", tc.prefix, tc.sequence, got, tc.want)
		}
	}
}

func TestEntityIDUnique(t *testing.T) {
	generator, err := NewGenerator(1)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := generator.EntityID()
		if id == "" {
			t.Fatal("empty entity id")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate entity id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewKeyPair(t *testing.T) {
	publicKey, secretKey, err := NewKeyPair()
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	if !strings.HasPrefix(publicKey, "pk_live_") {
		t.Errorf("public key %q missing pk_live_ prefix", publicKey)
	}
	if !strings.HasPrefix(secretKey, "sk_live_") {
		t.Errorf("secret key %q missing sk_live_ prefix", secretKey)
	}
	if len(publicKey) != len("pk_live_")+24 {
		t.Errorf("public key length = %d", len(publicKey))
	}
	if len(secretKey) != len("sk_live_")+32 {
		t.Errorf("secret key length = %d", len(secretKey))
	}
	otherPublic, otherSecret, err := NewKeyPair()
	if err != nil {
		t.Fatalf("NewKeyPair: %v", err)
	}
	if publicKey == otherPublic || secretKey == otherSecret {
		t.Error("consecutive key pairs collided")
	}
}

func TestHashSecretDeterministic(t *testing.T) {
	first := HashSecret("sk_live_example")
	second := HashSecret("sk_live_example")
	if first != second {
		t.Error("digest not deterministic")
	}
	if len(first) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(first))
	}
	if first == HashSecret("sk_live_other") {
		t.Error("distinct secrets share a digest")
	}
}

func TestNewTransactionHash(t *testing.T) {
	hash, err := NewTransactionHash()
	if err != nil {
		t.Fatalf("NewTransactionHash: %v", err)
	}
	if !strings.HasPrefix(hash, "0x") || len(hash) != 66 {
		t.Errorf("hash %q not 0x-prefixed 32 bytes", hash)
	}
}
