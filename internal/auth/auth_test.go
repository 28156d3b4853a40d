package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("password stored in clear")
	}
	if !CheckPassword(hash, "correct horse battery") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("test-secret", "merchant-1", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.MerchantID != "merchant-1" {
		t.Fatalf("merchant id = %q", claims.MerchantID)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("test-secret", "merchant-1", time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken("other-secret", token); err != ErrInvalidToken {
		t.Fatalf("wrong secret: %v, want ErrInvalidToken", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("test-secret", "merchant-1", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken("test-secret", token); err != ErrInvalidToken {
		t.Fatalf("expired token: %v, want ErrInvalidToken", err)
	}
}
