package validator

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"merchant@example.com", "a.b+c@shop.co.in"}
	for _, email := range valid {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v", email, err)
		}
	}
	invalid := []string{"", "no-at.example.com", "two@@example.com", "spaces in@example.com", "noperiod@example"}
	for _, email := range invalid {
		if err := ValidateEmail(email); err != ErrInvalidEmail {
			t.Errorf("ValidateEmail(%q) = %v, want ErrInvalidEmail", email, err)
		}
	}
}

func TestValidateBusinessName(t *testing.T) {
	if err := ValidateBusinessName("Acme Payments & Co."); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	for _, name := range []string{"", "ab", "-leading dash", strings.Repeat("a", 81)} {
		if err := ValidateBusinessName(name); err != ErrInvalidBusinessName {
			t.Errorf("ValidateBusinessName(%q) = %v, want ErrInvalidBusinessName", name, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("valid password rejected: %v", err)
	}
	if err := ValidatePassword("short"); err != ErrInvalidPassword {
		t.Errorf("short password: %v, want ErrInvalidPassword", err)
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("Jane Merchant"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	if err := ValidateName("   "); err != ErrInvalidName {
		t.Errorf("blank name: %v, want ErrInvalidName", err)
	}
	if err := ValidateName(strings.Repeat("x", 121)); err != ErrInvalidName {
		t.Errorf("oversized name: %v, want ErrInvalidName", err)
	}
}
