package money

import "testing"

func TestParseMinorFiat(t *testing.T) {
	cases := []struct {
		input string
		code  string
		want  int64
		err   error
	}{
		{"10", "USD", 1000, nil},
		{"10.5", "USD", 1050, nil},
		{"10.50", "USD", 1050, nil},
		{"-3.07", "EUR", -307, nil},
		{"+0.01", "GBP", 1, nil},
		{".5", "USD", 50, nil},
		{"10.505", "USD", 0, ErrTooManyDecimals},
		{"", "USD", 0, ErrInvalidAmount},
		{"-", "USD", 0, ErrInvalidAmount},
		{"+", "USD", 0, ErrInvalidAmount},
		{".", "USD", 0, ErrInvalidAmount},
		{"abc", "USD", 0, ErrInvalidAmount},
		{"1.2.3", "USD", 0, ErrInvalidAmount},
		{"5", "XYZ", 0, ErrUnsupportedCurrency},
	}
	for _, tc := range cases {
		got, err := ParseMinor(tc.input, tc.code)
		if err != tc.err {
			t.Errorf("ParseMinor(%q, %q) error = %v, want %v", tc.input, tc.code, err, tc.err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMinor(%q, %q) = %d, want %d", tc.input, tc.code, got, tc.want)
		}
	}
}

func TestParseMinorCrypto(t *testing.T) {
	got, err := ParseMinor("0.00000001", "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("one satoshi = %d, want 1", got)
	}
	got, err = ParseMinor("1.5", "ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 150000000 {
		t.Fatalf("1.5 ETH = %d, want 150000000", got)
	}
	if _, err := ParseMinor("0.000000001", "BTC"); err != ErrTooManyDecimals {
		t.Fatalf("expected ErrTooManyDecimals, got %v", err)
	}
}

func TestParseMinorOverflow(t *testing.T) {
	// 92233720368.54775807 BTC is the largest amount that fits in int64.
	if _, err := ParseMinor("92233720368.54775807", "BTC"); err != nil {
		t.Fatalf("max amount should parse: %v", err)
	}
	if _, err := ParseMinor("92233720368.54775808", "BTC"); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount past int64 range, got %v", err)
	}
	if _, err := ParseMinor("100000000000", "BTC"); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount on whole-part overflow, got %v", err)
	}
}

func TestFormatMinor(t *testing.T) {
	if got := FormatMinor(1050, "USD"); got != "10.50" {
		t.Fatalf("FormatMinor fiat = %q", got)
	}
	if got := FormatMinor(-307, "EUR"); got != "-3.07" {
		t.Fatalf("FormatMinor negative = %q", got)
	}
	if got := FormatMinor(150000000, "BTC"); got != "1.50000000" {
		t.Fatalf("FormatMinor crypto = %q", got)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, code := range []string{"USD", "INR", "BTC", "USDT"} {
		minor, err := ParseMinor("123.45", code)
		if err != nil {
			t.Fatalf("parse %s: %v", code, err)
		}
		back, err := ParseMinor(FormatMinor(minor, code), code)
		if err != nil {
			t.Fatalf("reparse %s: %v", code, err)
		}
		if back != minor {
			t.Fatalf("%s round trip %d != %d", code, back, minor)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(123456789, "INR"); got != "₹1,234,567.89" {
		t.Fatalf("Display INR = %q", got)
	}
	if got := Display(150000000, "BTC"); got != "₿1.50000000" {
		t.Fatalf("Display BTC = %q", got)
	}
	if got := Display(-1000, "USD"); got != "-$10.00" {
		t.Fatalf("Display negative = %q", got)
	}
	if got := Display(500, "ZZZ"); got != "ZZZ 5.00" {
		t.Fatalf("Display fallback = %q", got)
	}
}

func TestSymbolFallback(t *testing.T) {
	if got := Symbol("usd"); got != "$" {
		t.Fatalf("Symbol usd = %q", got)
	}
	if got := Symbol("doge"); got != "DOGE" {
		t.Fatalf("Symbol fallback = %q", got)
	}
}
