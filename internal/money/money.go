package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrTooManyDecimals     = errors.New("amount has too many decimal places")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Currency describes how amounts in a given code are stored and shown.
// Fiat currencies carry two minor-unit digits, crypto currencies eight.
type Currency struct {
	Code     string
	Symbol   string
	Exponent int
	IsCrypto bool
}

var currencies = map[string]Currency{
	"INR":  {Code: "INR", Symbol: "₹", Exponent: 2},
	"USD":  {Code: "USD", Symbol: "$", Exponent: 2},
	"EUR":  {Code: "EUR", Symbol: "€", Exponent: 2},
	"GBP":  {Code: "GBP", Symbol: "£", Exponent: 2},
	"BTC":  {Code: "BTC", Symbol: "₿", Exponent: 8, IsCrypto: true},
	"ETH":  {Code: "ETH", Symbol: "Ξ", Exponent: 8, IsCrypto: true},
	"USDT": {Code: "USDT", Symbol: "₮", Exponent: 8, IsCrypto: true},
	"USDC": {Code: "USDC", Symbol: "USDC", Exponent: 8, IsCrypto: true},
}

func Lookup(code string) (Currency, bool) {
	currency, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	return currency, ok
}

func IsSupported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// Symbol returns the display symbol for a code, falling back to the code
// itself for anything unknown.
func Symbol(code string) string {
	if currency, ok := Lookup(code); ok {
		return currency.Symbol
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

var pow10 = [...]int64{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000}

// ParseMinor converts a decimal string into minor units for the currency.
// "12.30" in USD becomes 1230; "0.00000001" in BTC becomes 1.
func ParseMinor(input, code string) (int64, error) {
	currency, ok := Lookup(code)
	if !ok {
		return 0, ErrUnsupportedCurrency
	}
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}
	sign := int64(1)
	switch trimmed[0] {
	case '-':
		sign = -1
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}
	if trimmed == "" || trimmed == "." {
		return 0, ErrInvalidAmount
	}
	parts := strings.SplitN(trimmed, ".", 2)
	wholePart := parts[0]
	if wholePart == "" {
		wholePart = "0"
	}
	if !isDigits(wholePart) {
		return 0, ErrInvalidAmount
	}
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > currency.Exponent {
		return 0, ErrTooManyDecimals
	}
	if fracPart != "" && !isDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	frac := int64(0)
	if fracPart != "" {
		value, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		frac = value * pow10[currency.Exponent-len(fracPart)]
	}
	if whole > (math.MaxInt64-frac)/pow10[currency.Exponent] {
		return 0, ErrInvalidAmount
	}
	minor := whole*pow10[currency.Exponent] + frac
	return sign * minor, nil
}

// FormatMinor renders minor units as a plain decimal string with the
// currency's full minor-digit precision.
func FormatMinor(value int64, code string) string {
	currency, ok := Lookup(code)
	if !ok {
		currency = Currency{Exponent: 2}
	}
	negative := value < 0
	if negative {
		value = -value
	}
	whole := value / pow10[currency.Exponent]
	frac := value % pow10[currency.Exponent]
	formatted := fmt.Sprintf("%d.%0*d", whole, currency.Exponent, frac)
	if negative {
		return "-" + formatted
	}
	return formatted
}

// Display renders minor units for human consumption: symbol prefix, grouped
// whole part for fiat, ungrouped fixed precision for crypto.
func Display(value int64, code string) string {
	currency, ok := Lookup(code)
	if !ok {
		return strings.ToUpper(strings.TrimSpace(code)) + " " + FormatMinor(value, "USD")
	}
	negative := value < 0
	if negative {
		value = -value
	}
	whole := value / pow10[currency.Exponent]
	frac := value % pow10[currency.Exponent]
	wholeText := strconv.FormatInt(whole, 10)
	if !currency.IsCrypto {
		wholeText = groupThousands(wholeText)
	}
	formatted := fmt.Sprintf("%s%s.%0*d", currency.Symbol, wholeText, currency.Exponent, frac)
	if negative {
		return "-" + formatted
	}
	return formatted
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var builder strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		builder.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if builder.Len() > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(digits[i : i+3])
	}
	return builder.String()
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
