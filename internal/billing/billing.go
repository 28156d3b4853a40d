package billing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNoItems          = errors.New("invoice requires at least one item")
	ErrEmptyName        = errors.New("item name is required")
	ErrInvalidQuantity  = errors.New("item quantity must be at least 1")
	ErrNegativePrice    = errors.New("item unit price cannot be negative")
	ErrInvalidTaxRate   = errors.New("item tax rate must be between 0 and 100")
	ErrDiscountTooLarge = errors.New("discount exceeds invoice total")
	ErrNegativeDiscount = errors.New("discount cannot be negative")
)

var hundred = decimal.NewFromInt(100)

// LineItem is the billable input for a single invoice row. Amounts are in
// minor units of the invoice currency; TaxRate is a percentage.
type LineItem struct {
	Name           string
	Description    string
	Quantity       int64
	UnitPriceMinor int64
	TaxRate        decimal.Decimal
}

// LineTotal is the derived amounts for one item. TotalMinor is always
// NetMinor + TaxMinor, never supplied by callers.
type LineTotal struct {
	NetMinor   int64
	TaxMinor   int64
	TotalMinor int64
}

type Totals struct {
	Lines           []LineTotal
	SubtotalMinor   int64
	TaxMinor        int64
	DiscountMinor   int64
	GrandTotalMinor int64
}

func validateItem(item LineItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ErrEmptyName
	}
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.UnitPriceMinor < 0 {
		return ErrNegativePrice
	}
	if item.TaxRate.IsNegative() || item.TaxRate.GreaterThan(hundred) {
		return ErrInvalidTaxRate
	}
	return nil
}

// ComputeLine derives net, tax and total for one item. Tax is rounded to
// minor units with bankers rounding.
func ComputeLine(item LineItem) (LineTotal, error) {
	if err := validateItem(item); err != nil {
		return LineTotal{}, err
	}
	net := item.Quantity * item.UnitPriceMinor
	tax := decimal.NewFromInt(net).Mul(item.TaxRate).Div(hundred).RoundBank(0).IntPart()
	return LineTotal{
		NetMinor:   net,
		TaxMinor:   tax,
		TotalMinor: net + tax,
	}, nil
}

// Compute derives the aggregate invoice totals:
// subtotal = Σ net, tax = Σ line tax, grand total = subtotal + tax - discount.
func Compute(items []LineItem, discountMinor int64) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, ErrNoItems
	}
	if discountMinor < 0 {
		return Totals{}, ErrNegativeDiscount
	}
	totals := Totals{
		Lines:         make([]LineTotal, 0, len(items)),
		DiscountMinor: discountMinor,
	}
	for _, item := range items {
		line, err := ComputeLine(item)
		if err != nil {
			return Totals{}, err
		}
		totals.Lines = append(totals.Lines, line)
		totals.SubtotalMinor += line.NetMinor
		totals.TaxMinor += line.TaxMinor
	}
	grand := totals.SubtotalMinor + totals.TaxMinor - discountMinor
	if grand < 0 {
		return Totals{}, ErrDiscountTooLarge
	}
	totals.GrandTotalMinor = grand
	return totals, nil
}
