package billing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func rate(value string) decimal.Decimal {
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestComputeServiceExample(t *testing.T) {
	// 2 x 500.00 at 18% tax: subtotal 1000.00, tax 180.00, grand 1180.00.
	totals, err := Compute([]LineItem{
		{Name: "Service A", Quantity: 2, UnitPriceMinor: 50000, TaxRate: rate("18")},
	}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if totals.SubtotalMinor != 100000 {
		t.Errorf("subtotal = %d, want 100000", totals.SubtotalMinor)
	}
	if totals.TaxMinor != 18000 {
		t.Errorf("tax = %d, want 18000", totals.TaxMinor)
	}
	if totals.GrandTotalMinor != 118000 {
		t.Errorf("grand total = %d, want 118000", totals.GrandTotalMinor)
	}
}

func TestComputeAggregateInvariants(t *testing.T) {
	items := []LineItem{
		{Name: "Widget", Quantity: 3, UnitPriceMinor: 1999, TaxRate: rate("7.5")},
		{Name: "Gadget", Quantity: 1, UnitPriceMinor: 125000, TaxRate: rate("18")},
		{Name: "Support", Quantity: 12, UnitPriceMinor: 4500, TaxRate: rate("0")},
	}
	totals, err := Compute(items, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var subtotal, tax int64
	for i, line := range totals.Lines {
		if line.TotalMinor != line.NetMinor+line.TaxMinor {
			t.Errorf("line %d total %d != net %d + tax %d", i, line.TotalMinor, line.NetMinor, line.TaxMinor)
		}
		subtotal += line.NetMinor
		tax += line.TaxMinor
	}
	if totals.SubtotalMinor != subtotal {
		t.Errorf("subtotal = %d, want sum of nets %d", totals.SubtotalMinor, subtotal)
	}
	if totals.TaxMinor != tax {
		t.Errorf("tax = %d, want sum of line taxes %d", totals.TaxMinor, tax)
	}
	if totals.GrandTotalMinor != totals.SubtotalMinor+totals.TaxMinor-totals.DiscountMinor {
		t.Errorf("grand total %d != subtotal %d + tax %d - discount %d",
			totals.GrandTotalMinor, totals.SubtotalMinor, totals.TaxMinor, totals.DiscountMinor)
	}
}

func TestComputeLineZeroTax(t *testing.T) {
	line, err := ComputeLine(LineItem{Name: "Consulting", Quantity: 4, UnitPriceMinor: 2500, TaxRate: decimal.Zero})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.TaxMinor != 0 {
		t.Fatalf("tax = %d, want 0", line.TaxMinor)
	}
	if line.TotalMinor != 10000 {
		t.Fatalf("total = %d, want quantity*unitPrice = 10000", line.TotalMinor)
	}
}

func TestComputeLineRounding(t *testing.T) {
	// 1 x 0.33 at 18%: 5.94 -> 6 minor units after bankers rounding.
	line, err := ComputeLine(LineItem{Name: "Sticker", Quantity: 1, UnitPriceMinor: 33, TaxRate: rate("18")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.TaxMinor != 6 {
		t.Fatalf("tax = %d, want 6", line.TaxMinor)
	}
}

func TestComputeValidation(t *testing.T) {
	cases := []struct {
		name string
		item LineItem
		want error
	}{
		{"empty name", LineItem{Name: "  ", Quantity: 1, UnitPriceMinor: 100}, ErrEmptyName},
		{"zero quantity", LineItem{Name: "A", Quantity: 0, UnitPriceMinor: 100}, ErrInvalidQuantity},
		{"negative price", LineItem{Name: "A", Quantity: 1, UnitPriceMinor: -1}, ErrNegativePrice},
		{"tax over 100", LineItem{Name: "A", Quantity: 1, UnitPriceMinor: 100, TaxRate: rate("101")}, ErrInvalidTaxRate},
		{"negative tax", LineItem{Name: "A", Quantity: 1, UnitPriceMinor: 100, TaxRate: rate("-1")}, ErrInvalidTaxRate},
	}
	for _, tc := range cases {
		if _, err := Compute([]LineItem{tc.item}, 0); err != tc.want {
			t.Errorf("%s: error = %v, want %v", tc.name, err, tc.want)
		}
	}
	if _, err := Compute(nil, 0); err != ErrNoItems {
		t.Errorf("empty items: error = %v, want %v", err, ErrNoItems)
	}
	if _, err := Compute([]LineItem{{Name: "A", Quantity: 1, UnitPriceMinor: 100}}, -1); err != ErrNegativeDiscount {
		t.Errorf("negative discount: error = %v, want %v", err, ErrNegativeDiscount)
	}
	if _, err := Compute([]LineItem{{Name: "A", Quantity: 1, UnitPriceMinor: 100}}, 10000); err != ErrDiscountTooLarge {
		t.Errorf("oversized discount: error = %v, want %v", err, ErrDiscountTooLarge)
	}
}
