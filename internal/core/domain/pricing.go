package domain

import (
	"fmt"

	"github.com/govalues/decimal"
)

// DefaultTaxRate matches the remote api's default sales tax.
var DefaultTaxRate = decimal.MustParse("0.08")

// MoneyScale is the number of fractional digits kept for tax amounts.
const MoneyScale = 2

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal returns quantity × unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) (decimal.Decimal, error) {
	q, err := decimal.New(int64(quantity), 0)
	if err != nil {
		return decimal.Zero, fmt.Errorf("quantity %d: %w", quantity, err)
	}
	total, err := unitPrice.Mul(q)
	if err != nil {
		return decimal.Zero, fmt.Errorf("line total: %w", err)
	}
	return total, nil
}

// ComputeTotals prices the lines from scratch. Tax is rounded half-to-even to
// MoneyScale digits, the same way the remote api rounds it. Discount is not
// clamped, so the total may be negative.
func ComputeTotals(lines []OrderRequestLine, discount, taxRate decimal.Decimal) (Totals, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		lt, err := LineTotal(l.Quantity, l.UnitPrice)
		if err != nil {
			return Totals{}, err
		}
		subtotal, err = subtotal.Add(lt)
		if err != nil {
			return Totals{}, fmt.Errorf("subtotal: %w", err)
		}
	}

	tax, err := subtotal.Mul(taxRate)
	if err != nil {
		return Totals{}, fmt.Errorf("tax: %w", err)
	}
	tax = tax.Round(MoneyScale).Pad(MoneyScale)

	total, err := subtotal.Add(tax)
	if err != nil {
		return Totals{}, fmt.Errorf("total: %w", err)
	}
	total, err = total.Sub(discount)
	if err != nil {
		return Totals{}, fmt.Errorf("total: %w", err)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}, nil
}
