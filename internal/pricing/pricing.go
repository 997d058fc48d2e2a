// Package pricing computes order totals from cart lines. It is pure: same
// lines and rates in, same totals out, nothing mutated.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dessertshop/storefront-api/internal/model"
)

type Rates struct {
	Tax      decimal.Decimal
	Shipping decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// Calculate sums the line amounts and applies the tax and shipping rates.
// Tax and shipping are each rounded to 2 decimal places before the grand
// total is formed, so Total == Subtotal + Tax + Shipping always holds.
func Calculate(lines []model.CartLine, rates Rates) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineAmount)
	}

	tax := subtotal.Mul(rates.Tax).Round(2)
	shipping := subtotal.Mul(rates.Shipping).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

// LineAmount is the snapshot amount stored on a cart or order line.
func LineAmount(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
