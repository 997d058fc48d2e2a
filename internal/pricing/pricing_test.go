package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dessertshop/storefront-api/internal/model"
)

var testRates = Rates{
	Tax:      decimal.NewFromFloat(0.07),
	Shipping: decimal.NewFromFloat(0.10),
}

func line(qty int, price string) model.CartLine {
	p := decimal.RequireFromString(price)
	return model.CartLine{Quantity: qty, UnitPrice: p, LineAmount: LineAmount(qty, p)}
}

func TestCalculate(t *testing.T) {
	totals := Calculate([]model.CartLine{line(2, "4.50"), line(1, "12.99")}, testRates)

	assert.True(t, totals.Subtotal.Equal(decimal.RequireFromString("21.99")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(decimal.RequireFromString("1.54")), "tax %s", totals.Tax)
	assert.True(t, totals.Shipping.Equal(decimal.RequireFromString("2.20")), "shipping %s", totals.Shipping)
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("25.73")), "total %s", totals.Total)
}

func TestCalculate_EmptyCart(t *testing.T) {
	totals := Calculate(nil, testRates)
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestCalculate_RoundsToTwoPlaces(t *testing.T) {
	// 3 x 1.11 = 3.33; tax 0.2331 rounds to 0.23, shipping 0.333 to 0.33.
	totals := Calculate([]model.CartLine{line(3, "1.11")}, testRates)
	assert.True(t, totals.Tax.Equal(decimal.RequireFromString("0.23")), "tax %s", totals.Tax)
	assert.True(t, totals.Shipping.Equal(decimal.RequireFromString("0.33")), "shipping %s", totals.Shipping)
}

func TestCalculate_TotalIsSumOfParts(t *testing.T) {
	cases := [][]model.CartLine{
		{line(1, "0.01")},
		{line(7, "3.33"), line(2, "19.99")},
		{line(100, "2.50"), line(3, "0.99"), line(1, "149.00")},
	}
	for _, lines := range cases {
		totals := Calculate(lines, testRates)
		sum := totals.Subtotal.Add(totals.Tax).Add(totals.Shipping)
		assert.True(t, totals.Total.Equal(sum))
		assert.True(t, totals.Tax.Equal(totals.Subtotal.Mul(testRates.Tax).Round(2)))
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	lines := []model.CartLine{line(5, "7.77")}
	first := Calculate(lines, testRates)
	second := Calculate(lines, testRates)
	assert.True(t, first.Total.Equal(second.Total))
}
