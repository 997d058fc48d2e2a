package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dessertshop/storefront-api/internal/model"
)

func seedProduct(repo *mockProductRepo, name string, price float64, stock int) *model.Product {
	product := &model.Product{
		Name:         name,
		CategoryID:   1,
		UnitID:       1,
		RegularPrice: decimal.NewFromFloat(price),
		QtyInStock:   stock,
		Active:       true,
		UnitCode:     model.EachUnitCode,
		UnitDesc:     "Each",
	}
	_ = repo.Create(context.Background(), product)
	return product
}

func TestCartService_AddLine(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	product := seedProduct(productRepo, "Chocolate Cake", 24.50, 10)
	svc := NewCartService(cartRepo, productRepo, testRates)

	line, err := svc.AddLine(context.Background(), 7, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
	assert.True(t, line.LineAmount.Equal(decimal.NewFromFloat(49.00)))
	assert.Len(t, cartRepo.lines, 1)
}

func TestCartService_AddLine_AccumulatesQuantity(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	product := seedProduct(productRepo, "Brownie", 3.00, 100)
	svc := NewCartService(cartRepo, productRepo, testRates)

	_, err := svc.AddLine(context.Background(), 7, product.ID, 2)
	require.NoError(t, err)
	line, err := svc.AddLine(context.Background(), 7, product.ID, 3)
	require.NoError(t, err)

	// One line per (user, product); quantities add up.
	assert.Len(t, cartRepo.lines, 1)
	assert.Equal(t, 5, line.Quantity)
	assert.True(t, line.LineAmount.Equal(decimal.NewFromFloat(15.00)))
}

func TestCartService_AddLine_KeepsSnapshotPriceOnAccumulate(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	product := seedProduct(productRepo, "Eclair", 4.00, 100)
	svc := NewCartService(cartRepo, productRepo, testRates)

	_, err := svc.AddLine(context.Background(), 7, product.ID, 1)
	require.NoError(t, err)

	// Price changes after the line exists; the snapshot must not move.
	product.RegularPrice = decimal.NewFromFloat(5.00)
	require.NoError(t, productRepo.Update(context.Background(), product, false, decimal.Zero))

	line, err := svc.AddLine(context.Background(), 7, product.ID, 2)
	require.NoError(t, err)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromFloat(4.00)))
	assert.True(t, line.LineAmount.Equal(decimal.NewFromFloat(12.00)))
}

func TestCartService_AddLine_StockShortage(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	product := seedProduct(productRepo, "Macaron", 2.00, 3)
	svc := NewCartService(cartRepo, productRepo, testRates)

	_, err := svc.AddLine(context.Background(), 7, product.ID, 5)
	var shortage *model.StockShortage
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, 3, shortage.Available)
	assert.Empty(t, cartRepo.lines)
}

func TestCartService_AddLine_InactiveProduct(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	product := seedProduct(productRepo, "Retired Pie", 9.00, 10)
	product.Active = false
	require.NoError(t, productRepo.Update(context.Background(), product, false, decimal.Zero))
	svc := NewCartService(cartRepo, productRepo, testRates)

	_, err := svc.AddLine(context.Background(), 7, product.ID, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddLine_UsesDiscountedPrice(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	product := seedProduct(productRepo, "Cheesecake", 20.00, 10)
	sale := decimal.NewFromFloat(15.00)
	product.DiscountedPrice = &sale
	require.NoError(t, productRepo.Update(context.Background(), product, false, decimal.Zero))
	svc := NewCartService(cartRepo, productRepo, testRates)

	line, err := svc.AddLine(context.Background(), 7, product.ID, 1)
	require.NoError(t, err)
	assert.True(t, line.UnitPrice.Equal(sale))
}

func TestCartService_UpdateLine_OtherUsersLine(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	product := seedProduct(productRepo, "Tart", 6.00, 10)
	svc := NewCartService(cartRepo, productRepo, testRates)

	line, err := svc.AddLine(context.Background(), 7, product.ID, 1)
	require.NoError(t, err)

	err = svc.UpdateLine(context.Background(), 8, line.ID, 2)
	assert.ErrorIs(t, err, ErrNotYourCart)
}

func TestCartService_DeleteLine(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	product := seedProduct(productRepo, "Scone", 2.50, 10)
	svc := NewCartService(cartRepo, productRepo, testRates)

	line, err := svc.AddLine(context.Background(), 7, product.ID, 1)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteLine(context.Background(), 7, line.ID))
	assert.Empty(t, cartRepo.lines)
}

func TestCartService_GetCart_Totals(t *testing.T) {
	cartRepo := newMockCartRepo()
	productRepo := newMockProductRepo()
	cake := seedProduct(productRepo, "Cake", 10.00, 10)
	pie := seedProduct(productRepo, "Pie", 5.00, 10)
	svc := NewCartService(cartRepo, productRepo, testRates)

	_, err := svc.AddLine(context.Background(), 7, cake.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddLine(context.Background(), 7, pie.ID, 2)
	require.NoError(t, err)

	cart, err := svc.GetCart(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromFloat(20.00)))
	assert.True(t, cart.Tax.Equal(decimal.NewFromFloat(1.40)))
	assert.True(t, cart.Shipping.Equal(decimal.NewFromFloat(2.00)))
	assert.True(t, cart.Total.Equal(decimal.NewFromFloat(23.40)))
}
