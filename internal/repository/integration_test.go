package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/pricing"
)

var integrationRates = pricing.Rates{
	Tax:      decimal.NewFromFloat(0.07),
	Shipping: decimal.NewFromFloat(0.10),
}

func TestUserRepo_GetByEmail_CaseInsensitive(t *testing.T) {
	cleanupTables(t)
	f := seedShop(t, 10.00, 5)
	repo := NewUserRepository(testPool)

	found, err := repo.GetByEmail(context.Background(), "PAT@Example.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, f.user.ID, found.ID)
}

func TestCartRepo_AddOrIncrement_Accumulates(t *testing.T) {
	cleanupTables(t)
	f := seedShop(t, 4.00, 100)
	repo := NewCartRepository(testPool)
	ctx := context.Background()

	line := &model.CartLine{
		UserID: f.user.ID, ProductID: f.product.ID, UnitID: f.unit.ID,
		Quantity: 2, UnitPrice: decimal.NewFromFloat(4.00), LineAmount: decimal.NewFromFloat(8.00),
	}
	require.NoError(t, repo.AddOrIncrement(ctx, line))
	firstID := line.ID

	again := &model.CartLine{
		UserID: f.user.ID, ProductID: f.product.ID, UnitID: f.unit.ID,
		Quantity: 3, UnitPrice: decimal.NewFromFloat(9.99), LineAmount: decimal.NewFromFloat(29.97),
	}
	require.NoError(t, repo.AddOrIncrement(ctx, again))

	// Same line, summed quantity, original snapshot price.
	assert.Equal(t, firstID, again.ID)
	assert.Equal(t, 5, again.Quantity)
	assert.True(t, again.UnitPrice.Equal(decimal.NewFromFloat(4.00)))
	assert.True(t, again.LineAmount.Equal(decimal.NewFromFloat(20.00)))

	lines, err := repo.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestProductRepo_Update_RepricesCartLines(t *testing.T) {
	cleanupTables(t)
	f := seedShop(t, 10.00, 5)
	cartRepo := NewCartRepository(testPool)
	productRepo := NewProductRepository(testPool)
	ctx := context.Background()

	require.NoError(t, cartRepo.AddOrIncrement(ctx, &model.CartLine{
		UserID: f.user.ID, ProductID: f.product.ID, UnitID: f.unit.ID,
		Quantity: 3, UnitPrice: decimal.NewFromFloat(10.00), LineAmount: decimal.NewFromFloat(30.00),
	}))

	f.product.RegularPrice = decimal.NewFromFloat(12.00)
	require.NoError(t, productRepo.Update(ctx, f.product, true, decimal.NewFromFloat(12.00)))

	lines, err := cartRepo.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitPrice.Equal(decimal.NewFromFloat(12.00)))
	assert.True(t, lines[0].LineAmount.Equal(decimal.NewFromFloat(36.00)))
	assert.True(t, lines[0].PriceUpdated)
}

func TestOrderRepo_CreateFromCart(t *testing.T) {
	cleanupTables(t)
	f := seedShop(t, 10.00, 5)
	cartRepo := NewCartRepository(testPool)
	orderRepo := NewOrderRepository(testPool)
	productRepo := NewProductRepository(testPool)
	ctx := context.Background()

	require.NoError(t, cartRepo.AddOrIncrement(ctx, &model.CartLine{
		UserID: f.user.ID, ProductID: f.product.ID, UnitID: f.unit.ID,
		Quantity: 3, UnitPrice: decimal.NewFromFloat(10.00), LineAmount: decimal.NewFromFloat(30.00),
	}))

	orderID, err := orderRepo.CreateFromCart(ctx, f.user.ID, integrationRates)
	require.NoError(t, err)

	order, err := orderRepo.GetByID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromFloat(30.00)))
	assert.True(t, order.TaxAmount.Equal(decimal.NewFromFloat(2.10)))
	assert.True(t, order.ShippingAmount.Equal(decimal.NewFromFloat(3.00)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromFloat(35.10)))
	require.Len(t, order.Lines, 1)
	assert.Equal(t, 3, order.Lines[0].Quantity)

	// Stock decremented and cart emptied in the same transaction.
	product, err := productRepo.GetByID(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, product.QtyInStock)

	lines, err := cartRepo.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestOrderRepo_CreateFromCart_EmptyCart(t *testing.T) {
	cleanupTables(t)
	f := seedShop(t, 10.00, 5)
	orderRepo := NewOrderRepository(testPool)

	_, err := orderRepo.CreateFromCart(context.Background(), f.user.ID, integrationRates)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrderRepo_CreateFromCart_ShortageRollsBackEverything(t *testing.T) {
	cleanupTables(t)
	f := seedShop(t, 10.00, 2)
	cartRepo := NewCartRepository(testPool)
	orderRepo := NewOrderRepository(testPool)
	productRepo := NewProductRepository(testPool)
	ctx := context.Background()

	// The line asks for more than is in stock; everything must roll back.
	require.NoError(t, cartRepo.AddOrIncrement(ctx, &model.CartLine{
		UserID: f.user.ID, ProductID: f.product.ID, UnitID: f.unit.ID,
		Quantity: 5, UnitPrice: decimal.NewFromFloat(10.00), LineAmount: decimal.NewFromFloat(50.00),
	}))

	_, err := orderRepo.CreateFromCart(ctx, f.user.ID, integrationRates)
	var shortage *model.StockShortage
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, 2, shortage.Available)

	orders, err := orderRepo.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	product, err := productRepo.GetByID(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, product.QtyInStock)

	lines, err := cartRepo.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestOrderRepo_SequentialIDs(t *testing.T) {
	cleanupTables(t)
	f := seedShop(t, 10.00, 10)
	cartRepo := NewCartRepository(testPool)
	orderRepo := NewOrderRepository(testPool)
	ctx := context.Background()

	addLine := func() {
		require.NoError(t, cartRepo.AddOrIncrement(ctx, &model.CartLine{
			UserID: f.user.ID, ProductID: f.product.ID, UnitID: f.unit.ID,
			Quantity: 1, UnitPrice: decimal.NewFromFloat(10.00), LineAmount: decimal.NewFromFloat(10.00),
		}))
	}

	addLine()
	first, err := orderRepo.CreateFromCart(ctx, f.user.ID, integrationRates)
	require.NoError(t, err)

	addLine()
	second, err := orderRepo.CreateFromCart(ctx, f.user.ID, integrationRates)
	require.NoError(t, err)

	assert.Greater(t, second, first)
}

func TestUnitRepo_GetByCode_CaseInsensitive(t *testing.T) {
	cleanupTables(t)
	f := seedShop(t, 10.00, 5)
	repo := NewUnitRepository(testPool)

	found, err := repo.GetByCode(context.Background(), "ea")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, f.unit.ID, found.ID)
}
