package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/pricing"
	"github.com/dessertshop/storefront-api/internal/repository"
)

var (
	ErrCartLineNotFound = errors.New("cart line not found")
	ErrNotYourCart      = errors.New("cart line belongs to another user")
)

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	rates       pricing.Rates
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, rates pricing.Rates) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, rates: rates}
}

func (s *CartService) GetCart(ctx context.Context, userID int64) (*dto.CartResponse, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}

	totals := pricing.Calculate(lines, s.rates)
	resp := &dto.CartResponse{
		Lines:    make([]dto.CartLineResponse, 0, len(lines)),
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Shipping: totals.Shipping,
		Total:    totals.Total,
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, toCartLineResponse(&line))
	}
	return resp, nil
}

// AddLine puts quantity of a product into the user's cart. A line already
// holding that product accumulates the quantity instead of duplicating; the
// requested quantity is checked against live stock either way.
func (s *CartService) AddLine(ctx context.Context, userID, productID int64, quantity int) (*dto.CartLineResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil || !product.Active {
		return nil, ErrProductNotFound
	}
	if quantity > product.QtyInStock {
		return nil, &model.StockShortage{
			ProductName: product.Name,
			Available:   product.QtyInStock,
			UnitCode:    product.UnitCode,
			UnitDesc:    product.UnitDesc,
		}
	}

	price := product.EffectivePrice()
	line := &model.CartLine{
		UserID:     userID,
		ProductID:  productID,
		UnitID:     product.UnitID,
		Quantity:   quantity,
		UnitPrice:  price,
		LineAmount: pricing.LineAmount(quantity, price),
	}
	if err := s.cartRepo.AddOrIncrement(ctx, line); err != nil {
		return nil, fmt.Errorf("add cart line: %w", err)
	}

	line.ProductName = product.Name
	line.UnitCode = product.UnitCode
	line.UnitDesc = product.UnitDesc
	resp := toCartLineResponse(line)
	return &resp, nil
}

// UpdateLine replaces a line's quantity; the line amount is recomputed from
// the stored unit-price snapshot, not the live product price.
func (s *CartService) UpdateLine(ctx context.Context, userID, lineID int64, quantity int) error {
	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return err
	}

	product, err := s.productRepo.GetByID(ctx, line.ProductID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}
	if quantity > product.QtyInStock {
		return &model.StockShortage{
			ProductName: product.Name,
			Available:   product.QtyInStock,
			UnitCode:    product.UnitCode,
			UnitDesc:    product.UnitDesc,
		}
	}

	if err := s.cartRepo.UpdateQuantity(ctx, lineID, quantity); err != nil {
		return fmt.Errorf("update cart line: %w", err)
	}
	return nil
}

func (s *CartService) DeleteLine(ctx context.Context, userID, lineID int64) error {
	if _, err := s.ownedLine(ctx, userID, lineID); err != nil {
		return err
	}
	if err := s.cartRepo.DeleteLine(ctx, lineID); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (s *CartService) ownedLine(ctx context.Context, userID, lineID int64) (*model.CartLine, error) {
	line, err := s.cartRepo.GetLine(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("get cart line: %w", err)
	}
	if line == nil {
		return nil, ErrCartLineNotFound
	}
	if line.UserID != userID {
		return nil, ErrNotYourCart
	}
	return line, nil
}

func toCartLineResponse(line *model.CartLine) dto.CartLineResponse {
	return dto.CartLineResponse{
		ID:           line.ID,
		ProductID:    line.ProductID,
		ProductName:  line.ProductName,
		UnitCode:     line.UnitCode,
		Quantity:     line.Quantity,
		UnitPrice:    line.UnitPrice,
		LineAmount:   line.LineAmount,
		PriceUpdated: line.PriceUpdated,
	}
}
