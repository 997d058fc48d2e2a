package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/repository"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNotYourOrder  = errors.New("order belongs to another user")
)

// OrderService is read access to order history plus the small admin edit
// surface. Orders are created only by the checkout transaction.
type OrderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

func (s *OrderService) ListAll(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID int64) ([]dto.OrderResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return toOrderResponses(orders), nil
}

// Get returns one order with its lines. A non-admin caller may only see
// their own orders; admins pass admin=true and see any.
func (s *OrderService) Get(ctx context.Context, id, callerID int64, admin bool) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !admin && order.UserID != callerID {
		return nil, ErrNotYourOrder
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

// Edit updates the mutable admin fields. Amounts and lines never change
// after the order is created.
func (s *OrderService) Edit(ctx context.Context, id int64, req dto.EditOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	order.DatePaid = req.DatePaid
	order.DateShipped = req.DateShipped
	order.Notes = req.Notes
	if err := s.orderRepo.UpdateAdminFields(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:             order.ID,
		UserID:         order.UserID,
		DateOrdered:    order.DateOrdered,
		DatePaid:       order.DatePaid,
		DateShipped:    order.DateShipped,
		Subtotal:       order.Subtotal,
		TaxAmount:      order.TaxAmount,
		ShippingAmount: order.ShippingAmount,
		TotalAmount:    order.TotalAmount,
		Notes:          order.Notes,
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:          line.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitCode:    line.UnitCode,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineAmount:  line.LineAmount,
		})
	}
	return resp
}
