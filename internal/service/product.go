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
	ErrProductNameTaken     = errors.New("a product with that name already exists")
	ErrProductHasDependents = errors.New("product cannot be deleted while carts or orders reference it")
	ErrBadProductReference  = errors.New("product references an unknown category or unit of measure")
)

type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	unitRepo     repository.UnitRepository
	cartRepo     repository.CartRepository
	orderRepo    repository.OrderRepository
	catalog      *CatalogService
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	unitRepo repository.UnitRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	catalog *CatalogService,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		unitRepo:     unitRepo,
		cartRepo:     cartRepo,
		orderRepo:    orderRepo,
		catalog:      catalog,
	}
}

func (s *ProductService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toProductResponse(&products[i]))
	}
	return out, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Create(ctx context.Context, req dto.SaveProductRequest) (*dto.ProductResponse, error) {
	if err := s.checkNameFree(ctx, req.Name, 0); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.UnitID); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:            req.Name,
		CategoryID:      req.CategoryID,
		UnitID:          req.UnitID,
		Description:     req.Description,
		RegularPrice:    req.RegularPrice,
		DiscountedPrice: req.DiscountedPrice,
		QtyInStock:      req.QtyInStock,
		Image:           req.Image,
		Active:          req.Active,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.catalog.InvalidateCatalogCache(ctx)

	return s.Get(ctx, product.ID)
}

// Update saves the product and, when the effective selling price changed,
// rewrites the unit-price snapshot on every cart line holding the product in
// the same transaction. Those lines come back flagged so their owners see
// the price moved under them.
func (s *ProductService) Update(ctx context.Context, id int64, req dto.SaveProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if err := s.checkNameFree(ctx, req.Name, id); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.UnitID); err != nil {
		return nil, err
	}

	oldPrice := product.EffectivePrice()

	product.Name = req.Name
	product.CategoryID = req.CategoryID
	product.UnitID = req.UnitID
	product.Description = req.Description
	product.RegularPrice = req.RegularPrice
	product.DiscountedPrice = req.DiscountedPrice
	product.QtyInStock = req.QtyInStock
	product.Image = req.Image
	product.Active = req.Active

	newPrice := product.EffectivePrice()
	reprice := !newPrice.Equal(oldPrice)

	if err := s.productRepo.Update(ctx, product, reprice, newPrice); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.catalog.InvalidateCatalogCache(ctx)

	return s.Get(ctx, id)
}

// Delete refuses while any cart line or order line references the product.
// Order history is immutable, so a product that has ever been ordered can
// only be deactivated, never removed.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	inCarts, err := s.cartRepo.CountByProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("count cart references: %w", err)
	}
	inOrders, err := s.orderRepo.CountLinesByProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("count order references: %w", err)
	}
	if inCarts > 0 || inOrders > 0 {
		return ErrProductHasDependents
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.catalog.InvalidateCatalogCache(ctx)
	return nil
}

func (s *ProductService) checkNameFree(ctx context.Context, name string, excludeID int64) error {
	existing, err := s.productRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("check product name: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return ErrProductNameTaken
	}
	return nil
}

func (s *ProductService) checkReferences(ctx context.Context, categoryID, unitID int64) error {
	cat, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		return fmt.Errorf("check unit: %w", err)
	}
	if cat == nil || unit == nil {
		return ErrBadProductReference
	}
	return nil
}
