package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/repository"
)

var ErrProductNotFound = errors.New("product not found")

const catalogCacheTTL = 60 * time.Second

// CatalogService serves the read-only storefront views: active categories
// with their active products, and single product detail.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
	redisClient  *redis.Client
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	redisClient *redis.Client,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		redisClient:  redisClient,
	}
}

// Storefront returns the landing payload. The category/product tree is
// cached; the cart count is per caller and always read live. userID of 0
// means an anonymous caller.
func (s *CatalogService) Storefront(ctx context.Context, userID int64) (*dto.CatalogResponse, error) {
	resp := &dto.CatalogResponse{}

	if cached := s.cachedCategories(ctx); cached != nil {
		resp.Categories = cached
	} else {
		categories, err := s.categoryRepo.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		for _, cat := range categories {
			products, err := s.productRepo.ListActiveByCategory(ctx, cat.ID)
			if err != nil {
				return nil, fmt.Errorf("list products for category %d: %w", cat.ID, err)
			}
			entry := dto.CatalogCategory{ID: cat.ID, Name: cat.Name, Description: cat.Description}
			for i := range products {
				entry.Products = append(entry.Products, toProductResponse(&products[i]))
			}
			resp.Categories = append(resp.Categories, entry)
		}
		s.cacheCategories(ctx, resp.Categories)
	}

	if userID != 0 {
		count, err := s.cartRepo.CountByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count cart lines: %w", err)
		}
		resp.CartLineCount = count
	}
	return resp, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*dto.ProductResponse, error) {
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

const catalogCacheKey = "catalog:active"

func (s *CatalogService) cachedCategories(ctx context.Context) []dto.CatalogCategory {
	if s.redisClient == nil {
		return nil
	}
	cached, err := s.redisClient.Get(ctx, catalogCacheKey).Result()
	if err != nil {
		return nil
	}
	var categories []dto.CatalogCategory
	if json.Unmarshal([]byte(cached), &categories) != nil {
		return nil
	}
	return categories
}

func (s *CatalogService) cacheCategories(ctx context.Context, categories []dto.CatalogCategory) {
	if s.redisClient == nil {
		return
	}
	if data, err := json.Marshal(categories); err == nil {
		s.redisClient.Set(ctx, catalogCacheKey, data, catalogCacheTTL)
	}
}

// InvalidateCatalogCache drops the cached category tree. Admin writes to
// categories or products call this so the storefront never serves stale data
// longer than one TTL.
func (s *CatalogService) InvalidateCatalogCache(ctx context.Context) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, catalogCacheKey)
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		CategoryID:      p.CategoryID,
		UnitID:          p.UnitID,
		UnitCode:        p.UnitCode,
		Description:     p.Description,
		RegularPrice:    p.RegularPrice,
		DiscountedPrice: p.DiscountedPrice,
		EffectivePrice:  p.EffectivePrice(),
		QtyInStock:      p.QtyInStock,
		Image:           p.Image,
		Active:          p.Active,
	}
}
