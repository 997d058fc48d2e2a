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
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryNameTaken     = errors.New("a category with that name already exists")
	ErrCategoryHasDependents = errors.New("category cannot be deleted while products reference it")
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	catalog      *CatalogService
}

func NewCategoryService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository, catalog *CatalogService) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, productRepo: productRepo, catalog: catalog}
}

func (s *CategoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]dto.CategoryResponse, 0, len(cats))
	for i := range cats {
		out = append(out, toCategoryResponse(&cats[i]))
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*dto.CategoryResponse, error) {
	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	resp := toCategoryResponse(cat)
	return &resp, nil
}

func (s *CategoryService) Create(ctx context.Context, req dto.SaveCategoryRequest) (*dto.CategoryResponse, error) {
	if err := s.checkNameFree(ctx, req.Name, 0); err != nil {
		return nil, err
	}
	cat := &model.Category{Name: req.Name, Description: req.Description, Active: req.Active}
	if err := s.categoryRepo.Create(ctx, cat); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.catalog.InvalidateCatalogCache(ctx)
	resp := toCategoryResponse(cat)
	return &resp, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req dto.SaveCategoryRequest) (*dto.CategoryResponse, error) {
	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if cat == nil {
		return nil, ErrCategoryNotFound
	}
	if err := s.checkNameFree(ctx, req.Name, id); err != nil {
		return nil, err
	}

	cat.Name = req.Name
	cat.Description = req.Description
	cat.Active = req.Active
	if err := s.categoryRepo.Update(ctx, cat); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.catalog.InvalidateCatalogCache(ctx)
	resp := toCategoryResponse(cat)
	return &resp, nil
}

// Delete refuses while any product references the category, active or not.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	cat, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	if cat == nil {
		return ErrCategoryNotFound
	}

	n, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return ErrCategoryHasDependents
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.catalog.InvalidateCatalogCache(ctx)
	return nil
}

// checkNameFree enforces case-insensitive name uniqueness. excludeID skips
// the record being edited so saving without renaming stays legal.
func (s *CategoryService) checkNameFree(ctx context.Context, name string, excludeID int64) error {
	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return ErrCategoryNameTaken
	}
	return nil
}

func toCategoryResponse(cat *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID: cat.ID, Name: cat.Name, Description: cat.Description, Active: cat.Active,
	}
}
