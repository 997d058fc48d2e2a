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
	ErrUnitNotFound      = errors.New("unit of measure not found")
	ErrUnitCodeTaken     = errors.New("a unit of measure with that code already exists")
	ErrUnitHasDependents = errors.New("unit of measure cannot be deleted while records reference it")
)

type UnitService struct {
	unitRepo    repository.UnitRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
}

func NewUnitService(
	unitRepo repository.UnitRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
) *UnitService {
	return &UnitService{
		unitRepo:    unitRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
	}
}

func (s *UnitService) List(ctx context.Context) ([]dto.UnitResponse, error) {
	units, err := s.unitRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	out := make([]dto.UnitResponse, 0, len(units))
	for i := range units {
		out = append(out, toUnitResponse(&units[i]))
	}
	return out, nil
}

func (s *UnitService) Get(ctx context.Context, id int64) (*dto.UnitResponse, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	if unit == nil {
		return nil, ErrUnitNotFound
	}
	resp := toUnitResponse(unit)
	return &resp, nil
}

func (s *UnitService) Create(ctx context.Context, req dto.SaveUnitRequest) (*dto.UnitResponse, error) {
	if err := s.checkCodeFree(ctx, req.Code, 0); err != nil {
		return nil, err
	}
	unit := &model.Unit{Code: req.Code, Description: req.Description}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}
	resp := toUnitResponse(unit)
	return &resp, nil
}

func (s *UnitService) Update(ctx context.Context, id int64, req dto.SaveUnitRequest) (*dto.UnitResponse, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	if unit == nil {
		return nil, ErrUnitNotFound
	}
	if err := s.checkCodeFree(ctx, req.Code, id); err != nil {
		return nil, err
	}

	unit.Code = req.Code
	unit.Description = req.Description
	if err := s.unitRepo.Update(ctx, unit); err != nil {
		return nil, fmt.Errorf("update unit: %w", err)
	}
	resp := toUnitResponse(unit)
	return &resp, nil
}

// Delete refuses while any product, cart line, or order line references the
// unit. Order lines keep their unit reference forever, so a unit that has
// ever been sold is effectively permanent.
func (s *UnitService) Delete(ctx context.Context, id int64) error {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get unit: %w", err)
	}
	if unit == nil {
		return ErrUnitNotFound
	}

	counts := []func(context.Context, int64) (int, error){
		s.productRepo.CountByUnit,
		s.cartRepo.CountByUnit,
		s.orderRepo.CountLinesByUnit,
	}
	for _, count := range counts {
		n, err := count(ctx, id)
		if err != nil {
			return fmt.Errorf("check unit references: %w", err)
		}
		if n > 0 {
			return ErrUnitHasDependents
		}
	}

	if err := s.unitRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return nil
}

func (s *UnitService) checkCodeFree(ctx context.Context, code string, excludeID int64) error {
	existing, err := s.unitRepo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("check unit code: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return ErrUnitCodeTaken
	}
	return nil
}

func toUnitResponse(unit *model.Unit) dto.UnitResponse {
	return dto.UnitResponse{ID: unit.ID, Code: unit.Code, Description: unit.Description}
}
