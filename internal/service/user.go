package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dessertshop/storefront-api/internal/dto"
	"github.com/dessertshop/storefront-api/internal/model"
	"github.com/dessertshop/storefront-api/internal/repository"
)

var (
	ErrEmailTaken        = errors.New("a user with that email already exists")
	ErrUserHasDependents = errors.New("user cannot be deleted while orders or cart lines reference them")
	ErrAdminUndeletable  = errors.New("the administrator account cannot be deleted")
)

// UserService is the admin-side account management surface. Self-service
// signup lives in AuthService.
type UserService struct {
	userRepo    repository.UserRepository
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	adminUserID int64
}

func NewUserService(
	userRepo repository.UserRepository,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	adminUserID int64,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		adminUserID: adminUserID,
	}
}

func (s *UserService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *UserService) Create(ctx context.Context, req dto.SaveUserRequest) (*dto.UserResponse, error) {
	if err := s.checkEmailFree(ctx, req.Email, 0); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name: req.Name, Email: req.Email,
		PasswordHash: string(hashed), Active: req.Active,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *UserService) Update(ctx context.Context, id int64, req dto.SaveUserRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.checkEmailFree(ctx, req.Email, id); err != nil {
		return nil, err
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Active = req.Active
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Delete refuses for the administrator account and for any user with order
// history or cart contents.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if id == s.adminUserID {
		return ErrAdminUndeletable
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	orders, err := s.orderRepo.CountByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("count orders: %w", err)
	}
	cartLines, err := s.cartRepo.CountByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("count cart lines: %w", err)
	}
	if orders > 0 || cartLines > 0 {
		return ErrUserHasDependents
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string, excludeID int64) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return ErrEmailTaken
	}
	return nil
}
