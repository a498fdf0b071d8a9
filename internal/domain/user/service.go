package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// Service handles customer accounts and addresses
type Service struct {
	db *gorm.DB
}

// NewService creates a new user service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateUserRequest represents a customer registration
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// SaveAddressRequest upserts the customer's shipping address
type SaveAddressRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Street string `json:"street" binding:"required,max=255"`
	City   string `json:"city" binding:"required,max=100"`
	State  string `json:"state" binding:"max=100"`
	Phone  string `json:"phone" binding:"max=30"`
}

// CreateUser registers a customer. Registering an existing email is a
// Conflict.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	u := User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Newf(apperrors.KindConflict,
				"user %s already exists", req.Email)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create user", err)
	}
	return &u, nil
}

// Exists reports whether a customer is registered under the email
func (s *Service) Exists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.KindInternal, "failed to check user", err)
	}
	return count > 0, nil
}

// SaveAddress creates or replaces the customer's address. The email
// keys the row, so repeated saves update in place.
func (s *Service) SaveAddress(ctx context.Context, req *SaveAddressRequest) (*Address, error) {
	var addr Address
	err := s.db.WithContext(ctx).
		Where("email = ?", req.Email).
		First(&addr).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to look up address", err)
	}

	addr.Email = req.Email
	addr.Street = req.Street
	addr.City = req.City
	addr.State = req.State
	addr.Phone = req.Phone

	if err := s.db.WithContext(ctx).Save(&addr).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to save address", err)
	}
	return &addr, nil
}

// GetAddress returns the customer's address
func (s *Service) GetAddress(ctx context.Context, email string) (*Address, error) {
	var addr Address
	err := s.db.WithContext(ctx).
		Where("email = ?", email).
		First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound,
				"no address for %s", email)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to get address", err)
	}
	return &addr, nil
}
