package wishlist

import (
	"context"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// Catalog is the read-only product lookup the wishlist depends on
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*product.Product, error)
}

// Service handles wishlist business logic
type Service struct {
	store   Store
	catalog Catalog
}

// NewService creates a new wishlist service
func NewService(store Store, catalog Catalog) *Service {
	return &Service{store: store, catalog: catalog}
}

// ToggleRequest represents a wishlist toggle request
type ToggleRequest struct {
	Email     string `json:"email" binding:"required,email"`
	ProductID uint   `json:"product_id" binding:"required"`
}

// ToggleResponse reports the state after a toggle
type ToggleResponse struct {
	InWishlist bool   `json:"in_wishlist"`
	Message    string `json:"message"`
}

// Toggle adds the product to the customer's wishlist, or removes it if
// it is already there. Toggling twice restores the original state.
func (s *Service) Toggle(ctx context.Context, req *ToggleRequest) (*ToggleResponse, error) {
	if _, err := s.catalog.GetProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	existing, err := s.store.Find(ctx, req.Email, req.ProductID)
	switch {
	case err == nil:
		if err := s.store.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		return &ToggleResponse{InWishlist: false, Message: "Removed from wishlist"}, nil

	case apperrors.IsNotFound(err):
		item := &Item{Email: req.Email, ProductID: req.ProductID}
		if createErr := s.store.Create(ctx, item); createErr != nil {
			// A concurrent toggle won the insert; the product is in
			// the wishlist either way.
			if apperrors.IsConflict(createErr) {
				return &ToggleResponse{InWishlist: true, Message: "Added to wishlist"}, nil
			}
			return nil, createErr
		}
		return &ToggleResponse{InWishlist: true, Message: "Added to wishlist"}, nil

	default:
		return nil, err
	}
}

// List returns a customer's wishlist with product details, newest first
func (s *Service) List(ctx context.Context, email string) ([]Item, error) {
	return s.store.ListByEmail(ctx, email)
}

// Contains reports whether the product is in the customer's wishlist
func (s *Service) Contains(ctx context.Context, email string, productID uint) (bool, error) {
	_, err := s.store.Find(ctx, email, productID)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
