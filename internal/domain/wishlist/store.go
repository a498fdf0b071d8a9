package wishlist

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// Store is the persistence surface for wishlist items
type Store interface {
	// Find returns the (email, product) item or a NotFound error
	Find(ctx context.Context, email string, productID uint) (*Item, error)

	// Create inserts an item; a duplicate (email, product) pair yields
	// a Conflict error
	Create(ctx context.Context, item *Item) error

	// Delete removes an item by ID
	Delete(ctx context.Context, id uint) error

	// ListByEmail returns a customer's items with products, newest first
	ListByEmail(ctx context.Context, email string) ([]Item, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed wishlist store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Find(ctx context.Context, email string, productID uint) (*Item, error) {
	var item Item
	err := s.db.WithContext(ctx).
		Where("email = ? AND product_id = ?", email, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "wishlist item not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to look up wishlist item", err)
	}
	return &item, nil
}

func (s *gormStore) Create(ctx context.Context, item *Item) error {
	err := s.db.WithContext(ctx).Create(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.New(apperrors.KindConflict, "wishlist item already exists")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to add wishlist item", err)
	}
	return nil
}

func (s *gormStore) Delete(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Delete(&Item{}, id).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to remove wishlist item", err)
	}
	return nil
}

func (s *gormStore) ListByEmail(ctx context.Context, email string) ([]Item, error) {
	var items []Item
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list wishlist", err)
	}
	return items, nil
}
