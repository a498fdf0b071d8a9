// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// Store is the persistence surface for carts and their items.
// Conflict-kind errors mark unique-key violations so callers can apply
// create-or-fetch semantics.
type Store interface {
	// GetOrCreate returns the cart for code, creating it when absent.
	// First writer wins on the unique code.
	GetOrCreate(ctx context.Context, code string) (*Cart, error)

	// GetByCode returns the cart for code or a NotFound error
	GetByCode(ctx context.Context, code string) (*Cart, error)

	// GetByID returns the cart for id or a NotFound error
	GetByID(ctx context.Context, id uint) (*Cart, error)

	// ListItems returns all items of a cart with products loaded
	ListItems(ctx context.Context, cartID uint) ([]CartItem, error)

	// FindItem returns the (cart, product) item or a NotFound error
	FindItem(ctx context.Context, cartID, productID uint) (*CartItem, error)

	// GetItem returns an item by ID with its product, or NotFound
	GetItem(ctx context.Context, itemID uint) (*CartItem, error)

	// CreateItem inserts an item; a duplicate (cart, product) pair
	// yields a Conflict error
	CreateItem(ctx context.Context, item *CartItem) error

	// SaveItem persists quantity changes
	SaveItem(ctx context.Context, item *CartItem) error

	// DeleteItem removes a single item
	DeleteItem(ctx context.Context, itemID uint) error

	// Delete removes the cart and all its items. Deleting an absent
	// cart is a no-op.
	Delete(ctx context.Context, cartID uint) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM-backed cart store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetOrCreate(ctx context.Context, code string) (*Cart, error) {
	var c Cart
	err := s.db.WithContext(ctx).Where(Cart{CartCode: code}).FirstOrCreate(&c).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race to another request creating the same code;
		// the winner's row is the cart.
		err = s.db.WithContext(ctx).Where("cart_code = ?", code).First(&c).Error
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to get or create cart", err)
	}
	return &c, nil
}

func (s *gormStore) GetByCode(ctx context.Context, code string) (*Cart, error) {
	var c Cart
	err := s.db.WithContext(ctx).Where("cart_code = ?", code).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "cart not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve cart", err)
	}
	return &c, nil
}

func (s *gormStore) GetByID(ctx context.Context, id uint) (*Cart, error) {
	var c Cart
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "cart not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve cart", err)
	}
	return &c, nil
}

func (s *gormStore) ListItems(ctx context.Context, cartID uint) ([]CartItem, error) {
	var items []CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list cart items", err)
	}
	return items, nil
}

func (s *gormStore) FindItem(ctx context.Context, cartID, productID uint) (*CartItem, error) {
	var item CartItem
	err := s.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "cart item not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve cart item", err)
	}
	return &item, nil
}

func (s *gormStore) GetItem(ctx context.Context, itemID uint) (*CartItem, error) {
	var item CartItem
	err := s.db.WithContext(ctx).Preload("Product").First(&item, itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.KindNotFound, "cart item not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to retrieve cart item", err)
	}
	return &item, nil
}

func (s *gormStore) CreateItem(ctx context.Context, item *CartItem) error {
	err := s.db.WithContext(ctx).Create(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.New(apperrors.KindConflict, "cart item already exists")
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to create cart item", err)
	}
	return nil
}

func (s *gormStore) SaveItem(ctx context.Context, item *CartItem) error {
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to save cart item", err)
	}
	return nil
}

func (s *gormStore) DeleteItem(ctx context.Context, itemID uint) error {
	if err := s.db.WithContext(ctx).Delete(&CartItem{}, itemID).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete cart item", err)
	}
	return nil
}

func (s *gormStore) Delete(ctx context.Context, cartID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Cart{}, cartID).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete cart", err)
	}
	return nil
}
