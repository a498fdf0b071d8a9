// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// statCacheTTL bounds staleness of the cached cart stat
const statCacheTTL = 5 * time.Minute

// Catalog is the read-only product lookup the cart depends on
type Catalog interface {
	GetProduct(ctx context.Context, id uint) (*product.Product, error)
}

// Service handles cart business logic
type Service struct {
	store       Store
	catalog     Catalog
	redisClient *redis.Client
}

// NewService creates a new cart service. redisClient may be nil; the
// stat cache is then disabled.
func NewService(store Store, catalog Catalog, redisClient *redis.Client) *Service {
	return &Service{
		store:       store,
		catalog:     catalog,
		redisClient: redisClient,
	}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	CartCode  string `json:"cart_code" binding:"required,max=11"`
	ProductID uint   `json:"product_id" binding:"required"`
}

// UpdateItemRequest carries a quantity delta. The value is added to the
// current quantity; the result must stay at or above one.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// CartItemResponse represents a cart item with product details
type CartItemResponse struct {
	ID       uint             `json:"id"`
	Product  *product.Product `json:"product"`
	Quantity int              `json:"quantity"`
	SubTotal int64            `json:"sub_total"`
}

// CartResponse represents a cart with all items and the computed total
type CartResponse struct {
	ID        uint               `json:"id"`
	CartCode  string             `json:"cart_code"`
	Items     []CartItemResponse `json:"items"`
	CartTotal int64              `json:"cart_total"`
}

// CartStat is a lightweight cart summary for header badges
type CartStat struct {
	ID         uint   `json:"id"`
	CartCode   string `json:"cart_code"`
	NumOfItems int    `json:"num_of_items"`
}

// AddItem adds a product to the cart identified by code, creating the
// cart on first use. Repeated adds for the same product increment the
// quantity; exactly one row exists per (cart, product) pair.
func (s *Service) AddItem(ctx context.Context, cartCode string, productID uint) (*CartResponse, error) {
	if cartCode == "" || len(cartCode) > CartCodeMaxLength {
		return nil, apperrors.New(apperrors.KindValidation, "invalid cart_code")
	}

	prod, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.store.GetOrCreate(ctx, cartCode)
	if err != nil {
		return nil, err
	}

	item, err := s.store.FindItem(ctx, c.ID, prod.ID)
	switch {
	case err == nil:
		item.Quantity++
		if err := s.store.SaveItem(ctx, item); err != nil {
			return nil, err
		}
	case apperrors.IsNotFound(err):
		item = &CartItem{CartID: c.ID, ProductID: prod.ID, Quantity: 1}
		createErr := s.store.CreateItem(ctx, item)
		if apperrors.IsConflict(createErr) {
			// A concurrent add created the row first; fall back to
			// incrementing it.
			item, err = s.store.FindItem(ctx, c.ID, prod.ID)
			if err != nil {
				return nil, err
			}
			item.Quantity++
			if err := s.store.SaveItem(ctx, item); err != nil {
				return nil, err
			}
		} else if createErr != nil {
			return nil, createErr
		}
	default:
		return nil, err
	}

	s.invalidateStat(ctx, cartCode)
	return s.buildCartResponse(ctx, c)
}

// UpdateItemQuantity applies a delta to a cart item's quantity. The
// resulting quantity must remain at least one; use RemoveItem to drop a
// line entirely.
func (s *Service) UpdateItemQuantity(ctx context.Context, itemID uint, delta int) (*CartItemResponse, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	newQuantity := item.Quantity + delta
	if newQuantity < 1 {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"quantity delta %d would drop below one", delta)
	}

	item.Quantity = newQuantity
	if err := s.store.SaveItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidateStatByCartID(ctx, item.CartID)
	return &CartItemResponse{
		ID:       item.ID,
		Product:  &item.Product,
		Quantity: item.Quantity,
		SubTotal: item.SubTotal(),
	}, nil
}

// RemoveItem deletes a single line from its cart
func (s *Service) RemoveItem(ctx context.Context, itemID uint) error {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteItem(ctx, item.ID); err != nil {
		return err
	}
	s.invalidateStatByCartID(ctx, item.CartID)
	return nil
}

// GetCart returns the full cart state for a code
func (s *Service) GetCart(ctx context.Context, cartCode string) (*CartResponse, error) {
	c, err := s.store.GetByCode(ctx, cartCode)
	if err != nil {
		return nil, err
	}
	return s.buildCartResponse(ctx, c)
}

// GetCartStat returns an item-count summary, served from Redis when the
// cache is warm
func (s *Service) GetCartStat(ctx context.Context, cartCode string) (*CartStat, error) {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, statCacheKey(cartCode)).Result()
		if err == nil {
			var stat CartStat
			if jsonErr := json.Unmarshal([]byte(cached), &stat); jsonErr == nil {
				return &stat, nil
			}
		}
	}

	c, err := s.store.GetByCode(ctx, cartCode)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, item := range items {
		total += item.Quantity
	}

	stat := &CartStat{ID: c.ID, CartCode: c.CartCode, NumOfItems: total}

	if s.redisClient != nil {
		if data, err := json.Marshal(stat); err == nil {
			s.redisClient.Set(ctx, statCacheKey(cartCode), data, statCacheTTL)
		}
	}

	return stat, nil
}

// ProductInCart reports whether the product already has a line in the cart
func (s *Service) ProductInCart(ctx context.Context, cartCode string, productID uint) (bool, error) {
	c, err := s.store.GetByCode(ctx, cartCode)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, err = s.store.FindItem(ctx, c.ID, productID)
	if apperrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) buildCartResponse(ctx context.Context, c *Cart) (*CartResponse, error) {
	items, err := s.store.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]CartItemResponse, len(items))
	var total int64
	for i := range items {
		responses[i] = CartItemResponse{
			ID:       items[i].ID,
			Product:  &items[i].Product,
			Quantity: items[i].Quantity,
			SubTotal: items[i].SubTotal(),
		}
		total += responses[i].SubTotal
	}

	return &CartResponse{
		ID:        c.ID,
		CartCode:  c.CartCode,
		Items:     responses,
		CartTotal: total,
	}, nil
}

func (s *Service) invalidateStat(ctx context.Context, cartCode string) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, statCacheKey(cartCode))
	}
}

// invalidateStatByCartID resolves the cart code for item-level
// mutations that only know the cart ID
func (s *Service) invalidateStatByCartID(ctx context.Context, cartID uint) {
	if s.redisClient == nil {
		return
	}
	if c, err := s.store.GetByID(ctx, cartID); err == nil {
		s.redisClient.Del(ctx, statCacheKey(c.CartCode))
	}
}

func statCacheKey(cartCode string) string {
	return fmt.Sprintf("cart:stat:%s", cartCode)
}
