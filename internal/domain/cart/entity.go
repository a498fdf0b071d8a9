// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartCodeMaxLength bounds the opaque client-supplied cart code
const CartCodeMaxLength = 11

// Cart is transient staging for a purchase, keyed by an opaque
// client-supplied code. It is created lazily on first add and deleted
// once fulfillment completes.
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartCode  string    `gorm:"uniqueIndex;not null;size:11" json:"cart_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// CartItem is one product line in a cart. Unique per (cart, product);
// repeated adds increment the quantity instead of duplicating rows.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Product product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }

// SubTotal returns the line total in cents
func (i *CartItem) SubTotal() int64 {
	return i.Product.Price * int64(i.Quantity)
}
