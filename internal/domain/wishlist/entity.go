package wishlist

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Item represents a wishlist entry. One row exists per (email, product)
// pair; toggling an existing pair removes the row.
type Item struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"not null;size:255;uniqueIndex:idx_wishlist_email_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_wishlist_email_product"`
	CreatedAt time.Time `json:"created_at"`

	Product product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for wishlist items
func (Item) TableName() string {
	return "wishlist_items"
}
