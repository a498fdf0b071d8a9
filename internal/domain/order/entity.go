package order

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Order status values
const (
	StatusPending = "Pending"
	StatusPaid    = "Paid"
)

// Order represents a fulfilled checkout. CheckoutID is the payment
// gateway's session identifier and is unique, which makes fulfillment
// replay-safe: a second webhook for the same session collides here
// instead of writing a duplicate order.
type Order struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CheckoutID    string    `json:"checkout_id" gorm:"uniqueIndex;not null;size:255"`
	Amount        int64     `json:"amount" gorm:"not null"`
	Currency      string    `json:"currency" gorm:"not null;size:3"`
	CustomerEmail string    `json:"customer_email" gorm:"index;size:255"`
	Status        string    `json:"status" gorm:"not null;default:'Pending'"`
	CreatedAt     time.Time `json:"created_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is a single purchased line copied from the cart at
// fulfillment time
type OrderItem struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	OrderID   uint `json:"order_id" gorm:"not null;index"`
	ProductID uint `json:"product_id" gorm:"not null"`
	Quantity  int  `json:"quantity" gorm:"not null;default:1"`

	Product product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}
