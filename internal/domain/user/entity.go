package user

import "time"

// User represents a storefront customer. There is no authentication;
// customers are identified by email.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FirstName string    `json:"first_name" gorm:"size:100"`
	LastName  string    `json:"last_name" gorm:"size:100"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address is a customer's shipping address, one per email
type Address struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Street    string    `json:"street" gorm:"size:255"`
	City      string    `json:"city" gorm:"size:100"`
	State     string    `json:"state" gorm:"size:100"`
	Phone     string    `json:"phone" gorm:"size:30"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// TableName returns the table name for Address
func (Address) TableName() string {
	return "customer_addresses"
}
