package order

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// Ledger persists fulfilled orders
type Ledger interface {
	// CreateOrder writes an order and its items atomically. A duplicate
	// CheckoutID yields a Conflict error and writes nothing.
	CreateOrder(ctx context.Context, o *Order) error
	// GetByCheckoutID returns the order recorded for a gateway session
	GetByCheckoutID(ctx context.Context, checkoutID string) (*Order, error)
	// GetByID returns an order with its items and products
	GetByID(ctx context.Context, id uint) (*Order, error)
	// ListByEmail returns a customer's orders, newest first
	ListByEmail(ctx context.Context, email string) ([]Order, error)
}

type gormLedger struct {
	db *gorm.DB
}

// NewLedger creates an order ledger backed by gorm
func NewLedger(db *gorm.DB) Ledger {
	return &gormLedger{db: db}
}

func (l *gormLedger) CreateOrder(ctx context.Context, o *Order) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Newf(apperrors.KindConflict,
				"order for checkout %s already exists", o.CheckoutID)
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to create order", err)
	}
	return nil
}

func (l *gormLedger) GetByCheckoutID(ctx context.Context, checkoutID string) (*Order, error) {
	var o Order
	err := l.db.WithContext(ctx).
		Preload("Items.Product").
		Where("checkout_id = ?", checkoutID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound,
				"order for checkout %s not found", checkoutID)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to get order", err)
	}
	return &o, nil
}

func (l *gormLedger) GetByID(ctx context.Context, id uint) (*Order, error) {
	var o Order
	err := l.db.WithContext(ctx).
		Preload("Items.Product").
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "order %d not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to get order", err)
	}
	return &o, nil
}

func (l *gormLedger) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	var orders []Order
	err := l.db.WithContext(ctx).
		Preload("Items.Product").
		Where("customer_email = ?", email).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list orders", err)
	}
	return orders, nil
}
