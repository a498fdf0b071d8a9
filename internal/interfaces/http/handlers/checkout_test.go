package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/payment"
)

const testWebhookSecret = "whsec_test_secret"

// fakeCartStore holds one cart in memory, enough to drive the webhook
// path end to end.
type fakeCartStore struct {
	cart    *cart.Cart
	items   []cart.CartItem
	deleted bool
}

func (f *fakeCartStore) GetOrCreate(ctx context.Context, code string) (*cart.Cart, error) {
	return f.cart, nil
}

func (f *fakeCartStore) GetByCode(ctx context.Context, code string) (*cart.Cart, error) {
	if f.cart == nil || f.deleted || f.cart.CartCode != code {
		return nil, apperrors.Newf(apperrors.KindNotFound, "cart %s not found", code)
	}
	return f.cart, nil
}

func (f *fakeCartStore) GetByID(ctx context.Context, id uint) (*cart.Cart, error) {
	if f.cart == nil || f.deleted {
		return nil, apperrors.Newf(apperrors.KindNotFound, "cart %d not found", id)
	}
	return f.cart, nil
}

func (f *fakeCartStore) ListItems(ctx context.Context, cartID uint) ([]cart.CartItem, error) {
	return f.items, nil
}

func (f *fakeCartStore) FindItem(ctx context.Context, cartID, productID uint) (*cart.CartItem, error) {
	return nil, apperrors.New(apperrors.KindNotFound, "not found")
}

func (f *fakeCartStore) GetItem(ctx context.Context, itemID uint) (*cart.CartItem, error) {
	return nil, apperrors.New(apperrors.KindNotFound, "not found")
}

func (f *fakeCartStore) CreateItem(ctx context.Context, item *cart.CartItem) error { return nil }
func (f *fakeCartStore) SaveItem(ctx context.Context, item *cart.CartItem) error   { return nil }
func (f *fakeCartStore) DeleteItem(ctx context.Context, itemID uint) error         { return nil }

func (f *fakeCartStore) Delete(ctx context.Context, cartID uint) error {
	f.deleted = true
	return nil
}

// fakeLedger enforces CheckoutID uniqueness like the real one.
type fakeLedger struct {
	orders map[string]*order.Order
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{orders: make(map[string]*order.Order)}
}

func (f *fakeLedger) CreateOrder(ctx context.Context, o *order.Order) error {
	if _, ok := f.orders[o.CheckoutID]; ok {
		return apperrors.Newf(apperrors.KindConflict,
			"order for checkout %s already exists", o.CheckoutID)
	}
	o.ID = uint(len(f.orders) + 1)
	f.orders[o.CheckoutID] = o
	return nil
}

func (f *fakeLedger) GetByCheckoutID(ctx context.Context, checkoutID string) (*order.Order, error) {
	o, ok := f.orders[checkoutID]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "not found")
	}
	return o, nil
}

func (f *fakeLedger) GetByID(ctx context.Context, id uint) (*order.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "not found")
}

func (f *fakeLedger) ListByEmail(ctx context.Context, email string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range f.orders {
		if o.CustomerEmail == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func signWebhookPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookRouter(store *fakeCartStore, ledger *fakeLedger) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Stripe: config.StripeConfig{
			WebhookSecret: testWebhookSecret,
			Currency:      "usd",
		},
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gateway := payment.NewStripeClient(cfg)
	service := checkout.NewService(store, ledger, gateway, cfg, nil, logger)
	handler := NewCheckoutHandler(service)

	router := gin.New()
	router.POST("/webhooks/payment", handler.Webhook)
	return router
}

func postWebhook(router *gin.Engine, payload []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhook_SignedEventFulfillsOrder(t *testing.T) {
	store := &fakeCartStore{
		cart: &cart.Cart{ID: 3, CartCode: "ABC123"},
		items: []cart.CartItem{
			{ProductID: 1, Quantity: 2},
		},
	}
	ledger := newFakeLedger()
	router := newWebhookRouter(store, ledger)

	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_123",
			"amount_total": 4500,
			"currency": "usd",
			"customer_email": "jo@example.com",
			"metadata": {"cart_code": "ABC123"}
		}}
	}`)

	w := postWebhook(router, payload, signWebhookPayload(payload, testWebhookSecret, time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)

	o, err := ledger.GetByCheckoutID(context.Background(), "cs_123")
	require.NoError(t, err)
	assert.Equal(t, int64(4500), o.Amount)
	assert.Equal(t, order.StatusPaid, o.Status)
	require.Len(t, o.Items, 1)
	assert.True(t, store.deleted)

	// Redelivery stays a 200 and does not create a second order.
	w = postWebhook(router, payload, signWebhookPayload(payload, testWebhookSecret, time.Now()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ledger.orders, 1)
}

func TestWebhook_TamperedSignatureRejected(t *testing.T) {
	store := &fakeCartStore{
		cart:  &cart.Cart{ID: 3, CartCode: "ABC123"},
		items: []cart.CartItem{{ProductID: 1, Quantity: 1}},
	}
	ledger := newFakeLedger()
	router := newWebhookRouter(store, ledger)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_123","metadata":{"cart_code":"ABC123"}}}}`)
	sig := signWebhookPayload(payload, testWebhookSecret, time.Now())

	// Payload altered after signing.
	tampered := bytes.Replace(payload, []byte("cs_123"), []byte("cs_999"), 1)

	w := postWebhook(router, tampered, sig)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, ledger.orders)
	assert.False(t, store.deleted)
}

func TestWebhook_IgnoredEventType(t *testing.T) {
	store := &fakeCartStore{cart: &cart.Cart{ID: 3, CartCode: "ABC123"}}
	ledger := newFakeLedger()
	router := newWebhookRouter(store, ledger)

	payload := []byte(`{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`)
	w := postWebhook(router, payload, signWebhookPayload(payload, testWebhookSecret, time.Now()))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, ledger.orders)
	assert.False(t, store.deleted)
}
