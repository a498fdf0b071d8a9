package checkout

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/payment"
)

type cartStoreMock struct{ mock.Mock }

func (m *cartStoreMock) GetOrCreate(ctx context.Context, code string) (*cart.Cart, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(*cart.Cart)
	return c, args.Error(1)
}

func (m *cartStoreMock) GetByCode(ctx context.Context, code string) (*cart.Cart, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(*cart.Cart)
	return c, args.Error(1)
}

func (m *cartStoreMock) GetByID(ctx context.Context, id uint) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*cart.Cart)
	return c, args.Error(1)
}

func (m *cartStoreMock) ListItems(ctx context.Context, cartID uint) ([]cart.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]cart.CartItem)
	return items, args.Error(1)
}

func (m *cartStoreMock) FindItem(ctx context.Context, cartID, productID uint) (*cart.CartItem, error) {
	args := m.Called(ctx, cartID, productID)
	item, _ := args.Get(0).(*cart.CartItem)
	return item, args.Error(1)
}

func (m *cartStoreMock) GetItem(ctx context.Context, itemID uint) (*cart.CartItem, error) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(*cart.CartItem)
	return item, args.Error(1)
}

func (m *cartStoreMock) CreateItem(ctx context.Context, item *cart.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *cartStoreMock) SaveItem(ctx context.Context, item *cart.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *cartStoreMock) DeleteItem(ctx context.Context, itemID uint) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *cartStoreMock) Delete(ctx context.Context, cartID uint) error {
	return m.Called(ctx, cartID).Error(0)
}

type ledgerMock struct{ mock.Mock }

func (m *ledgerMock) CreateOrder(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *ledgerMock) GetByCheckoutID(ctx context.Context, checkoutID string) (*order.Order, error) {
	args := m.Called(ctx, checkoutID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *ledgerMock) GetByID(ctx context.Context, id uint) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *ledgerMock) ListByEmail(ctx context.Context, email string) ([]order.Order, error) {
	args := m.Called(ctx, email)
	orders, _ := args.Get(0).([]order.Order)
	return orders, args.Error(1)
}

type gatewayMock struct{ mock.Mock }

func (m *gatewayMock) CreateCheckoutSession(ctx context.Context, params *payment.SessionParams) (*payment.Session, error) {
	args := m.Called(ctx, params)
	s, _ := args.Get(0).(*payment.Session)
	return s, args.Error(1)
}

func (m *gatewayMock) ConstructEvent(payload []byte, sigHeader string) (*payment.Event, error) {
	args := m.Called(payload, sigHeader)
	e, _ := args.Get(0).(*payment.Event)
	return e, args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Stripe: config.StripeConfig{
			Currency:       "usd",
			SuccessURL:     "https://shop.example.com/success",
			CancelURL:      "https://shop.example.com/cancel",
			SurchargeCents: 500,
			SurchargeLabel: "VAT Fee",
		},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(carts *cartStoreMock, ledger *ledgerMock, gw *gatewayMock) *Service {
	return NewService(carts, ledger, gw, testConfig(), nil, quietLogger())
}

func sessionEvent(t *testing.T, eventType string, session payment.Session) *payment.Event {
	t.Helper()
	raw, err := json.Marshal(session)
	require.NoError(t, err)
	e := &payment.Event{ID: "evt_1", Type: eventType}
	e.Data.Object = raw
	return e
}

var errNotFound = apperrors.New(apperrors.KindNotFound, "not found")

func TestCreateCheckoutSession_LineItemsAndSurcharge(t *testing.T) {
	carts := new(cartStoreMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, new(ledgerMock), gw)

	c := &cart.Cart{ID: 3, CartCode: "ABC123"}
	carts.On("GetByCode", mock.Anything, "ABC123").Return(c, nil)
	carts.On("ListItems", mock.Anything, uint(3)).Return([]cart.CartItem{
		{ProductID: 1, Quantity: 2, Product: product.Product{Name: "Mug", Price: 1200}},
		{ProductID: 2, Quantity: 1, Product: product.Product{Name: "Poster", Price: 2500}},
	}, nil)

	var captured *payment.SessionParams
	gw.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*payment.SessionParams)
		}).
		Return(&payment.Session{ID: "cs_123", URL: "https://pay.example.com/cs_123"}, nil)

	resp, err := svc.CreateCheckoutSession(context.Background(), &CreateSessionRequest{
		CartCode: "ABC123",
		Email:    "jo@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_123", resp.SessionID)
	assert.Equal(t, "https://pay.example.com/cs_123", resp.URL)

	require.NotNil(t, captured)
	assert.Equal(t, "jo@example.com", captured.CustomerEmail)
	assert.Equal(t, "ABC123", captured.Metadata["cart_code"])

	// Every cart line at its real quantity, then the surcharge line.
	require.Len(t, captured.LineItems, 3)
	assert.Equal(t, payment.LineItem{Name: "Mug", UnitAmount: 1200, Quantity: 2}, captured.LineItems[0])
	assert.Equal(t, payment.LineItem{Name: "Poster", UnitAmount: 2500, Quantity: 1}, captured.LineItems[1])
	assert.Equal(t, payment.LineItem{Name: "VAT Fee", UnitAmount: 500, Quantity: 1}, captured.LineItems[2])
}

func TestCreateCheckoutSession_EmptyCart(t *testing.T) {
	carts := new(cartStoreMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, new(ledgerMock), gw)

	carts.On("GetByCode", mock.Anything, "ABC123").Return(&cart.Cart{ID: 3, CartCode: "ABC123"}, nil)
	carts.On("ListItems", mock.Anything, uint(3)).Return([]cart.CartItem{}, nil)

	_, err := svc.CreateCheckoutSession(context.Background(), &CreateSessionRequest{
		CartCode: "ABC123",
		Email:    "jo@example.com",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	gw.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestHandleWebhook_FulfillsAndDeletesCart(t *testing.T) {
	carts := new(cartStoreMock)
	ledger := new(ledgerMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, ledger, gw)

	session := payment.Session{
		ID:            "cs_123",
		AmountTotal:   4900,
		Currency:      "usd",
		CustomerEmail: "jo@example.com",
		Metadata:      map[string]string{"cart_code": "ABC123"},
	}
	gw.On("ConstructEvent", []byte("payload"), "sig").
		Return(sessionEvent(t, payment.EventCheckoutSessionCompleted, session), nil)

	c := &cart.Cart{ID: 3, CartCode: "ABC123"}
	carts.On("GetByCode", mock.Anything, "ABC123").Return(c, nil)
	carts.On("ListItems", mock.Anything, uint(3)).Return([]cart.CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}, nil)

	var recorded *order.Order
	ledger.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*order.Order)
			// The cart must still exist while the order is written.
			carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		}).
		Return(nil)
	carts.On("Delete", mock.Anything, uint(3)).Return(nil)

	err := svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)

	require.NotNil(t, recorded)
	assert.Equal(t, "cs_123", recorded.CheckoutID)
	assert.Equal(t, int64(4900), recorded.Amount)
	assert.Equal(t, order.StatusPaid, recorded.Status)
	require.Len(t, recorded.Items, 2)
	assert.Equal(t, 2, recorded.Items[0].Quantity)
	carts.AssertCalled(t, "Delete", mock.Anything, uint(3))
}

func TestHandleWebhook_RedeliveryIsNoOp(t *testing.T) {
	carts := new(cartStoreMock)
	ledger := new(ledgerMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, ledger, gw)

	session := payment.Session{
		ID:       "cs_123",
		Metadata: map[string]string{"cart_code": "ABC123"},
	}
	gw.On("ConstructEvent", mock.Anything, mock.Anything).
		Return(sessionEvent(t, payment.EventCheckoutSessionCompleted, session), nil)

	c := &cart.Cart{ID: 3, CartCode: "ABC123"}
	carts.On("GetByCode", mock.Anything, "ABC123").Return(c, nil)
	carts.On("ListItems", mock.Anything, uint(3)).Return([]cart.CartItem{
		{ProductID: 1, Quantity: 1},
	}, nil)
	ledger.On("CreateOrder", mock.Anything, mock.Anything).
		Return(apperrors.New(apperrors.KindConflict, "order already exists"))
	carts.On("Delete", mock.Anything, uint(3)).Return(nil)

	// A duplicate order is not an error; the cart still gets cleaned up.
	err := svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)
	carts.AssertCalled(t, "Delete", mock.Anything, uint(3))
}

func TestHandleWebhook_CartAlreadyConsumed(t *testing.T) {
	carts := new(cartStoreMock)
	ledger := new(ledgerMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, ledger, gw)

	session := payment.Session{
		ID:       "cs_123",
		Metadata: map[string]string{"cart_code": "GONE123"},
	}
	gw.On("ConstructEvent", mock.Anything, mock.Anything).
		Return(sessionEvent(t, payment.EventCheckoutAsyncPaymentSucceeded, session), nil)
	carts.On("GetByCode", mock.Anything, "GONE123").Return(nil, errNotFound)
	// The order for this session is on the ledger, so the missing cart
	// means an earlier delivery finished the job.
	ledger.On("GetByCheckoutID", mock.Anything, "cs_123").
		Return(&order.Order{ID: 1, CheckoutID: "cs_123"}, nil)

	err := svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)
	ledger.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestHandleWebhook_UnknownCartWithoutOrder(t *testing.T) {
	carts := new(cartStoreMock)
	ledger := new(ledgerMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, ledger, gw)

	session := payment.Session{
		ID:       "cs_999",
		Metadata: map[string]string{"cart_code": "NEVEREXIST"},
	}
	gw.On("ConstructEvent", mock.Anything, mock.Anything).
		Return(sessionEvent(t, payment.EventCheckoutSessionCompleted, session), nil)
	carts.On("GetByCode", mock.Anything, "NEVEREXIST").Return(nil, errNotFound)
	ledger.On("GetByCheckoutID", mock.Anything, "cs_999").Return(nil, errNotFound)

	// No cart and no recorded order: the event points at nothing.
	err := svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	ledger.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	carts := new(cartStoreMock)
	ledger := new(ledgerMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, ledger, gw)

	gw.On("ConstructEvent", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.KindInvalidSignature, "signature mismatch"))

	err := svc.HandleWebhook(context.Background(), []byte("payload"), "bad-sig")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidSignature, apperrors.KindOf(err))
	carts.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestHandleWebhook_IgnoresOtherEventTypes(t *testing.T) {
	carts := new(cartStoreMock)
	ledger := new(ledgerMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, ledger, gw)

	gw.On("ConstructEvent", mock.Anything, mock.Anything).
		Return(sessionEvent(t, "payment_intent.created", payment.Session{ID: "cs_x"}), nil)

	err := svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
	require.NoError(t, err)
	carts.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestHandleWebhook_MissingCartCodeMetadata(t *testing.T) {
	carts := new(cartStoreMock)
	ledger := new(ledgerMock)
	gw := new(gatewayMock)
	svc := newTestService(carts, ledger, gw)

	gw.On("ConstructEvent", mock.Anything, mock.Anything).
		Return(sessionEvent(t, payment.EventCheckoutSessionCompleted, payment.Session{ID: "cs_x"}), nil)

	err := svc.HandleWebhook(context.Background(), []byte("payload"), "sig")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}
