package checkout

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
	"github.com/your-org/storefront-backend/internal/pkg/payment"
)

// Mailer sends the order confirmation after fulfillment. It is optional;
// a nil mailer disables confirmation email.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order) error
}

// Service runs the checkout and fulfillment workflow: it turns a cart
// into a hosted payment session, and a verified payment event into a
// durable order.
type Service struct {
	carts   cart.Store
	ledger  order.Ledger
	gateway payment.Gateway
	config  *config.Config
	mailer  Mailer
	logger  *logrus.Logger
}

// NewService creates a checkout service
func NewService(carts cart.Store, ledger order.Ledger, gateway payment.Gateway,
	cfg *config.Config, mailer Mailer, logger *logrus.Logger) *Service {
	return &Service{
		carts:   carts,
		ledger:  ledger,
		gateway: gateway,
		config:  cfg,
		mailer:  mailer,
		logger:  logger,
	}
}

// CreateSessionRequest represents a checkout session request
type CreateSessionRequest struct {
	CartCode string `json:"cart_code" binding:"required,max=11"`
	Email    string `json:"email" binding:"required,email"`
}

// CreateSessionResponse carries the gateway session handle back to the
// storefront for redirect
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckoutSession builds a payment session from the cart's current
// contents. Each cart line becomes a gateway line item at its real
// quantity, plus one surcharge line. The cart code travels in session
// metadata so the webhook can find the cart to fulfill.
func (s *Service) CreateCheckoutSession(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	c, err := s.carts.GetByCode(ctx, req.CartCode)
	if err != nil {
		return nil, err
	}

	items, err := s.carts.ListItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperrors.Newf(apperrors.KindValidation,
			"cart %s is empty", req.CartCode)
	}

	lines := make([]payment.LineItem, 0, len(items)+1)
	for _, item := range items {
		lines = append(lines, payment.LineItem{
			Name:       item.Product.Name,
			UnitAmount: item.Product.Price,
			Quantity:   int64(item.Quantity),
		})
	}
	lines = append(lines, payment.LineItem{
		Name:       s.config.Stripe.SurchargeLabel,
		UnitAmount: s.config.Stripe.SurchargeCents,
		Quantity:   1,
	})

	session, err := s.gateway.CreateCheckoutSession(ctx, &payment.SessionParams{
		CustomerEmail: req.Email,
		Currency:      s.config.Stripe.Currency,
		LineItems:     lines,
		SuccessURL:    s.config.Stripe.SuccessURL,
		CancelURL:     s.config.Stripe.CancelURL,
		Metadata:      map[string]string{"cart_code": c.CartCode},
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cart_code":  c.CartCode,
		"session_id": session.ID,
	}).Info("Checkout session created")

	return &CreateSessionResponse{SessionID: session.ID, URL: session.URL}, nil
}

// HandleWebhook verifies a gateway event and fulfills the referenced
// cart when the event reports a completed payment. Events of other
// types are acknowledged and ignored. Redelivered events are safe: the
// order ledger rejects duplicate session IDs and the handler treats
// that as success.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.gateway.ConstructEvent(payload, sigHeader)
	if err != nil {
		return err
	}

	switch event.Type {
	case payment.EventCheckoutSessionCompleted, payment.EventCheckoutAsyncPaymentSucceeded:
	default:
		s.logger.WithField("event_type", event.Type).Debug("Ignoring webhook event")
		return nil
	}

	var session payment.Session
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return apperrors.Wrap(apperrors.KindValidation,
			"malformed session object in webhook event", err)
	}

	return s.fulfillCheckout(ctx, &session)
}

// fulfillCheckout records the order for a paid session and removes the
// cart. The order is written before the cart is touched, so a crash
// between the two leaves a fulfilled order and a stale cart rather than
// a lost sale; the next delivery of the event cleans the cart up.
func (s *Service) fulfillCheckout(ctx context.Context, session *payment.Session) error {
	cartCode := session.Metadata["cart_code"]
	if cartCode == "" {
		return apperrors.New(apperrors.KindValidation,
			"webhook session carries no cart_code metadata")
	}

	log := s.logger.WithFields(logrus.Fields{
		"cart_code":  cartCode,
		"session_id": session.ID,
	})

	c, err := s.carts.GetByCode(ctx, cartCode)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return err
		}
		// An absent cart only counts as fulfilled when the order for
		// this session exists; otherwise the event references a cart
		// that was never created.
		if _, ledgerErr := s.ledger.GetByCheckoutID(ctx, session.ID); ledgerErr != nil {
			if apperrors.IsNotFound(ledgerErr) {
				return apperrors.Newf(apperrors.KindNotFound,
					"cart %s not found and no order recorded for session %s", cartCode, session.ID)
			}
			return ledgerErr
		}
		log.Info("Cart already fulfilled, nothing to do")
		return nil
	}

	items, err := s.carts.ListItems(ctx, c.ID)
	if err != nil {
		return err
	}

	o := &order.Order{
		CheckoutID:    session.ID,
		Amount:        session.AmountTotal,
		Currency:      session.Currency,
		CustomerEmail: session.CustomerEmail,
		Status:        order.StatusPaid,
	}
	for _, item := range items {
		o.Items = append(o.Items, order.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	if err := s.ledger.CreateOrder(ctx, o); err != nil {
		if !apperrors.IsConflict(err) {
			return err
		}
		// A concurrent or earlier delivery already recorded the order.
		// Fall through to delete the cart in case that delivery died
		// before reaching this point.
		log.Info("Order already recorded for session")
	}

	if err := s.carts.Delete(ctx, c.ID); err != nil && !apperrors.IsNotFound(err) {
		return err
	}

	log.WithField("amount", session.AmountTotal).Info("Checkout fulfilled")

	if s.mailer != nil && o.ID != 0 {
		if err := s.mailer.SendOrderConfirmation(ctx, o); err != nil {
			// Email failure must not fail the webhook; the order is
			// already durable.
			log.WithError(err).Warn("Failed to send order confirmation")
		}
	}
	return nil
}
