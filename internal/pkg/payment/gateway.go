// internal/pkg/payment/gateway.go
package payment

import (
	"context"
	"encoding/json"
)

// LineItem is a single priced line in a checkout session
type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"` // cents
	Quantity   int64  `json:"quantity"`
}

// SessionParams describes the hosted checkout session to create
type SessionParams struct {
	CustomerEmail string            `json:"customer_email"`
	Currency      string            `json:"currency"`
	LineItems     []LineItem        `json:"line_items"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata"`
}

// Session is the gateway-issued checkout session. The backend treats it
// as opaque beyond its identifier, totals and metadata.
type Session struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// Event is a signed webhook event delivered by the gateway
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Event types that trigger fulfillment
const (
	EventCheckoutSessionCompleted      = "checkout.session.completed"
	EventCheckoutAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Gateway is the payment provider client used by the fulfillment workflow
type Gateway interface {
	// CreateCheckoutSession creates a hosted checkout session
	CreateCheckoutSession(ctx context.Context, params *SessionParams) (*Session, error)

	// ConstructEvent verifies the webhook payload against its signature
	// header and parses it. Verification failure returns an
	// InvalidSignature error before any payload inspection.
	ConstructEvent(payload []byte, sigHeader string) (*Event, error)
}
