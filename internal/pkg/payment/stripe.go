// internal/pkg/payment/stripe.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// DefaultTolerance is the maximum accepted age of a webhook signature
const DefaultTolerance = 5 * time.Minute

// StripeClient talks to the Stripe REST API
type StripeClient struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
	tolerance     time.Duration
	nowFunc       func() time.Time
}

// NewStripeClient creates a Stripe gateway client. Credentials come from
// configuration, not from package-level state.
func NewStripeClient(cfg *config.Config) *StripeClient {
	return &StripeClient{
		secretKey:     cfg.Stripe.SecretKey,
		webhookSecret: cfg.Stripe.WebhookSecret,
		baseURL:       cfg.Stripe.APIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tolerance: DefaultTolerance,
		nowFunc:   time.Now,
	}
}

// CreateCheckoutSession creates a hosted checkout session
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, params *SessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("customer_email", params.CustomerEmail)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Add("payment_method_types[]", "card")

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", params.Currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.FormatInt(item.Quantity, 10))
	}

	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	body, err := s.makeAPICall(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, apperrors.Wrap(apperrors.KindGateway, "failed to parse checkout session response", err)
	}

	return &session, nil
}

// ConstructEvent verifies a webhook payload against its Stripe-Signature
// header and parses the event. The header carries a unix timestamp and one
// or more v1 signatures: "t=<ts>,v1=<hex hmac>". The signed message is
// "<ts>.<payload>" keyed with the shared webhook secret.
func (s *StripeClient) ConstructEvent(payload []byte, sigHeader string) (*Event, error) {
	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	if s.tolerance > 0 {
		age := s.nowFunc().Sub(time.Unix(timestamp, 0))
		if age > s.tolerance || age < -s.tolerance {
			return nil, apperrors.New(apperrors.KindInvalidSignature, "webhook timestamp outside of tolerance")
		}
	}

	expected := computeSignature(timestamp, payload, s.webhookSecret)
	if !anySignatureMatches(signatures, expected) {
		return nil, apperrors.New(apperrors.KindInvalidSignature, "webhook signature verification failed")
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "malformed webhook payload", err)
	}

	return &event, nil
}

// makeAPICall performs a form-encoded request against the Stripe API
func (s *StripeClient) makeAPICall(ctx context.Context, method, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindGateway, "failed to create gateway request", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindGateway, "gateway request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindGateway, "failed to read gateway response", err)
	}

	if resp.StatusCode >= 400 {
		return nil, apperrors.Newf(apperrors.KindGateway, "gateway call failed with status %d: %s",
			resp.StatusCode, gatewayErrorMessage(body))
	}

	return body, nil
}

// gatewayErrorMessage extracts the error message from a Stripe error body
func gatewayErrorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(body)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, apperrors.New(apperrors.KindInvalidSignature, "missing signature header")
	}

	var timestamp int64 = -1
	var signatures []string

	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, apperrors.New(apperrors.KindInvalidSignature, "invalid signature timestamp")
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, apperrors.New(apperrors.KindInvalidSignature, "malformed signature header")
	}

	return timestamp, signatures, nil
}

func computeSignature(timestamp int64, payload []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return mac.Sum(nil)
}

func anySignatureMatches(candidates []string, expected []byte) bool {
	for _, candidate := range candidates {
		decoded, err := hex.DecodeString(candidate)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}
