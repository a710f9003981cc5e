package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"
)

// Normalized settlement state of a checkout session.
type SessionStatus string

const (
	SessionPaid     SessionStatus = "paid"
	SessionUnpaid   SessionStatus = "unpaid"
	SessionCanceled SessionStatus = "canceled"
)

const (
	MetadataUserID    = "user_id"
	MetadataCredits   = "credits"
	MetadataPackageID = "package_id"
)

var ErrMissingSessionID = errors.New("session id is required")

type CheckoutRequest struct {
	UserID      uint
	Email       string
	Credits     int
	AmountCents int64
	Currency    string
	ProductName string
	PackageID   *uint
}

type Session struct {
	ID            string
	URL           string
	Status        SessionStatus
	AmountTotal   int64
	Currency      string
	CustomerEmail string
	Metadata      map[string]string
}

// MetadataUserID returns the user id echoed back by the provider, or 0.
func (s *Session) MetadataUserID() uint {
	id, err := strconv.ParseUint(s.Metadata[MetadataUserID], 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
	Timeout       time.Duration
}

type StripeService struct {
	api           *client.API
	webhookSecret string
	currency      string
	successURL    string
	cancelURL     string
}

func NewStripeService(cfg StripeConfig) *StripeService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, stripe.NewBackends(&http.Client{Timeout: timeout}))

	currency := cfg.Currency
	if currency == "" {
		currency = string(stripe.CurrencyBRL)
	}

	return &StripeService{
		api:           sc,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateCheckoutSession opens a one-off payment session priced inline.
// The user id and credit amount travel as metadata and come back on retrieval.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.ProductName),
						Description: stripe.String(fmt.Sprintf("%d translation credits", req.Credits)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	params.AddMetadata(MetadataUserID, strconv.FormatUint(uint64(req.UserID), 10))
	params.AddMetadata(MetadataCredits, strconv.Itoa(req.Credits))
	if req.PackageID != nil {
		params.AddMetadata(MetadataPackageID, strconv.FormatUint(uint64(*req.PackageID), 10))
	}

	cs, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}
	return toSession(cs), nil
}

func (s *StripeService) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve checkout session: %w", err)
	}
	return toSession(cs), nil
}

// ConstructEvent verifies the webhook signature. API version mismatches are
// tolerated so that dashboard upgrades do not break delivery.
func (s *StripeService) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
}

// SessionFromEvent decodes the checkout session carried by a webhook event.
func SessionFromEvent(event *stripe.Event) (*Session, error) {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("stripe: decode checkout session: %w", err)
	}
	return toSession(&cs), nil
}

// NormalizeStatus collapses Stripe's payment and session states into paid, unpaid or canceled.
func NormalizeStatus(paymentStatus stripe.CheckoutSessionPaymentStatus, status stripe.CheckoutSessionStatus) SessionStatus {
	switch paymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return SessionPaid
	}
	if status == stripe.CheckoutSessionStatusExpired {
		return SessionCanceled
	}
	return SessionUnpaid
}

func toSession(cs *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:          cs.ID,
		URL:         cs.URL,
		Status:      NormalizeStatus(cs.PaymentStatus, cs.Status),
		AmountTotal: cs.AmountTotal,
		Currency:    string(cs.Currency),
		Metadata:    cs.Metadata,
	}
	if cs.CustomerDetails != nil {
		out.CustomerEmail = cs.CustomerDetails.Email
	}
	if out.CustomerEmail == "" {
		out.CustomerEmail = cs.CustomerEmail
	}
	return out
}
