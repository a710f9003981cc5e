package service

import (
	"context"

	"github.com/sefazor/menutranslator-backend/pkg/email"
	"github.com/sefazor/menutranslator-backend/pkg/payment"
)

// PaymentProvider creates and inspects hosted checkout sessions.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*payment.Session, error)
}

// Notifier delivers transactional and support email.
type Notifier interface {
	SendPaymentReceipt(r email.Receipt) error
	SendSupportAlert(subject string, fields map[string]string) error
}
