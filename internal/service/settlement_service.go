package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sefazor/menutranslator-backend/internal/metrics"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"github.com/sefazor/menutranslator-backend/pkg/email"
	"github.com/sefazor/menutranslator-backend/pkg/payment"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SettlementService turns a paid checkout session into exactly one top-up.
type SettlementService struct {
	db       *gorm.DB
	intents  *repository.PaymentIntentRepository
	credits  *CreditService
	users    *repository.UserRepository
	provider PaymentProvider
	notifier Notifier
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewSettlementService(
	db *gorm.DB,
	intents *repository.PaymentIntentRepository,
	credits *CreditService,
	users *repository.UserRepository,
	provider PaymentProvider,
	notifier Notifier,
	m *metrics.Metrics,
	log *zap.Logger,
) *SettlementService {
	return &SettlementService{
		db:       db,
		intents:  intents,
		credits:  credits,
		users:    users,
		provider: provider,
		notifier: notifier,
		metrics:  m,
		log:      log.Named("settlement"),
	}
}

// VerifyPayment settles sessionID on behalf of its owner. It is safe to call
// repeatedly and concurrently.
func (s *SettlementService) VerifyPayment(ctx context.Context, userID uint, sessionID string) (*models.VerifyPaymentResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidRequest)
	}

	intent, err := s.intents.GetBySessionID(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			s.metrics.Settlement("not_found")
			s.log.Warn("verify-payment for unknown session",
				zap.String("session_id", sessionID),
				zap.Uint("user_id", userID),
				zap.Bool("support", true))
			return nil, fmt.Errorf("%w: payment session", ErrNotFound)
		}
		return nil, err
	}

	if intent.UserID != userID {
		s.metrics.Settlement("forbidden")
		s.log.Warn("verify-payment by non-owner",
			zap.String("session_id", sessionID),
			zap.Uint("requester_id", userID),
			zap.Uint("owner_id", intent.UserID),
			zap.Bool("security", true))
		return nil, ErrForbidden
	}

	if intent.Status == models.PaymentStatusCompleted {
		s.metrics.Settlement("already_processed")
		return alreadyProcessed(), nil
	}

	sess, err := s.provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		s.metrics.Settlement("provider_error")
		s.log.Warn("payment provider unavailable during verification",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return &models.VerifyPaymentResponse{
			Success: false,
			Status:  intent.Status,
			Message: "Payment status is temporarily unavailable, please try again",
		}, nil
	}

	switch sess.Status {
	case payment.SessionPaid:
		s.flagAmountMismatch(sess, intent)
		return s.settle(ctx, intent)
	case payment.SessionCanceled:
		return s.recordUnpaid(ctx, intent, models.PaymentStatusCanceled, "Payment was canceled")
	default:
		return s.recordUnpaid(ctx, intent, models.PaymentStatusPending, "Payment not completed yet")
	}
}

func (s *SettlementService) recordUnpaid(ctx context.Context, intent *models.PaymentIntent, status, message string) (*models.VerifyPaymentResponse, error) {
	updated, err := s.intents.UpdateStatus(ctx, intent.ProviderSessionID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if !updated {
		// Completed concurrently by another request or the webhook.
		s.metrics.Settlement("already_processed")
		return alreadyProcessed(), nil
	}
	s.metrics.Settlement(status)
	return &models.VerifyPaymentResponse{
		Success: false,
		Status:  status,
		Message: message,
	}, nil
}

// settle moves the intent to completed and tops up the ledger in one
// transaction. The top-up only runs when this call won the transition.
func (s *SettlementService) settle(ctx context.Context, intent *models.PaymentIntent) (*models.VerifyPaymentResponse, error) {
	if _, err := s.credits.EnsureAccount(ctx, intent.UserID); err != nil {
		return nil, err
	}

	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		won, err := s.intents.WithTx(tx).MarkCompleted(ctx, intent.ProviderSessionID)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		if err := s.credits.WithTx(tx).TopUp(ctx, intent.UserID, intent.Credits); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		s.metrics.Settlement("error")
		s.log.Error("settlement transaction failed",
			zap.String("session_id", intent.ProviderSessionID),
			zap.Uint("user_id", intent.UserID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to settle payment: %w", err)
	}

	if !applied {
		s.metrics.Settlement("already_processed")
		return alreadyProcessed(), nil
	}

	s.metrics.Settlement("completed")
	s.metrics.CreditsToppedUp(intent.Credits)
	s.log.Info("payment settled",
		zap.String("session_id", intent.ProviderSessionID),
		zap.Uint("user_id", intent.UserID),
		zap.Int("credits", intent.Credits))

	total := 0
	available := 0
	if account, err := s.credits.GetAccount(ctx, intent.UserID); err == nil {
		total = account.TotalCredits
		available = account.Available()
	}

	s.sendReceipt(intent, available)

	return &models.VerifyPaymentResponse{
		Success: true,
		Status:  models.VerifyStatusCompleted,
		Message: fmt.Sprintf("%d credits added successfully", intent.Credits),
		Credits: &models.CreditsAdded{
			Total: total,
			Added: intent.Credits,
		},
	}, nil
}

// HandleStripeWebhook applies checkout events pushed by Stripe. The system is
// the actor here, so there is no ownership check.
func (s *SettlementService) HandleStripeWebhook(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		sess, err := payment.SessionFromEvent(event)
		if err != nil {
			return err
		}
		if sess.Status != payment.SessionPaid {
			s.log.Info("checkout completed but not paid yet", zap.String("session_id", sess.ID))
			return nil
		}

		intent, err := s.intents.GetBySessionID(ctx, sess.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				s.metrics.Settlement("not_found")
				s.log.Error("paid session has no payment intent",
					zap.String("session_id", sess.ID),
					zap.Uint("metadata_user_id", sess.MetadataUserID()),
					zap.Bool("support", true))
				s.alertSupport("Paid checkout session without payment intent", map[string]string{
					"session_id": sess.ID,
					"user_id":    sess.Metadata[payment.MetadataUserID],
					"credits":    sess.Metadata[payment.MetadataCredits],
					"amount":     strconv.FormatInt(sess.AmountTotal, 10),
				})
				return nil
			}
			return err
		}
		if intent.Status == models.PaymentStatusCompleted {
			s.metrics.Settlement("already_processed")
			return nil
		}
		s.flagAmountMismatch(sess, intent)
		_, err = s.settle(ctx, intent)
		return err

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		sess, err := payment.SessionFromEvent(event)
		if err != nil {
			return err
		}
		updated, err := s.intents.UpdateStatus(ctx, sess.ID, models.PaymentStatusCanceled)
		if err != nil {
			return err
		}
		if updated {
			s.metrics.Settlement(models.PaymentStatusCanceled)
		}
		return nil
	}

	s.log.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
	return nil
}

// flagAmountMismatch reports a paid session whose amount or currency differs
// from the recorded intent. Settlement still grants the recorded credits;
// support reconciles. Sessions that carry no amount are not checked.
func (s *SettlementService) flagAmountMismatch(sess *payment.Session, intent *models.PaymentIntent) bool {
	if sess.AmountTotal == 0 && sess.Currency == "" {
		return false
	}
	if sess.AmountTotal == intent.AmountCents && strings.EqualFold(sess.Currency, intent.Currency) {
		return false
	}

	s.metrics.Settlement("amount_mismatch")
	s.log.Error("paid amount does not match payment intent",
		zap.String("session_id", sess.ID),
		zap.Uint("user_id", intent.UserID),
		zap.Int64("paid_amount", sess.AmountTotal),
		zap.String("paid_currency", sess.Currency),
		zap.Int64("intent_amount", intent.AmountCents),
		zap.String("intent_currency", intent.Currency),
		zap.Int("credits", intent.Credits),
		zap.Bool("support", true))
	s.alertSupport("Paid amount differs from payment intent", map[string]string{
		"session_id":      sess.ID,
		"user_id":         strconv.FormatUint(uint64(intent.UserID), 10),
		"paid_amount":     strconv.FormatInt(sess.AmountTotal, 10),
		"paid_currency":   sess.Currency,
		"intent_amount":   strconv.FormatInt(intent.AmountCents, 10),
		"intent_currency": intent.Currency,
		"credits":         strconv.Itoa(intent.Credits),
	})
	return true
}

func (s *SettlementService) History(ctx context.Context, userID uint) ([]models.PaymentIntent, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	return s.intents.GetUserHistory(ctx, userID)
}

func (s *SettlementService) sendReceipt(intent *models.PaymentIntent, available int) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := s.users.GetByID(ctx, intent.UserID)
		if err != nil {
			s.log.Warn("receipt skipped, user not found", zap.Uint("user_id", intent.UserID), zap.Error(err))
			return
		}
		err = s.notifier.SendPaymentReceipt(email.Receipt{
			Email:       user.Email,
			FullName:    user.FullName,
			ProductName: intent.ProductName,
			Credits:     intent.Credits,
			AmountCents: intent.AmountCents,
			Currency:    strings.ToUpper(intent.Currency),
			Available:   available,
			SessionID:   intent.ProviderSessionID,
		})
		if err != nil {
			s.log.Error("failed to send payment receipt", zap.String("session_id", intent.ProviderSessionID), zap.Error(err))
		}
	}()
}

func (s *SettlementService) alertSupport(subject string, fields map[string]string) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.SendSupportAlert(subject, fields); err != nil {
			s.log.Error("failed to send support alert", zap.String("subject", subject), zap.Error(err))
		}
	}()
}

func alreadyProcessed() *models.VerifyPaymentResponse {
	return &models.VerifyPaymentResponse{
		Success: true,
		Status:  models.VerifyStatusAlreadyProcessed,
		Message: "This payment has already been processed",
	}
}
