package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sefazor/menutranslator-backend/internal/metrics"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"github.com/sefazor/menutranslator-backend/pkg/payment"
	"go.uber.org/zap"
)

type CheckoutService struct {
	intents  *repository.PaymentIntentRepository
	packages *repository.CreditPackageRepository
	users    *repository.UserRepository
	provider PaymentProvider
	notifier Notifier
	currency string
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewCheckoutService(
	intents *repository.PaymentIntentRepository,
	packages *repository.CreditPackageRepository,
	users *repository.UserRepository,
	provider PaymentProvider,
	notifier Notifier,
	currency string,
	m *metrics.Metrics,
	log *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		intents:  intents,
		packages: packages,
		users:    users,
		provider: provider,
		notifier: notifier,
		currency: strings.ToLower(currency),
		metrics:  m,
		log:      log.Named("checkout"),
	}
}

// Initiate opens a checkout session for an arbitrary credit amount and price
// (minor currency units) and records a pending PaymentIntent for it.
func (s *CheckoutService) Initiate(ctx context.Context, userID uint, req models.CreateCheckoutRequest) (*models.CheckoutSession, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	name := strings.TrimSpace(req.ProductName)
	if req.Credits <= 0 || req.Price <= 0 || name == "" {
		return nil, fmt.Errorf("%w: credits, price and productName must be positive and non-empty", ErrInvalidRequest)
	}
	if err := s.checkPriceFloor(ctx, req.Credits, req.Price); err != nil {
		return nil, err
	}

	return s.initiate(ctx, payment.CheckoutRequest{
		UserID:      userID,
		Credits:     req.Credits,
		AmountCents: req.Price,
		Currency:    s.currency,
		ProductName: name,
	})
}

// checkPriceFloor rejects free-form prices cheaper per credit than the best
// active catalog package in the same currency. An empty catalog sets no floor.
func (s *CheckoutService) checkPriceFloor(ctx context.Context, credits int, price int64) error {
	packages, err := s.packages.GetAll(ctx)
	if err != nil {
		return err
	}

	var floor *models.CreditPackage
	for i := range packages {
		p := &packages[i]
		if p.Credits <= 0 || (p.Currency != "" && !strings.EqualFold(p.Currency, s.currency)) {
			continue
		}
		if floor == nil || p.PriceCents*int64(floor.Credits) < floor.PriceCents*int64(p.Credits) {
			floor = p
		}
	}
	if floor == nil {
		return nil
	}

	if price*int64(floor.Credits) < floor.PriceCents*int64(credits) {
		s.log.Warn("checkout price below catalog rate",
			zap.Int("credits", credits),
			zap.Int64("price", price),
			zap.String("floor_package", floor.Name))
		return fmt.Errorf("%w: price is below the minimum of %d cents for %d credits", ErrInvalidRequest, floor.PriceCents, floor.Credits)
	}
	return nil
}

// InitiateForPackage prices the checkout from the credit package catalog.
func (s *CheckoutService) InitiateForPackage(ctx context.Context, userID, packageID uint) (*models.CheckoutSession, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: package %d", ErrNotFound, packageID)
		}
		return nil, err
	}

	currency := pkg.Currency
	if currency == "" {
		currency = s.currency
	}
	return s.initiate(ctx, payment.CheckoutRequest{
		UserID:      userID,
		Credits:     pkg.Credits,
		AmountCents: pkg.PriceCents,
		Currency:    currency,
		ProductName: pkg.Name,
		PackageID:   &pkg.ID,
	})
}

func (s *CheckoutService) initiate(ctx context.Context, req payment.CheckoutRequest) (*models.CheckoutSession, error) {
	if user, err := s.users.GetByID(ctx, req.UserID); err == nil {
		req.Email = user.Email
	}

	sess, err := s.provider.CreateCheckoutSession(ctx, req)
	if err != nil {
		s.metrics.CheckoutSession("provider_error")
		s.log.Error("failed to create checkout session", zap.Uint("user_id", req.UserID), zap.Error(err))
		return nil, providerError("create checkout session", err)
	}

	intent := &models.PaymentIntent{
		UserID:            req.UserID,
		PackageID:         req.PackageID,
		ProviderSessionID: sess.ID,
		AmountCents:       req.AmountCents,
		Currency:          req.Currency,
		Credits:           req.Credits,
		ProductName:       req.ProductName,
		Status:            models.PaymentStatusPending,
	}

	if err := s.intents.Create(ctx, intent); err != nil {
		// The session is live at the provider; hand it back and let support reconcile.
		s.metrics.CheckoutSession("unrecorded")
		s.log.Error("checkout session created but payment intent not recorded",
			zap.String("session_id", sess.ID),
			zap.Uint("user_id", req.UserID),
			zap.Int("credits", req.Credits),
			zap.Int64("amount_cents", req.AmountCents),
			zap.Bool("support", true),
			zap.Error(err))
		s.alertSupport("Checkout session without payment intent", map[string]string{
			"session_id":   sess.ID,
			"user_id":      strconv.FormatUint(uint64(req.UserID), 10),
			"credits":      strconv.Itoa(req.Credits),
			"amount_cents": strconv.FormatInt(req.AmountCents, 10),
			"error":        err.Error(),
		})
	} else {
		s.metrics.CheckoutSession("created")
		s.log.Info("checkout session created",
			zap.String("session_id", sess.ID),
			zap.Uint("user_id", req.UserID),
			zap.Int("credits", req.Credits))
	}

	return &models.CheckoutSession{
		SessionID:   sess.ID,
		CheckoutURL: sess.URL,
	}, nil
}

func (s *CheckoutService) alertSupport(subject string, fields map[string]string) {
	if s.notifier == nil {
		return
	}
	go func() {
		if err := s.notifier.SendSupportAlert(subject, fields); err != nil {
			s.log.Error("failed to send support alert", zap.String("subject", subject), zap.Error(err))
		}
	}()
}
