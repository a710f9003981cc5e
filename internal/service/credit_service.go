package service

import (
	"context"
	"fmt"

	"github.com/sefazor/menutranslator-backend/internal/config"
	"github.com/sefazor/menutranslator-backend/internal/metrics"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreditService is the only writer of used_credits and total_credits.
type CreditService struct {
	accounts *repository.CreditAccountRepository
	policy   config.CreditsConfig
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewCreditService(accounts *repository.CreditAccountRepository, policy config.CreditsConfig, m *metrics.Metrics, log *zap.Logger) *CreditService {
	if policy.CreditsPerLanguage <= 0 {
		policy.CreditsPerLanguage = 1
	}
	if policy.DefaultTier == "" {
		policy.DefaultTier = models.TierFree
	}
	return &CreditService{
		accounts: accounts,
		policy:   policy,
		metrics:  m,
		log:      log.Named("credits"),
	}
}

// WithTx returns a copy whose writes go through tx.
func (s *CreditService) WithTx(tx *gorm.DB) *CreditService {
	cp := *s
	cp.accounts = s.accounts.WithTx(tx)
	return &cp
}

func (s *CreditService) CreditsPerLanguage() int {
	return s.policy.CreditsPerLanguage
}

func (s *CreditService) ChargePolicy() string {
	return s.policy.ChargePolicy
}

// EnsureAccount returns the user's account, creating it with the default
// allotment when missing. Concurrent first calls converge on one row.
func (s *CreditService) EnsureAccount(ctx context.Context, userID uint) (*models.CreditAccount, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	account, err := s.accounts.GetByUserID(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load credit account: %w", err)
	}

	created, err := s.accounts.CreateIfAbsent(ctx, &models.CreditAccount{
		UserID:       userID,
		TotalCredits: s.policy.DefaultAllotment,
		UsedCredits:  0,
		Tier:         s.policy.DefaultTier,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credit account: %w", err)
	}
	if created {
		s.log.Info("credit account created",
			zap.Uint("user_id", userID),
			zap.Int("allotment", s.policy.DefaultAllotment))
	}

	account, err = s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit account: %w", err)
	}
	return account, nil
}

// CheckAndReserve fails fast when the balance cannot cover required. It does
// not write; CommitDebit re-checks atomically.
func (s *CreditService) CheckAndReserve(ctx context.Context, userID uint, required int) (int, error) {
	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return 0, &InsufficientCreditsError{Required: required, Available: 0}
		}
		return 0, fmt.Errorf("failed to load credit account: %w", err)
	}

	available := account.Available()
	if available < required {
		return available, &InsufficientCreditsError{Required: required, Available: available}
	}
	return available, nil
}

// CommitDebit adds amount to used_credits in one conditional update.
func (s *CreditService) CommitDebit(ctx context.Context, userID uint, amount int) error {
	if amount <= 0 {
		return nil
	}

	ok, err := s.accounts.IncrementUsed(ctx, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to debit credits: %w", err)
	}
	if !ok {
		available := 0
		if account, err := s.accounts.GetByUserID(ctx, userID); err == nil {
			available = account.Available()
		}
		s.log.Warn("debit rejected by balance guard",
			zap.Uint("user_id", userID),
			zap.Int("amount", amount),
			zap.Int("available", available))
		return fmt.Errorf("%w: %w", ErrLedgerWriteConflict, &InsufficientCreditsError{Required: amount, Available: available})
	}

	s.metrics.CreditsDebited(amount)
	return nil
}

// TopUp adds amount to total_credits. Idempotency belongs to the caller.
func (s *CreditService) TopUp(ctx context.Context, userID uint, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: top-up amount must be positive", ErrInvalidRequest)
	}

	ok, err := s.accounts.IncrementTotal(ctx, userID, amount)
	if err != nil {
		return fmt.Errorf("failed to top up credits: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: credit account for user %d", ErrNotFound, userID)
	}
	return nil
}

func (s *CreditService) GetAccount(ctx context.Context, userID uint) (*models.CreditAccount, error) {
	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *CreditService) GetSummary(ctx context.Context, userID uint) (*models.CreditSummary, error) {
	account, err := s.EnsureAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := models.NewCreditSummary(account)
	return &summary, nil
}
